/*
Package authsdk is a Go client for the Nexus authentication service.

# Overview

Nexus keeps both credentials in HttpOnly cookies: a short-lived access token
and a single-use refresh token scoped to /v1/auth. SDKClient therefore owns a
cookie jar and behaves like a browser session: Register or Login fills the
jar, Refresh rotates it and Logout empties it.

	client, err := authsdk.NewSDKClient("http://localhost:8080")
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, "alice@example.com", "password123"); err != nil {
		return err
	}
	info, err := client.UserInfo(ctx)

# Errors

Every non-success response is returned as *APIError carrying the HTTP status
and the service's error code. Use errors.As to inspect it:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidCredentials {
		// wrong email or password
	}
*/
package authsdk
