package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/service"
	"github.com/aussiebroadwan/nexus/pkg/httpx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

// AuthHandler serves the /v1/auth routes.
type AuthHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

// UserResponse wraps the public user projection.
type UserResponse struct {
	User domain.UserPublic `json:"user"`
}

// SuccessResponse is returned by endpoints with nothing else to say.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates a user, starts a session and sets the access_token and refresh_token cookies.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"email and password"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	APIError	"invalid_request, weak_password"
//	@Failure		409		{object}	APIError	"email_already_registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if err := req.ValidateRegistration(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.AuthService.Register(r.Context(), req.Email, req.Password, httpx.ClientIP(r), httpx.UserAgent(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, res.Tokens)
	httpx.WriteJSON(w, http.StatusCreated, UserResponse{User: res.User.Public()})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies the credentials and sets fresh session cookies. Unknown users, inactive accounts and wrong passwords produce the same response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"email and password"
//	@Success		200		{object}	UserResponse
//	@Failure		400		{object}	APIError	"invalid_request"
//	@Failure		401		{object}	APIError	"invalid_credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if err := req.ValidateLogin(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password, httpx.ClientIP(r), httpx.UserAgent(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, res.Tokens)
	httpx.WriteJSON(w, http.StatusOK, UserResponse{User: res.User.Public()})
}

// HandleRefresh godoc
//
//	@Summary		Rotate the refresh token
//	@Description	Consumes the refresh_token cookie and sets a new cookie pair. A refresh token is single use.
//	@Description	A missing cookie answers 200 with an error body so page loads without a session stay quiet.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	SuccessResponse
//	@Failure		401	{object}	APIError	"invalid_refresh"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	raw := cookieValue(r, RefreshTokenCookie)
	if raw == "" {
		httpx.WriteJSON(w, http.StatusOK, APIError{Code: ErrorCodeNoRefreshToken})
		return
	}

	pair, err := h.AuthService.Refresh(r.Context(), raw, httpx.ClientIP(r), httpx.UserAgent(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			h.Cookies.Clear(w)
		}
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, pair)
	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the refresh token of this device and clears the cookies. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	SuccessResponse
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), cookieValue(r, RefreshTokenCookie)); err != nil {
		slogx.FromContext(r.Context()).Error("logout revoke failed", slog.Any("error", err))
	}

	h.Cookies.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Verifies the current password, stores the new one, ends every session of the user and starts a new one for this device.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChangePasswordRequest	true	"current and new password"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	APIError	"invalid_request"
//	@Failure		401		{object}	APIError	"authentication_required, invalid_credentials"
//	@Router			/v1/auth/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.AuthService.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword,
		httpx.ClientIP(r), httpx.UserAgent(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.SetTokens(w, pair)
	httpx.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleSession godoc
//
//	@Summary		Current session
//	@Description	Reports whether the request carries a live session and who it belongs to.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	service.SessionInfo
//	@Router			/v1/auth/session [get].
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.AuthService.Session(r.Context()))
}
