package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCredentialsRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CredentialsRequest
		wantErr string
	}{
		{"valid", CredentialsRequest{Email: "alice@example.com", Password: "password123"}, ""},
		{"unresolvable domain is still well formed", CredentialsRequest{Email: "bob@nexus.invalid", Password: "password123"}, ""},
		{"missing at sign", CredentialsRequest{Email: "not-an-email", Password: "password123"}, "email"},
		{"empty email", CredentialsRequest{Password: "password123"}, "email"},
		{"too long", CredentialsRequest{Email: strings.Repeat("a", 250) + "@example.com", Password: "password123"}, "email"},
		{"no digit", CredentialsRequest{Email: "alice@example.com", Password: "onlyletters"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.ValidateRegistration()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBinanceTokenRequestValidation(t *testing.T) {
	ok := "secret"
	empty := ""
	long := strings.Repeat("x", MaxBinanceTokenLength+1)

	require.NoError(t, BinanceTokenRequest{Token: &ok}.Validate())
	require.NoError(t, BinanceTokenRequest{Token: &empty}.Validate())
	require.NoError(t, BinanceTokenRequest{}.Validate())
	require.ErrorContains(t, BinanceTokenRequest{Token: &long}.Validate(), "token")
}
