package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/metrics"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/cryptox"
	"github.com/aussiebroadwan/nexus/pkg/idx"
	"github.com/aussiebroadwan/nexus/pkg/jwtx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

// TokenService issues access tokens and manages the refresh token lifecycle.
// Refresh tokens are stored only as hashes and every use rotates them.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Metrics    *metrics.Metrics
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Rotation is the result of a successful refresh.
type Rotation struct {
	UserID           string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// IssueAccessToken signs a short-lived access token for user.
func (s *TokenService) IssueAccessToken(user domain.User) (string, time.Time, error) {
	signer := s.KeyManager.GetSigner()
	if signer == nil {
		return "", time.Time{}, fmt.Errorf("%w: no signing key", ErrConfigurationFatal)
	}

	claims := jwtx.NewAccessClaims(user.ID, user.Email, user.IsAdmin, s.Issuer, s.AccessTTL, s.now())
	token, err := signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, claims.ExpiresAtTime(), nil
}

// CreateRefreshToken stores a new refresh token bound to the caller's device
// and returns the raw value. The raw value is not recoverable afterwards.
func (s *TokenService) CreateRefreshToken(ctx context.Context, userID, ip, userAgent string) (string, time.Time, error) {
	return s.createRefreshToken(ctx, s.Store, userID, ip, userAgent)
}

func (s *TokenService) createRefreshToken(
	ctx context.Context,
	st store.Store,
	userID, ip, userAgent string,
) (string, time.Time, error) {
	raw, err := newRefreshSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expires := now.Add(s.RefreshTTL)
	err = st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:                idx.NewAt(now).String(),
		UserID:            userID,
		TokenHash:         cryptox.HashToken(raw),
		DeviceFingerprint: cryptox.DeviceFingerprint(ip, userAgent),
		IPAddress:         ip,
		UserAgent:         userAgent,
		ExpiresAt:         expires,
		CreatedAt:         now,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store refresh token: %w", err)
	}
	return raw, expires, nil
}

// newRefreshSecret is "<uuidv4>.<base64url(32 random bytes)>".
func newRefreshSecret() (string, error) {
	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return uuid.NewString() + "." + secret, nil
}

// IssueTokenPair signs an access token and creates a refresh token.
func (s *TokenService) IssueTokenPair(ctx context.Context, user domain.User, ip, userAgent string) (domain.TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(user)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := s.CreateRefreshToken(ctx, user.ID, ip, userAgent)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: accessExp,
		RefreshToken:    refresh,
		RefreshExpires:  refreshExp,
	}, nil
}

// ValidateAndRotate consumes raw and issues its replacement in one
// transaction. The token must match the caller's device fingerprint, be
// unrevoked and unexpired. Of concurrent callers presenting the same token
// exactly one succeeds; every other outcome is ErrInvalidRefresh.
func (s *TokenService) ValidateAndRotate(ctx context.Context, raw, ip, userAgent string) (Rotation, error) {
	l := slogx.FromContext(ctx)
	if raw == "" {
		s.Metrics.ObserveRefresh(metrics.ResultFailure)
		return Rotation{}, ErrInvalidRefresh
	}

	hash := cryptox.HashToken(raw)
	fingerprint := cryptox.DeviceFingerprint(ip, userAgent)

	var out Rotation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		consumed, err := tx.RefreshTokens().ConsumeRefreshToken(ctx, hash, fingerprint, s.now())
		if err != nil {
			return err
		}

		next, expires, err := s.createRefreshToken(ctx, tx, consumed.UserID, ip, userAgent)
		if err != nil {
			return err
		}

		out = Rotation{UserID: consumed.UserID, RefreshToken: next, RefreshExpiresAt: expires}
		return nil
	})
	if err != nil {
		s.Metrics.ObserveRefresh(metrics.ResultFailure)
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("refresh rotation failed", slog.Any("error", err))
		}
		return Rotation{}, ErrInvalidRefresh
	}

	s.Metrics.ObserveRefresh(metrics.ResultSuccess)
	return out, nil
}

// RevokeRefreshToken revokes raw. Unknown or empty tokens are a no-op.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.HashToken(raw)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllSessions revokes every refresh token of userID. Access tokens
// already issued stop working at the next request because the session
// middleware requires a live refresh token.
func (s *TokenService) RevokeAllSessions(ctx context.Context, userID string) error {
	n, err := s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID, s.now())
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	slogx.FromContext(ctx).Info("sessions revoked", slog.String("user_id", userID), slog.Int64("count", n))
	return nil
}

// HasActiveSession reports whether userID holds any live refresh token.
func (s *TokenService) HasActiveSession(ctx context.Context, userID string) (bool, error) {
	ok, err := s.Store.RefreshTokens().HasActiveRefreshToken(ctx, userID, s.now())
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return ok, nil
}

// VerifyAccessToken checks signature, issuer, expiry and token type. It does
// not consult session state.
func (s *TokenService) VerifyAccessToken(raw string) (jwtx.Claims, error) {
	claims, err := s.KeyManager.Verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := claims.ValidateAccess(); err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
