package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/authctx"
	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/metrics"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/cryptox"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

// AuthService implements the user facing session flows on top of a
// UserDirectory and the TokenService.
type AuthService struct {
	Users   UserDirectory
	Tokens  *TokenService
	Metrics *metrics.Metrics
}

// AuthResult is returned by flows that start a new session.
type AuthResult struct {
	User   domain.User
	Tokens domain.TokenPair
}

// SessionInfo describes the caller's current session.
type SessionInfo struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

type SessionUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func (s *AuthService) Register(ctx context.Context, email, password, ip, userAgent string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if err := CheckPasswordStrength(password); err != nil {
		return AuthResult{}, err
	}

	_, err := s.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResult{}, ErrEmailAlreadyRegistered
	case !errors.Is(err, store.ErrNotFound):
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	user, err := s.Users.Create(ctx, email, password)
	if err != nil {
		return AuthResult{}, err
	}

	pair, err := s.Tokens.IssueTokenPair(ctx, user, ip, userAgent)
	if err != nil {
		return AuthResult{}, err
	}

	s.Metrics.ObserveRegistration()
	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return AuthResult{User: user, Tokens: pair}, nil
}

// Login authenticates by email and password. Unknown users, inactive users
// and wrong passwords all produce ErrInvalidCredentials after comparable
// work; the distinction is kept only in the login attempt record.
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (AuthResult, error) {
	email = NormalizeEmail(email)
	attempt := domain.LoginAttempt{
		Email:             email,
		IPAddress:         ip,
		UserAgent:         userAgent,
		DeviceFingerprint: cryptox.DeviceFingerprint(ip, userAgent),
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("lookup user: %w", err)
		}
		s.Users.VerifyPassword(domain.User{}, password)
		return AuthResult{}, s.loginFailed(ctx, attempt, domain.LoginFailureUserNotFound)
	}

	passwordOK := s.Users.VerifyPassword(user, password)
	if !user.IsActive() {
		return AuthResult{}, s.loginFailed(ctx, attempt, domain.LoginFailureAccountInactive)
	}
	if !passwordOK {
		return AuthResult{}, s.loginFailed(ctx, attempt, domain.LoginFailureInvalidPassword)
	}

	if err := s.Users.UpdateLastLogin(ctx, user.ID); err != nil {
		return AuthResult{}, fmt.Errorf("update last login: %w", err)
	}

	pair, err := s.Tokens.IssueTokenPair(ctx, user, ip, userAgent)
	if err != nil {
		return AuthResult{}, err
	}

	attempt.Success = true
	s.recordAttempt(ctx, attempt)
	s.Metrics.ObserveLogin(metrics.ResultSuccess)
	return AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, attempt domain.LoginAttempt, reason string) error {
	attempt.FailureReason = reason
	s.recordAttempt(ctx, attempt)
	s.Metrics.ObserveLogin(metrics.ResultFailure)
	slogx.FromContext(ctx).Info("login failed", slog.String("reason", reason))
	return ErrInvalidCredentials
}

// recordAttempt is best effort; a failed write never changes the login
// outcome.
func (s *AuthService) recordAttempt(ctx context.Context, attempt domain.LoginAttempt) {
	if err := s.Users.RecordLoginAttempt(ctx, attempt); err != nil {
		slogx.FromContext(ctx).Warn("record login attempt", slog.Any("error", err))
	}
}

// Refresh rotates raw and issues a new access token for its owner.
func (s *AuthService) Refresh(ctx context.Context, raw, ip, userAgent string) (domain.TokenPair, error) {
	rot, err := s.Tokens.ValidateAndRotate(ctx, raw, ip, userAgent)
	if err != nil {
		return domain.TokenPair{}, err
	}

	user, err := s.Users.FindByID(ctx, rot.UserID)
	if err != nil || !user.IsActive() {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("refresh user lookup", slog.Any("error", err))
		}
		if rerr := s.Tokens.RevokeRefreshToken(ctx, rot.RefreshToken); rerr != nil {
			slogx.FromContext(ctx).Error("revoke rotated token", slog.Any("error", rerr))
		}
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	access, accessExp, err := s.Tokens.IssueAccessToken(user)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:     access,
		AccessExpiresAt: accessExp,
		RefreshToken:    rot.RefreshToken,
		RefreshExpires:  rot.RefreshExpiresAt,
	}, nil
}

// Logout revokes raw. An empty token is accepted so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	return s.Tokens.RevokeRefreshToken(ctx, raw)
}

// ChangePassword verifies current, stores the new password, ends every
// session of the caller and starts a fresh one for this device.
func (s *AuthService) ChangePassword(ctx context.Context, current, next, ip, userAgent string) (domain.TokenPair, error) {
	ac, err := authctx.Require(ctx)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := CheckPasswordStrength(next); err != nil {
		return domain.TokenPair{}, err
	}

	user, err := s.Users.FindByID(ctx, ac.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, authctx.ErrAuthenticationRequired
		}
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.Users.VerifyPassword(user, current) {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if err := s.Users.UpdatePassword(ctx, user.ID, next); err != nil {
		return domain.TokenPair{}, fmt.Errorf("update password: %w", err)
	}
	if err := s.Tokens.RevokeAllSessions(ctx, user.ID); err != nil {
		return domain.TokenPair{}, err
	}
	return s.Tokens.IssueTokenPair(ctx, user, ip, userAgent)
}

// Session projects the request's auth context. It never fails.
func (s *AuthService) Session(ctx context.Context) SessionInfo {
	ac, err := authctx.Require(ctx)
	if err != nil {
		return SessionInfo{Authenticated: false}
	}
	info := SessionInfo{
		Authenticated: true,
		User:          &SessionUser{ID: ac.UserID, Email: ac.Email, IsAdmin: ac.IsAdmin},
	}
	if !ac.ExpiresAt.IsZero() {
		exp := ac.ExpiresAt
		info.ExpiresAt = &exp
	}
	return info
}
