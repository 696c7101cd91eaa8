package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/pkg/cryptox"
	"github.com/aussiebroadwan/nexus/pkg/idx"
)

const (
	DefaultLoginAttemptsLimit = 20
	MaxLoginAttemptsLimit     = 100
)

// UserDirectory is what AuthService needs to know about principals.
type UserDirectory interface {
	// FindByEmail and FindByID return store.ErrNotFound for unknown users.
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)

	// Create returns ErrEmailAlreadyRegistered for a duplicate email.
	Create(ctx context.Context, email, password string) (domain.User, error)

	// VerifyPassword performs a full hash comparison even for a user with no
	// hash, so unknown users cost the same as known ones.
	VerifyPassword(user domain.User, password string) bool

	UpdatePassword(ctx context.Context, userID, newPassword string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RecordLoginAttempt(ctx context.Context, attempt domain.LoginAttempt) error
}

type UserService struct {
	Store store.Store
}

var _ UserDirectory = (*UserService)(nil)

// dummyHash is compared against when the user does not exist.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("nexus-timing-equaliser-0")
	if err != nil {
		panic(err)
	}
	return h
})

func (s *UserService) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) FindByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, email, password string) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailAlreadyRegistered
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *UserService) VerifyPassword(user domain.User, password string) bool {
	if user.PasswordHash == "" {
		_ = cryptox.VerifyPassword(password, dummyHash())
		return false
	}
	return cryptox.VerifyPassword(password, user.PasswordHash) == nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

func (s *UserService) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.Store.Users().UpdateLastLogin(ctx, userID, time.Now().UTC())
}

func (s *UserService) RecordLoginAttempt(ctx context.Context, a domain.LoginAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.ID == "" {
		a.ID = idx.NewAt(a.CreatedAt).String()
	}
	a.Email = NormalizeEmail(a.Email)
	return s.Store.LoginAttempts().RecordLoginAttempt(ctx, a)
}

// ListLoginAttempts returns the newest attempts for email. The limit
// defaults to 20 and is capped at 100.
func (s *UserService) ListLoginAttempts(ctx context.Context, email string, limit int) ([]domain.LoginAttempt, error) {
	switch {
	case limit <= 0:
		limit = DefaultLoginAttemptsLimit
	case limit > MaxLoginAttemptsLimit:
		limit = MaxLoginAttemptsLimit
	}
	attempts, err := s.Store.LoginAttempts().ListLoginAttempts(ctx, NormalizeEmail(email), limit)
	if err != nil {
		return nil, fmt.Errorf("list login attempts: %w", err)
	}
	if attempts == nil {
		attempts = []domain.LoginAttempt{}
	}
	return attempts, nil
}

// SetBinanceToken stores an argon2id hash of token for userID. A nil or
// empty token clears it.
func (s *UserService) SetBinanceToken(ctx context.Context, userID string, token *string) error {
	var hash *string
	if token != nil && *token != "" {
		h, err := cryptox.HashPassword(*token)
		if err != nil {
			return fmt.Errorf("hash binance token: %w", err)
		}
		hash = &h
	}
	if err := s.Store.Users().SetBinanceTokenHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("set binance token: %w", err)
	}
	return nil
}
