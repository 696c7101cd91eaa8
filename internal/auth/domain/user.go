package domain

import "time"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusDeleted:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string // stored lowercased
	PasswordHash string // argon2id PHC string
	IsAdmin      bool
	Status       UserStatus
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// BinanceTokenHash is the argon2id hash of the user's exchange API
	// token. The token itself is never stored.
	BinanceTokenHash *string
}

// IsActive reports whether the user may log in or refresh.
func (u User) IsActive() bool { return u.Status == UserStatusActive }

// UserPublic is the projection of User that is safe to return to clients.
type UserPublic struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"is_admin"`
	Status    UserStatus `json:"status"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	HasBinanceToken bool `json:"has_binance_token"`
}

func (u User) Public() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		Status:    u.Status,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,

		HasBinanceToken: u.BinanceTokenHash != nil,
	}
}
