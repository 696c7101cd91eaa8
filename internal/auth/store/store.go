package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped
// Store hands out the same repos bound to the transaction.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	LoginAttempts() LoginAttempts
	AccessLogs() AccessLogs

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// back, nil commits.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised (lowercased) email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. A duplicate email is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdateStatus(ctx context.Context, userID string, status domain.UserStatus) error

	// SetBinanceTokenHash stores hash, or clears the token when hash is nil.
	SetBinanceTokenHash(ctx context.Context, userID string, hash *string) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ConsumeRefreshToken revokes the token matching hash and fingerprint if it
	// is neither revoked nor expired at now, and returns the row as it was
	// before revocation. It is a single conditional update, so of several
	// concurrent callers exactly one succeeds. Anything else is ErrNotFound.
	ConsumeRefreshToken(ctx context.Context, hash, fingerprint string, now time.Time) (domain.RefreshToken, error)

	// RevokeRefreshToken flips is_revoked. Unknown hashes are not an error.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens revokes every token of a user that is live
	// at now and returns how many were revoked. Expired rows are left to
	// housekeeping.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error)

	HasActiveRefreshToken(ctx context.Context, userID string, now time.Time) (bool, error)

	// DeleteStaleRefreshTokens removes tokens that expired before the cutoff
	// and revoked tokens last touched before it.
	DeleteStaleRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

type LoginAttempts interface {
	RecordLoginAttempt(ctx context.Context, a domain.LoginAttempt) error

	// ListLoginAttempts returns the newest attempts for email first.
	ListLoginAttempts(ctx context.Context, email string, limit int) ([]domain.LoginAttempt, error)

	DeleteLoginAttemptsBefore(ctx context.Context, before time.Time) (int64, error)
}

type AccessLogs interface {
	AppendAccessLog(ctx context.Context, l domain.AccessLog) error

	// ListAccessLogs returns the newest records first.
	ListAccessLogs(ctx context.Context, limit int) ([]domain.AccessLog, error)
}
