package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

const userColumns = `id, email, password_hash, is_admin, status, last_login, created_at, updated_at, binance_token_hash`

type usersRepo struct {
	db dbtx
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u      domain.User
		status string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &status,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &u.BinanceTokenHash); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Status = domain.UserStatus(status)
	u.LastLogin = utcPtr(u.LastLogin)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	status := u.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	created := createdOrNow(u.CreatedAt)

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.IsAdmin, string(status), u.LastLogin, created, u.BinanceTokenHash,
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, newHash, userID))
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET last_login = $1, updated_at = NOW() WHERE id = $2`, at.UTC(), userID))
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), userID))
}

func (r *usersRepo) SetBinanceTokenHash(ctx context.Context, userID string, hash *string) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE users SET binance_token_hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID))
}
