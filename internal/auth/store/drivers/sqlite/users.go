package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

const userColumns = `id, email, password_hash, is_admin, status, last_login, created_at, updated_at, binance_token_hash`

type usersRepo struct {
	db dbtx
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u         domain.User
		status    string
		lastLogin sql.NullInt64
		created   int64
		updated   int64
		binance   sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &status, &lastLogin, &created, &updated, &binance); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Status = domain.UserStatus(status)
	u.LastLogin = nullMillis(lastLogin)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	if binance.Valid {
		u.BinanceTokenHash = &binance.String
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	status := u.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	created := createdOrNow(u.CreatedAt)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.IsAdmin, string(status),
		millisOrNull(u.LastLogin), created, created, u.BinanceTokenHash,
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, nowMillis(), userID))
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`,
		toMillis(at), nowMillis(), userID))
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), nowMillis(), userID))
}

func (r *usersRepo) SetBinanceTokenHash(ctx context.Context, userID string, hash *string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE users SET binance_token_hash = ?, updated_at = ? WHERE id = ?`,
		hash, nowMillis(), userID))
}
