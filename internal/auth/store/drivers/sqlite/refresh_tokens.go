package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

const refreshTokenColumns = `id, user_id, token_hash, device_fingerprint, ip_address, user_agent, expires_at, is_revoked, created_at, updated_at`

type refreshTokensRepo struct {
	db dbtx
}

func scanRefreshToken(row interface{ Scan(...any) error }) (domain.RefreshToken, error) {
	var (
		t                         domain.RefreshToken
		expires, created, updated int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.DeviceFingerprint, &t.IPAddress,
		&t.UserAgent, &expires, &t.Revoked, &created, &updated)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = fromMillis(expires)
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	created := createdOrNow(t.CreatedAt)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (`+refreshTokenColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.DeviceFingerprint, t.IPAddress, t.UserAgent,
		toMillis(t.ExpiresAt), t.Revoked, created, created,
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	return scanRefreshToken(r.db.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash))
}

func (r *refreshTokensRepo) ConsumeRefreshToken(
	ctx context.Context,
	hash, fingerprint string,
	now time.Time,
) (domain.RefreshToken, error) {
	t, err := scanRefreshToken(r.db.QueryRowContext(ctx, `
		UPDATE refresh_tokens
		   SET is_revoked = 1, updated_at = ?
		 WHERE token_hash = ?
		   AND device_fingerprint = ?
		   AND is_revoked = 0
		   AND expires_at > ?
		RETURNING `+refreshTokenColumns,
		toMillis(now), hash, fingerprint, toMillis(now)))
	if err != nil {
		return domain.RefreshToken{}, err
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_revoked = 1, updated_at = ? WHERE token_hash = ? AND is_revoked = 0`,
		nowMillis(), hash)
	return err
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_revoked = 1, updated_at = ? WHERE user_id = ? AND is_revoked = 0 AND expires_at > ?`,
		toMillis(now), userID, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) HasActiveRefreshToken(ctx context.Context, userID string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			 WHERE user_id = ? AND is_revoked = 0 AND expires_at > ?
		)`, userID, toMillis(now)).Scan(&exists)
	return exists, err
}

func (r *refreshTokensRepo) DeleteStaleRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	cutoff := toMillis(before)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ? OR (is_revoked = 1 AND updated_at < ?)`,
		cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
