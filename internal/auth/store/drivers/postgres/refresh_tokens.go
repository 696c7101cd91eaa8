package postgres

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
	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.DeviceFingerprint, &t.IPAddress,
		&t.UserAgent, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	created := createdOrNow(t.CreatedAt)
	_, err := r.db.Exec(ctx,
		`INSERT INTO refresh_tokens (`+refreshTokenColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		t.ID, t.UserID, t.TokenHash, t.DeviceFingerprint, t.IPAddress, t.UserAgent,
		t.ExpiresAt.UTC(), t.Revoked, created,
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	return scanRefreshToken(r.db.QueryRow(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = $1`, hash))
}

func (r *refreshTokensRepo) ConsumeRefreshToken(
	ctx context.Context,
	hash, fingerprint string,
	now time.Time,
) (domain.RefreshToken, error) {
	return scanRefreshToken(r.db.QueryRow(ctx, `
		UPDATE refresh_tokens
		   SET is_revoked = TRUE, updated_at = $3
		 WHERE token_hash = $1
		   AND device_fingerprint = $2
		   AND is_revoked = FALSE
		   AND expires_at > $3
		RETURNING `+refreshTokenColumns,
		hash, fingerprint, now.UTC()))
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = NOW() WHERE token_hash = $1 AND is_revoked = FALSE`,
		hash)
	return err
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET is_revoked = TRUE, updated_at = $2 WHERE user_id = $1 AND is_revoked = FALSE AND expires_at > $2`,
		userID, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *refreshTokensRepo) HasActiveRefreshToken(ctx context.Context, userID string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			 WHERE user_id = $1 AND is_revoked = FALSE AND expires_at > $2
		)`, userID, now.UTC()).Scan(&exists)
	return exists, err
}

func (r *refreshTokensRepo) DeleteStaleRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1 OR (is_revoked AND updated_at < $1)`,
		before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
