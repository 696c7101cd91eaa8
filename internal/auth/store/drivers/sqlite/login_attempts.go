package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

type loginAttemptsRepo struct {
	db dbtx
}

func (r *loginAttemptsRepo) RecordLoginAttempt(ctx context.Context, a domain.LoginAttempt) error {
	var reason sql.NullString
	if a.FailureReason != "" {
		reason = sql.NullString{String: a.FailureReason, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts
			(id, email, ip_address, user_agent, device_fingerprint, success, failure_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.IPAddress, a.UserAgent, a.DeviceFingerprint, a.Success, reason,
		createdOrNow(a.CreatedAt),
	)
	return err
}

func (r *loginAttemptsRepo) ListLoginAttempts(ctx context.Context, email string, limit int) ([]domain.LoginAttempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, ip_address, user_agent, device_fingerprint, success, failure_reason, created_at
		  FROM login_attempts
		 WHERE email = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoginAttempt
	for rows.Next() {
		var (
			a       domain.LoginAttempt
			reason  sql.NullString
			created int64
		)
		if err := rows.Scan(&a.ID, &a.Email, &a.IPAddress, &a.UserAgent, &a.DeviceFingerprint,
			&a.Success, &reason, &created); err != nil {
			return nil, err
		}
		a.FailureReason = reason.String
		a.CreatedAt = fromMillis(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *loginAttemptsRepo) DeleteLoginAttemptsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
