package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

type loginAttemptsRepo struct {
	db dbtx
}

func (r *loginAttemptsRepo) RecordLoginAttempt(ctx context.Context, a domain.LoginAttempt) error {
	var reason *string
	if a.FailureReason != "" {
		reason = &a.FailureReason
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO login_attempts
			(id, email, ip_address, user_agent, device_fingerprint, success, failure_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Email, a.IPAddress, a.UserAgent, a.DeviceFingerprint, a.Success, reason,
		createdOrNow(a.CreatedAt),
	)
	return err
}

func (r *loginAttemptsRepo) ListLoginAttempts(ctx context.Context, email string, limit int) ([]domain.LoginAttempt, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, ip_address, user_agent, device_fingerprint, success, failure_reason, created_at
		  FROM login_attempts
		 WHERE email = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, email, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LoginAttempt, error) {
		var (
			a      domain.LoginAttempt
			reason *string
		)
		err := row.Scan(&a.ID, &a.Email, &a.IPAddress, &a.UserAgent, &a.DeviceFingerprint,
			&a.Success, &reason, &a.CreatedAt)
		if reason != nil {
			a.FailureReason = *reason
		}
		a.CreatedAt = a.CreatedAt.UTC()
		return a, err
	})
}

func (r *loginAttemptsRepo) DeleteLoginAttemptsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
