package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

type accessLogsRepo struct {
	db dbtx
}

func (r *accessLogsRepo) AppendAccessLog(ctx context.Context, l domain.AccessLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO access_logs
			(id, endpoint, method, requester_id, target_id, ip_address, user_agent, status_code, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.Endpoint, l.Method, l.RequesterID, l.TargetID, l.IPAddress,
		l.UserAgent, l.StatusCode, l.LatencyMS, createdOrNow(l.CreatedAt),
	)
	return err
}

func (r *accessLogsRepo) ListAccessLogs(ctx context.Context, limit int) ([]domain.AccessLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, endpoint, method, requester_id, target_id, ip_address, user_agent, status_code, latency_ms, created_at
		  FROM access_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccessLog, error) {
		var l domain.AccessLog
		err := row.Scan(&l.ID, &l.Endpoint, &l.Method, &l.RequesterID, &l.TargetID, &l.IPAddress,
			&l.UserAgent, &l.StatusCode, &l.LatencyMS, &l.CreatedAt)
		l.CreatedAt = l.CreatedAt.UTC()
		return l, err
	})
}
