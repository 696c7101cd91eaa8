package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/nexus/internal/auth/domain"
)

type accessLogsRepo struct {
	db dbtx
}

func (r *accessLogsRepo) AppendAccessLog(ctx context.Context, l domain.AccessLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_logs
			(id, endpoint, method, requester_id, target_id, ip_address, user_agent, status_code, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Endpoint, l.Method, l.RequesterID, stringOrNull(l.TargetID), l.IPAddress,
		l.UserAgent, l.StatusCode, l.LatencyMS, createdOrNow(l.CreatedAt),
	)
	return err
}

func (r *accessLogsRepo) ListAccessLogs(ctx context.Context, limit int) ([]domain.AccessLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, endpoint, method, requester_id, target_id, ip_address, user_agent, status_code, latency_ms, created_at
		  FROM access_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AccessLog
	for rows.Next() {
		var (
			l       domain.AccessLog
			target  sql.NullString
			created int64
		)
		if err := rows.Scan(&l.ID, &l.Endpoint, &l.Method, &l.RequesterID, &target, &l.IPAddress,
			&l.UserAgent, &l.StatusCode, &l.LatencyMS, &created); err != nil {
			return nil, err
		}
		l.TargetID = nullString(target)
		l.CreatedAt = fromMillis(created)
		out = append(out, l)
	}
	return out, rows.Err()
}
