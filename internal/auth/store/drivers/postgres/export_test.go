package postgres

import "context"

// Truncate empties every table so subtests share one container.
func Truncate(ctx context.Context, s *Store) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE access_logs, login_attempts, refresh_tokens, users`)
	return err
}
