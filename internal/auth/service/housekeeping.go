package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/nexus/internal/auth/store"
)

// LoginAttemptRetention is how long login attempts are kept.
const LoginAttemptRetention = 30 * 24 * time.Hour

// HousekeepingService periodically deletes stale refresh tokens and old
// login attempts.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// RefreshRetention is how long expired or revoked refresh tokens are
	// kept before deletion.
	RefreshRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(
	st store.Store,
	logger *slog.Logger,
	interval, refreshRetention time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:            st,
		Logger:           logger,
		Interval:         interval,
		RefreshRetention: refreshRetention,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start runs cleanup immediately and then on every tick until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background(), time.Now().UTC())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now().UTC())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Each deletion is independent; a failure in one
// does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) {
	tokens, err := s.Store.RefreshTokens().DeleteStaleRefreshTokens(ctx, now.Add(-s.RefreshRetention))
	if err != nil {
		s.Logger.Error("failed to delete stale refresh tokens", "error", err)
	}

	attempts, err := s.Store.LoginAttempts().DeleteLoginAttemptsBefore(ctx, now.Add(-LoginAttemptRetention))
	if err != nil {
		s.Logger.Error("failed to delete old login attempts", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"refresh_tokens_deleted", tokens,
		"login_attempts_deleted", attempts,
	)
}
