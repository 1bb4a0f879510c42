package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/firegate/internal/gateway/store"
)

// KeyRotator swaps in a fresh session signing key and returns its kid.
type KeyRotator interface {
	Rotate() (string, error)
}

// HousekeepingService periodically deletes expired sessions and pending
// password changes so the tables do not grow without bound. When Keys and
// RotationInterval are set it also rotates the session signing keys.
type HousekeepingService struct {
	Store    store.Store
	Sessions store.Sessions
	Logger   *slog.Logger
	Interval time.Duration

	Keys             KeyRotator
	RotationInterval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. A non-positive interval
// defaults to one hour; a nil sessions registry uses the store's.
func NewHousekeepingService(st store.Store, sessions store.Sessions, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if sessions == nil {
		sessions = st.Sessions()
	}

	return &HousekeepingService{
		Store:    st,
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		"interval", s.Interval,
		"key_rotation_interval", s.RotationInterval,
	)
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

	// A nil channel never fires, which leaves rotation off.
	var rotate <-chan time.Time
	if s.Keys != nil && s.RotationInterval > 0 {
		rotation := time.NewTicker(s.RotationInterval)
		defer rotation.Stop()
		rotate = rotation.C
	}

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-rotate:
			s.RotateKeys()
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one pass. Failures are logged and do not stop the other
// deletions.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := time.Now()

	sessions, err := s.Sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
	}

	changes, err := s.Store.PasswordChanges().DeleteExpiredPasswordChanges(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired password changes", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"sessions_deleted", sessions,
		"password_changes_deleted", changes,
	)
}

// RotateKeys retires the oldest signing key in favour of a new one. Sessions
// signed with the retired key keep verifying until they expire.
func (s *HousekeepingService) RotateKeys() {
	if s.Keys == nil {
		return
	}
	kid, err := s.Keys.Rotate()
	if err != nil {
		s.Logger.Error("failed to rotate session signing key", "error", err)
		return
	}
	s.Logger.Info("session signing key rotated", "kid", kid)
}
