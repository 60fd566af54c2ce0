package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/edevrim/pingpong/internal/league"
	"github.com/edevrim/pingpong/internal/metrics"
	"github.com/jonboulle/clockwork"
)

// Saver throttles snapshot writes: at most one save per minInterval, with a
// trailing save for updates that arrive inside the window. Updates are
// latest-wins — only the newest pending snapshot is ever written, so a burst
// of actions collapses into a single write.
//
// Wire Notify as a store OnChange listener and run Run in its own goroutine.
type Saver struct {
	backend     SnapshotStore
	minInterval time.Duration
	clock       clockwork.Clock
	log         *slog.Logger

	mu       sync.Mutex
	pending  *Snapshot
	lastSave time.Time

	kick chan struct{}
}

// NewSaver creates a Saver writing through the given backend.
func NewSaver(backend SnapshotStore, minInterval time.Duration, clock clockwork.Clock, log *slog.Logger) *Saver {
	return &Saver{
		backend:     backend,
		minInterval: minInterval,
		clock:       clock,
		log:         log,
		kick:        make(chan struct{}, 1),
	}
}

// Notify stages the new aggregate for persistence. Cheap and non-blocking;
// safe to call from the store's change listener.
func (s *Saver) Notify(st league.State) {
	snap := FromState(st, s.clock.Now().UTC())

	s.mu.Lock()
	s.pending = snap
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default: // a kick is already queued; the pending snapshot was replaced above
	}
}

// Run consumes staged snapshots until ctx is cancelled, then flushes one
// last time so shutdown never loses the newest state.
func (s *Saver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.Flush(context.Background())
			return
		case <-s.kick:
			if wait := s.throttleRemaining(); wait > 0 {
				s.log.Debug("snapshot save throttled", "wait", wait)
				select {
				case <-ctx.Done():
					s.Flush(context.Background())
					return
				case <-s.clock.After(wait):
				}
			}
			s.Flush(ctx)
		}
	}
}

// Flush writes the pending snapshot, if any. On failure the snapshot is
// re-staged (unless a newer one arrived meanwhile) so the next kick retries.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	snap := s.pending
	s.pending = nil
	s.mu.Unlock()

	if snap == nil {
		return nil
	}

	if err := s.backend.Save(ctx, snap); err != nil {
		metrics.SnapshotSaveFailed()
		s.log.Error("snapshot save failed", "err", err)
		s.mu.Lock()
		if s.pending == nil {
			s.pending = snap
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.lastSave = s.clock.Now()
	s.mu.Unlock()
	metrics.SnapshotSaved()
	s.log.Debug("snapshot saved", "players", len(snap.Players), "matches", len(snap.Matches), "bets", len(snap.Bets))
	return nil
}

func (s *Saver) throttleRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSave.IsZero() {
		return 0
	}
	return s.minInterval - s.clock.Since(s.lastSave)
}
