// Package scheduler runs the background loops around the league store:
//  1. liveMatchLoop – broadcasts the betting-window countdown every second
//     while a match is in progress.
//  2. autosaveLoop  – periodically flushes the snapshot saver as a safety
//     net in addition to its change-driven writes.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/edevrim/pingpong/internal/league"
	"github.com/edevrim/pingpong/internal/ws"
	"github.com/jonboulle/clockwork"
)

// Hub is the broadcast surface the scheduler needs from the WebSocket hub.
type Hub interface {
	BroadcastLiveMatch(msg ws.LiveMatchMessage)
}

// Flusher is the persistence surface the scheduler needs from the saver.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Scheduler drives the periodic loops. Call Start(ctx) once from main();
// cancel the context to shut it down.
type Scheduler struct {
	store            *league.Store
	hub              Hub
	saver            Flusher
	autosaveInterval time.Duration
	clock            clockwork.Clock
	log              *slog.Logger
}

// New creates a Scheduler.
func New(store *league.Store, hub Hub, saver Flusher, autosaveInterval time.Duration, clock clockwork.Clock, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:            store,
		hub:              hub,
		saver:            saver,
		autosaveInterval: autosaveInterval,
		clock:            clock,
		log:              log,
	}
}

// Start launches the background loops. It returns immediately; the loops
// run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.liveMatchLoop(ctx)
	go s.autosaveLoop(ctx)
	s.log.Info("scheduler started")
}

// liveMatchLoop ticks once per second and, while a match is live, pushes the
// match plus the remaining betting window to all WebSocket clients.
func (s *Scheduler) liveMatchLoop(ctx context.Context) {
	ticker := s.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		match, ok := s.store.CurrentMatch()
		if !ok || !match.IsInProgress() {
			continue
		}

		msg := ws.LiveMatchMessage{Match: match}
		if closesAt, started := match.BettingClosesAt(s.store.BettingWindow()); started {
			remaining := closesAt.Sub(s.clock.Now())
			if remaining > 0 {
				msg.BettingOpen = true
				msg.BettingClosesIn = int64(remaining.Seconds())
			}
		}

		snap := s.store.Snapshot()
		for i := range snap.Bets {
			if snap.Bets[i].MatchID == match.ID && snap.Bets[i].IsActive() {
				msg.ActiveBets++
				msg.TotalPointsStaked += snap.Bets[i].Points
			}
		}

		s.hub.BroadcastLiveMatch(msg)
	}
}

// autosaveLoop flushes the saver on a fixed interval. Change-driven saves
// normally win the race; this loop only matters when a save previously
// failed and needs a retry.
func (s *Scheduler) autosaveLoop(ctx context.Context) {
	ticker := s.clock.NewTicker(s.autosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := s.saver.Flush(ctx); err != nil {
				s.log.Warn("autosave flush failed", "err", err)
			}
		}
	}
}
