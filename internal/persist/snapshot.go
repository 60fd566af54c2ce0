// Package persist saves and loads the league aggregate as a single JSON
// document. The document shape is a stable contract shared with older
// deployments:
//
//	{"players": [...], "matches": [...], "bets": [...], "lastSaved": "ISO-8601"}
//
// Arrays may be absent on legacy documents and default to empty on load.
// The aggregate's live-match back-reference is deliberately not persisted;
// the store re-derives it on restore.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/league"
)

// Snapshot is the persisted document. All entities are plain data with no
// cyclic references (matches embed player copies by value), so a round-trip
// reconstructs the aggregate field for field.
type Snapshot struct {
	Players   []domain.Player `json:"players"`
	Matches   []domain.Match  `json:"matches"`
	Bets      []domain.Bet    `json:"bets"`
	LastSaved time.Time       `json:"lastSaved"`
}

// FromState builds a snapshot from an aggregate clone.
func FromState(st league.State, savedAt time.Time) *Snapshot {
	s := &Snapshot{
		Players:   st.Players,
		Matches:   st.Matches,
		Bets:      st.Bets,
		LastSaved: savedAt,
	}
	s.Normalize()
	return s
}

// Normalize replaces nil collections with empty ones so legacy documents
// (and zero-value snapshots) always expose the full contract.
func (s *Snapshot) Normalize() {
	if s.Players == nil {
		s.Players = []domain.Player{}
	}
	if s.Matches == nil {
		s.Matches = []domain.Match{}
	}
	if s.Bets == nil {
		s.Bets = []domain.Bet{}
	}
}

// SnapshotStore is the blob-storage collaborator. Load returns (nil, nil)
// when no document has been saved yet.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// LoadInto loads the persisted document (if any) and restores the store from
// it. Returns the loaded snapshot, or nil when none exists yet.
func LoadInto(ctx context.Context, backend SnapshotStore, store *league.Store) (*Snapshot, error) {
	snap, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	snap.Normalize()
	store.Restore(snap.Players, snap.Matches, snap.Bets)
	return snap, nil
}

// New builds the SnapshotStore selected by the configuration.
func New(cfg config.StorageConfig) (SnapshotStore, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.FilePath), nil
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey), nil
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("persist: unknown storage backend %q", cfg.Backend)
	}
}
