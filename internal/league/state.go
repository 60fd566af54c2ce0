package league

import (
	"github.com/edevrim/pingpong/internal/domain"
	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// State — the application aggregate
// ──────────────────────────────────────────────────────────────────────────────

// State is the whole league aggregate: the roster, the append-only match and
// bet histories, and a weak back-reference to the live match.
//
// Matches and bets are never deleted; they only reach a terminal status.
// CurrentMatchID is uuid.Nil when no match is live. It is a back-reference
// only — ownership of every match stays with the Matches slice, and the field
// is not part of the persisted document.
type State struct {
	Players        []domain.Player
	Matches        []domain.Match
	Bets           []domain.Bet
	CurrentMatchID uuid.UUID
}

// Clone returns a deep copy of the aggregate. Listeners and readers get
// clones so no caller can reach into the store's mutable state.
func (s *State) Clone() State {
	c := State{CurrentMatchID: s.CurrentMatchID}
	if s.Players != nil {
		c.Players = make([]domain.Player, len(s.Players))
		copy(c.Players, s.Players)
	}
	if s.Matches != nil {
		c.Matches = make([]domain.Match, len(s.Matches))
		for i := range s.Matches {
			c.Matches[i] = s.Matches[i].Clone()
		}
	}
	if s.Bets != nil {
		c.Bets = make([]domain.Bet, len(s.Bets))
		for i := range s.Bets {
			c.Bets[i] = s.Bets[i].Clone()
		}
	}
	return c
}

// playerIndex returns the roster index of the given player, or -1.
func (s *State) playerIndex(id uuid.UUID) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// matchIndex returns the index of the given match, or -1.
func (s *State) matchIndex(id uuid.UUID) int {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return i
		}
	}
	return -1
}

// Player looks up a roster player by id.
func (s *State) Player(id uuid.UUID) (domain.Player, bool) {
	if i := s.playerIndex(id); i >= 0 {
		return s.Players[i], true
	}
	return domain.Player{}, false
}

// Match looks up a match by id.
func (s *State) Match(id uuid.UUID) (domain.Match, bool) {
	if i := s.matchIndex(id); i >= 0 {
		return s.Matches[i].Clone(), true
	}
	return domain.Match{}, false
}

// CurrentMatch resolves the live-match back-reference.
func (s *State) CurrentMatch() (domain.Match, bool) {
	if s.CurrentMatchID == uuid.Nil {
		return domain.Match{}, false
	}
	return s.Match(s.CurrentMatchID)
}
