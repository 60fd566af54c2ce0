// Package league implements the authoritative in-memory state store for the
// club league: the player roster, the match state machine, the betting
// ledger and ELO bookkeeping.
//
// The aggregate has a single writer. Every action is applied as one atomic,
// synchronous transition behind a mutex; rejected actions return a domain
// sentinel error and leave the aggregate observably unchanged. There is no
// partial visibility of an in-flight transition.
package league

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/elo"
	"github.com/edevrim/pingpong/internal/metrics"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// errNoop marks a transition that is defined as a silent no-op (e.g. acting
// on an already-terminal match). apply() reports success without notifying
// listeners, since nothing changed.
var errNoop = errors.New("no-op")

// ──────────────────────────────────────────────────────────────────────────────
// Store
// ──────────────────────────────────────────────────────────────────────────────

// Store owns the aggregate and serialises all mutations. Readers receive
// deep copies. Time is taken from an injected clock so the betting window
// and timestamps are testable.
type Store struct {
	mu    sync.RWMutex
	state State

	cfg   config.LeagueConfig
	clock clockwork.Clock

	// onChange listeners run after a successful transition with a clone of
	// the new aggregate. Register them all before the store starts serving.
	onChange []func(State)
}

// NewStore creates an empty store.
func NewStore(cfg config.LeagueConfig, clock clockwork.Clock) *Store {
	return &Store{cfg: cfg, clock: clock}
}

// OnChange registers a listener invoked (synchronously, outside the lock)
// with a snapshot clone after every applied transition. Not safe to call
// concurrently with actions.
func (s *Store) OnChange(fn func(State)) {
	s.onChange = append(s.onChange, fn)
}

// Restore replaces the aggregate wholesale with persisted data, typically at
// boot. The live-match back-reference is not part of the persisted document;
// it is re-derived as the most recently started match still in progress.
func (s *Store) Restore(players []domain.Player, matches []domain.Match, bets []domain.Bet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Players: players, Matches: matches, Bets: bets}
	s.state.CurrentMatchID = uuid.Nil
	var latest *domain.Match
	for i := range s.state.Matches {
		m := &s.state.Matches[i]
		if !m.IsInProgress() || m.StartTime == nil {
			continue
		}
		if latest == nil || m.StartTime.After(*latest.StartTime) {
			latest = m
		}
	}
	if latest != nil {
		s.state.CurrentMatchID = latest.ID
	}
}

// apply runs one transition under the write lock. On success it bumps the
// applied counter and fans the cloned aggregate out to listeners.
func (s *Store) apply(action string, fn func(st *State) error) error {
	s.mu.Lock()
	err := fn(&s.state)
	var snap State
	if err == nil {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		metrics.ActionRejected(action)
		return err
	}
	metrics.ActionApplied(action)
	for _, fn := range s.onChange {
		fn(snap)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Player lifecycle
// ──────────────────────────────────────────────────────────────────────────────

// AddPlayer appends a new roster player with rating-engine defaults.
// The trimmed name must not match an existing player's name
// case-insensitively.
func (s *Store) AddPlayer(name string) (domain.Player, error) {
	var created domain.Player
	err := s.apply("add_player", func(st *State) error {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return domain.ErrNameRequired
		}
		for i := range st.Players {
			if st.Players[i].NameEquals(trimmed) {
				return domain.ErrNameTaken
			}
		}
		created = elo.NewPlayer(trimmed, s.clock.Now().UTC())
		st.Players = append(st.Players, created)
		return nil
	})
	return created, err
}

// RemovePlayer deletes a player from the roster and cascades in the same
// transition: the player's pending and in-progress matches are cancelled,
// active bets on those matches or placed by the player are cancelled (with
// the escrowed stake refunded to bettors still on the roster), and the
// live-match back-reference is cleared if it pointed at one of the player's
// matches. No partial application is observable.
func (s *Store) RemovePlayer(playerID uuid.UUID) error {
	return s.apply("delete_player", func(st *State) error {
		idx := st.playerIndex(playerID)
		if idx < 0 {
			return domain.ErrPlayerNotFound
		}

		// Cancel the player's open matches. Outcome fields stay unset.
		cancelled := make(map[uuid.UUID]bool)
		for i := range st.Matches {
			m := &st.Matches[i]
			if m.Involves(playerID) && !m.IsTerminal() {
				m.Status = domain.MatchCancelled
				cancelled[m.ID] = true
			}
		}

		// Cancel active bets on those matches, and any active bet the player
		// placed elsewhere. Stakes go back to bettors who still exist; the
		// removed player's own stakes vanish with them.
		for i := range st.Bets {
			b := &st.Bets[i]
			if !b.IsActive() {
				continue
			}
			if !cancelled[b.MatchID] && b.BettorID != playerID {
				continue
			}
			b.Status = domain.BetCancelled
			if b.BettorID != playerID {
				if j := st.playerIndex(b.BettorID); j >= 0 {
					st.Players[j].BettingPool += b.Points
				}
			}
		}

		if st.CurrentMatchID != uuid.Nil {
			if i := st.matchIndex(st.CurrentMatchID); i >= 0 && st.Matches[i].Involves(playerID) {
				st.CurrentMatchID = uuid.Nil
			}
		}

		st.Players = append(st.Players[:idx], st.Players[idx+1:]...)
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Match state machine
// ──────────────────────────────────────────────────────────────────────────────

// CreateMatch records a pending match between two roster players. Both
// players are embedded by value, so the match keeps era-appropriate ratings
// forever. The store does not reject player1 == player2; callers are
// expected to not pair a player with themselves.
func (s *Store) CreateMatch(player1ID, player2ID uuid.UUID) (domain.Match, error) {
	var created domain.Match
	err := s.apply("create_match", func(st *State) error {
		p1, ok := st.Player(player1ID)
		if !ok {
			return domain.ErrPlayerNotFound
		}
		p2, ok := st.Player(player2ID)
		if !ok {
			return domain.ErrPlayerNotFound
		}
		created = domain.Match{
			ID:      uuid.New(),
			Player1: p1,
			Player2: p2,
			Status:  domain.MatchPending,
		}
		st.Matches = append(st.Matches, created)
		return nil
	})
	return created, err
}

// StartMatch moves a pending match to in-progress, stamps its start time and
// makes it the current match. A match that is not pending is left untouched.
//
// Starting a match while another is already current silently overwrites the
// back-reference; the earlier match stays in the history but loses its
// "current" marker. Kept as-is pending a product decision.
func (s *Store) StartMatch(matchID uuid.UUID) error {
	return s.apply("start_match", func(st *State) error {
		i := st.matchIndex(matchID)
		if i < 0 {
			return domain.ErrMatchNotFound
		}
		m := &st.Matches[i]
		if m.Status != domain.MatchPending {
			return errNoop
		}
		now := s.clock.Now().UTC()
		m.Status = domain.MatchInProgress
		m.StartTime = &now
		st.CurrentMatchID = m.ID
		return nil
	})
}

// CompleteMatch finishes a match: it resolves the winner, applies rating
// deltas and win/loss counters to the live roster, settles every active bet
// on the match, and clears the current-match back-reference — all in one
// transition. Terminal matches are silent no-ops.
//
// winnerID is expected to be one of the match's two players; anything else
// resolves to player2 (callers validate, the store only distinguishes
// "player1 or not").
//
// Rating deltas are computed from the LIVE roster ratings, not the ratings
// snapshotted at match creation, so results between creation and completion
// are reflected.
func (s *Store) CompleteMatch(matchID, winnerID uuid.UUID) error {
	return s.apply("complete_match", func(st *State) error {
		mi := st.matchIndex(matchID)
		if mi < 0 {
			return domain.ErrMatchNotFound
		}
		m := &st.Matches[mi]
		if m.IsTerminal() {
			return errNoop
		}

		player1Won := m.Player1.ID == winnerID

		// Live ratings; fall back to the creation snapshot for a participant
		// no longer on the roster (their matches are normally cancelled by
		// the removal cascade, so this is purely defensive).
		i1 := st.playerIndex(m.Player1.ID)
		i2 := st.playerIndex(m.Player2.ID)
		elo1, elo2 := m.Player1.Elo, m.Player2.Elo
		if i1 >= 0 {
			elo1 = st.Players[i1].Elo
		}
		if i2 >= 0 {
			elo2 = st.Players[i2].Elo
		}

		change := elo.CalculateChange(elo1, elo2, player1Won)
		if i1 >= 0 {
			st.Players[i1] = elo.UpdateStats(st.Players[i1], player1Won, change.Player1Change)
		}
		if i2 >= 0 {
			st.Players[i2] = elo.UpdateStats(st.Players[i2], !player1Won, change.Player2Change)
		}

		// Winner/Loser carry the players as they stand right after this
		// match: snapshot plus final stats.
		final1, final2 := m.Player1, m.Player2
		if i1 >= 0 {
			final1 = st.Players[i1]
		}
		if i2 >= 0 {
			final2 = st.Players[i2]
		}

		now := s.clock.Now().UTC()
		m.Status = domain.MatchCompleted
		m.EndTime = &now
		m.EloChanges = &domain.EloChanges{
			Player1Change: change.Player1Change,
			Player2Change: change.Player2Change,
		}
		if player1Won {
			m.Winner, m.Loser = &final1, &final2
		} else {
			m.Winner, m.Loser = &final2, &final1
		}

		settleBets(st, m.ID, m.Winner.ID)

		if st.CurrentMatchID == m.ID {
			st.CurrentMatchID = uuid.Nil
		}
		return nil
	})
}

// CancelMatch voids a pending or in-progress match. Terminal matches are
// silent no-ops, which makes cancellation idempotent.
//
// Unlike player removal, cancelling a match does NOT cascade to its bets:
// they stay active and settle as lost/won only if the match is somehow
// completed, or are cancelled later by a player-removal cascade. Kept as-is
// pending a product decision.
func (s *Store) CancelMatch(matchID uuid.UUID) error {
	return s.apply("cancel_match", func(st *State) error {
		i := st.matchIndex(matchID)
		if i < 0 {
			return domain.ErrMatchNotFound
		}
		m := &st.Matches[i]
		if m.IsTerminal() {
			return errNoop
		}
		m.Status = domain.MatchCancelled
		if st.CurrentMatchID == m.ID {
			st.CurrentMatchID = uuid.Nil
		}
		return nil
	})
}

// SetCurrentMatch manually points the live-match back-reference at a match,
// or clears it when given uuid.Nil. The target must exist; no status check
// is applied beyond that.
func (s *Store) SetCurrentMatch(matchID uuid.UUID) error {
	return s.apply("set_current_match", func(st *State) error {
		if matchID == uuid.Nil {
			st.CurrentMatchID = uuid.Nil
			return nil
		}
		if st.matchIndex(matchID) < 0 {
			return domain.ErrMatchNotFound
		}
		st.CurrentMatchID = matchID
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Betting ledger
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBet escrows a stake against a live match. The odds are computed from
// the participants' live ratings and frozen into the bet. Rejections:
// unknown match or bettor, match not in progress, stake above the maximum,
// stake above the bettor's pool.
//
// The minimum stake and the real-time betting window are enforced by the
// HTTP layer before dispatch; the store itself only checks that the match is
// still in progress.
func (s *Store) PlaceBet(matchID, bettorID, predictedWinnerID uuid.UUID, points int) (domain.Bet, error) {
	var created domain.Bet
	err := s.apply("place_bet", func(st *State) error {
		mi := st.matchIndex(matchID)
		if mi < 0 {
			return domain.ErrMatchNotFound
		}
		m := &st.Matches[mi]
		if !m.IsInProgress() {
			return domain.ErrMatchNotOpen
		}
		bi := st.playerIndex(bettorID)
		if bi < 0 {
			return domain.ErrPlayerNotFound
		}
		if points > s.cfg.MaxBetPoints {
			return domain.ErrBetTooLarge
		}
		if points > st.Players[bi].BettingPool {
			return domain.ErrInsufficientPool
		}

		elo1, elo2 := m.Player1.Elo, m.Player2.Elo
		if i := st.playerIndex(m.Player1.ID); i >= 0 {
			elo1 = st.Players[i].Elo
		}
		if i := st.playerIndex(m.Player2.ID); i >= 0 {
			elo2 = st.Players[i].Elo
		}

		created = domain.Bet{
			ID:                uuid.New(),
			MatchID:           matchID,
			BettorID:          bettorID,
			PredictedWinnerID: predictedWinnerID,
			Points:            points,
			Odds:              domain.OddsForRatings(elo1, elo2),
			Status:            domain.BetActive,
			PlacedAt:          s.clock.Now().UTC(),
		}

		st.Players[bi].BetsPlaced++
		st.Players[bi].BettingPool -= points
		st.Bets = append(st.Bets, created)
		return nil
	})
	return created, err
}

// settleBets resolves every active bet on a completed match in the same
// transition as the completion itself. Winning bets pay round(points×odds)
// — stake included — back into the bettor's pool; losing stakes were already
// escrowed at placement and are not refunded.
func settleBets(st *State, matchID, winnerID uuid.UUID) {
	for i := range st.Bets {
		b := &st.Bets[i]
		if b.MatchID != matchID || !b.IsActive() {
			continue
		}
		if b.PredictedWinnerID != winnerID {
			b.Status = domain.BetLost
			continue
		}
		earned := b.Payout()
		b.Status = domain.BetWon
		b.PointsEarned = &earned
		if j := st.playerIndex(b.BettorID); j >= 0 {
			st.Players[j].BetsWon++
			st.Players[j].TotalPointsEarned += earned
			st.Players[j].BettingPool += earned
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────────────────────────────────

// Snapshot returns a deep copy of the whole aggregate.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Player returns a roster player by id.
func (s *Store) Player(id uuid.UUID) (domain.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Player(id)
}

// Match returns a match by id.
func (s *Store) Match(id uuid.UUID) (domain.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Match(id)
}

// CurrentMatch returns the live match, if any.
func (s *Store) CurrentMatch() (domain.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentMatch()
}

// BettingWindow returns the configured real-time betting window.
func (s *Store) BettingWindow() time.Duration {
	return s.cfg.BettingWindow
}
