package league_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/elo"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func newStore() (*league.Store, *clockwork.FakeClock) {
	cfg := config.LeagueConfig{
		MinBetPoints:  10,
		MaxBetPoints:  100,
		BettingWindow: 30 * time.Second,
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return league.NewStore(cfg, clock), clock
}

func mustAddPlayer(t *testing.T, s *league.Store, name string) domain.Player {
	t.Helper()
	p, err := s.AddPlayer(name)
	if err != nil {
		t.Fatalf("AddPlayer(%q): %v", name, err)
	}
	return p
}

func mustCreateMatch(t *testing.T, s *league.Store, p1, p2 uuid.UUID) domain.Match {
	t.Helper()
	m, err := s.CreateMatch(p1, p2)
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Players
// ──────────────────────────────────────────────────────────────────────────────

func TestAddPlayerDefaults(t *testing.T) {
	s, clock := newStore()

	p := mustAddPlayer(t, s, "  Alice  ")

	if p.Name != "Alice" {
		t.Errorf("name = %q, want trimmed %q", p.Name, "Alice")
	}
	if p.Elo != elo.DefaultElo {
		t.Errorf("elo = %d, want %d", p.Elo, elo.DefaultElo)
	}
	if p.BettingPool != elo.StartingBettingPool {
		t.Errorf("bettingPool = %d, want %d", p.BettingPool, elo.StartingBettingPool)
	}
	if !p.CreatedAt.Equal(clock.Now().UTC()) {
		t.Errorf("createdAt = %v, want clock time %v", p.CreatedAt, clock.Now().UTC())
	}
	if p.Wins != 0 || p.Losses != 0 || p.TotalGames != 0 || p.BetsPlaced != 0 || p.BetsWon != 0 {
		t.Errorf("counters not zeroed: %+v", p)
	}
}

func TestAddPlayerRejectsDuplicateAndEmptyNames(t *testing.T) {
	s, _ := newStore()
	mustAddPlayer(t, s, "Bob")

	// Duplicate check is trimmed and case-insensitive.
	if _, err := s.AddPlayer("  bob "); !errors.Is(err, domain.ErrNameTaken) {
		t.Errorf("AddPlayer(dup) err = %v, want ErrNameTaken", err)
	}
	if _, err := s.AddPlayer("   "); !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("AddPlayer(blank) err = %v, want ErrNameRequired", err)
	}

	if got := len(s.Snapshot().Players); got != 1 {
		t.Errorf("roster size = %d after rejections, want 1", got)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Match lifecycle and ratings
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteMatchAppliesRatingsAndStats(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")

	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	if m.Status != domain.MatchPending {
		t.Fatalf("new match status = %q, want pending", m.Status)
	}
	if err := s.StartMatch(m.ID); err != nil {
		t.Fatalf("StartMatch: %v", err)
	}
	if err := s.CompleteMatch(m.ID, alice.ID); err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	// Equal 1200 ratings: winner +16, loser -16.
	gotAlice, _ := s.Player(alice.ID)
	gotBob, _ := s.Player(bob.ID)
	if gotAlice.Elo != 1216 {
		t.Errorf("winner elo = %d, want 1216", gotAlice.Elo)
	}
	if gotBob.Elo != 1184 {
		t.Errorf("loser elo = %d, want 1184", gotBob.Elo)
	}
	if gotAlice.Wins != 1 || gotAlice.Losses != 0 || gotAlice.TotalGames != 1 {
		t.Errorf("winner stats = %d/%d/%d, want 1/0/1", gotAlice.Wins, gotAlice.Losses, gotAlice.TotalGames)
	}
	if gotBob.Wins != 0 || gotBob.Losses != 1 || gotBob.TotalGames != 1 {
		t.Errorf("loser stats = %d/%d/%d, want 0/1/1", gotBob.Wins, gotBob.Losses, gotBob.TotalGames)
	}

	final, _ := s.Match(m.ID)
	if final.Status != domain.MatchCompleted {
		t.Errorf("status = %q, want completed", final.Status)
	}
	if final.Winner == nil || final.Winner.ID != alice.ID {
		t.Errorf("winner = %+v, want Alice", final.Winner)
	}
	if final.Winner.Elo != 1216 {
		t.Errorf("winner copy elo = %d, want post-match 1216", final.Winner.Elo)
	}
	if final.EloChanges == nil || final.EloChanges.Player1Change != 16 || final.EloChanges.Player2Change != -16 {
		t.Errorf("eloChanges = %+v, want +16/-16", final.EloChanges)
	}
	if final.EndTime == nil {
		t.Error("endTime not set")
	}

	// Completion clears the live-match marker.
	if _, ok := s.CurrentMatch(); ok {
		t.Error("currentMatch still set after completion")
	}
}

// Deltas must come from ratings at completion time, not the ratings embedded
// when the match was created.
func TestCompleteMatchUsesLiveRatings(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	carol := mustAddPlayer(t, s, "Carol")

	stale := mustCreateMatch(t, s, alice.ID, bob.ID) // snapshots 1200 vs 1200

	// Alice beats Carol first; her live rating moves to 1216.
	warmup := mustCreateMatch(t, s, alice.ID, carol.ID)
	s.StartMatch(warmup.ID)
	s.CompleteMatch(warmup.ID, alice.ID)

	s.StartMatch(stale.ID)
	if err := s.CompleteMatch(stale.ID, bob.ID); err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	want := elo.CalculateChange(1216, 1200, false)
	gotAlice, _ := s.Player(alice.ID)
	gotBob, _ := s.Player(bob.ID)
	if gotAlice.Elo != 1216+want.Player1Change {
		t.Errorf("alice elo = %d, want %d (live-rating delta %d)", gotAlice.Elo, 1216+want.Player1Change, want.Player1Change)
	}
	if gotBob.Elo != 1200+want.Player2Change {
		t.Errorf("bob elo = %d, want %d (live-rating delta %d)", gotBob.Elo, 1200+want.Player2Change, want.Player2Change)
	}
}

// A winner id that is not player1 resolves to a player2 win, even if it is
// not part of the match at all. Callers validate; the store only
// distinguishes "player1 or not".
func TestCompleteMatchUnknownWinnerFallsBackToPlayer2(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")

	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)
	if err := s.CompleteMatch(m.ID, uuid.New()); err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	final, _ := s.Match(m.ID)
	if final.Winner == nil || final.Winner.ID != bob.ID {
		t.Errorf("winner = %+v, want player2 (Bob)", final.Winner)
	}
}

func TestCompleteMatchTerminalIsNoop(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")

	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)
	s.CompleteMatch(m.ID, alice.ID)

	// Completing again (other winner) must change nothing.
	if err := s.CompleteMatch(m.ID, bob.ID); err != nil {
		t.Fatalf("second CompleteMatch err = %v, want nil no-op", err)
	}
	gotAlice, _ := s.Player(alice.ID)
	if gotAlice.Elo != 1216 || gotAlice.TotalGames != 1 {
		t.Errorf("stats changed by no-op completion: elo=%d games=%d", gotAlice.Elo, gotAlice.TotalGames)
	}
}

func TestStartMatchOverwritesCurrentMatch(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")

	m1 := mustCreateMatch(t, s, alice.ID, bob.ID)
	m2 := mustCreateMatch(t, s, bob.ID, alice.ID)
	s.StartMatch(m1.ID)
	s.StartMatch(m2.ID)

	current, ok := s.CurrentMatch()
	if !ok || current.ID != m2.ID {
		t.Errorf("currentMatch = %v, want the later-started match", current.ID)
	}
	// m1 keeps running; only the marker moved.
	got1, _ := s.Match(m1.ID)
	if !got1.IsInProgress() {
		t.Errorf("m1 status = %q, want still in-progress", got1.Status)
	}
}

func TestStartMatchNonPendingIsNoop(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")

	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)
	started, _ := s.Match(m.ID)

	if err := s.StartMatch(m.ID); err != nil {
		t.Fatalf("second StartMatch err = %v, want nil no-op", err)
	}
	again, _ := s.Match(m.ID)
	if !again.StartTime.Equal(*started.StartTime) {
		t.Errorf("startTime changed on no-op restart")
	}
}

func TestCancelMatchIsIdempotentAndKeepsBets(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	carol := mustAddPlayer(t, s, "Carol")

	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)
	bet, err := s.PlaceBet(m.ID, carol.ID, alice.ID, 50)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	if err := s.CancelMatch(m.ID); err != nil {
		t.Fatalf("CancelMatch: %v", err)
	}
	if err := s.CancelMatch(m.ID); err != nil {
		t.Fatalf("second CancelMatch err = %v, want nil no-op", err)
	}

	got, _ := s.Match(m.ID)
	if got.Status != domain.MatchCancelled {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
	if _, ok := s.CurrentMatch(); ok {
		t.Error("currentMatch still set after cancel")
	}

	// Cancelling a match does not cascade to its bets: the stake stays
	// escrowed and the bet stays active.
	for _, b := range s.Snapshot().Bets {
		if b.ID == bet.ID && !b.IsActive() {
			t.Errorf("bet status = %q, want still active", b.Status)
		}
	}
	gotCarol, _ := s.Player(carol.ID)
	if gotCarol.BettingPool != elo.StartingBettingPool-50 {
		t.Errorf("bettor pool = %d, want stake still escrowed (%d)", gotCarol.BettingPool, elo.StartingBettingPool-50)
	}
}

func TestSetCurrentMatch(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	m := mustCreateMatch(t, s, alice.ID, bob.ID)

	if err := s.SetCurrentMatch(uuid.New()); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Errorf("SetCurrentMatch(unknown) err = %v, want ErrMatchNotFound", err)
	}
	if err := s.SetCurrentMatch(m.ID); err != nil {
		t.Fatalf("SetCurrentMatch: %v", err)
	}
	if current, ok := s.CurrentMatch(); !ok || current.ID != m.ID {
		t.Errorf("currentMatch = %v, want %v", current.ID, m.ID)
	}
	if err := s.SetCurrentMatch(uuid.Nil); err != nil {
		t.Fatalf("SetCurrentMatch(nil): %v", err)
	}
	if _, ok := s.CurrentMatch(); ok {
		t.Error("currentMatch not cleared")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Betting
// ──────────────────────────────────────────────────────────────────────────────

func TestPlaceBetEscrowAndSettlement(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	carol := mustAddPlayer(t, s, "Carol")
	dave := mustAddPlayer(t, s, "Dave")

	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)

	// Equal 1200 ratings: odds 1.5.
	betC, err := s.PlaceBet(m.ID, carol.ID, alice.ID, 50)
	if err != nil {
		t.Fatalf("PlaceBet(carol): %v", err)
	}
	if betC.Odds.String() != "1.5" {
		t.Errorf("odds = %s, want 1.5", betC.Odds)
	}
	betD, err := s.PlaceBet(m.ID, dave.ID, bob.ID, 80)
	if err != nil {
		t.Fatalf("PlaceBet(dave): %v", err)
	}

	gotCarol, _ := s.Player(carol.ID)
	if gotCarol.BettingPool != 2450 || gotCarol.BetsPlaced != 1 {
		t.Errorf("carol after placement: pool=%d betsPlaced=%d, want 2450/1", gotCarol.BettingPool, gotCarol.BetsPlaced)
	}

	if err := s.CompleteMatch(m.ID, alice.ID); err != nil {
		t.Fatalf("CompleteMatch: %v", err)
	}

	// Carol won: payout round(50 × 1.5) = 75 back into the pool.
	gotCarol, _ = s.Player(carol.ID)
	if gotCarol.BettingPool != 2525 {
		t.Errorf("carol pool = %d, want 2525", gotCarol.BettingPool)
	}
	if gotCarol.BetsWon != 1 || gotCarol.TotalPointsEarned != 75 {
		t.Errorf("carol betsWon=%d earned=%d, want 1/75", gotCarol.BetsWon, gotCarol.TotalPointsEarned)
	}

	// Dave lost: stake stays gone.
	gotDave, _ := s.Player(dave.ID)
	if gotDave.BettingPool != 2420 || gotDave.BetsWon != 0 {
		t.Errorf("dave pool=%d betsWon=%d, want 2420/0", gotDave.BettingPool, gotDave.BetsWon)
	}

	for _, b := range s.Snapshot().Bets {
		switch b.ID {
		case betC.ID:
			if b.Status != domain.BetWon || b.PointsEarned == nil || *b.PointsEarned != 75 {
				t.Errorf("carol bet = %q/%v, want won/75", b.Status, b.PointsEarned)
			}
		case betD.ID:
			if b.Status != domain.BetLost || b.PointsEarned != nil {
				t.Errorf("dave bet = %q/%v, want lost/nil", b.Status, b.PointsEarned)
			}
		}
	}
}

func TestPlaceBetOddsFollowRatingGap(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	carol := mustAddPlayer(t, s, "Carol")

	// Move Alice to 1216 so the gap vs Bob is 16: odds 1.5 + 16/400 = 1.54.
	warmup := mustCreateMatch(t, s, alice.ID, carol.ID)
	s.StartMatch(warmup.ID)
	s.CompleteMatch(warmup.ID, alice.ID)
	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)

	bet, err := s.PlaceBet(m.ID, carol.ID, alice.ID, 20)
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if bet.Odds.String() != "1.54" {
		t.Errorf("odds = %s, want 1.54 (gap 16)", bet.Odds)
	}
}

func TestPlaceBetRejections(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	carol := mustAddPlayer(t, s, "Carol")

	pending := mustCreateMatch(t, s, alice.ID, bob.ID)

	if _, err := s.PlaceBet(pending.ID, carol.ID, alice.ID, 50); !errors.Is(err, domain.ErrMatchNotOpen) {
		t.Errorf("bet on pending match err = %v, want ErrMatchNotOpen", err)
	}
	if _, err := s.PlaceBet(uuid.New(), carol.ID, alice.ID, 50); !errors.Is(err, domain.ErrMatchNotFound) {
		t.Errorf("bet on unknown match err = %v, want ErrMatchNotFound", err)
	}

	s.StartMatch(pending.ID)

	if _, err := s.PlaceBet(pending.ID, uuid.New(), alice.ID, 50); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("unknown bettor err = %v, want ErrPlayerNotFound", err)
	}
	if _, err := s.PlaceBet(pending.ID, carol.ID, alice.ID, 101); !errors.Is(err, domain.ErrBetTooLarge) {
		t.Errorf("oversized stake err = %v, want ErrBetTooLarge", err)
	}

	// Drain Carol's pool to below the stake.
	for i := 0; i < 25; i++ {
		if _, err := s.PlaceBet(pending.ID, carol.ID, alice.ID, 100); err != nil {
			t.Fatalf("drain bet %d: %v", i, err)
		}
	}
	if _, err := s.PlaceBet(pending.ID, carol.ID, alice.ID, 50); !errors.Is(err, domain.ErrInsufficientPool) {
		t.Errorf("overdrawn stake err = %v, want ErrInsufficientPool", err)
	}

	gotCarol, _ := s.Player(carol.ID)
	if gotCarol.BettingPool != 0 || gotCarol.BetsPlaced != 25 {
		t.Errorf("carol pool=%d betsPlaced=%d after rejections, want 0/25", gotCarol.BettingPool, gotCarol.BetsPlaced)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Player removal cascade
// ──────────────────────────────────────────────────────────────────────────────

// Removing a player must, in one transition: cancel their open matches,
// cancel active bets on those matches (refunding surviving bettors), cancel
// the player's own active bets anywhere (no refund — their pool leaves with
// them), clear the live-match marker, and drop them from the roster.
// Completed matches keep their history.
func TestRemovePlayerCascade(t *testing.T) {
	s, _ := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	carol := mustAddPlayer(t, s, "Carol")
	dave := mustAddPlayer(t, s, "Dave")

	// History that must survive: Alice already beat Bob once.
	done := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(done.ID)
	s.CompleteMatch(done.ID, alice.ID)

	// Live match involving Alice, with bets from Carol and Dave.
	live := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(live.ID)
	betCarol, _ := s.PlaceBet(live.ID, carol.ID, alice.ID, 30)
	betDave, _ := s.PlaceBet(live.ID, dave.ID, bob.ID, 40)

	// Alice also has an open pending match and an active bet of her own.
	pending := mustCreateMatch(t, s, alice.ID, carol.ID)
	betAlice, _ := s.PlaceBet(live.ID, alice.ID, alice.ID, 25)

	// Carol's unrelated live match keeps a bet active through the cascade.
	other := mustCreateMatch(t, s, bob.ID, dave.ID)
	s.StartMatch(other.ID)
	betOther, _ := s.PlaceBet(other.ID, carol.ID, bob.ID, 15)
	// Put the marker back on Alice's match so the cascade must clear it.
	s.SetCurrentMatch(live.ID)

	if err := s.RemovePlayer(alice.ID); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}

	if _, ok := s.Player(alice.ID); ok {
		t.Error("alice still on roster")
	}

	gotDone, _ := s.Match(done.ID)
	if gotDone.Status != domain.MatchCompleted {
		t.Errorf("completed match status = %q, want untouched", gotDone.Status)
	}
	gotLive, _ := s.Match(live.ID)
	if gotLive.Status != domain.MatchCancelled {
		t.Errorf("live match status = %q, want cancelled", gotLive.Status)
	}
	gotPending, _ := s.Match(pending.ID)
	if gotPending.Status != domain.MatchCancelled {
		t.Errorf("pending match status = %q, want cancelled", gotPending.Status)
	}
	gotOther, _ := s.Match(other.ID)
	if !gotOther.IsInProgress() {
		t.Errorf("unrelated match status = %q, want untouched", gotOther.Status)
	}

	statuses := map[uuid.UUID]domain.BetStatus{}
	for _, b := range s.Snapshot().Bets {
		statuses[b.ID] = b.Status
	}
	if statuses[betCarol.ID] != domain.BetCancelled {
		t.Errorf("carol's bet = %q, want cancelled", statuses[betCarol.ID])
	}
	if statuses[betDave.ID] != domain.BetCancelled {
		t.Errorf("dave's bet = %q, want cancelled", statuses[betDave.ID])
	}
	if statuses[betAlice.ID] != domain.BetCancelled {
		t.Errorf("alice's own bet = %q, want cancelled", statuses[betAlice.ID])
	}
	if statuses[betOther.ID] != domain.BetActive {
		t.Errorf("unrelated bet = %q, want still active", statuses[betOther.ID])
	}

	// Refunds: Carol staked 30 (refunded) and 15 (still escrowed on the
	// unrelated match); Dave staked 40 (refunded).
	gotCarol, _ := s.Player(carol.ID)
	if gotCarol.BettingPool != elo.StartingBettingPool-15 {
		t.Errorf("carol pool = %d, want %d", gotCarol.BettingPool, elo.StartingBettingPool-15)
	}
	gotDave, _ := s.Player(dave.ID)
	if gotDave.BettingPool != elo.StartingBettingPool {
		t.Errorf("dave pool = %d, want full refund to %d", gotDave.BettingPool, elo.StartingBettingPool)
	}

	if _, ok := s.CurrentMatch(); ok {
		t.Error("currentMatch still set after cascade")
	}
}

func TestRemovePlayerUnknown(t *testing.T) {
	s, _ := newStore()
	if err := s.RemovePlayer(uuid.New()); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("err = %v, want ErrPlayerNotFound", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Restore and listeners
// ──────────────────────────────────────────────────────────────────────────────

func TestRestoreRederivesCurrentMatch(t *testing.T) {
	s, clock := newStore()
	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")

	early := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(early.ID)
	clock.Advance(time.Minute)
	late := mustCreateMatch(t, s, bob.ID, alice.ID)
	s.StartMatch(late.ID)

	snap := s.Snapshot()
	fresh, _ := newStore()
	fresh.Restore(snap.Players, snap.Matches, snap.Bets)

	current, ok := fresh.CurrentMatch()
	if !ok || current.ID != late.ID {
		t.Errorf("restored currentMatch = %v, want most recently started in-progress match %v", current.ID, late.ID)
	}
}

func TestOnChangeFiresOnlyForAppliedActions(t *testing.T) {
	s, _ := newStore()
	var fired int
	s.OnChange(func(league.State) { fired++ })

	alice := mustAddPlayer(t, s, "Alice")
	bob := mustAddPlayer(t, s, "Bob")
	if fired != 2 {
		t.Fatalf("fired = %d after two adds, want 2", fired)
	}

	// Rejection: no notification.
	s.AddPlayer("alice")
	if fired != 2 {
		t.Errorf("fired = %d after rejection, want 2", fired)
	}

	// No-op: no notification.
	m := mustCreateMatch(t, s, alice.ID, bob.ID)
	s.StartMatch(m.ID)
	s.CancelMatch(m.ID)
	fired = 0
	s.CancelMatch(m.ID) // terminal, silent no-op
	if fired != 0 {
		t.Errorf("fired = %d after no-op, want 0", fired)
	}
}

// The listener's snapshot must be isolated from the live aggregate.
func TestListenerSnapshotIsDeepCopy(t *testing.T) {
	s, _ := newStore()
	var seen league.State
	s.OnChange(func(st league.State) { seen = st })

	mustAddPlayer(t, s, "Alice")
	seen.Players[0].Name = "Mallory"

	got := s.Snapshot().Players[0]
	if got.Name != "Alice" {
		t.Errorf("mutating a listener snapshot leaked into the store: name = %q", got.Name)
	}
}
