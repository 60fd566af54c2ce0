// Package domain defines the core business entities for the club league
// tracker: players, matches and point bets.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"     // created, not yet started
	MatchInProgress MatchStatus = "in-progress" // live, accepting bets inside the window
	MatchCompleted  MatchStatus = "completed"   // winner recorded, ratings updated
	MatchCancelled  MatchStatus = "cancelled"   // voided before a result
)

// IsTerminal reports whether the status admits no further transitions.
func (s MatchStatus) IsTerminal() bool {
	return s == MatchCompleted || s == MatchCancelled
}

// EloChanges records the rating deltas applied when a match completed.
// The two deltas are rounded independently and are not required to cancel
// each other out exactly.
type EloChanges struct {
	Player1Change int `json:"player1Change"`
	Player2Change int `json:"player2Change"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Match
// ──────────────────────────────────────────────────────────────────────────────

// Match is a single game between two club members.
//
// Player1 and Player2 are value copies taken when the match was created, not
// references into the live roster. Historical match records must keep showing
// era-appropriate ratings, and value copies also keep the persisted JSON free
// of cycles. Winner and Loser are copies of the players as they stood right
// after completion (final stats applied).
type Match struct {
	ID         uuid.UUID   `json:"id"`
	Player1    Player      `json:"player1"`
	Player2    Player      `json:"player2"`
	Status     MatchStatus `json:"status"`
	Winner     *Player     `json:"winner,omitempty"`
	Loser      *Player     `json:"loser,omitempty"`
	StartTime  *time.Time  `json:"startTime,omitempty"`
	EndTime    *time.Time  `json:"endTime,omitempty"`
	EloChanges *EloChanges `json:"eloChanges,omitempty"`
}

// Involves reports whether the given player is one of the two participants.
func (m *Match) Involves(playerID uuid.UUID) bool {
	return m.Player1.ID == playerID || m.Player2.ID == playerID
}

// IsInProgress reports whether the match is live.
func (m *Match) IsInProgress() bool {
	return m.Status == MatchInProgress
}

// IsTerminal reports whether the match has reached a final status.
func (m *Match) IsTerminal() bool {
	return m.Status.IsTerminal()
}

// BettingClosesAt returns the end of the betting window for this match.
// The second return value is false when the match has not been started yet.
func (m *Match) BettingClosesAt(window time.Duration) (time.Time, bool) {
	if m.StartTime == nil {
		return time.Time{}, false
	}
	return m.StartTime.Add(window), true
}

// Clone returns a deep copy of the match. The pointer-typed optional fields
// are duplicated so mutating the copy can never leak into the original.
func (m *Match) Clone() Match {
	c := *m
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	if m.Loser != nil {
		l := *m.Loser
		c.Loser = &l
	}
	if m.StartTime != nil {
		st := *m.StartTime
		c.StartTime = &st
	}
	if m.EndTime != nil {
		et := *m.EndTime
		c.EndTime = &et
	}
	if m.EloChanges != nil {
		ec := *m.EloChanges
		c.EloChanges = &ec
	}
	return c
}
