// Package elo implements the chess-style rating math used by the league:
// expected scores, post-match rating deltas and new-player defaults.
// Everything here is pure and deterministic.
package elo

import (
	"math"
	"strings"
	"time"

	"github.com/edevrim/pingpong/internal/domain"
	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Constants
// ──────────────────────────────────────────────────────────────────────────────

const (
	// KFactor is the maximum rating points exchanged per match.
	KFactor = 32

	// DefaultElo is the rating every new player starts with.
	DefaultElo = 1200

	// MinElo is the floor applied after every rating change. There is no
	// ceiling.
	MinElo = 100

	// StartingBettingPool is the fixed point stake every new player receives.
	StartingBettingPool = 2500
)

// ──────────────────────────────────────────────────────────────────────────────
// Rating math
// ──────────────────────────────────────────────────────────────────────────────

// ExpectedScore returns the probability in (0,1) that a player rated `rating`
// beats a player rated `opponent`:
//
//	1 / (1 + 10^((opponent - rating) / 400))
//
// ExpectedScore(a,b) + ExpectedScore(b,a) == 1 up to floating error.
func ExpectedScore(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

// WinProbability is ExpectedScore under its UI-facing name: the chance of the
// first player winning against the second.
func WinProbability(rating, opponent int) float64 {
	return ExpectedScore(rating, opponent)
}

// ClampRating applies the rating floor.
func ClampRating(v int) int {
	if v < MinElo {
		return MinElo
	}
	return v
}

// Change is the outcome of a single match's rating computation.
type Change struct {
	Player1Change int
	Player2Change int
	NewPlayer1Elo int
	NewPlayer2Elo int
}

// CalculateChange computes both players' rating deltas for a finished match:
//
//	delta = round(K × (score - expected))    score ∈ {0, 1}
//
// The two deltas are rounded independently; they are close to, but not
// guaranteed to be, exact negatives of each other. New ratings are clamped
// to the floor.
func CalculateChange(elo1, elo2 int, player1Won bool) Change {
	expected1 := ExpectedScore(elo1, elo2)
	expected2 := ExpectedScore(elo2, elo1)

	score1, score2 := 0.0, 1.0
	if player1Won {
		score1, score2 = 1.0, 0.0
	}

	change1 := int(math.Round(KFactor * (score1 - expected1)))
	change2 := int(math.Round(KFactor * (score2 - expected2)))

	return Change{
		Player1Change: change1,
		Player2Change: change2,
		NewPlayer1Elo: ClampRating(elo1 + change1),
		NewPlayer2Elo: ClampRating(elo2 + change2),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Player construction & stat updates
// ──────────────────────────────────────────────────────────────────────────────

// NewPlayer builds a roster player with default rating, empty match record
// and the starting betting pool.
func NewPlayer(name string, now time.Time) domain.Player {
	return domain.Player{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Elo:         DefaultElo,
		CreatedAt:   now,
		BettingPool: StartingBettingPool,
	}
}

// UpdateStats returns a copy of p with one match result applied: the rating
// delta (floor-clamped) and the win/loss counters. Betting fields are left
// untouched; bet settlement maintains those separately.
func UpdateStats(p domain.Player, won bool, eloChange int) domain.Player {
	p.Elo = ClampRating(p.Elo + eloChange)
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.TotalGames++
	return p
}
