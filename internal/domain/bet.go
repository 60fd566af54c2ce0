package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// The persisted JSON contract carries odds as a plain number
	// (e.g. 1.5, not "1.5"), so decimals must marshal unquoted.
	decimal.MarshalJSONWithoutQuotes = true
}

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BetStatus represents the current state of a bet.
type BetStatus string

const (
	BetActive    BetStatus = "active"    // placed, match not yet decided
	BetWon       BetStatus = "won"       // predicted winner won the match
	BetLost      BetStatus = "lost"      // predicted winner lost the match
	BetCancelled BetStatus = "cancelled" // voided by a player-removal cascade
)

// BaseOdds is the payout multiplier for a bet between equally rated players.
var BaseOdds = decimal.NewFromFloat(1.5)

// oddsDivisor scales the rating gap's contribution to the odds.
var oddsDivisor = decimal.NewFromInt(400)

// ──────────────────────────────────────────────────────────────────────────────
// Bet
// ──────────────────────────────────────────────────────────────────────────────

// Bet is a point wager by one club member on the outcome of a live match.
// Odds are frozen at placement time and never recomputed; the stake is
// escrowed (deducted from the bettor's pool) as soon as the bet is accepted.
type Bet struct {
	ID                uuid.UUID       `json:"id"`
	MatchID           uuid.UUID       `json:"matchId"`
	BettorID          uuid.UUID       `json:"bettorId"`
	PredictedWinnerID uuid.UUID       `json:"predictedWinnerId"`
	Points            int             `json:"points"`
	Odds              decimal.Decimal `json:"odds"`
	Status            BetStatus       `json:"status"`
	PlacedAt          time.Time       `json:"placedAt"`
	PointsEarned      *int            `json:"pointsEarned,omitempty"` // total payout, stake included
}

// IsActive reports whether the bet is still awaiting settlement.
func (b *Bet) IsActive() bool {
	return b.Status == BetActive
}

// Payout returns the total points a winning bet pays out, stake included:
//
//	payout = round(points × odds)
//
// Rounded half away from zero; the pool bookkeeping works in whole points.
func (b *Bet) Payout() int {
	return int(decimal.NewFromInt(int64(b.Points)).Mul(b.Odds).Round(0).IntPart())
}

// Clone returns a deep copy of the bet.
func (b *Bet) Clone() Bet {
	c := *b
	if b.PointsEarned != nil {
		pe := *b.PointsEarned
		c.PointsEarned = &pe
	}
	return c
}

// OddsForRatings computes the payout multiplier for a match between two
// players with the given ratings:
//
//	odds = 1.5 + |elo1 - elo2| / 400
//
// A wider rating gap pays more. The value is frozen into the bet at
// placement time regardless of later rating changes.
func OddsForRatings(elo1, elo2 int) decimal.Decimal {
	diff := elo1 - elo2
	if diff < 0 {
		diff = -diff
	}
	return BaseOdds.Add(decimal.NewFromInt(int64(diff)).Div(oddsDivisor))
}
