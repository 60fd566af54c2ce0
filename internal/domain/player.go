package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Player
// ──────────────────────────────────────────────────────────────────────────────

// Player is a club member. Every member is both a league competitor (ELO,
// win/loss record) and a bettor (point pool, betting statistics).
//
// The struct is plain data with value semantics on purpose: matches embed
// player copies, and the whole roster is serialised verbatim into the
// persisted JSON document.
type Player struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Elo        int       `json:"elo"`
	Wins       int       `json:"wins"`
	Losses     int       `json:"losses"`
	TotalGames int       `json:"totalGames"`
	CreatedAt  time.Time `json:"createdAt"`

	// Betting statistics
	BetsPlaced        int `json:"betsPlaced"`
	BetsWon           int `json:"betsWon"`
	TotalPointsEarned int `json:"totalPointsEarned"`
	BettingPool       int `json:"bettingPool"` // spendable points, stake is escrowed on placement
}

// NameEquals reports whether name matches the player's name after trimming,
// case-insensitively. Roster names are unique under this comparison.
func (p *Player) NameEquals(name string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
}

// WinRate returns wins / totalGames, or 0 for a player with no games.
func (p *Player) WinRate() float64 {
	if p.TotalGames == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.TotalGames)
}
