package ws

import (
	"github.com/edevrim/pingpong/internal/domain"
)

// Message types carried in the envelope's "type" field.
const (
	MsgState     = "state"      // full aggregate after an applied action
	MsgLiveMatch = "live_match" // 1 Hz countdown while a match is live
)

// Envelope wraps every outbound WebSocket message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StateMessage mirrors the aggregate for UI consumption.
type StateMessage struct {
	Players      []domain.Player `json:"players"`
	Matches      []domain.Match  `json:"matches"`
	Bets         []domain.Bet    `json:"bets"`
	CurrentMatch *domain.Match   `json:"currentMatch"`
}

// LiveMatchMessage carries the live match and its betting-window countdown.
type LiveMatchMessage struct {
	Match             domain.Match `json:"match"`
	BettingOpen       bool         `json:"bettingOpen"`
	BettingClosesIn   int64        `json:"bettingClosesInSec"` // 0 when closed
	ActiveBets        int          `json:"activeBets"`
	TotalPointsStaked int          `json:"totalPointsStaked"`
}
