package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// BetHandler serves the betting endpoints. The real-time rules — minimum
// stake and the betting window measured from the match's start — are enforced
// here; the store enforces everything that belongs to the aggregate itself.
type BetHandler struct {
	store *league.Store
	cfg   config.LeagueConfig
	clock clockwork.Clock
	log   *slog.Logger
}

func NewBetHandler(store *league.Store, cfg config.LeagueConfig, clock clockwork.Clock, log *slog.Logger) *BetHandler {
	return &BetHandler{store: store, cfg: cfg, clock: clock, log: log}
}

// List handles GET /api/bets. ?matchId= and ?bettorId= filter the ledger.
func (h *BetHandler) List(c *gin.Context) {
	bets := h.store.Snapshot().Bets
	if bets == nil {
		bets = []domain.Bet{}
	}

	if raw := c.Query("matchId"); raw != "" {
		matchID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid matchId"))
			return
		}
		filtered := bets[:0]
		for _, b := range bets {
			if b.MatchID == matchID {
				filtered = append(filtered, b)
			}
		}
		bets = filtered
	}
	if raw := c.Query("bettorId"); raw != "" {
		bettorID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid bettorId"))
			return
		}
		filtered := bets[:0]
		for _, b := range bets {
			if b.BettorID == bettorID {
				filtered = append(filtered, b)
			}
		}
		bets = filtered
	}

	respond(c, http.StatusOK, gin.H{"bets": bets})
}

type placeBetRequest struct {
	MatchID           string `json:"matchId" binding:"required"`
	BettorID          string `json:"bettorId" binding:"required"`
	PredictedWinnerID string `json:"predictedWinnerId" binding:"required"`
	Points            int    `json:"points" binding:"required"`
}

// Place handles POST /api/bets.
func (h *BetHandler) Place(c *gin.Context) {
	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err)
		return
	}
	matchID, err := uuid.Parse(req.MatchID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid matchId"))
		return
	}
	bettorID, err := uuid.Parse(req.BettorID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid bettorId"))
		return
	}
	predictedID, err := uuid.Parse(req.PredictedWinnerID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid predictedWinnerId"))
		return
	}

	if req.Points < h.cfg.MinBetPoints {
		respondDomainError(c, domain.ErrBetTooSmall)
		return
	}

	match, found := h.store.Match(matchID)
	if !found {
		respondDomainError(c, domain.ErrMatchNotFound)
		return
	}
	if !match.Involves(predictedID) {
		respondDomainError(c, domain.ErrInvalidPrediction)
		return
	}
	if closesAt, started := match.BettingClosesAt(h.cfg.BettingWindow); started && h.clock.Now().After(closesAt) {
		respondDomainError(c, domain.ErrBettingClosed)
		return
	}

	bet, err := h.store.PlaceBet(matchID, bettorID, predictedID, req.Points)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	h.log.Info("bet placed",
		"bet_id", bet.ID,
		"match_id", matchID,
		"bettor_id", bettorID,
		"points", bet.Points,
		"odds", bet.Odds,
	)
	respond(c, http.StatusCreated, gin.H{"bet": bet})
}
