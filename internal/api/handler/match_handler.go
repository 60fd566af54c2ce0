package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MatchHandler serves the match state-machine endpoints.
type MatchHandler struct {
	store *league.Store
	log   *slog.Logger
}

func NewMatchHandler(store *league.Store, log *slog.Logger) *MatchHandler {
	return &MatchHandler{store: store, log: log}
}

// List handles GET /api/matches. ?status= filters on the match status.
func (h *MatchHandler) List(c *gin.Context) {
	matches := h.store.Snapshot().Matches
	if matches == nil {
		matches = []domain.Match{}
	}

	if status := c.Query("status"); status != "" {
		filtered := make([]domain.Match, 0, len(matches))
		for _, m := range matches {
			if string(m.Status) == status {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}

	respond(c, http.StatusOK, gin.H{"matches": matches})
}

// Current handles GET /api/matches/current. currentMatch is null when no
// match is live.
func (h *MatchHandler) Current(c *gin.Context) {
	match, ok := h.store.CurrentMatch()
	if !ok {
		respond(c, http.StatusOK, gin.H{"currentMatch": nil})
		return
	}
	respond(c, http.StatusOK, gin.H{"currentMatch": match})
}

type createMatchRequest struct {
	Player1ID string `json:"player1Id" binding:"required"`
	Player2ID string `json:"player2Id" binding:"required"`
}

// Create handles POST /api/matches. The store accepts any two roster
// players, so the self-match guard lives here.
func (h *MatchHandler) Create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err)
		return
	}
	p1, err := uuid.Parse(req.Player1ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid player1Id"))
		return
	}
	p2, err := uuid.Parse(req.Player2ID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid player2Id"))
		return
	}
	if p1 == p2 {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("a player cannot face themselves"))
		return
	}

	match, err := h.store.CreateMatch(p1, p2)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	h.log.Info("match created", "match_id", match.ID)
	respond(c, http.StatusCreated, gin.H{"match": match})
}

// Start handles POST /api/matches/:id/start. Starting an already started or
// terminal match is a no-op and still returns 200.
func (h *MatchHandler) Start(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.store.StartMatch(id); err != nil {
		respondDomainError(c, err)
		return
	}
	match, _ := h.store.Match(id)
	h.log.Info("match started", "match_id", id)
	respond(c, http.StatusOK, gin.H{"match": match})
}

type completeMatchRequest struct {
	WinnerID string `json:"winnerId" binding:"required"`
}

// Complete handles POST /api/matches/:id/complete. The winner must be one of
// the match's two players; the store itself only distinguishes player1 from
// everyone else, so that check lives here.
func (h *MatchHandler) Complete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req completeMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err)
		return
	}
	winnerID, err := uuid.Parse(req.WinnerID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid winnerId"))
		return
	}

	match, found := h.store.Match(id)
	if !found {
		respondDomainError(c, domain.ErrMatchNotFound)
		return
	}
	if !match.Involves(winnerID) {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("winner is not part of this match"))
		return
	}

	if err := h.store.CompleteMatch(id, winnerID); err != nil {
		respondDomainError(c, err)
		return
	}
	match, _ = h.store.Match(id)
	h.log.Info("match completed", "match_id", id, "winner_id", winnerID)
	respond(c, http.StatusOK, gin.H{"match": match})
}

// Cancel handles POST /api/matches/:id/cancel. Cancellation is idempotent.
func (h *MatchHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.store.CancelMatch(id); err != nil {
		respondDomainError(c, err)
		return
	}
	match, _ := h.store.Match(id)
	h.log.Info("match cancelled", "match_id", id)
	respond(c, http.StatusOK, gin.H{"match": match})
}

// SetCurrent handles PUT /api/matches/current. A null or absent matchId
// clears the live-match marker.
func (h *MatchHandler) SetCurrent(c *gin.Context) {
	var req struct {
		MatchID *string `json:"matchId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err)
		return
	}

	target := uuid.Nil
	if req.MatchID != nil && *req.MatchID != "" {
		id, err := uuid.Parse(*req.MatchID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid matchId"))
			return
		}
		target = id
	}

	if err := h.store.SetCurrentMatch(target); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
