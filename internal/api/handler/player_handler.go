package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/elo"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlayerHandler serves the roster endpoints.
type PlayerHandler struct {
	store *league.Store
	log   *slog.Logger
}

func NewPlayerHandler(store *league.Store, log *slog.Logger) *PlayerHandler {
	return &PlayerHandler{store: store, log: log}
}

// List handles GET /api/players. ?sort=elo returns the leaderboard order
// (rating descending, wins as tiebreak); the default is roster order.
func (h *PlayerHandler) List(c *gin.Context) {
	players := h.store.Snapshot().Players
	if players == nil {
		players = []domain.Player{}
	}

	if c.Query("sort") == "elo" {
		sort.SliceStable(players, func(i, j int) bool {
			if players[i].Elo != players[j].Elo {
				return players[i].Elo > players[j].Elo
			}
			return players[i].Wins > players[j].Wins
		})
	}

	respond(c, http.StatusOK, gin.H{"players": players})
}

// Get handles GET /api/players/:id.
func (h *PlayerHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	player, ok := h.store.Player(id)
	if !ok {
		respondDomainError(c, domain.ErrPlayerNotFound)
		return
	}
	respond(c, http.StatusOK, gin.H{"player": player})
}

type addPlayerRequest struct {
	Name string `json:"name" binding:"required"`
}

// Add handles POST /api/players.
func (h *PlayerHandler) Add(c *gin.Context) {
	var req addPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err)
		return
	}

	player, err := h.store.AddPlayer(req.Name)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	h.log.Info("player added", "player_id", player.ID, "name", player.Name)
	respond(c, http.StatusCreated, gin.H{"player": player})
}

// Delete handles DELETE /api/players/:id. Removal cascades: the player's
// open matches are cancelled and affected active bets are cancelled with
// their stakes refunded.
func (h *PlayerHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.store.RemovePlayer(id); err != nil {
		respondDomainError(c, err)
		return
	}
	h.log.Info("player removed", "player_id", id)
	c.Status(http.StatusNoContent)
}

// WinProbability handles GET /api/players/:id/win-probability?vs=<id>,
// returning the rating-implied chance that :id beats the opponent.
func (h *PlayerHandler) WinProbability(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	vs, err := uuid.Parse(c.Query("vs"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid vs"))
		return
	}

	player, ok := h.store.Player(id)
	if !ok {
		respondDomainError(c, domain.ErrPlayerNotFound)
		return
	}
	opponent, ok := h.store.Player(vs)
	if !ok {
		respondDomainError(c, domain.ErrPlayerNotFound)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"playerId":    player.ID,
		"opponentId":  opponent.ID,
		"probability": elo.WinProbability(player.Elo, opponent.Elo),
	})
}
