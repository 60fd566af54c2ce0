package handler

import (
	"net/http"

	"github.com/edevrim/pingpong/internal/domain"
	"github.com/edevrim/pingpong/internal/league"
	"github.com/gin-gonic/gin"
)

// StateHandler serves the whole aggregate in one response, the shape the UI
// hydrates from on page load.
type StateHandler struct {
	store *league.Store
}

func NewStateHandler(store *league.Store) *StateHandler {
	return &StateHandler{store: store}
}

// Get handles GET /api/state.
func (h *StateHandler) Get(c *gin.Context) {
	st := h.store.Snapshot()
	if st.Players == nil {
		st.Players = []domain.Player{}
	}
	if st.Matches == nil {
		st.Matches = []domain.Match{}
	}
	if st.Bets == nil {
		st.Bets = []domain.Bet{}
	}

	var current *domain.Match
	if m, ok := st.CurrentMatch(); ok {
		current = &m
	}

	respond(c, http.StatusOK, gin.H{
		"players":      st.Players,
		"matches":      st.Matches,
		"bets":         st.Bets,
		"currentMatch": current,
	})
}
