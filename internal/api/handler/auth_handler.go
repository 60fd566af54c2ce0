package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/edevrim/pingpong/internal/api/middleware"
	"github.com/edevrim/pingpong/internal/config"
	"github.com/edevrim/pingpong/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// AuthHandler exchanges the shared club credentials for a session token.
type AuthHandler struct {
	cfg   config.AuthConfig
	clock clockwork.Clock
	log   *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, clock clockwork.Clock, log *slog.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, clock: clock, log: log}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !userOK || !passOK {
		h.log.Warn("login rejected", "username", req.Username, "ip", c.ClientIP())
		respondDomainError(c, domain.ErrInvalidCredentials)
		return
	}

	token, err := middleware.IssueToken(h.cfg, h.clock.Now())
	if err != nil {
		h.log.Error("token signing failed", "err", err)
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"token":     token,
		"expiresIn": int64(h.cfg.TokenTTL.Seconds()),
	})
}
