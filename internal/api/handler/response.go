// Package handler contains the gin HTTP handlers for the league API.
package handler

import (
	"errors"
	"net/http"

	"github.com/edevrim/pingpong/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// errorBody is the uniform error payload: a stable machine code plus the
// human-readable message.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respond(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func respondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, gin.H{"error": errorBody{Code: code, Message: err.Error()}})
}

// respondDomainError maps a store rejection to an HTTP status and code.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		respondError(c, http.StatusNotFound, "ERR_PLAYER_NOT_FOUND", err)
	case errors.Is(err, domain.ErrMatchNotFound):
		respondError(c, http.StatusNotFound, "ERR_MATCH_NOT_FOUND", err)
	case errors.Is(err, domain.ErrNameRequired):
		respondError(c, http.StatusBadRequest, "ERR_NAME_REQUIRED", err)
	case errors.Is(err, domain.ErrNameTaken):
		respondError(c, http.StatusConflict, "ERR_NAME_TAKEN", err)
	case errors.Is(err, domain.ErrMatchNotOpen):
		respondError(c, http.StatusConflict, "ERR_MATCH_NOT_OPEN", err)
	case errors.Is(err, domain.ErrBettingClosed):
		respondError(c, http.StatusConflict, "ERR_BETTING_CLOSED", err)
	case errors.Is(err, domain.ErrBetTooSmall):
		respondError(c, http.StatusBadRequest, "ERR_BET_TOO_SMALL", err)
	case errors.Is(err, domain.ErrBetTooLarge):
		respondError(c, http.StatusBadRequest, "ERR_BET_TOO_LARGE", err)
	case errors.Is(err, domain.ErrInsufficientPool):
		respondError(c, http.StatusBadRequest, "ERR_INSUFFICIENT_POOL", err)
	case errors.Is(err, domain.ErrInvalidPrediction):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PREDICTION", err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "ERR_INVALID_CREDENTIALS", err)
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err)
	}
}

// pathUUID parses a :param UUID or writes a 400 and returns false.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", errors.New("invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}
