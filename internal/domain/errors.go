package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Player errors
var (
	// ErrPlayerNotFound is returned when no roster player matches the given id.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrNameRequired is returned when a player is added with an empty name.
	ErrNameRequired = errors.New("player name is required")

	// ErrNameTaken is returned when a player's trimmed name matches an existing
	// roster name case-insensitively.
	ErrNameTaken = errors.New("player name is already taken")
)

// Match errors
var (
	// ErrMatchNotFound is returned when no match exists for the given id.
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchNotOpen is returned when a bet is placed against a match that is
	// not in progress.
	ErrMatchNotOpen = errors.New("match is not open for betting")
)

// Bet errors
var (
	// ErrBetTooSmall is returned when the stake is below the configured minimum.
	ErrBetTooSmall = errors.New("bet is below the minimum stake")

	// ErrBetTooLarge is returned when the stake exceeds the configured maximum.
	ErrBetTooLarge = errors.New("bet exceeds the maximum stake")

	// ErrInsufficientPool is returned when the stake exceeds the bettor's
	// current betting pool.
	ErrInsufficientPool = errors.New("insufficient betting pool")

	// ErrBettingClosed is returned when the betting window measured from the
	// match's start time has elapsed.
	ErrBettingClosed = errors.New("betting window has closed")

	// ErrInvalidPrediction is returned when the predicted winner is not one of
	// the match's two participants.
	ErrInvalidPrediction = errors.New("predicted winner is not in this match")
)

// Auth errors
var (
	// ErrInvalidCredentials is returned when the login check fails.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// IsNotFound returns true when err (or any error in its chain) is one of the
// "entity not found" errors. Handlers use this to translate domain errors to
// HTTP 404 responses.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) || errors.Is(err, ErrMatchNotFound)
}

// IsRejected returns true for errors that represent a validation rejection:
// the action was understood but refused, and the aggregate is unchanged.
func IsRejected(err error) bool {
	rejections := []error{
		ErrNameRequired,
		ErrNameTaken,
		ErrMatchNotOpen,
		ErrBetTooSmall,
		ErrBetTooLarge,
		ErrInsufficientPool,
		ErrBettingClosed,
		ErrInvalidPrediction,
	}
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
