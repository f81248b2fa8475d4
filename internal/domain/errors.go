package domain

import "errors"

var (
	// ErrGameNotFound is returned when no active or recorded game has the given ID.
	ErrGameNotFound = errors.New("game not found")
	// ErrPlayerNotFound is returned when a player must be registered before acting.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidRegistration indicates missing or malformed registration fields.
	ErrInvalidRegistration = errors.New("first name, last name and a valid email are required")
	// ErrMalformedQuestion marks question content that must never reach a player.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrNoQuestions indicates a source has nothing left for the requested band.
	ErrNoQuestions = errors.New("no questions available")
	// ErrGameNotFinished is returned when a prize is checked before the game ended.
	ErrGameNotFinished = errors.New("game is still in progress")
	// ErrUnauthorized guards the admin dashboard.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidAction indicates an unknown action type on the API.
	ErrInvalidAction = errors.New("invalid action")
)
