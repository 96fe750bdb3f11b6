package apperror

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrCorruptedGame  = errors.New("stored game is corrupted")
	ErrInvalidRequest = errors.New("invalid request")
)
