package apperror

import "errors"

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrIllegalJump = errors.New("illegal jump")

	ErrInvalidCell  = errors.New("invalid cell index")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrGameFinished = errors.New("game is already finished")

	ErrSessionNotFound = errors.New("session not found")
	ErrCorruptHistory  = errors.New("corrupt move history")
)
