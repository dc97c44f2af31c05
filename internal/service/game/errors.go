package game

import "errors"

var (
	ErrGameOver      = errors.New("game is already over")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrBadMoveFormat = errors.New("invalid move format")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNothingToUndo = errors.New("no moves to undo")
)
