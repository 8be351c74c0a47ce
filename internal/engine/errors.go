package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidMove matches every move rejection through errors.Is.
var ErrInvalidMove = errors.New("invalid move")

// Rejection kinds. A *MoveError wraps exactly one of them.
var (
	ErrInvalidFormat      = errors.New("invalid format")
	ErrNoPieceAtSquare    = errors.New("no piece at square")
	ErrWrongTurn          = errors.New("wrong turn")
	ErrIllegalMove        = errors.New("illegal move")
	ErrAmbiguousMove      = errors.New("ambiguous SAN")
	ErrNoLegalMoveMatches = errors.New("no legal move matches SAN")
)

// MoveError reports a rejected move together with the text that was
// submitted.
type MoveError struct {
	Move string
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("invalid move '%s': %v", e.Move, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// Is makes every MoveError match ErrInvalidMove.
func (e *MoveError) Is(target error) bool { return target == ErrInvalidMove }

func reject(move string, kind error, format string, args ...any) error {
	return &MoveError{Move: move, Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}
