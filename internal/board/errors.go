package board

import (
	"errors"
	"fmt"
)

// ErrInvalidFEN is wrapped by every FEN parsing error.
var ErrInvalidFEN = errors.New("invalid FEN")

var (
	ErrFieldCount  = fenError("wrong number of fields")
	ErrRankCount   = fenError("wrong number of ranks")
	ErrRankSize    = fenError("wrong number of squares in rank")
	ErrPieceLetter = fenError("invalid piece letter")
	ErrActiveColor = fenError("invalid active color")
	ErrCastling    = fenError("invalid castling rights")
	ErrEnPassant   = fenError("invalid en passant square")
	ErrHalfMove    = fenError("invalid halfmove clock")
	ErrFullMove    = fenError("invalid fullmove number")
)

// fenError builds a sentinel that matches both itself and ErrInvalidFEN.
func fenError(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFEN, msg)
}
