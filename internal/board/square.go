// Package board implements the chess rules: position representation, attack
// detection, move generation and check-safety filtering.
//
// Every function in this package is pure. A Position is a value; functions
// that need a modified position work on a copy.
package board

import "fmt"

// Square is a board index in 0..63 (a1=0, h1=7, a8=56, h8=63).
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File returns the file of the square (0=a .. 7=h).
func (sq Square) File() int {
	return int(sq) % 8
}

// Rank returns the rank of the square (0=rank 1 .. 7=rank 8).
func (sq Square) Rank() int {
	return int(sq) / 8
}

// IsValid reports whether sq is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// String returns the algebraic name of the square, or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{FileChar(sq.File()), RankChar(sq.Rank())})
}

// NewSquare builds a square from 0-based file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// offset returns the square shifted by df files and dr ranks, and false if
// that falls off the board.
func (sq Square) offset(df, dr int) (Square, bool) {
	f, r := sq.File()+df, sq.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

// FileChar returns the letter for a 0-based file.
func FileChar(file int) byte {
	return 'a' + byte(file)
}

// RankChar returns the digit for a 0-based rank.
func RankChar(rank int) byte {
	return '1' + byte(rank)
}

// ParseSquare parses algebraic notation (e.g. "e4").
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// MustParseSquare is ParseSquare for constant input; it panics on error.
func MustParseSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}
