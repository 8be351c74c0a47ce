package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field, letters in KQkq order.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, r := range []CastlingRights{WhiteKingSideCastle, WhiteQueenSideCastle, BlackKingSideCastle, BlackQueenSideCastle} {
		if cr&r != 0 {
			sb.WriteByte("KQkq"[i])
		}
	}
	return sb.String()
}

// CastleRight returns the single right for a side and wing.
func CastleRight(c Color, kingSide bool) CastlingRights {
	switch {
	case c == White && kingSide:
		return WhiteKingSideCastle
	case c == White:
		return WhiteQueenSideCastle
	case kingSide:
		return BlackKingSideCastle
	default:
		return BlackQueenSideCastle
	}
}

// CanCastle returns true if the given side still holds the right to castle
// in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&CastleRight(c, kingSide) != 0
}

// Board is the 64-square piece array. It is a value type, so assigning a
// Board copies it.
type Board [64]Piece

// EmptyBoard returns a board with no pieces on it.
func EmptyBoard() Board {
	var b Board
	for i := range b {
		b[i] = NoPiece
	}
	return b
}

// KingSquare returns the square of c's king, or NoSquare if there is none.
func (b *Board) KingSquare(c Color) Square {
	king := NewPiece(King, c)
	for sq := A1; sq <= H8; sq++ {
		if b[sq] == king {
			return sq
		}
	}
	return NoSquare
}

// Position is a complete chess position.
type Position struct {
	Board          Board
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // square passed over by the last double pawn step, NoSquare if none
	HalfMoveClock  int    // plies since the last pawn move or capture
	FullMoveNumber int    // starts at 1, incremented after black moves
}

// StartFEN is the FEN string for the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var standardBackRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	return PositionFromBackRank(standardBackRank)
}

// PositionFromBackRank builds an initial position whose first and last
// ranks hold the given pieces (mirrored for black) behind full pawn rows.
// Both sides get full castling rights.
func PositionFromBackRank(rank [8]PieceType) Position {
	p := Position{
		Board:          EmptyBoard(),
		SideToMove:     White,
		CastlingRights: AllCastling,
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	for f := 0; f < 8; f++ {
		p.Board[NewSquare(f, 0)] = NewPiece(rank[f], White)
		p.Board[NewSquare(f, 1)] = WhitePawn
		p.Board[NewSquare(f, 6)] = BlackPawn
		p.Board[NewSquare(f, 7)] = NewPiece(rank[f], Black)
	}
	return p
}

// PieceAt returns the piece at sq, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return p.Board[sq]
}

// IsEmpty reports whether sq holds no piece.
func (p *Position) IsEmpty(sq Square) bool {
	return p.PieceAt(sq) == NoPiece
}

// SquaresOf returns every square holding a piece of type pt and color c, in
// ascending order.
func (p *Position) SquaresOf(pt PieceType, c Color) []Square {
	var out []Square
	want := NewPiece(pt, c)
	for sq := A1; sq <= H8; sq++ {
		if p.Board[sq] == want {
			out = append(out, sq)
		}
	}
	return out
}

// String returns a board diagram plus the state fields.
func (p Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.Board[NewSquare(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	return sb.String()
}
