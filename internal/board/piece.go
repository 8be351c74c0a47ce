package board

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the lowercase color name.
func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// forward is the rank direction pawns of c advance in.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

// homeRank is the back rank of c.
func (c Color) homeRank() int {
	if c == White {
		return 0
	}
	return 7
}

// pawnRank is the rank c's pawns start on.
func (c Color) pawnRank() int {
	if c == White {
		return 1
	}
	return 6
}

// PieceType is one of the six chess piece kinds.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// String returns the lowercase piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Letter returns the uppercase SAN letter of the piece type ('P' for pawns).
func (pt PieceType) Letter() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "PNBRQK"[pt]
}

// PieceTypeFromLetter maps an uppercase or lowercase letter to a PieceType.
func PieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'P', 'p':
		return Pawn
	case 'N', 'n':
		return Knight
	case 'B', 'b':
		return Bishop
	case 'R', 'r':
		return Rook
	case 'Q', 'q':
		return Queen
	case 'K', 'k':
		return King
	default:
		return NoPieceType
	}
}

// IsPromotable reports whether a pawn may promote to pt.
func (pt PieceType) IsPromotable() bool {
	return pt == Knight || pt == Bishop || pt == Rook || pt == Queen
}

// Piece combines a PieceType and Color. The zero value is a white pawn, so
// empty squares hold NoPiece.
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece creates a Piece from a type and a color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type returns the piece type, or NoPieceType for NoPiece.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the piece color, or NoColor for NoPiece.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// Is reports whether p is a piece of type pt and color c.
func (p Piece) Is(pt PieceType, c Color) bool {
	return p == NewPiece(pt, c)
}

// String returns the FEN letter: uppercase for white, lowercase for black.
func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return string("PNBRQKpnbrqk"[p])
}

// PieceFromChar converts a FEN letter to a Piece.
func PieceFromChar(c byte) Piece {
	pt := PieceTypeFromLetter(c)
	if pt == NoPieceType {
		return NoPiece
	}
	if c >= 'a' {
		return NewPiece(pt, Black)
	}
	return NewPiece(pt, White)
}
