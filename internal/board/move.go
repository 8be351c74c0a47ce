package board

import "fmt"

// Move is a from/to pair plus an optional promotion piece.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType // NoPieceType unless a pawn promotes
}

// NewMove creates a move without promotion.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Promotion: NoPieceType}
}

// String returns the UCI form of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion.IsPromotable() {
		s += string(m.Promotion.Letter() + ('a' - 'A'))
	}
	return s
}

// ParseUCI parses a move of the form [a-h][1-8][a-h][1-8][qrbn]?.
func ParseUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid UCI move: %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid UCI move: %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid UCI move: %q", s)
	}
	m := NewMove(from, to)
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
			m.Promotion = PieceTypeFromLetter(s[4])
		default:
			return Move{}, fmt.Errorf("invalid UCI move: %q", s)
		}
	}
	return m, nil
}

// LegalMoveList returns every legal move for the side to move. A pawn
// reaching the last rank yields one move per promotion piece.
func (p *Position) LegalMoveList() []Move {
	var moves []Move
	for from := A1; from <= H8; from++ {
		pc := p.Board[from]
		if pc == NoPiece || pc.Color() != p.SideToMove {
			continue
		}
		for _, to := range p.LegalMoves(from) {
			if p.IsPromotion(from, to) {
				for _, promo := range [4]PieceType{Queen, Rook, Bishop, Knight} {
					moves = append(moves, Move{From: from, To: to, Promotion: promo})
				}
				continue
			}
			moves = append(moves, NewMove(from, to))
		}
	}
	return moves
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p Position) Perft(depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := p.LegalMoveList()
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		nodes += p.Play(m.From, m.To, m.Promotion).Perft(depth - 1)
	}
	return nodes
}
