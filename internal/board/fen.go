package board

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFEN parses a six-field FEN string. Only the structure is checked;
// the position is not required to be reachable.
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("%w: expected 6 fields, got %d", ErrFieldCount, len(parts))
	}

	pos := Position{
		Board:     EmptyBoard(),
		EnPassant: NoSquare,
	}

	if err := parsePiecePlacement(&pos, parts[0]); err != nil {
		return Position{}, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("%w: expected 'w' or 'b', got %q", ErrActiveColor, parts[1])
	}

	if err := parseCastlingRights(&pos, parts[2]); err != nil {
		return Position{}, err
	}

	if parts[3] != "-" {
		ep := parts[3]
		if len(ep) != 2 || ep[0] < 'a' || ep[0] > 'h' || (ep[1] != '3' && ep[1] != '6') {
			return Position{}, fmt.Errorf("%w: %q", ErrEnPassant, ep)
		}
		pos.EnPassant = MustParseSquare(ep)
	}

	hmc, err := parseCounter(parts[4])
	if err != nil {
		return Position{}, fmt.Errorf("%w: %q", ErrHalfMove, parts[4])
	}
	pos.HalfMoveClock = hmc

	fmn, err := parseCounter(parts[5])
	if err != nil || fmn < 1 {
		return Position{}, fmt.Errorf("%w: %q", ErrFullMove, parts[5])
	}
	pos.FullMoveNumber = fmn

	return pos, nil
}

// parseCounter accepts only plain decimal digits, so "+3" and "-0" are
// rejected.
func parseCounter(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// parsePiecePlacement parses the piece placement field.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrRankCount, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(c)
			if piece == NoPiece {
				return fmt.Errorf("%w: %q in rank %d", ErrPieceLetter, c, rank+1)
			}
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrRankSize, rank+1)
			}
			pos.Board[NewSquare(file, rank)] = piece
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares instead of 8", ErrRankSize, rank+1, file)
		}
	}
	return nil
}

// parseCastlingRights accepts "-" or one to four of K, Q, k, q.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.CastlingRights = NoCastling
		return nil
	}
	if len(castling) < 1 || len(castling) > 4 {
		return fmt.Errorf("%w: %q", ErrCastling, castling)
	}

	for i := 0; i < len(castling); i++ {
		switch castling[i] {
		case 'K':
			pos.CastlingRights |= WhiteKingSideCastle
		case 'Q':
			pos.CastlingRights |= WhiteQueenSideCastle
		case 'k':
			pos.CastlingRights |= BlackKingSideCastle
		case 'q':
			pos.CastlingRights |= BlackQueenSideCastle
		default:
			return fmt.Errorf("%w: %q", ErrCastling, castling)
		}
	}
	return nil
}

// FEN returns the canonical FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
