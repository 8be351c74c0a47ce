package engine

import (
	"errors"
	"regexp"
	"strings"

	"github.com/hailam/chessarena/internal/board"
)

var (
	promoSuffix     = regexp.MustCompile(`=([QRBNqrbn])$`)
	barePromoSuffix = regexp.MustCompile(`([QRBNqrbn])$`)
)

// ApplyMoveSAN plays a move written in Standard Algebraic Notation. Both
// "e8=Q" and "e8Q" promote, both "O-O" and "0-0" castle, and trailing
// check marks are ignored. A pawn reaching the last rank without a
// promotion piece becomes a queen, and a promotion piece on any other move
// is rejected with ErrIllegalMove. Castling needs the own king on its e
// square.
func (e *Engine) ApplyMoveSAN(san string) error {
	m, err := e.resolveSAN(san)
	if err == nil {
		err = e.applyUCI(m.String())
	}
	if err != nil {
		var me *MoveError
		if errors.As(err, &me) {
			me.Move = san
		}
		e.log.Debug().Err(err).Str("move", san).Str("fen", e.pos.FEN()).Msg("rejected move")
		return err
	}
	return nil
}

// resolveSAN finds the single legal move of the side to move that san
// describes.
func (e *Engine) resolveSAN(san string) (board.Move, error) {
	cleaned := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(san), "+#"))
	us := e.pos.SideToMove
	home := 0
	if us == board.Black {
		home = 7
	}

	switch cleaned {
	case "O-O", "0-0", "O-O-O", "0-0-0":
		if !e.pos.PieceAt(board.NewSquare(4, home)).Is(board.King, us) {
			return board.Move{}, reject(san, ErrIllegalMove, "no %s king on e%d to castle", us, home+1)
		}
	}

	switch cleaned {
	case "O-O", "0-0":
		return board.NewMove(board.NewSquare(4, home), board.NewSquare(6, home)), nil
	case "O-O-O", "0-0-0":
		return board.NewMove(board.NewSquare(4, home), board.NewSquare(2, home)), nil
	}

	pt := board.Pawn
	core := cleaned
	if core != "" && strings.IndexByte("KQRBN", core[0]) >= 0 {
		pt = board.PieceTypeFromLetter(core[0])
		core = core[1:]
	}

	promo := board.NoPieceType
	if sm := promoSuffix.FindStringSubmatch(core); sm != nil {
		promo = board.PieceTypeFromLetter(sm[1][0])
		core = core[:len(core)-len(sm[0])]
	} else if sm := barePromoSuffix.FindStringSubmatch(core); sm != nil {
		promo = board.PieceTypeFromLetter(sm[1][0])
		core = core[:len(core)-len(sm[0])]
	}

	core = strings.Replace(core, "x", "", 1)
	if len(core) < 2 {
		return board.Move{}, reject(san, ErrInvalidFormat, "missing destination square")
	}
	to, err := board.ParseSquare(core[len(core)-2:])
	if err != nil {
		return board.Move{}, reject(san, ErrInvalidFormat, "bad destination square %q", core[len(core)-2:])
	}

	hints := core[:len(core)-2]
	if len(hints) > 2 {
		return board.Move{}, reject(san, ErrInvalidFormat, "too many disambiguation characters")
	}
	file, rank := -1, -1
	for i := 0; i < len(hints); i++ {
		switch c := hints[i]; {
		case c >= 'a' && c <= 'h':
			file = int(c - 'a')
		case c >= '1' && c <= '8':
			rank = int(c - '1')
		default:
			return board.Move{}, reject(san, ErrInvalidFormat, "unexpected %q", c)
		}
	}

	from := board.NoSquare
	for _, sq := range e.pos.SquaresOf(pt, us) {
		if file >= 0 && sq.File() != file {
			continue
		}
		if rank >= 0 && sq.Rank() != rank {
			continue
		}
		if !e.pos.IsLegal(sq, to) {
			continue
		}
		if from != board.NoSquare {
			return board.Move{}, reject(san, ErrAmbiguousMove, "both %s and %s reach %s", from, sq, to)
		}
		from = sq
	}
	if from == board.NoSquare {
		return board.Move{}, reject(san, ErrNoLegalMoveMatches, "no %s can reach %s", pt, to)
	}
	return board.Move{From: from, To: to, Promotion: promo}, nil
}

// SANHistory returns the played moves in Standard Algebraic Notation,
// rebuilt from the position each move was played in.
func (e *Engine) SANHistory() []string {
	out := make([]string, len(e.history))
	for i, r := range e.history {
		out[i] = r.SAN()
	}
	return out
}

// SAN returns the move in Standard Algebraic Notation, including the
// check or mate suffix.
func (r MoveRecord) SAN() string {
	var sb strings.Builder

	switch {
	case r.CastleKingside:
		sb.WriteString("O-O")
	case r.CastleQueenside:
		sb.WriteString("O-O-O")
	case r.Piece == board.Pawn:
		if r.Captured != board.NoPieceType {
			sb.WriteByte(board.FileChar(r.From.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(r.To.String())
		if r.Promotion != board.NoPieceType {
			sb.WriteByte('=')
			sb.WriteByte(r.Promotion.Letter())
		}
	default:
		sb.WriteByte(r.Piece.Letter())
		sb.WriteString(r.disambiguation())
		if r.Captured != board.NoPieceType {
			sb.WriteByte('x')
		}
		sb.WriteString(r.To.String())
	}

	after := r.Before.Play(r.From, r.To, r.Promotion)
	them := r.Color.Other()
	if after.IsCheckmate(them) {
		sb.WriteByte('#')
	} else if after.IsInCheck(them) {
		sb.WriteByte('+')
	}
	return sb.String()
}

// disambiguation returns the origin file, rank, or square needed to tell
// the move apart from other pieces of the same kind that could also reach
// the destination.
func (r MoveRecord) disambiguation() string {
	var rivals []board.Square
	for _, sq := range r.Before.SquaresOf(r.Piece, r.Color) {
		if sq != r.From && r.Before.IsLegal(sq, r.To) {
			rivals = append(rivals, sq)
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range rivals {
		if sq.File() == r.From.File() {
			sameFile = true
		}
		if sq.Rank() == r.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(board.FileChar(r.From.File()))
	case !sameRank:
		return string(board.RankChar(r.From.Rank()))
	default:
		return r.From.String()
	}
}
