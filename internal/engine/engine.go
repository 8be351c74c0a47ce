// Package engine owns a chess game session: the current position, the
// history of played moves, and the text formats (FEN, UCI, SAN) that
// callers use to drive it.
package engine

import (
	"math/rand"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/chessarena/internal/board"
)

var uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// MoveRecord describes one played move. Before is the position the move
// was played from; records are never modified once appended.
type MoveRecord struct {
	Piece           board.PieceType
	Color           board.Color
	From            board.Square
	To              board.Square
	Captured        board.PieceType // NoPieceType if nothing was taken
	Promotion       board.PieceType // NoPieceType unless a pawn promoted
	CastleKingside  bool
	CastleQueenside bool
	Before          board.Position
}

// Move returns the record as a from/to/promotion move.
func (r MoveRecord) Move() board.Move {
	return board.Move{From: r.From, To: r.To, Promotion: r.Promotion}
}

// Engine is a single game session. It is not safe for concurrent use.
//
// Every exported mutator either commits completely or leaves the position
// and history untouched.
type Engine struct {
	pos      board.Position
	start    board.Position
	history  []MoveRecord
	chess960 bool

	rng *rand.Rand
	log zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for session events and rejected moves.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRand sets the random source used for Chess960 setups.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// New creates an engine at the standard starting position.
func New(opts ...Option) *Engine {
	e := &Engine{
		pos: board.NewPosition(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.start = e.pos
	return e
}

// Reset starts a new game from the standard position, or from a random
// Chess960 position when chess960 is set.
func (e *Engine) Reset(chess960 bool) {
	if chess960 {
		e.pos = GenerateChess960Position(e.rng)
	} else {
		e.pos = board.NewPosition()
	}
	e.start = e.pos
	e.history = nil
	e.chess960 = chess960
	e.log.Info().Bool("chess960", chess960).Str("fen", e.pos.FEN()).Msg("new game")
}

// LoadFEN replaces the position with the one described by fen and clears
// the history. On error nothing changes and the error wraps
// board.ErrInvalidFEN.
func (e *Engine) LoadFEN(fen string) error {
	return e.LoadVariantFEN(fen, false)
}

// LoadVariantFEN is LoadFEN for a game whose variant is already known, such
// as an archived Chess960 game being replayed.
func (e *Engine) LoadVariantFEN(fen string, chess960 bool) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		e.log.Debug().Err(err).Str("fen", fen).Msg("rejected FEN")
		return err
	}
	e.pos = pos
	e.start = pos
	e.history = nil
	e.chess960 = chess960
	e.log.Info().Str("fen", fen).Bool("chess960", chess960).Msg("position loaded")
	return nil
}

// FEN returns the current position in canonical FEN.
func (e *Engine) FEN() string {
	return e.pos.FEN()
}

// StartFEN returns the position the current history starts from.
func (e *Engine) StartFEN() string {
	return e.start.FEN()
}

// Chess960 reports whether the game is a Chess960 game, started by Reset or
// loaded with LoadVariantFEN.
func (e *Engine) Chess960() bool {
	return e.chess960
}

// Position returns a snapshot of the current position.
func (e *Engine) Position() board.Position {
	return e.pos
}

// LegalMoves returns the legal destinations of the piece on sq, whichever
// side it belongs to. An empty square yields nil.
func (e *Engine) LegalMoves(sq board.Square) []board.Square {
	if !sq.IsValid() {
		return nil
	}
	return e.pos.LegalMoves(sq)
}

// Status classifies the current position for the side to move.
func (e *Engine) Status() board.GameStatus {
	return e.pos.Status()
}

// History returns a copy of the played moves.
func (e *Engine) History() []MoveRecord {
	out := make([]MoveRecord, len(e.history))
	copy(out, e.history)
	return out
}

// UCIHistory returns the played moves in UCI form.
func (e *Engine) UCIHistory() []string {
	out := make([]string, len(e.history))
	for i, r := range e.history {
		out[i] = r.Move().String()
	}
	return out
}

// ApplyMoveUCI plays a move given as from square, to square and an
// optional promotion letter, e.g. "e2e4" or "e7e8q". A pawn reaching the
// last rank without a letter becomes a queen.
func (e *Engine) ApplyMoveUCI(uci string) error {
	if err := e.applyUCI(uci); err != nil {
		e.log.Debug().Err(err).Str("move", uci).Str("fen", e.pos.FEN()).Msg("rejected move")
		return err
	}
	return nil
}

func (e *Engine) applyUCI(uci string) error {
	if !uciPattern.MatchString(uci) {
		return reject(uci, ErrInvalidFormat, "expected UCI like e2e4 or e7e8q")
	}
	m, err := board.ParseUCI(uci)
	if err != nil {
		return reject(uci, ErrInvalidFormat, "%v", err)
	}

	pc := e.pos.PieceAt(m.From)
	if pc == board.NoPiece {
		return reject(uci, ErrNoPieceAtSquare, "no piece at %s", m.From)
	}
	if pc.Color() != e.pos.SideToMove {
		return reject(uci, ErrWrongTurn, "it is %s's turn, but the piece on %s is %s",
			e.pos.SideToMove, m.From, pc.Color())
	}
	if !e.pos.IsLegal(m.From, m.To) {
		return reject(uci, ErrIllegalMove, "%s%s is not legal", m.From, m.To)
	}

	promotes := e.pos.IsPromotion(m.From, m.To)
	switch {
	case promotes && m.Promotion == board.NoPieceType:
		m.Promotion = board.Queen
	case !promotes && m.Promotion != board.NoPieceType:
		return reject(uci, ErrIllegalMove, "%s%s is not a promotion", m.From, m.To)
	}

	e.commit(m)
	return nil
}

// commit plays a move that has already been validated.
func (e *Engine) commit(m board.Move) {
	before := e.pos
	pc := before.PieceAt(m.From)

	rec := MoveRecord{
		Piece:     pc.Type(),
		Color:     pc.Color(),
		From:      m.From,
		To:        m.To,
		Captured:  before.PieceAt(m.To).Type(),
		Promotion: m.Promotion,
		Before:    before,
	}
	if before.IsEnPassant(m.From, m.To) {
		rec.Captured = board.Pawn
	}
	if before.IsCastling(m.From, m.To) {
		rec.CastleKingside = m.To.File() > m.From.File()
		rec.CastleQueenside = !rec.CastleKingside
	}

	e.pos = before.Play(m.From, m.To, m.Promotion)
	e.history = append(e.history, rec)
}
