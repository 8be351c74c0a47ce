// Package protocol drives an engine session from a line-oriented text
// protocol, in the spirit of UCI.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/engine"
	"github.com/hailam/chessarena/internal/storage"
)

// ErrNoArchive is reported by archive commands when none is configured.
var ErrNoArchive = errors.New("no archive configured")

const maxPerftDepth = 6

// Session implements the protocol for one engine.
type Session struct {
	eng      *engine.Engine
	engOpts  []engine.Option
	archive  *storage.Archive
	gameID   uuid.UUID
	chess960 bool

	log zerolog.Logger
	out io.Writer
}

// Option configures a Session.
type Option func(*Session)

// WithArchive enables the save, load, games, find and stats commands.
func WithArchive(a *storage.Archive) Option {
	return func(s *Session) { s.archive = a }
}

// WithLogger sets the session logger. It is also handed to every engine
// the session creates.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithChess960 makes ucinewgame start Chess960 games.
func WithChess960(on bool) Option {
	return func(s *Session) { s.chess960 = on }
}

// New creates a session. The first game starts from the standard position,
// or a Chess960 one when WithChess960 is set.
func New(opts ...Option) *Session {
	s := &Session{log: zerolog.Nop(), out: io.Discard}
	for _, opt := range opts {
		opt(s)
	}
	s.engOpts = []engine.Option{engine.WithLogger(s.log)}
	s.eng = engine.New(s.engOpts...)
	if s.chess960 {
		s.eng.Reset(true)
	}
	return s
}

// Engine returns the engine currently driven by the session.
func (s *Session) Engine() *engine.Engine {
	return s.eng
}

// Run reads commands from in until EOF or "quit", writing responses to
// out.
func (s *Session) Run(in io.Reader, out io.Writer) error {
	s.out = out
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		s.log.Debug().Str("cmd", cmd).Strs("args", args).Msg("command")

		switch cmd {
		case "uci":
			s.handleUCI()
		case "isready":
			s.println("readyok")
		case "ucinewgame":
			s.handleNewGame()
		case "position":
			s.handlePosition(args)
		case "move":
			s.handleMove(args)
		case "legal":
			s.handleLegal(args)
		case "fen":
			s.println(s.eng.FEN())
		case "history":
			s.println(strings.Join(s.eng.SANHistory(), " "))
		case "status":
			s.println(s.eng.Status().String())
		case "d":
			pos := s.eng.Position()
			s.printf("%v\nFen: %s\n", pos, pos.FEN())
		case "perft":
			s.handlePerft(args)
		case "save":
			s.handleSave()
		case "load":
			s.handleLoad(args)
		case "games":
			s.handleGames()
		case "find":
			s.handleFind()
		case "stats":
			s.handleStats()
		case "quit":
			return nil
		default:
			s.errorf("unknown command: %s", cmd)
		}
	}
	return scanner.Err()
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Session) errorf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	s.log.Debug().Str("error", msg).Msg("command failed")
	s.println("error", msg)
}

// handleUCI responds to the "uci" command.
func (s *Session) handleUCI() {
	s.println("id name ChessArena")
	s.println("id author ChessArena Team")
	s.println()
	s.println("uciok")
}

// handleNewGame starts a fresh game that is not yet archived.
func (s *Session) handleNewGame() {
	s.eng.Reset(s.chess960)
	s.gameID = uuid.Nil
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position chess960
//   - position fen <fen> [moves m1 m2 ...]
//
// Moves may be written in UCI or SAN. Nothing changes unless the whole
// command succeeds.
func (s *Session) handlePosition(args []string) {
	if len(args) == 0 {
		s.errorf("position: missing startpos, chess960 or fen")
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	eng := engine.New(s.engOpts...)
	switch args[0] {
	case "startpos":
		eng.Reset(false)
	case "chess960":
		eng.Reset(true)
	case "fen":
		if err := eng.LoadFEN(strings.Join(args[1:movesAt], " ")); err != nil {
			s.errorf("%v", err)
			return
		}
	default:
		s.errorf("position: unknown setup %q", args[0])
		return
	}

	if movesAt < len(args) {
		for _, m := range args[movesAt+1:] {
			if err := applyMove(eng, m); err != nil {
				s.errorf("%v", err)
				return
			}
		}
	}

	s.eng = eng
	s.gameID = uuid.Nil
}

// applyMove accepts either notation: text that is not UCI is read as SAN.
func applyMove(eng *engine.Engine, text string) error {
	err := eng.ApplyMoveUCI(text)
	if errors.Is(err, engine.ErrInvalidFormat) {
		err = eng.ApplyMoveSAN(text)
	}
	return err
}

func (s *Session) handleMove(args []string) {
	if len(args) != 1 {
		s.errorf("move: want exactly one move")
		return
	}
	if err := applyMove(s.eng, args[0]); err != nil {
		s.errorf("%v", err)
		return
	}
	history := s.eng.SANHistory()
	s.println("ok", history[len(history)-1])

	switch status := s.eng.Status(); status {
	case board.Checkmate, board.Stalemate:
		s.println("status", status)
	}
}

func (s *Session) handleLegal(args []string) {
	if len(args) != 1 {
		s.errorf("legal: want a square")
		return
	}
	sq, err := board.ParseSquare(args[0])
	if err != nil {
		s.errorf("legal: %v", err)
		return
	}
	moves := s.eng.LegalMoves(sq)
	names := make([]string, len(moves))
	for i, to := range moves {
		names[i] = to.String()
	}
	s.println(strings.TrimSpace("legal " + strings.Join(names, " ")))
}

// handlePerft counts leaf nodes from the current position.
func (s *Session) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 || d > maxPerftDepth {
			s.errorf("perft: depth must be 1-%d", maxPerftDepth)
			return
		}
		depth = d
	}

	start := time.Now()
	nodes := s.eng.Position().Perft(depth)
	elapsed := time.Since(start)

	s.printf("Nodes: %d\n", nodes)
	s.log.Info().Int("depth", depth).Int64("nodes", nodes).Dur("elapsed", elapsed).Msg("perft")
}

func (s *Session) handleSave() {
	if s.archive == nil {
		s.errorf("%v", ErrNoArchive)
		return
	}
	rec := storage.RecordFromEngine(s.gameID, s.eng)
	if err := s.archive.Save(&rec); err != nil {
		s.errorf("%v", err)
		return
	}
	s.gameID = rec.ID
	s.println("saved", rec.ID)
}

func (s *Session) handleLoad(args []string) {
	if s.archive == nil {
		s.errorf("%v", ErrNoArchive)
		return
	}
	if len(args) != 1 {
		s.errorf("load: want a game id")
		return
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		s.errorf("load: %v", err)
		return
	}
	rec, err := s.archive.Load(id)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	eng, err := storage.Replay(rec, s.engOpts...)
	if err != nil {
		s.errorf("%v", err)
		return
	}
	s.eng = eng
	s.gameID = rec.ID
	s.println("loaded", rec.ID, eng.FEN())
}

func (s *Session) handleGames() {
	if s.archive == nil {
		s.errorf("%v", ErrNoArchive)
		return
	}
	games, err := s.archive.List()
	if err != nil {
		s.errorf("%v", err)
		return
	}
	for _, g := range games {
		s.printf("game %s %s moves=%d updated=%s\n", g.ID, g.Result, len(g.UCI), g.UpdatedAt.Format(time.RFC3339))
	}
	s.println("games", len(games))
}

// handleFind lists archived games that reached the current position.
func (s *Session) handleFind() {
	if s.archive == nil {
		s.errorf("%v", ErrNoArchive)
		return
	}
	ids, err := s.archive.GamesWithPosition(s.eng.Position())
	if err != nil {
		s.errorf("%v", err)
		return
	}
	for _, id := range ids {
		s.println("game", id)
	}
	s.println("found", len(ids))
}

func (s *Session) handleStats() {
	if s.archive == nil {
		s.errorf("%v", ErrNoArchive)
		return
	}
	st, err := s.archive.Stats()
	if err != nil {
		s.errorf("%v", err)
		return
	}
	s.printf("games=%d white=%d black=%d draws=%d open=%d chess960=%d moves=%d\n",
		st.Games, st.WhiteWins, st.BlackWins, st.Draws, st.InProgress, st.Chess960, st.TotalMoves)
}
