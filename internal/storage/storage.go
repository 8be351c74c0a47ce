package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hailam/chessarena/internal/board"
	"github.com/hailam/chessarena/internal/engine"
)

// Storage keys
const (
	prefixGame     = "game/"
	prefixPosition = "pos/"
)

// ErrGameNotFound is returned when no game is stored under an id.
var ErrGameNotFound = errors.New("game not found")

// Game results in PGN notation.
const (
	ResultWhiteWins  = "1-0"
	ResultBlackWins  = "0-1"
	ResultDraw       = "1/2-1/2"
	ResultInProgress = "*"
)

// GameRecord is an archived game. The UCI moves, replayed from StartFEN,
// are the source of truth; SAN and FinalFEN are stored for display.
type GameRecord struct {
	ID        uuid.UUID `json:"id"`
	StartFEN  string    `json:"start_fen"`
	Chess960  bool      `json:"chess960"`
	UCI       []string  `json:"uci"`
	SAN       []string  `json:"san"`
	FinalFEN  string    `json:"final_fen"`
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordFromEngine captures the session held by eng. A nil id gets a
// fresh random one.
func RecordFromEngine(id uuid.UUID, eng *engine.Engine) GameRecord {
	if id == uuid.Nil {
		id = uuid.New()
	}
	status := eng.Status()
	return GameRecord{
		ID:       id,
		StartFEN: eng.StartFEN(),
		Chess960: eng.Chess960(),
		UCI:      eng.UCIHistory(),
		SAN:      eng.SANHistory(),
		FinalFEN: eng.FEN(),
		Status:   status.String(),
		Result:   result(status, eng.Position().SideToMove),
	}
}

func result(status board.GameStatus, toMove board.Color) string {
	switch status {
	case board.Checkmate:
		if toMove == board.White {
			return ResultBlackWins
		}
		return ResultWhiteWins
	case board.Stalemate:
		return ResultDraw
	default:
		return ResultInProgress
	}
}

// Replay rebuilds a session from a record by loading StartFEN and
// applying every UCI move in order.
func Replay(rec GameRecord, opts ...engine.Option) (*engine.Engine, error) {
	eng := engine.New(opts...)
	if err := eng.LoadVariantFEN(rec.StartFEN, rec.Chess960); err != nil {
		return nil, fmt.Errorf("replay game %s: %w", rec.ID, err)
	}
	for i, m := range rec.UCI {
		if err := eng.ApplyMoveUCI(m); err != nil {
			return nil, fmt.Errorf("replay game %s move %d: %w", rec.ID, i+1, err)
		}
	}
	return eng, nil
}

// ArchiveStats summarises the stored games.
type ArchiveStats struct {
	Games      int `json:"games"`
	WhiteWins  int `json:"white_wins"`
	BlackWins  int `json:"black_wins"`
	Draws      int `json:"draws"`
	InProgress int `json:"in_progress"`
	Chess960   int `json:"chess960"`
	TotalMoves int `json:"total_moves"`
}

// Archive wraps BadgerDB for game storage.
type Archive struct {
	db  *badger.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens or creates an archive in dir.
func Open(dir string, log zerolog.Logger) (*Archive, error) {
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens an archive that lives only as long as the process.
func OpenInMemory(log zerolog.Logger) (*Archive, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log zerolog.Logger) (*Archive, error) {
	log = log.With().Str("component", "archive").Logger()
	opts = opts.
		WithLogger(badgerLogger{log: log}).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	log.Debug().Str("dir", opts.Dir).Bool("in_memory", opts.InMemory).Msg("archive opened")
	return &Archive{db: db, log: log, now: time.Now}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func gameKey(id uuid.UUID) []byte {
	return []byte(prefixGame + id.String())
}

func positionPrefix(hash uint64) string {
	return fmt.Sprintf("%s%016x/", prefixPosition, hash)
}

func positionKey(hash uint64, id uuid.UUID) []byte {
	return []byte(positionPrefix(hash) + id.String())
}

// positionHashes returns the key of every position the game passes
// through, start and final included, without duplicates.
func positionHashes(rec GameRecord) ([]uint64, error) {
	eng, err := Replay(rec)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]bool)
	var hashes []uint64
	add := func(p board.Position) {
		if h := p.Hash(); !seen[h] {
			seen[h] = true
			hashes = append(hashes, h)
		}
	}
	for _, r := range eng.History() {
		add(r.Before)
	}
	add(eng.Position())
	return hashes, nil
}

// Save stores rec, replacing any game with the same id, and refreshes its
// position index. The moves are replayed first, so an illegal record is
// rejected. ID, CreatedAt and UpdatedAt are filled in on rec only when the
// write succeeds.
func (a *Archive) Save(rec *GameRecord) error {
	out := *rec
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	hashes, err := positionHashes(out)
	if err != nil {
		return err
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		old, err := getRecord(txn, out.ID)
		switch {
		case err == nil:
			out.CreatedAt = old.CreatedAt
			if err := deleteIndex(txn, old); err != nil {
				return err
			}
		case errors.Is(err, ErrGameNotFound):
			if out.CreatedAt.IsZero() {
				out.CreatedAt = a.now()
			}
		default:
			return err
		}
		out.UpdatedAt = a.now()

		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		if err := txn.Set(gameKey(out.ID), data); err != nil {
			return err
		}
		for _, h := range hashes {
			if err := txn.Set(positionKey(h, out.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save game %s: %w", out.ID, err)
	}
	*rec = out

	a.log.Debug().Str("id", rec.ID.String()).Int("moves", len(rec.UCI)).Int("positions", len(hashes)).Msg("game saved")
	return nil
}

func getRecord(txn *badger.Txn, id uuid.UUID) (GameRecord, error) {
	var rec GameRecord
	item, err := txn.Get(gameKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	if err != nil {
		return rec, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func deleteIndex(txn *badger.Txn, rec GameRecord) error {
	hashes, err := positionHashes(rec)
	if err != nil {
		return err
	}
	for _, h := range hashes {
		if err := txn.Delete(positionKey(h, rec.ID)); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the game stored under id, or an error wrapping
// ErrGameNotFound.
func (a *Archive) Load(id uuid.UUID) (GameRecord, error) {
	var rec GameRecord
	err := a.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, id)
		return err
	})
	return rec, err
}

// Delete removes a game and its position index.
func (a *Archive) Delete(id uuid.UUID) error {
	err := a.db.Update(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, id)
		if err != nil {
			return err
		}
		if err := deleteIndex(txn, rec); err != nil {
			return err
		}
		return txn.Delete(gameKey(id))
	})
	if err != nil {
		return err
	}
	a.log.Debug().Str("id", id.String()).Msg("game deleted")
	return nil
}

// List returns every stored game, most recently updated first.
func (a *Archive) List() ([]GameRecord, error) {
	var games []GameRecord
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGame)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].UpdatedAt.After(games[j].UpdatedAt)
	})
	return games, nil
}

// GamesWithPosition returns the ids of the games that reached pos, in key
// order. Move counters are ignored when matching.
func (a *Archive) GamesWithPosition(pos board.Position) ([]uuid.UUID, error) {
	prefix := positionPrefix(pos.Hash())
	var ids []uuid.UUID
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			id, err := uuid.Parse(strings.TrimPrefix(key, prefix))
			if err != nil {
				return fmt.Errorf("bad index key %q: %w", key, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

// Stats tallies results over every stored game.
func (a *Archive) Stats() (ArchiveStats, error) {
	var stats ArchiveStats
	games, err := a.List()
	if err != nil {
		return stats, err
	}
	for _, g := range games {
		stats.Games++
		stats.TotalMoves += len(g.UCI)
		if g.Chess960 {
			stats.Chess960++
		}
		switch g.Result {
		case ResultWhiteWins:
			stats.WhiteWins++
		case ResultBlackWins:
			stats.BlackWins++
		case ResultDraw:
			stats.Draws++
		default:
			stats.InProgress++
		}
	}
	return stats, nil
}
