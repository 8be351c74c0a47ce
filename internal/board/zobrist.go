package board

// Zobrist keys, generated from a fixed seed so hashes are stable across
// runs and can be persisted.
var (
	zobristPiece      [12][64]uint64 // [Piece][Square]
	zobristEnPassant  [8]uint64      // one per file
	zobristCastling   [16]uint64     // every rights combination
	zobristSideToMove uint64         // XOR when black to move
)

func init() {
	initZobrist()
}

// xorshift64* generator.
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := &prng{state: 0x98F107A2BEEF1234}

	for pc := WhitePawn; pc < NoPiece; pc++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[pc][sq] = rng.next()
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// Hash returns the Zobrist key of the position. The move counters are not
// part of the key, so transpositions reached at different move numbers
// share a hash.
func (p *Position) Hash() uint64 {
	var hash uint64
	for sq := A1; sq <= H8; sq++ {
		if pc := p.Board[sq]; pc != NoPiece {
			hash ^= zobristPiece[pc][sq]
		}
	}
	if p.SideToMove == Black {
		hash ^= zobristSideToMove
	}
	hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant.IsValid() {
		hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	return hash
}
