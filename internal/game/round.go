package game

import (
	"math/rand"
	"time"
)

type Phase string

const (
	Previewing  Phase = "previewing"  // All tiles shown face-up, input locked
	Idle        Phase = "idle"        // No tile selected
	OneSelected Phase = "oneSelected" // One tile revealed, awaiting the second pick
	Resolving   Phase = "resolving"   // Two mismatched tiles shown, input locked until hidden
	Won         Phase = "won"         // Every pair matched
)

// Outcome describes what a selection did to the round.
type Outcome string

const (
	Rejected   Outcome = "rejected"
	Revealed   Outcome = "revealed"
	Matched    Outcome = "matched"
	Mismatched Outcome = "mismatched"
	Completed  Outcome = "won"
)

// Result is surfaced once every pair has been matched.
type Result struct {
	Elapsed uint `json:"elapsed"`
	Errors  uint `json:"errors"`
}

// Option configures a Round.
type Option func(*Round)

// WithShuffler replaces the default random shuffler.
func WithShuffler(s Shuffler) Option {
	return func(r *Round) {
		r.shuffle = s
	}
}

// WithRand seeds the default shuffler with rng.
func WithRand(rng *rand.Rand) Option {
	return func(r *Round) {
		r.shuffle = RandomShuffler(rng)
	}
}

// Round is the game controller. It owns the board and enforces the
// two-selection match protocol. It is not safe for concurrent use; callers
// serialise every method call.
//
// Timers are the caller's job: after Start or Restart the caller arms a preview
// timeout, a recurring tick and, after a mismatch, a hide timeout. Each timer
// carries the generation it was armed for and is ignored once a newer round
// has begun.
type Round struct {
	catalog        []CardFace
	shuffle        Shuffler
	board          Board
	phase          Phase
	generation     uint64
	restartEnabled bool
	running        bool
	result         *Result
}

// NewRound validates the catalog and returns a round that has not started yet.
func NewRound(catalog []CardFace, opts ...Option) (*Round, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	r := &Round{
		catalog: append([]CardFace(nil), catalog...),
		phase:   Previewing,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.shuffle == nil {
		r.shuffle = RandomShuffler(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return r, nil
}

// Start deals a freshly shuffled deck face-up and locks input for the
// preview. It returns the generation that timers for this round must carry.
func (r *Round) Start() uint64 {
	// The catalog was validated by NewRound.
	tiles, _ := BuildDeckWith(r.catalog, r.shuffle)

	r.generation++
	r.board = newBoard(tiles)
	r.board.revealAll()
	r.phase = Previewing
	r.restartEnabled = false
	r.running = true
	r.result = nil

	return r.generation
}

// Restart starts a new round if the current one has finished its preview.
func (r *Round) Restart() (uint64, bool) {
	if !r.restartEnabled {
		return r.generation, false
	}
	return r.Start(), true
}

// Select reveals the tile at index and resolves the pair once two tiles are
// face-up. Invalid selections are ignored and reported as Rejected.
func (r *Round) Select(index int) Outcome {
	if !r.board.InputEnabled {
		return Rejected
	}
	if r.phase != Idle && r.phase != OneSelected {
		return Rejected
	}
	if index < 0 || index >= len(r.board.Tiles) {
		return Rejected
	}
	if !r.board.Tiles[index].Selectable() {
		return Rejected
	}

	r.board.Tiles[index].Revealed = true
	r.board.Selection = append(r.board.Selection, index)

	if r.phase == Idle {
		r.phase = OneSelected
		return Revealed
	}

	first, second := r.board.Selection[0], r.board.Selection[1]
	if r.board.Tiles[first].Face != r.board.Tiles[second].Face {
		r.board.Errors++
		r.board.InputEnabled = false
		r.phase = Resolving
		return Mismatched
	}

	r.board.Tiles[first].Matched = true
	r.board.Tiles[second].Matched = true
	r.board.Selection = r.board.Selection[:0]
	r.phase = Idle

	if r.board.allMatched() {
		r.finish()
		return Completed
	}
	return Matched
}

func (r *Round) finish() {
	r.running = false
	r.board.InputEnabled = false
	r.phase = Won
	r.restartEnabled = true
	r.result = &Result{
		Elapsed: r.board.Elapsed,
		Errors:  r.board.Errors,
	}
}

// OnPreviewTimeout ends the preview: every tile goes face-down and input and
// restart are enabled. It reports whether the call changed the round.
func (r *Round) OnPreviewTimeout(gen uint64) bool {
	if gen != r.generation || r.phase != Previewing {
		return false
	}

	r.board.hideUnmatched()
	r.board.InputEnabled = true
	r.restartEnabled = true
	r.phase = Idle
	return true
}

// OnHideTimeout turns a mismatched pair face-down and unlocks input.
func (r *Round) OnHideTimeout(gen uint64) bool {
	if gen != r.generation || r.phase != Resolving {
		return false
	}

	for _, i := range r.board.Selection {
		r.board.Tiles[i].Revealed = false
	}
	r.board.Selection = r.board.Selection[:0]
	r.board.InputEnabled = true
	r.phase = Idle
	return true
}

// OnTick advances the elapsed-time counter by one second.
func (r *Round) OnTick(gen uint64) bool {
	if gen != r.generation || !r.running {
		return false
	}
	r.board.Elapsed++
	return true
}

func (r *Round) Generation() uint64 {
	return r.generation
}

func (r *Round) Phase() Phase {
	return r.phase
}

// Running reports whether the elapsed-time counter should keep ticking.
func (r *Round) Running() bool {
	return r.running
}

func (r *Round) RestartEnabled() bool {
	return r.restartEnabled
}

func (r *Round) InputEnabled() bool {
	return r.board.InputEnabled
}

func (r *Round) Errors() uint {
	return r.board.Errors
}

func (r *Round) Elapsed() uint {
	return r.board.Elapsed
}

// Tiles returns a copy of the current tiles.
func (r *Round) Tiles() []Tile {
	out := make([]Tile, len(r.board.Tiles))
	copy(out, r.board.Tiles)
	return out
}

// selection returns the indices of the revealed but unmatched tiles.
func (r *Round) selection() []int {
	out := make([]int, len(r.board.Selection))
	copy(out, r.board.Selection)
	return out
}

// Result returns the final counters once the round has been won.
func (r *Round) Result() (Result, bool) {
	if r.result == nil {
		return Result{}, false
	}
	return *r.result, true
}

// Timing holds the delays an adapter arms for a round.
type Timing struct {
	Preview time.Duration
	Hide    time.Duration
	Tick    time.Duration
}
