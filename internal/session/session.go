// Package session runs a single round against a real clock for adapters that
// cannot drive the core's timers from their own event loop.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/concentor/internal/game"
)

var (
	ErrRestartUnavailable = errors.New("restart is not available yet")
	ErrClosed             = errors.New("session is closed")
)

type EventType string

const (
	StateEvent EventType = "state" // Board changed
	WonEvent   EventType = "won"   // Every pair matched
)

// Event is emitted after every change to the round.
type Event struct {
	Type      EventType     `json:"type"`
	SessionID string        `json:"sessionId"`
	Snapshot  game.Snapshot `json:"data"`
}

// Notifier receives events in order. It is called with the session lock held
// and must not call back into the session.
type Notifier func(Event)

// Session owns one round and serialises every input event and timer firing
// onto it.
type Session struct {
	ID string

	mu         sync.Mutex
	round      *game.Round
	clock      clock.Clock
	timing     game.Timing
	notify     Notifier
	log        zerolog.Logger
	preview    *clock.Timer
	hide       *clock.Timer
	ticker     *clock.Ticker
	stopTick   chan struct{}
	lastActive time.Time
	closed     bool
}

// New wraps round in a session. The round is not started until Start.
func New(id string, round *game.Round, clk clock.Clock, timing game.Timing, notify Notifier, log zerolog.Logger) *Session {
	return &Session{
		ID:         id,
		round:      round,
		clock:      clk,
		timing:     timing,
		notify:     notify,
		log:        log.With().Str("session", id).Logger(),
		lastActive: clk.Now(),
	}
}

// Start deals the first round and arms the preview and elapsed-time timers.
func (s *Session) Start() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.round.Snapshot()
	}
	gen := s.round.Start()
	s.armRound(gen)
	s.touch()
	s.log.Debug().Uint64("round", gen).Msg("round started")

	return s.emit(StateEvent)
}

// Select forwards a tile selection to the round.
func (s *Session) Select(index int) (game.Outcome, game.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return game.Rejected, s.round.Snapshot()
	}
	s.touch()

	outcome := s.round.Select(index)
	gen := s.round.Generation()

	switch outcome {
	case game.Rejected:
		s.log.Debug().Int("index", index).Msg("selection ignored")
		return outcome, s.round.Snapshot()
	case game.Mismatched:
		if s.hide != nil {
			s.hide.Stop()
		}
		s.hide = s.clock.AfterFunc(s.timing.Hide, func() {
			s.fire(gen, s.round.OnHideTimeout)
		})
	case game.Completed:
		s.stopTicker()
		res, _ := s.round.Result()
		s.log.Info().Uint("elapsed", res.Elapsed).Uint("errors", res.Errors).Msg("round won")
	}

	snap := s.emit(StateEvent)
	if outcome == game.Completed {
		s.emit(WonEvent)
	}
	return outcome, snap
}

// Restart reshuffles and previews a new round once the current one is ready.
func (s *Session) Restart() (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.round.Snapshot(), ErrClosed
	}
	s.touch()

	gen, ok := s.round.Restart()
	if !ok {
		return s.round.Snapshot(), ErrRestartUnavailable
	}
	s.armRound(gen)
	s.log.Debug().Uint64("round", gen).Msg("round restarted")

	return s.emit(StateEvent), nil
}

// Snapshot returns the current board. Reading does not count as activity.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.round.Snapshot()
}

// View calls fn with the current board while holding the session lock, so no
// event is emitted until fn returns. fn must not call back into the session.
func (s *Session) View(fn func(game.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.round.Snapshot())
}

// LastActive returns the time of the last player action.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops every timer. Later calls to the session are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopTimers()
}

func (s *Session) touch() {
	s.lastActive = s.clock.Now()
}

func (s *Session) armRound(gen uint64) {
	s.stopTimers()

	s.preview = s.clock.AfterFunc(s.timing.Preview, func() {
		s.fire(gen, s.round.OnPreviewTimeout)
	})

	ticker := s.clock.Ticker(s.timing.Tick)
	stop := make(chan struct{})
	s.ticker = ticker
	s.stopTick = stop

	go func() {
		for {
			select {
			case <-ticker.C:
				s.fire(gen, s.round.OnTick)
			case <-stop:
				return
			}
		}
	}()
}

// fire applies a timer callback armed for round gen. Firings for an older
// round are dropped by the round itself.
func (s *Session) fire(gen uint64, fn func(uint64) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if fn(gen) {
		s.emit(StateEvent)
	}
}

func (s *Session) stopTicker() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stopTick)
	s.ticker = nil
	s.stopTick = nil
}

func (s *Session) stopTimers() {
	if s.preview != nil {
		s.preview.Stop()
		s.preview = nil
	}
	if s.hide != nil {
		s.hide.Stop()
		s.hide = nil
	}
	s.stopTicker()
}

func (s *Session) emit(typ EventType) game.Snapshot {
	snap := s.round.Snapshot()
	if s.notify != nil {
		s.notify(Event{Type: typ, SessionID: s.ID, Snapshot: snap})
	}
	return snap
}
