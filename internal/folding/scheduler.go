package folding

import (
	"time"

	"github.com/bep/debounce"
)

// DefaultDebounce is the quiet period after the last edit before ranges are
// recomputed.
const DefaultDebounce = 200 * time.Millisecond

// State is the recompute scheduler state.
type State uint8

const (
	StateIdle State = iota
	StateDebouncing
	StateComputing
	StateDisposed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateComputing:
		return "computing"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Debouncer runs the most recently passed function once calls have stopped
// for a while. It is the signature of debounce.New's result.
type Debouncer func(f func())

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(after time.Duration) Debouncer {
	return debounce.New(after)
}

// Scheduler debounces recompute requests and hands out generation tokens.
//
// Trigger arms (or re-arms) the debounce timer. When it fires, the scheduler
// bumps the token and calls start with it on the editor loop. A computation
// may only apply its result if Complete reports that its token is still the
// current one; Cancel and Dispose bump the token so everything in flight is
// dropped when it lands.
//
// All methods must run on the editor loop.
type Scheduler struct {
	debounce Debouncer
	post     func(func())
	start    func(token uint64)

	token    uint64 // current generation
	running  uint64 // token of the newest started computation, 0 when none
	armSeq   uint64 // identifies the newest armed timer
	armed    bool
	disposed bool
}

// NewScheduler creates a scheduler. post must run its argument on the editor
// loop; start is called there with the new token when the timer fires.
func NewScheduler(d Debouncer, post func(func()), start func(token uint64)) *Scheduler {
	return &Scheduler{
		debounce: d,
		post:     post,
		start:    start,
	}
}

// Trigger requests a recomputation after the debounce delay. Repeated calls
// restart the delay.
func (s *Scheduler) Trigger() {
	if s.disposed {
		return
	}
	s.armSeq++
	seq := s.armSeq
	s.armed = true
	s.debounce(func() {
		s.post(func() { s.fire(seq) })
	})
}

// fire runs on the editor loop once the debounce timer expires.
func (s *Scheduler) fire(seq uint64) {
	if s.disposed || !s.armed || seq != s.armSeq {
		return
	}
	s.armed = false
	s.token++
	s.running = s.token
	s.start(s.token)
}

// Complete is called when the computation started with token finishes. It
// reports whether the result may be applied.
func (s *Scheduler) Complete(token uint64) bool {
	if token == s.running {
		s.running = 0
	}
	return !s.disposed && token == s.token
}

// Cancel drops the armed timer and invalidates any computation in flight.
func (s *Scheduler) Cancel() {
	if s.disposed {
		return
	}
	s.cancel()
}

func (s *Scheduler) cancel() {
	s.armSeq++
	if s.armed {
		s.armed = false
		// Replace the pending callback so the timer fires into a no-op.
		s.debounce(func() {})
	}
	s.token++
	s.running = 0
}

// Dispose cancels everything and makes every later call a no-op.
func (s *Scheduler) Dispose() {
	if s.disposed {
		return
	}
	s.cancel()
	s.disposed = true
}

// Token returns the current generation token.
func (s *Scheduler) Token() uint64 {
	return s.token
}

// State returns the scheduler state.
func (s *Scheduler) State() State {
	switch {
	case s.disposed:
		return StateDisposed
	case s.armed:
		return StateDebouncing
	case s.running != 0:
		return StateComputing
	default:
		return StateIdle
	}
}
