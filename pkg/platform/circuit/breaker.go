// Package circuit provides a three-state circuit breaker shared by outbound clients.
//
// A breaker starts Closed. Consecutive failures open it; while Open every call is
// rejected until the open duration has elapsed, after which exactly one trial call
// is admitted (HalfOpen). A successful trial closes the breaker, a failed one opens
// it again and restarts the timer.
//
// Allow hands out a Ticket stamped with the breaker generation. Every transition
// and every trial admission starts a new generation, so a call that was admitted
// before the breaker opened cannot close it, decide a trial or free the trial slot.
package circuit

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow when the breaker rejects a call.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// StateChange describes the transition caused by a single call to the breaker.
// From and To are equal when nothing changed.
type StateChange struct {
	From   State
	To     State
	Opened bool
	Closed bool
}

// Changed reports whether the breaker moved to a different state.
func (c StateChange) Changed() bool {
	return c.From != c.To
}

const (
	defaultFailureThreshold = 4
	defaultSuccessThreshold = 1
)

// Breaker is safe for concurrent use.
type Breaker struct {
	name             string
	failureThreshold int
	successThreshold int
	openDuration     time.Duration
	now              func() time.Time
	onStateChange    func(name string, change StateChange)

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	openedAt      time.Time
	trialInFlight bool
	generation    uint64
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets how many successes are needed to close an open breaker.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithOpenDuration sets how long the breaker stays open before admitting a trial.
// Zero means the next call after opening is already a trial.
func WithOpenDuration(d time.Duration) Option {
	return func(b *Breaker) {
		if d >= 0 {
			b.openDuration = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithOnStateChange registers a callback invoked after every transition.
// The callback runs outside the breaker lock.
func WithOnStateChange(fn func(name string, change StateChange)) Option {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// New creates a closed breaker.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: defaultFailureThreshold,
		successThreshold: defaultSuccessThreshold,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state without advancing timers.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsOpen reports whether calls are currently being short-circuited or probed.
func (b *Breaker) IsOpen() bool {
	return b.State() != StateClosed
}

// Ticket is the admission returned by Allow. The holder reports the outcome of
// its call exactly once through Success, Failure or Release. The zero Ticket
// reports nothing.
type Ticket struct {
	b          *Breaker
	generation uint64
	trial      bool
}

// Trial reports whether the ticket admitted the HalfOpen trial call.
func (t Ticket) Trial() bool {
	return t.trial
}

// Success records a successful call. It returns true when the breaker is closed
// afterwards. Outcomes from an earlier generation change nothing.
func (t Ticket) Success() (bool, StateChange) {
	if t.b == nil {
		return false, StateChange{}
	}
	return t.b.recordSuccess(&t)
}

// Failure records a failed call. It returns true when the breaker is not closed
// afterwards. Outcomes from an earlier generation change nothing.
func (t Ticket) Failure() (bool, StateChange) {
	if t.b == nil {
		return false, StateChange{}
	}
	return t.b.recordFailure(&t)
}

// Release gives back the trial slot without recording an outcome, for calls
// abandoned by the caller before the upstream answered. Only the ticket that
// holds the current trial can free it.
func (t Ticket) Release() {
	if t.b == nil {
		return
	}
	b := t.b
	b.mu.Lock()
	if b.current(&t) {
		b.trialInFlight = false
	}
	b.mu.Unlock()
}

// Allow decides whether a call may proceed. When it returns a nil error the
// caller must report the outcome through the ticket.
func (b *Breaker) Allow() (Ticket, error) {
	b.mu.Lock()
	var change StateChange
	switch b.state {
	case StateClosed:
		t := Ticket{b: b, generation: b.generation}
		b.mu.Unlock()
		return t, nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.openDuration {
			b.mu.Unlock()
			return Ticket{}, ErrOpen
		}
		change = b.transition(StateHalfOpen)
	case StateHalfOpen:
		if b.trialInFlight {
			b.mu.Unlock()
			return Ticket{}, ErrOpen
		}
		b.generation++
	}
	b.trialInFlight = true
	t := Ticket{b: b, generation: b.generation, trial: true}
	b.mu.Unlock()
	b.notify(change)
	return t, nil
}

// current reports whether t may still affect the breaker. Must be called with mu held.
func (b *Breaker) current(t *Ticket) bool {
	if t.generation != b.generation {
		return false
	}
	switch b.state {
	case StateClosed:
		return !t.trial
	case StateHalfOpen:
		return t.trial && b.trialInFlight
	default:
		return false
	}
}

// RecordFailure counts a failed call made without a ticket. It returns true
// when the breaker is not closed after the failure.
func (b *Breaker) RecordFailure() (bool, StateChange) {
	return b.recordFailure(nil)
}

// RecordSuccess counts a successful call made without a ticket. It returns true
// when the breaker is closed after the success.
func (b *Breaker) RecordSuccess() (bool, StateChange) {
	return b.recordSuccess(nil)
}

func (b *Breaker) recordFailure(t *Ticket) (bool, StateChange) {
	b.mu.Lock()
	change := StateChange{From: b.state, To: b.state}
	if t == nil || b.current(t) {
		switch b.state {
		case StateClosed:
			b.failures++
			if b.failures >= b.failureThreshold {
				change = b.transition(StateOpen)
			}
		case StateHalfOpen:
			change = b.transition(StateOpen)
		case StateOpen:
			b.successes = 0
		}
	}
	open := b.state != StateClosed
	b.mu.Unlock()
	b.notify(change)
	return open, change
}

func (b *Breaker) recordSuccess(t *Ticket) (bool, StateChange) {
	b.mu.Lock()
	change := StateChange{From: b.state, To: b.state}
	if t == nil || b.current(t) {
		switch b.state {
		case StateClosed:
			b.failures = 0
		case StateOpen, StateHalfOpen:
			b.trialInFlight = false
			b.successes++
			if b.successes >= b.successThreshold {
				change = b.transition(StateClosed)
			}
		}
	}
	closed := b.state == StateClosed
	b.mu.Unlock()
	b.notify(change)
	return closed, change
}

// Reset forces the breaker closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	change := b.transition(StateClosed)
	b.mu.Unlock()
	b.notify(change)
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) StateChange {
	change := StateChange{From: b.state, To: to}
	b.state = to
	b.generation++
	b.failures = 0
	b.successes = 0
	b.trialInFlight = false
	switch to {
	case StateOpen:
		b.openedAt = b.now()
		change.Opened = change.From != StateOpen
	case StateClosed:
		change.Closed = change.From != StateClosed
	}
	return change
}

func (b *Breaker) notify(change StateChange) {
	if b.onStateChange != nil && change.Changed() {
		b.onStateChange(b.name, change)
	}
}
