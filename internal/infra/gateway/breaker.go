package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/clock"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

// Breaker stops calling the provider after maxFailures consecutive errors
// and lets a single trial call through once resetTimeout has passed.
type Breaker struct {
	maxFailures  int
	resetTimeout time.Duration
	clock        clock.Clock

	mu           sync.Mutex
	state        BreakerState
	failures     int
	lastFailure  time.Time
	trialRunning bool
}

func NewBreaker(maxFailures int, resetTimeout time.Duration, c clock.Clock) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &Breaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		clock:        c,
		state:        StateClosed,
	}
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.clock.Now().Sub(b.lastFailure) < b.resetTimeout {
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		b.trialRunning = true
		return nil
	case StateHalfOpen:
		if b.trialRunning {
			return ErrCircuitOpen
		}
		b.trialRunning = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialRunning = false
	if err == nil {
		b.state = StateClosed
		b.failures = 0
		return
	}

	b.failures++
	b.lastFailure = b.clock.Now()
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		b.state = StateOpen
	}
}

// Execute runs fn unless the circuit is open. The lock is not held while
// fn runs.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
