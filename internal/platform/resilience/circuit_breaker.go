package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateChangeFunc observes breaker transitions. It runs after the breaker
// lock is released.
type StateChangeFunc func(from, to CircuitState)

// CircuitBreaker trips after a run of consecutive failures, rejects calls
// while open and lets a bounded number of probes through once the open
// timeout elapses.
type CircuitBreaker struct {
	mu sync.Mutex

	cfg      CircuitBreakerConfig
	onChange StateChangeFunc
	now      func() time.Time

	state     CircuitState
	failures  int
	openedAt  time.Time
	probes    int
	recovered int
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	cfg := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	})
	return &CircuitBreaker{
		cfg:   cfg,
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// OnStateChange registers fn for every transition and returns b.
func (b *CircuitBreaker) OnStateChange(fn StateChangeFunc) *CircuitBreaker {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
	return b
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	from := b.state
	err := b.allowLocked()
	to, notify := b.state, b.onChange
	b.mu.Unlock()

	b.notify(notify, from, to)
	return err
}

func (b *CircuitBreaker) allowLocked() error {
	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.setLocked(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.record(func() {
		switch b.state {
		case CircuitStateClosed:
			b.failures = 0
		case CircuitStateHalfOpen:
			b.probes = max(b.probes-1, 0)
			b.recovered++
			if b.recovered >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
				b.setLocked(CircuitStateClosed)
			}
		}
	})
}

func (b *CircuitBreaker) RecordFailure() {
	b.record(func() {
		switch b.state {
		case CircuitStateClosed:
			b.failures++
			if b.failures >= b.cfg.FailureThreshold {
				b.setLocked(CircuitStateOpen)
			}
		case CircuitStateHalfOpen:
			b.setLocked(CircuitStateOpen)
		case CircuitStateOpen:
			b.openedAt = b.now()
		}
	})
}

func (b *CircuitBreaker) record(update func()) {
	b.mu.Lock()
	from := b.state
	update()
	to, notify := b.state, b.onChange
	b.mu.Unlock()

	b.notify(notify, from, to)
}

// Execute runs fn when the breaker allows it. Only errors for which
// countsAsFailure reports true trip the breaker; a nil countsAsFailure treats
// every error as a failure.
func (b *CircuitBreaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	if b == nil {
		return fn()
	}
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn()
	if err != nil && (countsAsFailure == nil || countsAsFailure(err)) {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return err
}

// State reports half-open once the open timeout has elapsed even if no call
// has probed yet.
func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) setLocked(to CircuitState) {
	b.state = to
	b.probes = 0
	b.recovered = 0
	switch to {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) notify(fn StateChangeFunc, from, to CircuitState) {
	if fn != nil && from != to {
		fn(from, to)
	}
}
