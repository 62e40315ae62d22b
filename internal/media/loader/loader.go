// Package loader implements deferred image loading: an image slot stays a
// placeholder until it is observed as visible, is requested at most once,
// and lands in a terminal Loaded or Failed state.
//
// The media service satisfies ImageSource, so a Loader is the consumer-side
// companion of the image-data endpoint: one Loader per view, fed by the
// service's cached, coalesced fetch path.
package loader

import (
	"context"
	"sync"
)

// State is the lifecycle position of one image slot.
type State int

const (
	StateUnobserved State = iota
	StateObserved
	StateRequested
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnobserved:
		return "unobserved"
	case StateObserved:
		return "observed"
	case StateRequested:
		return "requested"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImageSource supplies inline payloads by locator.
type ImageSource interface {
	ImageData(ctx context.Context, locator string) (string, error)
}

type slot struct {
	state State
	data  string
	err   error
	done  chan struct{}
}

// Loader tracks one slot per locator. Observing a visible slot triggers its
// fetch exactly once; repeat observations are no-ops, so a slot can never be
// requested twice unless it failed and was explicitly retried.
type Loader struct {
	mu     sync.Mutex
	source ImageSource
	slots  map[string]*slot
}

// New creates a Loader over the given image source.
func New(source ImageSource) *Loader {
	return &Loader{
		source: source,
		slots:  make(map[string]*slot),
	}
}

// Observe marks the locator's slot visible and starts its fetch if it has
// not been requested yet.
func (l *Loader) Observe(ctx context.Context, locator string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[locator]
	if !ok {
		s = &slot{state: StateUnobserved}
		l.slots[locator] = s
	}
	if s.state != StateUnobserved {
		// Already observed once; further visibility events are ignored.
		return
	}
	s.state = StateObserved
	l.request(ctx, locator, s)
}

// Retry re-requests a slot that ended in StateFailed.
func (l *Loader) Retry(ctx context.Context, locator string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[locator]
	if !ok || s.state != StateFailed {
		return
	}
	l.request(ctx, locator, s)
}

// request moves the slot to StateRequested and fetches in the background.
// Caller holds l.mu.
func (l *Loader) request(ctx context.Context, locator string, s *slot) {
	s.state = StateRequested
	s.err = nil
	s.done = make(chan struct{})
	done := s.done

	go func() {
		data, err := l.source.ImageData(ctx, locator)

		l.mu.Lock()
		if err != nil {
			s.state = StateFailed
			s.err = err
		} else {
			s.state = StateLoaded
			s.data = data
		}
		l.mu.Unlock()
		close(done)
	}()
}

// State reports the slot state for the locator.
func (l *Loader) State(locator string) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.slots[locator]; ok {
		return s.state
	}
	return StateUnobserved
}

// Data returns the loaded payload for the locator, if its slot is loaded.
func (l *Loader) Data(locator string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[locator]
	if !ok || s.state != StateLoaded {
		return "", false
	}
	return s.data, true
}

// Err returns the failure recorded for the locator's slot, if any.
func (l *Loader) Err(locator string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.slots[locator]; ok {
		return s.err
	}
	return nil
}

// Wait returns a channel closed when the locator's in-flight request
// settles. Returns a closed channel if nothing is in flight.
func (l *Loader) Wait(locator string) <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.slots[locator]; ok && s.done != nil {
		return s.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}
