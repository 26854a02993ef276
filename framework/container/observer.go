package container

import "time"

// Outcome classifies a finished resolution.
type Outcome string

const (
	OutcomeCached Outcome = "cached"
	OutcomeBuilt  Outcome = "built"
	OutcomeFailed Outcome = "failed"
)

// Event describes one resolution, nested ones included.
type Event struct {
	ID       string
	Outcome  Outcome
	Duration time.Duration
	Err      error
}

// Observer receives an Event after every resolution. It is called without
// the container lock held and must not block.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) { f(e) }
