package harness

import (
	"time"

	"github.com/aura-studio/lambda-local/invocation"
)

// Result is the accepted completion of a run.
type Result struct {
	invocation.Completion
	RequestID string
	Duration  time.Duration

	// Abandoned is set when the run ended on the timer or the caller's
	// context. Goroutines started by the handler may still be running.
	Abandoned bool
}

func (r *Result) TimedOut() bool {
	return r.Kind == invocation.KindTimeout
}

func (r *Result) Failed() bool {
	return r.Kind == invocation.KindFailure
}
