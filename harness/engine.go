// Package harness runs a single handler invocation against a timeout and
// decides how the process ends.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aura-studio/lambda-local/invocation"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/charmbracelet/log"
)

// Engine owns the timeout race for local invocations.
type Engine struct {
	*Options
	factory *invocation.Factory
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Logger == nil {
		e.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "harness"})
	}
	if e.DebugMode {
		e.Logger.SetLevel(log.DebugLevel)
	}
	e.factory = invocation.NewFactory(
		invocation.WithFunctionName(e.FunctionName),
		invocation.WithFunctionVersion(e.FunctionVersion),
		invocation.WithMemoryLimit(e.MemoryLimitInMB),
		invocation.WithRegion(e.Region),
		invocation.WithAccountID(e.AccountID),
	)
	return e
}

// Environment returns the function-level runtime variables, for handlers
// running out of process.
func (e *Engine) Environment() map[string]string {
	return e.factory.Environment()
}

// Run invokes h once with event and blocks until a completion path wins.
// The returned result carries the exit code for the process.
func (e *Engine) Run(ctx context.Context, h invocation.Handler, event any) *Result {
	r := &run{
		engine: e,
		done:   make(chan struct{}),
	}
	c := e.factory.New(e.Settings.Timeout, r.settle)
	r.requestID = c.AwsRequestID
	r.start = time.Now()

	if e.ExportEnvironment {
		exportEnvironment(c)
	}

	e.Logger.Debug("invoking handler",
		"request_id", c.AwsRequestID,
		"handler", e.Settings.Handler,
		"timeout", e.Settings.Timeout)

	r.mu.Lock()
	r.timer = time.AfterFunc(e.Settings.Timeout, func() {
		r.abandon(invocation.TimedOut(e.Settings.Timeout))
	})
	r.mu.Unlock()

	go r.invoke(h, event, c)

	select {
	case <-r.done:
	case <-ctx.Done():
		r.abandon(invocation.Failed(fmt.Errorf("harness: %w", ctx.Err())))
		<-r.done
	}

	return r.result
}

// run tracks the state of one invocation.
type run struct {
	engine    *Engine
	requestID string
	start     time.Time

	mu    sync.Mutex
	timer *time.Timer

	once   sync.Once
	done   chan struct{}
	result *Result
}

func (r *run) invoke(h invocation.Handler, event any, c *invocation.Context) {
	defer func() {
		if v := recover(); v != nil {
			r.engine.Logger.Debug("handler panicked", "request_id", r.requestID, "panic", v)
			r.settle(invocation.Panicked(v, debug.Stack()))
		}
	}()
	h(event, c, r.callback)
}

func (r *run) callback(err any, result any) {
	r.settle(callbackCompletion(err, result, debug.Stack()))
}

func (r *run) settle(c invocation.Completion) {
	r.finish(c, false)
}

// abandon settles without a completion from the handler, which may still be
// running.
func (r *run) abandon(c invocation.Completion) {
	r.finish(c, true)
}

// finish accepts the first completion and drops the rest.
func (r *run) finish(c invocation.Completion, abandoned bool) {
	accepted := false
	r.once.Do(func() {
		accepted = true

		r.mu.Lock()
		if r.timer != nil {
			r.timer.Stop()
		}
		r.mu.Unlock()

		if c.Output != "" {
			if _, err := io.WriteString(r.engine.Stdout, c.Output+"\n"); err != nil {
				r.engine.Logger.Error("write output", "err", err)
			}
		}

		r.result = &Result{
			Completion: c,
			RequestID:  r.requestID,
			Duration:   time.Since(r.start),
			Abandoned:  abandoned,
		}
		r.engine.Logger.Debug("invocation finished",
			"request_id", r.requestID,
			"kind", c.Kind,
			"exit_code", c.ExitCode,
			"duration", r.result.Duration)
		close(r.done)
	})
	if !accepted {
		r.engine.Logger.Debug("ignored late completion", "request_id", r.requestID, "kind", c.Kind)
	}
}

func exportEnvironment(c *invocation.Context) {
	for k, v := range c.Environment() {
		os.Setenv(k, v)
	}
	lambdacontext.FunctionName = c.FunctionName
	lambdacontext.FunctionVersion = c.FunctionVersion
	lambdacontext.LogGroupName = c.LogGroupName
	lambdacontext.LogStreamName = c.LogStreamName
	lambdacontext.MemoryLimitInMB = c.MemoryLimitInMB
}
