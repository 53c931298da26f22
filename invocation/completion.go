package invocation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Kind identifies which completion path ended an invocation.
type Kind int

const (
	KindSuccess Kind = iota
	KindFailure
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Completion is the single outcome of an invocation. Output is what gets
// printed to stdout (empty means nothing is printed).
type Completion struct {
	Kind     Kind
	Result   any
	Err      any
	Output   string
	ExitCode int
	// FunctionError is set when the handler reported an error, including
	// through the callback which still exits 0.
	FunctionError bool
}

// Completer receives completions produced by a Context.
type Completer func(Completion)

// Succeeded renders a success completion. A result that cannot be encoded
// turns into a failure.
func Succeeded(result any) Completion {
	c := Completion{Kind: KindSuccess, Result: result}
	if result == nil {
		return c
	}
	b, err := json.Marshal(result)
	if err != nil {
		return Failed(fmt.Errorf("invocation: marshal result: %w", err))
	}
	c.Output = string(b)
	return c
}

// Failed renders a failure completion. The error is printed as its raw value.
func Failed(err any) Completion {
	c := Completion{Kind: KindFailure, Err: err, ExitCode: 1, FunctionError: true}
	if IsNil(err) {
		return c
	}
	if e, ok := err.(error); ok {
		c.Output = e.Error()
	} else {
		c.Output = fmt.Sprintf("%v", err)
	}
	return c
}

// Panicked renders a recovered handler panic as a failure carrying a
// structured error payload.
func Panicked(v any, stack []byte) Completion {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	payload := NewErrorPayload(err, string(stack))
	c := Completion{Kind: KindFailure, Err: err, ExitCode: 1, FunctionError: true}
	if b, mErr := json.Marshal(payload); mErr == nil {
		c.Output = string(b)
	} else {
		c.Output = payload.ErrorMessage
	}
	return c
}

// TimedOut renders the timeout completion. Timing out is not a failure exit.
func TimedOut(timeout time.Duration) Completion {
	return Completion{
		Kind:          KindTimeout,
		Output:        fmt.Sprintf("The function timed out after %d milliseconds", timeout.Milliseconds()),
		FunctionError: true,
	}
}

// IsNil reports whether v is nil, including typed nil pointers wrapped in an
// interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
