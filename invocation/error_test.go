package invocation_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aura-studio/lambda-local/invocation"
)

type typedError struct{ msg string }

func (e typedError) Error() string { return e.msg }
func (e typedError) ErrorType() string { return "Custom.Type" }
func (e typedError) StackTrace() string { return "frame-1\nframe-2" }

func TestErrorPayloadType(t *testing.T) {
	cases := []struct {
		err      error
		wantType string
	}{
		{errors.New("x"), "errorString"},
		{fmt.Errorf("wrap: %w", errors.New("x")), "wrapError"},
		{typedError{"y"}, "Custom.Type"},
	}
	for _, tc := range cases {
		p := invocation.NewErrorPayload(tc.err, "stack")
		if p.ErrorType != tc.wantType {
			t.Errorf("ErrorType(%T) = %q, want %q", tc.err, p.ErrorType, tc.wantType)
		}
		if p.ErrorMessage != tc.err.Error() {
			t.Errorf("ErrorMessage = %q, want %q", p.ErrorMessage, tc.err.Error())
		}
	}
}

func TestErrorPayloadStack(t *testing.T) {
	if p := invocation.NewErrorPayload(errors.New("x"), "given"); p.Stack != "given" {
		t.Errorf("Stack = %q, want 'given'", p.Stack)
	}
	if p := invocation.NewErrorPayload(typedError{"y"}, "given"); p.Stack != "frame-1\nframe-2" {
		t.Errorf("Stack = %q, want the error's own trace", p.Stack)
	}
}

func TestPanickedPayload(t *testing.T) {
	comp := invocation.Panicked("kaboom", []byte("goroutine 1 [running]"))
	if comp.Kind != invocation.KindFailure || comp.ExitCode != 1 {
		t.Fatalf("got {%v %d}, want failure exit 1", comp.Kind, comp.ExitCode)
	}
	var p invocation.ErrorPayload
	if err := json.Unmarshal([]byte(comp.Output), &p); err != nil {
		t.Fatalf("output is not a JSON payload: %v", err)
	}
	if !strings.Contains(p.ErrorMessage, "kaboom") {
		t.Errorf("errorMessage = %q, want it to mention kaboom", p.ErrorMessage)
	}
	if p.Stack != "goroutine 1 [running]" {
		t.Errorf("stack = %q", p.Stack)
	}
}
