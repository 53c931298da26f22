package harness_test

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/aura-studio/lambda-local/harness"
)

func TestCapture(t *testing.T) {
	origin := os.Stdout
	var tee bytes.Buffer

	logs, err := harness.Capture(&tee, func() {
		fmt.Println("to stdout")
		fmt.Fprintln(os.Stderr, "to stderr")
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !strings.Contains(logs, "to stdout") || !strings.Contains(logs, "to stderr") {
		t.Errorf("logs = %q", logs)
	}
	if tee.String() != logs {
		t.Errorf("tee = %q, want %q", tee.String(), logs)
	}
	if os.Stdout != origin {
		t.Error("os.Stdout was not restored")
	}
}

func TestCapturePanic(t *testing.T) {
	origin := os.Stderr
	logs, err := harness.Capture(nil, func() {
		fmt.Print("before")
		panic("oops")
	})
	if err == nil || !strings.Contains(err.Error(), "oops") {
		t.Errorf("err = %v, want the panic", err)
	}
	if logs != "before" {
		t.Errorf("logs = %q, want 'before'", logs)
	}
	if os.Stderr != origin {
		t.Error("os.Stderr was not restored")
	}
}
