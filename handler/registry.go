// Package handler resolves a handler source and name into an
// invocation.Handler.
package handler

import (
	"sort"
	"sync"

	"github.com/aura-studio/lambda-local/invocation"
)

// Func is the native handler signature.
type Func = invocation.Handler

var registry = struct {
	sync.RWMutex
	handlers map[string]Func
}{
	handlers: map[string]Func{},
}

// Register links a handler into the binary under name. Programs embedding
// lambda-local register their handlers before running the CLI.
func Register(name string, h Func) {
	registry.Lock()
	defer registry.Unlock()
	registry.handlers[name] = h
}

// RegisterLambda registers any aws-lambda-go handler function under name.
func RegisterLambda(name string, fn any) {
	Register(name, Lambda(fn))
}

func Lookup(name string) (Func, bool) {
	registry.RLock()
	defer registry.RUnlock()
	h, ok := registry.handlers[name]
	return h, ok
}

// Registered lists the registered handler names.
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.handlers))
	for name := range registry.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
