package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aura-studio/lambda-local/dynamic"
	"github.com/aura-studio/lambda-local/harness"
	"github.com/aura-studio/lambda-local/invocation"
	"github.com/charmbracelet/log"
)

// RegistryScheme prefixes handler files that name the static registry.
const RegistryScheme = "registry:"

// Loader resolves handler settings into callable handlers. Handler binaries
// it starts stay alive until Close.
type Loader struct {
	*Options

	mu        sync.Mutex
	processes map[string]*process
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		Options:   NewOptions(opts...),
		processes: map[string]*process{},
	}
	if l.Logger == nil {
		l.Logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "handler"})
	}
	if l.DebugMode {
		l.Logger.SetLevel(log.DebugLevel)
	}
	return l
}

// Instance is a loaded handler. Handlers backed by a binary run out of
// process; all others share the process streams with the caller.
type Instance struct {
	Handler Func

	proc *process
}

// InProcess reports whether the handler writes to os.Stdout and os.Stderr
// of this process.
func (i *Instance) InProcess() bool {
	return i.proc == nil
}

// SetOutput sends the stdout and stderr of an out-of-process handler to w
// until it is called again; nil restores the process streams. It is a no-op
// for in-process handlers.
func (i *Instance) SetOutput(w io.Writer) {
	if i.proc != nil {
		i.proc.output.set(w)
	}
}

// Load resolves s into a callable handler. See Open.
func (l *Loader) Load(ctx context.Context, s harness.Settings) (invocation.Handler, error) {
	inst, err := l.Open(ctx, s)
	if err != nil {
		return nil, err
	}
	return inst.Handler, nil
}

// Open resolves s.File and s.Handler:
// an empty file or registry: looks up the static registry,
// a .so file is opened as a Go plugin,
// dynamic://<package>/<version> routes to a dynamic tunnel,
// and any other file is started as a Lambda binary.
func (l *Loader) Open(ctx context.Context, s harness.Settings) (*Instance, error) {
	file := s.File
	switch {
	case file == "" || strings.HasPrefix(file, RegistryScheme):
		name := strings.TrimPrefix(file, RegistryScheme)
		if name == "" {
			name = s.Handler
		}
		h, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("handler: %q is not registered", name)
		}
		l.Logger.Debug("loaded registered handler", "name", name)
		return &Instance{Handler: h}, nil

	case strings.HasPrefix(file, TunnelScheme):
		pkg, version, err := parseTunnelFile(file)
		if err != nil {
			return nil, err
		}
		d, err := l.dynamic()
		if err != nil {
			return nil, err
		}
		tunnel, err := d.GetPackage(pkg, version)
		if err != nil {
			return nil, fmt.Errorf("handler: load package %s@%s: %w", pkg, version, err)
		}
		l.Logger.Debug("loaded tunnel handler", "package", pkg, "version", version, "route", s.Handler)
		return &Instance{Handler: fromTunnel(tunnel, s.Handler)}, nil
	}

	path, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("handler: %s is a directory", file)
	}

	if filepath.Ext(path) == ".so" {
		h, err := loadPlugin(path, s.Handler)
		if err != nil {
			return nil, err
		}
		l.Logger.Debug("loaded plugin handler", "path", path, "symbol", s.Handler)
		return &Instance{Handler: h}, nil
	}

	p, err := l.binary(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Handler: fromRPC(p.client, func() { l.evict(p) }),
		proc:    p,
	}, nil
}

// binary reuses a running process for path or starts one.
func (l *Loader) binary(ctx context.Context, path string) (*process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.processes[path]; ok {
		select {
		case <-p.exited:
			delete(l.processes, path)
		default:
			return p, nil
		}
	}

	p, err := startBinary(ctx, path, l.Env, l.StartTimeout, l.Logger)
	if err != nil {
		return nil, err
	}
	l.processes[path] = p
	return p, nil
}

// evict stops p, whose invocation outlived its deadline, so the next load
// starts a fresh process.
func (l *Loader) evict(p *process) {
	l.mu.Lock()
	if l.processes[p.path] == p {
		delete(l.processes, p.path)
	}
	l.mu.Unlock()

	l.Logger.Warn("handler binary missed its deadline, stopping it", "path", p.path)
	p.Close()
}

// dynamic creates the warehouse on first use. Invalid dynamic options panic
// when applied; that is reported as a load error.
func (l *Loader) dynamic() (d *dynamic.Dynamic, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Dynamic != nil {
		return l.Dynamic, nil
	}
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("handler: dynamic config: %v", v)
		}
	}()
	l.Dynamic = dynamic.NewDynamic(l.Logger, l.DynamicOptions...)
	return l.Dynamic, nil
}

// Close stops every handler binary started by the loader.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for path, p := range l.processes {
		p.Close()
		delete(l.processes, path)
	}
	return nil
}
