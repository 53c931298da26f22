package handler

import (
	"time"

	"github.com/aura-studio/lambda-local/dynamic"
	"github.com/charmbracelet/log"
	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	DebugMode bool
	Logger    *log.Logger

	// Env is added to the environment of handler binaries.
	Env map[string]string

	// StartTimeout bounds how long a handler binary may take to accept RPC
	// connections.
	StartTimeout time.Duration

	// Dynamic resolves dynamic:// handler files. It is created from
	// DynamicOptions on first use when nil.
	Dynamic        *dynamic.Dynamic
	DynamicOptions []dynamic.Option
}

var defaultOptions = &Options{
	DebugMode:    false,
	Env:          map[string]string{},
	StartTimeout: 5 * time.Second,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	if o.StartTimeout <= 0 {
		o.StartTimeout = defaultOptions.StartTimeout
	}
}

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithLogger(logger *log.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}

// WithEnv adds variables to the environment of handler binaries.
func WithEnv(env map[string]string) Option {
	return OptionFunc(func(o *Options) {
		if o.Env == nil {
			o.Env = map[string]string{}
		}
		for k, v := range env {
			o.Env[k] = v
		}
	})
}

func WithStartTimeout(d time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.StartTimeout = d
	})
}

func WithDynamic(d *dynamic.Dynamic) Option {
	return OptionFunc(func(o *Options) {
		o.Dynamic = d
	})
}

func WithDynamicOptions(opts ...dynamic.Option) Option {
	return OptionFunc(func(o *Options) {
		o.DynamicOptions = append(o.DynamicOptions, opts...)
	})
}
