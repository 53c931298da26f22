package server

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type ServerOption func(*Options)

func (f ServerOption) Apply(o *Options) { f(o) }

// Function is a handler served under a function name.
type Function struct {
	Name            string
	File            string
	Handler         string
	Timeout         time.Duration
	MemoryLimitInMB int
}

type Options struct {
	Address   string
	DebugMode bool

	// Functions maps function names to handlers. Unknown names fall back to
	// DefaultFunction when it is set.
	Functions       map[string]*Function
	DefaultFunction *Function

	Region    string
	AccountID string

	Logger *log.Logger
}

var defaultOptions = &Options{
	Address:   "127.0.0.1:3001",
	DebugMode: false,
	Functions: map[string]*Function{},
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
}

func WithAddress(addr string) Option {
	return ServerOption(func(o *Options) {
		if addr != "" {
			o.Address = addr
		}
	})
}

func WithDebugMode(debug bool) Option {
	return ServerOption(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithFunction(f Function) Option {
	return ServerOption(func(o *Options) {
		if f.Name == "" {
			return
		}
		if o.Functions == nil {
			o.Functions = map[string]*Function{}
		}
		o.Functions[f.Name] = &f
	})
}

// WithDefaultFunction serves f for every function name that is not
// configured explicitly.
func WithDefaultFunction(f Function) Option {
	return ServerOption(func(o *Options) {
		o.DefaultFunction = &f
	})
}

func WithRegion(region string) Option {
	return ServerOption(func(o *Options) {
		o.Region = region
	})
}

func WithAccountID(account string) Option {
	return ServerOption(func(o *Options) {
		o.AccountID = account
	})
}

func WithLogger(logger *log.Logger) Option {
	return ServerOption(func(o *Options) {
		o.Logger = logger
	})
}
