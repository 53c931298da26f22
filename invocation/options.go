package invocation

import (
	"time"

	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	FunctionName    string
	FunctionVersion string
	MemoryLimitInMB int
	Region          string
	AccountID       string

	// Now and NewRequestID are replaceable for tests.
	Now          func() time.Time
	NewRequestID func() string
}

var defaultOptions = &Options{
	FunctionName:    "func",
	FunctionVersion: "1.0",
	MemoryLimitInMB: 128,
	Region:          "aws-region",
	AccountID:       "1234567890123",
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
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewRequestID == nil {
		o.NewRequestID = newRequestID
	}
}

func WithFunctionName(name string) Option {
	return OptionFunc(func(o *Options) {
		if name != "" {
			o.FunctionName = name
		}
	})
}

func WithFunctionVersion(version string) Option {
	return OptionFunc(func(o *Options) {
		if version != "" {
			o.FunctionVersion = version
		}
	})
}

func WithMemoryLimit(mb int) Option {
	return OptionFunc(func(o *Options) {
		if mb > 0 {
			o.MemoryLimitInMB = mb
		}
	})
}

func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		if region != "" {
			o.Region = region
		}
	})
}

func WithAccountID(account string) Option {
	return OptionFunc(func(o *Options) {
		if account != "" {
			o.AccountID = account
		}
	})
}

func WithClock(now func() time.Time) Option {
	return OptionFunc(func(o *Options) {
		o.Now = now
	})
}

func WithRequestIDGenerator(gen func() string) Option {
	return OptionFunc(func(o *Options) {
		o.NewRequestID = gen
	})
}
