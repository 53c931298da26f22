package harness

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mohae/deepcopy"
)

// Settings is the input of one local run.
type Settings struct {
	File    string        // handler source
	Event   string        // optional event document
	Timeout time.Duration // execution limit
	Handler string        // handler name inside File
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Settings Settings

	FunctionName    string
	FunctionVersion string
	MemoryLimitInMB int
	Region          string
	AccountID       string

	// ExportEnvironment sets the AWS_LAMBDA_* variables and the
	// lambdacontext globals before the handler runs.
	ExportEnvironment bool
	DebugMode         bool

	Stdout io.Writer
	Logger *log.Logger
}

const DefaultTimeout = 3 * time.Second

var defaultOptions = &Options{
	Settings: Settings{
		File:    "",
		Event:   "",
		Timeout: DefaultTimeout,
		Handler: "handler",
	},
	FunctionName:      "func",
	FunctionVersion:   "1.0",
	MemoryLimitInMB:   128,
	Region:            "aws-region",
	AccountID:         "1234567890123",
	ExportEnvironment: true,
	DebugMode:         false,
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
	if o.Settings.Timeout <= 0 {
		o.Settings.Timeout = DefaultTimeout
	}
}

// -------------- Settings ----------------

func WithSettings(s Settings) Option {
	return OptionFunc(func(o *Options) {
		o.Settings = s
	})
}

func WithFile(file string) Option {
	return OptionFunc(func(o *Options) {
		o.Settings.File = file
	})
}

func WithEvent(event string) Option {
	return OptionFunc(func(o *Options) {
		o.Settings.Event = event
	})
}

func WithTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.Settings.Timeout = timeout
	})
}

func WithHandler(name string) Option {
	return OptionFunc(func(o *Options) {
		o.Settings.Handler = name
	})
}

// -------------- Function ----------------

func WithFunctionName(name string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionName = name
	})
}

func WithFunctionVersion(version string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionVersion = version
	})
}

func WithMemoryLimit(mb int) Option {
	return OptionFunc(func(o *Options) {
		o.MemoryLimitInMB = mb
	})
}

func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		o.Region = region
	})
}

func WithAccountID(account string) Option {
	return OptionFunc(func(o *Options) {
		o.AccountID = account
	})
}

// -------------- Mode ----------------

func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

func WithExportEnvironment(export bool) Option {
	return OptionFunc(func(o *Options) {
		o.ExportEnvironment = export
	})
}

func WithStdout(w io.Writer) Option {
	return OptionFunc(func(o *Options) {
		o.Stdout = w
	})
}

func WithLogger(logger *log.Logger) Option {
	return OptionFunc(func(o *Options) {
		o.Logger = logger
	})
}
