package dynamic

import (
	"github.com/aura-studio/dynamic"
	"github.com/mohae/deepcopy"
)

type Option func(*Options)

// Toolchain pins the build the warehouse artifacts were produced with.
// Empty fields keep the values detected by the dynamic library.
type Toolchain struct {
	OS       string `yaml:"os"`
	Arch     string `yaml:"arch"`
	Compiler string `yaml:"compiler"`
	Variant  string `yaml:"variant"`
}

type Warehouse struct {
	Local  string `yaml:"local"`
	Remote string `yaml:"remote"`
}

// Package is a tunnel package identified by name and version. Tunnel is set
// for packages linked into the binary.
type Package struct {
	Package string         `yaml:"package"`
	Version string         `yaml:"version"`
	Tunnel  dynamic.Tunnel `yaml:"-"`
}

type Options struct {
	Toolchain      Toolchain
	Warehouse      Warehouse
	Namespace      string
	DefaultVersion string
	Static         []*Package
	Preload        []*Package
}

var defaultOptions = &Options{}

func NewOptions(opts ...Option) *Options {
	o := deepcopy.Copy(defaultOptions).(*Options)
	o.init(opts...)
	return o
}

func (o *Options) init(opts ...Option) {
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
}

func WithWarehouse(local, remote string) Option {
	return func(o *Options) {
		o.Warehouse = Warehouse{Local: local, Remote: remote}
	}
}

func WithNamespace(ns string) Option {
	return func(o *Options) {
		o.Namespace = ns
	}
}

func WithDefaultVersion(version string) Option {
	return func(o *Options) {
		o.DefaultVersion = version
	}
}

// WithStaticPackage links a tunnel compiled into the binary.
func WithStaticPackage(p *Package) Option {
	return func(o *Options) {
		o.Static = append(o.Static, p)
	}
}

// WithPreload loads pkg at version from the warehouse on startup.
func WithPreload(pkg, version string) Option {
	return func(o *Options) {
		o.Preload = append(o.Preload, &Package{Package: pkg, Version: version})
	}
}
