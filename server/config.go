package server

import (
	"fmt"
	"os"
	"time"

	"github.com/aura-studio/lambda-local/dynamic"
	yaml "gopkg.in/yaml.v2"
)

type yamlFunction struct {
	Name    string `yaml:"name"`
	File    string `yaml:"file"`
	Handler string `yaml:"handler"`
	Timeout int    `yaml:"timeout"` // seconds
	Memory  int    `yaml:"memory"`
}

type yamlConfig struct {
	Server struct {
		Address string `yaml:"address"`
		Debug   bool   `yaml:"debug"`
	} `yaml:"server"`
	Account struct {
		Region string `yaml:"region"`
		ID     string `yaml:"id"`
	} `yaml:"account"`
	Functions []yamlFunction `yaml:"functions"`
}

func (f yamlFunction) function() Function {
	return Function{
		Name:            f.Name,
		File:            f.File,
		Handler:         f.Handler,
		Timeout:         time.Duration(f.Timeout) * time.Second,
		MemoryLimitInMB: f.Memory,
	}
}

func parseConfig(b []byte) (Option, error) {
	var cfg yamlConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return ServerOption(func(o *Options) {
		if cfg.Server.Address != "" {
			o.Address = cfg.Server.Address
		}
		o.DebugMode = o.DebugMode || cfg.Server.Debug
		if cfg.Account.Region != "" {
			o.Region = cfg.Account.Region
		}
		if cfg.Account.ID != "" {
			o.AccountID = cfg.Account.ID
		}
		for _, f := range cfg.Functions {
			if f.Name == "" {
				continue
			}
			WithFunction(f.function()).Apply(o)
		}
	}), nil
}

// WithConfig applies a server.yaml document. Invalid YAML panics when the
// option is applied.
func WithConfig(yamlBytes []byte) Option {
	opt, err := parseConfig(yamlBytes)
	if err != nil {
		return ServerOption(func(*Options) {
			panic(fmt.Errorf("server.WithConfig: %w", err))
		})
	}
	return opt
}

func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return ServerOption(func(*Options) {
			panic(fmt.Errorf("server.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}

// serveConfigOption carries a server.yaml that may embed a dynamic section.
type serveConfigOption struct {
	server  Option
	dynamic dynamic.Option
	err     error
}

// WithServeConfig is WithConfig plus the optional `dynamic:` section, which
// follows dynamic.yaml.
func WithServeConfig(yamlBytes []byte) ServeOption {
	opt, err := parseConfig(yamlBytes)
	if err != nil {
		return serveConfigOption{err: fmt.Errorf("server.WithServeConfig: %w", err)}
	}

	return serveConfigOption{
		server:  opt,
		dynamic: dynamic.WithConfigSection(yamlBytes, "dynamic"),
	}
}

func WithServeConfigFile(path string) ServeOption {
	b, err := os.ReadFile(path)
	if err != nil {
		return serveConfigOption{err: fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err)}
	}
	return WithServeConfig(b)
}
