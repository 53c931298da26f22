package dynamic

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// fileConfig is the dynamic.yaml layout.
type fileConfig struct {
	Toolchain      Toolchain  `yaml:"toolchain"`
	Warehouse      Warehouse  `yaml:"warehouse"`
	Namespace      string     `yaml:"namespace"`
	DefaultVersion string     `yaml:"defaultVersion"`
	Preload        []*Package `yaml:"preload"`
}

func parseConfig(b []byte) (Option, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return func(o *Options) {
		o.Toolchain = cfg.Toolchain
		o.Warehouse = cfg.Warehouse
		o.Namespace = cfg.Namespace
		o.DefaultVersion = cfg.DefaultVersion
		for _, p := range cfg.Preload {
			if p != nil && p.Package != "" {
				o.Preload = append(o.Preload, p)
			}
		}
	}, nil
}

// WithConfig applies a dynamic.yaml document. Invalid YAML panics when the
// option is applied.
func WithConfig(b []byte) Option {
	apply, err := parseConfig(b)
	if err != nil {
		return func(*Options) {
			panic(fmt.Errorf("dynamic.WithConfig: %w", err))
		}
	}
	return apply
}

func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return func(*Options) {
			panic(fmt.Errorf("dynamic.WithConfigFile(%s): %w", path, err))
		}
	}
	return WithConfig(b)
}

// WithConfigSection applies the section under key of a larger YAML document,
// such as the dynamic: block of lambda-local.yaml or server.yaml. It returns
// nil when the document has no such section.
func WithConfigSection(b []byte, key string) Option {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return func(*Options) {
			panic(fmt.Errorf("dynamic.WithConfigSection: %w", err))
		}
	}
	for _, item := range doc {
		if k, ok := item.Key.(string); !ok || k != key || item.Value == nil {
			continue
		}
		section, err := yaml.Marshal(item.Value)
		if err != nil {
			return func(*Options) {
				panic(fmt.Errorf("dynamic.WithConfigSection: %w", err))
			}
		}
		return WithConfig(section)
	}
	return nil
}

func WithConfigSectionFile(path, key string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return func(*Options) {
			panic(fmt.Errorf("dynamic.WithConfigSectionFile(%s): %w", path, err))
		}
	}
	return WithConfigSection(b, key)
}
