package harness

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// yamlHarnessConfig mirrors lambda-local.yml.
type yamlHarnessConfig struct {
	Mode struct {
		Debug       bool  `yaml:"debug"`
		Environment *bool `yaml:"environment"`
	} `yaml:"mode"`
	Settings struct {
		File    string `yaml:"file"`
		Event   string `yaml:"event"`
		Timeout int    `yaml:"timeout"` // seconds
		Handler string `yaml:"handler"`
	} `yaml:"settings"`
	Function struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Memory  int    `yaml:"memory"`
		Region  string `yaml:"region"`
		Account string `yaml:"account"`
	} `yaml:"function"`
}

func optionFromHarnessConfig(cfg yamlHarnessConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Mode.Debug
		if cfg.Mode.Environment != nil {
			o.ExportEnvironment = *cfg.Mode.Environment
		}

		if cfg.Settings.File != "" {
			o.Settings.File = cfg.Settings.File
		}
		if cfg.Settings.Event != "" {
			o.Settings.Event = cfg.Settings.Event
		}
		if cfg.Settings.Timeout > 0 {
			o.Settings.Timeout = time.Duration(cfg.Settings.Timeout) * time.Second
		}
		if cfg.Settings.Handler != "" {
			o.Settings.Handler = cfg.Settings.Handler
		}

		if cfg.Function.Name != "" {
			o.FunctionName = cfg.Function.Name
		}
		if cfg.Function.Version != "" {
			o.FunctionVersion = cfg.Function.Version
		}
		if cfg.Function.Memory > 0 {
			o.MemoryLimitInMB = cfg.Function.Memory
		}
		if cfg.Function.Region != "" {
			o.Region = cfg.Function.Region
		}
		if cfg.Function.Account != "" {
			o.AccountID = cfg.Function.Account
		}
	})
}

func parseConfig(b []byte) (Option, error) {
	var cfg yamlHarnessConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	return optionFromHarnessConfig(cfg), nil
}

// WithConfig applies a lambda-local.yaml document. Invalid YAML panics when the
// option is applied.
func WithConfig(yamlBytes []byte) Option {
	opt, err := parseConfig(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("harness.WithConfig: %w", err))
		})
	}
	return opt
}

func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("harness.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
