package harness

import (
	"github.com/aura-studio/lambda-local/internal/configfile"
)

// DefaultConfigCandidates lists lambda-local.yaml and .lambda-local/config.yaml
// with both extensions.
func DefaultConfigCandidates() []string {
	return configfile.Candidates("lambda-local", "config")
}

func FindDefaultConfigFile() (string, error) {
	return configfile.Find("harness", DefaultConfigCandidates())
}

// WithOptionalConfigFile loads the default harness config file when there is
// one and returns nil otherwise.
func WithOptionalConfigFile() Option {
	p, err := FindDefaultConfigFile()
	if err != nil {
		return nil
	}
	return WithConfigFile(p)
}
