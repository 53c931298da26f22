package dynamic

import "github.com/aura-studio/lambda-local/internal/configfile"

func DefaultConfigCandidates() []string {
	return configfile.Candidates("dynamic", "dynamic")
}

func FindDefaultConfigFile() (string, error) {
	return configfile.Find("dynamic", DefaultConfigCandidates())
}

// WithOptionalConfigFile loads dynamic.yaml when it exists and is a no-op
// otherwise.
func WithOptionalConfigFile() Option {
	p, err := FindDefaultConfigFile()
	if err != nil {
		return nil
	}
	return WithConfigFile(p)
}
