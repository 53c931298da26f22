package server

import "github.com/aura-studio/lambda-local/internal/configfile"

// DefaultConfigCandidates lists server.yaml and .lambda-local/server.yaml with
// both extensions.
func DefaultConfigCandidates() []string {
	return configfile.Candidates("server", "server")
}

func FindDefaultConfigFile() (string, error) {
	return configfile.Find("server", DefaultConfigCandidates())
}

// WithDefaultServeConfig loads the default server config when there is one.
// Without it the server runs on flags only.
func WithDefaultServeConfig() ServeOption {
	p, err := FindDefaultConfigFile()
	if err != nil {
		return nil
	}
	return WithServeConfigFile(p)
}
