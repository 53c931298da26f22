// Package configfile locates the optional YAML files the commands read.
package configfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Candidates expands base into the names searched for it: base.yaml,
// base.yml, .lambda-local/<dotted>.yaml and .lambda-local/<dotted>.yml.
func Candidates(base, dotted string) []string {
	var out []string
	for _, name := range []string{base, filepath.Join(".lambda-local", dotted)} {
		out = append(out, name+".yaml", name+".yml")
	}
	return out
}

// Find returns the first candidate that exists as a regular file, looking in
// the working directory first and then next to the executable.
func Find(kind string, candidates []string) (string, error) {
	dirs := []string{""}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := filepath.Join(dir, rel)
			if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("%s config not found (expected one of %v)", kind, candidates)
}
