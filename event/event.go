// Package event loads the event document handed to a handler.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	yaml "gopkg.in/yaml.v2"
)

// SamplePrefix selects a built-in sample instead of a file, as in
// sample:sqs.
const SamplePrefix = "sample:"

// Load reads the event at path. YAML files are converted to the same shape
// JSON decoding produces. An empty path yields a nil event.
func Load(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	if name, ok := strings.CutPrefix(path, SamplePrefix); ok {
		b, err := Sample(name)
		if err != nil {
			return nil, err
		}
		return Parse(b, false)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(b, true)
	default:
		return Parse(b, false)
	}
}

// Parse decodes a JSON or YAML document.
func Parse(b []byte, isYAML bool) (any, error) {
	if isYAML {
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("event: %w", err)
		}
		return normalize(v), nil
	}

	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(b) {
		return nil, errors.New("event: invalid JSON")
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}
	return v, nil
}

// Apply sets each path=value override on doc. Paths use the sjson syntax,
// values that are valid JSON are set as-is and anything else as a string.
func Apply(doc any, overrides []string) (any, error) {
	if len(overrides) == 0 {
		return doc, nil
	}

	raw := "{}"
	if doc != nil {
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("event: %w", err)
		}
		raw = string(b)
	}

	for _, o := range overrides {
		path, value, ok := strings.Cut(o, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("event: invalid override %q, want path=value", o)
		}

		var err error
		if gjson.Valid(value) {
			raw, err = sjson.SetRaw(raw, path, value)
		} else {
			raw, err = sjson.Set(raw, path, value)
		}
		if err != nil {
			return nil, fmt.Errorf("event: override %q: %w", o, err)
		}
	}

	return Parse([]byte(raw), false)
}

// normalize turns the map[interface{}]interface{} values yaml.v2 produces
// into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = normalize(v)
		}
		return m
	case []interface{}:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}
