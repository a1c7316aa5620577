package settings

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadFile loads a flat YAML settings file from the given path.
//
//	collection.min.size: 1
//	collection.max.size: 3
//	mode: lenient
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}

	return s, nil
}

// Parse parses YAML data into an unlocked Settings layer.
func Parse(data []byte) (*Settings, error) {
	var raw map[string]any

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}

	// Deterministic error reporting.
	sort.Strings(names)

	s := New()
	for _, name := range names {
		if err := s.SetByName(name, raw[name]); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Marshal serializes the explicitly set values of s to YAML.
func Marshal(s *Settings) ([]byte, error) {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if m, ok := v.(Mode); ok {
			v = string(m)
		}
		out[k.name] = v
	}

	return yaml.Marshal(out)
}
