package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format identifies a scenario file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Parse decodes, normalizes and validates a scenario
func Parse(data []byte, format Format) (*Scenario, error) {
	var s Scenario
	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	case FormatJSON:
		err = sonic.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s scenario: %w", format, err)
	}

	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads one scenario file
func Load(path string) (*Scenario, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// LoadGlob loads every scenario matching pattern, which may use ** to match
// directories recursively. Files with unsupported extensions are skipped.
func LoadGlob(pattern string) ([]*Scenario, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		if _, err := FormatOf(path); err != nil {
			continue
		}
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files match %q", pattern)
	}
	return scenarios, nil
}

// Marshal encodes a scenario in the given format
func Marshal(s *Scenario, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatTOML:
		return toml.Marshal(s)
	case FormatJSON:
		return sonic.MarshalIndent(s, "", "  ")
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}
