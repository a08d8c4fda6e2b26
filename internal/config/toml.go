package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
)

// TOMLParser implements koanf.Parser for TOML documents.
type TOMLParser struct{}

// TOML returns a TOML parser.
func TOML() *TOMLParser {
	return &TOMLParser{}
}

// Unmarshal parses TOML bytes into a nested map.
func (p *TOMLParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return out, nil
}

// Marshal encodes a nested map as TOML.
func (p *TOMLParser) Marshal(o map[string]interface{}) ([]byte, error) {
	return toml.Marshal(o)
}

// parserFor picks the parser from the file extension; YAML is the default.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML()
	default:
		return yaml.Parser()
	}
}
