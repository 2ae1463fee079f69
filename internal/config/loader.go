package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var decoders = map[string]func([]byte, any) error{
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
	".toml": toml.Unmarshal,
	".json": json.Unmarshal,
}

// Load reads a YAML, TOML or JSON config file. Keys may be grouped under
// engine/ui/highlight or, for engine and ui, given at the top level.
// Unknown keys are errors.
func Load(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Config{}, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("unsupported config extension: %s", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var raw map[string]any
	if err := decode(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg, err := fromMap(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func fromMap(raw map[string]any) (Config, error) {
	var cfg Config
	var errs []error
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		norm := normalizeKey(key)
		switch norm {
		case sectionEngine, sectionUI, sectionHighlight:
			sub, err := stringKeys(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", norm, err))
				continue
			}
			for _, k := range sortedKeys(sub) {
				s, ok := lookup(norm, normalizeKey(k))
				if !ok {
					errs = append(errs, fmt.Errorf("unknown %s key: %s", norm, k))
					continue
				}
				if err := s.assign(&cfg, sub[k], s.key); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", norm, err))
				}
			}
			continue
		}
		s, ok := lookup(sectionEngine, norm)
		if !ok {
			s, ok = lookup(sectionUI, norm)
		}
		if !ok || !s.topLevel() {
			errs = append(errs, fmt.Errorf("unknown config key: %s", key))
			continue
		}
		if err := s.assign(&cfg, value, s.key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.section, err))
		}
	}
	return cfg, errors.Join(errs...)
}

func stringKeys(v any) (map[string]any, error) {
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected map, got %T", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
