package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Keys lists every configuration key in sorted order.
func Keys() []string {
	values, _ := toMap(DefaultConfig())
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Explain returns the effective value of key and where it came from.
func Explain(res *LoadResult, key string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if key == "" {
		return nil, Source{}, fmt.Errorf("key is empty")
	}

	values, err := toMap(res.Config)
	if err != nil {
		return nil, Source{}, err
	}
	value, ok := values[key]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown config key %q", key)
	}

	if src, ok := res.Sources[key]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to read back config: %w", err)
	}
	return out, nil
}
