package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/readsplit/internal/runtimepath"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // key -> file position (file only)
	File    string            // loaded file, empty when defaults were used
}

func DefaultConfigPath() string {
	return runtimepath.ConfigPath()
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadFromPath(DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadFromPath decodes path over the defaults. A missing file yields the
// defaults; unknown keys are errors.
func LoadFromPath(path string) (*LoadResult, error) {
	cfg := DefaultConfig()
	res := &LoadResult{Config: cfg, Sources: map[string]Source{}}

	canon, err := canonicalPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(canon)
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", canon, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	if err := decodeStrictYAML(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", canon, err)
	}
	res.Sources = collectSources(&doc, canon)
	res.File = canon

	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, res.Sources)
	}
	return res, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Best-effort; still use abs.
		return abs, nil
	}
	return real, nil
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		valNode := node.Content[i+1]
		out[node.Content[i].Value] = Source{
			Kind:   SourceFile,
			File:   file,
			Line:   valNode.Line,
			Column: valNode.Column,
		}
	}
	return out
}

// attachSourceContext prefixes a validation error with the position of the
// key it names, when that key came from a file.
func attachSourceContext(err error, sources map[string]Source) error {
	msg := err.Error()
	for key, src := range sources {
		if len(msg) > len(key) && msg[:len(key)] == key && msg[len(key)] == ' ' {
			return fmt.Errorf("%s:%d:%d: %w", src.File, src.Line, src.Column, err)
		}
	}
	return err
}
