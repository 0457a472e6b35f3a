package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Validatable is an optional interface that config structs can implement
// to validate themselves before being swapped in.
type Validatable interface {
	Validate() error
}

// Load reads the config file at path, choosing the format from its
// extension: .yaml and .yml are YAML, everything else is TOML.
func Load[T any](path string, defaults *T) (*T, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, defaults)
	}
	return LoadTOML(path, defaults)
}

// LoadTOML loads a TOML config file into a struct of type T.
// If the file does not exist, it returns the provided defaults.
func LoadTOML[T any](path string, defaults *T) (*T, error) {
	return load(path, defaults, toml.Unmarshal)
}

// LoadYAML is LoadTOML for YAML files.
func LoadYAML[T any](path string, defaults *T) (*T, error) {
	return load(path, defaults, func(data []byte, v interface{}) error {
		return yaml.Unmarshal(data, v)
	})
}

func load[T any](path string, defaults *T, unmarshal func([]byte, interface{}) error) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := new(T)
	if defaults != nil {
		*cfg = *defaults
	}

	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if v, ok := any(cfg).(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validating config %s: %w", path, err)
		}
	}

	return cfg, nil
}
