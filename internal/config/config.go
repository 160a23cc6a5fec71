package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwtly10/coffeesave"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a workspace has no settings file
var ErrNotFound = errors.New("settings file not found")

// FileNames are the settings files looked up in a workspace root, in order
var FileNames = []string{".coffeesave.yaml", ".coffeesave.yml"}

const (
	// EnvCompiler overrides the compiler path when the settings do not set one
	EnvCompiler = "COFFEESAVE_COMPILER"
)

// Load reads a settings file
func Load(path string) (coffeesave.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return coffeesave.Settings{}, ErrNotFound
		}
		return coffeesave.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s coffeesave.Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return coffeesave.Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// LoadWorkspace reads the settings file of a workspace root
func LoadWorkspace(root string) (coffeesave.Settings, error) {
	for _, name := range FileNames {
		s, err := Load(filepath.Join(root, name))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return s, err
	}
	return coffeesave.Settings{}, ErrNotFound
}

// IsSettingsFile reports whether path names a workspace settings file
func IsSettingsFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range FileNames {
		if base == name {
			return true
		}
	}
	return false
}

// Decode converts settings handed over by an editor, which arrive as untyped JSON values
func Decode(v any) (coffeesave.Settings, error) {
	if v == nil {
		return coffeesave.Settings{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return coffeesave.Settings{}, fmt.Errorf("encode settings: %w", err)
	}

	var s coffeesave.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return coffeesave.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// ApplyEnv fills settings the environment provides
func ApplyEnv(s coffeesave.Settings) coffeesave.Settings {
	if s.CompilerPath == "" {
		s.CompilerPath = strings.TrimSpace(os.Getenv(EnvCompiler))
	}
	return s
}

// FileSource serves settings from .coffeesave.yaml files.
//
// A workspace without a settings file gets the zero settings, which compile next to the source.
type FileSource struct{}

func (FileSource) Settings(_ context.Context, root string) (coffeesave.Settings, error) {
	s, err := LoadWorkspace(root)
	if errors.Is(err, ErrNotFound) {
		slog.Debug("no settings file in workspace, using defaults", "root", root)
		return ApplyEnv(coffeesave.Settings{}), nil
	}
	if err != nil {
		return coffeesave.Settings{}, err
	}
	return ApplyEnv(s), nil
}
