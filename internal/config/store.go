package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultConfigPath = "~/.config/logbeacon/logbeacon.toml"

// Store is a TOML file of string key/value pairs grouped into sections.
// Every SaveString rewrites the file. A Store is safe for concurrent use.
type Store struct {
	path string

	mu       sync.Mutex
	sections map[string]map[string]string
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// Open loads the store at path, or the default path when empty. A missing
// file yields an empty store.
func Open(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: resolved, sections: make(map[string]map[string]string)}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for name, value := range raw {
		table, ok := value.(map[string]any)
		if !ok {
			continue
		}
		section := make(map[string]string, len(table))
		for key, v := range table {
			if text, ok := formatValue(v); ok {
				section[key] = text
			}
		}
		s.sections[name] = section
	}
	return s, nil
}

// Path returns the resolved file path.
func (s *Store) Path() string {
	return s.path
}

// LoadString returns the value stored under section/key, or def when absent.
func (s *Store) LoadString(section, key, def string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.sections[section][key]; ok {
		return v
	}
	return def
}

// SaveString stores value under section/key and writes the file.
func (s *Store) SaveString(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.sections[section]
	if !ok {
		table = make(map[string]string)
		s.sections[section] = table
	}
	table[key] = value
	return s.write()
}

func (s *Store) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(s.sections)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".logbeacon-*.toml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// formatValue renders hand-written TOML scalars as the text SaveString would
// have stored.
func formatValue(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
