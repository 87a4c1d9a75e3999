package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const configFileName = "config.toml"

// ConfigStore keeps settings in <dir>/config.toml. The file holds one
// table per settings group; in memory the tables are flattened to dotted
// keys.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	flat map[string]any
}

// NewConfigStore creates dir if needed and loads any existing file.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, configFileName)}
	flat, err := readConfig(s.path)
	if err != nil {
		return nil, err
	}
	s.flat = flat
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.flat[key]
	return v, ok
}

// Update writes the merged result before adopting it, so a failed write
// leaves both the file and the in-memory view unchanged.
func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.flat)
	maps.Copy(next, values)
	if err := writeConfig(s.path, next); err != nil {
		return err
	}
	s.flat = next
	return nil
}

func (s *ConfigStore) Path() string { return s.path }

func readConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	flat := make(map[string]any)
	flatten(tree, "", flat)
	return flat, nil
}

// writeConfig replaces the file through a temp file and rename, so a
// crash mid-write never leaves a truncated config behind.
func writeConfig(path string, flat map[string]any) error {
	tree, err := nest(flat)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func flatten(tree map[string]any, prefix string, out map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(sub, key, out)
			continue
		}
		out[key] = v
	}
}

// nest turns dotted keys back into tables. A key that is both a value and
// a table prefix ("chat" and "chat.top_k") cannot be represented.
func nest(flat map[string]any) (map[string]any, error) {
	tree := make(map[string]any)
	for key, v := range flat {
		parts := strings.Split(key, ".")
		node := tree
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			table, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config key %q conflicts with value at %q", key, part)
			}
			node = table
		}
		leaf := parts[len(parts)-1]
		if _, isTable := node[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("config key %q conflicts with a table", key)
		}
		node[leaf] = v
	}
	return tree, nil
}
