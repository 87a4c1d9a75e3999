package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/pipewrench/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

// PromptStore serves system prompts from editable files in one directory.
// The directory and a copy of each built-in prompt are written on the
// first Load. A missing, empty or unreadable file falls back to the
// built-in text.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// DefaultPrompt returns the built-in text for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := driven.DefaultPrompts[name]
	return p, ok
}

// NewPromptStore does no I/O. An empty dir means ~/.pipewrench/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".pipewrench", "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

func (s *PromptStore) Dir() string { return s.dir }

func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(func() { s.seedErr = s.seed() })

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil || prompt == "" {
		if def, ok := DefaultPrompt(name); ok {
			return def, nil
		}
		if err == nil {
			err = errors.New("file is empty")
		}
		if s.seedErr != nil {
			err = errors.Join(err, s.seedErr)
		}
		return "", fmt.Errorf("loading prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another Load may have filled the entry while we were reading.
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load rereads the files.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	clear(s.cache)
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+promptExt)
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed writes any built-in prompt or README that is not on disk yet.
// Files the user already has are never touched.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating prompt directory: %w", err)
	}
	names := slices.Sorted(maps.Keys(driven.DefaultPrompts))
	for _, name := range names {
		if err := createOnce(s.path(name), driven.DefaultPrompts[name]); err != nil {
			return err
		}
	}
	return createOnce(filepath.Join(s.dir, "README.md"), readme(names))
}

func createOnce(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	_, err = f.WriteString(content)
	return errors.Join(err, f.Close())
}

func readme(names []string) string {
	var b strings.Builder
	b.WriteString("# Pipewrench prompts\n\n")
	b.WriteString("System prompts used by pipewrench chat, one file per prompt:\n\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- `%s%s`\n", name, promptExt)
	}
	b.WriteString("\nEdits take effect without a restart. Delete a file to restore its default.\n")
	return b.String()
}
