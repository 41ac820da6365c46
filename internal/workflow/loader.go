package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/orgmux/internal/orchestrator"
)

// DefinitionStore holds loaded workflow definitions, keyed by ID.
type DefinitionStore struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewDefinitionStore creates an empty DefinitionStore.
func NewDefinitionStore() *DefinitionStore {
	return &DefinitionStore{defs: make(map[string]*Definition)}
}

// Add inserts or replaces a definition.
func (s *DefinitionStore) Add(def *Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.ID] = def
}

// Get returns the definition with the given ID.
func (s *DefinitionStore) Get(id string) (*Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[id]
	return def, ok
}

// List returns all definitions, in no particular order.
func (s *DefinitionStore) List() []*Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Definition, 0, len(s.defs))
	for _, def := range s.defs {
		out = append(out, def)
	}
	return out
}

// LoadDir parses every .yaml/.yml file in dir and replaces the store's
// contents with the parsed definitions. Definitions without an explicit ID
// take the file name (without extension).
func (s *DefinitionStore) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read workflow dir: %w", err)
	}

	loaded := make(map[string]*Definition)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read workflow file %s: %w", path, err)
		}

		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return fmt.Errorf("parse workflow file %s: %w", path, err)
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(entry.Name(), ext)
		}
		loaded[def.ID] = &def
	}

	s.mu.Lock()
	s.defs = loaded
	s.mu.Unlock()
	return nil
}

// Watch reloads the store whenever files in dir change. It blocks until the
// context is cancelled; callers run it in a goroutine. Reload errors are
// logged and do not stop the watch.
func (s *DefinitionStore) Watch(ctx context.Context, dir string, logger *orchestrator.DebugLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch workflow dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.LoadDir(dir); err != nil {
				logger.Log("[workflow] reload after %s: %v", event.Name, err)
				continue
			}
			logger.Log("[workflow] definitions reloaded after change to %s", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log("[workflow] watcher error: %v", err)
		}
	}
}
