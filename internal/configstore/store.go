// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package configstore holds the keyed configuration documents read from
// the config directory. Each reload replaces the whole document map.
package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tidwall/jsonc"
	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/fsutil"
	"github.com/vk/hookhost/internal/model"
)

// Suffix is the file suffix of configuration documents.
const Suffix = ".json"

// Store holds the current document map.
type Store struct {
	dir  string
	docs atomic.Pointer[map[string]any]
	mu   sync.Mutex // serializes Load
}

// New returns a Store reading from dir. It holds no documents until Load.
func New(dir string) *Store {
	s := &Store{dir: dir}
	empty := map[string]any{}
	s.docs.Store(&empty)
	return s
}

// Load reads every document in the directory and installs the result as
// the new document map. Documents that fail to parse are skipped and
// reported; they are absent from the new map even if an earlier version
// loaded. The returned map is a copy of the installed one; the parsed
// documents inside it are shared and must be treated as read-only.
func (s *Store) Load(ctx context.Context) (map[string]any, []model.LoadError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	docs := make(map[string]any)
	var loadErrs []model.LoadError

	files, err := fsutil.ListFiles(s.dir, Suffix)
	if err != nil {
		loadErrs = append(loadErrs, model.NewLoadError(s.dir, fmt.Errorf("failed to list config directory: %w", err)))
	}

	for _, path := range files {
		value, found, err := readDocument(path)
		if err != nil {
			logger.Error("Failed to load config document.", "file", filepath.Base(path), "error", err)
			loadErrs = append(loadErrs, model.NewLoadError(path, err))
			continue
		}
		if !found {
			// Removed between listing and reading.
			continue
		}
		docs[filepath.Base(path)] = value
	}

	s.docs.Store(&docs)
	logger.Info("Config documents loaded.", "count", len(docs), "errors", len(loadErrs))
	return maps.Clone(docs), loadErrs
}

// Get returns the parsed document stored under key (its file name).
func (s *Store) Get(key string) (any, bool) {
	docs := *s.docs.Load()
	v, ok := docs[key]
	return v, ok
}

// Keys returns the sorted document keys.
func (s *Store) Keys() []string {
	docs := *s.docs.Load()
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of loaded documents.
func (s *Store) Len() int {
	return len(*s.docs.Load())
}

// EnsureDefault returns the document stored in the file name, creating it
// with defaultValue first when it does not exist. On creation the returned
// value is defaultValue itself.
//
// Creation is atomic: the document is written to a temporary file and
// hard-linked into place, so readers never see a partial document and
// concurrent callers never overwrite each other. A caller that loses the
// race returns the winner's document.
func (s *Store) EnsureDefault(name string, defaultValue any) (any, error) {
	path := filepath.Join(s.dir, name)

	if value, found, err := readDocument(path); err != nil {
		return nil, err
	} else if found {
		return value, nil
	}

	data, err := json.MarshalIndent(defaultValue, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode default for %s: %w", name, err)
	}

	err = createExclusive(s.dir, path, data)
	switch {
	case err == nil:
		return defaultValue, nil
	case errors.Is(err, fs.ErrExist):
		value, found, readErr := readDocument(path)
		if readErr != nil {
			return nil, readErr
		}
		if found {
			return value, nil
		}
		return nil, fmt.Errorf("document %s disappeared while being created", name)
	default:
		return nil, err
	}
}

// Decode is EnsureDefault for callers that want the document in a typed
// structure.
func (s *Store) Decode(name string, defaultValue any, target any) error {
	value, err := s.EnsureDefault(name, defaultValue)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, target)
}

func createExclusive(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary document: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	err = os.Link(tmpName, path)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}

	// Some filesystems refuse hard links; fall back to an exclusive create.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readDocument(path string) (any, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var value any
	if err := json.Unmarshal(jsonc.ToJSON(data), &value); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return value, true, nil
}
