// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/fsutil"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/model"
)

// Suffix is the file suffix of extension manifests.
const Suffix = ".hcl"

// Loader builds snapshots from a commands directory.
type Loader struct {
	handlers *handlers.Handlers
	parser   *model.Parser
	mu       sync.Mutex
}

// NewLoader returns a Loader binding manifests to the given handlers.
func NewLoader(h *handlers.Handlers) *Loader {
	return &Loader{handlers: h, parser: model.NewParser()}
}

// Load enumerates the manifests in dir in file-name order and returns a
// snapshot of the ones that loaded, plus one LoadError per manifest that
// did not.
func (l *Loader) Load(ctx context.Context, dir string) (*Snapshot, []model.LoadError) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading command manifests...", "dir", dir)

	filePaths, err := fsutil.ListFiles(dir, Suffix)
	if err != nil {
		logger.Error("Failed to list commands directory", "dir", dir, "error", err)
		return NewSnapshot(), []model.LoadError{model.NewLoadError(dir, fmt.Errorf("failed to list directory: %w", err))}
	}

	l.parser.Retain(filePaths)

	var (
		cmds     []*Command
		loadErrs []model.LoadError
		sources  = make(map[string]string)
	)
	for _, path := range filePaths {
		cmd, err := l.loadFile(path)
		if err != nil {
			logger.Error("Failed to load command.", "file", path, "error", err)
			logger.Debug("Command manifest diagnostics.", "file", path, "detail", l.parser.RenderError(err))
			loadErrs = append(loadErrs, model.NewLoadError(path, err))
			continue
		}
		if prev, dup := sources[cmd.Spec.Name]; dup {
			logger.Warn("Duplicate command identifier, the later file wins.", "command", cmd.Spec.Name, "replaced", prev, "winner", cmd.Source)
		}
		sources[cmd.Spec.Name] = cmd.Source
		cmds = append(cmds, cmd)
		logger.Debug("Command loaded.", "command", cmd.Spec.Name, "handler", cmd.HandlerName, "file", cmd.Source)
	}

	snap := NewSnapshot(cmds...)
	logger.Info("Commands loaded.", "count", snap.Len(), "errors", len(loadErrs))
	return snap, loadErrs
}

func (l *Loader) loadFile(path string) (*Command, error) {
	manifest, err := l.parser.ParseCommandFile(path)
	if err != nil {
		return nil, err
	}
	return bind(l.handlers, manifest)
}
