// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package moduleinit loads module manifests and runs their initializers.
// Every cycle builds a fresh listener generation which replaces the
// previous one once all initializers have returned.
package moduleinit

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/fsutil"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/model"
)

// Suffix is the file suffix of module manifests.
const Suffix = ".hcl"

// InitError records a module whose initializer failed. The module still
// counts as loaded.
type InitError struct {
	Source string
	Module string
	Err    error
}

func (e InitError) Error() string {
	return fmt.Sprintf("%s: module %q failed to initialize: %v", e.Source, e.Module, e.Err)
}

func (e InitError) Unwrap() error { return e.Err }

// Report summarizes one initialization cycle.
type Report struct {
	Loaded     int
	Modules    []string
	LoadErrors []model.LoadError
	InitErrors []InitError
}

// Initializer runs module initializers against a listener bus.
type Initializer struct {
	handlers *handlers.Handlers
	parser   *model.Parser
	bus      *host.Bus
	mu       sync.Mutex
}

// New returns an Initializer installing listener generations into bus.
func New(h *handlers.Handlers, bus *host.Bus) *Initializer {
	return &Initializer{handlers: h, parser: model.NewParser(), bus: bus}
}

// Initialize loads every manifest in dir, in file-name order, and runs
// the initializer each one names. Initializers run sequentially; a failing
// or panicking initializer is recorded and the rest still run.
func (in *Initializer) Initialize(ctx context.Context, dir string, services host.Services) Report {
	in.mu.Lock()
	defer in.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Initializing modules...", "dir", dir)

	var report Report
	gen := host.NewListeners()
	defer func() {
		in.bus.Install(gen)
		logger.Info("Modules initialized.",
			"loaded", report.Loaded,
			"listeners", gen.Len(),
			"load_errors", len(report.LoadErrors),
			"init_errors", len(report.InitErrors),
		)
	}()

	filePaths, err := fsutil.ListFiles(dir, Suffix)
	if err != nil {
		logger.Error("Failed to list modules directory", "dir", dir, "error", err)
		report.LoadErrors = append(report.LoadErrors, model.NewLoadError(dir, fmt.Errorf("failed to list directory: %w", err)))
		return report
	}

	in.parser.Retain(filePaths)

	for _, path := range filePaths {
		if ctx.Err() != nil {
			break
		}

		manifest, err := in.parser.ParseModuleFile(path)
		if err != nil {
			logger.Error("Failed to load module.", "file", path, "error", err)
			logger.Debug("Module manifest diagnostics.", "file", path, "detail", in.parser.RenderError(err))
			report.LoadErrors = append(report.LoadErrors, model.NewLoadError(path, err))
			continue
		}

		fn, ok := in.handlers.Initializer(manifest.Initializer)
		if !ok {
			err := fmt.Errorf("module %q: initializer %q is not registered", manifest.Name, manifest.Initializer)
			logger.Error("Failed to load module.", "file", path, "error", err)
			report.LoadErrors = append(report.LoadErrors, model.NewLoadError(path, err))
			continue
		}

		report.Loaded++
		report.Modules = append(report.Modules, manifest.Name)

		hctx := host.NewContext(ctx, manifest.Name, services, gen)
		if err := run(ctx, fn, hctx); err != nil {
			initErr := InitError{Source: manifest.FSInformation.Name(), Module: manifest.Name, Err: err}
			logger.Error("Module initializer failed.", "module", manifest.Name, "file", path, "error", err)
			report.InitErrors = append(report.InitErrors, initErr)
			continue
		}
		logger.Debug("Module initialized.", "module", manifest.Name, "initializer", manifest.Initializer)
	}

	return report
}

func run(ctx context.Context, fn handlers.InitializerFunc, hctx *host.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initializer panicked: %v", r)
		}
	}()
	return fn(ctx, hctx)
}
