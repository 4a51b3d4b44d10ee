// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package handlers stores the compiled Go functions that manifests refer
// to by name: command handlers and module initializers.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/interaction"
)

// CommandFunc serves one inbound request.
type CommandFunc func(ctx context.Context, req *interaction.Request) error

// InitializerFunc runs once per module load cycle.
type InitializerFunc func(ctx context.Context, hctx *host.Context) error

// Module is implemented by every compiled extension package.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered handlers.
type Handlers struct {
	mu           sync.RWMutex
	commands     map[string]CommandFunc
	initializers map[string]InitializerFunc
}

// New creates an empty Handlers and registers the given modules.
func New(modules ...Module) *Handlers {
	h := &Handlers{
		commands:     make(map[string]CommandFunc),
		initializers: make(map[string]InitializerFunc),
	}
	for _, m := range modules {
		m.Register(h)
	}
	return h
}

// RegisterCommand registers a command handler under name.
func (h *Handlers) RegisterCommand(name string, fn CommandFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.commands[name]; exists {
		panic(fmt.Sprintf("command handler with name '%s' already registered", name))
	}
	slog.Debug("Registering command handler.", "name", name)
	h.commands[name] = fn
}

// RegisterInitializer registers a module initializer under name.
func (h *Handlers) RegisterInitializer(name string, fn InitializerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.initializers[name]; exists {
		panic(fmt.Sprintf("initializer with name '%s' already registered", name))
	}
	slog.Debug("Registering module initializer.", "name", name)
	h.initializers[name] = fn
}

// Command looks up a command handler.
func (h *Handlers) Command(name string) (CommandFunc, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.commands[name]
	return fn, ok && fn != nil
}

// Initializer looks up a module initializer.
func (h *Handlers) Initializer(name string) (InitializerFunc, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.initializers[name]
	return fn, ok && fn != nil
}

// CommandNames returns the sorted names of the registered command handlers.
func (h *Handlers) CommandNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
