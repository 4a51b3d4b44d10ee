// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/hookhost/internal/ctxlog"
)

// Listener handles a named event emitted by the remote connection.
type Listener func(ctx context.Context, data map[string]any) error

type registeredListener struct {
	module string
	fn     Listener
}

// Listeners is one generation of event listeners, built during a single
// module initialization cycle.
type Listeners struct {
	mu      sync.RWMutex
	byEvent map[string][]registeredListener
}

// NewListeners returns an empty generation.
func NewListeners() *Listeners {
	return &Listeners{byEvent: make(map[string][]registeredListener)}
}

func (l *Listeners) add(module, event string, fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byEvent[event] = append(l.byEvent[event], registeredListener{module: module, fn: fn})
}

func (l *Listeners) forEvent(event string) []registeredListener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]registeredListener(nil), l.byEvent[event]...)
}

// Len returns the number of registered listeners.
func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, ls := range l.byEvent {
		n += len(ls)
	}
	return n
}

// Bus routes events to the current listener generation.
type Bus struct {
	current atomic.Pointer[Listeners]
}

// NewBus returns a Bus with an empty generation installed.
func NewBus() *Bus {
	b := &Bus{}
	b.current.Store(NewListeners())
	return b
}

// Install replaces the current generation. Events emitted afterwards reach
// only the listeners of gen.
func (b *Bus) Install(gen *Listeners) {
	b.current.Store(gen)
}

// Len returns the number of listeners in the current generation.
func (b *Bus) Len() int {
	return b.current.Load().Len()
}

// Emit delivers an event to every listener registered for it and returns
// how many were invoked. A failing or panicking listener is logged and does
// not affect the others.
func (b *Bus) Emit(ctx context.Context, event string, data map[string]any) int {
	listeners := b.current.Load().forEvent(event)
	logger := ctxlog.FromContext(ctx)

	for _, l := range listeners {
		if err := invoke(ctx, l.fn, data); err != nil {
			logger.Error("Event listener failed.", "event", event, "module", l.module, "error", err)
		}
	}
	return len(listeners)
}

func invoke(ctx context.Context, fn Listener, data map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return fn(ctx, data)
}
