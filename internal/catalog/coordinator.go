// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/model"
	"github.com/vk/hookhost/internal/registry"
)

// Catalog replaces the remote command catalog in full.
type Catalog interface {
	ReplaceCommands(ctx context.Context, specs []model.CommandSpec) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver registers a callback invoked after every completed call
// with its result.
func WithObserver(fn func(error)) Option {
	return func(c *Coordinator) { c.observe = fn }
}

type syncRequest struct {
	ctx  context.Context
	snap *registry.Snapshot
}

// Coordinator drives catalog synchronization.
type Coordinator struct {
	catalog Catalog
	observe func(error)

	mu       sync.Mutex
	idle     *sync.Cond
	ready    bool
	inFlight bool
	pending  *syncRequest
	deferred *syncRequest
}

// NewCoordinator returns a Coordinator that is not yet ready.
func NewCoordinator(catalog Catalog, opts ...Option) *Coordinator {
	c := &Coordinator{catalog: catalog, observe: func(error) {}}
	c.idle = sync.NewCond(&c.mu)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestSync asks for the remote catalog to match snap. It never blocks on
// the remote call.
func (c *Coordinator) RequestSync(ctx context.Context, snap *registry.Snapshot) {
	logger := ctxlog.FromContext(ctx)
	req := &syncRequest{ctx: ctx, snap: snap}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.ready:
		logger.Debug("Connection not ready, deferring catalog sync.", "commands", snap.Len())
		c.deferred = req
	case c.inFlight:
		logger.Debug("Catalog sync in flight, queueing rerun.", "commands", snap.Len())
		c.pending = req
	default:
		c.startLocked(req)
	}
}

// MarkReady flags the connection as ready. The first call replays the
// deferred request, if any; later calls do nothing.
func (c *Coordinator) MarkReady(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return
	}
	c.ready = true
	ctxlog.FromContext(ctx).Debug("Catalog coordinator ready.", "deferred", c.deferred != nil)

	req := c.deferred
	c.deferred = nil
	if req == nil {
		return
	}
	if c.inFlight {
		c.pending = req
		return
	}
	c.startLocked(req)
}

// Ready reports whether MarkReady has been called.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Wait blocks until no call is in flight and no rerun is queued.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inFlight {
		c.idle.Wait()
	}
}

func (c *Coordinator) startLocked(req *syncRequest) {
	c.inFlight = true
	go c.run(req)
}

func (c *Coordinator) run(req *syncRequest) {
	for req != nil {
		c.replace(req)

		c.mu.Lock()
		req = c.pending
		c.pending = nil
		if req == nil {
			c.inFlight = false
			c.idle.Broadcast()
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) replace(req *syncRequest) {
	ctx, logger := ctxlog.With(req.ctx, "sync_id", uuid.NewString())
	specs := req.snap.Specs()

	logger.Info("Syncing command catalog...", "commands", len(specs))
	err := c.catalog.ReplaceCommands(ctx, specs)
	if err != nil {
		logger.Error("Catalog sync failed.", "commands", len(specs), "error", err)
	} else {
		logger.Info("Catalog synced.", "commands", len(specs))
	}
	c.observe(err)
}
