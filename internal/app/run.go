package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/hookhost/internal/configstore"
	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/fsutil"
	"github.com/vk/hookhost/internal/gateway"
	"github.com/vk/hookhost/internal/interaction"
	"github.com/vk/hookhost/internal/moduleinit"
	"github.com/vk/hookhost/internal/registry"
	"github.com/vk/hookhost/internal/watcher"
	"golang.org/x/sync/errgroup"
)

// Start loads every extension, connects to the remote service and starts
// the directory watchers. It returns once the connection is established or
// the first attempt failed and the gateway keeps retrying; catalog syncs
// stay deferred until the ready signal either way.
func (a *App) Start(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Start method started.")

	created, err := fsutil.EnsureDirs(a.config.CommandsDir, a.config.ModulesDir, a.config.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to prepare extension directories: %w", err)
	}
	for _, dir := range created {
		logger.Info("Created extension directory.", "dir", dir)
	}

	a.ReloadConfigs(ctx)
	a.ReloadCommands(ctx)
	a.ReloadModules(ctx)

	a.conn.OnReady(a.onReady)
	a.conn.OnInteraction(func(ctx context.Context, ev interaction.Event) {
		if !a.trackDispatch() {
			a.logger.Warn("Host is stopping, request dropped.", "event_id", ev.ID)
			return
		}
		go func() {
			defer a.dispatches.Done()
			a.Dispatch(ctx, ev, a.conn)
		}()
	})
	a.conn.OnEvent(func(ctx context.Context, name string, data map[string]any) {
		ctx = a.withLogger(ctx)
		n := a.bus.Emit(ctx, name, data)
		ctxlog.FromContext(ctx).Debug("Event delivered.", "event", name, "listeners", n)
	})

	if err := a.conn.Connect(ctx); err != nil {
		if !errors.Is(err, gateway.ErrConnectPending) {
			return fmt.Errorf("failed to connect: %w", err)
		}
		logger.Warn("Remote service unreachable, retrying in the background.", "error", err)
	}

	if a.config.NoWatch {
		logger.Warn("Hot reload disabled.")
	} else {
		a.startWatchers(ctx)
	}

	logger.Debug("App.Start method finished.")
	return nil
}

func (a *App) onReady(ctx context.Context) {
	ctx = a.withLogger(ctx)
	a.coordinator.MarkReady(ctx)
	ctxlog.FromContext(ctx).Info("🚀 Host ready.",
		"commands", a.snapshot.Load().Len(),
		"modules", a.modulesLoaded.Load(),
		"configs", a.configs.Len(),
	)
}

func (a *App) startWatchers(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	targets := []struct {
		dir    string
		suffix string
		reload func(ctx context.Context)
	}{
		{a.config.CommandsDir, registry.Suffix, func(ctx context.Context) { a.ReloadCommands(ctx) }},
		{a.config.ModulesDir, moduleinit.Suffix, func(ctx context.Context) { a.ReloadModules(ctx) }},
		{a.config.ConfigDir, configstore.Suffix, func(ctx context.Context) { a.ReloadConfigs(ctx) }},
	}

	for _, target := range targets {
		dir := target.dir
		reload := target.reload
		w, err := watcher.Watch(ctx, dir, target.suffix, a.config.DebounceWindow,
			func(ctx context.Context, changed []string) {
				ctxlog.FromContext(ctx).Info("Change detected, reloading...", "dir", dir, "files", changed)
				reload(ctx)
			},
			watcher.WithOnLost(func(err error) {
				logger.Error("Hot reload stopped for directory.", "dir", dir, "error", err)
			}),
		)
		if err != nil {
			logger.Error("Failed to watch directory, hot reload disabled for it.", "dir", dir, "error", err)
			continue
		}
		a.watchers = append(a.watchers, w)
		logger.Info("👀 Watching for changes.", "dir", dir)
	}
}

// Run starts the App and the health check server and blocks until ctx is
// cancelled or either of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("App.Run method started.")

	g, gctx := errgroup.WithContext(ctx)
	if a.config.HealthcheckPort > 0 {
		g.Go(func() error { return a.serveHealth(gctx) })
	} else {
		a.logger.Warn("Health check server not started: disabled")
	}
	g.Go(func() error {
		if err := a.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	err := g.Wait()
	a.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

// Close stops the watchers, disconnects and waits for running dispatches
// and catalog calls to finish.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		for _, w := range a.watchers {
			_ = w.Close()
		}
		if err := a.conn.Close(); err != nil {
			a.logger.Error("Failed to close connection.", "error", err)
		}
		a.stopDispatching()
		a.coordinator.Wait()
		if err := a.http.Close(); err != nil {
			a.logger.Debug("Failed to close HTTP client.", "error", err)
		}
		if closer, ok := a.catalog.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		a.logger.Info("🏁 Host stopped.")
	})
}
