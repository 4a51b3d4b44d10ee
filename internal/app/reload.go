package app

import (
	"context"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/metrics"
	"github.com/vk/hookhost/internal/model"
	"github.com/vk/hookhost/internal/moduleinit"
	"github.com/vk/hookhost/internal/registry"
)

// ReloadCommands rebuilds the command registry from the commands directory,
// installs it and asks for the remote catalog to follow.
func (a *App) ReloadCommands(ctx context.Context) []model.LoadError {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	snap, loadErrs := a.loader.Load(ctx, a.config.CommandsDir)
	prev := a.snapshot.Swap(snap)

	added, removed, kept := registry.Diff(prev, snap)
	logger.Info("🔄 Command registry replaced.",
		"commands", snap.Len(),
		"added", added,
		"removed", removed,
		"kept", len(kept),
		"errors", len(loadErrs),
	)
	a.metrics.ObserveLoad(metrics.KindCommand, snap.Len(), len(loadErrs))

	a.coordinator.RequestSync(ctx, snap)
	return loadErrs
}

// ReloadModules re-runs every module initializer and replaces the listener
// generation.
func (a *App) ReloadModules(ctx context.Context) moduleinit.Report {
	ctx = a.withLogger(ctx)
	report := a.initializer.Initialize(ctx, a.config.ModulesDir, a.services())
	a.modulesLoaded.Store(int64(report.Loaded))
	a.metrics.ObserveLoad(metrics.KindModule, report.Loaded, len(report.LoadErrors))
	a.metrics.ObserveInitErrors(len(report.InitErrors))
	return report
}

// ReloadConfigs re-reads every config document.
func (a *App) ReloadConfigs(ctx context.Context) []model.LoadError {
	ctx = a.withLogger(ctx)
	docs, loadErrs := a.configs.Load(ctx)
	a.metrics.ObserveLoad(metrics.KindConfig, len(docs), len(loadErrs))
	ctxlog.FromContext(ctx).Debug("Config store reloaded.", "documents", a.configs.Keys(), "errors", len(loadErrs))
	return loadErrs
}
