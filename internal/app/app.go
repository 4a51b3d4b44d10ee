package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/vk/hookhost/internal/catalog"
	"github.com/vk/hookhost/internal/configstore"
	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/gateway"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/interaction"
	"github.com/vk/hookhost/internal/metrics"
	"github.com/vk/hookhost/internal/moduleinit"
	"github.com/vk/hookhost/internal/registry"
	"github.com/vk/hookhost/internal/watcher"
	"resty.dev/v3"
)

// Connection is the remote service as seen by the App. The gateway
// implements it.
type Connection interface {
	interaction.Responder
	host.Messenger

	OnReady(fn func(ctx context.Context))
	OnInteraction(fn gateway.InteractionHandler)
	OnEvent(fn gateway.EventHandler)
	Connect(ctx context.Context) error
	Close() error
}

// Option customizes an App.
type Option func(*App)

// WithConnection replaces the socket.io gateway.
func WithConnection(conn Connection) Option {
	return func(a *App) { a.conn = conn }
}

// WithCatalog replaces the REST catalog.
func WithCatalog(c catalog.Catalog) Option {
	return func(a *App) { a.catalog = c }
}

// WithModules replaces the compiled-in handler modules.
func WithModules(modules ...handlers.Module) Option {
	return func(a *App) { a.modules = modules }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	config  *Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	modules     []handlers.Module
	handlers    *handlers.Handlers
	loader      *registry.Loader
	configs     *configstore.Store
	initializer *moduleinit.Initializer
	bus         *host.Bus
	catalog     catalog.Catalog
	coordinator *catalog.Coordinator
	conn        Connection
	http        *resty.Client

	snapshot      atomic.Pointer[registry.Snapshot]
	modulesLoaded atomic.Int64

	// dispatchMu guards closing so that no dispatch is added once Close
	// has started waiting.
	dispatchMu sync.Mutex
	closing    bool
	dispatches sync.WaitGroup

	watchers   []*watcher.Watcher
	httpServer *http.Server
	closeOnce  sync.Once
}

// NewApp is the constructor for the main application. It returns a fully
// wired App instance with its own isolated logger, handlers and metrics.
// Nothing is loaded or connected until Start.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
		modules: coreModules,
		configs: configstore.New(cfg.ConfigDir),
		bus:     host.NewBus(),
		http:    resty.New().SetTimeout(cfg.HTTPTimeout),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.handlers = handlers.New(a.modules...)
	logger.Debug("All Go modules registered.", "count", len(a.modules), "commands", a.handlers.CommandNames())

	a.loader = registry.NewLoader(a.handlers)
	a.initializer = moduleinit.New(a.handlers, a.bus)

	if a.conn == nil {
		a.conn = gateway.New(gateway.Config{
			URL:                cfg.GatewayURL,
			Namespace:          cfg.GatewayNamespace,
			Token:              cfg.Token,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
	}
	if a.catalog == nil {
		a.catalog = catalog.NewRESTCatalog(cfg.APIBaseURL, cfg.ApplicationID, cfg.Token, cfg.HTTPTimeout)
	}
	a.coordinator = catalog.NewCoordinator(a.catalog, catalog.WithObserver(a.metrics.ObserveSync))

	return a
}

// Snapshot returns the current command registry.
func (a *App) Snapshot() *registry.Snapshot {
	return a.snapshot.Load()
}

// Configs returns the config store.
func (a *App) Configs() *configstore.Store {
	return a.configs
}

// Bus returns the event bus module listeners are registered on.
func (a *App) Bus() *host.Bus {
	return a.bus
}

// Metrics returns the App's collectors.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// Coordinator returns the catalog sync coordinator.
func (a *App) Coordinator() *catalog.Coordinator {
	return a.coordinator
}

func (a *App) services() host.Services {
	return host.Services{HTTP: a.http, Configs: a.configs, Messenger: a.conn}
}

// withLogger attaches the App's logger to ctx so that callers of the public
// entry points do not need to.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// trackDispatch registers one in-flight dispatch. It reports false once the
// App is closing.
func (a *App) trackDispatch() bool {
	a.dispatchMu.Lock()
	defer a.dispatchMu.Unlock()
	if a.closing {
		return false
	}
	a.dispatches.Add(1)
	return true
}

func (a *App) stopDispatching() {
	a.dispatchMu.Lock()
	a.closing = true
	a.dispatchMu.Unlock()
	a.dispatches.Wait()
}
