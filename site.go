// Package site wires the TapDev storage, SEO and code injection engines,
// content collections, admin API and public pages into one runtime.
package site

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/tapdev/tapdev-site/internal/auth"
	"github.com/tapdev/tapdev-site/internal/collections"
	adminhttp "github.com/tapdev/tapdev-site/internal/http"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/markdown"
	"github.com/tapdev/tapdev-site/internal/routes"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/internal/storage"
	"github.com/tapdev/tapdev-site/internal/web"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

type (
	SEOService         = seo.Service
	SEOConfiguration   = seo.Configuration
	InjectionService   = injection.Service
	InjectionSettings  = injection.Configuration
	CollectionsService = collections.Service
	Route              = routes.Route
)

// Option overrides a dependency New would otherwise build from Config.
type Option func(*options)

type options struct {
	loggerProvider interfaces.LoggerProvider
	configStore    interfaces.ConfigStore
	db             *bun.DB
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
}

// WithLoggerProvider replaces the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) {
		o.loggerProvider = provider
	}
}

// WithConfigStore replaces the settings store holding SEO overrides and
// injection settings.
func WithConfigStore(store interfaces.ConfigStore) Option {
	return func(o *options) {
		o.configStore = store
	}
}

// WithDB supplies an open database for the bun provider. The caller keeps
// ownership and Close leaves it open.
func WithDB(db *bun.DB) Option {
	return func(o *options) {
		o.db = db
	}
}

// WithCache supplies the cache used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(o *options) {
		o.cacheService = service
		o.keySerializer = serializer
	}
}

// Module is the assembled site runtime.
type Module struct {
	cfg         Config
	logger      interfaces.Logger
	db          *bun.DB
	ownsDB      bool
	store       interfaces.ConfigStore
	content     *collections.Store
	seo         seo.Service
	injection   injection.Service
	collections collections.Service
	site        *web.Site
	admin       http.Handler
}

// New validates cfg and builds every enabled subsystem.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.loggerProvider == nil {
		provider, err := newLoggerProvider(cfg)
		if err != nil {
			return nil, err
		}
		o.loggerProvider = provider
	}

	ctx := context.Background()
	m := &Module{cfg: cfg, logger: logging.ModuleLogger(o.loggerProvider, "site")}
	if err := m.configureStorage(ctx, &o); err != nil {
		return nil, err
	}

	provider := o.loggerProvider
	m.seo = seo.NewService(m.store, seo.WithLogger(logging.SEOLogger(provider)))
	if cfg.Features.Injection {
		m.injection = injection.NewService(m.store, injection.WithLogger(logging.InjectionLogger(provider)))
	}
	collectionSvc, err := collections.NewService(m.content,
		collections.WithLogger(logging.CollectionsLogger(provider)),
		collections.WithRenderer(markdown.NewRenderer(markdown.Options{
			Extensions: cfg.Markdown.Extensions,
			HardWraps:  cfg.Markdown.HardWraps,
		})),
	)
	if err != nil {
		m.closeDB()
		return nil, err
	}
	m.collections = collectionSvc

	if cfg.Storage.Seed {
		result, err := collections.Seed(ctx, m.content)
		if err != nil {
			m.closeDB()
			return nil, fmt.Errorf("site: seed: %w", err)
		}
		m.logger.Info("site.seed.completed",
			"posts", result.Posts,
			"services", result.Services,
			"projects", result.Projects,
			"homepage", result.Homepage,
		)
	}

	m.site, err = web.New(web.Options{
		Config:         cfg.Site,
		SEO:            m.seo,
		Collections:    m.collections,
		Injection:      m.injection,
		LoggerProvider: provider,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	if err != nil {
		m.closeDB()
		return nil, err
	}

	if cfg.Features.Admin {
		if err := m.configureAdmin(provider); err != nil {
			m.closeDB()
			return nil, err
		}
	}
	return m, nil
}

func (m *Module) configureStorage(ctx context.Context, o *options) error {
	if strings.ToLower(strings.TrimSpace(m.cfg.Storage.Provider)) != "bun" {
		m.store = settings.NewMemoryStore()
		m.content = collections.NewMemoryStore()
		if o.configStore != nil {
			m.store = o.configStore
		}
		return nil
	}

	db := o.db
	if db == nil {
		opened, err := storage.Open(ctx, m.cfg.Storage)
		if err != nil {
			return err
		}
		db = opened
		m.ownsDB = true
	}
	m.db = db
	if err := storage.Migrate(ctx, db); err != nil {
		m.closeDB()
		return err
	}

	cacheSvc, serializer := o.cacheService, o.keySerializer
	if cacheSvc == nil && m.cfg.Cache.Enabled {
		cacheCfg := repocache.DefaultConfig()
		if m.cfg.Cache.DefaultTTL > 0 {
			cacheCfg.TTL = m.cfg.Cache.DefaultTTL
		}
		svc, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			m.closeDB()
			return fmt.Errorf("site: cache: %w", err)
		}
		cacheSvc = svc
	}
	if cacheSvc != nil && serializer == nil {
		serializer = repocache.NewDefaultKeySerializer()
	}

	m.store = settings.NewBunStoreWithCache(db, cacheSvc, serializer,
		settings.WithStoreLogger(logging.SettingsLogger(o.loggerProvider)))
	if o.configStore != nil {
		m.store = o.configStore
	}
	m.content = collections.NewBunStore(db, cacheSvc, serializer)
	return nil
}

func (m *Module) configureAdmin(provider interfaces.LoggerProvider) error {
	authenticator := auth.NewCredentialAuthenticator(m.cfg.Admin.Users, logging.AuthLogger(provider))
	if len(m.cfg.Admin.Users) == 0 {
		m.logger.Warn("site.admin.no_users", "base_path", m.cfg.Admin.BasePath)
	}
	adminOpts := []adminhttp.AdminOption{
		adminhttp.WithBasePath(m.cfg.Admin.BasePath),
		adminhttp.WithAuth(authenticator, auth.NewSessions(m.cfg.Admin.SessionTTL)),
		adminhttp.WithSecureCookie(strings.HasPrefix(m.cfg.Site.BaseURL, "https://")),
		adminhttp.WithSEOService(m.seo),
		adminhttp.WithCollectionsService(m.collections),
		adminhttp.WithLoggerProvider(provider),
	}
	if m.injection != nil {
		adminOpts = append(adminOpts, adminhttp.WithInjectionService(m.injection))
	}
	if m.cfg.Features.LivePreview {
		adminOpts = append(adminOpts, adminhttp.WithPreview(m.site.RenderDocument, m.store))
	}

	mux := http.NewServeMux()
	if err := adminhttp.NewAdminAPI(adminOpts...).Register(mux); err != nil {
		return fmt.Errorf("site: admin api: %w", err)
	}
	m.admin = mux
	return nil
}

// Config returns the validated configuration.
func (m *Module) Config() Config {
	return m.cfg
}

func (m *Module) SEO() SEOService {
	return m.seo
}

// Injection returns nil when the injection feature is disabled.
func (m *Module) Injection() InjectionService {
	return m.injection
}

func (m *Module) Collections() CollectionsService {
	return m.collections
}

// Store returns the settings store behind SEO overrides and injection
// settings.
func (m *Module) Store() interfaces.ConfigStore {
	return m.store
}

// Routes lists the registered page routes.
func (m *Module) Routes() []Route {
	return routes.All()
}

// AdminHandler returns the admin API, or nil when the admin feature is
// disabled.
func (m *Module) AdminHandler() http.Handler {
	return m.admin
}

func (m *Module) PublicHandler() http.Handler {
	return m.site.Handler()
}

// Handler serves the admin API under its base path and the public site
// everywhere else.
func (m *Module) Handler() http.Handler {
	public := m.PublicHandler()
	if m.admin == nil {
		return public
	}
	base := strings.TrimRight(m.cfg.Admin.BasePath, "/")
	mux := http.NewServeMux()
	mux.Handle(base+"/", m.admin)
	mux.Handle("/", public)
	return mux
}

// Watch keeps attached injection engines in sync with the stored settings
// until ctx is done.
func (m *Module) Watch(ctx context.Context) error {
	if m.injection == nil {
		<-ctx.Done()
		return nil
	}
	return m.injection.Watch(ctx)
}

// Close releases the database opened by New.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.closeDB()
}

func (m *Module) closeDB() error {
	if m.db == nil || !m.ownsDB {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		return fmt.Errorf("site: close db: %w", err)
	}
	return nil
}
