package seo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// Service resolves, persists and applies per-page SEO configuration.
type Service interface {
	// Resolve layers global defaults, page defaults and the stored override
	// for path. It never fails; unreadable overrides are logged and skipped.
	Resolve(ctx context.Context, path string) Configuration
	// Override returns the stored override for path, if any.
	Override(ctx context.Context, path string) (Configuration, bool, error)
	// Persist replaces the stored override for path with cfg.
	Persist(ctx context.Context, path string, cfg Configuration) error
	DeleteOverride(ctx context.Context, path string) error
	// Overrides lists the paths that have a stored override.
	Overrides(ctx context.Context) ([]string, error)
	Apply(ctx context.Context, doc interfaces.DocumentSynchronizer, cfg Configuration) error
	// SyncPath resolves path and applies the result to doc.
	SyncPath(ctx context.Context, doc interfaces.DocumentSynchronizer, path string) (Configuration, error)
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGlobalDefaults replaces the built-in site-wide defaults.
func WithGlobalDefaults(cfg Configuration) ServiceOption {
	return func(s *service) {
		s.global = cfg.Clone()
	}
}

// WithPageDefaults replaces the per-path defaults lookup.
func WithPageDefaults(lookup func(path string) (Configuration, bool)) ServiceOption {
	return func(s *service) {
		if lookup != nil {
			s.pages = lookup
		}
	}
}

type service struct {
	store  interfaces.ConfigStore
	logger interfaces.Logger
	global Configuration
	pages  func(path string) (Configuration, bool)
}

// NewService constructs a Service backed by store.
func NewService(store interfaces.ConfigStore, opts ...ServiceOption) Service {
	s := &service{
		store:  store,
		logger: logging.NoOp(),
		global: GlobalDefaults(),
		pages:  PageDefaults,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Resolve(ctx context.Context, path string) Configuration {
	resolved := s.global.Clone()
	if page, ok := s.pages(path); ok {
		resolved = Merge(resolved, page)
	}

	override, ok, err := s.Override(ctx, path)
	if err != nil {
		event := "seo.resolve.store_failed"
		if errors.Is(err, ErrMalformedPersistedData) {
			event = "seo.resolve.override_malformed"
		}
		s.logger.WithContext(ctx).Warn(event, "path", path, "error", err)
		return resolved
	}
	if ok {
		resolved = Merge(resolved, override)
	}
	return resolved
}

func (s *service) Override(ctx context.Context, path string) (Configuration, bool, error) {
	if s.store == nil {
		return Configuration{}, false, nil
	}
	raw, err := s.store.Get(ctx, settings.SEOKey(path))
	if err != nil {
		if errors.Is(err, settings.ErrKeyNotFound) {
			return Configuration{}, false, nil
		}
		return Configuration{}, false, fmt.Errorf("seo: read override %s: %w", path, err)
	}

	var cfg Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return Configuration{}, false, fmt.Errorf("%w: %s: %v", ErrMalformedPersistedData, path, err)
	}
	return cfg, true, nil
}

func (s *service) Persist(ctx context.Context, path string, cfg Configuration) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathRequired
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return &MalformedInputError{Field: "configuration", Err: err}
	}
	if s.store == nil {
		return errors.New("seo: no configuration store")
	}
	if err := s.store.Set(ctx, settings.SEOKey(path), string(encoded)); err != nil {
		return fmt.Errorf("seo: persist override %s: %w", path, err)
	}
	s.logger.WithContext(ctx).Info("seo.override.saved", "path", path)
	return nil
}

func (s *service) DeleteOverride(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathRequired
	}
	if s.store == nil {
		return nil
	}
	err := s.store.Delete(ctx, settings.SEOKey(path))
	if err != nil && !errors.Is(err, settings.ErrKeyNotFound) {
		return fmt.Errorf("seo: delete override %s: %w", path, err)
	}
	s.logger.WithContext(ctx).Info("seo.override.deleted", "path", path)
	return nil
}

func (s *service) Overrides(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	keys, err := s.store.Keys(ctx, settings.SEOKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("seo: list overrides: %w", err)
	}
	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		if path, ok := settings.PathFromSEOKey(key); ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (s *service) Apply(ctx context.Context, doc interfaces.DocumentSynchronizer, cfg Configuration) error {
	return Apply(ctx, doc, cfg)
}

func (s *service) SyncPath(ctx context.Context, doc interfaces.DocumentSynchronizer, path string) (Configuration, error) {
	cfg := s.Resolve(ctx, path)
	if err := Apply(ctx, doc, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
