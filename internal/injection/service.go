package injection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// Service keeps the editor draft and pushes it to attached documents.
type Service interface {
	// Load reads the persisted configuration into the draft. Missing or
	// malformed data yields the zero configuration.
	Load(ctx context.Context) Configuration
	Current() Configuration
	// Update replaces the draft and re-applies it to every attached engine.
	// Nothing is persisted.
	Update(ctx context.Context, cfg Configuration) error
	// Save persists the draft.
	Save(ctx context.Context) error
	// Persisted reads the stored configuration without touching the draft.
	Persisted(ctx context.Context) (Configuration, error)
	Attach(engine *Engine)
	Detach(engine *Engine)
	// Watch reloads and re-applies the persisted configuration whenever it
	// changes in the store. A draft with unsaved edits is kept and the change
	// is only logged. It returns when ctx is done.
	Watch(ctx context.Context) error
	// ApplyPersisted applies the stored configuration to a fresh document.
	ApplyPersisted(ctx context.Context, doc interfaces.DocumentSynchronizer) error
	// Changes streams the draft after every Update or reload until ctx is
	// done. Slow readers only see the latest draft.
	Changes(ctx context.Context) <-chan Configuration
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	store  interfaces.ConfigStore
	logger interfaces.Logger

	mu    sync.RWMutex
	draft Configuration
	// dirty is set by Update and cleared by Load or by a Save of the same
	// revision.
	dirty     bool
	revision  uint64
	engines   map[*Engine]struct{}
	listeners map[chan Configuration]struct{}
}

// NewService constructs a Service over store.
func NewService(store interfaces.ConfigStore, opts ...ServiceOption) Service {
	s := &service{
		store:     store,
		logger:    logging.NoOp(),
		engines:   make(map[*Engine]struct{}),
		listeners: make(map[chan Configuration]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Load(ctx context.Context) Configuration {
	cfg, err := s.Persisted(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("injection.load.fallback", "error", err)
		cfg = Configuration{}
	}
	s.mu.Lock()
	s.draft = cfg
	s.dirty = false
	s.mu.Unlock()
	return cfg
}

func (s *service) Current() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *service) Update(ctx context.Context, cfg Configuration) error {
	s.mu.Lock()
	s.draft = cfg
	s.dirty = true
	s.revision++
	s.mu.Unlock()

	err := s.reapplyAll(ctx, cfg)
	s.notify(cfg)
	return err
}

func (s *service) Save(ctx context.Context) error {
	if s.store == nil {
		return errors.New("injection: no configuration store")
	}
	s.mu.RLock()
	cfg, revision := s.draft, s.revision
	s.mu.RUnlock()
	encoded, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("injection: encode: %w", err)
	}
	if err := s.store.Set(ctx, settings.InjectionKey, string(encoded)); err != nil {
		return fmt.Errorf("injection: save: %w", err)
	}
	s.mu.Lock()
	if s.revision == revision {
		s.dirty = false
	}
	s.mu.Unlock()
	s.logger.WithContext(ctx).Info("injection.saved", "enabled", cfg.Enabled)
	return nil
}

func (s *service) Persisted(ctx context.Context) (Configuration, error) {
	if s.store == nil {
		return Configuration{}, nil
	}
	raw, err := s.store.Get(ctx, settings.InjectionKey)
	if err != nil {
		if errors.Is(err, settings.ErrKeyNotFound) {
			return Configuration{}, nil
		}
		return Configuration{}, fmt.Errorf("injection: read: %w", err)
	}
	var cfg Configuration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return Configuration{}, fmt.Errorf("injection: malformed %s: %w", settings.InjectionKey, err)
	}
	return cfg, nil
}

func (s *service) Attach(engine *Engine) {
	if engine == nil {
		return
	}
	s.mu.Lock()
	s.engines[engine] = struct{}{}
	s.mu.Unlock()
}

func (s *service) Detach(engine *Engine) {
	s.mu.Lock()
	delete(s.engines, engine)
	s.mu.Unlock()
}

func (s *service) Watch(ctx context.Context) error {
	if s.store == nil {
		<-ctx.Done()
		return nil
	}
	events, err := s.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("injection: watch: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			if evt.Key != settings.InjectionKey {
				continue
			}
			cfg, ok := s.reload(ctx)
			if !ok {
				s.logger.WithContext(ctx).Info("injection.watch.draft_kept", "change", string(evt.Type))
				continue
			}
			s.logger.WithContext(ctx).Info("injection.watch.reloaded", "change", string(evt.Type), "enabled", cfg.Enabled)
			if err := s.reapplyAll(ctx, cfg); err != nil {
				s.logger.WithContext(ctx).Warn("injection.watch.reapply_failed", "error", err)
			}
			s.notify(cfg)
		}
	}
}

// reload adopts the persisted configuration as the draft unless the draft has
// unsaved edits.
func (s *service) reload(ctx context.Context) (Configuration, bool) {
	cfg, err := s.Persisted(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("injection.load.fallback", "error", err)
		cfg = Configuration{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		return Configuration{}, false
	}
	s.draft = cfg
	return cfg, true
}

func (s *service) ApplyPersisted(ctx context.Context, doc interfaces.DocumentSynchronizer) error {
	cfg, err := s.Persisted(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("injection.apply.fallback", "error", err)
		cfg = Configuration{}
	}
	return NewEngine(doc, WithEngineLogger(s.logger)).Reapply(ctx, cfg)
}

func (s *service) Changes(ctx context.Context) <-chan Configuration {
	ch := make(chan Configuration, 1)
	s.mu.Lock()
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.listeners, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

func (s *service) reapplyAll(ctx context.Context, cfg Configuration) error {
	s.mu.RLock()
	engines := make([]*Engine, 0, len(s.engines))
	for engine := range s.engines {
		engines = append(engines, engine)
	}
	s.mu.RUnlock()

	var errs []error
	for _, engine := range engines {
		if err := engine.Reapply(ctx, cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) notify(cfg Configuration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.listeners {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg:
		default:
		}
	}
}
