package injection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// Engine owns the injected nodes of one document. Reapply is the only
// transition that adds nodes and always starts from a clean document.
type Engine struct {
	mu      sync.Mutex
	doc     interfaces.DocumentSynchronizer
	logger  interfaces.Logger
	state   State
	applied Configuration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger interfaces.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine binds an engine to doc.
func NewEngine(doc interfaces.DocumentSynchronizer, opts ...EngineOption) *Engine {
	e := &Engine{doc: doc, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Document returns the bound document.
func (e *Engine) Document() interfaces.DocumentSynchronizer {
	return e.doc
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Applied returns the configuration behind the current nodes. It is the zero
// value while the engine is clean.
func (e *Engine) Applied() Configuration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applied
}

// Teardown removes every marked node from the document, including nodes the
// engine did not create itself.
func (e *Engine) Teardown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.teardown(ctx)
}

// Reapply tears the document down and applies cfg under one lock.
func (e *Engine) Reapply(ctx context.Context, cfg Configuration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.teardown(ctx); err != nil {
		return err
	}
	if err := e.apply(ctx, cfg); err != nil {
		if cleanupErr := e.teardown(ctx); cleanupErr != nil {
			return errors.Join(err, cleanupErr)
		}
		return err
	}
	return nil
}

func (e *Engine) teardown(ctx context.Context) error {
	if e.doc == nil {
		return ErrDocumentRequired
	}
	removed, err := e.doc.RemoveAllTagged(ctx, MarkerAttribute)
	if err != nil {
		return fmt.Errorf("injection: teardown: %w", err)
	}
	e.state = StateClean
	e.applied = Configuration{}
	e.logger.WithContext(ctx).Debug("injection.teardown", "removed", removed)
	return nil
}

func (e *Engine) apply(ctx context.Context, cfg Configuration) error {
	if e.state != StateClean {
		return fmt.Errorf("injection: apply on %s document", e.state)
	}
	snippets := Snippets(cfg)
	for _, snip := range snippets {
		if err := e.doc.Insert(ctx, snip.Element, snip.Placement); err != nil {
			return fmt.Errorf("injection: insert %s: %w", snip.Slot, err)
		}
	}
	if len(snippets) > 0 {
		e.state = StateApplied
		e.applied = cfg
	}
	e.logger.WithContext(ctx).Debug("injection.applied", "enabled", cfg.Enabled, "nodes", len(snippets))
	return nil
}
