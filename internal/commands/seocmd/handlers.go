package seocmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/tapdev/tapdev-site/internal/commands"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const (
	saveOperation   = "seo.save_override"
	deleteOperation = "seo.delete_override"
)

var (
	_ command.Commander[SaveOverrideCommand]   = (*SaveOverrideHandler)(nil)
	_ command.Commander[DeleteOverrideCommand] = (*DeleteOverrideHandler)(nil)
)

// SaveOverrideHandler persists SEO overrides.
type SaveOverrideHandler struct {
	inner *commands.Handler[SaveOverrideCommand]
}

// NewSaveOverrideHandler creates a handler bound to service.
func NewSaveOverrideHandler(service seo.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveOverrideCommand]) *SaveOverrideHandler {
	exec := func(ctx context.Context, msg SaveOverrideCommand) error {
		err := service.Persist(ctx, msg.Path, msg.Config)
		var malformed *seo.MalformedInputError
		if errors.As(err, &malformed) || errors.Is(err, seo.ErrPathRequired) {
			return commands.WrapValidation(err)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[SaveOverrideCommand]{
		commands.WithLogger[SaveOverrideCommand](logger),
		commands.WithOperation[SaveOverrideCommand](saveOperation),
		commands.WithMessageFields(func(msg SaveOverrideCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
	}
	return &SaveOverrideHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[SaveOverrideCommand].
func (h *SaveOverrideHandler) Execute(ctx context.Context, msg SaveOverrideCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteOverrideHandler removes SEO overrides.
type DeleteOverrideHandler struct {
	inner *commands.Handler[DeleteOverrideCommand]
}

// NewDeleteOverrideHandler creates a handler bound to service.
func NewDeleteOverrideHandler(service seo.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteOverrideCommand]) *DeleteOverrideHandler {
	exec := func(ctx context.Context, msg DeleteOverrideCommand) error {
		return service.DeleteOverride(ctx, msg.Path)
	}

	handlerOpts := []commands.HandlerOption[DeleteOverrideCommand]{
		commands.WithLogger[DeleteOverrideCommand](logger),
		commands.WithOperation[DeleteOverrideCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteOverrideCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
	}
	return &DeleteOverrideHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[DeleteOverrideCommand].
func (h *DeleteOverrideHandler) Execute(ctx context.Context, msg DeleteOverrideCommand) error {
	return h.inner.Execute(ctx, msg)
}

// HandlerSet groups the SEO command handlers.
type HandlerSet struct {
	Save   *SaveOverrideHandler
	Delete *DeleteOverrideHandler
}

// NewHandlerSet builds every SEO handler over service.
func NewHandlerSet(service seo.Service, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("seo commands: service is nil")
	}
	logger := commands.CommandLogger(provider, "seo")
	return &HandlerSet{
		Save:   NewSaveOverrideHandler(service, logger),
		Delete: NewDeleteOverrideHandler(service, logger),
	}, nil
}
