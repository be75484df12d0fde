package injectioncmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/tapdev/tapdev-site/internal/commands"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const (
	updateDraftOperation = "injection.update_draft"
	saveOperation        = "injection.save"
)

var (
	_ command.Commander[UpdateDraftCommand] = (*UpdateDraftHandler)(nil)
	_ command.Commander[SaveCommand]        = (*SaveHandler)(nil)
)

// UpdateDraftHandler pushes a new draft into the injection service.
type UpdateDraftHandler struct {
	inner *commands.Handler[UpdateDraftCommand]
}

// NewUpdateDraftHandler creates a handler bound to service.
func NewUpdateDraftHandler(service injection.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateDraftCommand]) *UpdateDraftHandler {
	exec := func(ctx context.Context, msg UpdateDraftCommand) error {
		return service.Update(ctx, msg.Config)
	}
	handlerOpts := []commands.HandlerOption[UpdateDraftCommand]{
		commands.WithLogger[UpdateDraftCommand](logger),
		commands.WithOperation[UpdateDraftCommand](updateDraftOperation),
		commands.WithMessageFields(func(msg UpdateDraftCommand) map[string]any {
			return map[string]any{"enabled": msg.Config.Enabled}
		}),
	}
	return &UpdateDraftHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[UpdateDraftCommand].
func (h *UpdateDraftHandler) Execute(ctx context.Context, msg UpdateDraftCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveHandler persists the injection draft.
type SaveHandler struct {
	inner *commands.Handler[SaveCommand]
}

// NewSaveHandler creates a handler bound to service.
func NewSaveHandler(service injection.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveCommand]) *SaveHandler {
	exec := func(ctx context.Context, _ SaveCommand) error {
		return service.Save(ctx)
	}
	handlerOpts := []commands.HandlerOption[SaveCommand]{
		commands.WithLogger[SaveCommand](logger),
		commands.WithOperation[SaveCommand](saveOperation),
	}
	return &SaveHandler{
		inner: commands.NewHandler(exec, append(handlerOpts, opts...)...),
	}
}

// Execute satisfies command.Commander[SaveCommand].
func (h *SaveHandler) Execute(ctx context.Context, msg SaveCommand) error {
	return h.inner.Execute(ctx, msg)
}

// HandlerSet groups the injection command handlers.
type HandlerSet struct {
	UpdateDraft *UpdateDraftHandler
	Save        *SaveHandler
}

// NewHandlerSet builds every injection handler over service.
func NewHandlerSet(service injection.Service, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("injection commands: service is nil")
	}
	logger := commands.CommandLogger(provider, "injection")
	return &HandlerSet{
		UpdateDraft: NewUpdateDraftHandler(service, logger),
		Save:        NewSaveHandler(service, logger),
	}, nil
}
