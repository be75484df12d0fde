package seocmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tapdev/tapdev-site/internal/seo"
)

const (
	saveOverrideMessageType   = "site.seo.save_override"
	deleteOverrideMessageType = "site.seo.delete_override"
)

var pathRule = validation.By(func(value any) error {
	path, _ := value.(string)
	if !strings.HasPrefix(strings.TrimSpace(path), "/") {
		return validation.NewError("site.seo.path_invalid", "path must start with /")
	}
	return nil
})

// SaveOverrideCommand replaces the stored SEO override for Path.
type SaveOverrideCommand struct {
	Path   string            `json:"path"`
	Config seo.Configuration `json:"config"`
}

// Type implements command.Message.
func (SaveOverrideCommand) Type() string { return saveOverrideMessageType }

// Validate checks the path and the override fields before handlers run.
func (cmd SaveOverrideCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, pathRule),
		validation.Field(&cmd.Config, validation.By(func(any) error {
			return cmd.Config.Validate()
		})),
	)
}

// DeleteOverrideCommand removes the stored SEO override for Path.
type DeleteOverrideCommand struct {
	Path string `json:"path"`
}

// Type implements command.Message.
func (DeleteOverrideCommand) Type() string { return deleteOverrideMessageType }

func (cmd DeleteOverrideCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, pathRule),
	)
}
