package injectioncmd

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tapdev/tapdev-site/internal/injection"
)

const (
	updateDraftMessageType = "site.injection.update_draft"
	saveMessageType        = "site.injection.save"
)

var (
	trackingIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	pixelIDPattern    = regexp.MustCompile(`^[0-9]+$`)
)

// UpdateDraftCommand replaces the editor draft and re-applies it to every
// attached document. Nothing is persisted.
type UpdateDraftCommand struct {
	Config injection.Configuration `json:"config"`
}

// Type implements command.Message.
func (UpdateDraftCommand) Type() string { return updateDraftMessageType }

// Validate checks the tracking IDs. Free-form code fields are trusted.
func (cmd UpdateDraftCommand) Validate() error {
	cfg := cmd.Config
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.GoogleAnalytics, validation.Match(trackingIDPattern)),
		validation.Field(&cfg.GoogleTagManager, validation.Match(trackingIDPattern)),
		validation.Field(&cfg.FacebookPixel, validation.Match(pixelIDPattern)),
	)
}

// SaveCommand persists the current draft.
type SaveCommand struct{}

// Type implements command.Message.
func (SaveCommand) Type() string { return saveMessageType }

func (SaveCommand) Validate() error { return nil }
