package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrConfigNotFound is returned by ConfigStore implementations for missing keys.
var ErrConfigNotFound = errors.New("config store: key not found")

// ConfigStore is the persisted key/value store backing SEO overrides and
// injection settings. Values are opaque strings, JSON by convention.
type ConfigStore interface {
	// Get returns the stored value or ErrConfigNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key, returning ErrConfigNotFound when it was never set.
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Subscribe delivers change events until ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan ConfigChange, error)
}

// ConfigChangeType enumerates store mutations.
type ConfigChangeType string

const (
	ConfigCreated ConfigChangeType = "created"
	ConfigUpdated ConfigChangeType = "updated"
	ConfigDeleted ConfigChangeType = "deleted"
)

// ConfigChange reports a single key mutation.
type ConfigChange struct {
	Type ConfigChangeType
	Key  string
	At   time.Time
}
