package site

import (
	"os"
	"strings"

	"github.com/tapdev/tapdev-site/internal/logging/console"
	"github.com/tapdev/tapdev-site/internal/logging/gologger"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// newLoggerProvider builds the provider named by cfg.Logging. A nil provider
// means module loggers fall back to no-ops.
func newLoggerProvider(cfg Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		level := console.ParseLevel(cfg.Logging.Level)
		return console.NewProvider(console.Options{Writer: os.Stderr, MinLevel: &level}), nil
	}
}
