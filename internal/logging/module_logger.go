package logging

import (
	"context"
	"strings"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const (
	rootModule        = "site"
	seoModule         = "site.seo"
	injectionModule   = "site.injection"
	settingsModule    = "site.settings"
	collectionsModule = "site.collections"
	httpModule        = "site.http"
	webModule         = "site.web"
	authModule        = "site.auth"
)

const (
	fieldPath    = "path"
	fieldRequest = "request_id"
)

// ModuleLogger returns the provider's logger for module annotated with a
// "module" field. A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

func SEOLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, seoModule)
}

func InjectionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, injectionModule)
}

func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

func CollectionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, collectionsModule)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

func WebLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, webModule)
}

func AuthLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, authModule)
}

// WithRequest annotates logger with the page path and request id of an
// incoming request. Empty values are skipped.
func WithRequest(logger interfaces.Logger, path, requestID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPath] = trimmed
	}
	if trimmed := strings.TrimSpace(requestID); trimmed != "" {
		fields[fieldRequest] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
