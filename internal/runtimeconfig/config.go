package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrSiteBaseURLInvalid       = errors.New("site config: base url must be absolute")
	ErrStorageProviderUnknown   = errors.New("site config: storage provider is invalid")
	ErrStorageDriverUnknown     = errors.New("site config: storage driver is invalid")
	ErrStorageDSNRequired       = errors.New("site config: storage dsn is required for the bun provider")
	ErrLoggingProviderRequired  = errors.New("site config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown   = errors.New("site config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("site config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("site config: logging format is invalid")
	ErrAdminBasePathInvalid     = errors.New("site config: admin base path must start with /")
	ErrAdminUserInvalid         = errors.New("site config: admin users need a username and a password hash")
	ErrAdminSessionTTLInvalid   = errors.New("site config: admin session ttl must be positive")
	ErrLivePreviewRequiresAdmin = errors.New("site config: live preview requires the admin feature")
	ErrHTTPAddrRequired         = errors.New("site config: http address is required")
)

// Config aggregates everything the site runtime needs to boot.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Features Features       `yaml:"features"`
	Admin    AdminConfig    `yaml:"admin"`
	HTTP     HTTPConfig     `yaml:"http"`
	Browser  BrowserConfig  `yaml:"browser"`
	Markdown MarkdownConfig `yaml:"markdown"`
}

// SiteConfig carries public identity used in canonical urls and the sitemap.
type SiteConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
}

// StorageConfig selects the settings and collections backend. Provider is
// "memory" or "bun"; Driver is "sqlite" or "postgres" for bun.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Seed     bool   `yaml:"seed"`
}

// CacheConfig toggles go-repository-cache decoration of bun repositories.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles optional subsystems.
type Features struct {
	Logger      bool `yaml:"logger"`
	Injection   bool `yaml:"injection"`
	Admin       bool `yaml:"admin"`
	LivePreview bool `yaml:"live_preview"`
}

// AdminConfig configures the admin API and its credentials.
type AdminConfig struct {
	BasePath   string        `yaml:"base_path"`
	Users      []AdminUser   `yaml:"users"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// AdminUser is a single credential; PasswordHash is a bcrypt hash.
type AdminUser struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// HTTPConfig configures the listener shared by the public site and admin API.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// BrowserConfig configures the go-rod target used by the preview command.
type BrowserConfig struct {
	ControlURL string        `yaml:"control_url"`
	Bin        string        `yaml:"bin"`
	Headless   bool          `yaml:"headless"`
	Timeout    time.Duration `yaml:"timeout"`
}

// MarkdownConfig mirrors the goldmark options applied to blog and service bodies.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
}

// DefaultConfig returns a config that boots an in-memory site on :8080.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:    "TapDev",
			BaseURL: "http://localhost:8080",
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
			Seed:     true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Logger:    true,
			Injection: true,
			Admin:     true,
		},
		Admin: AdminConfig{
			BasePath:   "/admin/api",
			SessionTTL: 12 * time.Hour,
		},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless: true,
			Timeout:  30 * time.Second,
		},
	}
}

// Validate performs consistency checks across sections.
func (cfg Config) Validate() error {
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || !parsed.IsAbs() || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrSiteBaseURLInvalid, base)
		}
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", "memory":
	case "bun":
		switch driver := normalize(cfg.Storage.Driver); driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "console" && provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := normalize(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}

	if cfg.Features.LivePreview && !cfg.Features.Admin {
		return ErrLivePreviewRequiresAdmin
	}
	if cfg.Features.Admin {
		if !strings.HasPrefix(strings.TrimSpace(cfg.Admin.BasePath), "/") {
			return fmt.Errorf("%w: %q", ErrAdminBasePathInvalid, cfg.Admin.BasePath)
		}
		if cfg.Admin.SessionTTL <= 0 {
			return ErrAdminSessionTTLInvalid
		}
		for i, user := range cfg.Admin.Users {
			if strings.TrimSpace(user.Username) == "" || strings.TrimSpace(user.PasswordHash) == "" {
				return fmt.Errorf("%w: entry %d", ErrAdminUserInvalid, i)
			}
		}
	}

	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ErrHTTPAddrRequired
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
