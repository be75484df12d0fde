package site

import "github.com/tapdev/tapdev-site/internal/runtimeconfig"

var (
	ErrSiteBaseURLInvalid       = runtimeconfig.ErrSiteBaseURLInvalid
	ErrStorageProviderUnknown   = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown     = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired       = runtimeconfig.ErrStorageDSNRequired
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrAdminBasePathInvalid     = runtimeconfig.ErrAdminBasePathInvalid
	ErrAdminUserInvalid         = runtimeconfig.ErrAdminUserInvalid
	ErrAdminSessionTTLInvalid   = runtimeconfig.ErrAdminSessionTTLInvalid
	ErrLivePreviewRequiresAdmin = runtimeconfig.ErrLivePreviewRequiresAdmin
	ErrHTTPAddrRequired         = runtimeconfig.ErrHTTPAddrRequired
)

type (
	Config         = runtimeconfig.Config
	SiteConfig     = runtimeconfig.SiteConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
	AdminConfig    = runtimeconfig.AdminConfig
	AdminUser      = runtimeconfig.AdminUser
	HTTPConfig     = runtimeconfig.HTTPConfig
	BrowserConfig  = runtimeconfig.BrowserConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
