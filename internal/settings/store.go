package settings

import (
	"strings"
	"time"

	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// ErrKeyNotFound reports a missing key.
var ErrKeyNotFound = interfaces.ErrConfigNotFound

const (
	// SEOKeyPrefix prefixes per-path SEO overrides.
	SEOKeyPrefix = "seo_"
	// InjectionKey holds the global injection configuration.
	InjectionKey = "codeInjectionSettings"
)

// SEOKey returns the store key holding the override for path.
func SEOKey(path string) string {
	return SEOKeyPrefix + path
}

// PathFromSEOKey reverses SEOKey.
func PathFromSEOKey(key string) (string, bool) {
	return strings.CutPrefix(key, SEOKeyPrefix)
}

func newChange(changeType interfaces.ConfigChangeType, key string, at time.Time) interfaces.ConfigChange {
	return interfaces.ConfigChange{Type: changeType, Key: key, At: at}
}
