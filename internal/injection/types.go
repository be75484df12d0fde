package injection

import "errors"

// MarkerAttribute tags every node the engine creates. Its value names the
// slot that produced the node.
const MarkerAttribute = "data-code-injection"

// Slot names, in application order.
const (
	SlotGALoader    = "ga-loader"
	SlotGAInit      = "ga-init"
	SlotGTM         = "gtm"
	SlotGTMNoscript = "gtm-noscript"
	SlotFBPixel     = "fb-pixel"
	SlotCustomCSS   = "custom-css"
	SlotCustomJS    = "custom-js"
	SlotHeader      = "header"
	SlotFooter      = "footer"
)

// ErrDocumentRequired is returned when an engine has no document.
var ErrDocumentRequired = errors.New("injection: document is required")

// TrustedHTML is admin-authored markup inserted without sanitization.
type TrustedHTML string

// TrustedScript is admin-authored JavaScript inserted without sanitization.
type TrustedScript string

// TrustedCSS is admin-authored CSS inserted without sanitization.
type TrustedCSS string

// Configuration is the site-wide code injection setting. Tracking IDs are
// plain strings and are escaped where they are embedded.
type Configuration struct {
	Enabled          bool          `json:"enabled"`
	HeaderCode       TrustedHTML   `json:"headerCode"`
	FooterCode       TrustedHTML   `json:"footerCode"`
	GoogleAnalytics  string        `json:"googleAnalytics"`
	GoogleTagManager string        `json:"googleTagManager"`
	FacebookPixel    string        `json:"facebookPixel"`
	CustomCSS        TrustedCSS    `json:"customCSS"`
	CustomJS         TrustedScript `json:"customJS"`
}

// State reports whether an engine has injected nodes into its document.
type State int

const (
	StateClean State = iota
	StateApplied
)

func (s State) String() string {
	if s == StateApplied {
		return "applied"
	}
	return "clean"
}
