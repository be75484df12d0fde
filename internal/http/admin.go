package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tapdev/tapdev-site/internal/auth"
	"github.com/tapdev/tapdev-site/internal/collections"
	"github.com/tapdev/tapdev-site/internal/commands/injectioncmd"
	"github.com/tapdev/tapdev-site/internal/commands/seocmd"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// AdminAPI registers the admin endpoints.
type AdminAPI struct {
	basePath      string
	authenticator auth.Authenticator
	sessions      *auth.Sessions
	seo           seo.Service
	seoCommands   *seocmd.HandlerSet
	injection     injection.Service
	injectionCmds *injectioncmd.HandlerSet
	collections   collections.Service
	preview       *previewSource
	logger        interfaces.Logger
	provider      interfaces.LoggerProvider
	secureCookie  bool
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	if api.sessions == nil {
		api.sessions = auth.NewSessions(0)
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithAuth wires the credential check and the session table.
func WithAuth(authenticator auth.Authenticator, sessions *auth.Sessions) AdminOption {
	return func(api *AdminAPI) {
		api.authenticator = authenticator
		if sessions != nil {
			api.sessions = sessions
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) AdminOption {
	return func(api *AdminAPI) {
		api.secureCookie = secure
	}
}

// WithSEOService wires the SEO service.
func WithSEOService(service seo.Service) AdminOption {
	return func(api *AdminAPI) {
		api.seo = service
	}
}

// WithInjectionService wires the code injection service.
func WithInjectionService(service injection.Service) AdminOption {
	return func(api *AdminAPI) {
		api.injection = service
	}
}

// WithCollectionsService wires the collections service.
func WithCollectionsService(service collections.Service) AdminOption {
	return func(api *AdminAPI) {
		api.collections = service
	}
}

// WithLoggerProvider sets the provider used for the API and command loggers.
func WithLoggerProvider(provider interfaces.LoggerProvider) AdminOption {
	return func(api *AdminAPI) {
		api.provider = provider
		api.logger = logging.HTTPLogger(provider)
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}
	if api.seo != nil {
		set, err := seocmd.NewHandlerSet(api.seo, api.provider)
		if err != nil {
			return err
		}
		api.seoCommands = set
	}
	if api.injection != nil {
		set, err := injectioncmd.NewHandlerSet(api.injection, api.provider)
		if err != nil {
			return err
		}
		api.injectionCmds = set
	}

	base := joinPath(api.basePath, "")
	guard := auth.Middleware(api.sessions, func(w http.ResponseWriter, _ *http.Request, err error) {
		writeError(w, err)
	})
	protect := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, guard(handler))
	}

	api.registerSessionRoutes(mux, protect, base)
	api.registerSEORoutes(protect, base)
	api.registerInjectionRoutes(protect, base)
	api.registerCollectionRoutes(protect, base)
	api.registerPreviewRoutes(protect, base)
	return nil
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}
