// Package web serves the public TapDev site. Every page goes through the
// same pipeline: template, parsed document, SEO, code injection, render.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tapdev/tapdev-site/internal/collections"
	"github.com/tapdev/tapdev-site/internal/document"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/internal/runtimeconfig"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	ErrSEORequired         = errors.New("web: seo service is required")
	ErrCollectionsRequired = errors.New("web: collections service is required")
)

var pageTemplates = []string{"home", "services", "service", "portfolio", "blog", "post", "contact", "page", "notfound"}

// Options configures a Site.
type Options struct {
	Config      runtimeconfig.SiteConfig
	SEO         seo.Service
	Collections collections.Service
	// Injection is optional; without it pages carry no injected code.
	Injection      injection.Service
	LoggerProvider interfaces.LoggerProvider
	// RequestTimeout bounds each request. Zero keeps the default.
	RequestTimeout time.Duration
}

// Site renders the public pages.
type Site struct {
	cfg         runtimeconfig.SiteConfig
	seo         seo.Service
	collections collections.Service
	injection   injection.Service
	logger      interfaces.Logger
	templates   map[string]*template.Template
	timeout     time.Duration
	now         func() time.Time
}

// New parses the page templates and returns a Site.
func New(opts Options) (*Site, error) {
	if opts.SEO == nil {
		return nil, ErrSEORequired
	}
	if opts.Collections == nil {
		return nil, ErrCollectionsRequired
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Site{
		cfg:         opts.Config,
		seo:         opts.SEO,
		collections: opts.Collections,
		injection:   opts.Injection,
		logger:      logging.WebLogger(opts.LoggerProvider),
		templates:   templates,
		timeout:     timeout,
		now:         time.Now,
	}, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"join": strings.Join,
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
		"rfc3339": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s template: %w", name, err)
		}
		out[name] = tmpl
	}
	return out, nil
}

// Handler returns the chi router for the public site.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Post("/contact", s.handleContact)
	r.Post("/newsletter", s.handleNewsletter)
	r.Get("/*", s.handlePage)
	return r
}

func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	path := cleanPath(r.URL.Path)
	p, err := s.resolve(r.Context(), path, r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, r, path, p)
}

// RenderDocument builds the page at path with its SEO applied and no
// injected code. It backs the admin live preview.
func (s *Site) RenderDocument(ctx context.Context, path string) (*document.HTMLDocument, error) {
	path = cleanPath(path)
	p, err := s.resolve(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, path, p)
}

// build runs the template and SEO stages of the pipeline.
func (s *Site) build(ctx context.Context, path string, p page) (*document.HTMLDocument, error) {
	tmpl, ok := s.templates[p.template]
	if !ok {
		return nil, fmt.Errorf("web: unknown template %q", p.template)
	}
	p.data.Site = s.cfg
	p.data.Path = path
	p.data.Nav = navigation()
	p.data.Year = s.now().Year()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p.data); err != nil {
		return nil, fmt.Errorf("web: execute %s: %w", p.template, err)
	}
	doc, err := document.Parse(&buf, s.absoluteURL(path))
	if err != nil {
		return nil, err
	}

	cfg := s.seo.Resolve(ctx, path)
	if p.meta != nil {
		// Content-derived metadata sits between page defaults and the
		// stored override.
		override, _, err := s.seo.Override(ctx, path)
		if err != nil {
			override = seo.Configuration{}
		}
		cfg = seo.Merge(seo.Merge(cfg, *p.meta), override)
	}
	if err := s.seo.Apply(ctx, doc, cfg); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Site) write(w http.ResponseWriter, r *http.Request, path string, p page) {
	ctx := r.Context()
	doc, err := s.build(ctx, path, p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.injection != nil {
		if err := s.injection.ApplyPersisted(ctx, doc); err != nil {
			s.logger.WithContext(ctx).Warn("web.injection.apply_failed", "path", path, "error", err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	status := p.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Site) fail(w http.ResponseWriter, r *http.Request, err error) {
	if collections.IsNotFound(err) {
		s.write(w, r, cleanPath(r.URL.Path), notFoundPage())
		return
	}
	logging.WithRequest(s.logger.WithContext(r.Context()), r.URL.Path, middleware.GetReqID(r.Context())).
		Error("web.render.failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Site) absoluteURL(path string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base == "" {
		return ""
	}
	return base + path
}

func (s *Site) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := s.now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.WithRequest(s.logger.WithContext(r.Context()), r.URL.Path, middleware.GetReqID(r.Context())).
			Info("web.request",
				"method", r.Method,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", s.now().Sub(started).Milliseconds(),
			)
	})
}

// cleanPath drops a trailing slash so /blog/ and /blog share SEO settings.
func cleanPath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
