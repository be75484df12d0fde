package site_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	site "github.com/tapdev/tapdev-site"
	"github.com/tapdev/tapdev-site/internal/document"
	"github.com/tapdev/tapdev-site/internal/settings"
)

func testConfig(t *testing.T) site.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := site.DefaultConfig()
	cfg.Site.BaseURL = "https://tapdev.com"
	cfg.Features.Logger = false
	cfg.Admin.Users = []site.AdminUser{{Username: "admin", PasswordHash: string(hash)}}
	return cfg
}

func request(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := site.DefaultConfig()
	cfg.HTTP.Addr = ""
	if _, err := site.New(cfg); !errors.Is(err, site.ErrHTTPAddrRequired) {
		t.Fatalf("expected ErrHTTPAddrRequired, got %v", err)
	}
}

func TestModuleServesPublicSiteAndAdmin(t *testing.T) {
	m, err := site.New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	h := m.Handler()

	if rec := request(t, h, http.MethodGet, "/", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("home: expected 200, got %d", rec.Code)
	}
	if rec := request(t, h, http.MethodGet, "/admin/api/routes", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin without session: expected 401, got %d", rec.Code)
	}

	rec := request(t, h, http.MethodPost, "/admin/api/login", "", map[string]string{"username": "admin", "password": "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	rec = request(t, h, http.MethodPut, "/admin/api/seo/override?path=/contact", login.Token, map[string]any{"title": "Talk to TapDev"})
	if rec.Code != http.StatusOK {
		t.Fatalf("save override: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = request(t, h, http.MethodGet, "/contact", "", nil)
	doc, err := document.ParseString(rec.Body.String(), "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doc.Find("title").Text(); got != "Talk to TapDev" {
		t.Fatalf("expected saved override on the public page, got %q", got)
	}
	if got := m.SEO().Resolve(context.Background(), "/contact").Title; got != "Talk to TapDev" {
		t.Fatalf("unexpected resolved title %q", got)
	}
}

func TestModuleWithoutAdmin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Features.Admin = false
	cfg.Features.Injection = false
	m, err := site.New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if m.AdminHandler() != nil {
		t.Fatalf("expected no admin handler")
	}
	if m.Injection() != nil {
		t.Fatalf("expected injection to be disabled")
	}
	if rec := request(t, m.Handler(), http.MethodGet, "/admin/api/routes", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected public 404 for admin path, got %d", rec.Code)
	}
	if len(m.Routes()) == 0 || m.Routes()[0].Path != "/" {
		t.Fatalf("unexpected routes %v", m.Routes())
	}
}

func TestModuleWithSQLiteStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = site.StorageConfig{
		Provider: "bun",
		Driver:   "sqlite",
		DSN:      "file:site_module_test?mode=memory&cache=shared&_fk=1",
		Seed:     true,
	}
	m, err := site.New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	posts, err := m.Collections().PublishedPosts(ctx, 0)
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if len(posts) == 0 {
		t.Fatalf("expected seeded posts")
	}

	if err := m.Injection().Update(ctx, site.InjectionSettings{Enabled: true, FacebookPixel: "123456"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.Injection().Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := m.Store().Get(ctx, settings.InjectionKey)
	if err != nil {
		t.Fatalf("get persisted: %v", err)
	}
	if !strings.Contains(raw, `"facebookPixel":"123456"`) {
		t.Fatalf("unexpected persisted settings %s", raw)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	m, err := site.New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watch did not stop")
	}
}
