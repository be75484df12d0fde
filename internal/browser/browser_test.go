package browser_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tapdev/tapdev-site/internal/browser"
	"github.com/tapdev/tapdev-site/internal/injection"
	"github.com/tapdev/tapdev-site/internal/runtimeconfig"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

const testPage = `<!DOCTYPE html><html><head><title>Old</title></head><body><h1>Hi</h1></body></html>`

// openPage needs SITE_ROD_URL (a running Chrome) or SITE_ROD_BIN.
func openPage(t *testing.T) *browser.Page {
	t.Helper()
	cfg := runtimeconfig.BrowserConfig{
		ControlURL: os.Getenv("SITE_ROD_URL"),
		Bin:        os.Getenv("SITE_ROD_BIN"),
		Headless:   true,
		Timeout:    20 * time.Second,
	}
	if cfg.ControlURL == "" && cfg.Bin == "" {
		t.Skip("set SITE_ROD_URL or SITE_ROD_BIN to run browser tests")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testPage))
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	b, err := browser.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })

	page, err := b.Open(ctx, srv.URL+"/contact")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = page.Close() })
	return page
}

func TestPageSynchronizesSEOAndInjection(t *testing.T) {
	page := openPage(t)
	ctx := context.Background()

	svc := seo.NewService(settings.NewMemoryStore())
	cfg, err := svc.SyncPath(ctx, page, "/contact")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	// A second pass must not duplicate tags.
	if _, err := svc.SyncPath(ctx, page, "/contact"); err != nil {
		t.Fatalf("resync: %v", err)
	}

	head, err := page.HeadHTML(ctx)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if !strings.Contains(head, "<title>"+cfg.Title+"</title>") {
		t.Fatalf("title not applied:\n%s", head)
	}
	if n := strings.Count(head, `name="description"`); n != 1 {
		t.Fatalf("expected one description tag, got %d", n)
	}

	engine := injection.NewEngine(page)
	if err := engine.Reapply(ctx, injection.Configuration{Enabled: true, GoogleTagManager: "GTM-ABC"}); err != nil {
		t.Fatalf("inject: %v", err)
	}
	count, err := page.CountTagged(ctx, injection.MarkerAttribute)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected GTM script and noscript, counted %d", count)
	}
	removed, err := page.RemoveAllTagged(ctx, injection.MarkerAttribute)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected GTM script and noscript, removed %d", removed)
	}
}

func TestLocalStorageStore(t *testing.T) {
	page := openPage(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store := browser.NewLocalStorage(page, browser.WithPollInterval(50*time.Millisecond))
	if _, err := store.Get(ctx, "seo_/contact"); !errors.Is(err, interfaces.ErrConfigNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	events, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := store.Set(ctx, "seo_/contact", `{"title":"Hi"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	select {
	case evt := <-events:
		if evt.Key != "seo_/contact" || evt.Type != interfaces.ConfigCreated {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for change event")
	}

	keys, err := store.Keys(ctx, settings.SEOKeyPrefix)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "seo_/contact" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := store.Delete(ctx, "seo_/contact"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "seo_/contact"); !errors.Is(err, interfaces.ErrConfigNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
