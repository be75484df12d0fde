package seo_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tapdev/tapdev-site/internal/seo"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

func TestResolveUsesPageDefaults(t *testing.T) {
	svc := seo.NewService(settings.NewMemoryStore())
	got := svc.Resolve(context.Background(), "/contact")
	if got.Title != "Contact TapDev" {
		t.Fatalf("expected page default title, got %q", got.Title)
	}
	if got.Robots != seo.GlobalDefaults().Robots {
		t.Fatalf("expected global robots to survive, got %q", got.Robots)
	}
}

func TestResolveOverrideKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	svc := seo.NewService(settings.NewMemoryStore())
	if err := svc.Persist(ctx, "/portfolio", seo.Configuration{OGImage: "https://x/img.jpg"}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	got := svc.Resolve(ctx, "/portfolio")
	if got.OGImage != "https://x/img.jpg" {
		t.Fatalf("expected override og image, got %q", got.OGImage)
	}
	page, _ := seo.PageDefaults("/portfolio")
	if got.Title != page.Title {
		t.Fatalf("expected page title %q, got %q", page.Title, got.Title)
	}
}

func TestResolveFallsBackOnCorruptOverride(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	if err := store.Set(ctx, settings.SEOKey("/about"), "{bad json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := seo.NewService(store)

	want := seo.Merge(seo.GlobalDefaults(), mustPageDefaults(t, "/about"))
	if diff := cmp.Diff(want, svc.Resolve(ctx, "/about")); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := svc.Override(ctx, "/about"); !errors.Is(err, seo.ErrMalformedPersistedData) {
		t.Fatalf("expected ErrMalformedPersistedData, got %v", err)
	}
}

func TestResolveUnregisteredPathEqualsGlobalDefaults(t *testing.T) {
	svc := seo.NewService(settings.NewMemoryStore())
	if diff := cmp.Diff(seo.GlobalDefaults(), svc.Resolve(context.Background(), "/nowhere")); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolvePrecedence(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	global := seo.Configuration{Title: "G", Description: "global", Keywords: "k"}
	page := seo.Configuration{Title: "P", Description: "page"}
	svc := seo.NewService(store,
		seo.WithGlobalDefaults(global),
		seo.WithPageDefaults(func(path string) (seo.Configuration, bool) {
			return page, path == "/x"
		}),
	)
	if err := svc.Persist(ctx, "/x", seo.Configuration{Title: "O"}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	want := seo.Configuration{Title: "O", Description: "page", Keywords: "k"}
	if diff := cmp.Diff(want, svc.Resolve(ctx, "/x")); diff != "" {
		t.Fatalf("resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveTreatsEmptyOverrideFieldsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	if err := store.Set(ctx, settings.SEOKey("/contact"), `{"title":"","description":"Reach us"}`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got := seo.NewService(store).Resolve(ctx, "/contact")
	if got.Title != "Contact TapDev" || got.Description != "Reach us" {
		t.Fatalf("unexpected resolution %+v", got)
	}
}

func TestResolveStoreFailureFallsBack(t *testing.T) {
	svc := seo.NewService(failingStore{})
	if got := svc.Resolve(context.Background(), "/contact"); got.Title != "Contact TapDev" {
		t.Fatalf("expected fallback title, got %q", got.Title)
	}
}

func TestPersistRejectsMalformedInput(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	svc := seo.NewService(store)

	cases := map[string]seo.Configuration{
		"structured data": {StructuredData: map[string]any{"rating": math.Inf(1)}},
		"custom meta":     {CustomMeta: []seo.CustomMeta{{Name: "a", Property: "b", Content: "c"}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Persist(ctx, "/about", cfg)
			var malformed *seo.MalformedInputError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedInputError, got %v", err)
			}
			if _, err := store.Get(ctx, settings.SEOKey("/about")); !errors.Is(err, settings.ErrKeyNotFound) {
				t.Fatalf("expected nothing written, got %v", err)
			}
		})
	}

	if err := svc.Persist(ctx, "", seo.Configuration{Title: "x"}); !errors.Is(err, seo.ErrPathRequired) {
		t.Fatalf("expected ErrPathRequired, got %v", err)
	}
}

func TestPersistOverwritesWholeOverride(t *testing.T) {
	ctx := context.Background()
	svc := seo.NewService(settings.NewMemoryStore())
	if err := svc.Persist(ctx, "/faq", seo.Configuration{Title: "A", Keywords: "k"}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := svc.Persist(ctx, "/faq", seo.Configuration{Description: "B"}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	got, ok, err := svc.Override(ctx, "/faq")
	if err != nil || !ok {
		t.Fatalf("override: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(seo.Configuration{Description: "B"}, got); diff != "" {
		t.Fatalf("override mismatch (-want +got):\n%s", diff)
	}
}

func TestOverridesAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := seo.NewService(settings.NewMemoryStore())
	for _, path := range []string{"/pricing", "/about"} {
		if err := svc.Persist(ctx, path, seo.Configuration{Title: path}); err != nil {
			t.Fatalf("persist %s: %v", path, err)
		}
	}
	paths, err := svc.Overrides(ctx)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if diff := cmp.Diff([]string{"/about", "/pricing"}, paths); diff != "" {
		t.Fatalf("overrides mismatch (-want +got):\n%s", diff)
	}

	if err := svc.DeleteOverride(ctx, "/about"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteOverride(ctx, "/about"); err != nil {
		t.Fatalf("delete missing should succeed: %v", err)
	}
	if _, ok, _ := svc.Override(ctx, "/about"); ok {
		t.Fatalf("expected override to be gone")
	}
}

func TestCustomMetaRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	svc := seo.NewService(store)
	cfg := seo.Configuration{
		CustomMeta: []seo.CustomMeta{
			{Name: "google-site-verification", Content: "abc"},
			{Property: "fb:app_id", Content: "42"},
		},
		StructuredData: map[string]any{"@type": "WebPage", "name": "Pricing"},
	}
	if err := svc.Persist(ctx, "/pricing", cfg); err != nil {
		t.Fatalf("persist: %v", err)
	}
	got, ok, err := svc.Override(ctx, "/pricing")
	if err != nil || !ok {
		t.Fatalf("override: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomMetaRoundTripDropsBlankKey(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()
	svc := seo.NewService(store)
	cfg := seo.Configuration{
		CustomMeta: []seo.CustomMeta{{Name: " ", Property: "og:locale", Content: "en"}},
	}
	if err := svc.Persist(ctx, "/about", cfg); err != nil {
		t.Fatalf("persist: %v", err)
	}

	raw, err := store.Get(ctx, settings.SEOKey("/about"))
	if err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if strings.Contains(raw, `"name"`) {
		t.Fatalf("expected blank name to be omitted, got %s", raw)
	}

	got, ok, err := svc.Override(ctx, "/about")
	if err != nil || !ok {
		t.Fatalf("override: ok=%v err=%v", ok, err)
	}
	want := []seo.CustomMeta{{Property: "og:locale", Content: "en"}}
	if diff := cmp.Diff(want, got.CustomMeta); diff != "" {
		t.Fatalf("custom meta mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomMetaJSONRejectsBothKeys(t *testing.T) {
	var meta seo.CustomMeta
	err := json.Unmarshal([]byte(`{"name":"a","property":"b","content":"c"}`), &meta)
	if !errors.Is(err, seo.ErrCustomMetaInvalid) {
		t.Fatalf("expected ErrCustomMetaInvalid, got %v", err)
	}
	if _, err := json.Marshal(seo.CustomMeta{Content: "orphan"}); err == nil {
		t.Fatalf("expected marshal error for entry without key")
	}
}

func mustPageDefaults(t *testing.T, path string) seo.Configuration {
	t.Helper()
	cfg, ok := seo.PageDefaults(path)
	if !ok {
		t.Fatalf("no page defaults for %s", path)
	}
	return cfg
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("store offline")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("store offline")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store offline")
}

func (failingStore) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("store offline")
}

func (failingStore) Subscribe(context.Context) (<-chan interfaces.ConfigChange, error) {
	return nil, errors.New("store offline")
}
