package settings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

func TestMemoryStore_CRUDEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exerciseStore(t, ctx, settings.NewMemoryStore())
}

func TestMemoryStore_SubscribeClosesOnCancel(t *testing.T) {
	store := settings.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	events, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription did not close after cancel")
	}
}

func TestSEOKeyRoundTrip(t *testing.T) {
	key := settings.SEOKey("/services/seo")
	if key != "seo_/services/seo" {
		t.Fatalf("unexpected key %q", key)
	}
	path, ok := settings.PathFromSEOKey(key)
	if !ok || path != "/services/seo" {
		t.Fatalf("PathFromSEOKey(%q) = %q, %v", key, path, ok)
	}
	if _, ok := settings.PathFromSEOKey(settings.InjectionKey); ok {
		t.Fatal("expected injection key not to parse as an SEO key")
	}
}

// exerciseStore runs the shared ConfigStore contract against store.
func exerciseStore(t *testing.T, ctx context.Context, store interfaces.ConfigStore) {
	t.Helper()

	if _, err := store.Get(ctx, "seo_/contact"); !errors.Is(err, settings.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "seo_/contact"); !errors.Is(err, settings.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound on delete, got %v", err)
	}

	events, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := store.Set(ctx, "seo_/contact", `{"title":"Contact"}`); err != nil {
		t.Fatalf("Set() create error = %v", err)
	}
	assertEvent(t, events, interfaces.ConfigCreated, "seo_/contact")

	if err := store.Set(ctx, "seo_/contact", `{"title":"Talk to us"}`); err != nil {
		t.Fatalf("Set() update error = %v", err)
	}
	assertEvent(t, events, interfaces.ConfigUpdated, "seo_/contact")

	if err := store.Set(ctx, "seo_/contact", `{"title":"Talk to us"}`); err != nil {
		t.Fatalf("Set() same value error = %v", err)
	}
	assertNoEvent(t, events)

	got, err := store.Get(ctx, "seo_/contact")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != `{"title":"Talk to us"}` {
		t.Fatalf("Get() = %q", got)
	}

	for _, key := range []string{"seo_/about", "codeInjectionSettings", "seoX"} {
		if err := store.Set(ctx, key, "{}"); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
		<-events
	}

	keys, err := store.Keys(ctx, settings.SEOKeyPrefix)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if diff := cmp.Diff([]string{"seo_/about", "seo_/contact"}, keys); diff != "" {
		t.Fatalf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, "seo_/contact"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, interfaces.ConfigDeleted, "seo_/contact")

	if _, err := store.Get(ctx, "seo_/contact"); !errors.Is(err, settings.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func assertEvent(t *testing.T, events <-chan interfaces.ConfigChange, want interfaces.ConfigChangeType, key string) {
	t.Helper()
	select {
	case evt := <-events:
		if evt.Type != want || evt.Key != key {
			t.Fatalf("expected %s %s, got %s %s", want, key, evt.Type, evt.Key)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected event %s, got none", want)
	}
}

func assertNoEvent(t *testing.T, events <-chan interfaces.ConfigChange) {
	t.Helper()
	select {
	case evt := <-events:
		t.Fatalf("expected no event, got %s %s", evt.Type, evt.Key)
	default:
	}
}
