package storage_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/tapdev/tapdev-site/internal/collections"
	"github.com/tapdev/tapdev-site/internal/runtimeconfig"
	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/internal/storage"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.StorageConfig{
		Driver: storage.DriverSQLite,
		DSN:    "file:storage_open_test?mode=memory&cache=shared&_fk=1",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for range 2 {
		if err := storage.Migrate(ctx, db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	store := settings.NewBunStore(db)
	if err := store.Set(ctx, settings.InjectionKey, `{"enabled":false}`); err != nil {
		t.Fatalf("settings table not usable: %v", err)
	}

	posts := collections.NewBunStore(db, nil, nil).BlogPosts
	if _, err := posts.List(ctx, collections.ListOptions{}); err != nil {
		t.Fatalf("blog_posts table not usable: %v", err)
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := storage.Open(ctx, runtimeconfig.StorageConfig{Driver: storage.DriverSQLite}); !errors.Is(err, storage.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
	if _, err := storage.Open(ctx, runtimeconfig.StorageConfig{Driver: "oracle", DSN: "x"}); !errors.Is(err, storage.ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
}

func TestCachedSettingsStoreSeesWrites(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.StorageConfig{
		Driver: storage.DriverSQLite,
		DSN:    "file:storage_cached_settings?mode=memory&cache=shared&_fk=1",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	store := settings.NewBunStoreWithCache(db, cacheSvc, repocache.NewDefaultKeySerializer())

	key := settings.SEOKey("/contact")
	for _, value := range []string{`{"title":"One"}`, `{"title":"Two"}`} {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != value {
			t.Fatalf("expected %s after write, got %s", value, got)
		}
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, settings.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

// recordingCache exposes only CacheService, so the decorator's optional tag
// invalidation is unavailable and freshness rests on prefix invalidation.
type recordingCache struct {
	repocache.CacheService

	mu   sync.Mutex
	keys []string
}

func (c *recordingCache) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	c.mu.Lock()
	c.keys = append(c.keys, key)
	c.mu.Unlock()
	return c.CacheService.GetOrFetch(ctx, key, fetchFn)
}

func (c *recordingCache) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

func newRecordingCache(t *testing.T) *recordingCache {
	t.Helper()
	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	svc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	return &recordingCache{CacheService: svc}
}

func assertKeysHavePrefix(t *testing.T, keys []string, prefix string) {
	t.Helper()
	if prefix == "" {
		t.Fatalf("expected a cache prefix when caching is enabled")
	}
	if len(keys) == 0 {
		t.Fatalf("expected reads to go through the cache")
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			t.Fatalf("cache key %q does not start with invalidation prefix %q", key, prefix)
		}
	}
}

func TestSettingsCachePrefixMatchesCacheKeys(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.StorageConfig{
		Driver: storage.DriverSQLite,
		DSN:    "file:storage_settings_prefix?mode=memory&cache=shared&_fk=1",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	recorder := newRecordingCache(t)
	store := settings.NewBunStoreWithCache(db, recorder, repocache.NewDefaultKeySerializer())

	key := settings.SEOKey("/a")
	for _, value := range []string{`{"title":"One"}`, `{"title":"Two"}`} {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != value {
			t.Fatalf("expected %s after write, got %s", value, got)
		}
		keys, err := store.Keys(ctx, settings.SEOKeyPrefix)
		if err != nil {
			t.Fatalf("keys: %v", err)
		}
		if len(keys) != 1 {
			t.Fatalf("expected one stored key, got %v", keys)
		}
	}

	assertKeysHavePrefix(t, recorder.recorded(), store.CachePrefix())
}

func TestCollectionsCachePrefixMatchesCacheKeys(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, runtimeconfig.StorageConfig{
		Driver: storage.DriverSQLite,
		DSN:    "file:storage_collections_prefix?mode=memory&cache=shared&_fk=1",
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	recorder := newRecordingCache(t)
	store := collections.NewBunStore(db, recorder, repocache.NewDefaultKeySerializer())
	posts, ok := store.BlogPosts.(*collections.BunRepository[*collections.BlogPost])
	if !ok {
		t.Fatalf("expected a bun repository, got %T", store.BlogPosts)
	}

	for i, slug := range []string{"first-post", "second-post"} {
		if _, err := posts.Insert(ctx, &collections.BlogPost{Title: slug, Slug: slug, Content: "Body", Author: "TapDev"}); err != nil {
			t.Fatalf("insert %s: %v", slug, err)
		}
		listed, err := posts.List(ctx, collections.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(listed) != i+1 {
			t.Fatalf("expected %d posts after insert, got %d", i+1, len(listed))
		}
	}

	assertKeysHavePrefix(t, recorder.recorded(), posts.CachePrefix())
}
