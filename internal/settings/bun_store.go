package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tapdev/tapdev-site/internal/identity"
	"github.com/tapdev/tapdev-site/internal/logging"
	"github.com/tapdev/tapdev-site/pkg/interfaces"
)

// Setting is a single persisted key/value row.
type Setting struct {
	bun.BaseModel `bun:"table:site_settings,alias:ss"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	Key       string    `bun:"key,notnull,unique"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// NewSettingRepository creates a go-repository-bun repository for Setting
// rows, addressed by key.
func NewSettingRepository(db *bun.DB) repository.Repository[*Setting] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Setting]{
		NewRecord: func() *Setting { return &Setting{} },
		GetID: func(s *Setting) uuid.UUID {
			return s.ID
		},
		SetID: func(s *Setting, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "key"
		},
		GetIdentifierValue: func(s *Setting) string {
			return s.Key
		},
	})
}

// settingNamespace matches the key namespace go-repository-cache derives
// from the Setting model.
const settingNamespace = "setting"

// BunStore persists settings in the site_settings table.
type BunStore struct {
	repo         repository.Repository[*Setting]
	broadcaster  *changeBroadcaster
	now          func() time.Time
	cacheService cache.CacheService
	cachePrefix  string
	logger       interfaces.Logger
}

// BunStoreOption configures a BunStore.
type BunStoreOption func(*BunStore)

// WithStoreLogger sets the logger used for cache invalidation failures.
func WithStoreLogger(logger interfaces.Logger) BunStoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

var _ interfaces.ConfigStore = (*BunStore)(nil)

// NewBunStore constructs a store over db. The table must exist, see
// storage.Migrate.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	return NewBunStoreWithCache(db, nil, nil, opts...)
}

// NewBunStoreWithCache reads through cacheService when both cacheService and
// serializer are set. Every write drops the cached site_settings entries.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer, opts ...BunStoreOption) *BunStore {
	store := &BunStore{
		repo:        NewSettingRepository(db),
		broadcaster: newChangeBroadcaster(),
		now:         time.Now,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if cacheService != nil && serializer != nil {
		store.repo = repositorycache.New(store.repo, cacheService, serializer)
		store.cacheService = cacheService
		store.cachePrefix = settingNamespace + cache.KeySeparator
	}
	return store
}

func (s *BunStore) Get(ctx context.Context, key string) (string, error) {
	record, err := s.find(ctx, key)
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

func (s *BunStore) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("settings: key is required")
	}
	now := s.now().UTC()

	existing, err := s.find(ctx, key)
	switch {
	case errors.Is(err, ErrKeyNotFound):
		record := &Setting{
			ID:        identity.SettingUUID(key),
			Key:       key,
			Value:     value,
			UpdatedAt: now,
		}
		if _, err := s.repo.Create(ctx, record); err != nil {
			return fmt.Errorf("settings: create %s: %w", key, err)
		}
		s.invalidate(ctx, key)
		s.broadcaster.Broadcast(newChange(interfaces.ConfigCreated, key, now))
		return nil
	case err != nil:
		return err
	}

	if existing.Value == value {
		return nil
	}
	existing.Value = value
	existing.UpdatedAt = now
	if _, err := s.repo.Update(ctx, existing,
		repository.UpdateByID(existing.ID.String()),
		repository.UpdateColumns("value", "updated_at"),
	); err != nil {
		return fmt.Errorf("settings: update %s: %w", key, err)
	}
	s.invalidate(ctx, key)
	s.broadcaster.Broadcast(newChange(interfaces.ConfigUpdated, key, now))
	return nil
}

func (s *BunStore) Delete(ctx context.Context, key string) error {
	existing, err := s.find(ctx, key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, &Setting{ID: existing.ID}); err != nil {
		return fmt.Errorf("settings: delete %s: %w", key, err)
	}
	s.invalidate(ctx, key)
	s.broadcaster.Broadcast(newChange(interfaces.ConfigDeleted, key, s.now().UTC()))
	return nil
}

// Keys filters in Go because LIKE treats the "_" in "seo_" as a wildcard.
func (s *BunStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.key ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("settings: list keys: %w", err)
	}
	keys := make([]string, 0, len(records))
	for _, record := range records {
		if strings.HasPrefix(record.Key, prefix) {
			keys = append(keys, record.Key)
		}
	}
	return keys, nil
}

func (s *BunStore) Subscribe(ctx context.Context) (<-chan interfaces.ConfigChange, error) {
	return s.broadcaster.Subscribe(ctx)
}

func (s *BunStore) find(ctx context.Context, key string) (*Setting, error) {
	record, err := s.repo.GetByIdentifier(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("settings: get %s: %w", key, err)
	}
	if record == nil {
		return nil, ErrKeyNotFound
	}
	return record, nil
}

// CachePrefix returns the key prefix dropped after every write, or "" when
// reads are not cached.
func (s *BunStore) CachePrefix() string {
	return s.cachePrefix
}

// invalidate runs after the row is written, so a failure only leaves stale
// reads until the cache TTL expires.
func (s *BunStore) invalidate(ctx context.Context, key string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeleteByPrefix(ctx, s.cachePrefix); err != nil {
		s.logger.WithContext(ctx).Warn("settings.cache.invalidate_failed", "key", key, "error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}
