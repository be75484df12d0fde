package collections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository implements Repository over a SQL table with optional caching.
type BunRepository[T Record] struct {
	desc         Descriptor[T]
	repo         repository.Repository[T]
	cacheService cache.CacheService
	cachePrefix  string
	now          func() time.Time
}

// NewModelRepository creates a go-repository-bun repository for desc,
// addressed by its key column.
func NewModelRepository[T Record](db *bun.DB, desc Descriptor[T]) repository.Repository[T] {
	return repository.MustNewRepository(db, repository.ModelHandlers[T]{
		NewRecord: desc.New,
		GetID: func(record T) uuid.UUID {
			return record.GetID()
		},
		SetID: func(record T, id uuid.UUID) {
			record.SetID(id)
		},
		GetIdentifier: func() string {
			return desc.KeyColumn
		},
		GetIdentifierValue: desc.Key,
	})
}

// NewBunRepository creates a repository without caching.
func NewBunRepository[T Record](db *bun.DB, desc Descriptor[T]) *BunRepository[T] {
	return NewBunRepositoryWithCache(db, desc, nil, nil)
}

// NewBunRepositoryWithCache creates a repository whose reads go through
// cacheService. Writes invalidate the table's cache namespace.
func NewBunRepositoryWithCache[T Record](db *bun.DB, desc Descriptor[T], cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository[T] {
	base := NewModelRepository(db, desc)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(desc.CacheNamespace)
	}
	return &BunRepository[T]{
		desc:         desc,
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
		now:          time.Now,
	}
}

func (r *BunRepository[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	if err := r.desc.checkOptions(opts); err != nil {
		return nil, err
	}
	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = createdAtColumn
	}
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}
	query := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		for column, value := range opts.Filter {
			q = q.Where("?TableAlias.? = ?", bun.Ident(column), value)
		}
		return q.OrderExpr("?TableAlias.? "+direction, bun.Ident(orderBy)).
			OrderExpr("?TableAlias.id ASC")
	})

	var (
		records []T
		err     error
	)
	if opts.Limit > 0 {
		records, _, err = r.repo.List(ctx, query, repository.SelectPaginate(opts.Limit, 0))
	} else {
		records, _, err = r.repo.List(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("%s repository error: %w", r.desc.Resource, err)
	}
	return records, nil
}

func (r *BunRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		var zero T
		return zero, r.mapError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository[T]) Find(ctx context.Context, key string) (T, error) {
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		var zero T
		return zero, r.mapError(err, key)
	}
	return record, nil
}

func (r *BunRepository[T]) Insert(ctx context.Context, record T) (T, error) {
	var zero T
	if record.GetID() == uuid.Nil {
		record.SetID(uuid.New())
	}
	record.Touch(r.now())
	if err := record.Validate(); err != nil {
		return zero, err
	}
	if key := r.desc.Key(record); key != "" {
		if _, err := r.Find(ctx, key); err == nil {
			return zero, fmt.Errorf("%w: %s %q", ErrDuplicate, r.desc.Resource, key)
		}
	}

	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return zero, fmt.Errorf("%s repository error: %w", r.desc.Resource, err)
	}
	return created, r.InvalidateCache(ctx)
}

func (r *BunRepository[T]) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (T, error) {
	var zero T
	existing, err := r.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if _, err := r.desc.applyPatch(existing, patch); err != nil {
		return zero, err
	}
	existing.SetID(id)
	existing.Touch(r.now())
	if err := existing.Validate(); err != nil {
		return zero, err
	}
	if key := r.desc.Key(existing); key != "" {
		if other, err := r.Find(ctx, key); err == nil && other.GetID() != id {
			return zero, fmt.Errorf("%w: %s %q", ErrDuplicate, r.desc.Resource, key)
		}
	}

	columns := append(append([]string(nil), r.desc.Columns...), "updated_at")
	updated, err := r.repo.Update(ctx, existing,
		repository.UpdateByID(id.String()),
		repository.UpdateColumns(columns...),
	)
	if err != nil {
		return zero, fmt.Errorf("%s repository error: %w", r.desc.Resource, err)
	}
	return updated, r.InvalidateCache(ctx)
}

func (r *BunRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, record); err != nil {
		return fmt.Errorf("%s repository error: %w", r.desc.Resource, err)
	}
	return r.InvalidateCache(ctx)
}

// CachePrefix returns the key prefix InvalidateCache drops, or "" when reads
// are not cached.
func (r *BunRepository[T]) CachePrefix() string {
	return r.cachePrefix
}

// InvalidateCache drops every cached read for the table.
func (r *BunRepository[T]) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func (r *BunRepository[T]) mapError(err error, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return r.desc.notFound(key)
	}
	return fmt.Errorf("%s repository error: %w", r.desc.Resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
