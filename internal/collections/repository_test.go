package collections_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tapdev/tapdev-site/internal/collections"
	"github.com/tapdev/tapdev-site/pkg/testsupport"
)

func newSQLiteStore(t *testing.T, name string) *collections.Store {
	t.Helper()
	db, err := testsupport.NewSQLiteMemoryDB(name)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range collections.Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return collections.NewBunStore(db, nil, nil)
}

func TestRepositoryContract(t *testing.T) {
	stores := map[string]func(t *testing.T) *collections.Store{
		"memory": func(*testing.T) *collections.Store { return collections.NewMemoryStore() },
		"bun": func(t *testing.T) *collections.Store {
			return newSQLiteStore(t, "collections_contract")
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			exerciseRepository(t, open(t))
		})
	}
}

func exerciseRepository(t *testing.T, store *collections.Store) {
	ctx := context.Background()
	repo := store.PortfolioProjects

	first, err := repo.Insert(ctx, &collections.PortfolioProject{Title: "Alpha", Slug: "alpha", SortOrder: 2})
	if err != nil {
		t.Fatalf("insert alpha: %v", err)
	}
	if first.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if first.CreatedAt.IsZero() || first.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set, got %+v", first)
	}
	if _, err := repo.Insert(ctx, &collections.PortfolioProject{Title: "Beta", Slug: "beta", SortOrder: 1, Featured: true}); err != nil {
		t.Fatalf("insert beta: %v", err)
	}

	if _, err := repo.Insert(ctx, &collections.PortfolioProject{Title: "Alpha again", Slug: "alpha"}); !errors.Is(err, collections.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := repo.Insert(ctx, &collections.PortfolioProject{Title: "Bad", Slug: "Not A Slug"}); err == nil {
		t.Fatalf("expected validation error for malformed slug")
	}

	listed, err := repo.List(ctx, collections.ListOptions{OrderBy: "sort_order"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].Slug != "beta" || listed[1].Slug != "alpha" {
		t.Fatalf("unexpected order: %+v", slugs(listed))
	}

	featured, err := repo.List(ctx, collections.ListOptions{Filter: map[string]any{"featured": true}})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 1 || featured[0].Slug != "beta" {
		t.Fatalf("unexpected featured: %+v", slugs(featured))
	}

	limited, err := repo.List(ctx, collections.ListOptions{OrderBy: "sort_order", Descending: true, Limit: 1})
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Slug != "alpha" {
		t.Fatalf("unexpected limited list: %+v", slugs(limited))
	}

	if _, err := repo.List(ctx, collections.ListOptions{OrderBy: "password"}); !errors.Is(err, collections.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn for order, got %v", err)
	}
	if _, err := repo.List(ctx, collections.ListOptions{Filter: map[string]any{"1=1; --": true}}); !errors.Is(err, collections.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn for filter, got %v", err)
	}

	found, err := repo.Find(ctx, "alpha")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("find returned %s, want %s", found.ID, first.ID)
	}

	updated, err := repo.Update(ctx, first.ID, map[string]any{"client": "Harbor", "sort_order": 5})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Client != "Harbor" || updated.SortOrder != 5 || updated.Title != "Alpha" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := repo.Update(ctx, first.ID, map[string]any{"id": uuid.NewString()}); !errors.Is(err, collections.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn for id patch, got %v", err)
	}
	if _, err := repo.Update(ctx, first.ID, map[string]any{"sort_order": "high"}); !errors.Is(err, collections.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch, got %v", err)
	}
	if _, err := repo.Update(ctx, first.ID, map[string]any{"slug": "beta"}); !errors.Is(err, collections.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on slug collision, got %v", err)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, first.ID); !collections.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, first.ID); !collections.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestStoreTableUntyped(t *testing.T) {
	ctx := context.Background()
	store := collections.NewMemoryStore()

	if _, err := store.Table("users"); !errors.Is(err, collections.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}

	tbl, err := store.Table(collections.TableHomepageContent)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if tbl.Name() != collections.TableHomepageContent {
		t.Fatalf("unexpected name %q", tbl.Name())
	}

	created, err := tbl.Insert(ctx, []byte(`{"section":"hero","title":"Hello"}`))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	section, ok := created.(*collections.HomepageContent)
	if !ok {
		t.Fatalf("unexpected type %T", created)
	}
	if _, err := tbl.Insert(ctx, []byte(`{"section":`)); !errors.Is(err, collections.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch for broken json, got %v", err)
	}

	if _, err := tbl.Update(ctx, section.ID, map[string]any{"title": "Welcome"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	listed, err := tbl.List(ctx, collections.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	rows := listed.([]*collections.HomepageContent)
	if len(rows) != 1 || rows[0].Title != "Welcome" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if err := tbl.Delete(ctx, section.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func slugs(records []*collections.PortfolioProject) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Slug)
	}
	return out
}
