package settings_test

import (
	"context"
	"testing"

	"github.com/tapdev/tapdev-site/internal/settings"
	"github.com/tapdev/tapdev-site/pkg/testsupport"
)

func TestBunStore_CRUDEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := testsupport.NewSQLiteMemoryDB("settings_bun_store")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.NewCreateTable().Model((*settings.Setting)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}

	exerciseStore(t, ctx, settings.NewBunStore(db))
}
