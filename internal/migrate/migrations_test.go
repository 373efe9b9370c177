package migrate_test

import (
	"context"
	"testing"

	"questline/internal/db"
	"questline/internal/migrate"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	ctx := context.Background()

	before, err := migrate.CurrentVersion(ctx, conn)
	if err != nil {
		t.Fatalf("version before migrate: %v", err)
	}
	if before != 0 {
		t.Fatalf("fresh database version = %d", before)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := migrate.MigrateContext(ctx, conn); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	version, err := migrate.CurrentVersion(ctx, conn)
	if err != nil {
		t.Fatalf("read version: %v", err)
	}
	latest, err := migrate.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if version != latest || version != 1 {
		t.Fatalf("schema version = %d, latest = %d", version, latest)
	}
	for _, table := range []string{"game_configs", "saves", "player_saves", "events"} {
		var name string
		if err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
