package questlinesdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"questline/internal/config"
	"questline/internal/db"
	"questline/internal/engine"
	"questline/internal/migrate"
	"questline/internal/server"
	questlinesdk "questline/sdk/go"
)

const secret = "sdk-secret"

func newClient(t *testing.T) *questlinesdk.Client {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default("sdk-game")
	e := engine.New(conn, cfg)
	if err := e.Repo.UpsertGameConfig(context.Background(), cfg.Game.ID, cfg); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	handler, err := server.New(server.Config{Engine: e, Auth: server.AuthConfig{JWTSecret: secret}})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	token, err := server.SignToken(secret, "sdk", []string{server.PermAll}, 0)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return questlinesdk.New(srv.URL, token)
}

func TestClientObjectiveFlow(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	obj, err := c.SetObjectiveState(ctx, 0, 0, true)
	if err != nil {
		t.Fatalf("set state: %v", err)
	}
	if !obj.Selected || obj.CurrentState == nil || obj.CurrentState.Type != "active" {
		t.Fatalf("unexpected objective %+v", obj)
	}
	active, err := c.Objectives(ctx, questlinesdk.ObjectiveFilter{DisplayType: "incomplete_only"})
	if err != nil || len(active) != 1 {
		t.Fatalf("incomplete objectives %+v %v", active, err)
	}
	sel, err := c.Selection(ctx)
	if err != nil || sel == nil || sel.ObjectiveID != 0 {
		t.Fatalf("selection %+v %v", sel, err)
	}
	if err := c.Deselect(ctx); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if sel, err := c.Selection(ctx); err != nil || sel != nil {
		t.Fatalf("expected no selection, got %+v %v", sel, err)
	}

	if _, err := c.SaveGame(ctx, "slot", "first"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.CancelObjective(ctx, 0); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := c.LoadGame(ctx, "slot"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := c.Objective(ctx, 0); err != nil {
		t.Fatalf("objective after load: %v", err)
	}
	saves, err := c.Saves(ctx)
	if err != nil || len(saves) != 1 || saves[0].Label != "first" {
		t.Fatalf("saves %+v %v", saves, err)
	}
	evts, err := c.Events(ctx, 10)
	if err != nil || len(evts) == 0 {
		t.Fatalf("events %+v %v", evts, err)
	}
}

func TestClientErrors(t *testing.T) {
	c := newClient(t)
	_, err := c.SetObjectiveState(context.Background(), 42, 0, false)
	var apiErr *questlinesdk.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "unknown_objective" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
