package config_test

import (
	"os"
	"strings"
	"testing"

	"questline/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default("demo")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Game.ID != "demo" {
		t.Fatalf("game id = %q", cfg.Game.ID)
	}
	if !cfg.Settings.AllowsPlayerSwitching() {
		t.Fatalf("expected player switching in default config")
	}
	if len(cfg.Objectives) != 2 {
		t.Fatalf("expected 2 objectives, got %d", len(cfg.Objectives))
	}
	if len(cfg.ActionLists["intro"]) != 1 {
		t.Fatalf("expected intro action list")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"duplicate objective": `game: {id: g}
settings: {player_switching: allow, default_player: a}
objectives:
  - {id: 1, title: x, states: [{id: 0, label: s, type: active}]}
  - {id: 1, title: y, states: [{id: 0, label: s, type: active}]}
`,
		"duplicate state": `game: {id: g}
settings: {player_switching: allow, default_player: a}
objectives:
  - {id: 1, title: x, states: [{id: 0, label: s, type: active}, {id: 0, label: t, type: fail}]}
`,
		"bad state type": `game: {id: g}
settings: {player_switching: allow, default_player: a}
objectives:
  - {id: 1, title: x, states: [{id: 0, label: s, type: pending}]}
`,
		"bad switching": `game: {id: g}
settings: {player_switching: sometimes, default_player: a}
`,
		"unknown action objective": `game: {id: g}
settings: {player_switching: allow, default_player: a}
objectives:
  - {id: 1, title: x, states: [{id: 0, label: s, type: active}]}
action_lists:
  intro:
    - objective_set: {objective_id: 9, new_state_id: 0}
`,
	}
	for name, doc := range cases {
		if _, err := config.FromYAML([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestHasPlayer(t *testing.T) {
	cfg := config.Default("demo")
	if !cfg.Settings.HasPlayer("hero") || !cfg.Settings.HasPlayer("sidekick") {
		t.Fatalf("expected configured players")
	}
	if cfg.Settings.HasPlayer("villain") {
		t.Fatalf("unexpected player")
	}
	if !strings.Contains(config.GenerateDefault("x"), "id: x") {
		t.Fatalf("template missing game id")
	}
}

func TestLoadWorkspaceFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := config.Load(dir); err == nil || !strings.Contains(err.Error(), "ql config import") {
		t.Fatalf("expected a missing-file hint, got %v", err)
	}
	if err := os.WriteFile(config.Path(dir), []byte(config.GenerateDefault("castle")), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Game.ID != "castle" {
		t.Fatalf("game id = %q", cfg.Game.ID)
	}
}
