package actions_test

import (
	"testing"

	"questline/internal/actions"
	"questline/internal/catalog"
	"questline/internal/config"
	"questline/internal/domain"
	"questline/internal/objectives"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]domain.Objective{{
		ID:    3,
		Title: "Open the vault",
		States: []domain.ObjectiveState{
			{ID: 0, Label: "Started", Type: domain.StateActive},
			{ID: 1, Label: "Opened", Type: domain.StateComplete},
		},
	}})
}

func TestObjectiveSetRun(t *testing.T) {
	cat := testCatalog()
	reg := objectives.New(objectives.Options{Catalog: cat})
	a := actions.ObjectiveSet{ObjectiveID: 3, NewStateID: 1, SelectAfter: true}
	if wait := a.Run(reg); wait != 0 {
		t.Fatalf("wait = %v", wait)
	}
	s, ok := reg.GetObjectiveState(3)
	if !ok || s.Label != "Opened" {
		t.Fatalf("state = %+v %v", s, ok)
	}
	if sel, ok := reg.SelectedObjective(); !ok || sel.ObjectiveID() != 3 {
		t.Fatalf("expected objective 3 selected")
	}
	if a.Label(cat) != "Open the vault" {
		t.Fatalf("label = %q", a.Label(cat))
	}
	if (actions.ObjectiveSet{ObjectiveID: 9}).Label(cat) != "" {
		t.Fatalf("unknown objective should have empty label")
	}
}

func TestObjectiveSetValidate(t *testing.T) {
	cat := testCatalog()
	if err := (actions.ObjectiveSet{ObjectiveID: 3, NewStateID: 1}).Validate(cat); err != nil {
		t.Fatalf("valid action rejected: %v", err)
	}
	if err := (actions.ObjectiveSet{ObjectiveID: 4}).Validate(cat); err == nil {
		t.Fatalf("expected unknown objective error")
	}
	if err := (actions.ObjectiveSet{ObjectiveID: 3, NewStateID: 7}).Validate(cat); err == nil {
		t.Fatalf("expected unknown state error")
	}
}

func TestListFromConfig(t *testing.T) {
	cat := testCatalog()
	l, err := actions.FromConfig("vault", []config.ActionConfig{
		{ObjectiveSet: &config.ObjectiveSetConfig{ObjectiveID: 3, NewStateID: 0}},
		{ObjectiveSet: &config.ObjectiveSetConfig{ObjectiveID: 3, NewStateID: 1}},
	})
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	if err := l.Validate(cat); err != nil {
		t.Fatalf("validate: %v", err)
	}
	reg := objectives.New(objectives.Options{Catalog: cat})
	l.Run(reg)
	if s, _ := reg.GetObjectiveState(3); s.ID != 1 {
		t.Fatalf("last action should win, got state %d", s.ID)
	}
	if _, err := actions.FromConfig("empty", []config.ActionConfig{{}}); err == nil {
		t.Fatalf("expected error for empty entry")
	}
}
