package objectives_test

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"questline/internal/catalog"
	"questline/internal/domain"
	"questline/internal/objectives"
)

type recorder struct {
	updated  []int
	selected []int
}

func (r *recorder) ObjectiveUpdated(inst *objectives.Instance)  { r.updated = append(r.updated, inst.ObjectiveID()) }
func (r *recorder) ObjectiveSelected(inst *objectives.Instance) { r.selected = append(r.selected, inst.ObjectiveID()) }

func states() []domain.ObjectiveState {
	return []domain.ObjectiveState{
		{ID: 0, Label: "Started", Type: domain.StateActive},
		{ID: 10, Label: "Underway", Type: domain.StateActive},
		{ID: 20, Label: "Done", Type: domain.StateComplete},
		{ID: 30, Label: "Lost", Type: domain.StateFail},
	}
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]domain.Objective{
		{ID: 1, Title: "global one", States: states()},
		{ID: 2, Title: "player two", PerPlayer: true, States: states()},
		{ID: 5, Title: "global five", States: states()},
		{ID: 6, Title: "player six", PerPlayer: true, States: states()},
	})
}

type testEnv struct {
	reg      *objectives.Registry
	notes    *recorder
	logs     *bytes.Buffer
	switches *bool
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	notes := &recorder{}
	logs := &bytes.Buffer{}
	allow := true
	reg := objectives.New(objectives.Options{
		Catalog:         testCatalog(),
		Notifier:        notes,
		PlayerSwitching: func() bool { return allow },
		Logger:          log.New(logs, "", 0),
	})
	return testEnv{reg: reg, notes: notes, logs: logs, switches: &allow}
}

func ids(list []*objectives.Instance) []int {
	res := []int{}
	for _, inst := range list {
		res = append(res, inst.ObjectiveID())
	}
	return res
}

func TestSetThenGetReturnsState(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []int{1, 2, 5, 6} {
		env.reg.SetObjectiveState(id, 20, false)
		s, ok := env.reg.GetObjectiveState(id)
		if !ok || s.ID != 20 {
			t.Fatalf("objective %d: got %+v, %v", id, s, ok)
		}
	}
}

func TestSelectAfterCreate(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(5, 10, true)
	inst, ok := env.reg.GetObjective(5)
	if !ok || inst.CurrentStateID != 10 {
		t.Fatalf("expected instance with state 10, got %+v %v", inst, ok)
	}
	sel, ok := env.reg.SelectedObjective()
	if !ok || sel != inst {
		t.Fatalf("expected selected instance")
	}
	if diff := cmp.Diff([]int{5}, env.notes.selected); diff != "" {
		t.Fatalf("selected notifications (-want +got):\n%s", diff)
	}
}

func TestUpdateInPlaceKeepsSingleInstance(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(5, 10, false)
	env.reg.SetObjectiveState(5, 20, false)
	s, ok := env.reg.GetObjectiveState(5)
	if !ok || s.ID != 20 {
		t.Fatalf("expected state 20, got %+v", s)
	}
	if diff := cmp.Diff([]int{5}, ids(env.reg.GetObjectives())); diff != "" {
		t.Fatalf("objectives (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5, 5}, env.notes.updated); diff != "" {
		t.Fatalf("updated notifications (-want +got):\n%s", diff)
	}
}

func TestNoDuplicatesAcrossScopes(t *testing.T) {
	env := newTestEnv(t)
	seq := []struct{ id, state int }{{2, 0}, {1, 0}, {2, 10}, {6, 0}, {1, 20}, {6, 30}, {2, 20}}
	for _, s := range seq {
		env.reg.SetObjectiveState(s.id, s.state, false)
	}
	count := map[int]int{}
	for _, inst := range env.reg.GetObjectives() {
		count[inst.ObjectiveID()]++
	}
	for id, n := range count {
		if n != 1 {
			t.Fatalf("objective %d tracked %d times", id, n)
		}
	}
}

func TestRoutingByScope(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(1, 0, false)
	env.reg.SetObjectiveState(2, 0, false)
	if scope, _ := env.reg.ScopeOf(2); scope != objectives.ScopePlayer {
		t.Fatalf("per-player objective in %s", scope)
	}
	if scope, _ := env.reg.ScopeOf(1); scope != objectives.ScopeGlobal {
		t.Fatalf("global objective in %s", scope)
	}
	// player objectives come first regardless of insertion order
	if diff := cmp.Diff([]int{2, 1}, ids(env.reg.GetObjectives())); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	*env.switches = false
	env.reg.SetObjectiveState(6, 0, false)
	if scope, _ := env.reg.ScopeOf(6); scope != objectives.ScopeGlobal {
		t.Fatalf("per-player objective without switching in %s", scope)
	}
}

func TestUnknownObjectiveLogsWarning(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(99, 0, true)
	if len(env.reg.GetObjectives()) != 0 {
		t.Fatalf("unknown objective was tracked")
	}
	if _, ok := env.reg.SelectedObjective(); ok {
		t.Fatalf("unknown objective was selected")
	}
	if len(env.notes.updated) != 0 {
		t.Fatalf("unexpected notifications %v", env.notes.updated)
	}
	if !strings.Contains(env.logs.String(), "objective 99") {
		t.Fatalf("expected warning, got %q", env.logs.String())
	}
}

func TestCancelObjective(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(2, 0, false)
	env.reg.SetObjectiveState(5, 0, true)
	env.reg.CancelObjective(5)
	if _, ok := env.reg.GetObjectiveState(5); ok {
		t.Fatalf("cancelled objective still tracked")
	}
	if _, ok := env.reg.SelectedObjective(); ok {
		t.Fatalf("cancel left a dangling selection")
	}
	env.reg.CancelObjective(42)
	env.reg.CancelObjective(2)
	if len(env.reg.GetObjectives()) != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestFilteredQueries(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(1, 20, false)
	env.reg.SetObjectiveState(2, 10, false)
	env.reg.SetObjectiveState(5, 30, false)
	env.reg.SetObjectiveState(6, 0, false)

	if diff := cmp.Diff([]int{2, 6}, ids(env.reg.GetObjectivesByStateType(domain.StateActive))); diff != "" {
		t.Fatalf("active (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, ids(env.reg.GetObjectivesByStateType(domain.StateComplete))); diff != "" {
		t.Fatalf("complete (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 6}, ids(env.reg.GetObjectivesByDisplayType(domain.DisplayIncompleteOnly))); diff != "" {
		t.Fatalf("incomplete (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5}, ids(env.reg.GetObjectivesByDisplayType(domain.DisplayFailedOnly))); diff != "" {
		t.Fatalf("failed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 6, 1, 5}, ids(env.reg.GetObjectivesByDisplayType(domain.DisplayAll))); diff != "" {
		t.Fatalf("all (-want +got):\n%s", diff)
	}
}

func TestUndefinedStateIsNotMatched(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(1, 77, false)
	if _, ok := env.reg.GetObjectiveState(1); ok {
		t.Fatalf("undefined state resolved")
	}
	if len(env.reg.GetObjectivesByDisplayType(domain.DisplayAll)) != 0 {
		t.Fatalf("undefined state matched display filter")
	}
	if len(env.reg.GetObjectives()) != 1 {
		t.Fatalf("instance should still be tracked")
	}
}

func TestSelectAndDeselect(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(1, 0, false)
	env.reg.SelectObjective(1)
	if sel, ok := env.reg.SelectedObjective(); !ok || sel.ObjectiveID() != 1 {
		t.Fatalf("expected objective 1 selected")
	}
	env.reg.SelectObjective(404)
	if _, ok := env.reg.SelectedObjective(); ok {
		t.Fatalf("selecting an untracked id should deselect")
	}
	env.reg.SelectObjective(1)
	env.reg.DeselectObjective()
	if _, ok := env.reg.SelectedObjective(); ok {
		t.Fatalf("expected no selection")
	}
	if diff := cmp.Diff([]int{1, 1}, env.notes.selected); diff != "" {
		t.Fatalf("selected notifications (-want +got):\n%s", diff)
	}
}

func TestClearOperations(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(1, 0, false)
	env.reg.SetObjectiveState(2, 0, true)
	env.reg.ClearUniqueToPlayer()
	if diff := cmp.Diff([]int{1}, ids(env.reg.GetObjectives())); diff != "" {
		t.Fatalf("after ClearUniqueToPlayer (-want +got):\n%s", diff)
	}
	if _, ok := env.reg.SelectedObjective(); ok {
		t.Fatalf("selection of a cleared player objective survived")
	}
	env.reg.SelectObjective(1)
	env.reg.ClearAll()
	if len(env.reg.GetObjectives()) != 0 {
		t.Fatalf("ClearAll left objectives")
	}
	if _, ok := env.reg.SelectedObjective(); ok {
		t.Fatalf("ClearAll left a selection")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	if env.reg.SavePlayerObjectives() != "" || env.reg.SaveGlobalObjectives() != "" {
		t.Fatalf("empty registry should save empty blobs")
	}
	env.reg.SetObjectiveState(2, 10, false)
	env.reg.SetObjectiveState(6, 20, false)
	env.reg.SetObjectiveState(1, 30, false)
	env.reg.SetObjectiveState(5, 0, true)
	playerBlob := env.reg.SavePlayerObjectives()
	globalBlob := env.reg.SaveGlobalObjectives()
	if playerBlob != "2:10|6:20" {
		t.Fatalf("player blob = %q", playerBlob)
	}
	if globalBlob != "1:30|5:0" {
		t.Fatalf("global blob = %q", globalBlob)
	}

	restored := newTestEnv(t)
	restored.reg.SetObjectiveState(1, 0, true)
	restored.reg.LoadGlobalObjectives(globalBlob)
	restored.reg.LoadPlayerObjectives(playerBlob)
	if _, ok := restored.reg.SelectedObjective(); ok {
		t.Fatalf("load should clear selection")
	}
	type pair struct{ ID, State int }
	snapshot := func(r *objectives.Registry) []pair {
		var res []pair
		for _, inst := range r.GetObjectives() {
			res = append(res, pair{inst.ObjectiveID(), inst.CurrentStateID})
		}
		return res
	}
	if diff := cmp.Diff(snapshot(env.reg), snapshot(restored.reg)); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}

	restored.reg.LoadPlayerObjectives("")
	if scope, ok := restored.reg.ScopeOf(2); ok {
		t.Fatalf("objective 2 still tracked in %s", scope)
	}
}

func TestLoadDropsStaleAndMalformedChunks(t *testing.T) {
	env := newTestEnv(t)
	env.reg.LoadGlobalObjectives("1:0|99:10|garbage|5:20|1:30")
	if diff := cmp.Diff([]int{1, 5}, ids(env.reg.GetObjectives())); diff != "" {
		t.Fatalf("loaded (-want +got):\n%s", diff)
	}
	s, _ := env.reg.GetObjectiveState(1)
	if s.ID != 0 {
		t.Fatalf("duplicate chunk overwrote first instance: %+v", s)
	}
	logs := env.logs.String()
	for _, want := range []string{"objective 99", "garbage", "duplicate"} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected %q in logs: %s", want, logs)
		}
	}
}

func TestStatusSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.reg.SetObjectiveState(2, 10, true)
	inst, _ := env.reg.GetObjective(2)
	st := env.reg.Status(inst)
	if st.Scope != "player" || !st.Selected || st.CurrentState == nil || st.CurrentState.Label != "Underway" {
		t.Fatalf("unexpected status %+v", st)
	}
}
