package events_test

import (
	"testing"

	"questline/internal/catalog"
	"questline/internal/domain"
	"questline/internal/events"
	"questline/internal/objectives"
)

func TestBufferCollectsNotifications(t *testing.T) {
	buf := &events.Buffer{}
	reg := objectives.New(objectives.Options{
		Catalog: catalog.New([]domain.Objective{{ID: 4, Title: "four", States: []domain.ObjectiveState{
			{ID: 1, Label: "Begun", Type: domain.StateActive},
		}}}),
		Notifier: buf,
	})
	reg.SetObjectiveState(4, 1, true)
	if buf.Len() != 2 {
		t.Fatalf("expected 2 notifications, got %d", buf.Len())
	}
	got := buf.Drain()
	if got[0].Type != events.TypeObjectiveSelected || got[1].Type != events.TypeObjectiveUpdated {
		t.Fatalf("unexpected order: %s, %s", got[0].Type, got[1].Type)
	}
	if got[1].EntityID != "4" || got[1].Payload["state_label"] != "Begun" {
		t.Fatalf("unexpected payload %+v", got[1])
	}
	if buf.Len() != 0 {
		t.Fatalf("drain should empty the buffer")
	}
}
