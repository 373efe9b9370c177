package events

import (
	"strconv"

	"questline/internal/objectives"
)

// Pending is an event waiting to be written to the event log.
type Pending struct {
	Type string
	// Kind is the entity kind; empty means "objective".
	Kind     string
	EntityID string
	Payload  EventPayload
}

// Buffer collects registry notifications until Drain is called.
type Buffer struct {
	pending []Pending
}

var _ objectives.Notifier = (*Buffer)(nil)

func (b *Buffer) ObjectiveUpdated(inst *objectives.Instance) {
	b.add(TypeObjectiveUpdated, inst)
}

func (b *Buffer) ObjectiveSelected(inst *objectives.Instance) {
	b.add(TypeObjectiveSelected, inst)
}

func (b *Buffer) add(evtType string, inst *objectives.Instance) {
	payload := EventPayload{
		"objective_id":     inst.ObjectiveID(),
		"title":            inst.Objective().Title,
		"current_state_id": inst.CurrentStateID,
	}
	if s, ok := inst.CurrentState(); ok {
		payload["state_label"] = s.Label
		payload["state_type"] = string(s.Type)
	}
	b.pending = append(b.pending, Pending{
		Type:     evtType,
		EntityID: strconv.Itoa(inst.ObjectiveID()),
		Payload:  payload,
	})
}

// Peek returns a copy of the buffered notifications and keeps them buffered.
func (b *Buffer) Peek() []Pending {
	return append([]Pending(nil), b.pending...)
}

// Drain returns and forgets the buffered notifications.
func (b *Buffer) Drain() []Pending {
	out := b.pending
	b.pending = nil
	return out
}

// Len reports how many notifications are buffered.
func (b *Buffer) Len() int { return len(b.pending) }
