package objectives

import "questline/internal/domain"

// Instance is the runtime record of one tracked objective.
type Instance struct {
	objective      *domain.Objective
	CurrentStateID int
}

func newInstance(cat Catalog, objectiveID, stateID int) (*Instance, bool) {
	if cat == nil {
		return nil, false
	}
	o, ok := cat.Objective(objectiveID)
	if !ok || o == nil {
		return nil, false
	}
	return &Instance{objective: o, CurrentStateID: stateID}, true
}

// Objective returns the catalog definition this instance tracks.
func (i *Instance) Objective() *domain.Objective { return i.objective }

// ObjectiveID returns the tracked objective's ID.
func (i *Instance) ObjectiveID() int { return i.objective.ID }

// CurrentState resolves CurrentStateID against the objective's state table.
func (i *Instance) CurrentState() (domain.ObjectiveState, bool) {
	return i.objective.State(i.CurrentStateID)
}

// Record returns the persisted form of the instance.
func (i *Instance) Record() Record {
	return Record{ObjectiveID: i.objective.ID, StateID: i.CurrentStateID}
}
