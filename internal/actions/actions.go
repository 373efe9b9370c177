// Package actions implements the objective action nodes that game scripts run.
package actions

import (
	"fmt"
	"time"

	"questline/internal/config"
	"questline/internal/domain"
)

// ObjectiveSetter is the registry surface actions mutate.
type ObjectiveSetter interface {
	SetObjectiveState(objectiveID, newStateID int, selectAfter bool)
}

// Catalog resolves objective definitions for labels and validation.
type Catalog interface {
	Objective(id int) (*domain.Objective, bool)
}

// Action is a single runnable node. Run returns how long the caller should wait
// before running the next node.
type Action interface {
	Run(target ObjectiveSetter) time.Duration
	Label(cat Catalog) string
	Validate(cat Catalog) error
}

// ObjectiveSet updates an objective's current state.
type ObjectiveSet struct {
	ObjectiveID int
	NewStateID  int
	SelectAfter bool
}

var _ Action = ObjectiveSet{}

func (a ObjectiveSet) Run(target ObjectiveSetter) time.Duration {
	target.SetObjectiveState(a.ObjectiveID, a.NewStateID, a.SelectAfter)
	return 0
}

// Label returns the objective title, or "" when the objective is unknown.
func (a ObjectiveSet) Label(cat Catalog) string {
	if o, ok := cat.Objective(a.ObjectiveID); ok {
		return o.Title
	}
	return ""
}

func (a ObjectiveSet) Validate(cat Catalog) error {
	o, ok := cat.Objective(a.ObjectiveID)
	if !ok {
		return fmt.Errorf("objective %d not defined", a.ObjectiveID)
	}
	if _, ok := o.State(a.NewStateID); !ok {
		return fmt.Errorf("objective %d has no state %d", a.ObjectiveID, a.NewStateID)
	}
	return nil
}

// List is an ordered sequence of actions.
type List struct {
	Name    string
	Actions []Action
}

// FromConfig builds a list from its config entries.
func FromConfig(name string, entries []config.ActionConfig) (List, error) {
	l := List{Name: name}
	for i, e := range entries {
		switch {
		case e.ObjectiveSet != nil:
			l.Actions = append(l.Actions, ObjectiveSet{
				ObjectiveID: e.ObjectiveSet.ObjectiveID,
				NewStateID:  e.ObjectiveSet.NewStateID,
				SelectAfter: e.ObjectiveSet.SelectAfter,
			})
		default:
			return List{}, fmt.Errorf("action list %s entry %d has no action", name, i)
		}
	}
	return l, nil
}

// Validate checks every action against the catalog.
func (l List) Validate(cat Catalog) error {
	for i, a := range l.Actions {
		if err := a.Validate(cat); err != nil {
			return fmt.Errorf("action list %s entry %d: %w", l.Name, i, err)
		}
	}
	return nil
}

// Run executes every action in order and returns the summed wait time.
func (l List) Run(target ObjectiveSetter) time.Duration {
	var total time.Duration
	for _, a := range l.Actions {
		total += a.Run(target)
	}
	return total
}
