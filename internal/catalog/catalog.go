// Package catalog holds the read-only objective definitions a game ships with.
package catalog

import (
	"sort"

	"questline/internal/domain"
)

// Catalog resolves objective definitions by ID. It is never mutated after New.
type Catalog struct {
	byID  map[int]*domain.Objective
	order []int
}

// New builds a catalog from definitions. Later duplicates replace earlier ones;
// config validation rejects duplicates before this point.
func New(objectives []domain.Objective) *Catalog {
	c := &Catalog{byID: make(map[int]*domain.Objective, len(objectives))}
	for i := range objectives {
		o := objectives[i]
		if _, dup := c.byID[o.ID]; !dup {
			c.order = append(c.order, o.ID)
		}
		c.byID[o.ID] = &o
	}
	sort.Ints(c.order)
	return c
}

// Objective returns the definition for id.
func (c *Catalog) Objective(id int) (*domain.Objective, bool) {
	if c == nil {
		return nil, false
	}
	o, ok := c.byID[id]
	return o, ok
}

// State resolves a state within an objective.
func (c *Catalog) State(objectiveID, stateID int) (domain.ObjectiveState, bool) {
	o, ok := c.Objective(objectiveID)
	if !ok {
		return domain.ObjectiveState{}, false
	}
	return o.State(stateID)
}

// List returns all definitions ordered by ID.
func (c *Catalog) List() []domain.Objective {
	if c == nil {
		return nil
	}
	res := make([]domain.Objective, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, *c.byID[id])
	}
	return res
}
