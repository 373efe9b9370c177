// Package objectives keeps track of the objectives that are active in a game session.
//
// A Registry holds two ordered collections: objectives unique to the current player and
// objectives shared by every player. At most one instance per objective ID exists across
// both. The registry is not safe for concurrent use; callers serialize access.
package objectives

import (
	"log"

	"questline/internal/domain"
)

// Scope names the collection an instance lives in.
type Scope string

const (
	ScopePlayer Scope = "player"
	ScopeGlobal Scope = "global"
)

// Catalog resolves objective definitions by ID.
type Catalog interface {
	Objective(id int) (*domain.Objective, bool)
}

// Notifier receives registry notifications. Calls are fire-and-forget.
type Notifier interface {
	ObjectiveUpdated(inst *Instance)
	ObjectiveSelected(inst *Instance)
}

type Options struct {
	Catalog  Catalog
	Notifier Notifier
	// PlayerSwitching reports whether the game currently permits multiple players.
	// Per-player objectives are only kept apart while it returns true.
	PlayerSwitching func() bool
	Logger          *log.Logger
}

type Registry struct {
	player   []*Instance
	global   []*Instance
	selected *Instance

	catalog         Catalog
	notifier        Notifier
	playerSwitching func() bool
	logger          *log.Logger
}

// New returns an empty registry.
func New(opts Options) *Registry {
	r := &Registry{
		catalog:         opts.Catalog,
		notifier:        opts.Notifier,
		playerSwitching: opts.PlayerSwitching,
		logger:          opts.Logger,
	}
	if r.notifier == nil {
		r.notifier = nopNotifier{}
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

type nopNotifier struct{}

func (nopNotifier) ObjectiveUpdated(*Instance)  {}
func (nopNotifier) ObjectiveSelected(*Instance) {}

func (r *Registry) allowsPlayerSwitching() bool {
	return r.playerSwitching != nil && r.playerSwitching()
}

func (r *Registry) find(objectiveID int) (*Instance, Scope, int) {
	for i, inst := range r.player {
		if inst.ObjectiveID() == objectiveID {
			return inst, ScopePlayer, i
		}
	}
	for i, inst := range r.global {
		if inst.ObjectiveID() == objectiveID {
			return inst, ScopeGlobal, i
		}
	}
	return nil, "", -1
}

// SetObjectiveState updates the state of an objective, starting to track it if needed.
// Unknown objective IDs are logged and ignored.
func (r *Registry) SetObjectiveState(objectiveID, newStateID int, selectAfter bool) {
	if inst, _, _ := r.find(objectiveID); inst != nil {
		inst.CurrentStateID = newStateID
		if selectAfter {
			r.setSelected(inst)
		}
		r.notifier.ObjectiveUpdated(inst)
		return
	}

	inst, ok := newInstance(r.catalog, objectiveID, newStateID)
	if !ok {
		r.logger.Printf("WARNING: cannot set the state of objective %d because that ID does not exist", objectiveID)
		return
	}
	if inst.objective.PerPlayer && r.allowsPlayerSwitching() {
		r.player = append(r.player, inst)
	} else {
		r.global = append(r.global, inst)
	}
	if selectAfter {
		r.setSelected(inst)
	}
	r.notifier.ObjectiveUpdated(inst)
}

// GetObjectiveState returns the current state of a tracked objective.
func (r *Registry) GetObjectiveState(objectiveID int) (domain.ObjectiveState, bool) {
	inst, _, _ := r.find(objectiveID)
	if inst == nil {
		return domain.ObjectiveState{}, false
	}
	return inst.CurrentState()
}

// CancelObjective stops tracking an objective. Untracked IDs are ignored.
func (r *Registry) CancelObjective(objectiveID int) {
	inst, scope, idx := r.find(objectiveID)
	if inst == nil {
		return
	}
	switch scope {
	case ScopePlayer:
		r.player = append(r.player[:idx], r.player[idx+1:]...)
	case ScopeGlobal:
		r.global = append(r.global[:idx], r.global[idx+1:]...)
	}
	if r.selected == inst {
		r.selected = nil
	}
}

// GetObjective returns the live instance for an objective.
func (r *Registry) GetObjective(objectiveID int) (*Instance, bool) {
	inst, _, _ := r.find(objectiveID)
	return inst, inst != nil
}

// ScopeOf reports which collection holds the objective.
func (r *Registry) ScopeOf(objectiveID int) (Scope, bool) {
	inst, scope, _ := r.find(objectiveID)
	return scope, inst != nil
}

// GetObjectives returns every tracked instance, player objectives first.
func (r *Registry) GetObjectives() []*Instance {
	return r.filter(func(*Instance) bool { return true })
}

// GetObjectivesByStateType returns instances whose current state has the given type.
func (r *Registry) GetObjectivesByStateType(t domain.StateType) []*Instance {
	return r.filter(func(inst *Instance) bool {
		s, ok := inst.CurrentState()
		return ok && s.Type == t
	})
}

// GetObjectivesByDisplayType returns instances whose current state is shown under d.
func (r *Registry) GetObjectivesByDisplayType(d domain.DisplayType) []*Instance {
	return r.filter(func(inst *Instance) bool {
		s, ok := inst.CurrentState()
		return ok && s.DisplayTypeMatches(d)
	})
}

func (r *Registry) filter(keep func(*Instance) bool) []*Instance {
	res := make([]*Instance, 0, len(r.player)+len(r.global))
	for _, inst := range r.player {
		if keep(inst) {
			res = append(res, inst)
		}
	}
	for _, inst := range r.global {
		if keep(inst) {
			res = append(res, inst)
		}
	}
	return res
}

// SelectObjective selects a tracked objective. An untracked ID clears the selection.
func (r *Registry) SelectObjective(objectiveID int) {
	inst, _, _ := r.find(objectiveID)
	r.setSelected(inst)
}

// DeselectObjective clears the selection without notifying.
func (r *Registry) DeselectObjective() {
	r.selected = nil
}

// SelectedObjective returns the selected instance, if any.
func (r *Registry) SelectedObjective() (*Instance, bool) {
	return r.selected, r.selected != nil
}

func (r *Registry) setSelected(inst *Instance) {
	r.selected = inst
	if inst != nil {
		r.notifier.ObjectiveSelected(inst)
	}
}

// ClearAll drops every tracked objective and the selection.
func (r *Registry) ClearAll() {
	r.player = nil
	r.global = nil
	r.selected = nil
}

// ClearUniqueToPlayer drops the objectives tracked for the current player only.
func (r *Registry) ClearUniqueToPlayer() {
	if r.selected != nil && containsInstance(r.player, r.selected) {
		r.selected = nil
	}
	r.player = nil
}

func containsInstance(list []*Instance, inst *Instance) bool {
	for _, i := range list {
		if i == inst {
			return true
		}
	}
	return false
}

// SavePlayerObjectives encodes the player collection.
func (r *Registry) SavePlayerObjectives() string {
	return encodeInstances(r.player)
}

// SaveGlobalObjectives encodes the global collection.
func (r *Registry) SaveGlobalObjectives() string {
	return encodeInstances(r.global)
}

// LoadPlayerObjectives replaces the player collection from a save blob and clears the selection.
func (r *Registry) LoadPlayerObjectives(blob string) {
	r.player = nil
	r.selected = nil
	r.player = r.decodeInstances(blob, ScopePlayer)
}

// LoadGlobalObjectives replaces the global collection from a save blob and clears the selection.
func (r *Registry) LoadGlobalObjectives(blob string) {
	r.global = nil
	r.selected = nil
	r.global = r.decodeInstances(blob, ScopeGlobal)
}

func encodeInstances(list []*Instance) string {
	records := make([]Record, 0, len(list))
	for _, inst := range list {
		records = append(records, inst.Record())
	}
	return EncodeRecords(records)
}

func (r *Registry) decodeInstances(blob string, scope Scope) []*Instance {
	records, errs := DecodeRecords(blob)
	for _, err := range errs {
		r.logger.Printf("WARNING: dropping %s objective save data: %v", scope, err)
	}
	var res []*Instance
	for _, rec := range records {
		if existing, _, _ := r.find(rec.ObjectiveID); existing != nil || containsObjective(res, rec.ObjectiveID) {
			r.logger.Printf("WARNING: dropping duplicate %s objective %d from save data", scope, rec.ObjectiveID)
			continue
		}
		inst, ok := newInstance(r.catalog, rec.ObjectiveID, rec.StateID)
		if !ok {
			r.logger.Printf("WARNING: dropping %s objective %d from save data because that ID no longer exists", scope, rec.ObjectiveID)
			continue
		}
		res = append(res, inst)
	}
	return res
}

func containsObjective(list []*Instance, objectiveID int) bool {
	for _, inst := range list {
		if inst.ObjectiveID() == objectiveID {
			return true
		}
	}
	return false
}

// Status snapshots an instance for display.
func (r *Registry) Status(inst *Instance) domain.ObjectiveStatus {
	o := inst.Objective()
	st := domain.ObjectiveStatus{
		ObjectiveID:    o.ID,
		Title:          o.Title,
		PerPlayer:      o.PerPlayer,
		Scope:          string(ScopeGlobal),
		CurrentStateID: inst.CurrentStateID,
		Selected:       r.selected == inst,
	}
	if containsInstance(r.player, inst) {
		st.Scope = string(ScopePlayer)
	}
	if s, ok := inst.CurrentState(); ok {
		st.CurrentState = &s
	}
	return st
}
