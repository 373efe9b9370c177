package domain

import "fmt"

// StateType classifies an objective state.
type StateType string

const (
	StateActive   StateType = "active"
	StateComplete StateType = "complete"
	StateFail     StateType = "fail"
)

// Valid reports whether t is a known state type.
func (t StateType) Valid() bool {
	switch t {
	case StateActive, StateComplete, StateFail:
		return true
	}
	return false
}

// DisplayType selects which objectives a menu shows.
type DisplayType string

const (
	DisplayAll            DisplayType = "all"
	DisplayIncompleteOnly DisplayType = "incomplete_only"
	DisplayCompleteOnly   DisplayType = "complete_only"
	DisplayFailedOnly     DisplayType = "failed_only"
)

// ParseDisplayType maps user input to a DisplayType.
func ParseDisplayType(s string) (DisplayType, error) {
	switch d := DisplayType(s); d {
	case DisplayAll, DisplayIncompleteOnly, DisplayCompleteOnly, DisplayFailedOnly:
		return d, nil
	}
	return "", fmt.Errorf("invalid display type %q", s)
}

// ParseStateType maps user input to a StateType.
func ParseStateType(s string) (StateType, error) {
	t := StateType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid state type %q", s)
	}
	return t, nil
}

type ObjectiveState struct {
	ID          int       `json:"id" yaml:"id"`
	Label       string    `json:"label" yaml:"label"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        StateType `json:"type" yaml:"type" enum:"active,complete,fail"`
}

// DisplayTypeMatches reports whether the state is shown under the given display filter.
func (s ObjectiveState) DisplayTypeMatches(d DisplayType) bool {
	switch d {
	case DisplayAll:
		return true
	case DisplayIncompleteOnly:
		return s.Type == StateActive
	case DisplayCompleteOnly:
		return s.Type == StateComplete
	case DisplayFailedOnly:
		return s.Type == StateFail
	}
	return false
}

type Objective struct {
	ID          int              `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	PerPlayer   bool             `json:"per_player" yaml:"per_player"`
	States      []ObjectiveState `json:"states" yaml:"states"`
}

// State looks up a state by ID.
func (o Objective) State(id int) (ObjectiveState, bool) {
	for _, s := range o.States {
		if s.ID == id {
			return s, true
		}
	}
	return ObjectiveState{}, false
}

// ObjectiveStatus is a read-only snapshot of a tracked objective.
type ObjectiveStatus struct {
	ObjectiveID    int             `json:"objective_id"`
	Title          string          `json:"title"`
	PerPlayer      bool            `json:"per_player"`
	Scope          string          `json:"scope" enum:"player,global"`
	CurrentStateID int             `json:"current_state_id"`
	CurrentState   *ObjectiveState `json:"current_state,omitempty"`
	Selected       bool            `json:"selected"`
}

// MainData is the part of a save slot shared by every player.
type MainData struct {
	SaveID           string `json:"save_id"`
	Label            string `json:"label,omitempty"`
	CurrentPlayerID  string `json:"current_player_id"`
	GlobalObjectives string `json:"global_objectives"`
	// SelectedObjectiveID is -1 when nothing is selected.
	SelectedObjectiveID int    `json:"selected_objective_id"`
	CreatedAt           string `json:"created_at" format:"date-time"`
	UpdatedAt           string `json:"updated_at" format:"date-time"`
}

type PlayerData struct {
	SaveID           string `json:"save_id"`
	PlayerID         string `json:"player_id"`
	PlayerObjectives string `json:"player_objectives"`
	UpdatedAt        string `json:"updated_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	GameID     string `json:"game_id"`
	SaveID     string `json:"save_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
