package server

import (
	"encoding/json"

	"questline/internal/config"
	"questline/internal/domain"
)

type SetStateRequest struct {
	StateID     int  `json:"state_id" doc:"New current state ID"`
	SelectAfter bool `json:"select_after,omitempty" doc:"Select the objective after updating it"`
}

type SaveRequest struct {
	Label string `json:"label,omitempty" maxLength:"200"`
}

type DevLoginRequest struct {
	ActorID     string   `json:"actor_id" minLength:"1"`
	Permissions []string `json:"permissions,omitempty"`
}

type DevLoginResponse struct {
	Token string `json:"token"`
}

type WhoAmIResponse struct {
	ActorID     string   `json:"actor_id"`
	Permissions []string `json:"permissions"`
	Source      string   `json:"source"`
}

type ObjectiveList struct {
	Items []domain.ObjectiveStatus `json:"items"`
}

type SelectionResponse struct {
	Selected  bool                    `json:"selected"`
	Objective *domain.ObjectiveStatus `json:"objective,omitempty"`
}

type PlayerResponse struct {
	CurrentPlayerID string   `json:"current_player_id"`
	SaveID          string   `json:"save_id,omitempty"`
	Players         []string `json:"players"`
	Switching       bool     `json:"switching_allowed"`
}

type SaveList struct {
	Items []domain.MainData `json:"items"`
}

type ActionListSummary struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
}

type CatalogResponse struct {
	GameID     string             `json:"game_id"`
	Objectives []domain.Objective `json:"objectives"`
}

type EventResponse struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts" format:"date-time"`
	Type       string         `json:"type"`
	GameID     string         `json:"game_id"`
	SaveID     string         `json:"save_id,omitempty"`
	EntityKind string         `json:"entity_kind"`
	EntityID   string         `json:"entity_id,omitempty"`
	ActorID    string         `json:"actor_id"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type paginatedEvents struct {
	Items      []EventResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func eventResponse(e domain.Event) EventResponse {
	return EventResponse{
		ID:         e.ID,
		TS:         e.TS,
		Type:       e.Type,
		GameID:     e.GameID,
		SaveID:     e.SaveID,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		Payload:    decodeJSONMap(e.Payload),
	}
}

func playerResponse(cfg *config.Config, current, saveID string) PlayerResponse {
	players := []string{cfg.Settings.DefaultPlayer}
	for _, p := range cfg.Settings.Players {
		if p != cfg.Settings.DefaultPlayer {
			players = append(players, p)
		}
	}
	return PlayerResponse{
		CurrentPlayerID: current,
		SaveID:          saveID,
		Players:         players,
		Switching:       cfg.Settings.AllowsPlayerSwitching(),
	}
}

func decodeJSONMap(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]any{"raw": raw}
	}
	return out
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
