package questlinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Questline HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	// ActorID is sent as X-Actor-Id when no bearer token is set; servers only
	// honour it with --allow-legacy-actor.
	ActorID    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, bearerToken string) *Client {
	return &Client{
		BaseURL:     baseURL,
		BearerToken: bearerToken,
		Timeout:     10 * time.Second,
	}
}

// State is an objective state definition.
type State struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

// Objective is a tracked objective as reported by the API.
type Objective struct {
	ObjectiveID    int    `json:"objective_id"`
	Title          string `json:"title"`
	PerPlayer      bool   `json:"per_player"`
	Scope          string `json:"scope"`
	CurrentStateID int    `json:"current_state_id"`
	CurrentState   *State `json:"current_state,omitempty"`
	Selected       bool   `json:"selected"`
}

// Save describes a save slot.
type Save struct {
	SaveID              string `json:"save_id"`
	Label               string `json:"label,omitempty"`
	CurrentPlayerID     string `json:"current_player_id"`
	GlobalObjectives    string `json:"global_objectives"`
	SelectedObjectiveID int    `json:"selected_objective_id"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// Players reports the active player.
type Players struct {
	CurrentPlayerID string   `json:"current_player_id"`
	SaveID          string   `json:"save_id,omitempty"`
	Players         []string `json:"players"`
	Switching       bool     `json:"switching_allowed"`
}

// Event represents a log entry.
type Event struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	GameID     string         `json:"game_id"`
	SaveID     string         `json:"save_id,omitempty"`
	EntityID   string         `json:"entity_id"`
	EntityKind string         `json:"entity_kind"`
	ActorID    string         `json:"actor_id"`
	Payload    map[string]any `json:"payload"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s body=%s", e.StatusCode, e.Code, e.Body)
}

// PaginatedEvents wraps list responses with cursors.
type PaginatedEvents struct {
	Items      []Event `json:"items"`
	NextCursor string  `json:"next_cursor"`
}

// ObjectiveFilter narrows Objectives; empty fields match everything.
type ObjectiveFilter struct {
	StateType   string
	DisplayType string
}

// SetObjectiveState sets an objective's current state, tracking it if needed.
func (c *Client) SetObjectiveState(ctx context.Context, objectiveID, stateID int, selectAfter bool) (Objective, error) {
	body := map[string]any{
		"state_id":     stateID,
		"select_after": selectAfter,
	}
	var resp Objective
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("objectives/%d/state", objectiveID), body, &resp)
	return resp, err
}

// Objective fetches a tracked objective.
func (c *Client) Objective(ctx context.Context, objectiveID int) (Objective, error) {
	var resp Objective
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("objectives/%d", objectiveID), nil, &resp)
	return resp, err
}

// Objectives lists tracked objectives.
func (c *Client) Objectives(ctx context.Context, filter ObjectiveFilter) ([]Objective, error) {
	q := url.Values{}
	if filter.StateType != "" {
		q.Set("state_type", filter.StateType)
	}
	if filter.DisplayType != "" {
		q.Set("display_type", filter.DisplayType)
	}
	endpoint := "objectives"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp struct {
		Items []Objective `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

// CancelObjective stops tracking an objective.
func (c *Client) CancelObjective(ctx context.Context, objectiveID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("objectives/%d", objectiveID), nil, nil)
}

// SelectObjective selects an objective and returns the new selection, if any.
func (c *Client) SelectObjective(ctx context.Context, objectiveID int) (*Objective, error) {
	var resp selection
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("objectives/%d/select", objectiveID), nil, &resp)
	return resp.Objective, err
}

// Selection returns the selected objective or nil.
func (c *Client) Selection(ctx context.Context) (*Objective, error) {
	var resp selection
	err := c.do(ctx, http.MethodGet, "selection", nil, &resp)
	return resp.Objective, err
}

// Deselect clears the selection.
func (c *Client) Deselect(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "selection", nil, nil)
}

type selection struct {
	Selected  bool       `json:"selected"`
	Objective *Objective `json:"objective,omitempty"`
}

// SwitchPlayer makes playerID the active player.
func (c *Client) SwitchPlayer(ctx context.Context, playerID string) (Players, error) {
	var resp Players
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("players/%s/switch", url.PathEscape(playerID)), nil, &resp)
	return resp, err
}

// SaveGame writes the session to a save slot.
func (c *Client) SaveGame(ctx context.Context, saveID, label string) (Save, error) {
	var resp Save
	err := c.do(ctx, http.MethodPost, "saves/"+url.PathEscape(saveID), map[string]any{"label": label}, &resp)
	return resp, err
}

// LoadGame replaces the session with a save slot.
func (c *Client) LoadGame(ctx context.Context, saveID string) (Save, error) {
	var resp Save
	err := c.do(ctx, http.MethodPost, "saves/"+url.PathEscape(saveID)+"/load", nil, &resp)
	return resp, err
}

// Saves lists save slots.
func (c *Client) Saves(ctx context.Context) ([]Save, error) {
	var resp struct {
		Items []Save `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "saves", nil, &resp)
	return resp.Items, err
}

// RunActionList runs a configured action list and returns the tracked objectives.
func (c *Client) RunActionList(ctx context.Context, name string) ([]Objective, error) {
	var resp struct {
		Items []Objective `json:"items"`
	}
	err := c.do(ctx, http.MethodPost, "actions/"+url.PathEscape(name)+"/run", nil, &resp)
	return resp.Items, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	page, err := c.EventsPage(ctx, limit, "")
	return page.Items, err
}

// EventsPage returns a paginated event listing.
func (c *Client) EventsPage(ctx context.Context, limit int, cursor string) (PaginatedEvents, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint := "events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp PaginatedEvents
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/v0/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.ActorID != "":
		req.Header.Set("X-Actor-Id", c.ActorID)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
		}
		return apiErr
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
