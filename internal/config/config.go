package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"questline/internal/domain"
)

const (
	PlayerSwitchingAllow      = "allow"
	PlayerSwitchingDoNotAllow = "do_not_allow"
)

// Config models questline.yml.
type Config struct {
	Game struct {
		ID    string `yaml:"id" json:"id"`
		Title string `yaml:"title,omitempty" json:"title,omitempty"`
	} `yaml:"game" json:"game"`
	Settings    Settings                  `yaml:"settings" json:"settings"`
	Objectives  []domain.Objective        `yaml:"objectives" json:"objectives"`
	ActionLists map[string][]ActionConfig `yaml:"action_lists,omitempty" json:"action_lists,omitempty"`
	Webhooks    []WebhookConfig           `yaml:"webhooks,omitempty" json:"webhooks,omitempty"`
}

type Settings struct {
	PlayerSwitching string   `yaml:"player_switching" json:"player_switching"`
	DefaultPlayer   string   `yaml:"default_player" json:"default_player"`
	Players         []string `yaml:"players,omitempty" json:"players,omitempty"`
}

// AllowsPlayerSwitching reports whether per-player objectives are tracked separately.
func (s Settings) AllowsPlayerSwitching() bool {
	return s.PlayerSwitching == PlayerSwitchingAllow
}

// HasPlayer reports whether id is a configured player.
func (s Settings) HasPlayer(id string) bool {
	if id == s.DefaultPlayer {
		return true
	}
	for _, p := range s.Players {
		if p == id {
			return true
		}
	}
	return false
}

// ActionConfig is one entry of an action list. Exactly one action field must be set.
type ActionConfig struct {
	ObjectiveSet *ObjectiveSetConfig `yaml:"objective_set,omitempty" json:"objective_set,omitempty"`
}

type ObjectiveSetConfig struct {
	ObjectiveID int  `yaml:"objective_id" json:"objective_id"`
	NewStateID  int  `yaml:"new_state_id" json:"new_state_id"`
	SelectAfter bool `yaml:"select_after,omitempty" json:"select_after,omitempty"`
}

type WebhookConfig struct {
	URL    string   `yaml:"url" json:"url"`
	Events []string `yaml:"events,omitempty" json:"events,omitempty"`
	Secret string   `yaml:"secret,omitempty" json:"secret,omitempty"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; import with ql config import --file <path>", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Game.ID == "" {
		return fmt.Errorf("config.game.id is required")
	}
	switch c.Settings.PlayerSwitching {
	case PlayerSwitchingAllow, PlayerSwitchingDoNotAllow:
	default:
		return fmt.Errorf("config.settings.player_switching must be '%s' or '%s'", PlayerSwitchingAllow, PlayerSwitchingDoNotAllow)
	}
	if c.Settings.DefaultPlayer == "" {
		return fmt.Errorf("config.settings.default_player is required")
	}
	for _, p := range c.Settings.Players {
		if p == "" {
			return fmt.Errorf("config.settings.players contains empty player id")
		}
	}
	seen := make(map[int]bool, len(c.Objectives))
	for _, o := range c.Objectives {
		if o.ID < 0 {
			return fmt.Errorf("objective %d has negative id", o.ID)
		}
		if seen[o.ID] {
			return fmt.Errorf("objective id %d defined twice", o.ID)
		}
		seen[o.ID] = true
		if o.Title == "" {
			return fmt.Errorf("objective %d has empty title", o.ID)
		}
		if len(o.States) == 0 {
			return fmt.Errorf("objective %d has no states", o.ID)
		}
		states := make(map[int]bool, len(o.States))
		for _, s := range o.States {
			if states[s.ID] {
				return fmt.Errorf("objective %d defines state %d twice", o.ID, s.ID)
			}
			states[s.ID] = true
			if !s.Type.Valid() {
				return fmt.Errorf("objective %d state %d has invalid type %q", o.ID, s.ID, s.Type)
			}
		}
	}
	for name, list := range c.ActionLists {
		if name == "" {
			return fmt.Errorf("config.action_lists contains empty name")
		}
		for i, a := range list {
			if a.ObjectiveSet == nil {
				return fmt.Errorf("action list %s entry %d has no action", name, i)
			}
			if !seen[a.ObjectiveSet.ObjectiveID] {
				return fmt.Errorf("action list %s entry %d references unknown objective %d", name, i, a.ObjectiveSet.ObjectiveID)
			}
		}
	}
	for i, hook := range c.Webhooks {
		if hook.URL == "" {
			return fmt.Errorf("webhook %d has empty url", i)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "questline.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault(gameID string) string {
	return fmt.Sprintf(defaultTemplate, gameID)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config struct for a game.
func Default(gameID string) *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(GenerateDefault(gameID))).Decode(&cfg)
	cfg.Game.ID = gameID
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `game:
  id: %s
  title: "Untitled adventure"

settings:
  player_switching: allow
  default_player: hero
  players: [hero, sidekick]

objectives:
  - id: 0
    title: "Find the lighthouse key"
    per_player: false
    states:
      - {id: 0, label: "Started", type: active}
      - {id: 1, label: "Completed", type: complete}
      - {id: 2, label: "Failed", type: fail}
  - id: 1
    title: "Learn the sidekick's secret"
    per_player: true
    states:
      - {id: 0, label: "Started", type: active}
      - {id: 1, label: "Overheard a rumour", type: active}
      - {id: 2, label: "Completed", type: complete}
      - {id: 3, label: "Failed", type: fail}

action_lists:
  intro:
    - objective_set: {objective_id: 0, new_state_id: 0, select_after: true}
`
