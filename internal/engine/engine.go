package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"questline/internal/actions"
	"questline/internal/catalog"
	"questline/internal/config"
	"questline/internal/domain"
	"questline/internal/events"
	"questline/internal/objectives"
	"questline/internal/repo"
)

// AutosaveID is the slot the CLI reads and writes between invocations.
const AutosaveID = "autosave"

var (
	ErrUnknownObjective      = errors.New("unknown objective")
	ErrPlayerSwitchingDenied = errors.New("player switching is not allowed")
)

type Engine struct {
	DB      *sql.DB
	Repo    repo.Repo
	Events  events.Writer
	Config  *config.Config
	Catalog *catalog.Catalog
	Session *Session
	Now     func() time.Time
}

// Session is the live state of one running game.
type Session struct {
	mu       sync.Mutex
	registry *objectives.Registry
	notes    *events.Buffer
	saveID   string
	playerID string
	// stashed objective blobs of the players that are not currently active
	players map[string]string
}

// NewSession returns an empty session whose registry routes per-player
// objectives according to cfg.
func NewSession(cfg *config.Config, cat *catalog.Catalog, logger *log.Logger) *Session {
	notes := &events.Buffer{}
	s := &Session{
		notes:    notes,
		playerID: cfg.Settings.DefaultPlayer,
		players:  make(map[string]string),
	}
	s.registry = objectives.New(objectives.Options{
		Catalog:         cat,
		Notifier:        notes,
		PlayerSwitching: func() bool { return cfg.Settings.AllowsPlayerSwitching() },
		Logger:          logger,
	})
	return s
}

func New(db *sql.DB, cfg *config.Config) Engine {
	cat := catalog.New(cfg.Objectives)
	return Engine{
		DB:      db,
		Repo:    repo.Repo{DB: db},
		Events:  events.Writer{DB: db},
		Config:  cfg,
		Catalog: cat,
		Session: NewSession(cfg, cat, nil),
		Now:     time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) gameID() string {
	return e.Config.Game.ID
}

// flush writes buffered registry notifications plus extra to the event log.
// Registry notifications stay buffered until the transaction commits.
// Callers hold the session lock.
func (e Engine) flush(ctx context.Context, actorID string, extra ...events.Pending) error {
	pending := append(e.Session.notes.Peek(), extra...)
	if len(pending) == 0 {
		return nil
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, p := range pending {
		kind := "objective"
		if p.Kind != "" {
			kind = p.Kind
		}
		if err := e.Events.Append(ctx, tx, p.Type, e.gameID(), e.Session.saveID, kind, p.EntityID, actorID, p.Payload); err != nil {
			return fmt.Errorf("append %s event: %w", p.Type, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	e.Session.notes.Drain()
	return nil
}

func selectionCleared(objectiveID int) events.Pending {
	return events.Pending{
		Type:     events.TypeSelectionCleared,
		EntityID: strconv.Itoa(objectiveID),
		Payload:  events.EventPayload{"objective_id": objectiveID},
	}
}

func (e Engine) status(inst *objectives.Instance) domain.ObjectiveStatus {
	return e.Session.registry.Status(inst)
}

// SetObjectiveState runs the registry operation and records the resulting notifications.
func (e Engine) SetObjectiveState(ctx context.Context, objectiveID, newStateID int, selectAfter bool, actorID string) (domain.ObjectiveStatus, error) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.SetObjectiveState(objectiveID, newStateID, selectAfter)
	inst, ok := s.registry.GetObjective(objectiveID)
	if !ok {
		return domain.ObjectiveStatus{}, fmt.Errorf("objective %d: %w", objectiveID, ErrUnknownObjective)
	}
	if err := e.flush(ctx, actorID); err != nil {
		return domain.ObjectiveStatus{}, err
	}
	return e.status(inst), nil
}

// CancelObjective stops tracking an objective; untracked IDs are a no-op.
func (e Engine) CancelObjective(ctx context.Context, objectiveID int, actorID string) error {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registry.GetObjective(objectiveID); !ok {
		return nil
	}
	s.registry.CancelObjective(objectiveID)
	return e.flush(ctx, actorID, events.Pending{
		Type:     events.TypeObjectiveCanceled,
		EntityID: strconv.Itoa(objectiveID),
		Payload:  events.EventPayload{"objective_id": objectiveID},
	})
}

// Objective returns the tracked status of one objective.
func (e Engine) Objective(objectiveID int) (domain.ObjectiveStatus, error) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.registry.GetObjective(objectiveID)
	if !ok {
		return domain.ObjectiveStatus{}, fmt.Errorf("objective %d not tracked: %w", objectiveID, repo.ErrNotFound)
	}
	return e.status(inst), nil
}

// ObjectiveFilter narrows Objectives. Empty fields match everything.
type ObjectiveFilter struct {
	StateType   domain.StateType
	DisplayType domain.DisplayType
}

func (e Engine) Objectives(filter ObjectiveFilter) []domain.ObjectiveStatus {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*objectives.Instance
	switch {
	case filter.StateType != "":
		list = s.registry.GetObjectivesByStateType(filter.StateType)
	case filter.DisplayType != "":
		list = s.registry.GetObjectivesByDisplayType(filter.DisplayType)
	default:
		list = s.registry.GetObjectives()
	}
	res := make([]domain.ObjectiveStatus, 0, len(list))
	for _, inst := range list {
		if filter.StateType != "" && filter.DisplayType != "" {
			st, ok := inst.CurrentState()
			if !ok || !st.DisplayTypeMatches(filter.DisplayType) {
				continue
			}
		}
		res = append(res, e.status(inst))
	}
	return res
}

// SelectObjective selects a tracked objective; an untracked ID clears the selection.
func (e Engine) SelectObjective(ctx context.Context, objectiveID int, actorID string) (domain.ObjectiveStatus, bool, error) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, hadSelection := s.registry.SelectedObjective()
	s.registry.SelectObjective(objectiveID)
	inst, ok := s.registry.SelectedObjective()
	var extra []events.Pending
	if hadSelection && !ok {
		extra = append(extra, selectionCleared(prev.ObjectiveID()))
	}
	if err := e.flush(ctx, actorID, extra...); err != nil {
		return domain.ObjectiveStatus{}, false, err
	}
	if !ok {
		return domain.ObjectiveStatus{}, false, nil
	}
	return e.status(inst), true, nil
}

func (e Engine) DeselectObjective(ctx context.Context, actorID string) error {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.registry.SelectedObjective()
	if !ok {
		return nil
	}
	s.registry.DeselectObjective()
	return e.flush(ctx, actorID, selectionCleared(inst.ObjectiveID()))
}

func (e Engine) Selected() (domain.ObjectiveStatus, bool) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.registry.SelectedObjective()
	if !ok {
		return domain.ObjectiveStatus{}, false
	}
	return e.status(inst), true
}

// CurrentPlayer returns the active player and the save slot the session is bound to.
func (e Engine) CurrentPlayer() (playerID, saveID string) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID, s.saveID
}

// RunActionList runs a configured action list against the session.
func (e Engine) RunActionList(ctx context.Context, name, actorID string) error {
	entries, ok := e.Config.ActionLists[name]
	if !ok {
		return fmt.Errorf("action list %s: %w", name, repo.ErrNotFound)
	}
	list, err := actions.FromConfig(name, entries)
	if err != nil {
		return err
	}
	if err := list.Validate(e.Catalog); err != nil {
		return err
	}
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	list.Run(s.registry)
	return e.flush(ctx, actorID, events.Pending{
		Type:     events.TypeActionListRun,
		Kind:     "action_list",
		EntityID: name,
		Payload:  events.EventPayload{"actions": len(list.Actions)},
	})
}

// NewGame discards all objective data and returns to the default player.
func (e Engine) NewGame(ctx context.Context, actorID string) error {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.ClearAll()
	s.notes.Drain()
	s.players = make(map[string]string)
	s.playerID = e.Config.Settings.DefaultPlayer
	s.saveID = ""
	return e.flush(ctx, actorID, events.Pending{
		Type:     events.TypeGameNew,
		Kind:     "game",
		EntityID: e.gameID(),
		Payload:  events.EventPayload{"player_id": s.playerID},
	})
}

// SwitchPlayer makes playerID the active player, swapping per-player objectives.
func (e Engine) SwitchPlayer(ctx context.Context, playerID, actorID string) error {
	if !e.Config.Settings.AllowsPlayerSwitching() {
		return ErrPlayerSwitchingDenied
	}
	if !e.Config.Settings.HasPlayer(playerID) {
		return fmt.Errorf("player %s: %w", playerID, repo.ErrNotFound)
	}
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	if playerID == s.playerID {
		return nil
	}
	previous := s.playerID
	s.players[previous] = s.registry.SavePlayerObjectives()
	s.registry.ClearUniqueToPlayer()
	s.registry.LoadPlayerObjectives(s.players[playerID])
	delete(s.players, playerID)
	s.playerID = playerID
	return e.flush(ctx, actorID, events.Pending{
		Type:     events.TypePlayerSwitched,
		Kind:     "player",
		EntityID: playerID,
		Payload:  events.EventPayload{"from": previous, "to": playerID},
	})
}

// SaveGame writes the session to a save slot. An empty saveID creates a new slot.
func (e Engine) SaveGame(ctx context.Context, saveID, label, actorID string) (domain.MainData, error) {
	if saveID == "" {
		saveID = uuid.NewString()
	}
	return e.save(ctx, saveID, label, actorID, true)
}

// Checkpoint writes the session to the autosave slot without recording an event.
func (e Engine) Checkpoint(ctx context.Context, actorID string) error {
	_, err := e.save(ctx, AutosaveID, "", actorID, false)
	return err
}

func (e Engine) save(ctx context.Context, saveID, label, actorID string, record bool) (domain.MainData, error) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.MainData{}, err
	}
	defer tx.Rollback()
	md, err := e.writeSlotTx(ctx, tx, saveID, label)
	if err != nil {
		return domain.MainData{}, err
	}
	if record {
		if err := e.Events.Append(ctx, tx, events.TypeGameSaved, e.gameID(), saveID, "save", saveID, actorID, events.EventPayload{
			"player_id": s.playerID,
			"players":   len(s.players) + 1,
		}); err != nil {
			return domain.MainData{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.MainData{}, err
	}
	if record {
		s.saveID = saveID
	}
	return md, nil
}

// writeSlotTx stores the session in a save slot of this game. An existing
// slot keeps its creation time and, when label is empty, its label.
// Callers hold the session lock.
func (e Engine) writeSlotTx(ctx context.Context, tx *sql.Tx, saveID, label string) (domain.MainData, error) {
	s := e.Session
	now := e.now().UTC().Format(time.RFC3339)
	createdAt := now
	existing, err := e.Repo.GetMainDataTx(ctx, tx, e.gameID(), saveID)
	switch {
	case err == nil:
		createdAt = existing.CreatedAt
		if label == "" {
			label = existing.Label
		}
	case !errors.Is(err, repo.ErrNotFound):
		return domain.MainData{}, err
	}
	md := domain.MainData{
		SaveID:              saveID,
		Label:               label,
		CurrentPlayerID:     s.playerID,
		GlobalObjectives:    s.registry.SaveGlobalObjectives(),
		SelectedObjectiveID: -1,
		CreatedAt:           createdAt,
		UpdatedAt:           now,
	}
	if inst, ok := s.registry.SelectedObjective(); ok {
		md.SelectedObjectiveID = inst.ObjectiveID()
	}
	blobs := make(map[string]string, len(s.players)+1)
	for id, blob := range s.players {
		blobs[id] = blob
	}
	blobs[s.playerID] = s.registry.SavePlayerObjectives()

	if err := e.Repo.UpsertMainDataTx(ctx, tx, e.gameID(), md); err != nil {
		return domain.MainData{}, fmt.Errorf("save main data: %w", err)
	}
	for id, blob := range blobs {
		pd := domain.PlayerData{SaveID: saveID, PlayerID: id, PlayerObjectives: blob, UpdatedAt: now}
		if err := e.Repo.UpsertPlayerDataTx(ctx, tx, e.gameID(), pd); err != nil {
			return domain.MainData{}, fmt.Errorf("save player %s: %w", id, err)
		}
	}
	return md, nil
}

// Start begins a new game and, in one transaction, stores the game config
// and an empty autosave slot.
func (e Engine) Start(ctx context.Context, actorID string) error {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.ClearAll()
	s.notes.Drain()
	s.players = make(map[string]string)
	s.playerID = e.Config.Settings.DefaultPlayer
	s.saveID = ""

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.UpsertGameConfigTx(ctx, tx, e.gameID(), e.Config); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if _, err := e.writeSlotTx(ctx, tx, AutosaveID, ""); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, events.TypeGameNew, e.gameID(), "", "game", e.gameID(), actorID, events.EventPayload{
		"player_id": s.playerID,
	}); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadGame replaces the session with the contents of a save slot.
func (e Engine) LoadGame(ctx context.Context, saveID, actorID string) (domain.MainData, error) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	md, err := e.restoreLocked(ctx, saveID)
	if err != nil {
		return domain.MainData{}, err
	}
	s.saveID = saveID
	if err := e.flush(ctx, actorID, events.Pending{
		Type:     events.TypeGameLoaded,
		Kind:     "save",
		EntityID: saveID,
		Payload:  events.EventPayload{"player_id": s.playerID},
	}); err != nil {
		return domain.MainData{}, err
	}
	return md, nil
}

// Resume restores the autosave slot without recording an event. It reports
// false when no autosave exists yet.
func (e Engine) Resume(ctx context.Context) (bool, error) {
	s := e.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := e.restoreLocked(ctx, AutosaveID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// restoreLocked replaces the session with a save slot of this game.
// Callers hold the session lock.
func (e Engine) restoreLocked(ctx context.Context, saveID string) (domain.MainData, error) {
	md, err := e.Repo.GetMainData(ctx, e.gameID(), saveID)
	if err != nil {
		return domain.MainData{}, fmt.Errorf("save %s: %w", saveID, err)
	}
	players, err := e.Repo.ListPlayerData(ctx, e.gameID(), saveID)
	if err != nil {
		return domain.MainData{}, err
	}
	s := e.Session
	s.registry.ClearAll()
	s.players = make(map[string]string, len(players))
	for _, pd := range players {
		s.players[pd.PlayerID] = pd.PlayerObjectives
	}
	s.playerID = md.CurrentPlayerID
	if s.playerID == "" {
		s.playerID = e.Config.Settings.DefaultPlayer
	}
	s.registry.LoadGlobalObjectives(md.GlobalObjectives)
	s.registry.LoadPlayerObjectives(s.players[s.playerID])
	delete(s.players, s.playerID)
	if md.SelectedObjectiveID >= 0 {
		s.registry.SelectObjective(md.SelectedObjectiveID)
	}
	// restoring a save is not a gameplay change
	s.notes.Drain()
	s.saveID = ""
	return md, nil
}
