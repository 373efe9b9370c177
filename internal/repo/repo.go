package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"questline/internal/config"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func (r Repo) UpsertGameConfig(ctx context.Context, gameID string, cfg *config.Config) error {
	return upsertGameConfig(ctx, r.DB, nil, gameID, cfg)
}

func (r Repo) UpsertGameConfigTx(ctx context.Context, tx *sql.Tx, gameID string, cfg *config.Config) error {
	return upsertGameConfig(ctx, nil, tx, gameID, cfg)
}

func upsertGameConfig(ctx context.Context, db *sql.DB, tx *sql.Tx, gameID string, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config nil")
	}
	cfg.Game.ID = gameID
	if err := cfg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	exec := func(query string, args ...any) (sql.Result, error) {
		if tx != nil {
			return tx.ExecContext(ctx, query, args...)
		}
		return db.ExecContext(ctx, query, args...)
	}
	_, err = exec(`INSERT INTO game_configs(game_id,config_json,created_at,updated_at) VALUES (?,?,?,?)
ON CONFLICT(game_id) DO UPDATE SET config_json=excluded.config_json, updated_at=excluded.updated_at`, gameID, string(payload), now, now)
	return err
}

func (r Repo) GetGameConfig(ctx context.Context, gameID string) (*config.Config, error) {
	var payload string
	err := r.DB.QueryRowContext(ctx, `SELECT config_json FROM game_configs WHERE game_id=?`, gameID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return nil, err
	}
	if cfg.Game.ID == "" {
		cfg.Game.ID = gameID
	}
	return &cfg, cfg.Validate()
}

// SingleGame returns the only configured game id, or ErrNotFound when none exists.
func (r Repo) SingleGame(ctx context.Context) (string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT game_id FROM game_configs ORDER BY game_id`)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNotFound
	}
	if len(ids) > 1 {
		return "", fmt.Errorf("multiple games exist; specify --game")
	}
	return ids[0], nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableInt(v int, ok bool) any {
	if !ok {
		return nil
	}
	return v
}
