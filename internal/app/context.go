package app

import (
	"context"
	"errors"
	"fmt"

	"questline/internal/config"
	"questline/internal/repo"
)

// DefaultGameID names the game seeded into an empty workspace.
const DefaultGameID = "questline"

// ResolveGameAndConfig picks the active game and ensures its config exists in the DB,
// seeding defaults if missing. It prefers the override, then a questline.yml in the
// workspace, then the single game stored in the DB.
func ResolveGameAndConfig(ctx context.Context, workspace, gameOverride string, r repo.Repo) (string, *config.Config, error) {
	gameID := gameOverride
	var fileCfg *config.Config
	if gameID == "" {
		id, err := r.SingleGame(ctx)
		switch {
		case err == nil:
			gameID = id
		case errors.Is(err, repo.ErrNotFound):
			fileCfg, err = config.LoadOptional(workspace)
			if err != nil {
				return "", nil, err
			}
			gameID = DefaultGameID
			if fileCfg != nil && fileCfg.Game.ID != "" {
				gameID = fileCfg.Game.ID
			}
		default:
			return "", nil, err
		}
	}

	cfg, err := r.GetGameConfig(ctx, gameID)
	if err == nil {
		cfg.Game.ID = gameID
		return gameID, cfg, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return "", nil, err
	}
	seed := fileCfg
	if seed == nil {
		seed = config.Default(gameID)
	}
	if err := r.UpsertGameConfig(ctx, gameID, seed); err != nil {
		return "", nil, fmt.Errorf("seed game config: %w", err)
	}
	return gameID, seed, nil
}
