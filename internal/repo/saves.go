package repo

import (
	"context"
	"database/sql"

	"questline/internal/domain"
)

const mainDataColumns = `id, COALESCE(label,''), current_player_id, global_objectives, selected_objective_id, created_at, updated_at`

func scanMainData(scan func(dest ...any) error) (domain.MainData, error) {
	var md domain.MainData
	var selected sql.NullInt64
	if err := scan(&md.SaveID, &md.Label, &md.CurrentPlayerID, &md.GlobalObjectives, &selected, &md.CreatedAt, &md.UpdatedAt); err != nil {
		return md, err
	}
	if selected.Valid {
		md.SelectedObjectiveID = int(selected.Int64)
	} else {
		md.SelectedObjectiveID = -1
	}
	return md, nil
}

// UpsertMainDataTx writes the shared part of a save slot. A negative
// SelectedObjectiveID stores "nothing selected".
func (r Repo) UpsertMainDataTx(ctx context.Context, tx *sql.Tx, gameID string, md domain.MainData) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO saves(id, game_id, label, current_player_id, global_objectives, selected_objective_id, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?)
ON CONFLICT(game_id, id) DO UPDATE SET label=excluded.label, current_player_id=excluded.current_player_id,
  global_objectives=excluded.global_objectives, selected_objective_id=excluded.selected_objective_id, updated_at=excluded.updated_at`,
		md.SaveID, gameID, nullable(md.Label), md.CurrentPlayerID, md.GlobalObjectives,
		nullableInt(md.SelectedObjectiveID, md.SelectedObjectiveID >= 0), md.CreatedAt, md.UpdatedAt)
	return err
}

const mainDataByID = `SELECT ` + mainDataColumns + ` FROM saves WHERE game_id=? AND id=?`

// GetMainData returns a save slot of a game. Slot ids are only unique within a game.
func (r Repo) GetMainData(ctx context.Context, gameID, saveID string) (domain.MainData, error) {
	return mainDataRow(r.DB.QueryRowContext(ctx, mainDataByID, gameID, saveID))
}

func (r Repo) GetMainDataTx(ctx context.Context, tx *sql.Tx, gameID, saveID string) (domain.MainData, error) {
	return mainDataRow(tx.QueryRowContext(ctx, mainDataByID, gameID, saveID))
}

func mainDataRow(row *sql.Row) (domain.MainData, error) {
	md, err := scanMainData(row.Scan)
	if err == sql.ErrNoRows {
		return md, ErrNotFound
	}
	return md, err
}

// ListSaves returns the save slots of a game, most recently updated first.
func (r Repo) ListSaves(ctx context.Context, gameID string) ([]domain.MainData, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+mainDataColumns+` FROM saves WHERE game_id=? ORDER BY updated_at DESC, id ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.MainData
	for rows.Next() {
		md, err := scanMainData(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, md)
	}
	return res, rows.Err()
}

func (r Repo) DeleteSave(ctx context.Context, gameID, saveID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM saves WHERE game_id=? AND id=?`, gameID, saveID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpsertPlayerDataTx(ctx context.Context, tx *sql.Tx, gameID string, pd domain.PlayerData) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO player_saves(game_id, save_id, player_id, player_objectives, updated_at) VALUES (?,?,?,?,?)
ON CONFLICT(game_id, save_id, player_id) DO UPDATE SET player_objectives=excluded.player_objectives, updated_at=excluded.updated_at`,
		gameID, pd.SaveID, pd.PlayerID, pd.PlayerObjectives, pd.UpdatedAt)
	return err
}

func (r Repo) ListPlayerData(ctx context.Context, gameID, saveID string) ([]domain.PlayerData, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT save_id, player_id, player_objectives, updated_at FROM player_saves WHERE game_id=? AND save_id=? ORDER BY player_id ASC`, gameID, saveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.PlayerData
	for rows.Next() {
		var pd domain.PlayerData
		if err := rows.Scan(&pd.SaveID, &pd.PlayerID, &pd.PlayerObjectives, &pd.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, pd)
	}
	return res, rows.Err()
}
