package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a game or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// GameRow is one game in the database.
type GameRow struct {
	ID        string    `json:"id"`
	Phase     string    `json:"phase"`
	Winner    string    `json:"winner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotRow is one recorded state of a game.
type SnapshotRow struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase"`
	StateJSON string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: a single writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %s: %w", p, err)
		}
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateGame inserts a new game and returns its id.
func (s *Store) CreateGame(ctx context.Context, phase string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, "INSERT INTO games (id, phase) VALUES (?, ?)", id, phase)
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

// GetGame retrieves a game by id.
func (s *Store) GetGame(ctx context.Context, id string) (*GameRow, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, phase, winner, created_at, updated_at FROM games WHERE id = ?", id)
	var g GameRow
	if err := row.Scan(&g.ID, &g.Phase, &g.Winner, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &g, nil
}

// ListGames returns all games in the given phase (or all if phase is empty),
// most recently updated first.
func (s *Store) ListGames(ctx context.Context, phase string) ([]GameRow, error) {
	const cols = "SELECT id, phase, winner, created_at, updated_at FROM games"
	var rows *sql.Rows
	var err error
	if phase == "" {
		rows, err = s.db.QueryContext(ctx, cols+" ORDER BY updated_at DESC, rowid DESC")
	} else {
		rows, err = s.db.QueryContext(ctx, cols+" WHERE phase = ? ORDER BY updated_at DESC, rowid DESC", phase)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []GameRow
	for rows.Next() {
		var g GameRow
		if err := rows.Scan(&g.ID, &g.Phase, &g.Winner, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// SaveState upserts the current state of a game, appends it to the game's
// history and updates the game row, all in one transaction.
func (s *Store) SaveState(ctx context.Context, gameID string, turn int, phase, winner, stateJSON string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE games SET phase = ?, winner = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		phase, winner, gameID)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO game_state (game_id, state_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(game_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at
	`, gameID, stateJSON); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO turn_snapshots (game_id, turn, phase, state_json) VALUES (?, ?, ?, ?)",
		gameID, turn, phase, stateJSON); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return tx.Commit()
}

// GetState retrieves the latest state JSON of a game.
func (s *Store) GetState(ctx context.Context, gameID string) (string, error) {
	var stateJSON string
	err := s.db.QueryRowContext(ctx, "SELECT state_json FROM game_state WHERE game_id = ?", gameID).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("state of %s: %w", gameID, ErrNotFound)
	}
	return stateJSON, err
}

// History returns up to limit snapshots of a game, newest first.
func (s *Store) History(ctx context.Context, gameID string, limit int) ([]SnapshotRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, turn, phase, state_json, created_at
		FROM turn_snapshots WHERE game_id = ? ORDER BY id DESC LIMIT ?
	`, gameID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []SnapshotRow
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.ID, &r.GameID, &r.Turn, &r.Phase, &r.StateJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteGame removes a game, its state and its history.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	return err
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
