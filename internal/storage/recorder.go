package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"catanrig/internal/game"
)

// Recorder saves a game's state to the Store after every change.
type Recorder struct {
	store  *Store
	GameID string
}

// NewRecorder records into an existing game.
func NewRecorder(store *Store, gameID string) *Recorder {
	return &Recorder{store: store, GameID: gameID}
}

// StartGame creates a game row for s and returns a recorder for it.
func StartGame(ctx context.Context, store *Store, s *game.State) (*Recorder, error) {
	id, err := store.CreateGame(ctx, string(s.Game.Phase))
	if err != nil {
		return nil, err
	}
	r := NewRecorder(store, id)
	if err := r.Record(ctx, s); err != nil {
		return nil, err
	}
	return r, nil
}

// Record stores s as the game's latest state and appends it to the history.
func (r *Recorder) Record(ctx context.Context, s *game.State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return r.store.SaveState(ctx, r.GameID, s.Game.TurnNumber, string(s.Game.Phase), string(s.Game.Winner), string(data))
}

// LatestState loads the game's latest state.
func (r *Recorder) LatestState(ctx context.Context) (*game.State, error) {
	data, err := r.store.GetState(ctx, r.GameID)
	if err != nil {
		return nil, err
	}
	return game.Decode(strings.NewReader(data))
}

// History returns the game's recent snapshots, newest first.
func (r *Recorder) History(ctx context.Context, limit int) ([]SnapshotRow, error) {
	return r.store.History(ctx, r.GameID, limit)
}

// ResumeLatest finds the most recently updated game that has not ended and
// returns a recorder for it along with its state. It returns ErrNotFound
// when there is none.
func ResumeLatest(ctx context.Context, store *Store) (*Recorder, *game.State, error) {
	games, err := store.ListGames(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("list games: %w", err)
	}
	for _, g := range games {
		if g.Phase == string(game.PhaseEnded) {
			continue
		}
		r := NewRecorder(store, g.ID)
		s, err := r.LatestState(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load game %s: %w", g.ID, err)
		}
		return r, s, nil
	}
	return nil, nil, fmt.Errorf("unfinished game: %w", ErrNotFound)
}
