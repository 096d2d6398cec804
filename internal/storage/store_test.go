package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"catanrig/internal/game"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestGame() *game.State {
	rng := rand.New(rand.NewPCG(1, 2))
	return game.NewGame([]game.Color{"red", "blue", "white"}, game.DefaultRules(), rng)
}

func TestCreateAndGetGame(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateGame(ctx, "setup")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	row, err := s.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if row.ID != id {
		t.Fatalf("expected id %s, got %s", id, row.ID)
	}
	if row.Phase != "setup" {
		t.Fatalf("expected phase setup, got %s", row.Phase)
	}
	if row.Winner != "" {
		t.Fatalf("expected no winner, got %s", row.Winner)
	}
	if row.CreatedAt.IsZero() {
		t.Fatal("expected non-zero CreatedAt")
	}
}

func TestGetGameNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetGame(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListGames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateGame(ctx, "setup")
	s.CreateGame(ctx, "setup")
	s.CreateGame(ctx, "setup")
	if err := s.SaveState(ctx, a, 4, "main", "", `{"v":1}`); err != nil {
		t.Fatalf("save state: %v", err)
	}

	rows, err := s.ListGames(ctx, "")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 games, got %d", len(rows))
	}

	rows, err = s.ListGames(ctx, "main")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 main game, got %d", len(rows))
	}
	if rows[0].ID != a {
		t.Fatalf("expected game %s, got %s", a, rows[0].ID)
	}
}

func TestSaveStateUpsertsAndAppendsHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateGame(ctx, "setup")

	s.SaveState(ctx, id, 1, "main", "", `{"v":1}`)
	s.SaveState(ctx, id, 2, "ended", "red", `{"v":2}`)

	got, err := s.GetState(ctx, id)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got != `{"v":2}` {
		t.Fatalf("expected upserted value, got %s", got)
	}

	row, _ := s.GetGame(ctx, id)
	if row.Phase != "ended" || row.Winner != "red" {
		t.Fatalf("expected ended/red, got %s/%s", row.Phase, row.Winner)
	}

	history, err := s.History(ctx, id, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(history))
	}
	if history[0].Turn != 2 || history[1].Turn != 1 {
		t.Fatalf("expected newest first, got turns %d, %d", history[0].Turn, history[1].Turn)
	}
	if history[0].StateJSON != `{"v":2}` {
		t.Fatalf("unexpected snapshot %s", history[0].StateJSON)
	}
}

func TestHistoryLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateGame(ctx, "setup")
	for i := range 5 {
		s.SaveState(ctx, id, i+1, "main", "", fmt.Sprintf(`{"v":%d}`, i))
	}
	history, err := s.History(ctx, id, 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(history))
	}
	if history[0].Turn != 5 {
		t.Fatalf("expected turn 5 first, got %d", history[0].Turn)
	}
}

func TestSaveStateUnknownGame(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveState(context.Background(), "nonexistent", 1, "main", "", `{}`)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetStateNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetState(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteGameCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateGame(ctx, "setup")
	s.SaveState(ctx, id, 1, "main", "", `{"v":1}`)

	if err := s.DeleteGame(ctx, id); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	if _, err := s.GetGame(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.GetState(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for state after delete, got %v", err)
	}
	history, err := s.History(ctx, id, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no snapshots after delete, got %d", len(history))
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	st := newTestGame()

	r, err := StartGame(ctx, s, st)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	st.Game.Phase = game.PhaseMain
	st.Game.TurnNumber = 7
	st.Players[1].Resources[game.Ore] = 3
	if err := r.Record(ctx, st); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := r.LatestState(ctx)
	if err != nil {
		t.Fatalf("latest state: %v", err)
	}
	if got.Game.TurnNumber != 7 {
		t.Fatalf("expected turn 7, got %d", got.Game.TurnNumber)
	}
	if got.Players[1].Resources[game.Ore] != 3 {
		t.Fatalf("expected 3 ore, got %d", got.Players[1].Resources[game.Ore])
	}
	if len(got.Settlements) != len(st.Settlements) {
		t.Fatalf("expected %d settlements, got %d", len(st.Settlements), len(got.Settlements))
	}

	row, _ := s.GetGame(ctx, r.GameID)
	if row.Phase != "main" {
		t.Fatalf("expected phase main, got %s", row.Phase)
	}
	history, _ := r.History(ctx, 10)
	if len(history) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(history))
	}
}

func TestResumeLatestSkipsEndedGames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	open, err := StartGame(ctx, s, newTestGame())
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	done := newTestGame()
	done.Game.Phase = game.PhaseEnded
	done.Game.Winner = "red"
	if _, err := StartGame(ctx, s, done); err != nil {
		t.Fatalf("start game: %v", err)
	}

	r, st, err := ResumeLatest(ctx, s)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if r.GameID != open.GameID {
		t.Fatalf("expected game %s, got %s", open.GameID, r.GameID)
	}
	if st.Game.Phase != game.PhaseSetup {
		t.Fatalf("expected setup phase, got %s", st.Game.Phase)
	}
}

func TestResumeLatestEmpty(t *testing.T) {
	s := newTestStore(t)
	_, _, err := ResumeLatest(context.Background(), s)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f := FileStore{Path: path}
	st := newTestGame()
	st.Players[0].Resources[game.Wheat] = 4

	if err := f.Record(context.Background(), st); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Players[0].Resources[game.Wheat] != 4 {
		t.Fatalf("expected 4 wheat, got %d", got.Players[0].Resources[game.Wheat])
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected only the state file, got %d entries", len(entries))
	}
}

func TestFileStoreLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	os.WriteFile(path, []byte(`{"players":[]}`), 0o644)

	_, err := FileStore{Path: path}.Load()
	if !errors.Is(err, game.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	_, err := FileStore{Path: filepath.Join(t.TempDir(), "nope.json")}.Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
