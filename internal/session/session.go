package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"catanrig/internal/game"
)

var (
	ErrNoPlayers = errors.New("game has no players")
	ErrNotPaused = errors.New("game is not paused")
)

// DefaultMaxTurns caps a single Run when no cap is configured.
const DefaultMaxTurns = 200

// Options wires a session to its collaborators. Actions is required; the
// rest may be nil.
type Options struct {
	ID            string
	Actions       ActionSource
	Detector      Detector
	Notifier      Notifier
	Sinks         []Sink
	Placer        game.Placer
	MaxTurns      int
	ActionTimeout time.Duration
	Logger        *slog.Logger
}

// Session owns one game: its state, the engine and its RNG, and the
// collaborators the turn loop talks to. Only the loop mutates the state;
// readers go through Snapshot.
type Session struct {
	mu     sync.RWMutex
	ID     string
	state  *game.State
	engine *game.Engine

	actions       ActionSource
	detector      Detector
	notifier      Notifier
	sinks         []Sink
	placer        game.Placer
	maxTurns      int
	actionTimeout time.Duration
	log           *slog.Logger
}

// New validates state and builds a session around it. An empty player list
// is a configuration error.
func New(state *game.State, engine *game.Engine, opts Options) (*Session, error) {
	if state == nil || len(state.Players) == 0 {
		return nil, ErrNoPlayers
	}
	if opts.Actions == nil {
		return nil, fmt.Errorf("session %s: no action source", opts.ID)
	}
	s := &Session{
		ID:            opts.ID,
		state:         state,
		engine:        engine,
		actions:       opts.Actions,
		detector:      opts.Detector,
		notifier:      opts.Notifier,
		sinks:         opts.Sinks,
		placer:        opts.Placer,
		maxTurns:      opts.MaxTurns,
		actionTimeout: opts.ActionTimeout,
		log:           opts.Logger,
	}
	if s.notifier == nil {
		s.notifier = Fanout{}
	}
	if s.maxTurns <= 0 {
		s.maxTurns = DefaultMaxTurns
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	s.log = s.log.With("game", s.ID)
	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() (*game.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() game.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Game.Phase
}

// Resume moves a game stopped by the turn cap back to the main phase.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Game.Phase != game.PhasePaused {
		return fmt.Errorf("%w: phase %s", ErrNotPaused, s.state.Game.Phase)
	}
	s.state.Game.Phase = game.PhaseMain
	s.log.Info("game resumed", "turn", s.state.Game.TurnNumber)
	return nil
}
