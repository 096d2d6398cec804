package server

import (
	"context"
	"errors"
	"fmt"

	"catanrig/internal/game"
)

var (
	ErrQueueFull = errors.New("action queue is full")
	ErrNoAction  = errors.New("action has no type")
)

// ActionQueue is an action source fed over HTTP and websocket. The game loop
// takes actions and placement confirmations in the order they arrive.
type ActionQueue struct {
	actions  chan game.Action
	confirms chan struct{}
}

// NewActionQueue buffers up to size actions and size confirmations.
func NewActionQueue(size int) *ActionQueue {
	if size <= 0 {
		size = 8
	}
	return &ActionQueue{
		actions:  make(chan game.Action, size),
		confirms: make(chan struct{}, size),
	}
}

// Submit queues a for the current player without blocking.
func (q *ActionQueue) Submit(a game.Action) error {
	if a.Type == "" {
		return ErrNoAction
	}
	select {
	case q.actions <- a:
		return nil
	default:
		return ErrQueueFull
	}
}

// Confirm queues one placement confirmation without blocking.
func (q *ActionQueue) Confirm() error {
	select {
	case q.confirms <- struct{}{}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports how many actions are queued.
func (q *ActionQueue) Pending() int { return len(q.actions) }

func (q *ActionQueue) NextAction(ctx context.Context, p *game.Player, _ *game.State) (game.Action, error) {
	select {
	case a := <-q.actions:
		return a, nil
	case <-ctx.Done():
		return game.Action{}, fmt.Errorf("waiting for %s: %w", p.Color, ctx.Err())
	}
}

func (q *ActionQueue) ConfirmPlacement(ctx context.Context, c game.Color) error {
	select {
	case <-q.confirms:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s to place: %w", c, ctx.Err())
	}
}
