package session

import (
	"context"

	"catanrig/internal/game"
)

// Detection contexts passed to a Detector.
const (
	ContextSetupPlacement    = "setup_placement"
	ContextPostSetupFinalize = "post_setup_finalize"
	ContextEndTurnDetection  = "end_turn_detection"
)

// Detector reads the physical board and updates the board part of s
// (settlements, roads, tiles, robber). c is empty when no single player is
// being attributed. The returned counts are only logged.
type Detector interface {
	Detect(ctx context.Context, s *game.State, label string, c game.Color) (map[string]int, error)
}

// ActionSource solicits moves from players.
type ActionSource interface {
	// NextAction blocks until p chooses an action.
	NextAction(ctx context.Context, p *game.Player, s *game.State) (game.Action, error)
	// ConfirmPlacement blocks until the player says their setup pieces are down.
	ConfirmPlacement(ctx context.Context, c game.Color) error
}

// Notifier is player feedback on the table. Calls are fire-and-forget.
type Notifier interface {
	TurnStarted(seat int, c game.Color)
	SetPlayerLight(c game.Color, on bool)
	ClearPlayerLights()
	ShowDice(r game.Roll)
	FlashWinner(c game.Color)
	Message(text string)
}

// Sink receives the state after every change worth publishing. It must not
// retain s after returning.
type Sink interface {
	Record(ctx context.Context, s *game.State) error
}

// Fanout forwards every notification to each notifier in order.
type Fanout []Notifier

func (f Fanout) TurnStarted(seat int, c game.Color) {
	for _, n := range f {
		n.TurnStarted(seat, c)
	}
}

func (f Fanout) SetPlayerLight(c game.Color, on bool) {
	for _, n := range f {
		n.SetPlayerLight(c, on)
	}
}

func (f Fanout) ClearPlayerLights() {
	for _, n := range f {
		n.ClearPlayerLights()
	}
}

func (f Fanout) ShowDice(r game.Roll) {
	for _, n := range f {
		n.ShowDice(r)
	}
}

func (f Fanout) FlashWinner(c game.Color) {
	for _, n := range f {
		n.FlashWinner(c)
	}
}

func (f Fanout) Message(text string) {
	for _, n := range f {
		n.Message(text)
	}
}
