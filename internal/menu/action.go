package menu

import (
	"context"
	"fmt"
	"log/slog"

	"catanrig/internal/game"
	"catanrig/internal/protocol"
)

// ActionFor translates a menu event into the action the turn loop
// dispatches. A port trade has no resource picker on the display and is
// sent as wood for brick at the default bank rate (Rate 0).
func ActionFor(ev *protocol.MenuEvent) (game.Action, error) {
	switch ev.Type {
	case protocol.EventEndTurn:
		return game.EndTurn, nil
	case protocol.EventBuyDevCard:
		return game.Action{Type: game.ActionBuyDevelopmentCard}, nil
	case protocol.EventUseDevCard:
		card, ok := protocol.DevCardFromID(ev.Card)
		if !ok {
			return game.Action{}, fmt.Errorf("%w: card id %d", protocol.ErrMalformed, ev.Card)
		}
		return game.Action{Type: game.ActionUseDevelopmentCard, Card: card}, nil
	case protocol.EventTradePlayer:
		a := game.Action{Type: game.ActionTradePlayer, Target: int(ev.Target)}
		for i := range 5 {
			a.Offer = append(a.Offer, int(ev.Give[i]))
			a.Request = append(a.Request, int(ev.Receive[i]))
		}
		return a, nil
	case protocol.EventTradePort:
		return game.Action{Type: game.ActionTradeBank, Give: game.Wood, Get: game.Brick}, nil
	}
	return game.Action{}, fmt.Errorf("%w: %s", protocol.ErrMalformed, ev.Type)
}

// Input is a rotary encoder. Read blocks until the knob turns or the button
// is pressed.
type Input interface {
	Read(ctx context.Context) (delta int, pressed bool, err error)
}

// Source solicits actions by running the menu on a local encoder and
// display.
type Source struct {
	Menu   *Menu
	Input  Input
	Render func(*protocol.MenuRender) error
	Logger *slog.Logger
}

// NewSource returns a source over in, drawing through render.
func NewSource(in Input, render func(*protocol.MenuRender) error, logger *slog.Logger) *Source {
	return &Source{Menu: New(0), Input: in, Render: render, Logger: logger}
}

// NextAction runs the menu for p until a press completes an action.
func (s *Source) NextAction(ctx context.Context, p *game.Player, st *game.State) (game.Action, error) {
	if seat := seatOf(st, p); seat != s.Menu.Active() {
		s.Menu.SetActive(seat)
	}
	s.Menu.SetPlayers(st.Players)
	s.show()
	for {
		delta, pressed, err := s.Input.Read(ctx)
		if err != nil {
			return game.Action{}, err
		}
		ev, ok := s.Menu.Update(delta, pressed)
		s.show()
		if !ok {
			continue
		}
		a, err := ActionFor(ev)
		if err != nil {
			s.Logger.Warn("menu produced an unusable event", "event", ev.Type.String(), "error", err)
			continue
		}
		return a, nil
	}
}

// ConfirmPlacement waits for a button press.
func (s *Source) ConfirmPlacement(ctx context.Context, c game.Color) error {
	s.Logger.Info("waiting for placement", "player", c)
	for {
		_, pressed, err := s.Input.Read(ctx)
		if err != nil {
			return err
		}
		if pressed {
			return nil
		}
	}
}

func (s *Source) show() {
	if s.Render == nil {
		return
	}
	if err := s.Render(s.Menu.Render()); err != nil {
		s.Logger.Warn("menu render failed", "error", err)
	}
}

func seatOf(st *game.State, p *game.Player) int {
	for i, q := range st.Players {
		if q == p || q.Color == p.Color {
			return i
		}
	}
	return 0
}
