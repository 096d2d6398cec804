package hardware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"catanrig/internal/game"
	"catanrig/internal/menu"
	"catanrig/internal/protocol"
)

var errEventQueueFull = errors.New("menu event queue full")

// Link is the host end of the serial link to the player displays. It pushes
// state to the displays and turns the menu events they send back into
// actions.
type Link struct {
	sender *protocol.Sender
	desert uint8
	events chan *protocol.MenuEvent
	log    *slog.Logger
}

// NewLink writes frames to w. The desert tile is sent as desertValue.
func NewLink(w io.Writer, desertValue uint8, log *slog.Logger) *Link {
	return &Link{
		sender: protocol.NewSender(w),
		desert: desertValue,
		events: make(chan *protocol.MenuEvent, 16),
		log:    log.With("component", "link"),
	}
}

// Serve reads menu events from r until ctx is done or r fails.
func (l *Link) Serve(ctx context.Context, r io.Reader, poll time.Duration) error {
	parser := protocol.NewParser(protocol.MagicMenuEvent)
	parser.OnDrop = func(magic byte, err error) {
		l.log.Warn("dropped frame", "magic", magic, "error", err)
	}
	recv := &protocol.Receiver{Parser: parser, Poll: poll, Logger: l.log}
	return recv.Run(ctx, r, func(p protocol.Packet) error {
		ev, ok := p.(*protocol.MenuEvent)
		if !ok {
			return nil
		}
		select {
		case l.events <- ev:
			return nil
		default:
			return errEventQueueFull
		}
	})
}

// Send writes one packet, such as a menu render drawn on the host.
func (l *Link) Send(p protocol.Packet) error {
	return l.sender.Send(p)
}

// Record sends the player snapshot and the tile vector.
func (l *Link) Record(_ context.Context, s *game.State) error {
	if err := l.sender.Send(protocol.SnapshotFromState(s)); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}
	tiles, err := protocol.TileVectorFromState(s, l.desert)
	if err != nil {
		return fmt.Errorf("build tile vector: %w", err)
	}
	if err := l.sender.Send(tiles); err != nil {
		return fmt.Errorf("send tile vector: %w", err)
	}
	return nil
}

// TurnStarted resets the active player's menu and draws its root screen.
func (l *Link) TurnStarted(seat int, _ game.Color) {
	m := menu.New(seat)
	ctl := &protocol.MenuControl{ActivePlayer: uint8(m.Active()), Reset: true}
	if err := l.sender.Send(ctl); err != nil {
		l.log.Warn("send menu control", "error", err)
		return
	}
	if err := l.sender.Send(m.Render()); err != nil {
		l.log.Warn("send menu render", "error", err)
	}
}

func (l *Link) SetPlayerLight(game.Color, bool) {}
func (l *Link) ClearPlayerLights()              {}
func (l *Link) ShowDice(game.Roll)              {}
func (l *Link) FlashWinner(game.Color)          {}
func (l *Link) Message(string)                  {}

// NextAction waits for the next menu event from the displays.
func (l *Link) NextAction(ctx context.Context, p *game.Player, _ *game.State) (game.Action, error) {
	for {
		select {
		case <-ctx.Done():
			return game.Action{}, ctx.Err()
		case ev := <-l.events:
			a, err := menu.ActionFor(ev)
			if err != nil {
				l.log.Warn("ignoring menu event", "player", p.Color, "event", ev.Type.String(), "error", err)
				continue
			}
			return a, nil
		}
	}
}

// ConfirmPlacement waits for any menu event.
func (l *Link) ConfirmPlacement(ctx context.Context, _ game.Color) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.events:
		return nil
	}
}
