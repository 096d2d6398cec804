package hardware

import (
	"log/slog"

	"catanrig/internal/game"
	"catanrig/internal/menu"
	"catanrig/internal/protocol"
)

// Display is the peripheral end of the link: it keeps the latest state it
// was sent, runs the active player's menu on local input and sends the
// resulting menu events back to the host.
type Display struct {
	Menu  *menu.Menu
	Input interface {
		Poll() (delta int, pressed, ok bool)
	}
	sender *protocol.Sender
	log    *slog.Logger

	Snapshot *protocol.Snapshot
	Tiles    *protocol.TileVector
	Lines    [protocol.MenuLines]string
}

// NewDisplay sends events through sender.
func NewDisplay(sender *protocol.Sender, log *slog.Logger) *Display {
	return &Display{Menu: menu.New(0), sender: sender, log: log.With("component", "display")}
}

// Handle applies one packet from the host.
func (d *Display) Handle(p protocol.Packet) error {
	switch p := p.(type) {
	case *protocol.Snapshot:
		d.Snapshot = p
		d.Menu.SetPlayers(playersFromSnapshot(p))
		for i, pl := range p.Players {
			d.log.Debug("player", "seat", i, "resources", pl.Resources, "victory_points", pl.VictoryPoints)
		}
	case *protocol.TileVector:
		d.Tiles = p
	case *protocol.MenuControl:
		if p.Reset || int(p.ActivePlayer) != d.Menu.Active() {
			d.Menu.SetActive(int(p.ActivePlayer))
		}
		d.Lines = d.Menu.Lines()
	case *protocol.MenuRender:
		if int(p.Player) == d.Menu.Active() {
			d.Lines = p.Lines
		}
	}
	return nil
}

// Idle polls local input once, redraws, and sends any completed event.
func (d *Display) Idle() {
	if d.Input == nil {
		return
	}
	delta, pressed, ok := d.Input.Poll()
	if !ok {
		return
	}
	ev, done := d.Menu.Update(delta, pressed)
	d.Lines = d.Menu.Lines()
	if !done {
		return
	}
	if err := d.sender.Send(ev); err != nil {
		d.log.Warn("send menu event", "event", ev.Type.String(), "error", err)
		return
	}
	d.log.Info("menu event sent", "event", ev.Type.String(), "seq", ev.Seq)
}

func playersFromSnapshot(s *protocol.Snapshot) []*game.Player {
	out := make([]*game.Player, 0, len(s.Players))
	for _, block := range s.Players {
		p := game.NewPlayer("")
		for i, c := range game.DevCards {
			p.DevelopmentCards[c] = int(block.DevCards[i])
		}
		out = append(out, p)
	}
	return out
}
