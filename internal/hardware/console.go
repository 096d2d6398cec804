// Package hardware adapts the session's collaborators to the table: console
// stand-ins for development, and the serial link to the player displays.
package hardware

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"catanrig/internal/game"
)

// Console reports table feedback as log lines.
type Console struct {
	log *slog.Logger
}

func NewConsole(log *slog.Logger) *Console {
	return &Console{log: log.With("component", "table")}
}

func (c *Console) TurnStarted(seat int, color game.Color) {
	c.log.Info("turn started", "seat", seat, "player", color)
}

func (c *Console) SetPlayerLight(color game.Color, on bool) {
	c.log.Debug("player light", "player", color, "on", on)
}

func (c *Console) ClearPlayerLights() {
	c.log.Debug("player lights cleared")
}

func (c *Console) ShowDice(r game.Roll) {
	c.log.Info("dice", "die_1", r.Die1, "die_2", r.Die2, "total", r.Total)
}

func (c *Console) FlashWinner(color game.Color) {
	c.log.Info("winner", "player", color)
}

func (c *Console) Message(text string) {
	c.log.Info(text)
}

// AutoEnd ends every turn immediately and confirms placements without
// waiting. It runs a game unattended.
type AutoEnd struct{}

func (AutoEnd) NextAction(context.Context, *game.Player, *game.State) (game.Action, error) {
	return game.EndTurn, nil
}

func (AutoEnd) ConfirmPlacement(context.Context, game.Color) error { return nil }

// ErrBadCommand is returned by ParseCommand for unreadable input.
var ErrBadCommand = errors.New("bad command")

// LineSource reads one command per line, for example:
//
//	road | settlement | city | dev | end
//	bank wood brick [rate]
//	trade <seat> <give w,b,s,h,o> <receive w,b,s,h,o>
//	use knight
//
// Unreadable lines are logged and skipped.
type LineSource struct {
	lines chan string
	errc  chan error
	log   *slog.Logger
}

// NewLineSource starts reading r in the background.
func NewLineSource(r io.Reader, log *slog.Logger) *LineSource {
	s := &LineSource{lines: make(chan string), errc: make(chan error, 1), log: log}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			s.lines <- sc.Text()
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		s.errc <- err
	}()
	return s
}

func (s *LineSource) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-s.lines:
		return line, nil
	case err := <-s.errc:
		s.errc <- err
		return "", err
	}
}

func (s *LineSource) NextAction(ctx context.Context, p *game.Player, _ *game.State) (game.Action, error) {
	s.log.Info("waiting for action", "player", p.Color)
	for {
		line, err := s.next(ctx)
		if err != nil {
			return game.Action{}, err
		}
		a, err := ParseCommand(line)
		if err != nil {
			s.log.Warn("ignoring input", "line", line, "error", err)
			continue
		}
		return a, nil
	}
}

// ConfirmPlacement waits for any line.
func (s *LineSource) ConfirmPlacement(ctx context.Context, c game.Color) error {
	s.log.Info("press enter when pieces are placed", "player", c)
	_, err := s.next(ctx)
	return err
}

// ParseCommand turns a console line into an action.
func ParseCommand(line string) (game.Action, error) {
	f := strings.Fields(strings.ToLower(line))
	if len(f) == 0 {
		return game.Action{}, fmt.Errorf("%w: empty", ErrBadCommand)
	}
	switch f[0] {
	case "end", "end_turn":
		return game.EndTurn, nil
	case "road":
		return game.Action{Type: game.ActionBuyRoad}, nil
	case "settlement":
		return game.Action{Type: game.ActionBuySettlement}, nil
	case "city":
		return game.Action{Type: game.ActionBuyCity}, nil
	case "dev":
		return game.Action{Type: game.ActionBuyDevelopmentCard}, nil
	case "use":
		if len(f) != 2 {
			return game.Action{}, fmt.Errorf("%w: use <card>", ErrBadCommand)
		}
		return game.Action{Type: game.ActionUseDevelopmentCard, Card: game.DevCard(f[1])}, nil
	case "bank":
		if len(f) < 3 || len(f) > 4 {
			return game.Action{}, fmt.Errorf("%w: bank <give> <get> [rate]", ErrBadCommand)
		}
		a := game.Action{Type: game.ActionTradeBank, Give: game.Resource(f[1]), Get: game.Resource(f[2])}
		if len(f) == 4 {
			rate, err := strconv.Atoi(f[3])
			if err != nil {
				return game.Action{}, fmt.Errorf("%w: rate %q", ErrBadCommand, f[3])
			}
			a.Rate = rate
		}
		return a, nil
	case "trade":
		if len(f) != 4 {
			return game.Action{}, fmt.Errorf("%w: trade <seat> <give> <receive>", ErrBadCommand)
		}
		seat, err := strconv.Atoi(f[1])
		if err != nil {
			return game.Action{}, fmt.Errorf("%w: seat %q", ErrBadCommand, f[1])
		}
		give, err := parseVector(f[2])
		if err != nil {
			return game.Action{}, err
		}
		receive, err := parseVector(f[3])
		if err != nil {
			return game.Action{}, err
		}
		return game.Action{Type: game.ActionTradePlayer, Target: seat, Offer: give, Request: receive}, nil
	}
	return game.Action{Type: game.ActionType(f[0])}, nil
}

func parseVector(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(game.Resources) {
		return nil, fmt.Errorf("%w: need %d counts in %q", ErrBadCommand, len(game.Resources), s)
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: count %q", ErrBadCommand, p)
		}
		out[i] = n
	}
	return out, nil
}

// NopDetector stands in for the camera: the board is left as it is.
type NopDetector struct {
	Log *slog.Logger
}

func (d NopDetector) Detect(_ context.Context, s *game.State, label string, c game.Color) (map[string]int, error) {
	built := 0
	for _, v := range s.Settlements {
		if v.Kind.Built() {
			built++
		}
	}
	owned := 0
	for _, r := range s.Roads {
		if r.Owner != "" {
			owned++
		}
	}
	if d.Log != nil {
		d.Log.Debug("detection skipped", "context", label, "player", c)
	}
	return map[string]int{"settlements": built, "roads": owned}, nil
}
