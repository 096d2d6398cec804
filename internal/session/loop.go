package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"catanrig/internal/game"
)

// Run drives the game from its current phase until it ends, hits the turn
// cap, or ctx is cancelled. The only point where cancellation is observed is
// action solicitation.
func (s *Session) Run(ctx context.Context) error {
	if s.Phase() == game.PhaseSetup {
		if err := s.RunSetup(ctx); err != nil {
			return err
		}
	}
	played := 0
	for s.Phase() == game.PhaseMain {
		if s.finished(ctx, played) {
			break
		}
		if err := s.RunTurn(ctx); err != nil {
			return err
		}
		played++
	}
	return nil
}

// finished checks for a winner and the turn cap, moving the game to ended
// or paused.
func (s *Session) finished(ctx context.Context, played int) bool {
	rules := s.engine.Rules()

	s.mu.Lock()
	s.engine.Recompute(s.state)
	winner, won := game.Winner(s.state, rules.WinThreshold)
	switch {
	case won:
		s.state.Game.Phase = game.PhaseEnded
		s.state.Game.Winner = winner.Color
	case played >= s.maxTurns:
		s.state.Game.Phase = game.PhasePaused
	}
	phase := s.state.Game.Phase
	s.mu.Unlock()

	switch phase {
	case game.PhaseEnded:
		s.log.Info("game won", "player", winner.Color, "victory_points", winner.VictoryPoints)
		s.notifier.FlashWinner(winner.Color)
		s.notifier.Message(fmt.Sprintf("Winner: %s", winner.Color))
	case game.PhasePaused:
		s.log.Warn("turn cap reached, pausing game", "turns", played)
	default:
		return false
	}
	s.record(ctx)
	return true
}

// RunSetup walks every player through the free placement rounds, then
// finalizes the board and starts the main phase.
func (s *Session) RunSetup(ctx context.Context) error {
	s.mu.RLock()
	required := s.state.Setup.PlacementsRequired
	order := append([]int(nil), s.state.Setup.Order...)
	s.mu.RUnlock()

	s.notifier.Message("Setup phase: place free settlement + road")
	for round := range required {
		for _, idx := range order {
			s.mu.RLock()
			p := s.state.Players[idx]
			done := s.state.Setup.PlacementsDone[p.Color]
			s.mu.RUnlock()
			if done > round {
				continue
			}

			s.notifier.ClearPlayerLights()
			s.notifier.SetPlayerLight(p.Color, true)
			s.notifier.Message(fmt.Sprintf("%s: place settlement+road (setup %d/%d)", p.Color, round+1, required))
			if err := s.actions.ConfirmPlacement(ctx, p.Color); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("placement confirmation failed", "player", p.Color, "error", err)
			}
			s.detect(ctx, ContextSetupPlacement, p.Color)

			s.mu.Lock()
			s.state.Setup.PlacementsDone[p.Color]++
			s.mu.Unlock()
			s.record(ctx)
		}
	}

	s.notifier.Message("Setup complete. Detecting board...")
	s.detect(ctx, ContextPostSetupFinalize, "")

	s.mu.Lock()
	s.engine.Recompute(s.state)
	s.state.Setup.Completed = true
	s.state.Game.Phase = game.PhaseMain
	s.state.Game.CurrentPlayerIndex = 0
	s.state.Game.TurnNumber = 1
	s.mu.Unlock()

	s.notifier.ClearPlayerLights()
	s.log.Info("setup complete")
	s.record(ctx)
	return nil
}

// RunTurn plays one turn for the current player: roll, allocate or resolve a
// seven, take actions until end_turn, then detect, score and advance.
func (s *Session) RunTurn(ctx context.Context) error {
	s.mu.Lock()
	seat := s.state.Game.CurrentPlayerIndex % len(s.state.Players)
	p := s.state.Players[seat]
	turn := s.state.Game.TurnNumber
	s.mu.Unlock()

	log := s.log.With("turn", turn, "player", p.Color)
	s.notifier.ClearPlayerLights()
	s.notifier.SetPlayerLight(p.Color, true)
	s.notifier.TurnStarted(seat, p.Color)
	s.notifier.Message(fmt.Sprintf("%s turn", p.Color))

	roll, note := s.roll(p)
	log.Info("dice rolled", "die_1", roll.Die1, "die_2", roll.Die2, "total", roll.Total)
	s.notifier.ShowDice(roll)
	if note != "" {
		s.notifier.Message(note)
	}
	s.record(ctx)

	for {
		a, err := s.nextAction(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("action source failed, ending turn", "error", err)
			break
		}
		if a.Type == game.ActionEndTurn {
			break
		}
		s.mu.Lock()
		msg, err := s.dispatch(p, a)
		s.mu.Unlock()
		if err != nil {
			log.Info("action rejected", "action", a.Type, "error", err)
		} else {
			log.Info("action applied", "action", a.Type)
		}
		s.notifier.Message(msg)
		s.record(ctx)
	}

	s.detect(ctx, ContextEndTurnDetection, p.Color)
	if s.placer != nil {
		s.mu.Lock()
		n, err := game.DrainPending(ctx, s.state, p, s.placer)
		s.mu.Unlock()
		if err != nil {
			log.Warn("placement stopped", "placed", n, "queued", p.PendingActions.Len(), "error", err)
		}
	}

	s.mu.Lock()
	s.engine.Recompute(s.state)
	s.state.Game.CurrentPlayerIndex = (seat + 1) % len(s.state.Players)
	s.state.Game.TurnNumber++
	s.mu.Unlock()

	s.notifier.SetPlayerLight(p.Color, false)
	s.record(ctx)
	return nil
}

func (s *Session) roll(p *game.Player) (game.Roll, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roll := s.engine.Roll()
	s.state.Game.LastRoll = &roll
	if roll.Total != 7 {
		s.state.Game.LastRollPayouts = s.engine.Allocate(s.state, roll.Total)
		s.state.Game.LastRobberDiscards = nil
		return roll, ""
	}

	discards := s.engine.ResolveSeven(s.state)
	s.state.Game.LastRollPayouts = nil
	s.state.Game.LastRobberDiscards = discards
	if len(discards) == 0 {
		return roll, fmt.Sprintf("%s rolled 7: no discards", p.Color)
	}
	who := make([]string, 0, len(discards))
	for c := range discards {
		who = append(who, string(c))
	}
	slices.Sort(who)
	return roll, fmt.Sprintf("%s rolled 7: discard %s", p.Color, strings.Join(who, ", "))
}

func (s *Session) nextAction(ctx context.Context, p *game.Player) (game.Action, error) {
	if s.actionTimeout <= 0 {
		return s.actions.NextAction(ctx, p, s.state)
	}
	actx, cancel := context.WithTimeout(ctx, s.actionTimeout)
	defer cancel()
	return s.actions.NextAction(actx, p, s.state)
}

// dispatch applies a to p and returns the message shown to the table.
// Callers hold the write lock.
func (s *Session) dispatch(p *game.Player, a game.Action) (string, error) {
	e := s.engine
	if kind, ok := a.Type.Structure(); ok {
		if err := e.Purchase(s.state, p, kind); err != nil {
			return fmt.Sprintf("Cannot buy %s", kind), err
		}
		return fmt.Sprintf("%s queued", titleCase(string(kind))), nil
	}

	switch a.Type {
	case game.ActionBuyDevelopmentCard:
		if _, err := e.BuyDevelopmentCard(s.state, p); err != nil {
			return "Cannot buy dev card", err
		}
		return "Dev card bought", nil

	case game.ActionTradeBank:
		rate := a.Rate
		if rate == 0 {
			rate = e.Rules().DefaultTradeRate
		}
		if err := e.TradeWithBank(s.state, p, a.Give, a.Get, rate); err != nil {
			return "Trade failed", err
		}
		return "Trade complete", nil

	case game.ActionTradePlayer:
		if a.Target < 0 || a.Target >= len(s.state.Players) {
			return "Trade failed", fmt.Errorf("%w: no player %d", game.ErrInvalidTrade, a.Target)
		}
		other := s.state.Players[a.Target]
		if err := e.TradeWithPlayer(p, other, game.Vector(a.Offer), game.Vector(a.Request)); err != nil {
			return "Trade failed", err
		}
		return "Trade complete", nil

	case game.ActionUseDevelopmentCard:
		if err := e.PlayDevelopmentCard(s.state, p, a.Card); err != nil {
			return fmt.Sprintf("Cannot play %s", a.Card), err
		}
		return fmt.Sprintf("%s played", titleCase(string(a.Card))), nil
	}
	return fmt.Sprintf("Unknown action: %s", a.Type), errUnknownAction
}

var errUnknownAction = errors.New("unknown action")

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// detect runs the detector on a copy of the state and adopts its board only
// on success, so a failed detection leaves the board as it was.
func (s *Session) detect(ctx context.Context, label string, c game.Color) {
	if s.detector == nil {
		return
	}
	s.mu.RLock()
	work, err := s.state.Clone()
	s.mu.RUnlock()
	if err != nil {
		s.log.Error("copy state for detection", "context", label, "error", err)
		return
	}

	counts, err := s.detector.Detect(ctx, work, label, c)
	if err != nil {
		s.log.Warn("board detection failed", "context", label, "player", c, "error", err)
		return
	}

	s.mu.Lock()
	s.state.Settlements = work.Settlements
	s.state.Roads = work.Roads
	s.state.Tiles = work.Tiles
	s.state.RobberTileIndex = work.RobberTileIndex
	s.mu.Unlock()
	s.log.Debug("board detected", "context", label, "player", c, "counts", counts)
}

// record hands the state to every sink. Sink failures are logged.
func (s *Session) record(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, s.state); err != nil {
			s.log.Error("record state", "sink", fmt.Sprintf("%T", sink), "error", err)
		}
	}
}
