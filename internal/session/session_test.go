package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catanrig/internal/game"
)

type scriptedRNG struct {
	values []int
	next   int
}

func (r *scriptedRNG) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next%len(r.values)] % n
	r.next++
	return v
}

// dice makes a scripted RNG whose first roll is d1, d2.
func dice(d1, d2 int) *scriptedRNG {
	return &scriptedRNG{values: []int{d1 - 1, d2 - 1}}
}

type scriptedSource struct {
	mu        sync.Mutex
	actions   []game.Action
	errs      []error
	confirmed []game.Color
	asked     int
}

func (s *scriptedSource) NextAction(ctx context.Context, _ *game.Player, _ *game.State) (game.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return game.Action{}, err
		}
	}
	if len(s.actions) == 0 {
		return game.EndTurn, nil
	}
	a := s.actions[0]
	s.actions = s.actions[1:]
	return a, nil
}

func (s *scriptedSource) ConfirmPlacement(_ context.Context, c game.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed = append(s.confirmed, c)
	return nil
}

type recordingNotifier struct {
	messages []string
	winners  []game.Color
	turns    []int
	lights   map[game.Color]bool
	rolls    []game.Roll
}

func (n *recordingNotifier) TurnStarted(seat int, _ game.Color) { n.turns = append(n.turns, seat) }
func (n *recordingNotifier) SetPlayerLight(c game.Color, on bool) {
	if n.lights == nil {
		n.lights = map[game.Color]bool{}
	}
	n.lights[c] = on
}
func (n *recordingNotifier) ClearPlayerLights()       { n.lights = map[game.Color]bool{} }
func (n *recordingNotifier) ShowDice(r game.Roll)     { n.rolls = append(n.rolls, r) }
func (n *recordingNotifier) FlashWinner(c game.Color) { n.winners = append(n.winners, c) }
func (n *recordingNotifier) Message(text string)      { n.messages = append(n.messages, text) }

type countingSink struct{ states []game.Phase }

func (c *countingSink) Record(_ context.Context, s *game.State) error {
	c.states = append(c.states, s.Game.Phase)
	return nil
}

// newState builds three players around one wheat tile numbered 5 whose six
// corners are settlements 0-5, plus four spare vertices 6-9.
func newState() *game.State {
	s := &game.State{}
	for _, c := range game.Palette {
		s.Players = append(s.Players, game.NewPlayer(c))
	}
	for id := range 10 {
		s.Settlements = append(s.Settlements, &game.Settlement{ID: id})
	}
	five := 5
	s.Tiles = []*game.Tile{{Resource: game.Wheat, RollNumber: &five, SettlementIDs: []int{0, 1, 2, 3, 4, 5}}}
	s.Normalize()
	s.Game.Phase = game.PhaseMain
	s.Setup.Completed = true
	return s
}

func place(s *game.State, id int, c game.Color, k game.Kind) {
	v := s.Settlement(id)
	v.Owner, v.Kind = c, k
}

func newSession(t *testing.T, s *game.State, rng game.RNG, opts Options) *Session {
	t.Helper()
	sess, err := New(s, game.NewEngine(game.DefaultRules(), rng), opts)
	require.NoError(t, err)
	return sess
}

func TestNewRequiresPlayers(t *testing.T) {
	_, err := New(&game.State{}, game.NewEngine(game.DefaultRules(), dice(1, 1)), Options{Actions: &scriptedSource{}})
	require.ErrorIs(t, err, ErrNoPlayers)

	_, err = New(newState(), game.NewEngine(game.DefaultRules(), dice(1, 1)), Options{})
	require.Error(t, err)
}

func TestFirstTurnAllocatesWheat(t *testing.T) {
	s := newState()
	place(s, 0, "orange", game.KindSettlement)
	sink := &countingSink{}
	notes := &recordingNotifier{}

	sess := newSession(t, s, dice(2, 3), Options{
		Actions:  &scriptedSource{},
		Notifier: notes,
		Sinks:    []Sink{sink},
		MaxTurns: 1,
	})
	require.NoError(t, sess.Run(context.Background()))

	orange := s.Players[0]
	assert.Equal(t, 1, orange.Resources[game.Wheat])
	assert.Equal(t, 18, s.Bank.Resources[game.Wheat])
	assert.Equal(t, 1, orange.VictoryPoints)
	assert.Equal(t, game.Payouts{"orange": {game.Wheat: 1}}, s.Game.LastRollPayouts)
	assert.Equal(t, &game.Roll{Die1: 2, Die2: 3, Total: 5}, s.Game.LastRoll)

	assert.Equal(t, game.PhasePaused, s.Game.Phase, "turn cap pauses the game")
	assert.Equal(t, 2, s.Game.TurnNumber)
	assert.Equal(t, 1, s.Game.CurrentPlayerIndex)
	assert.Equal(t, []int{0}, notes.turns)
	assert.Contains(t, notes.messages, "orange turn")
	assert.False(t, notes.lights["orange"], "light goes off after the turn")
	assert.Equal(t, game.PhasePaused, sink.states[len(sink.states)-1])
}

func TestWinnerEndsGame(t *testing.T) {
	s := newState()
	for id := range 5 {
		place(s, id, "blue", game.KindCity)
	}
	notes := &recordingNotifier{}
	src := &scriptedSource{}

	sess := newSession(t, s, dice(1, 1), Options{Actions: src, Notifier: notes})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, game.PhaseEnded, s.Game.Phase)
	assert.Equal(t, game.Color("blue"), s.Game.Winner)
	assert.Equal(t, []game.Color{"blue"}, notes.winners)
	assert.Contains(t, notes.messages, "Winner: blue")
	assert.Zero(t, src.asked, "no turn is played once someone has won")
}

func TestTiedLeadersDoNotWin(t *testing.T) {
	s := newState()
	for id := range 5 {
		place(s, id, "orange", game.KindCity)
		place(s, id+5, "red", game.KindCity)
	}
	sess := newSession(t, s, dice(1, 1), Options{Actions: &scriptedSource{}, MaxTurns: 2})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, game.PhasePaused, s.Game.Phase)
	assert.Empty(t, s.Game.Winner)
	assert.Equal(t, 10, s.Players[0].VictoryPoints)
	assert.Equal(t, 10, s.Players[2].VictoryPoints)
}

func TestActionsAreDispatched(t *testing.T) {
	s := newState()
	orange := s.Players[0]
	orange.Resources[game.Wood] = 5
	orange.Resources[game.Brick] = 1
	s.Players[1].Resources[game.Ore] = 1
	notes := &recordingNotifier{}
	src := &scriptedSource{actions: []game.Action{
		{Type: game.ActionBuyRoad},
		{Type: game.ActionBuyCity},
		{Type: "dance"},
		{Type: game.ActionTradeBank, Give: game.Wood, Get: game.Sheep},
		{Type: game.ActionTradePlayer, Target: 1, Request: []int{0, 0, 0, 0, 1}},
		{Type: game.ActionTradePlayer, Target: 7, Offer: []int{1}},
		{Type: game.ActionUseDevelopmentCard, Card: game.Knight},
		{Type: game.ActionBuyDevelopmentCard},
	}}

	sess := newSession(t, s, dice(1, 1), Options{Actions: src, Notifier: notes, MaxTurns: 1})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, []string{
		"orange turn",
		"Road queued",
		"Cannot buy city",
		"Unknown action: dance",
		"Trade complete",
		"Trade complete",
		"Trade failed",
		"Cannot play knight",
		"Cannot buy dev card",
	}, notes.messages)
	assert.Equal(t, 9, src.asked, "unknown actions do not stop the turn")
	assert.Equal(t, 1, orange.PendingActions.Len())
	assert.Equal(t, 1, orange.Resources[game.Sheep])
	assert.Equal(t, 1, orange.Resources[game.Ore])
	assert.Zero(t, orange.Resources[game.Wood])
}

func TestSevenDiscards(t *testing.T) {
	s := newState()
	s.Players[0].Resources[game.Ore] = 8
	s.Players[2].Resources[game.Wood] = 3
	notes := &recordingNotifier{}

	sess := newSession(t, s, dice(3, 4), Options{Actions: &scriptedSource{}, Notifier: notes, MaxTurns: 1})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, 4, s.Players[0].Resources[game.Ore])
	assert.Equal(t, 3, s.Players[2].Resources[game.Wood])
	assert.Equal(t, game.Payouts{"orange": {game.Ore: 4}}, s.Game.LastRobberDiscards)
	assert.Nil(t, s.Game.LastRollPayouts)
	assert.Contains(t, notes.messages, "orange rolled 7: discard orange")
}

func TestActionSourceFailureEndsTurn(t *testing.T) {
	s := newState()
	src := &scriptedSource{errs: []error{errors.New("encoder unplugged")}}

	sess := newSession(t, s, dice(1, 1), Options{Actions: src, MaxTurns: 2})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, 3, s.Game.TurnNumber)
	assert.Equal(t, 2, s.Game.CurrentPlayerIndex)
}

type blockingSource struct{ scriptedSource }

func (b *blockingSource) NextAction(ctx context.Context, _ *game.Player, _ *game.State) (game.Action, error) {
	<-ctx.Done()
	return game.Action{}, ctx.Err()
}

func TestCancelStopsTheLoop(t *testing.T) {
	s := newState()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sess := newSession(t, s, dice(1, 1), Options{Actions: &blockingSource{}})
	err := sess.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, game.PhaseMain, s.Game.Phase)
}

func TestActionTimeoutEndsTurn(t *testing.T) {
	s := newState()
	sess := newSession(t, s, dice(1, 1), Options{Actions: &blockingSource{}, ActionTimeout: 1, MaxTurns: 3})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, 4, s.Game.TurnNumber)
	assert.Equal(t, game.PhasePaused, s.Game.Phase)
}

type fakeDetector struct {
	labels []string
	fail   bool
	next   int
}

func (d *fakeDetector) Detect(_ context.Context, s *game.State, label string, c game.Color) (map[string]int, error) {
	d.labels = append(d.labels, fmt.Sprintf("%s:%s", label, c))
	if label == ContextSetupPlacement {
		place(s, d.next, c, game.KindSettlement)
		d.next += 2
	}
	if d.fail {
		place(s, 9, "red", game.KindCity)
		return nil, errors.New("camera offline")
	}
	return map[string]int{"settlements": d.next / 2}, nil
}

func TestRunSetup(t *testing.T) {
	s := newState()
	s.Game.Phase = game.PhaseSetup
	s.Setup.Completed = false
	s.Game.TurnNumber = 9
	det := &fakeDetector{}
	src := &scriptedSource{}
	notes := &recordingNotifier{}

	sess := newSession(t, s, dice(1, 1), Options{Actions: src, Detector: det, Notifier: notes})
	require.NoError(t, sess.RunSetup(context.Background()))

	assert.Equal(t, []game.Color{"orange", "blue", "red"}, src.confirmed)
	assert.Equal(t, []string{
		"setup_placement:orange",
		"setup_placement:blue",
		"setup_placement:red",
		"post_setup_finalize:",
	}, det.labels)
	assert.Equal(t, "Setup phase: place free settlement + road", notes.messages[0])
	assert.Contains(t, notes.messages, "blue: place settlement+road (setup 1/1)")

	assert.Equal(t, game.PhaseMain, s.Game.Phase)
	assert.True(t, s.Setup.Completed)
	assert.Equal(t, 1, s.Game.TurnNumber)
	assert.Equal(t, 0, s.Game.CurrentPlayerIndex)
	for _, p := range s.Players {
		assert.Equal(t, 1, s.Setup.PlacementsDone[p.Color])
		assert.Equal(t, 1, p.VictoryPoints)
	}
}

func TestRunSetupSkipsCompletedPlacements(t *testing.T) {
	s := newState()
	s.Game.Phase = game.PhaseSetup
	s.Setup.PlacementsDone["orange"] = 1
	src := &scriptedSource{}

	sess := newSession(t, s, dice(1, 1), Options{Actions: src})
	require.NoError(t, sess.RunSetup(context.Background()))
	assert.Equal(t, []game.Color{"blue", "red"}, src.confirmed)
}

func TestFailedDetectionLeavesBoard(t *testing.T) {
	s := newState()
	det := &fakeDetector{fail: true}

	sess := newSession(t, s, dice(1, 1), Options{Actions: &scriptedSource{}, Detector: det, MaxTurns: 1})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, []string{"end_turn_detection:orange"}, det.labels)
	assert.Empty(t, s.Settlement(9).Owner)
	assert.Equal(t, game.PhasePaused, s.Game.Phase)
}

type recordingPlacer struct{ placed []game.Structure }

func (r *recordingPlacer) Place(_ context.Context, _ *game.State, _ *game.Player, a game.PendingAction) error {
	r.placed = append(r.placed, a.Type)
	return nil
}

func TestPlacerDrainsQueueAfterTurn(t *testing.T) {
	s := newState()
	s.Players[0].Resources[game.Wood] = 1
	s.Players[0].Resources[game.Brick] = 1
	pl := &recordingPlacer{}
	src := &scriptedSource{actions: []game.Action{{Type: game.ActionBuyRoad}}}

	sess := newSession(t, s, dice(1, 1), Options{Actions: src, Placer: pl, MaxTurns: 1})
	require.NoError(t, sess.Run(context.Background()))

	assert.Equal(t, []game.Structure{game.BuildRoad}, pl.placed)
	assert.Zero(t, s.Players[0].PendingActions.Len())
}

func TestResume(t *testing.T) {
	s := newState()
	sess := newSession(t, s, dice(1, 1), Options{Actions: &scriptedSource{}, MaxTurns: 1})

	require.ErrorIs(t, sess.Resume(), ErrNotPaused)
	require.NoError(t, sess.Run(context.Background()))
	require.Equal(t, game.PhasePaused, sess.Phase())

	require.NoError(t, sess.Resume())
	require.NoError(t, sess.Run(context.Background()))
	assert.Equal(t, 3, s.Game.TurnNumber, "a resumed game gets a fresh turn budget")
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newState()
	sess := newSession(t, s, dice(1, 1), Options{Actions: &scriptedSource{}})

	snap, err := sess.Snapshot()
	require.NoError(t, err)
	snap.Players[0].Resources[game.Ore] = 99
	assert.Zero(t, s.Players[0].Resources[game.Ore])
}

func TestSevenMessageSortsNames(t *testing.T) {
	s := newState()
	s.Players[0].Resources[game.Ore] = 8
	s.Players[1].Resources[game.Sheep] = 8
	s.Players[2].Resources[game.Wheat] = 8
	notes := &recordingNotifier{}

	sess := newSession(t, s, dice(3, 4), Options{Actions: &scriptedSource{}, Notifier: notes, MaxTurns: 1})
	require.NoError(t, sess.Run(context.Background()))

	assert.Contains(t, notes.messages, "orange rolled 7: discard blue, orange, red")
}
