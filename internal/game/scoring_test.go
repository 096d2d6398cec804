package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(from, to int) []Edge {
	var out []Edge
	for i := from; i < to; i++ {
		out = append(out, NewEdge(i, i+1))
	}
	return out
}

func TestLongestRoad(t *testing.T) {
	tests := []struct {
		name    string
		roads   []Edge
		blocker int
		want    int
	}{
		{name: "no roads", want: 0, blocker: -1},
		{name: "simple chain", roads: chain(0, 5), blocker: -1, want: 5},
		{name: "opponent at endpoint still counts arrival", roads: chain(0, 5), blocker: 5, want: 5},
		{name: "opponent at interior vertex splits the chain", roads: chain(0, 5), blocker: 2, want: 3},
		{name: "disconnected pieces", roads: append(chain(0, 2), chain(4, 7)...), blocker: -1, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestState()
			ownRoads(s, "orange", tt.roads...)
			if tt.blocker >= 0 {
				build(s, tt.blocker, "blue", KindSettlement)
			}
			assert.Equal(t, tt.want, LongestRoad(s, "orange"))
		})
	}
}

func TestLongestRoadOwnSettlementDoesNotBlock(t *testing.T) {
	s := newTestState()
	ownRoads(s, "orange", chain(0, 5)...)
	build(s, 2, "orange", KindCity)
	assert.Equal(t, 5, LongestRoad(s, "orange"))
}

func TestLongestRoadCycleUsesEachRoadOnce(t *testing.T) {
	s := newTestState()
	s.Roads = append(s.Roads, &Road{A: 0, B: 3})
	ownRoads(s, "orange", append(chain(0, 3), NewEdge(0, 3))...)
	assert.Equal(t, 4, LongestRoad(s, "orange"))
}

func TestUpdateLongestRoad(t *testing.T) {
	s := newTestState()
	ownRoads(s, "orange", chain(0, 5)...)

	UpdateLongestRoad(s, 5)
	assert.True(t, s.Players[0].HasLongestRoad)
	assert.Equal(t, 5, s.Players[0].LongestRoadLength)

	build(s, 2, "blue", KindSettlement)
	UpdateLongestRoad(s, 5)
	assert.False(t, s.Players[0].HasLongestRoad, "broken road drops below the minimum")
	assert.Equal(t, 3, s.Players[0].LongestRoadLength)
}

func TestUpdateLargestArmy(t *testing.T) {
	s := newTestState()
	orange, blue, red := s.Players[0], s.Players[1], s.Players[2]

	orange.PlayedKnights = 2
	UpdateLargestArmy(s, 3)
	assert.False(t, orange.HasLargestArmy, "below minimum")

	orange.PlayedKnights = 3
	UpdateLargestArmy(s, 3)
	assert.True(t, orange.HasLargestArmy)

	blue.PlayedKnights = 3
	UpdateLargestArmy(s, 3)
	assert.True(t, orange.HasLargestArmy, "incumbent keeps the card on a tie")
	assert.False(t, blue.HasLargestArmy)

	blue.PlayedKnights = 4
	UpdateLargestArmy(s, 3)
	assert.False(t, orange.HasLargestArmy)
	assert.True(t, blue.HasLargestArmy)

	blue.HasLargestArmy = false
	red.PlayedKnights = 4
	UpdateLargestArmy(s, 3)
	for _, p := range s.Players {
		assert.False(t, p.HasLargestArmy, "tie without incumbent awards nobody")
	}
}

func TestRecompute(t *testing.T) {
	s := newTestState()
	orange := s.Players[0]
	build(s, 0, "orange", KindSettlement)
	build(s, 3, "orange", KindCity)
	orange.DevelopmentCards[VictoryPoint] = 1
	orange.PlayedKnights = 3
	ownRoads(s, "orange", chain(3, 8)...)

	NewEngine(DefaultRules(), &scriptedRNG{}).Recompute(s)

	assert.True(t, orange.HasLongestRoad)
	assert.True(t, orange.HasLargestArmy)
	assert.Equal(t, 1+2+1+2+2, orange.VictoryPoints)
	assert.Zero(t, s.Players[1].VictoryPoints)
}

func TestWinner(t *testing.T) {
	s := newTestState()
	s.Players[0].VictoryPoints = 9
	s.Players[1].VictoryPoints = 4

	_, ok := Winner(s, 10)
	assert.False(t, ok)

	s.Players[0].VictoryPoints = 10
	w, ok := Winner(s, 10)
	require.True(t, ok)
	assert.Equal(t, Color("orange"), w.Color)

	s.Players[2].VictoryPoints = 10
	_, ok = Winner(s, 10)
	assert.False(t, ok, "tied leaders produce no winner")
}
