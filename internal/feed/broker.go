// Package feed fans game state out to viewers: websocket clients through an
// in-process Broker and other processes through Redis.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"catanrig/internal/game"
)

// Event types pushed to viewers.
const (
	EventState   = "state"
	EventTurn    = "turn"
	EventDice    = "dice"
	EventWinner  = "winner"
	EventMessage = "message"
)

// Event is one JSON message published to viewers.
type Event struct {
	Type  string      `json:"type"`
	State *game.State `json:"state,omitempty"`
	Seat  *int        `json:"seat,omitempty"`
	Color game.Color  `json:"color,omitempty"`
	Roll  *game.Roll  `json:"roll,omitempty"`
	Text  string      `json:"text,omitempty"`
}

// StateEvent encodes s as a state event.
func StateEvent(s *game.State) ([]byte, error) {
	data, err := json.Marshal(Event{Type: EventState, State: s})
	if err != nil {
		return nil, fmt.Errorf("marshal state event: %w", err)
	}
	return data, nil
}

// Broker is an in-process pub/sub of JSON events. Slow subscribers miss
// events rather than block the game loop.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
	last []byte
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan []byte]struct{})}
}

// Subscribe returns a channel of JSON events. When a state has already been
// recorded it is queued first so a new viewer starts from the current board.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.last != nil {
		ch <- b.last
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from the subscribers.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Subscribers reports how many channels are subscribed.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Latest returns the last recorded state event, or nil.
func (b *Broker) Latest() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Record publishes s as a state event and keeps it for new subscribers.
func (b *Broker) Record(_ context.Context, s *game.State) error {
	data, err := StateEvent(s)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.last = data
	b.mu.Unlock()
	b.publish(data)
	return nil
}

// Publish sends ev to every subscriber.
func (b *Broker) Publish(ev Event) {
	data, _ := json.Marshal(ev)
	b.publish(data)
}

func (b *Broker) publish(data []byte) {
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
		}
	}
	b.mu.RUnlock()
}

// The Broker doubles as a notifier so viewers see what the table sees.

func (b *Broker) TurnStarted(seat int, c game.Color) {
	b.Publish(Event{Type: EventTurn, Seat: &seat, Color: c})
}

func (b *Broker) SetPlayerLight(game.Color, bool) {}
func (b *Broker) ClearPlayerLights()              {}

func (b *Broker) ShowDice(r game.Roll) {
	b.Publish(Event{Type: EventDice, Roll: &r})
}

func (b *Broker) FlashWinner(c game.Color) {
	b.Publish(Event{Type: EventWinner, Color: c})
}

func (b *Broker) Message(text string) {
	b.Publish(Event{Type: EventMessage, Text: text})
}
