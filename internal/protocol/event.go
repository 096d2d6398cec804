package protocol

import "fmt"

// EventType discriminates menu events sent by a player display.
type EventType uint8

const (
	EventEndTurn     EventType = 1
	EventBuyDevCard  EventType = 2
	EventUseDevCard  EventType = 3
	EventTradePlayer EventType = 4
	EventTradePort   EventType = 5
)

func (t EventType) String() string {
	switch t {
	case EventEndTurn:
		return "end_turn"
	case EventBuyDevCard:
		return "buy_dev_card"
	case EventUseDevCard:
		return "use_dev_card"
	case EventTradePlayer:
		return "trade_player"
	case EventTradePort:
		return "trade_port"
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// payloadLen is the exact payload size of each event type, type byte included.
func (t EventType) payloadLen() int {
	switch t {
	case EventEndTurn, EventBuyDevCard, EventTradePort:
		return 1
	case EventUseDevCard:
		return 2
	case EventTradePlayer:
		return 12
	}
	return 0
}

func validEventLen(n int) bool {
	return n == 1 || n == 2 || n == 12
}

// MenuEvent is a player's menu choice. Card is set for use_dev_card; Target,
// Give and Receive for trade_player.
type MenuEvent struct {
	Seq     uint8
	Type    EventType
	Card    uint8
	Target  uint8
	Give    [5]uint8
	Receive [5]uint8
}

func (p *MenuEvent) Magic() byte           { return MagicMenuEvent }
func (p *MenuEvent) Sequence() uint8       { return p.Seq }
func (p *MenuEvent) setSequence(seq uint8) { p.Seq = seq }

// MarshalBinary encodes a menu event frame of 5 + payload bytes.
func (p *MenuEvent) MarshalBinary() ([]byte, error) {
	n := p.Type.payloadLen()
	if n == 0 {
		return nil, fmt.Errorf("%w: event type %d", ErrMalformed, p.Type)
	}
	b := make([]byte, 0, menuEventOverhead+n)
	b = append(b, MagicMenuEvent, Version, p.Seq, byte(n), byte(p.Type))
	switch p.Type {
	case EventUseDevCard:
		if p.Card > maxDevCardID {
			return nil, fmt.Errorf("%w: card id %d", ErrMalformed, p.Card)
		}
		b = append(b, p.Card)
	case EventTradePlayer:
		b = append(b, p.Target)
		b = append(b, p.Give[:]...)
		b = append(b, p.Receive[:]...)
	}
	return seal(b), nil
}

// UnmarshalBinary decodes a menu event frame. The payload length must match
// the event type exactly.
func (p *MenuEvent) UnmarshalBinary(frame []byte) error {
	if len(frame) < menuEventOverhead+1 {
		return ErrShortFrame
	}
	n := int(frame[3])
	r, err := header(frame, MagicMenuEvent, menuEventOverhead+n)
	if err != nil {
		return err
	}
	out := MenuEvent{Seq: r.u8()}
	r.u8()
	out.Type = EventType(r.u8())
	if out.Type.payloadLen() == 0 {
		return fmt.Errorf("%w: event type %d", ErrMalformed, out.Type)
	}
	if out.Type.payloadLen() != n {
		return fmt.Errorf("%w: %s with payload %d", ErrBadLength, out.Type, n)
	}
	switch out.Type {
	case EventUseDevCard:
		out.Card = r.u8()
		if out.Card > maxDevCardID {
			return fmt.Errorf("%w: card id %d", ErrMalformed, out.Card)
		}
	case EventTradePlayer:
		out.Target = r.u8()
		copy(out.Give[:], r.bytes(5))
		copy(out.Receive[:], r.bytes(5))
	}
	if r.remaining() != 0 {
		return ErrBadLength
	}
	*p = out
	return nil
}
