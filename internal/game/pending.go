package game

import "context"

// PendingAction is a paid-for structure awaiting physical placement.
type PendingAction struct {
	Type Structure `json:"type"`
}

// PendingQueue is a FIFO of purchase intents. The build engine only appends;
// placement is the job of a Placer.
type PendingQueue []PendingAction

// Push appends an intent at the tail.
func (q *PendingQueue) Push(a PendingAction) {
	*q = append(*q, a)
}

// Peek returns the head without removing it.
func (q PendingQueue) Peek() (PendingAction, bool) {
	if len(q) == 0 {
		return PendingAction{}, false
	}
	return q[0], true
}

// Pop removes and returns the head.
func (q *PendingQueue) Pop() (PendingAction, bool) {
	a, ok := q.Peek()
	if !ok {
		return a, false
	}
	*q = (*q)[1:]
	return a, true
}

// Len returns the number of queued intents.
func (q PendingQueue) Len() int { return len(q) }

// Placer consumes purchase intents and performs the board mutation.
type Placer interface {
	Place(ctx context.Context, s *State, p *Player, a PendingAction) error
}

// DrainPending hands queued intents to pl in order. It stops at the first
// failure and leaves that intent at the head of the queue.
func DrainPending(ctx context.Context, s *State, p *Player, pl Placer) (int, error) {
	placed := 0
	for {
		a, ok := p.PendingActions.Peek()
		if !ok {
			return placed, nil
		}
		if err := pl.Place(ctx, s, p, a); err != nil {
			return placed, err
		}
		p.PendingActions.Pop()
		placed++
	}
}
