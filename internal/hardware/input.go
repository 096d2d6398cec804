package hardware

import (
	"bufio"
	"context"
	"io"
	"strings"
)

type step struct {
	delta   int
	pressed bool
}

// KeyInput emulates a rotary encoder from text: each line is a run of
// '+' and '-' (turn right or left) optionally followed by '.', and an empty
// line is a press.
type KeyInput struct {
	steps chan step
	done  chan struct{}
}

// NewKeyInput starts reading r in the background.
func NewKeyInput(r io.Reader) *KeyInput {
	k := &KeyInput{steps: make(chan step, 32), done: make(chan struct{})}
	go func() {
		defer close(k.done)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			k.steps <- parseStep(sc.Text())
		}
	}()
	return k
}

func parseStep(line string) step {
	line = strings.TrimSpace(line)
	var st step
	for _, c := range line {
		switch c {
		case '+', 'r':
			st.delta++
		case '-', 'l':
			st.delta--
		case '.', 'p':
			st.pressed = true
		}
	}
	if line == "" {
		st.pressed = true
	}
	return st
}

// Read blocks for the next input step.
func (k *KeyInput) Read(ctx context.Context) (int, bool, error) {
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case st := <-k.steps:
		return st.delta, st.pressed, nil
	case <-k.done:
		select {
		case st := <-k.steps:
			return st.delta, st.pressed, nil
		default:
			return 0, false, io.EOF
		}
	}
}

// Poll returns a pending step without blocking.
func (k *KeyInput) Poll() (delta int, pressed, ok bool) {
	select {
	case st := <-k.steps:
		return st.delta, st.pressed, true
	default:
		return 0, false, false
	}
}
