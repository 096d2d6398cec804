package protocol

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// Receiver is the peripheral read loop: it gathers bytes, hands complete
// packets to a handler, and calls Idle between reads so local input can be
// polled in the same loop.
type Receiver struct {
	Parser *Parser
	Poll   time.Duration
	Idle   func()
	Logger *slog.Logger
}

// Run reads src until ctx is done or src returns an error. io.EOF ends the
// loop cleanly once buffered frames are handled. Handler errors are logged
// and do not stop the loop. The reading goroutine exits when src does; close
// src to release it after cancellation.
func (r *Receiver) Run(ctx context.Context, src io.Reader, handle func(Packet) error) error {
	if r.Parser == nil {
		r.Parser = NewParser()
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.DiscardHandler)
	}
	poll := r.Poll
	if poll <= 0 {
		poll = 4 * time.Millisecond
	}

	type chunk struct {
		b   []byte
		err error
	}
	chunks := make(chan chunk)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := src.Read(buf)
			c := chunk{b: append([]byte(nil), buf[:n]...), err: err}
			select {
			case chunks <- c:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-chunks:
			r.Parser.Write(c.b)
			r.drain(handle)
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					return nil
				}
				return c.err
			}
		case <-ticker.C:
			if r.Idle != nil {
				r.Idle()
			}
		}
	}
}

func (r *Receiver) drain(handle func(Packet) error) {
	for {
		pkt, ok := r.Parser.Next()
		if !ok {
			return
		}
		if err := handle(pkt); err != nil {
			r.Logger.Warn("packet handler failed", "magic", pkt.Magic(), "seq", pkt.Sequence(), "error", err)
		}
	}
}
