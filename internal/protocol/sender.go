package protocol

import (
	"fmt"
	"io"
	"sync"
)

// Sender writes packets to a link, stamping each with the next sequence
// number of its family. Sequence numbers wrap at 256.
type Sender struct {
	mu  sync.Mutex
	w   io.Writer
	seq map[byte]uint8
}

func NewSender(w io.Writer) *Sender {
	return &Sender{w: w, seq: make(map[byte]uint8)}
}

// Send encodes and writes p. A packet that fails to encode does not consume
// a sequence number.
func (s *Sender) Send(p Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	magic := p.Magic()
	p.setSequence(s.seq[magic])
	frame, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	s.seq[magic]++
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("write %#x frame: %w", magic, err)
	}
	return nil
}
