package protocol

// Buffer accumulates bytes read from a stream. Consumed bytes are tracked by
// a cursor and reclaimed lazily on the next write.
type Buffer struct {
	data []byte
	off  int
}

// Write appends p to the unconsumed bytes. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.off > 0 && b.off >= len(b.data)/2 {
		n := copy(b.data, b.data[b.off:])
		b.data = b.data[:n]
		b.off = 0
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int { return len(b.data) - b.off }

// Bytes returns the unconsumed bytes without consuming them. The slice is
// only valid until the next Write.
func (b *Buffer) Bytes() []byte { return b.data[b.off:] }

// Next consumes and returns a copy of the next n bytes.
func (b *Buffer) Next(n int) []byte {
	n = min(n, b.Len())
	out := make([]byte, n)
	copy(out, b.data[b.off:])
	b.off += n
	return out
}

// Skip consumes n bytes.
func (b *Buffer) Skip(n int) {
	b.off += min(n, b.Len())
}

// reader walks the fields of a frame.
type reader struct {
	b   []byte
	off int
}

func (r *reader) u8() uint8 {
	if r.off >= len(r.b) {
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) bytes(n int) []byte {
	end := min(r.off+n, len(r.b))
	v := r.b[r.off:end]
	r.off = end
	return v
}

func (r *reader) remaining() int { return len(r.b) - r.off }
