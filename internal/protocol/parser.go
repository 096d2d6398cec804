package protocol

// Stats counts what a Parser did with the bytes it was fed.
type Stats struct {
	Decoded  int // frames returned to the caller
	Dropped  int // frames discarded for a bad version, length, checksum or value
	Skipped  int // well-formed frames of families this endpoint ignores
	Resynced int // single bytes discarded while looking for a magic
}

// Parser splits a byte stream into packets. It never fails: a corrupt frame
// is dropped by discarding its magic byte, and the bytes after it are scanned
// one at a time until a known magic lines up again.
type Parser struct {
	buf    Buffer
	accept map[byte]bool
	stats  Stats

	// OnDrop, if set, observes every dropped frame.
	OnDrop func(magic byte, err error)
}

// NewParser returns a parser yielding only the given families. Frames of
// other known families are consumed and skipped. With no families, every
// family is yielded.
func NewParser(families ...byte) *Parser {
	p := &Parser{}
	if len(families) > 0 {
		p.accept = make(map[byte]bool, len(families))
		for _, f := range families {
			p.accept[f] = true
		}
	}
	return p
}

// Write feeds stream bytes to the parser.
func (p *Parser) Write(b []byte) (int, error) {
	return p.buf.Write(b)
}

// Buffered returns the number of bytes waiting for a complete frame.
func (p *Parser) Buffered() int { return p.buf.Len() }

// Stats returns the running counters.
func (p *Parser) Stats() Stats { return p.stats }

// Next returns the next complete packet, or false when more bytes are needed.
func (p *Parser) Next() (Packet, bool) {
	for p.buf.Len() > 0 {
		head := p.buf.Bytes()
		size, need, ok := frameSize(head)
		if need {
			return nil, false
		}
		if !ok {
			if Known(head[0]) {
				p.drop(head[0], ErrBadLength)
			} else {
				p.stats.Resynced++
			}
			p.buf.Skip(1)
			continue
		}
		if p.buf.Len() < size {
			return nil, false
		}

		// A bad frame gives up only its magic byte; its advertised size may be
		// wrong and cover the start of the next frame.
		pkt, err := Decode(head[:size])
		if err != nil {
			p.drop(head[0], err)
			p.buf.Skip(1)
			continue
		}
		p.buf.Skip(size)
		if p.accept != nil && !p.accept[pkt.Magic()] {
			p.stats.Skipped++
			continue
		}
		p.stats.Decoded++
		return pkt, true
	}
	return nil, false
}

func (p *Parser) drop(magic byte, err error) {
	p.stats.Dropped++
	if p.OnDrop != nil {
		p.OnDrop(magic, err)
	}
}
