package protocol

import (
	"fmt"
	"strings"
)

// MenuControl tells the player display which seat is active and whether to
// reset its menu to the root screen.
type MenuControl struct {
	Seq          uint8
	ActivePlayer uint8
	Reset        bool
}

func (p *MenuControl) Magic() byte           { return MagicMenuControl }
func (p *MenuControl) Sequence() uint8       { return p.Seq }
func (p *MenuControl) setSequence(seq uint8) { p.Seq = seq }

// MarshalBinary encodes a 7-byte menu control frame.
func (p *MenuControl) MarshalBinary() ([]byte, error) {
	var flags byte
	if p.Reset {
		flags |= flagReset
	}
	b := make([]byte, 0, MenuControlSize)
	b = append(b, MagicMenuControl, Version, p.Seq, menuControlLen, p.ActivePlayer, flags)
	return seal(b), nil
}

// UnmarshalBinary decodes a menu control frame.
func (p *MenuControl) UnmarshalBinary(frame []byte) error {
	r, err := header(frame, MagicMenuControl, MenuControlSize)
	if err != nil {
		return err
	}
	seq := r.u8()
	if r.u8() != menuControlLen {
		return ErrBadLength
	}
	*p = MenuControl{Seq: seq, ActivePlayer: r.u8(), Reset: r.u8()&flagReset != 0}
	return nil
}

// MenuRender is four fixed-width text lines for one player's display.
type MenuRender struct {
	Seq    uint8
	Player uint8
	Lines  [MenuLines]string
}

func (p *MenuRender) Magic() byte           { return MagicMenuRender }
func (p *MenuRender) Sequence() uint8       { return p.Seq }
func (p *MenuRender) setSequence(seq uint8) { p.Seq = seq }

// MarshalBinary encodes a 90-byte menu render frame. Lines are truncated or
// space padded to MenuLineWidth; bytes outside printable ASCII become '?'.
func (p *MenuRender) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, MenuRenderSize)
	b = append(b, MagicMenuRender, Version, p.Seq, menuRenderLen, p.Player)
	for _, line := range p.Lines {
		b = append(b, fitLine(line)...)
	}
	return seal(b), nil
}

// UnmarshalBinary decodes a menu render frame. Trailing padding is removed.
func (p *MenuRender) UnmarshalBinary(frame []byte) error {
	r, err := header(frame, MagicMenuRender, MenuRenderSize)
	if err != nil {
		return err
	}
	out := MenuRender{Seq: r.u8()}
	if r.u8() != menuRenderLen {
		return ErrBadLength
	}
	out.Player = r.u8()
	for i := range out.Lines {
		raw := r.bytes(MenuLineWidth)
		for _, c := range raw {
			if c != 0 && (c < 0x20 || c > 0x7e) {
				return fmt.Errorf("%w: menu line %d byte %#x", ErrMalformed, i, c)
			}
		}
		out.Lines[i] = strings.TrimRight(string(raw), " \x00")
	}
	*p = out
	return nil
}

func fitLine(s string) []byte {
	out := make([]byte, MenuLineWidth)
	n := 0
	for _, c := range s {
		if n == MenuLineWidth {
			break
		}
		if c < 0x20 || c > 0x7e {
			c = '?'
		}
		out[n] = byte(c)
		n++
	}
	for ; n < MenuLineWidth; n++ {
		out[n] = ' '
	}
	return out
}
