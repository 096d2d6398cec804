package protocol

import "fmt"

// TileVector carries the resource id (0-4) of each of the 19 board tiles.
type TileVector struct {
	Seq    uint8
	Values [TileCount]uint8
}

func (p *TileVector) Magic() byte           { return MagicTileVector }
func (p *TileVector) Sequence() uint8       { return p.Seq }
func (p *TileVector) setSequence(seq uint8) { p.Seq = seq }

// MarshalBinary encodes a 24-byte tile vector frame.
func (p *TileVector) MarshalBinary() ([]byte, error) {
	for i, v := range p.Values {
		if v > MaxTileValue {
			return nil, fmt.Errorf("%w: tile %d value %d", ErrMalformed, i, v)
		}
	}
	b := make([]byte, 0, TileVectorSize)
	b = append(b, MagicTileVector, Version, p.Seq, TileCount)
	b = append(b, p.Values[:]...)
	return seal(b), nil
}

// UnmarshalBinary decodes a tile vector frame.
func (p *TileVector) UnmarshalBinary(frame []byte) error {
	r, err := header(frame, MagicTileVector, TileVectorSize)
	if err != nil {
		return err
	}
	out := TileVector{Seq: r.u8()}
	if r.u8() != TileCount {
		return ErrBadLength
	}
	copy(out.Values[:], r.bytes(TileCount))
	for i, v := range out.Values {
		if v > MaxTileValue {
			return fmt.Errorf("%w: tile %d value %d", ErrMalformed, i, v)
		}
	}
	*p = out
	return nil
}
