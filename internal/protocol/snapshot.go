package protocol

// PlayerBlock is one player's public counters in wire order.
type PlayerBlock struct {
	Resources     [5]uint8 // wood, brick, sheep, wheat, ore
	VictoryPoints uint8
	DevCards      [5]uint8 // knight, victory_point, road_building, year_of_plenty, monopoly
}

// Snapshot carries the counters of all three seats.
type Snapshot struct {
	Seq     uint8
	Players [PlayerCount]PlayerBlock
}

func (p *Snapshot) Magic() byte           { return MagicSnapshot }
func (p *Snapshot) Sequence() uint8       { return p.Seq }
func (p *Snapshot) setSequence(seq uint8) { p.Seq = seq }

// MarshalBinary encodes a 37-byte snapshot frame.
func (p *Snapshot) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, SnapshotSize)
	b = append(b, MagicSnapshot, Version, p.Seq)
	for _, pl := range p.Players {
		b = append(b, pl.Resources[:]...)
		b = append(b, pl.VictoryPoints)
		b = append(b, pl.DevCards[:]...)
	}
	return seal(b), nil
}

// UnmarshalBinary decodes a snapshot frame.
func (p *Snapshot) UnmarshalBinary(frame []byte) error {
	r, err := header(frame, MagicSnapshot, SnapshotSize)
	if err != nil {
		return err
	}
	out := Snapshot{Seq: r.u8()}
	for i := range out.Players {
		pl := &out.Players[i]
		copy(pl.Resources[:], r.bytes(5))
		pl.VictoryPoints = r.u8()
		copy(pl.DevCards[:], r.bytes(5))
	}
	*p = out
	return nil
}
