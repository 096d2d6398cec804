package protocol

import (
	"fmt"

	"catanrig/internal/game"
)

// SnapshotFromState packs the first three players' counters, clamping each
// to a byte. Missing seats are zero.
func SnapshotFromState(s *game.State) *Snapshot {
	out := &Snapshot{}
	for i, p := range s.Players {
		if i == PlayerCount {
			break
		}
		block := &out.Players[i]
		for j, r := range game.Resources {
			block.Resources[j] = Clip(p.Resources[r])
		}
		block.VictoryPoints = Clip(p.VictoryPoints)
		for j, c := range game.DevCards {
			block.DevCards[j] = Clip(p.DevelopmentCards[c])
		}
	}
	return out
}

// TileVectorFromState maps each tile's resource to its wire id. The desert
// has no id of its own and is sent as desertValue.
func TileVectorFromState(s *game.State, desertValue uint8) (*TileVector, error) {
	if len(s.Tiles) != TileCount {
		return nil, fmt.Errorf("%w: %d tiles", ErrBadLength, len(s.Tiles))
	}
	if desertValue > MaxTileValue {
		return nil, fmt.Errorf("%w: desert value %d", ErrMalformed, desertValue)
	}
	out := &TileVector{}
	for i, t := range s.Tiles {
		if t.Resource == game.Desert {
			out.Values[i] = desertValue
			continue
		}
		id, ok := t.Resource.Index()
		if !ok {
			return nil, fmt.Errorf("%w: tile %d resource %q", ErrMalformed, i, t.Resource)
		}
		out.Values[i] = uint8(id)
	}
	return out, nil
}

// DevCardID returns the wire id of a development card type.
func DevCardID(c game.DevCard) (uint8, bool) {
	i, ok := c.Index()
	return uint8(i), ok
}

// DevCardFromID is the inverse of DevCardID.
func DevCardFromID(id uint8) (game.DevCard, bool) {
	if int(id) >= len(game.DevCards) {
		return "", false
	}
	return game.DevCards[id], true
}
