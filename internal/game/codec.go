package game

import (
	"encoding/json"
	"fmt"
	"io"
)

var requiredKeys = []string{"players", "settlements", "roads", "tiles"}

// Decode reads a state document, fills runtime defaults and validates it.
// Any error here is a configuration error: the caller must not start a game.
func Decode(r io.Reader) (*State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("state must be a JSON object: %w", err)
	}
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, k)
		}
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s *State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Normalize fills fields that older or hand-written documents may omit.
func (s *State) Normalize() {
	for _, p := range s.Players {
		if p.Resources == nil {
			p.Resources = NewResourceCounts()
		}
		if p.DevelopmentCards == nil {
			p.DevelopmentCards = NewDevCardCounts()
		}
		if p.PendingActions == nil {
			p.PendingActions = PendingQueue{}
		}
	}
	if s.Bank.Resources == nil {
		s.Bank.Resources = NewResourceCounts()
		for _, r := range Resources {
			s.Bank.Resources[r] = DefaultRules().BankStart
		}
	}
	if s.Bank.DevelopmentDeck == nil {
		s.Bank.DevelopmentDeck = []DevCard{}
	}
	if s.Bank.Discarded == nil {
		s.Bank.Discarded = []DevCard{}
	}
	if s.Game.Phase == "" {
		s.Game.Phase = PhaseSetup
	}
	if s.Game.TurnNumber == 0 {
		s.Game.TurnNumber = 1
	}
	if s.Setup.PlacementsRequired == 0 {
		s.Setup.PlacementsRequired = 1
	}
	if s.Setup.Order == nil {
		for i := range s.Players {
			s.Setup.Order = append(s.Setup.Order, i)
		}
	}
	if s.Setup.PlacementsDone == nil {
		s.Setup.PlacementsDone = make(map[Color]int, len(s.Players))
		for _, p := range s.Players {
			s.Setup.PlacementsDone[p.Color] = 0
		}
	}
}

// Validate checks the structural invariants of the board.
func (s *State) Validate() error {
	colors := make(map[Color]bool, len(s.Players))
	for i, p := range s.Players {
		if p == nil {
			return fmt.Errorf("%w: players[%d]", ErrNullEntry, i)
		}
		if p.Color == "" || colors[p.Color] {
			return fmt.Errorf("%w: players[%d] %q", ErrPlayerColor, i, p.Color)
		}
		colors[p.Color] = true
	}
	for i, r := range s.Roads {
		if r == nil {
			return fmt.Errorf("%w: roads[%d]", ErrNullEntry, i)
		}
	}
	for i, t := range s.Tiles {
		if t == nil {
			return fmt.Errorf("%w: tiles[%d]", ErrNullEntry, i)
		}
	}

	seen := make(map[int]bool, len(s.Settlements))
	for i, v := range s.Settlements {
		if v == nil {
			return fmt.Errorf("%w: settlements[%d]", ErrNullEntry, i)
		}
		if seen[v.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateSettlement, v.ID)
		}
		seen[v.ID] = true
		if v.Kind.Built() != (v.Owner != "") {
			return fmt.Errorf("%w: settlement %d", ErrInconsistentVertex, v.ID)
		}
	}
	for _, i := range s.Setup.Order {
		if i < 0 || i >= len(s.Players) {
			return fmt.Errorf("setup order references player %d of %d", i, len(s.Players))
		}
	}
	return nil
}

// Clone returns a deep copy via the JSON form.
func (s *State) Clone() (*State, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
