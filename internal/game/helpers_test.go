package game

// scriptedRNG replays fixed values; each is reduced modulo n.
type scriptedRNG struct {
	values []int
	next   int
}

func (r *scriptedRNG) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.next%len(r.values)] % n
	r.next++
	return v
}

func intPtr(v int) *int { return &v }

// newTestState builds three players around a small hand-made board:
// a line of vertices 0..9 joined by roads (i, i+1), and two tiles.
func newTestState() *State {
	s := &State{}
	for _, c := range Palette {
		s.Players = append(s.Players, NewPlayer(c))
	}
	for id := 0; id < 10; id++ {
		s.Settlements = append(s.Settlements, &Settlement{ID: id})
	}
	for id := 0; id < 9; id++ {
		s.Roads = append(s.Roads, &Road{A: id, B: id + 1})
	}
	s.Tiles = []*Tile{
		{Resource: Wheat, RollNumber: intPtr(5), SettlementIDs: []int{0, 1, 2, 3, 4, 5}},
		{Resource: Ore, RollNumber: intPtr(8), SettlementIDs: []int{4, 5, 6, 7, 8, 9}},
		{Resource: Desert, Robber: true, SettlementIDs: []int{0, 2, 4, 6, 8, 9}},
	}
	s.Bank = Bank{Resources: NewResourceCounts()}
	for _, r := range Resources {
		s.Bank.Resources[r] = 19
	}
	s.Normalize()
	return s
}

func build(s *State, id int, owner Color, kind Kind) {
	v := s.Settlement(id)
	v.Owner = owner
	v.Kind = kind
}

func ownRoads(s *State, owner Color, edges ...Edge) {
	for _, e := range edges {
		for _, r := range s.Roads {
			if r.Edge() == e {
				r.Owner = owner
			}
		}
	}
}

func resourceTotal(s *State, r Resource) int {
	total := s.Bank.Resources[r]
	for _, p := range s.Players {
		total += p.Resources[r]
	}
	return total
}
