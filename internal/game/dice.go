package game

// Roll throws two independent six-sided dice.
func (e *Engine) Roll() Roll {
	d1 := e.rng.IntN(6) + 1
	d2 := e.rng.IntN(6) + 1
	return Roll{Die1: d1, Die2: d2, Total: d1 + d2}
}

// Allocate pays out every unrobbed tile numbered total to the owners of its
// built corners: one card per settlement, two per city, clamped to the bank.
// A total of 7 allocates nothing; see ResolveSeven.
func (e *Engine) Allocate(s *State, total int) Payouts {
	payouts := Payouts{}
	if total == 7 {
		return payouts
	}
	vertices := s.settlementsByID()
	for _, tile := range s.Tiles {
		if tile.Robber || tile.RollNumber == nil || *tile.RollNumber != total {
			continue
		}
		if !tile.Resource.Tradable() {
			continue
		}
		for _, id := range tile.SettlementIDs {
			v, ok := vertices[id]
			if !ok || !v.Kind.Built() {
				continue
			}
			owner := s.Player(v.Owner)
			if owner == nil {
				continue
			}
			amount := 1
			if v.Kind == KindCity {
				amount = 2
			}
			if got := s.Bank.Grant(owner, tile.Resource, amount); got > 0 {
				payouts.add(owner.Color, tile.Resource, got)
			}
		}
	}
	return payouts
}

// ResolveSeven makes every player holding at least the discard threshold
// return half their cards, rounded down, to the bank. Each discarded card is
// drawn uniformly from the cards still held.
func (e *Engine) ResolveSeven(s *State) Payouts {
	discards := Payouts{}
	for _, p := range s.Players {
		total := p.Resources.Total()
		if total < e.rules.DiscardThreshold {
			continue
		}
		discards[p.Color] = e.discard(s, p, total/2)
	}
	return discards
}

// discard samples n cards without replacement from p's hand.
func (e *Engine) discard(s *State, p *Player, n int) ResourceCounts {
	out := ResourceCounts{}
	for ; n > 0; n-- {
		held := p.Resources.Total()
		if held <= 0 {
			break
		}
		pick := e.rng.IntN(held)
		for _, r := range Resources {
			c := p.Resources[r]
			if c <= 0 {
				continue
			}
			if pick < c {
				p.Resources[r]--
				s.Bank.Resources[r]++
				out[r]++
				break
			}
			pick -= c
		}
	}
	return out
}
