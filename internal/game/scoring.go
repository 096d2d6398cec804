package game

// LongestRoad returns the length of c's longest trail: a path over c's roads
// that reuses no road. A vertex built on by another player ends a trail; the
// trail may arrive there but not continue through it.
func LongestRoad(s *State, c Color) int {
	var edges []Edge
	for _, r := range s.Roads {
		if r.Owner == c {
			edges = append(edges, r.Edge())
		}
	}
	if len(edges) == 0 {
		return 0
	}

	adjacent := make(map[int][]int, len(edges)*2)
	for i, e := range edges {
		adjacent[e[0]] = append(adjacent[e[0]], i)
		adjacent[e[1]] = append(adjacent[e[1]], i)
	}

	blocked := make(map[int]bool)
	for _, v := range s.Settlements {
		if v.Owner != "" && v.Owner != c && v.Kind.Built() {
			blocked[v.ID] = true
		}
	}

	used := make([]bool, len(edges))
	best := 0
	var walk func(vertex, length int)
	walk = func(vertex, length int) {
		best = max(best, length)
		if length > 0 && blocked[vertex] {
			return
		}
		for _, i := range adjacent[vertex] {
			if used[i] {
				continue
			}
			next := edges[i][0]
			if next == vertex {
				next = edges[i][1]
			}
			used[i] = true
			walk(next, length+1)
			used[i] = false
		}
	}

	for i, e := range edges {
		used[i] = true
		walk(e[0], 1)
		walk(e[1], 1)
		used[i] = false
	}
	return best
}

// awardSpecial picks the holder of a special card from per-player scores.
// The card goes to the unique leader at or above minimum; a tie keeps the
// previous holder if they are among the leaders, otherwise nobody holds it.
func awardSpecial(players []*Player, scores []int, minimum int, holds func(*Player) *bool) {
	var previous *Player
	for _, p := range players {
		if *holds(p) {
			previous = p
			break
		}
	}
	for _, p := range players {
		*holds(p) = false
	}

	best := 0
	for _, v := range scores {
		best = max(best, v)
	}
	if best < minimum {
		return
	}

	var leaders []*Player
	for i, v := range scores {
		if v == best {
			leaders = append(leaders, players[i])
		}
	}

	var winner *Player
	if len(leaders) == 1 {
		winner = leaders[0]
	} else {
		for _, p := range leaders {
			if p == previous {
				winner = p
			}
		}
	}
	if winner != nil {
		*holds(winner) = true
	}
}

// UpdateLongestRoad recomputes every player's road length and the holder.
func UpdateLongestRoad(s *State, minimum int) {
	if len(s.Players) == 0 {
		return
	}
	lengths := make([]int, len(s.Players))
	for i, p := range s.Players {
		lengths[i] = LongestRoad(s, p.Color)
		p.LongestRoadLength = lengths[i]
	}
	awardSpecial(s.Players, lengths, minimum, func(p *Player) *bool { return &p.HasLongestRoad })
}

// UpdateLargestArmy recomputes the largest-army holder from played knights.
func UpdateLargestArmy(s *State, minimum int) {
	if len(s.Players) == 0 {
		return
	}
	knights := make([]int, len(s.Players))
	for i, p := range s.Players {
		knights[i] = p.PlayedKnights
	}
	awardSpecial(s.Players, knights, minimum, func(p *Player) *bool { return &p.HasLargestArmy })
}

// VictoryPoints scores p: settlements 1, cities 2, hidden victory point
// cards 1, each special card bonus points.
func VictoryPoints(s *State, p *Player, bonus int) int {
	points := 0
	for _, v := range s.Settlements {
		if v.Owner != p.Color {
			continue
		}
		switch v.Kind {
		case KindSettlement:
			points++
		case KindCity:
			points += 2
		}
	}
	points += p.DevelopmentCards[VictoryPoint]
	if p.HasLongestRoad {
		points += bonus
	}
	if p.HasLargestArmy {
		points += bonus
	}
	return max(points, 0)
}

// Recompute refreshes both special cards and every player's points.
func (e *Engine) Recompute(s *State) {
	UpdateLongestRoad(s, e.rules.LongestRoadMin)
	UpdateLargestArmy(s, e.rules.LargestArmyMin)
	for _, p := range s.Players {
		p.VictoryPoints = VictoryPoints(s, p, e.rules.SpecialCardPoints)
	}
}

// Winner returns the player holding a strict maximum of points at or above
// threshold. A tie at the top yields no winner.
func Winner(s *State, threshold int) (*Player, bool) {
	var leader *Player
	tied := false
	for _, p := range s.Players {
		switch {
		case leader == nil || p.VictoryPoints > leader.VictoryPoints:
			leader, tied = p, false
		case p.VictoryPoints == leader.VictoryPoints:
			tied = true
		}
	}
	if leader == nil || tied || leader.VictoryPoints < threshold {
		return nil, false
	}
	return leader, true
}
