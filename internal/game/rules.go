package game

import "maps"

// Rules holds the tunable constants of a game. The zero value is not usable;
// start from DefaultRules.
type Rules struct {
	// Costs is keyed by structure name or "development_card".
	Costs             map[string]Cost `yaml:"costs" json:"costs"`
	BankStart         int             `yaml:"bank_start" json:"bank_start"`
	DevDeck           map[DevCard]int `yaml:"dev_deck" json:"dev_deck"`
	WinThreshold      int             `yaml:"win_threshold" json:"win_threshold"`
	LongestRoadMin    int             `yaml:"longest_road_min" json:"longest_road_min"`
	LargestArmyMin    int             `yaml:"largest_army_min" json:"largest_army_min"`
	DiscardThreshold  int             `yaml:"discard_threshold" json:"discard_threshold"`
	SetupPlacements   int             `yaml:"setup_placements" json:"setup_placements"`
	DefaultTradeRate  int             `yaml:"default_trade_rate" json:"default_trade_rate"`
	SpecialCardPoints int             `yaml:"special_card_points" json:"special_card_points"`
}

// DefaultRules returns the standard three-player rig rules.
func DefaultRules() Rules {
	return Rules{
		Costs: map[string]Cost{
			string(BuildRoad):       {Wood: 1, Brick: 1},
			string(BuildSettlement): {Wood: 1, Brick: 1, Sheep: 1, Wheat: 1},
			string(BuildCity):       {Wheat: 2, Ore: 3},
			costDevelopmentCard:     {Sheep: 1, Wheat: 1, Ore: 1},
		},
		BankStart: 19,
		DevDeck: map[DevCard]int{
			Knight:       14,
			VictoryPoint: 5,
			RoadBuilding: 2,
			YearOfPlenty: 2,
			Monopoly:     2,
		},
		WinThreshold:      10,
		LongestRoadMin:    5,
		LargestArmyMin:    3,
		DiscardThreshold:  7,
		SetupPlacements:   1,
		DefaultTradeRate:  4,
		SpecialCardPoints: 2,
	}
}

// Merge fills zero fields of r from def.
func (r Rules) Merge(def Rules) Rules {
	if r.Costs == nil {
		r.Costs = maps.Clone(def.Costs)
	} else {
		r.Costs = maps.Clone(r.Costs)
		for k, v := range def.Costs {
			if _, ok := r.Costs[k]; !ok {
				r.Costs[k] = v
			}
		}
	}
	if r.BankStart == 0 {
		r.BankStart = def.BankStart
	}
	if r.DevDeck == nil {
		r.DevDeck = maps.Clone(def.DevDeck)
	}
	if r.WinThreshold == 0 {
		r.WinThreshold = def.WinThreshold
	}
	if r.LongestRoadMin == 0 {
		r.LongestRoadMin = def.LongestRoadMin
	}
	if r.LargestArmyMin == 0 {
		r.LargestArmyMin = def.LargestArmyMin
	}
	if r.DiscardThreshold == 0 {
		r.DiscardThreshold = def.DiscardThreshold
	}
	if r.SetupPlacements == 0 {
		r.SetupPlacements = def.SetupPlacements
	}
	if r.DefaultTradeRate == 0 {
		r.DefaultTradeRate = def.DefaultTradeRate
	}
	if r.SpecialCardPoints == 0 {
		r.SpecialCardPoints = def.SpecialCardPoints
	}
	return r
}

// Cost returns the price of a structure.
func (r Rules) Cost(s Structure) (Cost, bool) {
	c, ok := r.Costs[string(s)]
	return c, ok
}

// DevCardCost returns the price of a development card.
func (r Rules) DevCardCost() Cost {
	return r.Costs[costDevelopmentCard]
}
