package game

import "encoding/json"

// Resource is a tile or card resource type.
type Resource string

const (
	Wood   Resource = "wood"
	Brick  Resource = "brick"
	Sheep  Resource = "sheep"
	Wheat  Resource = "wheat"
	Ore    Resource = "ore"
	Desert Resource = "desert" // tiles only, never held by players
)

// Resources lists the five tradable resources in wire order.
var Resources = [5]Resource{Wood, Brick, Sheep, Wheat, Ore}

// Tradable reports whether r is one of the five card resources.
func (r Resource) Tradable() bool {
	_, ok := r.Index()
	return ok
}

// Index returns the wire id (0-4) of a tradable resource.
func (r Resource) Index() (int, bool) {
	for i, v := range Resources {
		if v == r {
			return i, true
		}
	}
	return 0, false
}

func (r Resource) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// DevCard is a development card type.
type DevCard string

const (
	Knight       DevCard = "knight"
	VictoryPoint DevCard = "victory_point"
	RoadBuilding DevCard = "road_building"
	YearOfPlenty DevCard = "year_of_plenty"
	Monopoly     DevCard = "monopoly"
)

// DevCards lists development card types in wire order.
var DevCards = [5]DevCard{Knight, VictoryPoint, RoadBuilding, YearOfPlenty, Monopoly}

// Index returns the wire id (0-4) of the card type.
func (c DevCard) Index() (int, bool) {
	for i, v := range DevCards {
		if v == c {
			return i, true
		}
	}
	return 0, false
}

// ResourceCounts maps a resource to a non-negative count.
type ResourceCounts map[Resource]int

// NewResourceCounts returns zeroed counts for all five resources.
func NewResourceCounts() ResourceCounts {
	rc := make(ResourceCounts, len(Resources))
	for _, r := range Resources {
		rc[r] = 0
	}
	return rc
}

// Total sums the five tradable resources.
func (rc ResourceCounts) Total() int {
	total := 0
	for _, r := range Resources {
		total += rc[r]
	}
	return total
}

// Vector returns the counts in wire order.
func (rc ResourceCounts) Vector() [5]int {
	var v [5]int
	for i, r := range Resources {
		v[i] = rc[r]
	}
	return v
}

// DevCardCounts maps a development card type to a count.
type DevCardCounts map[DevCard]int

// NewDevCardCounts returns zeroed counts for all card types.
func NewDevCardCounts() DevCardCounts {
	dc := make(DevCardCounts, len(DevCards))
	for _, c := range DevCards {
		dc[c] = 0
	}
	return dc
}

// Cost is a resource requirement.
type Cost map[Resource]int

// Structure is a purchasable board piece.
type Structure string

const (
	BuildRoad       Structure = "road"
	BuildSettlement Structure = "settlement"
	BuildCity       Structure = "city"
)

// costDevelopmentCard keys the development card price in Rules.Costs.
const costDevelopmentCard = "development_card"
