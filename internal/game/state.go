package game

import "encoding/json"

// Phase is the top-level game lifecycle state.
type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseMain   Phase = "main"
	PhasePaused Phase = "paused"
	PhaseEnded  Phase = "ended"
)

// Color identifies a player. The empty color means "no owner".
type Color string

// Palette is the fixed set of player colors in seating order.
var Palette = []Color{"orange", "blue", "red"}

func (c Color) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// Kind is the structure occupying a vertex. The empty kind means none.
type Kind string

const (
	KindSettlement Kind = "settlement"
	KindCity       Kind = "city"
)

// Built reports whether k is a settlement or a city.
func (k Kind) Built() bool {
	return k == KindSettlement || k == KindCity
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if k == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(k))
}

// Point is a pixel position; camera points may be unset.
type Point struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// Player is one seat at the table.
type Player struct {
	Color             Color          `json:"color"`
	Resources         ResourceCounts `json:"resources"`
	DevelopmentCards  DevCardCounts  `json:"development_cards"`
	PlayedKnights     int            `json:"played_knights"`
	HasLongestRoad    bool           `json:"has_longest_road"`
	HasLargestArmy    bool           `json:"has_largest_army"`
	LongestRoadLength int            `json:"longest_road_length"`
	PendingActions    PendingQueue   `json:"pending_actions"`
	VictoryPoints     int            `json:"victory_points"`
}

// NewPlayer returns a player with zeroed counters.
func NewPlayer(c Color) *Player {
	return &Player{
		Color:            c,
		Resources:        NewResourceCounts(),
		DevelopmentCards: NewDevCardCounts(),
		PendingActions:   PendingQueue{},
	}
}

// Settlement is a board vertex.
type Settlement struct {
	ID           int   `json:"id"`
	Coords       Point `json:"coords"`
	CameraCoords Point `json:"cameraCoords"`
	Kind         Kind  `json:"type"`
	Owner        Color `json:"color"`
}

// Road is a board edge between two settlement ids.
type Road struct {
	Coords       Point `json:"coords"`
	CameraCoords Point `json:"cameraCoords"`
	Owner        Color `json:"color"`
	A            int   `json:"a"`
	B            int   `json:"b"`
}

// Edge is a canonical (low, high) settlement id pair.
type Edge [2]int

// NewEdge canonicalizes a and b so that (a,b) and (b,a) compare equal.
func NewEdge(a, b int) Edge {
	if a < b {
		return Edge{a, b}
	}
	return Edge{b, a}
}

// Edge returns the canonical edge of the road.
func (r *Road) Edge() Edge {
	return NewEdge(r.A, r.B)
}

// Tile is one hex of the board.
type Tile struct {
	Coords        Point    `json:"coords"`
	CameraCoords  Point    `json:"cameraCoords"`
	Resource      Resource `json:"resource_type"`
	RollNumber    *int     `json:"roll_number"`
	Robber        bool     `json:"robber"`
	SettlementIDs []int    `json:"settlement_ids"`
}

// Bank is the shared finite supply.
type Bank struct {
	Resources       ResourceCounts `json:"resources"`
	DevelopmentDeck []DevCard      `json:"development_deck"`
	Discarded       []DevCard      `json:"discarded_development_cards"`
}

// Roll is one throw of two dice.
type Roll struct {
	Die1  int `json:"die_1"`
	Die2  int `json:"die_2"`
	Total int `json:"total"`
}

// Payouts records resources handed out per player.
type Payouts map[Color]ResourceCounts

func (p Payouts) add(c Color, r Resource, n int) {
	rc, ok := p[c]
	if !ok {
		rc = ResourceCounts{}
		p[c] = rc
	}
	rc[r] += n
}

// Info is the turn bookkeeping block.
type Info struct {
	Phase              Phase   `json:"phase"`
	CurrentPlayerIndex int     `json:"current_player_index"`
	TurnNumber         int     `json:"turn_number"`
	Winner             Color   `json:"winner"`
	LastRoll           *Roll   `json:"last_roll"`
	LastRollPayouts    Payouts `json:"last_roll_payouts,omitempty"`
	LastRobberDiscards Payouts `json:"last_robber_discards,omitempty"`
}

// SetupState tracks initial placement rounds.
type SetupState struct {
	PlacementsRequired int           `json:"placements_required_per_player"`
	Order              []int         `json:"order"`
	PlacementsDone     map[Color]int `json:"placements_done"`
	Completed          bool          `json:"completed"`
}

// State is the complete persisted game document.
type State struct {
	Players         []*Player     `json:"players"`
	Settlements     []*Settlement `json:"settlements"`
	Roads           []*Road       `json:"roads"`
	Tiles           []*Tile       `json:"tiles"`
	Bank            Bank          `json:"bank"`
	Game            Info          `json:"game"`
	Setup           SetupState    `json:"setup_state"`
	RobberTileIndex *int          `json:"robber_tile_index,omitempty"`
}

// Player returns the player with color c, or nil.
func (s *State) Player(c Color) *Player {
	for _, p := range s.Players {
		if p.Color == c {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (s *State) CurrentPlayer() *Player {
	if len(s.Players) == 0 {
		return nil
	}
	return s.Players[s.Game.CurrentPlayerIndex%len(s.Players)]
}

// settlementsByID indexes vertices by id.
func (s *State) settlementsByID() map[int]*Settlement {
	out := make(map[int]*Settlement, len(s.Settlements))
	for _, st := range s.Settlements {
		out[st.ID] = st
	}
	return out
}

// Settlement returns the vertex with the given id, or nil.
func (s *State) Settlement(id int) *Settlement {
	for _, st := range s.Settlements {
		if st.ID == id {
			return st
		}
	}
	return nil
}
