package game

import (
	"math"
	"slices"
)

// Board geometry: pointy-top hexes in axial coordinates, rendered at a fixed
// pixel scale around the centre of a 1920x1080 frame.
const (
	pixelScale   = 115.0
	pixelOriginX = 960.0
	pixelOriginY = 540.0
	TileCount    = 19
)

var axialTiles = [TileCount][2]int{
	{0, -2}, {1, -2}, {2, -2},
	{-1, -1}, {0, -1}, {1, -1}, {2, -1},
	{-2, 0}, {-1, 0}, {0, 0}, {1, 0}, {2, 0},
	{-2, 1}, {-1, 1}, {0, 1}, {1, 1},
	{-2, 2}, {-1, 2}, {0, 2},
}

var hexCorners = [6][2]float64{
	{0, -1},
	{math.Sqrt(3) / 2, -0.5},
	{math.Sqrt(3) / 2, 0.5},
	{0, 1},
	{-math.Sqrt(3) / 2, 0.5},
	{-math.Sqrt(3) / 2, -0.5},
}

var (
	tileResourcePool = []Resource{
		Wood, Wood, Wood, Wood,
		Brick, Brick, Brick,
		Sheep, Sheep, Sheep, Sheep,
		Wheat, Wheat, Wheat, Wheat,
		Ore, Ore, Ore,
		Desert,
	}
	rollNumberPool = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}
)

// Shuffler is the randomness needed to lay out a new game.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

func hexCenter(q, r int) (float64, float64) {
	return math.Sqrt(3) * (float64(q) + float64(r)/2), 1.5 * float64(r)
}

func toPixels(x, y float64) Point {
	px := int(math.Round(pixelOriginX + x*pixelScale))
	py := int(math.Round(pixelOriginY + y*pixelScale))
	return Point{X: &px, Y: &py}
}

// BuildBoard lays out the fixed 19-tile board: 54 vertices shared between
// neighbouring hexes, 72 roads, and each tile's six corner ids. Tiles carry
// no resource or number yet.
func BuildBoard() (settlements []*Settlement, roads []*Road, tiles []*Tile) {
	type key [2]int64
	ids := map[key]int{}
	var positions [][2]float64
	corners := make([][]int, 0, TileCount)

	for _, qr := range axialTiles {
		cx, cy := hexCenter(qr[0], qr[1])
		ring := make([]int, 0, 6)
		for _, d := range hexCorners {
			x, y := cx+d[0], cy+d[1]
			k := key{int64(math.Round(x * 1e4)), int64(math.Round(y * 1e4))}
			id, ok := ids[k]
			if !ok {
				id = len(positions)
				ids[k] = id
				positions = append(positions, [2]float64{x, y})
			}
			ring = append(ring, id)
		}
		corners = append(corners, ring)
	}

	for id, pos := range positions {
		settlements = append(settlements, &Settlement{
			ID:     id,
			Coords: toPixels(pos[0], pos[1]),
		})
	}

	seen := map[Edge]bool{}
	var edges []Edge
	for _, ring := range corners {
		for i := range ring {
			e := NewEdge(ring[i], ring[(i+1)%len(ring)])
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	for _, e := range edges {
		a, b := positions[e[0]], positions[e[1]]
		roads = append(roads, &Road{
			Coords: toPixels((a[0]+b[0])/2, (a[1]+b[1])/2),
			A:      e[0],
			B:      e[1],
		})
	}

	for i, qr := range axialTiles {
		x, y := hexCenter(qr[0], qr[1])
		tiles = append(tiles, &Tile{
			Coords:        toPixels(x, y),
			SettlementIDs: corners[i],
		})
	}
	return settlements, roads, tiles
}

// RandomizeTiles deals resources and roll numbers onto tiles. The desert gets
// no number and starts with the robber.
func RandomizeTiles(s *State, rng Shuffler) {
	resources := slices.Clone(tileResourcePool)
	rolls := slices.Clone(rollNumberPool)
	rng.Shuffle(len(resources), func(i, j int) { resources[i], resources[j] = resources[j], resources[i] })
	rng.Shuffle(len(rolls), func(i, j int) { rolls[i], rolls[j] = rolls[j], rolls[i] })

	next := 0
	s.RobberTileIndex = nil
	for i, tile := range s.Tiles {
		if i >= len(resources) {
			break
		}
		tile.Resource = resources[i]
		if tile.Resource == Desert {
			tile.RollNumber = nil
			tile.Robber = true
			idx := i
			s.RobberTileIndex = &idx
			continue
		}
		n := rolls[next]
		next++
		tile.RollNumber = &n
		tile.Robber = false
	}
}

// NewDevelopmentDeck builds and shuffles the development card pile.
func NewDevelopmentDeck(counts map[DevCard]int, rng Shuffler) []DevCard {
	var deck []DevCard
	for _, c := range DevCards {
		for range counts[c] {
			deck = append(deck, c)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// NewGame lays out a fresh board with randomized tiles, zeroed players, a
// full bank and a shuffled development deck, ready for the setup phase.
func NewGame(colors []Color, rules Rules, rng Shuffler) *State {
	rules = rules.Merge(DefaultRules())
	s := &State{}
	s.Settlements, s.Roads, s.Tiles = BuildBoard()

	for _, c := range colors {
		s.Players = append(s.Players, NewPlayer(c))
	}
	RandomizeTiles(s, rng)

	s.Bank = Bank{
		Resources:       NewResourceCounts(),
		DevelopmentDeck: NewDevelopmentDeck(rules.DevDeck, rng),
		Discarded:       []DevCard{},
	}
	for _, r := range Resources {
		s.Bank.Resources[r] = rules.BankStart
	}

	s.Game = Info{Phase: PhaseSetup, TurnNumber: 1}
	s.Setup = SetupState{
		PlacementsRequired: rules.SetupPlacements,
		PlacementsDone:     map[Color]int{},
	}
	for i, p := range s.Players {
		s.Setup.Order = append(s.Setup.Order, i)
		s.Setup.PlacementsDone[p.Color] = 0
	}
	return s
}
