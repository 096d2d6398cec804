// Package menu is the active player's turn menu, driven by a rotary encoder
// (turn left or right, press) and rendered as four short text lines.
package menu

import (
	"fmt"
	"strings"

	"catanrig/internal/game"
	"catanrig/internal/protocol"
)

// Screen names a menu page.
type Screen string

const (
	ScreenRoot        Screen = "root"
	ScreenDevRoot     Screen = "dev_root"
	ScreenDevUse      Screen = "dev_use"
	ScreenDevConfirm  Screen = "dev_confirm"
	ScreenTradeRoot   Screen = "trade_root"
	ScreenTradePlayer Screen = "trade_player"
	ScreenTradeGrid   Screen = "trade_grid"
)

const (
	seats         = protocol.PlayerCount
	gridSlots     = 12 // five give, five receive, confirm, back
	gridConfirm   = 10
	gridBack      = 11
	maxTradeValue = 9
)

var descriptions = map[game.DevCard]string{
	game.Knight:       "Move robber",
	game.VictoryPoint: "Hidden +1 VP",
	game.RoadBuilding: "Place 2 roads",
	game.YearOfPlenty: "Gain any 2",
	game.Monopoly:     "Take all of 1",
}

const resourceLetters = "WBSHO"

// Menu is the state of one player display's menu. It is not safe for
// concurrent use; a display loop owns it.
type Menu struct {
	active  int
	hands   []game.DevCardCounts
	screen  Screen
	cursor  int
	editing bool

	selectedDev game.DevCard
	tradeWith   int
	give        [5]int
	receive     [5]int
}

// New returns a menu on the root screen for the given seat.
func New(active int) *Menu {
	m := &Menu{}
	m.SetActive(active)
	return m
}

// SetPlayers refreshes the development cards each seat holds.
func (m *Menu) SetPlayers(players []*game.Player) {
	m.hands = m.hands[:0]
	for _, p := range players {
		hand := game.NewDevCardCounts()
		for c, n := range p.DevelopmentCards {
			hand[c] = n
		}
		m.hands = append(m.hands, hand)
	}
}

// SetActive switches the menu to another seat and resets it.
func (m *Menu) SetActive(idx int) {
	m.active = max(0, min(seats-1, idx))
	m.Reset()
}

// Active returns the seat the menu is serving.
func (m *Menu) Active() int { return m.active }

// Screen returns the current page.
func (m *Menu) Screen() Screen { return m.screen }

// Reset returns to the root screen and clears any trade in progress.
func (m *Menu) Reset() {
	m.screen = ScreenRoot
	m.cursor = 0
	m.editing = false
	m.selectedDev = game.Knight
	m.tradeWith = 0
	m.give = [5]int{}
	m.receive = [5]int{}
}

func (m *Menu) heldCards() []game.DevCard {
	if m.active >= len(m.hands) {
		return nil
	}
	var out []game.DevCard
	for _, c := range game.DevCards {
		if m.hands[m.active][c] > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (m *Menu) others() []int {
	var out []int
	for p := range seats {
		if p != m.active {
			out = append(out, p)
		}
	}
	return out
}

func (m *Menu) slots() int {
	switch m.screen {
	case ScreenDevUse:
		if cards := m.heldCards(); len(cards) > 0 {
			return len(cards) + 1
		}
		return 2
	case ScreenDevConfirm:
		return 2
	case ScreenTradePlayer:
		return len(m.others()) + 1
	case ScreenTradeGrid:
		return gridSlots
	}
	return 3
}

// Update applies one input step: a turn of delta detents, then an optional
// press. It returns the event a press completed, if any.
func (m *Menu) Update(delta int, pressed bool) (*protocol.MenuEvent, bool) {
	if delta != 0 {
		if m.screen == ScreenTradeGrid && m.editing {
			m.editTrade(delta)
		} else {
			n := m.slots()
			m.cursor = ((m.cursor+delta)%n + n) % n
		}
	}
	if !pressed {
		return nil, false
	}
	return m.press()
}

func (m *Menu) editTrade(delta int) {
	switch {
	case m.cursor < 5:
		m.give[m.cursor] = max(0, min(maxTradeValue, m.give[m.cursor]+delta))
	case m.cursor < gridConfirm:
		i := m.cursor - 5
		m.receive[i] = max(0, min(maxTradeValue, m.receive[i]+delta))
	}
}

func (m *Menu) open(s Screen) {
	m.screen = s
	m.cursor = 0
}

func (m *Menu) press() (*protocol.MenuEvent, bool) {
	switch m.screen {
	case ScreenRoot:
		switch m.cursor {
		case 0:
			m.open(ScreenDevRoot)
		case 1:
			m.open(ScreenTradeRoot)
		default:
			m.Reset()
			return &protocol.MenuEvent{Type: protocol.EventEndTurn}, true
		}

	case ScreenDevRoot:
		switch m.cursor {
		case 0:
			m.open(ScreenDevUse)
		case 1:
			m.Reset()
			return &protocol.MenuEvent{Type: protocol.EventBuyDevCard}, true
		default:
			m.Reset()
		}

	case ScreenDevUse:
		cards := m.heldCards()
		if len(cards) == 0 || m.cursor >= len(cards) {
			m.Reset()
			break
		}
		m.selectedDev = cards[m.cursor]
		m.open(ScreenDevConfirm)

	case ScreenDevConfirm:
		use := m.cursor == 0
		card := m.selectedDev
		m.Reset()
		if use {
			id, _ := protocol.DevCardID(card)
			return &protocol.MenuEvent{Type: protocol.EventUseDevCard, Card: id}, true
		}

	case ScreenTradeRoot:
		switch m.cursor {
		case 0:
			m.open(ScreenTradePlayer)
		case 1:
			m.Reset()
			return &protocol.MenuEvent{Type: protocol.EventTradePort}, true
		default:
			m.Reset()
		}

	case ScreenTradePlayer:
		others := m.others()
		if m.cursor >= len(others) {
			m.Reset()
			break
		}
		m.tradeWith = others[m.cursor]
		m.open(ScreenTradeGrid)
		m.editing = false
		m.give = [5]int{}
		m.receive = [5]int{}

	case ScreenTradeGrid:
		switch {
		case m.editing:
			m.editing = false
		case m.cursor < gridConfirm:
			m.editing = true
		case m.cursor == gridConfirm:
			ev := &protocol.MenuEvent{Type: protocol.EventTradePlayer, Target: uint8(m.tradeWith)}
			for i := range 5 {
				ev.Give[i] = uint8(m.give[i])
				ev.Receive[i] = uint8(m.receive[i])
			}
			m.Reset()
			return ev, true
		default:
			m.Reset()
		}
	}
	return nil, false
}

func (m *Menu) item(i int, text string) string {
	if i == m.cursor {
		return ">" + text
	}
	return " " + text
}

func (m *Menu) list(title string, items []string) [4]string {
	out := [4]string{title}
	for i := range 3 {
		text := ""
		if i < len(items) {
			text = items[i]
		}
		out[i+1] = m.item(i, text)
	}
	return out
}

// Lines renders the current screen.
func (m *Menu) Lines() [4]string {
	switch m.screen {
	case ScreenRoot:
		return m.list(fmt.Sprintf("P%d Action", m.active+1), []string{"Development", "Trading", "End Turn"})
	case ScreenDevRoot:
		return m.list("Development", []string{"Use Card", "Buy Card", "Back"})
	case ScreenDevUse:
		items := []string{"No cards", "Back"}
		if cards := m.heldCards(); len(cards) > 0 {
			items = items[:0]
			for _, c := range cards {
				items = append(items, strings.ReplaceAll(string(c), "_", " "))
			}
			items = append(items, "Back")
		}
		return m.list("Use Card", items)
	case ScreenDevConfirm:
		choice := ">Use  Back"
		if m.cursor != 0 {
			choice = " Use >Back"
		}
		return [4]string{"Use " + string(m.selectedDev), descriptions[m.selectedDev], "Confirm?", choice}
	case ScreenTradeRoot:
		return m.list("Trading", []string{"Player", "Port", "Back"})
	case ScreenTradePlayer:
		var items []string
		for _, p := range m.others() {
			items = append(items, fmt.Sprintf("P%d", p+1))
		}
		return m.list("Trade With", append(items, "Back"))
	case ScreenTradeGrid:
		return m.gridLines()
	}
	return [4]string{fmt.Sprintf("P%d Action", m.active+1)}
}

func (m *Menu) gridLines() [4]string {
	var focus string
	switch {
	case m.cursor < 5:
		focus = "G" + resourceLetters[m.cursor:m.cursor+1]
	case m.cursor < gridConfirm:
		focus = "R" + resourceLetters[m.cursor-5:m.cursor-4]
	case m.cursor == gridConfirm:
		focus = "CONFIRM"
	default:
		focus = "BACK"
	}
	marker := ">"
	if m.editing {
		marker = "*"
	}
	ok, back := "ok", "bk"
	if m.cursor == gridConfirm {
		ok = "OK"
	}
	if m.cursor == gridBack {
		back = "BK"
	}
	return [4]string{
		fmt.Sprintf("Trade P%d", m.tradeWith+1),
		tradeRow("G", m.give),
		tradeRow("R", m.receive),
		fmt.Sprintf("%s %s [%s|%s]", marker, focus, ok, back),
	}
}

func tradeRow(prefix string, values [5]int) string {
	parts := make([]string, 5)
	for i, v := range values {
		parts[i] = fmt.Sprintf("%c%d", resourceLetters[i], v)
	}
	return prefix + " " + strings.Join(parts, " ")
}

// Render packs the current screen into a menu render packet.
func (m *Menu) Render() *protocol.MenuRender {
	return &protocol.MenuRender{Player: uint8(m.active), Lines: m.Lines()}
}
