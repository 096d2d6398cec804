package game

// ActionType names a move a player can make during the main phase.
type ActionType string

const (
	ActionEndTurn            ActionType = "end_turn"
	ActionBuyRoad            ActionType = "buy_road"
	ActionBuySettlement      ActionType = "buy_settlement"
	ActionBuyCity            ActionType = "buy_city"
	ActionBuyDevelopmentCard ActionType = "buy_development_card"
	ActionTradeBank          ActionType = "trade_bank"
	ActionTradePlayer        ActionType = "trade_player"
	ActionUseDevelopmentCard ActionType = "use_development_card"
)

// Structure maps a buy action to the structure it purchases.
func (t ActionType) Structure() (Structure, bool) {
	switch t {
	case ActionBuyRoad:
		return BuildRoad, true
	case ActionBuySettlement:
		return BuildSettlement, true
	case ActionBuyCity:
		return BuildCity, true
	}
	return "", false
}

// Action is one command from a hardware action source.
type Action struct {
	Type ActionType `json:"type"`

	// trade_bank
	Give Resource `json:"give,omitempty"`
	Get  Resource `json:"get,omitempty"`
	Rate int      `json:"rate,omitempty"`

	// use_development_card
	Card DevCard `json:"card,omitempty"`

	// trade_player; Offer and Request are in wire resource order.
	Target  int   `json:"target_player,omitempty"`
	Offer   []int `json:"offer,omitempty"`
	Request []int `json:"request,omitempty"`
}

// EndTurn is the action that closes a turn.
var EndTurn = Action{Type: ActionEndTurn}

// Vector copies up to five counts into wire order.
func Vector(v []int) [5]int {
	var out [5]int
	copy(out[:], v)
	return out
}
