package game

import "fmt"

// Purchase pays for a road, settlement or city and queues it for placement.
// On failure nothing changes.
func (e *Engine) Purchase(s *State, p *Player, kind Structure) error {
	cost, ok := e.rules.Cost(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStructure, kind)
	}
	if err := s.Bank.Debit(p, cost); err != nil {
		return fmt.Errorf("buy %s: %w", kind, err)
	}
	p.PendingActions.Push(PendingAction{Type: kind})
	return nil
}

// BuyDevelopmentCard pays for and draws the front card of the deck.
func (e *Engine) BuyDevelopmentCard(s *State, p *Player) (DevCard, error) {
	cost := e.rules.DevCardCost()
	if !p.CanAfford(cost) {
		return "", fmt.Errorf("buy development card: %w", ErrCannotAfford)
	}
	if len(s.Bank.DevelopmentDeck) == 0 {
		return "", fmt.Errorf("buy development card: %w", ErrDeckEmpty)
	}
	if err := s.Bank.Debit(p, cost); err != nil {
		return "", err
	}
	card := s.Bank.DevelopmentDeck[0]
	s.Bank.DevelopmentDeck = s.Bank.DevelopmentDeck[1:]
	if p.DevelopmentCards == nil {
		p.DevelopmentCards = NewDevCardCounts()
	}
	p.DevelopmentCards[card]++
	return card, nil
}

// TradeWithBank exchanges rate cards of give for one card of get.
func (e *Engine) TradeWithBank(s *State, p *Player, give, get Resource, rate int) error {
	switch {
	case !give.Tradable() || !get.Tradable() || give == get:
		return fmt.Errorf("%w: %s for %s", ErrInvalidTrade, give, get)
	case rate <= 0:
		return fmt.Errorf("%w: rate %d", ErrInvalidTrade, rate)
	case p.Resources[give] < rate:
		return fmt.Errorf("trade %s: %w", give, ErrCannotAfford)
	case s.Bank.Resources[get] <= 0:
		return fmt.Errorf("%w: bank has no %s", ErrInvalidTrade, get)
	}
	p.Resources[give] -= rate
	s.Bank.Resources[give] += rate
	p.Resources[get]++
	s.Bank.Resources[get]--
	return nil
}

// TradeWithPlayer swaps give (from p) for receive (from other), in wire order.
func (e *Engine) TradeWithPlayer(p, other *Player, give, receive [5]int) error {
	if other == nil || other == p {
		return fmt.Errorf("%w: no counterparty", ErrInvalidTrade)
	}
	empty := true
	for i := range Resources {
		if give[i] < 0 || receive[i] < 0 {
			return fmt.Errorf("%w: negative amount", ErrInvalidTrade)
		}
		if give[i] > 0 || receive[i] > 0 {
			empty = false
		}
	}
	if empty {
		return fmt.Errorf("%w: nothing offered", ErrInvalidTrade)
	}
	for i, r := range Resources {
		if p.Resources[r] < give[i] {
			return fmt.Errorf("trade with %s: %w", other.Color, ErrCannotAfford)
		}
		if other.Resources[r] < receive[i] {
			return fmt.Errorf("trade with %s: counterparty %w", other.Color, ErrCannotAfford)
		}
	}
	for i, r := range Resources {
		p.Resources[r] += receive[i] - give[i]
		other.Resources[r] += give[i] - receive[i]
	}
	return nil
}

// PlayDevelopmentCard spends a held card. Only knights have an effect the
// rig can apply on its own; the robber itself is moved by hand.
func (e *Engine) PlayDevelopmentCard(s *State, p *Player, card DevCard) error {
	if card != Knight {
		return fmt.Errorf("%w: %s", ErrCardNotPlayable, card)
	}
	if p.DevelopmentCards[card] <= 0 {
		return fmt.Errorf("%w: no %s held", ErrCardNotPlayable, card)
	}
	p.DevelopmentCards[card]--
	p.PlayedKnights++
	s.Bank.Discarded = append(s.Bank.Discarded, card)
	return nil
}
