package game

// Grant moves up to amount of r from the bank to p and returns how many
// actually moved. It never over-grants and never drives the bank negative.
func (b *Bank) Grant(p *Player, r Resource, amount int) int {
	if amount <= 0 || !r.Tradable() {
		return 0
	}
	n := min(amount, max(0, b.Resources[r]))
	if n == 0 {
		return 0
	}
	b.Resources[r] -= n
	p.Resources[r] += n
	return n
}

// Debit returns cost from p to the bank. It applies all of cost or none of it.
func (b *Bank) Debit(p *Player, cost Cost) error {
	if !p.CanAfford(cost) {
		return ErrCannotAfford
	}
	for r, n := range cost {
		p.Resources[r] -= n
		b.Resources[r] += n
	}
	return nil
}

// CanAfford reports whether p holds every resource of cost.
func (p *Player) CanAfford(cost Cost) bool {
	for r, n := range cost {
		if p.Resources[r] < n {
			return false
		}
	}
	return true
}
