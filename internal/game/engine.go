package game

// RNG is the injected random source. *math/rand/v2.Rand satisfies it.
type RNG interface {
	IntN(n int) int
}

// Engine applies rules to a State. It owns no game data; the session owns
// both the engine and the State it is applied to.
type Engine struct {
	rules Rules
	rng   RNG
}

// NewEngine builds an engine over rules, drawing randomness only from rng.
func NewEngine(rules Rules, rng RNG) *Engine {
	return &Engine{rules: rules.Merge(DefaultRules()), rng: rng}
}

// Rules returns the engine's effective rules.
func (e *Engine) Rules() Rules {
	return e.rules
}
