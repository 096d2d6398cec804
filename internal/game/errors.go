package game

import "errors"

var (
	ErrCannotAfford        = errors.New("insufficient resources")
	ErrDeckEmpty           = errors.New("development deck is empty")
	ErrInvalidTrade        = errors.New("invalid trade")
	ErrUnknownStructure    = errors.New("unknown structure")
	ErrCardNotPlayable     = errors.New("development card not playable")
	ErrMissingKey          = errors.New("state document missing required key")
	ErrDuplicateSettlement = errors.New("duplicate settlement id")
	ErrInconsistentVertex  = errors.New("settlement owner and structure disagree")
	ErrNullEntry           = errors.New("state document has a null entry")
	ErrPlayerColor         = errors.New("player color missing or repeated")
)
