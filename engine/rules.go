package engine

// Player count and deal sizes.
const (
	MinPlayers = 2
	MaxPlayers = 6
	HandSize   = 13
	FootSize   = 13

	// BookCompleteSize is the card count at which a book is complete.
	BookCompleteSize = 7

	// CardsPerDeckUnit is one standard deck plus two jokers. A game uses
	// one unit per player plus one extra.
	CardsPerDeckUnit = 54
)

// Round identifies one of the four successive scoring tiers of a match,
// or RoundOver once the match has ended.
type Round uint8

const (
	RoundNinety Round = iota
	RoundOneTwenty
	RoundOneFifty
	RoundOneEighty
	RoundOver
)

var roundNames = [4]string{"ninety", "oneTwenty", "oneFifty", "oneEighty"}

// Rounds lists the four playable rounds in order.
var Rounds = [4]Round{RoundNinety, RoundOneTwenty, RoundOneFifty, RoundOneEighty}

// PointsNeeded returns the lay-down threshold for the round.
func (r Round) PointsNeeded() int {
	switch r {
	case RoundNinety:
		return 90
	case RoundOneTwenty:
		return 120
	case RoundOneFifty:
		return 150
	case RoundOneEighty:
		return 180
	}
	return 0
}

// Next returns the round that follows r, or RoundOver after the last.
func (r Round) Next() Round {
	if r >= RoundOneEighty {
		return RoundOver
	}
	return r + 1
}

func (r Round) String() string {
	if int(r) < len(roundNames) {
		return roundNames[r]
	}
	return "over"
}

// ParseRound converts a round name ("ninety", "oneTwenty", ...) back to its
// constant.
func ParseRound(name string) (Round, bool) {
	for i, n := range roundNames {
		if n == name {
			return Round(i), true
		}
	}
	return RoundOver, false
}

// goingOutBonus is the bonus awarded to the player who goes out.
// TODO: confirm the bonus value with the house scoring table; until then no
// bonus is awarded.
func goingOutBonus() int { return 0 }
