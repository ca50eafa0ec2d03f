package engine

import (
	"encoding/json"
	"fmt"
)

// Suit constants — packed into upper 4 bits of Card.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// Rank constants — packed into lower 4 bits of Card.
const (
	RankAce   uint8 = 0
	RankTwo   uint8 = 1
	RankThree uint8 = 2
	RankFour  uint8 = 3
	RankFive  uint8 = 4
	RankSix   uint8 = 5
	RankSeven uint8 = 6
	RankEight uint8 = 7
	RankNine  uint8 = 8
	RankTen   uint8 = 9
	RankJack  uint8 = 10
	RankQueen uint8 = 11
	RankKing  uint8 = 12
	RankJoker uint8 = 13
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
// Cards are plain values, compared by (suit, rank) equality and copied freely.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// IsWild reports whether the card can stand in for any rank in a book.
// Twos and jokers are wild.
func (c Card) IsWild() bool {
	r := c.Rank()
	return r == RankTwo || r == RankJoker
}

// CanStartBook reports whether the card can fix the rank of a new book.
// Wilds carry no rank of their own and threes can never be melded, so
// neither can anchor a book.
func (c Card) CanStartBook() bool {
	return !c.IsWild() && c.Rank() != RankThree
}

// Value returns the lay-down point value of the card:
//   - Joker → 50
//   - Two, Ace → 20
//   - Eight through King → 10
//   - Three through Seven → 5
func (c Card) Value() int {
	switch r := c.Rank(); {
	case r == RankJoker:
		return 50
	case r == RankTwo, r == RankAce:
		return 20
	case r >= RankEight && r <= RankKing:
		return 10
	default:
		return 5
	}
}

var suitNames = [4]string{"hearts", "diamonds", "clubs", "spades"}

var rankNames = [14]string{
	"ace", "2", "3", "4", "5", "6", "7", "8", "9", "10",
	"jack", "queen", "king", "joker",
}

// SuitName returns the wire name for a suit constant.
func SuitName(suit uint8) string {
	if int(suit) >= len(suitNames) {
		return "?"
	}
	return suitNames[suit]
}

// RankName returns the wire name for a rank constant.
func RankName(rank uint8) string {
	if int(rank) >= len(rankNames) {
		return "?"
	}
	return rankNames[rank]
}

// ParseSuit converts a wire suit name back to its constant.
func ParseSuit(name string) (uint8, bool) {
	for s, n := range suitNames {
		if n == name {
			return uint8(s), true
		}
	}
	return 0, false
}

// ParseRank converts a wire rank name back to its constant.
func ParseRank(name string) (uint8, bool) {
	for r, n := range rankNames {
		if n == name {
			return uint8(r), true
		}
	}
	return 0, false
}

func (c Card) String() string {
	if c == EmptyCard {
		return "empty"
	}
	if c.Rank() == RankJoker {
		return "joker"
	}
	return fmt.Sprintf("%s of %s", RankName(c.Rank()), SuitName(c.Suit()))
}

// wireCard is the JSON shape of a card on every external surface.
type wireCard struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// MarshalJSON encodes the card as {"suit": ..., "rank": ...}.
func (c Card) MarshalJSON() ([]byte, error) {
	if c == EmptyCard {
		return nil, fmt.Errorf("cannot encode the empty card")
	}
	return json.Marshal(wireCard{Suit: SuitName(c.Suit()), Rank: RankName(c.Rank())})
}

// UnmarshalJSON decodes a {"suit": ..., "rank": ...} object.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	suit, ok := ParseSuit(w.Suit)
	if !ok {
		return fmt.Errorf("unknown suit %q", w.Suit)
	}
	rank, ok := ParseRank(w.Rank)
	if !ok {
		return fmt.Errorf("unknown rank %q", w.Rank)
	}
	*c = NewCard(suit, rank)
	return nil
}
