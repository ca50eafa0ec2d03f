package engine

// Deck is an ordered stack of cards. Draws come off the top, which is the
// end of the backing slice; seeded decks are therefore consumed
// back-to-front.
type Deck struct {
	cards []Card
}

// NewDeck builds an unshuffled deck of the given number of standard-deck
// units. Each unit contributes every (suit, non-joker rank) pair once plus
// exactly two jokers; the jokers' suits carry no meaning.
func NewDeck(units int) *Deck {
	d := &Deck{cards: make([]Card, 0, units*CardsPerDeckUnit)}
	for u := 0; u < units; u++ {
		for suit := uint8(0); suit < 4; suit++ {
			for rank := RankAce; rank <= RankKing; rank++ {
				d.cards = append(d.cards, NewCard(suit, rank))
			}
		}
		d.cards = append(d.cards, NewCard(SuitHearts, RankJoker))
		d.cards = append(d.cards, NewCard(SuitSpades, RankJoker))
	}
	return d
}

// DeckFromCards builds a deck with exactly the given ordering. The last
// card in the slice is the first one drawn.
func DeckFromCards(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int { return len(d.cards) }

// IsEmpty reports whether the deck has no cards left.
func (d *Deck) IsEmpty() bool { return len(d.cards) == 0 }

// Draw removes and returns the top card. The second return value is false
// when the deck is empty; callers must check it rather than rely on a panic.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return EmptyCard, false
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top, true
}

// Replenish pushes the given cards onto the deck in order. Used to refill
// an exhausted deck from the discard pile; the caller shuffles afterwards.
func (d *Deck) Replenish(cards []Card) {
	d.cards = append(d.cards, cards...)
}

// Shuffle permutes the deck with a Fisher-Yates pass driven by the game's
// random stream.
func (d *Deck) Shuffle(r *rngState) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := int(r.randN(uint64(i + 1)))
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}
