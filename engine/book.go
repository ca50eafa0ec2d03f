package engine

// Book is a same-rank pile of cards owned by one player. Books only grow;
// there is no removal operation. A book is complete at BookCompleteSize
// cards, and natural if it contains no wilds.
type Book struct {
	rank     uint8
	cards    []Card
	naturals int
	wilds    int
}

// NewBook forms a book from at least three initial cards. At least one card
// must be able to anchor the book; that card's rank becomes the book's rank.
// Natural cards are inserted before wilds so the wild-ratio check always
// sees the full natural count first.
func NewBook(initial []Card) (*Book, error) {
	if len(initial) < 3 {
		return nil, ErrNotEnoughCardsToStartBook
	}
	rank, ok := anchorRank(initial)
	if !ok {
		return nil, ErrCannotStartBookWithGivenCards
	}
	b := &Book{rank: rank, cards: make([]Card, 0, len(initial))}
	for _, c := range initial {
		if !c.IsWild() {
			if err := b.AddCard(c); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range initial {
		if c.IsWild() {
			if err := b.AddCard(c); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// anchorRank returns the rank of the first card able to start a book.
func anchorRank(cards []Card) (uint8, bool) {
	for _, c := range cards {
		if c.CanStartBook() {
			return c.Rank(), true
		}
	}
	return 0, false
}

// AddCard grows the book by one card. Naturals must match the book's rank;
// a wild is only accepted while wilds stay strictly below naturals-1 after
// the insertion, so naturals always outnumber wilds by at least two.
func (b *Book) AddCard(c Card) error {
	if err := b.checkAdd(c); err != nil {
		return err
	}
	b.cards = append(b.cards, c)
	if c.IsWild() {
		b.wilds++
	} else {
		b.naturals++
	}
	return nil
}

// checkAdd reports whether c could legally be added right now, without
// mutating the book.
func (b *Book) checkAdd(c Card) error {
	if c.IsWild() {
		if b.wilds+1 >= b.naturals-1 {
			return ErrTooManyWildsInBookToAddAnother
		}
		return nil
	}
	if c.Rank() != b.rank {
		return ErrCardDoesntMatchBookRank
	}
	return nil
}

// checkAddAll reports whether the whole set could be added, naturals first,
// without mutating the book.
func (b *Book) checkAddAll(cards []Card) error {
	naturals, wilds := b.naturals, b.wilds
	for _, c := range cards {
		if !c.IsWild() {
			if c.Rank() != b.rank {
				return ErrCardDoesntMatchBookRank
			}
			naturals++
		}
	}
	for _, c := range cards {
		if c.IsWild() {
			if wilds+1 >= naturals-1 {
				return ErrTooManyWildsInBookToAddAnother
			}
			wilds++
		}
	}
	return nil
}

// Rank returns the rank the book was started with.
func (b *Book) Rank() uint8 { return b.rank }

// Size returns the number of cards in the book.
func (b *Book) Size() int { return len(b.cards) }

// NaturalCount returns the number of non-wild cards.
func (b *Book) NaturalCount() int { return b.naturals }

// WildCount returns the number of wild cards.
func (b *Book) WildCount() int { return b.wilds }

// IsComplete reports whether the book holds exactly BookCompleteSize cards.
func (b *Book) IsComplete() bool { return len(b.cards) == BookCompleteSize }

// IsNatural reports whether the book contains no wilds.
func (b *Book) IsNatural() bool { return b.wilds == 0 }

// Cards returns a copy of the book's cards, naturals before wilds.
func (b *Book) Cards() []Card {
	out := make([]Card, len(b.cards))
	copy(out, b.cards)
	return out
}

// PointValue returns the summed lay-down value of the book's cards.
func (b *Book) PointValue() int {
	total := 0
	for _, c := range b.cards {
		total += c.Value()
	}
	return total
}
