package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckComposition(t *testing.T) {
	d := NewDeck(2)
	require.Equal(t, 2*CardsPerDeckUnit, d.Len())

	counts := make(map[Card]int)
	jokers := 0
	for _, card := range d.cards {
		if card.Rank() == RankJoker {
			jokers++
			continue
		}
		counts[card]++
	}
	assert.Equal(t, 4, jokers)
	assert.Len(t, counts, 52)
	for card, n := range counts {
		assert.Equal(t, 2, n, "card %s", card)
	}
}

func TestDeckDrawOrder(t *testing.T) {
	d := DeckFromCards([]Card{h(RankAce), h(RankFour), h(RankKing)})

	card, ok := d.Draw()
	require.True(t, ok)
	assert.Equal(t, h(RankKing), card, "the slice end is the top of the deck")

	card, ok = d.Draw()
	require.True(t, ok)
	assert.Equal(t, h(RankFour), card)

	card, ok = d.Draw()
	require.True(t, ok)
	assert.Equal(t, h(RankAce), card)

	_, ok = d.Draw()
	assert.False(t, ok)
	assert.True(t, d.IsEmpty())
}

func TestDeckShuffleIsSeedDeterministic(t *testing.T) {
	a := NewDeck(2)
	b := NewDeck(2)
	rngA := rngState(42)
	rngB := rngState(42)
	a.Shuffle(&rngA)
	b.Shuffle(&rngB)
	assert.Equal(t, a.cards, b.cards)

	c := NewDeck(2)
	rngC := rngState(43)
	c.Shuffle(&rngC)
	assert.NotEqual(t, a.cards, c.cards)
}

func TestDeckReplenishKeepsOrder(t *testing.T) {
	d := DeckFromCards([]Card{h(RankAce)})
	d.Replenish([]Card{h(RankFive), h(RankSix)})
	require.Equal(t, 3, d.Len())

	card, _ := d.Draw()
	assert.Equal(t, h(RankSix), card)
}
