package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testNames = []string{"alice", "bob", "carol", "dave", "erin", "frank"}

func c(suit, rank uint8) Card { return NewCard(suit, rank) }

// h builds a hearts card, the default suit for test fixtures.
func h(rank uint8) Card { return NewCard(SuitHearts, rank) }

func repeatCard(card Card, n int) []Card {
	out := make([]Card, n)
	for i := range out {
		out[i] = card
	}
	return out
}

// testGame builds a game directly around the given hands, skipping the deal.
// Every player gets a filler foot and the round decks are full unshuffled
// decks; tests that care about feet or deck contents overwrite them.
func testGame(t *testing.T, hands ...[]Card) *Game {
	t.Helper()
	require.GreaterOrEqual(t, len(hands), MinPlayers)
	require.LessOrEqual(t, len(hands), MaxPlayers)
	g := &Game{
		decks: make(map[Round]*Deck, len(Rounds)),
		round: RoundNinety,
		rng:   1,
	}
	for _, r := range Rounds {
		g.decks[r] = NewDeck(len(hands) + 1)
	}
	for i, hand := range hands {
		p := newPlayer(i, testNames[i])
		p.hand = append([]Card(nil), hand...)
		p.foot = repeatCard(c(SuitClubs, RankNine), FootSize)
		g.players = append(g.players, p)
	}
	return g
}

// readyToDiscard marks the player as having drawn both cards this turn.
func readyToDiscard(p *Player) {
	p.turn = turnState{drawnFromDeck: 2}
}

// mustBook builds a book or fails the test.
func mustBook(t *testing.T, cards ...Card) *Book {
	t.Helper()
	b, err := NewBook(cards)
	require.NoError(t, err)
	return b
}

// stackedDeck lays out a deck so the deal hands out exactly the given hands
// and feet, with rest left in the deck afterwards (last element of rest is
// the first post-deal draw).
func stackedDeck(hands, feet [][]Card, rest []Card) []Card {
	deck := append([]Card(nil), rest...)
	var seq []Card
	for i := range hands {
		seq = append(seq, hands[i]...)
		seq = append(seq, feet[i]...)
	}
	for i := len(seq) - 1; i >= 0; i-- {
		deck = append(deck, seq[i])
	}
	return deck
}

// fullDecks returns seeded decks for every round: a custom ninety deck and
// full unshuffled decks for the later rounds.
func fullDecks(players int, ninety []Card) map[Round][]Card {
	decks := map[Round][]Card{RoundNinety: ninety}
	for _, r := range Rounds[1:] {
		decks[r] = NewDeck(players + 1).cards
	}
	return decks
}
