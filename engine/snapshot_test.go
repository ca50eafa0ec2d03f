package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotShape(t *testing.T) {
	g := testGame(t, []Card{h(RankQueen)}, []Card{h(RankNine)})
	p := g.Players()[0]
	p.books[RankFive] = mustBook(t, h(RankFive), c(SuitClubs, RankFive), c(SuitSpades, RankFive))
	p.recomputePoints()
	g.discard = []Card{h(RankKing)}

	data, err := g.Snapshot().MarshalPretty()
	require.NoError(t, err)

	var decoded struct {
		DiscardPile []json.RawMessage `json:"discard_pile"`
		Players     []struct {
			Name   string                       `json:"name"`
			Hand   []json.RawMessage            `json:"hand"`
			Foot   []json.RawMessage            `json:"foot"`
			Books  map[string][]json.RawMessage `json:"books"`
			Points int                          `json:"points"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Players, 2)
	assert.Len(t, decoded.DiscardPile, 1)
	assert.Equal(t, "alice", decoded.Players[0].Name)
	assert.Len(t, decoded.Players[0].Books["5"], 3)
	assert.Equal(t, 15, decoded.Players[0].Points)
	assert.Empty(t, decoded.Players[1].Books)
}

func TestSnapshotBytesAreStable(t *testing.T) {
	g := testGame(t, repeatCard(h(RankQueen), 3), repeatCard(h(RankNine), 3))
	p := g.Players()[0]
	p.books[RankFive] = mustBook(t, h(RankFive), c(SuitClubs, RankFive), c(SuitSpades, RankFive))
	p.books[RankKing] = mustBook(t, h(RankKing), c(SuitClubs, RankKing), c(SuitSpades, RankKing))

	a, err := g.Snapshot().MarshalPretty()
	require.NoError(t, err)
	b, err := g.Snapshot().MarshalPretty()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
