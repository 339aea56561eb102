package card

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	testCases := []struct {
		name     string
		expected int
		invalid  bool
	}{
		{name: "2", expected: 2},
		{name: "10", expected: 10},
		{name: "J", expected: 11},
		{name: "Q", expected: 12},
		{name: "K", expected: 13},
		{name: "A", expected: 14},
		{name: "1", invalid: true},
		{name: "11", invalid: true},
		{name: "Z", invalid: true},
		{name: "", invalid: true},
	}
	for _, tc := range testCases {
		v, err := ValueOf(tc.name)
		if tc.invalid {
			var rankErr InvalidRankError
			assert.ErrorAs(t, err, &rankErr, tc.name)
			continue
		}
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.expected, v, tc.name)
		assert.Equal(t, tc.name, RankName(v))
	}
}

func TestEvaluatePoints(t *testing.T) {
	testCases := []struct {
		cards    []Card
		expected int
	}{
		{cards: nil, expected: 0},
		{cards: []Card{NewCard(5, Red)}, expected: 5},
		{cards: []Card{NewCard(10, Red), NewCard(13, Blue)}, expected: 20},
		{cards: []Card{DragonCard}, expected: 25},
		{cards: []Card{PhoenixCard}, expected: -25},
		{cards: []Card{DogCard, MahjongCard, NewCard(14, Green), NewCard(12, Black)}, expected: 0},
		{cards: FullDeck(), expected: 100},
	}
	for i, tc := range testCases {
		if diff := cmp.Diff(tc.expected, EvaluatePoints(tc.cards)); diff != "" {
			t.Errorf("case %d: points mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	for _, c := range FullDeck() {
		parsed, err := ParseKey(c.Key())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseKey("purple_5")
	assert.Error(t, err)
	_, err = ParseKey("red_1")
	assert.Error(t, err)
}

func TestCardJSON(t *testing.T) {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	hand := map[string]Card{"red_10": NewCard(10, Red), "Phoenix": PhoenixCard}
	b, err := json.Marshal(hand)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Phoenix":"Phoenix","red_10":"red_10"}`, string(b))

	var decoded map[string]Card
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, hand, decoded)
}

func TestDeckDealsAllCardsOnce(t *testing.T) {
	deck := NewDeck(rand.NewSource(7))
	require.Equal(t, 56, deck.Len())
	hands := deck.Deal(4)
	assert.True(t, deck.Empty())

	seen := make(map[string]int)
	for _, hand := range hands {
		assert.Len(t, hand, 14)
		for _, c := range hand {
			seen[c.Key()]++
		}
	}
	assert.Len(t, seen, 56)
	for key, n := range seen {
		assert.Equal(t, 1, n, key)
	}
}

func TestSort(t *testing.T) {
	cards := []Card{DragonCard, NewCard(3, Green), MahjongCard, NewCard(3, Black), DogCard, PhoenixCard}
	Sort(cards)
	assert.Equal(t, []string{"Dog", "Phoenix", "Mahjong", "black_3", "green_3", "Dragon"}, Keys(cards))
}
