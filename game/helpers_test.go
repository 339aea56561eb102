package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tichu.com/server/card"
)

func cardsOf(t *testing.T, keys ...string) []card.Card {
	t.Helper()
	cards := make([]card.Card, 0, len(keys))
	for _, key := range keys {
		c, err := card.ParseKey(key)
		require.NoError(t, err, key)
		cards = append(cards, c)
	}
	return cards
}

// playingRound builds a round already in the playing phase with the given hands.
func playingRound(t *testing.T, current Seat, hands [NumSeats][]string) *RoundState {
	t.Helper()
	var dealt [NumSeats][]card.Card
	for _, seat := range AllSeats {
		dealt[seat] = cardsOf(t, hands[seat]...)
	}
	r, err := NewRoundFromHands(dealt)
	require.NoError(t, err)
	for _, p := range r.Players {
		p.Phase = PhaseTradesReceived
	}
	r.Phase = RoundPlaying
	r.CurrentSeat = current
	return r
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var rv RuleViolationError
	require.ErrorAs(t, err, &rv)
	require.Equal(t, code, rv.Code, rv.Msg)
}

func unshuffledDeck() *card.Deck {
	return card.NewDeckNoShuffle()
}
