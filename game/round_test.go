package game

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tichu.com/server/card"
)

func assertAllCardsInPlay(t *testing.T, r *RoundState) {
	t.Helper()
	keys := card.Keys(r.CardsInPlay())
	sort.Strings(keys)
	expected := card.Keys(card.FullDeck())
	sort.Strings(expected)
	if diff := cmp.Diff(expected, keys); diff != "" {
		t.Fatalf("cards in play mismatch (-want +got):\n%s", diff)
	}
}

func TestTradeOrientation(t *testing.T) {
	r, err := NewRoundState(unshuffledDeck())
	require.NoError(t, err)
	assertAllCardsInPlay(t, r)

	suits := [NumSeats]string{"black", "red", "blue", "green"}
	for _, seat := range AllSeats {
		require.NoError(t, r.Reveal(seat))
	}
	for _, seat := range AllSeats {
		s := suits[seat]
		exchanged, err := r.SendTrades(seat, TradeDecision{
			Teammate: cardsOf(t, s+"_2")[0],
			Left:     cardsOf(t, s+"_3")[0],
			Right:    cardsOf(t, s+"_4")[0],
		})
		require.NoError(t, err)
		assert.Equal(t, seat == 3, exchanged)
		assertAllCardsInPlay(t, r)
	}
	require.Equal(t, RoundTrading, r.Phase)

	// seat 1 sits to the right of seat 0, seat 3 to its left
	expected := IncomingTrade{
		FromTeammate: cardsOf(t, "blue_2")[0],
		FromLeft:     cardsOf(t, "green_4")[0],
		FromRight:    cardsOf(t, "red_3")[0],
	}
	assert.Equal(t, expected, *r.Players[0].Incoming)

	for _, seat := range AllSeats {
		started, err := r.ReceiveTrades(seat)
		require.NoError(t, err)
		assert.Equal(t, seat == 3, started)
		assertAllCardsInPlay(t, r)
	}
	_, err = r.ReceiveTrades(0)
	requireCode(t, err, CodeWrongPhase)

	assert.Equal(t, RoundPlaying, r.Phase)
	assert.Equal(t, Seat(2), r.CurrentSeat)
	assert.True(t, r.Players[0].Holds(cardsOf(t, "green_4")[0]))
}

func TestTradeBeforeRevealRejected(t *testing.T) {
	r, err := NewRoundState(unshuffledDeck())
	require.NoError(t, err)
	_, err = r.SendTrades(0, TradeDecision{
		Teammate: cardsOf(t, "black_2")[0],
		Left:     cardsOf(t, "black_3")[0],
		Right:    cardsOf(t, "black_4")[0],
	})
	requireCode(t, err, CodeNotRevealed)
	assert.Equal(t, 14, r.Players[0].CardCount())
}

func TestDuplicateDealRejected(t *testing.T) {
	_, err := NewRoundFromHands([NumSeats][]card.Card{
		cardsOf(t, "red_2"), cardsOf(t, "red_2"), nil, nil,
	})
	var invariant InvariantError
	assert.ErrorAs(t, err, &invariant)
}

func TestTrickPassesBackToOwner(t *testing.T) {
	r := playingRound(t, 0, [NumSeats][]string{
		{"black_10", "black_3"},
		{"red_2", "red_5"},
		{"blue_4", "blue_6"},
		{"green_7", "green_8"},
	})
	_, err := r.PassTurn(0)
	requireCode(t, err, CodeCannotPass)

	result, err := r.PlayCards(0, cardsOf(t, "black_10"), 0)
	require.NoError(t, err)
	assert.Equal(t, Seat(1), result.NextSeat)

	_, err = r.PlayCards(0, cardsOf(t, "black_3"), 0)
	requireCode(t, err, CodeNotYourTurn)
	_, err = r.PlayCards(1, cardsOf(t, "red_9"), 0)
	requireCode(t, err, CodeCardNotHeld)
	_, err = r.PlayCards(1, cardsOf(t, "red_5"), 0)
	requireCode(t, err, CodeCannotBeat)

	for _, seat := range []Seat{1, 2} {
		pass, err := r.PassTurn(seat)
		require.NoError(t, err)
		assert.False(t, pass.TrickEnded)
	}
	pass, err := r.PassTurn(3)
	require.NoError(t, err)
	assert.Equal(t, PassResult{TrickEnded: true, Winner: 0, NextSeat: 0}, pass)
	assert.True(t, r.Table.IsEmpty())
	assert.Equal(t, cardsOf(t, "black_10"), r.Players[0].Heap)
}

func TestRejectedPlayLeavesStateUntouched(t *testing.T) {
	r := playingRound(t, 0, [NumSeats][]string{
		{"black_10", "black_3", "Phoenix"},
		{"red_2", "red_5"},
		{"blue_4", "blue_6"},
		{"green_7", "green_8"},
	})
	_, err := r.PlayCards(0, cardsOf(t, "black_10"), 0)
	require.NoError(t, err)
	before, err := json.Marshal(r)
	require.NoError(t, err)

	attempts := []func() error{
		func() error { _, err := r.PlayCards(1, cardsOf(t, "red_2", "red_5"), 0); return err },
		func() error { _, err := r.PlayCards(1, cardsOf(t, "red_5", "red_5"), 0); return err },
		func() error { _, err := r.PlayCards(1, nil, 0); return err },
		func() error { _, err := r.PassTurn(2); return err },
		func() error { _, err := r.GiveDragon(0, 1); return err },
		func() error { return r.EnablePendingBomb(2) },
		func() error { return r.SetRequestedCard(1, 5) },
	}
	for _, attempt := range attempts {
		assert.Error(t, attempt())
		after, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	}
}

func TestDogHandsLeadToPartner(t *testing.T) {
	r := playingRound(t, 0, [NumSeats][]string{
		{"Dog", "black_5"},
		{"red_2"},
		{"blue_3"},
		{"green_4"},
	})
	result, err := r.PlayCards(0, cardsOf(t, "Dog"), 0)
	require.NoError(t, err)
	assert.True(t, result.DogPlayed)
	assert.Equal(t, Seat(2), result.NextSeat)
	assert.True(t, r.Table.IsEmpty())
	assert.Equal(t, []string{"Dog"}, card.Keys(r.Players[0].Heap))

	full, err := NewRoundState(unshuffledDeck())
	require.NoError(t, err)
	for _, p := range full.Players {
		p.Phase = PhaseTradesReceived
	}
	full.Phase = RoundPlaying
	full.CurrentSeat = 0
	_, err = full.PlayCards(0, cardsOf(t, "Dog"), 0)
	require.NoError(t, err)
	assertAllCardsInPlay(t, full)

	r = playingRound(t, 0, [NumSeats][]string{
		{"Dog", "black_5"},
		{"red_2"},
		{},
		{"green_4"},
	})
	result, err = r.PlayCards(0, cardsOf(t, "Dog"), 0)
	require.NoError(t, err)
	assert.Equal(t, Seat(3), result.NextSeat)
}

func TestDogCannotFollow(t *testing.T) {
	r := playingRound(t, 1, [NumSeats][]string{
		{"Dog", "black_5"},
		{"red_2", "red_3"},
		{"blue_3"},
		{"green_4"},
	})
	_, err := r.PlayCards(1, cardsOf(t, "red_2"), 0)
	require.NoError(t, err)
	_, err = r.PassTurn(2)
	require.NoError(t, err)
	_, err = r.PassTurn(3)
	require.NoError(t, err)
	_, err = r.PlayCards(0, cardsOf(t, "Dog"), 0)
	requireCode(t, err, CodeCannotBeat)
}

func TestDragonTrickGivenToOpponent(t *testing.T) {
	r := playingRound(t, 0, [NumSeats][]string{
		{"Dragon", "black_3"},
		{"red_2", "red_5"},
		{"blue_4", "blue_6"},
		{"green_7", "green_8"},
	})
	_, err := r.PlayCards(0, cardsOf(t, "Dragon"), 0)
	require.NoError(t, err)
	for _, seat := range []Seat{1, 2} {
		_, err := r.PassTurn(seat)
		require.NoError(t, err)
	}
	pass, err := r.PassTurn(3)
	require.NoError(t, err)
	assert.True(t, pass.DragonPending)
	assert.Equal(t, ModeDragonPending, r.Mode)
	assert.Equal(t, Seat(0), r.ActingSeat())

	_, err = r.PlayCards(0, cardsOf(t, "black_3"), 0)
	requireCode(t, err, CodeDragonPending)
	_, err = r.PassTurn(0)
	requireCode(t, err, CodeDragonPending)
	_, err = r.GiveDragon(1, 3)
	requireCode(t, err, CodeNotTrickOwner)
	_, err = r.GiveDragon(0, 2)
	requireCode(t, err, CodeInvalidTarget)

	lead, err := r.GiveDragon(0, 1)
	require.NoError(t, err)
	assert.Equal(t, Seat(0), lead)
	assert.Equal(t, cardsOf(t, "Dragon"), r.Players[1].Heap)
	assert.Empty(t, r.Players[0].Heap)
	assert.Equal(t, ModeNormal, r.Mode)

	_, err = r.GiveDragon(0, 1)
	requireCode(t, err, CodeNoDragonPending)
}

func TestWish(t *testing.T) {
	r := playingRound(t, 2, [NumSeats][]string{
		{"black_7", "black_3"},
		{"red_2", "red_5"},
		{"Mahjong", "blue_9"},
		{"green_7", "green_2"},
	})
	requireCode(t, r.SetRequestedCard(3, 7), CodeNotYourTurn)
	assert.True(t, IsMalformedInput(r.SetRequestedCard(2, 15)))

	require.NoError(t, r.SetRequestedCard(2, 7))
	requireCode(t, r.SetRequestedCard(2, 8), CodeWishAlreadyUsed)

	_, err := r.PlayCards(2, cardsOf(t, "blue_9"), 0)
	requireCode(t, err, CodeMahjongRequired)
	result, err := r.PlayCards(2, cardsOf(t, "Mahjong"), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, result.WishArmed)
	assert.Equal(t, 7, r.Wish)

	_, err = r.PassTurn(3)
	requireCode(t, err, CodeCannotPass)
	_, err = r.PlayCards(3, cardsOf(t, "green_2"), 0)
	requireCode(t, err, CodeWishNotSatisfied)
	_, err = r.PlayCards(3, cardsOf(t, "green_7"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Wish)
	assert.True(t, r.WishUsed)
}

func TestMahjongStraightSatisfiesWish(t *testing.T) {
	r := playingRound(t, 0, [NumSeats][]string{
		{"Mahjong", "red_2", "blue_3", "black_4", "green_5", "black_9"},
		{"red_3", "red_8"},
		{"blue_9"},
		{"green_7"},
	})
	require.NoError(t, r.SetRequestedCard(0, 3))
	result, err := r.PlayCards(0, cardsOf(t, "Mahjong", "red_2", "blue_3", "black_4", "green_5"), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, result.WishArmed)
	assert.Equal(t, 0, r.Wish)
	assert.True(t, r.WishUsed)

	// seat 1 holds a 3 but owes nothing
	assert.True(t, r.CanPass(1))
}

func TestUnreachableWishAllowsPass(t *testing.T) {
	r := playingRound(t, 2, [NumSeats][]string{
		{"black_7", "black_3"},
		{"red_2", "red_5"},
		{"Mahjong", "blue_9"},
		{"green_K", "green_2"},
	})
	require.NoError(t, r.SetRequestedCard(2, 7))
	_, err := r.PlayCards(2, cardsOf(t, "Mahjong"), 0)
	require.NoError(t, err)

	// no seven in hand, any play is fine
	_, err = r.PlayCards(3, cardsOf(t, "green_K"), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, r.Wish)

	// the seven cannot beat the king
	assert.False(t, r.CanSatisfyWish(0))
	_, err = r.PassTurn(0)
	require.NoError(t, err)
}

func TestPendingWishLapsesOnPass(t *testing.T) {
	r := playingRound(t, 3, [NumSeats][]string{
		{"black_K", "black_3"},
		{"red_2", "red_5"},
		{"Mahjong", "blue_9"},
		{"green_7", "green_2"},
	})
	_, err := r.PlayCards(3, cardsOf(t, "green_2"), 0)
	require.NoError(t, err)
	_, err = r.PassTurn(0)
	require.NoError(t, err)
	_, err = r.PassTurn(1)
	require.NoError(t, err)

	require.NoError(t, r.SetRequestedCard(2, 9))
	_, err = r.PassTurn(2)
	require.NoError(t, err)
	assert.Equal(t, 0, r.PendingWish)
	assert.False(t, r.WishUsed)
}

func TestBombInterrupt(t *testing.T) {
	r := playingRound(t, 1, [NumSeats][]string{
		{"black_2", "black_3", "black_4", "black_5", "black_6", "black_9"},
		{"red_10", "red_3"},
		{"blue_4", "blue_6"},
		{"green_7", "green_8"},
	})
	requireCode(t, r.EnablePendingBomb(2), CodeNoBomb)

	_, err := r.PlayCards(1, cardsOf(t, "red_10"), 0)
	require.NoError(t, err)
	require.NoError(t, r.EnablePendingBomb(0))
	requireCode(t, r.EnablePendingBomb(0), CodeBombPending)
	assert.Equal(t, Seat(0), r.ActingSeat())

	_, err = r.PassTurn(2)
	requireCode(t, err, CodeBombPending)
	_, err = r.PlayCards(0, cardsOf(t, "black_9"), 0)
	requireCode(t, err, CodeBombRequired)

	result, err := r.PlayCards(0, cardsOf(t, "black_2", "black_3", "black_4", "black_5", "black_6"), 0)
	require.NoError(t, err)
	assert.Equal(t, Bomb, result.Combination.Kind)
	assert.Equal(t, Seat(1), result.NextSeat)
	assert.Equal(t, ModeNormal, r.Mode)
	assert.Equal(t, Seat(0), r.Table.Owner)
}

func TestMustEndGameRound(t *testing.T) {
	r := playingRound(t, 0, [NumSeats][]string{
		{"black_2"},
		{"red_2", "red_5"},
		{},
		{"green_7", "green_8"},
	})
	r.FinishOrder = []Seat{2}
	assert.False(t, r.MustEndGameRound())

	result, err := r.PlayCards(0, cardsOf(t, "black_2"), 0)
	require.NoError(t, err)
	assert.True(t, result.Finished)
	assert.Equal(t, []Seat{2, 0}, r.FinishOrder)
	assert.True(t, r.MustEndGameRound())
}
