package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedGame(t *testing.T) *GameState {
	state := NewGameState(DefaultWinningScore)
	state.SetDeckSource(unshuffledDeck)
	for _, seat := range AllSeats {
		_, err := state.Apply(Intent{Type: IntentJoin, Seat: seat, Nickname: seat.String()})
		require.NoError(t, err)
	}
	_, err := state.Apply(Intent{Type: IntentPlaceBet, Seat: 2, Bet: BetHigh})
	require.NoError(t, err)
	return state
}

func TestMemoryGameStateTracker(t *testing.T) {
	tracker := NewMemoryGameStateTracker()
	_, err := tracker.Load("ABCDEF")
	assert.ErrorAs(t, err, &StateNotFoundError{})

	state := startedGame(t)
	require.NoError(t, tracker.Save("ABCDEF", state))

	restored, err := tracker.Load("ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, state.Players, restored.Players)
	assert.Equal(t, state.ActionNum, restored.ActionNum)
	assert.Equal(t, PhaseBetPlaced, restored.Round.Players[2].Phase)
	assert.Equal(t, BetHigh, restored.Round.Players[2].Bet)
	assert.Equal(t, state.Round.Players[0].Cards(), restored.Round.Players[0].Cards())

	want, err := MarshalState(state)
	require.NoError(t, err)
	got, err := MarshalState(restored)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	require.NoError(t, tracker.Remove("ABCDEF"))
	_, err = tracker.Load("ABCDEF")
	assert.ErrorAs(t, err, &StateNotFoundError{})
}

func TestRestoredStateKeepsPlaying(t *testing.T) {
	tracker := NewMemoryGameStateTracker()
	require.NoError(t, tracker.Save("ABCDEF", startedGame(t)))
	restored, err := tracker.Load("ABCDEF")
	require.NoError(t, err)

	_, err = restored.Apply(Intent{Type: IntentPlaceBet, Seat: 2, Bet: BetLow})
	requireCode(t, err, CodeAlreadyBet)
	events, err := restored.Apply(Intent{Type: IntentRevealCards, Seat: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{string(EventAllCardsRevealed)}, eventTypes(events))
}
