package bot

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tichu.com/server/card"
	"tichu.com/server/game"
)

func inProgress(r *game.RoundState) *game.GameState {
	return &game.GameState{Status: game.StatusInProgress, Round: r}
}

func requireCardsInPlay(t *testing.T, state *game.GameState) {
	t.Helper()
	if state.Round == nil {
		return
	}
	keys := card.Keys(state.Round.CardsInPlay())
	sort.Strings(keys)
	expected := card.Keys(card.FullDeck())
	sort.Strings(expected)
	require.Equal(t, expected, keys)
}

// selfPlay lets the brains act until the game is over and returns the number of
// intents applied.
func selfPlay(t *testing.T, state *game.GameState, brains [game.NumSeats]*Brain) int {
	t.Helper()
	applied := 0
	for state.Status != game.StatusOver {
		require.Less(t, applied, 20000, "game does not terminate")
		acted := false
		for _, seat := range game.AllSeats {
			in, ok := brains[seat].Decide(state, seat)
			if !ok {
				continue
			}
			_, err := state.Apply(in)
			require.NoError(t, err, "%s %v", in, in.CardKeys)
			requireCardsInPlay(t, state)
			applied++
			acted = true
			break
		}
		require.True(t, acted, "no seat can act in round phase %s", state.Round.Phase)
	}
	return applied
}

func joinedGame(t *testing.T, winningScore int) *game.GameState {
	state := game.NewGameState(winningScore)
	for _, seat := range game.AllSeats {
		_, err := state.Apply(game.Intent{Type: game.IntentJoin, Seat: seat, Nickname: seat.String()})
		require.NoError(t, err)
	}
	return state
}

func TestDefaultIntentBeforePlay(t *testing.T) {
	state := joinedGame(t, 0)
	state.Round = nil
	state.Status = game.StatusInProgress
	_, ok := DefaultIntent(state, 0)
	assert.False(t, ok)

	r, err := game.NewRoundState(card.NewDeckNoShuffle())
	require.NoError(t, err)
	state.Round = r

	in, ok := DefaultIntent(state, 0)
	require.True(t, ok)
	assert.Equal(t, game.IntentRevealCards, in.Type)
	_, err = state.Apply(in)
	require.NoError(t, err)

	in, ok = DefaultIntent(state, 0)
	require.True(t, ok)
	require.Equal(t, game.IntentTradeCards, in.Type)
	assert.Equal(t, game.TradeKeys{Left: "Dog", Right: "black_2", Teammate: "black_3"}, *in.Trade)
	_, err = state.Apply(in)
	require.NoError(t, err)

	_, ok = DefaultIntent(state, 0)
	assert.False(t, ok, "waiting for the other trades")
}

func TestCautiousSelfPlay(t *testing.T) {
	state := joinedGame(t, 0)
	applied := selfPlay(t, state, [game.NumSeats]*Brain{cautious, cautious, cautious, cautious})
	assert.Greater(t, applied, 0)
	assert.Len(t, state.ScoreHistory, 1)
	assert.NotEqual(t, game.ResultNone, state.Result)
}

func TestRandomSelfPlay(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		state := joinedGame(t, 200)
		brains := [game.NumSeats]*Brain{NewBrain(seed), NewBrain(seed + 10), NewBrain(seed + 20), NewBrain(seed + 30)}
		selfPlay(t, state, brains)
		assert.Equal(t, game.StatusOver, state.Status)
		assert.NotEmpty(t, state.ScoreHistory)
	}
}

func TestDefaultIntentGivesDragonToOpponent(t *testing.T) {
	hands := [game.NumSeats][]string{{"black_2"}, {"black_3"}, {"black_4"}, {"black_5"}}
	r := playingRound(t, 1, hands, 1, "Dragon")
	r.Mode = game.ModeDragonPending

	in, ok := DefaultIntent(inProgress(r), 1)
	require.True(t, ok)
	require.Equal(t, game.IntentGiveDragon, in.Type)
	assert.Equal(t, game.Seat(2), *in.Target)

	hands[2] = nil
	r = playingRound(t, 1, hands, 1, "Dragon")
	r.Mode = game.ModeDragonPending
	in, ok = DefaultIntent(inProgress(r), 1)
	require.True(t, ok)
	assert.Equal(t, game.Seat(0), *in.Target)

	_, ok = DefaultIntent(inProgress(r), 0)
	assert.False(t, ok)
}

func TestDefaultIntentPassesWhenAllowed(t *testing.T) {
	r := playingRound(t, 0, [game.NumSeats][]string{
		{"black_10", "black_J"}, {"black_4"}, {"black_6"}, {"green_2"},
	}, 3, "red_9")
	in, ok := DefaultIntent(inProgress(r), 0)
	require.True(t, ok)
	assert.Equal(t, game.IntentPassTurn, in.Type)

	// the wished rank must be played
	r.Wish = 10
	in, ok = DefaultIntent(inProgress(r), 0)
	require.True(t, ok)
	assert.Equal(t, game.IntentPlayCards, in.Type)
	assert.Equal(t, []string{"black_10"}, in.CardKeys)
}

func TestDefaultIntentPlaysStrongestBomb(t *testing.T) {
	r := playingRound(t, 0, [game.NumSeats][]string{
		{"black_4"},
		{"red_2", "red_3", "red_4", "red_5", "red_6", "black_9", "red_9", "blue_9", "green_9"},
		{"black_6"}, {"green_2"},
	}, 0, "red_K")
	r.CurrentSeat = 1
	r.Mode = game.ModeInterruptPending
	r.InterruptSeat = 1

	in, ok := DefaultIntent(inProgress(r), 1)
	require.True(t, ok)
	assert.Equal(t, []string{"red_2", "red_3", "red_4", "red_5", "red_6"}, in.CardKeys)
	_, ok = DefaultIntent(inProgress(r), 2)
	assert.False(t, ok)
}

func TestMaybeDropBomb(t *testing.T) {
	r := playingRound(t, 2, [game.NumSeats][]string{
		{"black_4"},
		{"black_9", "red_9", "blue_9", "green_9"},
		{"black_6"}, {"green_2"},
	}, 0, "red_K")

	_, ok := cautious.MaybeDropBomb(r, 1)
	assert.False(t, ok)

	brain := NewBrain(7)
	dropped := false
	for i := 0; i < 200 && !dropped; i++ {
		in, ok := brain.MaybeDropBomb(r, 1)
		if ok {
			assert.Equal(t, game.IntentDropBomb, in.Type)
			dropped = true
		}
	}
	assert.True(t, dropped)
	for i := 0; i < 50; i++ {
		_, ok := brain.MaybeDropBomb(r, 3)
		assert.False(t, ok)
	}
}
