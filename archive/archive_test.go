package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tichu.com/server/game"
)

func TestToGameResult(t *testing.T) {
	ended := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)
	result, err := toGameResult(game.GameSummary{
		GameCode:    "ABC123",
		Players:     [game.NumSeats]string{"ann", "bob", "cid", "dee"},
		Result:      game.ResultTeam13,
		Team02Total: 40,
		Team13Total: 160,
		Rounds:      []game.RoundScore{{Team02: 40, Team13: 60}, {Team02: 0, Team13: 100}},
		EndedAt:     ended,
	})
	require.NoError(t, err)
	assert.Equal(t, GameResult{
		GameCode:    "ABC123",
		Players:     `["ann","bob","cid","dee"]`,
		Result:      "TEAM_13",
		Team02Total: 40,
		Team13Total: 160,
		Rounds:      2,
		Scores:      `[{"team02":40,"team13":60},{"team02":0,"team13":100}]`,
		EndedAt:     ended,
	}, result)

	empty, err := toGameResult(game.GameSummary{GameCode: "X"})
	require.NoError(t, err)
	assert.Equal(t, "[]", empty.Scores)
	assert.False(t, empty.EndedAt.IsZero())
}

func TestMemoryArchive(t *testing.T) {
	var archive Archive = NewMemoryArchive()
	base := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, code := range []string{"G1", "G2", "G3"} {
		err := archive.RecordResult(game.GameSummary{GameCode: code, Result: game.ResultTie, EndedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	recent, err := archive.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "G3", recent[0].GameCode)
	assert.Equal(t, "G2", recent[1].GameCode)

	all, err := archive.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.NoError(t, archive.Close())
}
