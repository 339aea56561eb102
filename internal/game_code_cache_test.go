package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameCodeCache(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	assert.Error(t, c.Add("", "ABC123"))
	assert.Error(t, c.Add("id-1", ""))

	require.NoError(t, c.Add("id-1", "ABC123"))
	code, ok := c.GameIDToCode("id-1")
	assert.True(t, ok)
	assert.Equal(t, "ABC123", code)
	id, ok := c.GameCodeToID("ABC123")
	assert.True(t, ok)
	assert.Equal(t, "id-1", id)

	// the least recently used entries are evicted
	require.NoError(t, c.Add("id-2", "DEF456"))
	require.NoError(t, c.Add("id-3", "GHI789"))
	_, ok = c.GameIDToCode("id-1")
	assert.False(t, ok)

	c.Remove("DEF456")
	_, ok = c.GameCodeToID("DEF456")
	assert.False(t, ok)
	_, ok = c.GameIDToCode("id-2")
	assert.False(t, ok)
	code, ok = c.GameIDToCode("id-3")
	assert.True(t, ok)
	assert.Equal(t, "GHI789", code)
}

func TestNewGameCode(t *testing.T) {
	code := NewGameCode()
	assert.Len(t, code, gameCodeLength)
	assert.Regexp(t, "^[0-9A-F]+$", code)
	assert.NotEqual(t, code, NewGameCode())
	assert.Len(t, NewGameID(), 36)
}
