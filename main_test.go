package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tichu.com/server/game"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("PLAY_TIMEOUT", "30")
	defer os.Unsetenv("PLAY_TIMEOUT")
	config, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, uint32(30), config.PlayTimeoutSec)
	assert.Equal(t, game.DefaultWinningScore, config.WinningScore)

	config, err = loadConfig("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1000, config.WinningScore)
	assert.Equal(t, uint32(62), config.PlayTimeoutSec)

	_, err = loadConfig("missing.yaml")
	assert.Error(t, err)
}
