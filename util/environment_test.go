package util

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentDefaults(t *testing.T) {
	for _, name := range []string{"PERSIST_METHOD", "ARCHIVE_METHOD", "REST_PORT", "BOT_DELAY_MS", "PLAY_TIMEOUT"} {
		os.Unsetenv(name)
	}
	assert.Equal(t, "memory", Env.GetPersistMethod())
	assert.False(t, Env.ShouldArchiveToPostgres())
	assert.Equal(t, 8080, Env.GetRestPort())
	assert.Equal(t, 300, Env.GetBotDelay())
	assert.Equal(t, 62, Env.GetPlayTimeout())

	os.Setenv("ARCHIVE_METHOD", "Postgres")
	defer os.Unsetenv("ARCHIVE_METHOD")
	assert.True(t, Env.ShouldArchiveToPostgres())
}

func TestRequiredVariables(t *testing.T) {
	os.Unsetenv("NATS_URL")
	assert.Panics(t, func() { Env.GetNatsURL() })

	os.Setenv("REST_PORT", "http")
	defer os.Unsetenv("REST_PORT")
	assert.Panics(t, func() { Env.GetRestPort() })
}
