package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Field names shared by every game log line.
const (
	GameCodeKey  string = "gameCode"
	RoundNumKey  string = "roundNo"
	SeatNumKey   string = "seatNo"
	NicknameKey  string = "nickname"
	IntentKey    string = "intent"
	EventKey     string = "event"
	ActionNumKey string = "actionNum"
	ErrorCodeKey string = "errorCode"
)

func envFlag(name string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "":
		return defaultValue
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetZeroLogger writes to out (stdout when nil). LOG_JSON=true switches from
// the console format to one JSON object per line; COLORIZE_LOG=false drops colors.
func GetZeroLogger(name string, out io.Writer) *zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if !envFlag("LOG_JSON", false) {
		out = zerolog.ConsoleWriter{Out: out, NoColor: !envFlag("COLORIZE_LOG", true), TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).With().Timestamp().Str("logger", name).Logger()
	return &logger
}

// ForGame adds the game and round fields to base.
func ForGame(base zerolog.Logger, gameCode string, roundNum int) zerolog.Logger {
	return base.With().Str(GameCodeKey, gameCode).Int(RoundNumKey, roundNum).Logger()
}
