package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type gameServerEnvironment struct {
	LogLevel      string
	NatsURL       string
	PersistMethod string
	RedisHost     string
	RedisPort     string
	RedisPW       string
	RedisDB       string
	PlayTimeout   string
	IntentRate    string
	IntentBurst   string
	ArchiveMethod string
	PostgresHost  string
	PostgresPort  string
	PostgresDB    string
	PostgresUser  string
	PostgresPW    string
	RestPort      string
	BotDelay      string
}

// Env is a helper object for accessing environment variables.
var Env = &gameServerEnvironment{
	LogLevel:      "LOG_LEVEL",
	NatsURL:       "NATS_URL",
	PersistMethod: "PERSIST_METHOD",
	RedisHost:     "REDIS_HOST",
	RedisPort:     "REDIS_PORT",
	RedisPW:       "REDIS_PW",
	RedisDB:       "REDIS_DB",
	PlayTimeout:   "PLAY_TIMEOUT",
	IntentRate:    "INTENT_RATE",
	IntentBurst:   "INTENT_BURST",
	ArchiveMethod: "ARCHIVE_METHOD",
	PostgresHost:  "POSTGRES_HOST",
	PostgresPort:  "POSTGRES_PORT",
	PostgresDB:    "POSTGRES_DB",
	PostgresUser:  "POSTGRES_USER",
	PostgresPW:    "POSTGRES_PASSWORD",
	RestPort:      "REST_PORT",
	BotDelay:      "BOT_DELAY_MS",
}

func mustGet(name string) string {
	v := os.Getenv(name)
	if v == "" {
		msg := fmt.Sprintf("%s is not defined", name)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return v
}

func mustGetInt(name string) int {
	s := mustGet(name)
	n, err := strconv.Atoi(s)
	if err != nil {
		msg := fmt.Sprintf("Invalid integer [%s] for %s", s, name)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return n
}

func getIntOrDefault(name string, defaultValue int) int {
	s := os.Getenv(name)
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		msg := fmt.Sprintf("Invalid integer [%s] for %s", s, name)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return n
}

func (g *gameServerEnvironment) GetLogLevel() string {
	v := os.Getenv(g.LogLevel)
	if v == "" {
		return "info"
	}
	return v
}

func (g *gameServerEnvironment) GetZeroLogLogLevel() zerolog.Level {
	l := g.GetLogLevel()
	switch strings.ToLower(l) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		fallthrough
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		panic(fmt.Sprintf("Unsupported %s: %s", g.LogLevel, l))
	}
}

func (g *gameServerEnvironment) GetNatsURL() string {
	return mustGet(g.NatsURL)
}

func (g *gameServerEnvironment) GetPersistMethod() string {
	v := os.Getenv(g.PersistMethod)
	if v == "" {
		return "memory"
	}
	return v
}

func (g *gameServerEnvironment) GetRedisHost() string {
	return mustGet(g.RedisHost)
}

func (g *gameServerEnvironment) GetRedisPort() int {
	return mustGetInt(g.RedisPort)
}

func (g *gameServerEnvironment) GetRedisPW() string {
	return os.Getenv(g.RedisPW)
}

func (g *gameServerEnvironment) GetRedisDB() int {
	return getIntOrDefault(g.RedisDB, 0)
}

// GetPlayTimeout is the number of seconds a seat has to act.
func (g *gameServerEnvironment) GetPlayTimeout() int {
	// 1 minute + a few seconds for slow network
	return getIntOrDefault(g.PlayTimeout, 62)
}

// GetIntentRate is the number of intents per second a seat may send.
func (g *gameServerEnvironment) GetIntentRate() int {
	return getIntOrDefault(g.IntentRate, 5)
}

func (g *gameServerEnvironment) GetIntentBurst() int {
	return getIntOrDefault(g.IntentBurst, 10)
}

func (g *gameServerEnvironment) GetArchiveMethod() string {
	v := os.Getenv(g.ArchiveMethod)
	if v == "" {
		return "memory"
	}
	return v
}

func (g *gameServerEnvironment) ShouldArchiveToPostgres() bool {
	return strings.ToLower(g.GetArchiveMethod()) == "postgres"
}

func (g *gameServerEnvironment) GetPostgresHost() string {
	return mustGet(g.PostgresHost)
}

func (g *gameServerEnvironment) GetPostgresPort() int {
	return mustGetInt(g.PostgresPort)
}

func (g *gameServerEnvironment) GetPostgresUser() string {
	return mustGet(g.PostgresUser)
}

func (g *gameServerEnvironment) GetPostgresPW() string {
	return mustGet(g.PostgresPW)
}

func (g *gameServerEnvironment) GetPostgresDB() string {
	return mustGet(g.PostgresDB)
}

// GetPostgresConnStr builds the lib/pq connection string.
func (g *gameServerEnvironment) GetPostgresConnStr() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		g.GetPostgresHost(), g.GetPostgresPort(), g.GetPostgresUser(), g.GetPostgresPW(), g.GetPostgresDB())
}

func (g *gameServerEnvironment) GetRestPort() int {
	return getIntOrDefault(g.RestPort, 8080)
}

// GetBotDelay is the think time of the server side bots in milliseconds.
func (g *gameServerEnvironment) GetBotDelay() int {
	return getIntOrDefault(g.BotDelay, 300)
}
