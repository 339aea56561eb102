package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"tichu.com/server/archive"
	"tichu.com/server/bot"
	"tichu.com/server/game"
	"tichu.com/server/logging"
	"tichu.com/server/nats"
	"tichu.com/server/rest"
	"tichu.com/server/simulation"
	"tichu.com/server/util"
)

var configFile *string
var simulateGames *int
var simulateScore *int
var simulateSeed *int64
var mainLogger = logging.GetZeroLogger("main::main", nil)

func init() {
	configFile = flag.String("config", "", "YAML file with the game defaults")
	simulateGames = flag.Int("simulate", 0, "plays the given number of bot-only games and exits")
	simulateScore = flag.Int("simulate-score", game.DefaultWinningScore, "winning score of simulated games")
	simulateSeed = flag.Int64("seed", 1, "seed of simulated games")
}

func main() {
	err := run()
	if err != nil {
		mainLogger.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logLevel := util.Env.GetZeroLogLogLevel()
	fmt.Printf("Setting log level to %s\n", logLevel)
	zerolog.SetGlobalLevel(logLevel)
	flag.Parse()

	if *simulateGames > 0 {
		_, err := simulation.Run(*simulateGames, *simulateScore, *simulateSeed, os.Stdout)
		return err
	}

	config, err := loadConfig(*configFile)
	if err != nil {
		return errors.Wrap(err, "Error while loading game config")
	}

	var results archive.Archive
	if util.Env.ShouldArchiveToPostgres() {
		results, err = archive.NewPostgresArchive(util.Env.GetPostgresConnStr())
		if err != nil {
			return errors.Wrap(err, "Error while connecting to the result archive")
		}
	} else {
		results = archive.NewMemoryArchive()
	}
	defer results.Close()

	gameManager := game.CreateGameManager(config, results, bot.DefaultIntent)

	natsURL := util.Env.GetNatsURL()
	mainLogger.Info().Msgf("NATS URL: %s", natsURL)
	natsGameManager, err := nats.NewGameManager(natsURL, gameManager)
	if err != nil {
		return errors.Wrap(err, "Error creating NATS game manager")
	}
	defer natsGameManager.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- rest.RunRestServer(natsGameManager, results, util.Env.GetRestPort())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return errors.Wrap(err, "REST server stopped")
	case sig := <-sigCh:
		mainLogger.Info().Msgf("Received %s. Shutting down.", sig)
	}
	return nil
}

// loadConfig reads the config file when one is given and the environment otherwise.
func loadConfig(path string) (game.GameConfig, error) {
	if path != "" {
		return game.ParseGameConfig(path)
	}
	config := game.DefaultGameConfig()
	config.PlayTimeoutSec = uint32(util.Env.GetPlayTimeout())
	config.IntentRate = float64(util.Env.GetIntentRate())
	config.IntentBurst = util.Env.GetIntentBurst()
	return config, nil
}
