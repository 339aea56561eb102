package game

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"tichu.com/server/util"
)

var managerLogger = log.With().Str("logger_name", "game::manager").Logger()

var GameManager *Manager

type Manager struct {
	config        GameConfig
	persist       PersistGameState
	recorder      ResultRecorder
	timeoutPolicy TimeoutPolicy
	crashHandler  func(gameCode string)
	activeGames   cmap.ConcurrentMap
}

func NewGameManager(config GameConfig, persist PersistGameState, recorder ResultRecorder, timeoutPolicy TimeoutPolicy) *Manager {
	return &Manager{
		config:        config,
		persist:       persist,
		recorder:      recorder,
		timeoutPolicy: timeoutPolicy,
		activeGames:   cmap.New(),
	}
}

// CreateGameManager builds the process wide manager. The persistence backend
// is selected with PERSIST_METHOD.
func CreateGameManager(config GameConfig, recorder ResultRecorder, timeoutPolicy TimeoutPolicy) *Manager {
	if GameManager != nil {
		return GameManager
	}

	var persist PersistGameState
	var persistMethod = util.Env.GetPersistMethod()
	if persistMethod == "redis" {
		redisHost := util.Env.GetRedisHost()
		redisPort := util.Env.GetRedisPort()
		persist = NewRedisGameStateTracker(fmt.Sprintf("%s:%d", redisHost, redisPort), util.Env.GetRedisPW(), util.Env.GetRedisDB())
	} else {
		persist = NewMemoryGameStateTracker()
	}

	GameManager = NewGameManager(config, persist, recorder, timeoutPolicy)
	return GameManager
}

func (gm *Manager) SetCrashHandler(handler func(gameCode string)) {
	gm.crashHandler = handler
}

func (gm *Manager) Config() GameConfig {
	return gm.config
}

// InitializeGame creates the actor for gameCode. A persisted snapshot for the
// same code is resumed instead of starting over.
func (gm *Manager) InitializeGame(messageReceiver GameMessageReceiver, gameCode string, winningScore int) (*Game, error) {
	if gameCode == "" {
		return nil, fmt.Errorf("Invalid game code")
	}
	if _, exists := gm.activeGames.Get(gameCode); exists {
		return nil, fmt.Errorf("Game %s is already running", gameCode)
	}

	var state *GameState
	if gm.persist != nil {
		restored, err := gm.persist.Load(gameCode)
		switch err.(type) {
		case nil:
			managerLogger.Info().Str("game", gameCode).Msgf("Resuming game at round %d", restored.RoundNum)
			state = restored
		case StateNotFoundError:
		default:
			return nil, errors.Wrap(err, "Unable to load persisted game state")
		}
	}
	if state == nil {
		state = NewGameState(winningScore)
	}

	game := NewGame(gameCode, gm, messageReceiver, gm.config, state)
	gm.activeGames.Set(gameCode, game)
	util.Metrics.NewGame()
	util.Metrics.SetActiveGamesMapCount(gm.activeGames.Count())
	return game, nil
}

func (gm *Manager) GetGame(gameCode string) (*Game, bool) {
	v, exists := gm.activeGames.Get(gameCode)
	if !exists {
		return nil, false
	}
	return v.(*Game), true
}

func (gm *Manager) ActiveGameCodes() []string {
	return gm.activeGames.Keys()
}

// EndGame stops the actor and drops its persisted state.
func (gm *Manager) EndGame(gameCode string) error {
	game, exists := gm.GetGame(gameCode)
	if !exists {
		return fmt.Errorf("Game %s does not exist", gameCode)
	}
	game.GameEnded()
	return nil
}

func (gm *Manager) gameEnded(game *Game) {
	gm.activeGames.Remove(game.gameCode)
	util.Metrics.SetActiveGamesMapCount(gm.activeGames.Count())
	if gm.persist != nil {
		if err := gm.persist.Remove(game.gameCode); err != nil {
			managerLogger.Error().Str("game", game.gameCode).Msgf("Unable to remove persisted state: %v", err)
		}
	}
}

func (gm *Manager) crashCleanup(gameCode string) {
	managerLogger.Error().Str("game", gameCode).Msg("Game crashed")
	if gm.crashHandler != nil {
		gm.crashHandler(gameCode)
		return
	}
	if game, exists := gm.GetGame(gameCode); exists {
		game.GameEnded()
	}
}
