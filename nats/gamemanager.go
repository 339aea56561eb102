package nats

import (
	"fmt"
	"sync"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"tichu.com/server/game"
	"tichu.com/server/internal"
)

var natsGMLogger = log.With().Str("logger_name", "nats::gamemanager").Logger()

// This game manager is similar to game.GameManager.
// However, this game manager tracks the NatsGame adapters and
// cleans them up when the game ends.
type GameManager struct {
	lock        sync.Mutex
	activeGames map[string]*NatsGame
	nc          *natsgo.Conn
	manager     *game.Manager
}

// NewGameManager connects to natsURL and hosts the games of manager.
func NewGameManager(natsURL string, manager *game.Manager) (*GameManager, error) {
	nc, err := natsgo.Connect(natsURL)
	if err != nil {
		natsGMLogger.Error().Msgf("Failed to connect to nats server: %v", err)
		return nil, err
	}
	gm := &GameManager{
		nc:          nc,
		activeGames: make(map[string]*NatsGame),
		manager:     manager,
	}
	manager.SetCrashHandler(gm.CrashCleanup)
	return gm, nil
}

func (gm *GameManager) NatsConn() *natsgo.Conn {
	return gm.nc
}

// NewGame starts a game under gameCode. An empty code gets a generated one.
func (gm *GameManager) NewGame(gameCode string, winningScore int) (*NatsGame, error) {
	if gameCode == "" {
		gameCode = internal.NewGameCode()
	}
	gameID := internal.NewGameID()
	natsGMLogger.Info().Msgf("New game id %s code %s", gameID, gameCode)

	gm.lock.Lock()
	defer gm.lock.Unlock()
	if _, exists := gm.activeGames[gameCode]; exists {
		return nil, fmt.Errorf("Game %s is already hosted", gameCode)
	}
	natsGame, err := newNatsGame(gm.nc, gm.manager, gameID, gameCode, winningScore)
	if err != nil {
		return nil, err
	}
	gm.activeGames[gameCode] = natsGame
	if err := internal.GameCodeCache.Add(gameID, gameCode); err != nil {
		natsGMLogger.Warn().Msgf("Unable to cache game code %s: %v", gameCode, err)
	}
	return natsGame, nil
}

func (gm *GameManager) GetGame(gameCode string) (*NatsGame, bool) {
	gm.lock.Lock()
	defer gm.lock.Unlock()
	natsGame, exists := gm.activeGames[gameCode]
	return natsGame, exists
}

// ResolveGameCode accepts either a game code or a game id.
func (gm *GameManager) ResolveGameCode(codeOrID string) string {
	if code, exists := internal.GameCodeCache.GameIDToCode(codeOrID); exists {
		return code
	}
	return codeOrID
}

func (gm *GameManager) CrashCleanup(gameCode string) {
	natsGMLogger.Error().Msgf("CrashCleanup called for game %s", gameCode)
	gm.EndNatsGame(gameCode)
}

func (gm *GameManager) EndNatsGame(gameCode string) error {
	gm.lock.Lock()
	natsGame, exists := gm.activeGames[gameCode]
	delete(gm.activeGames, gameCode)
	gm.lock.Unlock()
	if !exists {
		return fmt.Errorf("Game %s is not hosted here", gameCode)
	}
	natsGame.cleanup()
	natsGame.gameEnded()
	internal.GameCodeCache.Remove(gameCode)
	return nil
}

func (gm *GameManager) Close() {
	gm.lock.Lock()
	codes := make([]string, 0, len(gm.activeGames))
	for code := range gm.activeGames {
		codes = append(codes, code)
	}
	gm.lock.Unlock()
	for _, code := range codes {
		gm.EndNatsGame(code)
	}
	gm.nc.Close()
}
