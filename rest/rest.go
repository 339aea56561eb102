package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"tichu.com/server/archive"
	"tichu.com/server/bot"
	"tichu.com/server/game"
	"tichu.com/server/nats"
	"tichu.com/server/util"
)

var restLogger = log.With().Str("logger_name", "game::rest").Logger()
var natsGameManager *nats.GameManager
var resultArchive archive.Archive

var botsLock sync.Mutex
var botsByGame = make(map[string][]*bot.Player)

//
// APP error definition
//
type appError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type newGamePayload struct {
	GameCode     string `json:"gameCode"`
	WinningScore *int   `json:"winningScore"`
	Bots         int    `json:"bots"`
}

type gameStatus struct {
	GameCode    string                `json:"gameCode"`
	Status      game.Status           `json:"status"`
	Players     [game.NumSeats]string `json:"players"`
	RoundNum    int                   `json:"roundNum"`
	RoundPhase  string                `json:"roundPhase,omitempty"`
	ActingSeat  game.Seat             `json:"actingSeat"`
	ActionNum   uint32                `json:"actionNum"`
	TimeLeftSec uint32                `json:"timeLeftSec"`
	Team02Total int                   `json:"team02Total"`
	Team13Total int                   `json:"team13Total"`
	Result      game.Result           `json:"result"`
}

func NewRouter() *gin.Engine {
	r := gin.Default()
	r.POST("/new-game", newGame)
	r.POST("/end-game", endGame)
	r.GET("/game-status", getGameStatus)
	r.GET("/games", activeGames)
	r.GET("/results", recentResults)
	r.GET("/ready", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func RunRestServer(gameManager *nats.GameManager, results archive.Archive, port int) error {
	natsGameManager = gameManager
	resultArchive = results
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

func abortWithError(c *gin.Context, code int, err error) {
	c.IndentedJSON(code, appError{
		Code:    code,
		Message: err.Error(),
	})
	c.Error(err)
}

func newGame(c *gin.Context) {
	restLogger.Info().Msgf("New game is received")
	var payload newGamePayload
	err := c.BindJSON(&payload)
	if err != nil {
		restLogger.Error().Msgf("Failed to parse new game request. Error: %v", err)
		return
	}
	if payload.Bots < 0 || payload.Bots > game.NumSeats {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("Invalid number of bots: %d", payload.Bots))
		return
	}
	if natsGameManager == nil {
		abortWithError(c, http.StatusServiceUnavailable, fmt.Errorf("Game server is not connected to NATS"))
		return
	}
	winningScore := game.GameManager.Config().WinningScore
	if payload.WinningScore != nil {
		winningScore = *payload.WinningScore
	}
	if winningScore < 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("Invalid winning score: %d", winningScore))
		return
	}

	natsGame, err := natsGameManager.NewGame(payload.GameCode, winningScore)
	if err != nil {
		restLogger.Error().Msgf("Unable to initialize nats game: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	if err := startBots(natsGame, payload.Bots); err != nil {
		restLogger.Error().Msgf("Unable to start bots: %v", err)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameId": natsGame.GameID(), "gameCode": natsGame.GameCode()})
}

// startBots seats n bots from the last seat backwards.
func startBots(natsGame *nats.NatsGame, n int) error {
	delay := time.Duration(util.Env.GetBotDelay()) * time.Millisecond
	view := natsGame.ServerGame().Snapshot
	var players []*bot.Player
	for i := 0; i < n; i++ {
		seat := game.Seat(game.NumSeats - 1 - i)
		brain := bot.NewBrain(time.Now().UnixNano() + int64(seat))
		player := bot.NewPlayer(natsGameManager.NatsConn(), natsGame.GameCode(), seat, brain, view, delay)
		if err := player.JoinGame(); err != nil {
			for _, p := range players {
				p.Stop()
			}
			return err
		}
		players = append(players, player)
	}
	botsLock.Lock()
	botsByGame[natsGame.GameCode()] = players
	botsLock.Unlock()
	return nil
}

func stopBots(gameCode string) {
	botsLock.Lock()
	players := botsByGame[gameCode]
	delete(botsByGame, gameCode)
	botsLock.Unlock()
	for _, p := range players {
		p.Stop()
	}
}

func endGame(c *gin.Context) {
	type Payload struct {
		GameCode string `json:"gameCode"`
	}
	var payload Payload
	err := c.BindJSON(&payload)
	if err != nil {
		restLogger.Error().Msgf("Failed to parse end game request. Error: %v", err)
		return
	}
	if payload.GameCode == "" {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("Missing gameCode"))
		return
	}
	if natsGameManager == nil {
		abortWithError(c, http.StatusServiceUnavailable, fmt.Errorf("Game server is not connected to NATS"))
		return
	}
	gameCode := natsGameManager.ResolveGameCode(payload.GameCode)
	stopBots(gameCode)
	if err := natsGameManager.EndNatsGame(gameCode); err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameCode": gameCode})
}

func getGameStatus(c *gin.Context) {
	gameCode := c.Query("game-code")
	if gameCode == "" {
		c.String(http.StatusBadRequest, "Failed to read game-code param from game-status endpoint")
		return
	}
	if natsGameManager != nil {
		gameCode = natsGameManager.ResolveGameCode(gameCode)
	}
	g, exists := game.GameManager.GetGame(gameCode)
	if !exists {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("Game %s is not running", gameCode))
		return
	}
	state, err := g.Snapshot()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	status := gameStatus{
		GameCode:    gameCode,
		Status:      state.Status,
		Players:     state.Players,
		RoundNum:    state.RoundNum,
		ActingSeat:  state.ActingSeat(),
		ActionNum:   state.ActionNum,
		TimeLeftSec: g.RemainingSec(),
		Team02Total: state.Team02Total,
		Team13Total: state.Team13Total,
		Result:      state.Result,
	}
	if state.Round != nil {
		status.RoundPhase = state.Round.Phase.String()
	}
	c.JSON(http.StatusOK, status)
}

func activeGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": game.GameManager.ActiveGameCodes()})
}

func recentResults(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.String(http.StatusBadRequest, "Failed to parse limit [%s] from results endpoint.", s)
			return
		}
		limit = n
	}
	if resultArchive == nil {
		c.JSON(http.StatusOK, gin.H{"results": []archive.GameResult{}})
		return
	}
	results, err := resultArchive.Recent(limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
