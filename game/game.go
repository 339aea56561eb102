package game

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tichu.com/server/logging"
	"tichu.com/server/timer"
	"tichu.com/server/util"
)

var channelGameLogger = log.With().Str("logger_name", "game::game").Logger()

// GameMessageReceiver delivers events to the players, normally over NATS.
type GameMessageReceiver interface {
	BroadcastEvent(event *Event)
	SendEventToPlayer(event *Event, seat Seat)
}

// TimeoutPolicy picks the intent applied on behalf of a seat that ran out of time.
type TimeoutPolicy func(state *GameState, seat Seat) (Intent, bool)

// ResultRecorder stores the outcome of finished games.
type ResultRecorder interface {
	RecordResult(summary GameSummary) error
}

// GameSummary is the archived outcome of a game.
type GameSummary struct {
	GameCode    string
	Players     [NumSeats]string
	Result      Result
	Team02Total int
	Team13Total int
	Rounds      []RoundScore
	EndedAt     time.Time
}

// Game is the actor owning one GameState. All intents are applied on the
// runGame goroutine.
type Game struct {
	gameCode        string
	manager         *Manager
	config          GameConfig
	messageReceiver GameMessageReceiver
	persist         PersistGameState
	recorder        ResultRecorder
	timeoutPolicy   TimeoutPolicy

	end            chan bool
	chIntent       chan Intent
	chPlayTimedOut chan timer.TimerMsg
	actionTimer    *timer.ActionTimer
	limiters       [NumSeats]*rate.Limiter

	lock     sync.Mutex
	state    *GameState
	recorded bool
}

func NewGame(gameCode string, manager *Manager, messageReceiver GameMessageReceiver, config GameConfig, state *GameState) *Game {
	g := &Game{
		gameCode:        gameCode,
		manager:         manager,
		config:          config,
		messageReceiver: messageReceiver,
		state:           state,
		end:             make(chan bool, 1),
		chIntent:        make(chan Intent, 100),
		chPlayTimedOut:  make(chan timer.TimerMsg, 10),
	}
	if manager != nil {
		g.persist = manager.persist
		g.recorder = manager.recorder
		g.timeoutPolicy = manager.timeoutPolicy
	}
	for _, seat := range AllSeats {
		g.limiters[seat] = rate.NewLimiter(rate.Limit(config.IntentRate), config.IntentBurst)
	}
	g.actionTimer = timer.NewActionTimer(gameCode, g.queueActionTimeoutMsg, g.crashHandler)
	return g
}

func (g *Game) GameCode() string {
	return g.gameCode
}

// Start runs the actor and announces the seats still open.
func (g *Game) Start() {
	g.actionTimer.Run()
	go g.runGame()
	g.lock.Lock()
	var events []Event
	if g.state.Status == StatusInit {
		events = []Event{g.state.waitingForJoin()}
	}
	g.lock.Unlock()
	g.publish(events)
	g.resetTimer()
}

// QueueIntent hands an intent to the actor. Never blocks the caller's goroutine for long.
func (g *Game) QueueIntent(in Intent) {
	g.chIntent <- in
}

// GameEnded stops the actor. Calls after the first are ignored.
func (g *Game) GameEnded() {
	select {
	case g.end <- true:
	default:
	}
}

func (g *Game) runGame() {
	defer func() {
		if err := recover(); err != nil {
			channelGameLogger.Error().
				Str(logging.GameCodeKey, g.gameCode).
				Msgf("Game loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))
			g.crashHandler()
		}
		g.actionTimer.Destroy()
		if g.manager != nil {
			g.manager.gameEnded(g)
		}
	}()

	ended := false
	for !ended {
		select {
		case <-g.end:
			ended = true
		case in := <-g.chIntent:
			g.handleIntent(in)
		case timeoutMsg := <-g.chPlayTimedOut:
			err := g.handlePlayTimeout(timeoutMsg)
			if err != nil {
				channelGameLogger.Error().Str(logging.GameCodeKey, g.gameCode).Msgf("Error while handling player timeout %+v", err)
			}
		}
	}
}

func (g *Game) crashHandler() {
	if g.manager != nil {
		g.manager.crashCleanup(g.gameCode)
	}
}

func (g *Game) allow(seat Seat) bool {
	if !seat.Valid() {
		return true
	}
	return g.limiters[seat].Allow()
}

func (g *Game) handleIntent(in Intent) {
	logger := logging.ForGame(channelGameLogger, g.gameCode, g.state.RoundNum).With().
		Int(logging.SeatNumKey, int(in.Seat)).
		Str(logging.IntentKey, string(in.Type)).
		Logger()

	if !g.allow(in.Seat) {
		util.Metrics.IntentRejected(CodeRateLimited)
		logger.Warn().Msg("Intent dropped by rate limiter")
		g.sendToSeat(BusinessError(in.Seat, ruleViolation(CodeRateLimited, "Too many requests.")))
		return
	}

	g.lock.Lock()
	events, err := g.state.Apply(in)
	g.lock.Unlock()
	if err != nil {
		util.Metrics.IntentRejected(ErrorCode(err))
		if _, ok := err.(InvariantError); ok {
			logger.Error().Msgf("Engine invariant failed: %s", err.Error())
		} else {
			logger.Info().Str(logging.ErrorCodeKey, ErrorCode(err)).Msgf("Intent rejected: %s", err.Error())
		}
		if in.Seat.Valid() {
			g.sendToSeat(BusinessError(in.Seat, err))
		}
		return
	}
	util.Metrics.IntentAccepted()
	logger.Debug().Uint32(logging.ActionNumKey, g.state.ActionNum).Msg("Intent applied")

	g.saveState()
	g.publish(events)
	g.afterAction(events)
}

func (g *Game) handlePlayTimeout(timeoutMsg timer.TimerMsg) error {
	g.lock.Lock()
	stale := timeoutMsg.CurrentActionNum != g.state.ActionNum
	seat := g.state.ActingSeat()
	var in Intent
	ok := false
	if !stale && seat == Seat(timeoutMsg.SeatNo) && g.timeoutPolicy != nil {
		in, ok = g.timeoutPolicy(g.state, seat)
	}
	g.lock.Unlock()

	if stale {
		channelGameLogger.Debug().
			Str(logging.GameCodeKey, g.gameCode).
			Msgf("Ignoring stale timeout for action %d", timeoutMsg.CurrentActionNum)
		return nil
	}
	if !ok {
		return fmt.Errorf("no default action for seat %d", timeoutMsg.SeatNo)
	}
	util.Metrics.PlayTimedOut()
	channelGameLogger.Info().
		Str(logging.GameCodeKey, g.gameCode).
		Int(logging.SeatNumKey, timeoutMsg.SeatNo).
		Str(logging.IntentKey, string(in.Type)).
		Msg("Seat timed out. Applying default action.")
	g.handleIntent(in)
	return nil
}

func (g *Game) queueActionTimeoutMsg(msg timer.TimerMsg) {
	g.chPlayTimedOut <- msg
}

func (g *Game) resetTimer() {
	g.lock.Lock()
	seat := g.state.ActingSeat()
	actionNum := g.state.ActionNum
	name := ""
	if seat.Valid() {
		name = g.state.Players[seat]
	}
	g.lock.Unlock()

	if !seat.Valid() || g.config.PlayTimeoutSec == 0 {
		g.actionTimer.Pause()
		return
	}
	expireAt := time.Now().Add(time.Duration(g.config.PlayTimeoutSec) * time.Second)
	channelGameLogger.Debug().
		Str(logging.GameCodeKey, g.gameCode).
		Msgf("Resetting timer. Current timer seat: %d expires at %s", seat, expireAt)
	err := g.actionTimer.Reset(timer.TimerMsg{
		SeatNo:           int(seat),
		PlayerName:       name,
		CurrentActionNum: actionNum,
		ExpireAt:         expireAt,
	})
	if err != nil {
		channelGameLogger.Error().Str(logging.GameCodeKey, g.gameCode).Msgf("Unable to reset action timer: %v", err)
	}
}

func (g *Game) afterAction(events []Event) {
	for _, e := range events {
		if e.Type == EventGameRoundEnded {
			util.Metrics.RoundEnded()
		}
	}
	g.lock.Lock()
	over := g.state.Status == StatusOver
	g.lock.Unlock()
	if !over {
		g.resetTimer()
		return
	}
	g.actionTimer.Pause()
	g.recordResult()
}

func (g *Game) recordResult() {
	if g.recorded {
		return
	}
	g.recorded = true
	util.Metrics.GameEnded()
	if g.recorder == nil {
		return
	}
	summary := g.Summary()
	if err := g.recorder.RecordResult(summary); err != nil {
		channelGameLogger.Error().Str(logging.GameCodeKey, g.gameCode).Msgf("Unable to archive game result: %v", err)
	}
}

func (g *Game) saveState() {
	if g.persist == nil {
		return
	}
	g.lock.Lock()
	err := g.persist.Save(g.gameCode, g.state)
	g.lock.Unlock()
	if err != nil {
		channelGameLogger.Error().Str(logging.GameCodeKey, g.gameCode).Msgf("Unable to persist game state: %v", err)
	}
}

func (g *Game) publish(events []Event) {
	if g.messageReceiver == nil {
		return
	}
	for i := range events {
		e := &events[i]
		if e.Recipient == Everyone {
			g.messageReceiver.BroadcastEvent(e)
		} else {
			g.messageReceiver.SendEventToPlayer(e, e.Recipient)
		}
	}
}

func (g *Game) sendToSeat(e Event) {
	if g.messageReceiver == nil {
		return
	}
	g.messageReceiver.SendEventToPlayer(&e, e.Recipient)
}

// Snapshot returns a copy of the game state.
func (g *Game) Snapshot() (*GameState, error) {
	g.lock.Lock()
	b, err := MarshalState(g.state)
	g.lock.Unlock()
	if err != nil {
		return nil, err
	}
	return UnmarshalState(b)
}

// RemainingSec is the time left for the acting seat, zero when nobody is on the clock.
func (g *Game) RemainingSec() uint32 {
	return g.actionTimer.GetRemainingSec()
}

func (g *Game) Summary() GameSummary {
	g.lock.Lock()
	defer g.lock.Unlock()
	return GameSummary{
		GameCode:    g.gameCode,
		Players:     g.state.Players,
		Result:      g.state.Result,
		Team02Total: g.state.Team02Total,
		Team13Total: g.state.Team13Total,
		Rounds:      append([]RoundScore(nil), g.state.ScoreHistory...),
		EndedAt:     time.Now().UTC(),
	}
}
