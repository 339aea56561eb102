package timer

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var actionTimerLogger = log.With().Str("logger_name", "timer::action_timer").Logger()

// TimerMsg identifies the action the timer is waiting for. CurrentActionNum
// lets the game discard expiries that raced with an accepted action.
type TimerMsg struct {
	SeatNo           int
	PlayerName       string
	CurrentActionNum uint32
	ExpireAt         time.Time
}

// ActionTimer runs one countdown at a time for the seat expected to act.
// Every Reset replaces the running countdown.
type ActionTimer struct {
	gameCode string

	chReset   chan TimerMsg
	chPause   chan bool
	chEndLoop chan bool

	callback     func(TimerMsg)
	crashHandler func()

	lock     sync.Mutex
	expireAt time.Time
}

func NewActionTimer(gameCode string, callback func(TimerMsg), crashHandler func()) *ActionTimer {
	return &ActionTimer{
		gameCode:     gameCode,
		chReset:      make(chan TimerMsg),
		chPause:      make(chan bool),
		chEndLoop:    make(chan bool, 10),
		callback:     callback,
		crashHandler: crashHandler,
	}
}

func (a *ActionTimer) Run() {
	go a.loop()
}

func (a *ActionTimer) Destroy() {
	a.chEndLoop <- true
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (a *ActionTimer) loop() {
	defer func() {
		err := recover()
		if err != nil {
			actionTimerLogger.Error().
				Str("game", a.gameCode).
				Msgf("Action timer loop returning due to panic: %s\nStack Trace:\n%s", err, string(debug.Stack()))
			if a.crashHandler != nil {
				a.crashHandler()
			}
		} else {
			actionTimerLogger.Debug().Str("game", a.gameCode).Msg("Action timer loop returning")
		}
	}()

	expiry := time.NewTimer(time.Hour)
	stopTimer(expiry)
	var current TimerMsg
	for {
		select {
		case <-a.chEndLoop:
			stopTimer(expiry)
			return
		case <-a.chPause:
			stopTimer(expiry)
		case msg := <-a.chReset:
			stopTimer(expiry)
			current = msg
			expiry.Reset(time.Until(msg.ExpireAt))
		case <-expiry.C:
			a.lock.Lock()
			if a.expireAt.Equal(current.ExpireAt) {
				a.expireAt = time.Time{}
			}
			a.lock.Unlock()
			actionTimerLogger.Debug().Str("game", a.gameCode).Msgf("Seat %d timed out at action %d", current.SeatNo, current.CurrentActionNum)
			a.callback(current)
		}
	}
}

func (a *ActionTimer) setExpireAt(t time.Time) {
	a.lock.Lock()
	a.expireAt = t
	a.lock.Unlock()
}

func (a *ActionTimer) Pause() {
	a.setExpireAt(time.Time{})
	a.chPause <- true
}

func (a *ActionTimer) Reset(t TimerMsg) error {
	if t.SeatNo < 0 {
		return fmt.Errorf("invalid seatNo %d", t.SeatNo)
	}
	if t.ExpireAt.IsZero() {
		return fmt.Errorf("invalid expireAt")
	}
	a.setExpireAt(t.ExpireAt)
	a.chReset <- t
	return nil
}

// GetRemainingSec is zero while no countdown is running.
func (a *ActionTimer) GetRemainingSec() uint32 {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.expireAt.IsZero() {
		return 0
	}
	remaining := time.Until(a.expireAt).Seconds()
	if remaining < 0 {
		return 0
	}
	return uint32(remaining)
}
