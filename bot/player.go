package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"tichu.com/server/game"
	"tichu.com/server/logging"
	"tichu.com/server/nats"
)

var botPlayerLogger = log.With().Str("logger_name", "bot::player").Logger()

// GameView returns a fresh snapshot of the game the bot sits in.
type GameView func() (*game.GameState, error)

type natsConn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb natsgo.MsgHandler) (*natsgo.Subscription, error)
}

// Player is a bot occupying one seat over NATS. It reacts to every event of
// its game and acts at most once per game action.
type Player struct {
	botID    string
	gameCode string
	seat     game.Seat
	nickname string
	brain    *Brain
	view     GameView
	delay    time.Duration

	nc                     natsConn
	player2GameSubject     string
	game2AllPlayersSubject string
	game2PlayerSubject     string
	game2AllPlayersSub     *natsgo.Subscription
	game2PlayerSub         *natsgo.Subscription

	lock      sync.Mutex
	actedAt   uint32
	hasActed  bool
	stopped   bool
	stoppedCh chan bool
}

func NewPlayer(nc natsConn, gameCode string, seat game.Seat, brain *Brain, view GameView, delay time.Duration) *Player {
	return &Player{
		botID:     uuid.New().String(),
		gameCode:  gameCode,
		seat:      seat,
		nickname:  fmt.Sprintf("bot-%d", int(seat)+1),
		brain:     brain,
		view:      view,
		delay:     delay,
		nc:        nc,
		stoppedCh: make(chan bool, 1),
	}
}

func (p *Player) initialize() {
	p.player2GameSubject = nats.GetPlayer2GameSubject(p.gameCode)
	p.game2AllPlayersSubject = nats.GetGame2AllPlayerSubject(p.gameCode)
	p.game2PlayerSubject = nats.GetGame2PlayerSubject(p.gameCode, p.seat)
}

// JoinGame subscribes to the game subjects and takes the seat.
func (p *Player) JoinGame() error {
	p.initialize()

	var e error
	p.game2AllPlayersSub, e = p.nc.Subscribe(p.game2AllPlayersSubject, p.game2Player)
	if e != nil {
		botPlayerLogger.Error().Msgf("Subscription to %s failed. Error: %v", p.game2AllPlayersSubject, e)
		return e
	}
	p.game2PlayerSub, e = p.nc.Subscribe(p.game2PlayerSubject, p.game2Player)
	if e != nil {
		p.game2AllPlayersSub.Unsubscribe()
		botPlayerLogger.Error().Msgf("Subscription to %s failed. Error: %v", p.game2PlayerSubject, e)
		return e
	}

	// send a message to the game that this player is joining the game
	e = p.send(game.Intent{Type: game.IntentJoin, Seat: p.seat, Nickname: p.nickname})
	if e != nil {
		p.game2AllPlayersSub.Unsubscribe()
		p.game2PlayerSub.Unsubscribe()
		return e
	}
	return nil
}

func (p *Player) send(in game.Intent) error {
	in.MessageID = uuid.New().String()
	data, err := nats.EncodeIntent(in)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.player2GameSubject, data); err != nil {
		botPlayerLogger.Error().Str(logging.GameCodeKey, p.gameCode).Msgf("Unable to publish %s: %v", in.Type, err)
		return err
	}
	return nil
}

func (p *Player) game2Player(msg *natsgo.Msg) {
	e, err := nats.DecodeEvent(msg.Data)
	if err != nil {
		botPlayerLogger.Warn().Str(logging.GameCodeKey, p.gameCode).Msgf("Ignoring message: %v", err)
		return
	}
	switch e.Type {
	case game.EventGameEnded:
		p.Stop()
		return
	case game.EventBusinessError:
		botPlayerLogger.Warn().Str(logging.GameCodeKey, p.gameCode).Int(logging.SeatNumKey, int(p.seat)).
			Msgf("Intent rejected: %s", e.BusinessErrorCode())
		if e.BusinessErrorCode() == game.CodeRateLimited {
			p.lock.Lock()
			p.hasActed = false
			p.lock.Unlock()
		} else {
			return
		}
	}
	p.act()
}

// act decides on the latest snapshot and sends the intent, once per action number.
func (p *Player) act() {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	state, err := p.view()
	if err != nil {
		botPlayerLogger.Error().Str(logging.GameCodeKey, p.gameCode).Msgf("Unable to read game: %v", err)
		return
	}

	p.lock.Lock()
	if p.stopped || (p.hasActed && p.actedAt == state.ActionNum) {
		p.lock.Unlock()
		return
	}
	in, ok := p.brain.Decide(state, p.seat)
	if ok {
		p.hasActed = true
		p.actedAt = state.ActionNum
	}
	p.lock.Unlock()
	if !ok {
		return
	}
	botPlayerLogger.Debug().Str(logging.GameCodeKey, p.gameCode).Int(logging.SeatNumKey, int(p.seat)).
		Str(logging.NicknameKey, p.nickname).Str(logging.IntentKey, string(in.Type)).Uint32(logging.ActionNumKey, state.ActionNum).Msg("Bot acting")
	p.send(in)
}

// Stop unsubscribes. The seat stays taken so the game is not forfeited.
func (p *Player) Stop() {
	p.lock.Lock()
	if p.stopped {
		p.lock.Unlock()
		return
	}
	p.stopped = true
	p.lock.Unlock()

	if p.game2AllPlayersSub != nil {
		p.game2AllPlayersSub.Unsubscribe()
	}
	if p.game2PlayerSub != nil {
		p.game2PlayerSub.Unsubscribe()
	}
	p.stoppedCh <- true
}

// Stopped is signalled once the bot leaves the game.
func (p *Player) Stopped() <-chan bool {
	return p.stoppedCh
}
