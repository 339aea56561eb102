package nats

import (
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"tichu.com/server/game"
	"tichu.com/server/logging"
)

var natsLogger = log.With().Str("logger_name", "nats::game").Logger()

/**
For each game, the server listens on one subject for incoming intents:
player.<code>.game

Events go out on
game.<code>.player           : broadcast to the whole table
game.<code>.player.<seat>    : private to a seat (cards, trades, faults)
**/

type publisher interface {
	Publish(subject string, data []byte) error
}

// NatsGame is an adapter between the NATS server and a game actor.
type NatsGame struct {
	gameID   string
	gameCode string

	game2AllPlayersSubject string

	player2GameSubscription *natsgo.Subscription
	natsConn                publisher

	serverGame *game.Game
}

func newNatsGame(nc *natsgo.Conn, manager *game.Manager, gameID string, gameCode string, winningScore int) (*NatsGame, error) {
	natsGame := &NatsGame{
		gameID:                 gameID,
		gameCode:               gameCode,
		game2AllPlayersSubject: GetGame2AllPlayerSubject(gameCode),
		natsConn:               nc,
	}

	serverGame, err := manager.InitializeGame(natsGame, gameCode, winningScore)
	if err != nil {
		return nil, err
	}
	natsGame.serverGame = serverGame
	serverGame.Start()

	player2GameSubject := GetPlayer2GameSubject(gameCode)
	natsGame.player2GameSubscription, err = nc.Subscribe(player2GameSubject, natsGame.player2Game)
	if err != nil {
		natsLogger.Error().Str(logging.GameCodeKey, gameCode).Msgf("Failed to subscribe to %s", player2GameSubject)
		manager.EndGame(gameCode)
		return nil, err
	}
	return natsGame, nil
}

func (n *NatsGame) GameID() string {
	return n.gameID
}

func (n *NatsGame) GameCode() string {
	return n.gameCode
}

func (n *NatsGame) ServerGame() *game.Game {
	return n.serverGame
}

func (n *NatsGame) cleanup() {
	if n.player2GameSubscription != nil {
		n.player2GameSubscription.Unsubscribe()
	}
}

// messages sent from player to game
func (n *NatsGame) player2Game(msg *natsgo.Msg) {
	natsLogger.Debug().Str(logging.GameCodeKey, n.gameCode).Msgf("Player->Game: %s", string(msg.Data))
	in, err := DecodeIntent(msg.Data)
	if err != nil {
		natsLogger.Warn().Str(logging.GameCodeKey, n.gameCode).Msgf("Dropping message: %v", err)
		return
	}
	n.serverGame.QueueIntent(in)
}

func (n *NatsGame) publish(subject string, event *game.Event) {
	message := EventMessage{
		MessageID: uuid.New().String(),
		GameCode:  n.gameCode,
		Event:     *event,
	}
	data, err := json.Marshal(message)
	if err != nil {
		natsLogger.Error().Str(logging.GameCodeKey, n.gameCode).Msgf("Unable to encode %s: %v", event.Type, err)
		return
	}
	if err := n.natsConn.Publish(subject, data); err != nil {
		natsLogger.Error().Str(logging.GameCodeKey, n.gameCode).Msgf("Unable to publish %s to %s: %v", event.Type, subject, err)
	}
}

func (n *NatsGame) BroadcastEvent(event *game.Event) {
	natsLogger.Info().Str(logging.GameCodeKey, n.gameCode).Str(logging.EventKey, string(event.Type)).
		Msg("Game->AllPlayers")
	n.publish(n.game2AllPlayersSubject, event)
}

func (n *NatsGame) SendEventToPlayer(event *game.Event, seat game.Seat) {
	natsLogger.Info().Str(logging.GameCodeKey, n.gameCode).Str(logging.EventKey, string(event.Type)).
		Int(logging.SeatNumKey, int(seat)).Msg("Game->Player")
	n.publish(GetGame2PlayerSubject(n.gameCode, seat), event)
}

func (n *NatsGame) gameEnded() {
	n.serverGame.GameEnded()
}
