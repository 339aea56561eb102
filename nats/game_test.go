package nats

import (
	"sync"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tichu.com/server/game"
)

type published struct {
	subject string
	event   ReceivedEvent
}

type fakeConn struct {
	lock     sync.Mutex
	messages []published
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	e, err := DecodeEvent(data)
	if err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.messages = append(f.messages, published{subject: subject, event: e})
	return nil
}

func (f *fakeConn) find(subject string, t game.EventType) (ReceivedEvent, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, m := range f.messages {
		if m.subject == subject && m.event.Type == t {
			return m.event, true
		}
	}
	return ReceivedEvent{}, false
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "player.ABC.game", GetPlayer2GameSubject("ABC"))
	assert.Equal(t, "game.ABC.player", GetGame2AllPlayerSubject("ABC"))
	assert.Equal(t, "game.ABC.player.3", GetGame2PlayerSubject("ABC", 3))
}

func TestIntentCodec(t *testing.T) {
	target := game.Seat(1)
	in := game.Intent{Type: game.IntentGiveDragon, Seat: 2, Target: &target}
	data, err := EncodeIntent(in)
	require.NoError(t, err)
	decoded, err := DecodeIntent(data)
	require.NoError(t, err)
	assert.Equal(t, in, decoded)

	_, err = DecodeIntent([]byte("{not json"))
	assert.Error(t, err)
}

func TestNatsGame(t *testing.T) {
	manager := game.NewGameManager(game.GameConfig{WinningScore: 0, IntentRate: 100, IntentBurst: 100},
		game.NewMemoryGameStateTracker(), nil, nil)
	conn := &fakeConn{}
	natsGame := &NatsGame{
		gameID:                 "id-1",
		gameCode:               "NATS01",
		game2AllPlayersSubject: GetGame2AllPlayerSubject("NATS01"),
		natsConn:               conn,
	}
	serverGame, err := manager.InitializeGame(natsGame, "NATS01", 0)
	require.NoError(t, err)
	natsGame.serverGame = serverGame
	serverGame.Start()
	defer manager.EndGame("NATS01")

	_, ok := conn.find("game.NATS01.player", game.EventWaitingForJoin)
	assert.True(t, ok)

	join, err := EncodeIntent(game.Intent{Type: game.IntentJoin, Seat: 1, Nickname: "bob"})
	require.NoError(t, err)
	natsGame.player2Game(&natsgo.Msg{Data: []byte("garbage")})
	natsGame.player2Game(&natsgo.Msg{Data: join})
	require.Eventually(t, func() bool {
		_, ok := conn.find("game.NATS01.player", game.EventPlayerJoined)
		return ok
	}, 3*time.Second, 20*time.Millisecond)
	joined, _ := conn.find("game.NATS01.player", game.EventPlayerJoined)
	assert.Equal(t, game.Seat(1), joined.Seat)
	assert.Equal(t, "NATS01", joined.GameCode)
	assert.NotEmpty(t, joined.MessageID)

	pass, err := EncodeIntent(game.Intent{Type: game.IntentPassTurn, Seat: 2})
	require.NoError(t, err)
	natsGame.player2Game(&natsgo.Msg{Data: pass})
	require.Eventually(t, func() bool {
		_, ok := conn.find("game.NATS01.player.2", game.EventBusinessError)
		return ok
	}, 3*time.Second, 20*time.Millisecond)
	fault, _ := conn.find("game.NATS01.player.2", game.EventBusinessError)
	assert.Equal(t, game.CodeGameNotInProgress, fault.BusinessErrorCode())
}
