package bot

import (
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tichu.com/server/game"
	"tichu.com/server/nats"
)

type fakeConn struct {
	lock     sync.Mutex
	handlers map[string]natsgo.MsgHandler
	sent     []game.Intent
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	in, err := nats.DecodeIntent(data)
	if err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, in)
	return nil
}

func (f *fakeConn) Subscribe(subject string, cb natsgo.MsgHandler) (*natsgo.Subscription, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[string]natsgo.MsgHandler)
	}
	f.handlers[subject] = cb
	return nil, nil
}

func (f *fakeConn) deliver(t *testing.T, subject string, e game.Event) {
	data, err := jsoniter.Marshal(nats.EventMessage{MessageID: "m", GameCode: "BOT01", Event: e})
	require.NoError(t, err)
	f.lock.Lock()
	cb := f.handlers[subject]
	f.lock.Unlock()
	require.NotNil(t, cb, subject)
	cb(&natsgo.Msg{Subject: subject, Data: data})
}

func (f *fakeConn) intents() []game.Intent {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]game.Intent(nil), f.sent...)
}

func TestPlayer(t *testing.T) {
	state := joinedGame(t, 0)
	conn := &fakeConn{}
	view := func() (*game.GameState, error) { return state, nil }
	player := NewPlayer(conn, "BOT01", 0, NewBrain(3), view, 0)

	require.NoError(t, player.JoinGame())
	sent := conn.intents()
	require.Len(t, sent, 1)
	assert.Equal(t, game.IntentJoin, sent[0].Type)
	assert.Equal(t, "bot-1", sent[0].Nickname)
	assert.NotEmpty(t, sent[0].MessageID)

	conn.deliver(t, "game.BOT01.player", game.Event{Type: game.EventPlayerJoined, Seat: 3})
	sent = conn.intents()
	require.Len(t, sent, 2)
	assert.Equal(t, game.Seat(0), sent[1].Seat)

	// nothing changed, no second action
	conn.deliver(t, "game.BOT01.player", game.Event{Type: game.EventPlayerJoined, Seat: 3})
	assert.Len(t, conn.intents(), 2)

	// a rejected intent other than rate limiting is not retried
	conn.deliver(t, "game.BOT01.player.0", game.Event{Type: game.EventBusinessError, Seat: 0,
		Data: game.BusinessErrorData{Code: game.CodeWrongPhase}})
	assert.Len(t, conn.intents(), 2)

	conn.deliver(t, "game.BOT01.player.0", game.Event{Type: game.EventBusinessError, Seat: 0,
		Data: game.BusinessErrorData{Code: game.CodeRateLimited}})
	assert.Len(t, conn.intents(), 3)

	conn.deliver(t, "game.BOT01.player", game.Event{Type: game.EventGameEnded})
	select {
	case <-player.Stopped():
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
	state.ActionNum++
	conn.deliver(t, "game.BOT01.player", game.Event{Type: game.EventTurnPassed})
	assert.Len(t, conn.intents(), 3)
}
