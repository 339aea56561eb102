package nats

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"tichu.com/server/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EventMessage is the envelope of every event published by a game.
type EventMessage struct {
	MessageID string `json:"messageId"`
	GameCode  string `json:"gameCode"`
	game.Event
}

// ReceivedEvent is an EventMessage as seen by a subscriber, with the payload
// left undecoded.
type ReceivedEvent struct {
	MessageID string              `json:"messageId"`
	GameCode  string              `json:"gameCode"`
	Type      game.EventType      `json:"eventType"`
	Seat      game.Seat           `json:"seat"`
	Data      jsoniter.RawMessage `json:"data"`
}

func DecodeEvent(data []byte) (ReceivedEvent, error) {
	var e ReceivedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ReceivedEvent{}, errors.Wrap(err, "Unable to decode event message")
	}
	return e, nil
}

// BusinessErrorCode extracts the rule code of a BUSINESS_ERROR event.
func (e ReceivedEvent) BusinessErrorCode() string {
	if e.Type != game.EventBusinessError || len(e.Data) == 0 {
		return ""
	}
	var data game.BusinessErrorData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return ""
	}
	return data.Code
}

func EncodeIntent(in game.Intent) ([]byte, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to encode intent")
	}
	return data, nil
}

func DecodeIntent(data []byte) (game.Intent, error) {
	var in game.Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return game.Intent{}, errors.Wrap(err, "Unable to decode intent")
	}
	return in, nil
}
