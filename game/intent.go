package game

import (
	"fmt"

	"tichu.com/server/card"
)

type IntentType string

const (
	IntentJoin         IntentType = "JOIN"
	IntentLeave        IntentType = "LEAVE"
	IntentPlaceBet     IntentType = "PLACE_BET"
	IntentRevealCards  IntentType = "REVEAL_CARDS"
	IntentTradeCards   IntentType = "TRADE_CARDS"
	IntentReceiveTrade IntentType = "RECEIVE_TRADE"
	IntentPlayCards    IntentType = "PLAY_CARDS"
	IntentPassTurn     IntentType = "PASS_TURN"
	IntentDropBomb     IntentType = "DROP_BOMB"
	IntentRequestCard  IntentType = "REQUEST_CARD"
	IntentGiveDragon   IntentType = "GIVE_DRAGON"
)

var knownIntents = map[IntentType]bool{
	IntentJoin:         true,
	IntentLeave:        true,
	IntentPlaceBet:     true,
	IntentRevealCards:  true,
	IntentTradeCards:   true,
	IntentReceiveTrade: true,
	IntentPlayCards:    true,
	IntentPassTurn:     true,
	IntentDropBomb:     true,
	IntentRequestCard:  true,
	IntentGiveDragon:   true,
}

// TradeKeys names the card sent to each neighbour.
type TradeKeys struct {
	Teammate string `json:"teammate"`
	Left     string `json:"left"`
	Right    string `json:"right"`
}

// Intent is a player action tagged with the acting seat.
type Intent struct {
	Type        IntentType `json:"type"`
	Seat        Seat       `json:"seat"`
	MessageID   string     `json:"messageId,omitempty"`
	Nickname    string     `json:"nickname,omitempty"`
	Bet         Bet        `json:"bet,omitempty"`
	Trade       *TradeKeys `json:"trade,omitempty"`
	CardKeys    []string   `json:"cardKeys,omitempty"`
	PhoenixRank string     `json:"phoenixRank,omitempty"`
	Rank        string     `json:"rank,omitempty"`
	Target      *Seat      `json:"target,omitempty"`
}

func (in Intent) String() string {
	return fmt.Sprintf("%s(%s)", in.Type, in.Seat)
}

func parseCards(keys []string) ([]card.Card, error) {
	cards := make([]card.Card, 0, len(keys))
	for _, key := range keys {
		c, err := card.ParseKey(key)
		if err != nil {
			return nil, MalformedInputError{Msg: err.Error()}
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func parseRank(name string) (int, error) {
	rank, err := card.ValueOf(name)
	if err != nil {
		return 0, MalformedInputError{Msg: err.Error()}
	}
	return rank, nil
}

// parsePhoenixRank accepts an empty name as "let the engine decide".
func parsePhoenixRank(name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	return parseRank(name)
}

func (t *TradeKeys) decision() (TradeDecision, error) {
	if t == nil {
		return TradeDecision{}, MalformedInputError{Msg: "Missing trade cards."}
	}
	cards, err := parseCards([]string{t.Teammate, t.Left, t.Right})
	if err != nil {
		return TradeDecision{}, err
	}
	return TradeDecision{Teammate: cards[0], Left: cards[1], Right: cards[2]}, nil
}
