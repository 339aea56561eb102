package game

type EventType string

const (
	EventWaitingForJoin        EventType = "WAITING_FOR_JOIN"
	EventPlayerJoined          EventType = "PLAYER_JOINED"
	EventPlayerLeft            EventType = "PLAYER_LEFT"
	EventAllCardsRevealed      EventType = "ALL_CARDS_REVEALED"
	EventBetPlaced             EventType = "BET_PLACED"
	EventCardsTraded           EventType = "CARDS_TRADED"
	EventTableRoundStarted     EventType = "TABLE_ROUND_STARTED"
	EventCardsPlayed           EventType = "CARDS_PLAYED"
	EventTurnPassed            EventType = "TURN_PASSED"
	EventPendingDragonDecision EventType = "PENDING_DRAGON_DECISION"
	EventBombDropped           EventType = "BOMB_DROPPED"
	EventCardRequested         EventType = "CARD_REQUESTED"
	EventDragonGiven           EventType = "DRAGON_GIVEN"
	EventTableRoundEnded       EventType = "TABLE_ROUND_ENDED"
	EventGameRoundStarted      EventType = "GAME_ROUND_STARTED"
	EventGameRoundEnded        EventType = "GAME_ROUND_ENDED"
	EventGameEnded             EventType = "GAME_ENDED"
	EventBusinessError         EventType = "BUSINESS_ERROR"
)

// Everyone addresses an event to all seats.
const Everyone = Seat(-1)

// Event is a notification produced by the engine. Recipient is either a
// seat or Everyone and is consumed by the transport.
type Event struct {
	Type      EventType   `json:"eventType"`
	Seat      Seat        `json:"seat"`
	Recipient Seat        `json:"-"`
	Data      interface{} `json:"data,omitempty"`
}

func broadcast(t EventType, seat Seat, data interface{}) Event {
	return Event{Type: t, Seat: seat, Recipient: Everyone, Data: data}
}

func private(t EventType, recipient Seat, data interface{}) Event {
	return Event{Type: t, Seat: recipient, Recipient: recipient, Data: data}
}

type WaitingForJoinData struct {
	Players      [NumSeats]string `json:"players"`
	WinningScore int              `json:"winningScore"`
}

type PlayerJoinedData struct {
	Nickname string `json:"nickname"`
}

type CardsRevealedData struct {
	Cards []string `json:"cards"`
}

type BetPlacedData struct {
	Bet Bet `json:"bet"`
}

type CardsTradedData struct {
	FromTeammate string `json:"fromTeammate"`
	FromLeft     string `json:"fromLeft"`
	FromRight    string `json:"fromRight"`
}

type TableRoundStartedData struct {
	CurrentPlayer Seat `json:"currentPlayer"`
}

type CardsPlayedData struct {
	CombinationType         string   `json:"combinationType"`
	NumCardsRemainingInHand int      `json:"numCardsRemainingInHand"`
	TableCardKeys           []string `json:"tableCardKeys"`
	RequestedRank           string   `json:"requestedRank,omitempty"`
}

type CardRequestedData struct {
	Rank string `json:"rank"`
}

type DragonGivenData struct {
	Target Seat `json:"target"`
}

type TableRoundEndedData struct {
	RoundWinner Seat `json:"roundWinner"`
}

type GameRoundStartedData struct {
	PartialCards []string `json:"partialCards"`
}

type GameRoundEndedData struct {
	RoundScore RoundScore `json:"roundScore"`
}

type GameEndedData struct {
	Result           Result       `json:"result"`
	Team02TotalScore int          `json:"team02TotalScore"`
	Team13TotalScore int          `json:"team13TotalScore"`
	Scores           []RoundScore `json:"scores"`
}

type BusinessErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// BusinessError builds the fault notification for a rejected intent.
func BusinessError(seat Seat, err error) Event {
	return private(EventBusinessError, seat, BusinessErrorData{Message: err.Error(), Code: ErrorCode(err)})
}
