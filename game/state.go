package game

import (
	"fmt"

	"tichu.com/server/card"
)

// DefaultWinningScore ends the game once a team reaches it.
const DefaultWinningScore = 1000

// DeckSource supplies a shuffled deck for every new round.
type DeckSource func() *card.Deck

func shuffledDeck() *card.Deck {
	return card.NewDeck(nil)
}

// GameState is the whole game: roster, cumulative scores and the active round.
// All fields are exported so a snapshot can be persisted and compared.
type GameState struct {
	Status       Status           `json:"status"`
	WinningScore int              `json:"winningScore"`
	Players      [NumSeats]string `json:"players"`
	Team02Total  int              `json:"team02Total"`
	Team13Total  int              `json:"team13Total"`
	ScoreHistory []RoundScore     `json:"scoreHistory"`
	Result       Result           `json:"result"`
	RoundNum     int              `json:"roundNum"`
	ActionNum    uint32           `json:"actionNum"`
	Round        *RoundState      `json:"round"`

	deckSource DeckSource
}

// NewGameState creates a game waiting for four players. A winning score of 0
// plays a single round.
func NewGameState(winningScore int) *GameState {
	return &GameState{
		Status:       StatusInit,
		WinningScore: winningScore,
		deckSource:   shuffledDeck,
	}
}

// SetDeckSource replaces the shuffler, used by tests and replays.
func (g *GameState) SetDeckSource(src DeckSource) {
	if src == nil {
		src = shuffledDeck
	}
	g.deckSource = src
}

func (g *GameState) IsOccupied(seat Seat) bool {
	return g.Players[seat] != ""
}

func (g *GameState) occupiedSeats() int {
	n := 0
	for _, seat := range AllSeats {
		if g.IsOccupied(seat) {
			n++
		}
	}
	return n
}

// ActingSeat is the seat whose move the game is waiting for during play.
func (g *GameState) ActingSeat() Seat {
	if g.Status != StatusInProgress || g.Round == nil || g.Round.Phase != RoundPlaying {
		return NoSeat
	}
	return g.Round.ActingSeat()
}

// Apply is the single entry point for intents. On error the state is unchanged.
func (g *GameState) Apply(in Intent) ([]Event, error) {
	if !knownIntents[in.Type] {
		return nil, MalformedInputError{Msg: fmt.Sprintf("Unknown intent: %s", in.Type)}
	}
	if !in.Seat.Valid() {
		return nil, MalformedInputError{Msg: fmt.Sprintf("Invalid seat: %d", in.Seat)}
	}
	if in.Type == IntentLeave && g.Status == StatusOver {
		return nil, nil
	}
	events, err := g.dispatch(in)
	if err != nil {
		return nil, err
	}
	g.ActionNum++
	return events, nil
}

func (g *GameState) dispatch(in Intent) ([]Event, error) {
	switch in.Type {
	case IntentJoin:
		return g.Join(in.Seat, in.Nickname)
	case IntentLeave:
		return g.PlayerLeft(in.Seat)
	}
	if g.Status != StatusInProgress || g.Round == nil {
		return nil, ruleViolation(CodeGameNotInProgress, "The game is not in progress.")
	}
	switch in.Type {
	case IntentPlaceBet:
		return g.placeBet(in.Seat, in.Bet)
	case IntentRevealCards:
		return g.revealCards(in.Seat)
	case IntentTradeCards:
		return g.tradeCards(in.Seat, in.Trade)
	case IntentReceiveTrade:
		return g.receiveTrade(in.Seat)
	case IntentPlayCards:
		return g.playCards(in.Seat, in.CardKeys, in.PhoenixRank)
	case IntentPassTurn:
		return g.passTurn(in.Seat)
	case IntentDropBomb:
		return g.dropBomb(in.Seat)
	case IntentRequestCard:
		return g.requestCard(in.Seat, in.Rank)
	case IntentGiveDragon:
		if in.Target == nil {
			return nil, MalformedInputError{Msg: "Missing dragon target."}
		}
		return g.giveDragon(in.Seat, *in.Target)
	}
	return nil, MalformedInputError{Msg: fmt.Sprintf("Unknown intent: %s", in.Type)}
}

func (g *GameState) waitingForJoin() Event {
	return broadcast(EventWaitingForJoin, NoSeat, WaitingForJoinData{Players: g.Players, WinningScore: g.WinningScore})
}

// Join seats a player. The first round is dealt once all seats are taken.
func (g *GameState) Join(seat Seat, nickname string) ([]Event, error) {
	if nickname == "" {
		return nil, MalformedInputError{Msg: "Missing nickname."}
	}
	if g.Status != StatusInit {
		return nil, ruleViolation(CodeWrongPhase, "The game has already started.")
	}
	if g.IsOccupied(seat) {
		return nil, ruleViolation(CodeSeatTaken, "Seat %s is already taken.", seat)
	}
	g.Players[seat] = nickname
	events := []Event{
		broadcast(EventPlayerJoined, seat, PlayerJoinedData{Nickname: nickname}),
		g.waitingForJoin(),
	}
	if g.occupiedSeats() < NumSeats {
		return events, nil
	}
	g.Status = StatusInProgress
	started, err := g.startRound()
	if err != nil {
		return nil, err
	}
	return append(events, started...), nil
}

// PlayerLeft vacates a seat before the start and forfeits the game after it.
func (g *GameState) PlayerLeft(seat Seat) ([]Event, error) {
	switch g.Status {
	case StatusInit:
		g.Players[seat] = ""
		return []Event{broadcast(EventPlayerLeft, seat, nil), g.waitingForJoin()}, nil
	case StatusInProgress:
		g.Result = Result(seat.Team().Opponent())
		g.Status = StatusOver
		return []Event{broadcast(EventPlayerLeft, seat, nil), g.gameEnded()}, nil
	}
	return nil, nil
}

func (g *GameState) startRound() ([]Event, error) {
	round, err := NewRoundState(g.deckSource())
	if err != nil {
		return nil, err
	}
	g.Round = round
	g.RoundNum++
	events := make([]Event, 0, NumSeats)
	for _, seat := range AllSeats {
		data := GameRoundStartedData{PartialCards: card.Keys(round.Players[seat].Preview)}
		events = append(events, private(EventGameRoundStarted, seat, data))
	}
	return events, nil
}

func (g *GameState) placeBet(seat Seat, bet Bet) ([]Event, error) {
	player := g.Round.Players[seat]
	wasRevealed := player.IsRevealed()
	if err := g.Round.PlaceBet(seat, bet); err != nil {
		return nil, err
	}
	events := []Event{broadcast(EventBetPlaced, seat, BetPlacedData{Bet: bet})}
	if !wasRevealed {
		events = append(events, g.allCardsRevealed(seat))
	}
	return events, nil
}

func (g *GameState) revealCards(seat Seat) ([]Event, error) {
	if err := g.Round.Reveal(seat); err != nil {
		return nil, err
	}
	return []Event{g.allCardsRevealed(seat)}, nil
}

func (g *GameState) allCardsRevealed(seat Seat) Event {
	return private(EventAllCardsRevealed, seat, CardsRevealedData{Cards: card.Keys(g.Round.Players[seat].Cards())})
}

func (g *GameState) tradeCards(seat Seat, keys *TradeKeys) ([]Event, error) {
	decision, err := keys.decision()
	if err != nil {
		return nil, err
	}
	exchanged, err := g.Round.SendTrades(seat, decision)
	if err != nil {
		return nil, err
	}
	if !exchanged {
		return nil, nil
	}
	events := make([]Event, 0, NumSeats)
	for _, s := range AllSeats {
		incoming := g.Round.Players[s].Incoming
		events = append(events, private(EventCardsTraded, s, CardsTradedData{
			FromTeammate: incoming.FromTeammate.Key(),
			FromLeft:     incoming.FromLeft.Key(),
			FromRight:    incoming.FromRight.Key(),
		}))
	}
	return events, nil
}

func (g *GameState) receiveTrade(seat Seat) ([]Event, error) {
	started, err := g.Round.ReceiveTrades(seat)
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, nil
	}
	return []Event{g.tableRoundStarted()}, nil
}

func (g *GameState) tableRoundStarted() Event {
	return broadcast(EventTableRoundStarted, NoSeat, TableRoundStartedData{CurrentPlayer: g.Round.CurrentSeat})
}

func (g *GameState) playCards(seat Seat, keys []string, phoenixName string) ([]Event, error) {
	cards, err := parseCards(keys)
	if err != nil {
		return nil, err
	}
	phoenixRank, err := parsePhoenixRank(phoenixName)
	if err != nil {
		return nil, err
	}
	result, err := g.Round.PlayCards(seat, cards, phoenixRank)
	if err != nil {
		return nil, err
	}
	events := []Event{broadcast(EventCardsPlayed, seat, CardsPlayedData{
		CombinationType:         result.Combination.Kind.String(),
		NumCardsRemainingInHand: g.Round.Players[seat].CardCount(),
		TableCardKeys:           card.Keys(result.Cards),
		RequestedRank:           card.RankName(g.Round.Wish),
	})}
	if g.Round.MustEndGameRound() {
		ended, err := g.EndGameRound()
		if err != nil {
			return nil, err
		}
		return append(events, ended...), nil
	}
	if result.DogPlayed {
		events = append(events, g.tableRoundStarted())
	}
	return events, nil
}

func (g *GameState) passTurn(seat Seat) ([]Event, error) {
	result, err := g.Round.PassTurn(seat)
	if err != nil {
		return nil, err
	}
	events := []Event{broadcast(EventTurnPassed, seat, nil)}
	switch {
	case result.DragonPending:
		events = append(events, broadcast(EventPendingDragonDecision, result.Winner, nil))
	case result.TrickEnded:
		events = append(events,
			broadcast(EventTableRoundEnded, NoSeat, TableRoundEndedData{RoundWinner: result.Winner}),
			g.tableRoundStarted())
	}
	return events, nil
}

func (g *GameState) dropBomb(seat Seat) ([]Event, error) {
	if err := g.Round.EnablePendingBomb(seat); err != nil {
		return nil, err
	}
	return []Event{broadcast(EventBombDropped, seat, nil)}, nil
}

func (g *GameState) requestCard(seat Seat, rankName string) ([]Event, error) {
	rank, err := parseRank(rankName)
	if err != nil {
		return nil, err
	}
	if err := g.Round.SetRequestedCard(seat, rank); err != nil {
		return nil, err
	}
	return []Event{broadcast(EventCardRequested, seat, CardRequestedData{Rank: rankName})}, nil
}

func (g *GameState) giveDragon(seat Seat, target Seat) ([]Event, error) {
	if _, err := g.Round.GiveDragon(seat, target); err != nil {
		return nil, err
	}
	return []Event{
		broadcast(EventDragonGiven, seat, DragonGivenData{Target: target}),
		broadcast(EventTableRoundEnded, NoSeat, TableRoundEndedData{RoundWinner: seat}),
		g.tableRoundStarted(),
	}, nil
}

// EndGameRound scores the finished round and either ends the game or deals the next round.
func (g *GameState) EndGameRound() ([]Event, error) {
	if g.Status != StatusInProgress || g.Round == nil {
		return nil, ruleViolation(CodeGameNotInProgress, "The game is not in progress.")
	}
	score, err := g.Round.EndGameRound()
	if err != nil {
		return nil, err
	}
	g.Team02Total += score.Team02
	g.Team13Total += score.Team13
	g.ScoreHistory = append(g.ScoreHistory, score)
	events := []Event{broadcast(EventGameRoundEnded, NoSeat, GameRoundEndedData{RoundScore: score})}

	if g.MustEndGame() {
		g.Status = StatusOver
		g.Result = g.winner()
		return append(events, g.gameEnded()), nil
	}
	started, err := g.startRound()
	if err != nil {
		return nil, err
	}
	return append(events, started...), nil
}

// MustEndGame is true when a team reached the winning score, or after the
// first round when the winning score is 0.
func (g *GameState) MustEndGame() bool {
	if g.WinningScore == 0 {
		return len(g.ScoreHistory) > 0
	}
	return g.Team02Total >= g.WinningScore || g.Team13Total >= g.WinningScore
}

func (g *GameState) winner() Result {
	switch {
	case g.Team02Total > g.Team13Total:
		return ResultTeam02
	case g.Team13Total > g.Team02Total:
		return ResultTeam13
	}
	return ResultTie
}

func (g *GameState) gameEnded() Event {
	return broadcast(EventGameEnded, NoSeat, GameEndedData{
		Result:           g.Result,
		Team02TotalScore: g.Team02Total,
		Team13TotalScore: g.Team13Total,
		Scores:           g.ScoreHistory,
	})
}
