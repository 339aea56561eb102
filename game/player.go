package game

import (
	"fmt"

	"tichu.com/server/card"
)

// PreviewSize is the number of cards visible before a player reveals the full hand.
const PreviewSize = 8

type Phase uint8

const (
	PhaseDealt Phase = iota
	PhaseRevealed
	PhaseBetPlaced
	PhaseTradesSent
	PhaseTradesReceived
)

var phaseNames = map[Phase]string{
	PhaseDealt:          "DEALT",
	PhaseRevealed:       "REVEALED",
	PhaseBetPlaced:      "BET_PLACED",
	PhaseTradesSent:     "TRADES_SENT",
	PhaseTradesReceived: "TRADES_RECEIVED",
}

func (p Phase) String() string {
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for phase, name := range phaseNames {
		if name == string(b) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown player phase: %s", string(b))
}

type phaseEvent uint8

const (
	eventReveal phaseEvent = iota
	eventBet
	eventSendTrades
	eventReceiveTrades
)

// nextPhase is the single source of truth for player phase transitions.
// A bet placed before revealing reveals the hand implicitly.
func nextPhase(current Phase, ev phaseEvent, bet Bet) (Phase, error) {
	switch ev {
	case eventReveal:
		if current != PhaseDealt {
			return current, ruleViolation(CodeAlreadyRevealed, "Cards have already been revealed.")
		}
		return PhaseRevealed, nil
	case eventBet:
		switch current {
		case PhaseDealt:
			return PhaseBetPlaced, nil
		case PhaseRevealed:
			if bet == BetHigh {
				return current, ruleViolation(CodeHighBetAfterReveal, "A grand bet is only allowed before revealing the cards.")
			}
			return PhaseBetPlaced, nil
		case PhaseBetPlaced:
			return current, ruleViolation(CodeAlreadyBet, "A bet has already been placed.")
		}
		return current, ruleViolation(CodeCardsLeftHand, "Bets are not allowed once cards have left the hand.")
	case eventSendTrades:
		switch current {
		case PhaseDealt:
			return current, ruleViolation(CodeNotRevealed, "Cannot trade cards before revealing them.")
		case PhaseRevealed, PhaseBetPlaced:
			return PhaseTradesSent, nil
		}
		return current, ruleViolation(CodeAlreadyTraded, "Trades have already been sent.")
	case eventReceiveTrades:
		switch current {
		case PhaseTradesSent:
			return PhaseTradesReceived, nil
		case PhaseTradesReceived:
			return current, ruleViolation(CodeAlreadyReceived, "Trades have already been received.")
		}
		return current, ruleViolation(CodeTradesNotSent, "Trades must be sent before they are received.")
	}
	return current, InvariantError{Msg: fmt.Sprintf("unknown phase event %d", ev)}
}

// TradeDecision holds the three cards a player hands out.
type TradeDecision struct {
	Teammate card.Card `json:"teammate"`
	Left     card.Card `json:"left"`
	Right    card.Card `json:"right"`
}

func (d TradeDecision) Cards() []card.Card {
	return []card.Card{d.Teammate, d.Left, d.Right}
}

// IncomingTrade holds the three cards a player receives.
type IncomingTrade struct {
	FromTeammate card.Card `json:"fromTeammate"`
	FromLeft     card.Card `json:"fromLeft"`
	FromRight    card.Card `json:"fromRight"`
}

func (t IncomingTrade) Cards() []card.Card {
	return []card.Card{t.FromTeammate, t.FromLeft, t.FromRight}
}

type PlayerState struct {
	Seat     Seat                 `json:"seat"`
	Handed   bool                 `json:"handed"`
	Hand     map[string]card.Card `json:"hand"`
	Preview  []card.Card          `json:"preview"`
	Heap     []card.Card          `json:"heap"`
	Bet      Bet                  `json:"bet"`
	Phase    Phase                `json:"phase"`
	Trade    *TradeDecision       `json:"trade,omitempty"`
	Incoming *IncomingTrade       `json:"incoming,omitempty"`
}

func NewPlayerState(seat Seat) *PlayerState {
	return &PlayerState{
		Seat: seat,
		Hand: make(map[string]card.Card),
	}
}

// HandCards populates the hand. It may only happen once.
func (p *PlayerState) HandCards(cards []card.Card) error {
	if p.Handed {
		return ruleViolation(CodeAlreadyHanded, "Cards have already been handed to %s.", p.Seat)
	}
	for _, c := range cards {
		p.Hand[c.Key()] = c
	}
	n := PreviewSize
	if n > len(cards) {
		n = len(cards)
	}
	p.Preview = append([]card.Card(nil), cards[:n]...)
	p.Handed = true
	return nil
}

func (p *PlayerState) IsRevealed() bool {
	return p.Phase != PhaseDealt
}

func (p *PlayerState) Reveal() error {
	next, err := nextPhase(p.Phase, eventReveal, BetNone)
	if err != nil {
		return err
	}
	p.Phase = next
	return nil
}

func (p *PlayerState) PlaceBet(bet Bet) error {
	if !bet.Valid() {
		return MalformedInputError{Msg: fmt.Sprintf("Invalid bet: %d", bet)}
	}
	next, err := nextPhase(p.Phase, eventBet, bet)
	if err != nil {
		return err
	}
	p.Bet = bet
	p.Phase = next
	return nil
}

// FinalizeTrades removes the three traded cards from the hand.
func (p *PlayerState) FinalizeTrades(d TradeDecision) error {
	next, err := nextPhase(p.Phase, eventSendTrades, BetNone)
	if err != nil {
		return err
	}
	if err := p.checkHolds(d.Cards()); err != nil {
		return err
	}
	p.removeCards(d.Cards())
	p.Trade = &d
	p.Phase = next
	return nil
}

// ReceiveTrades moves the incoming cards into the hand.
func (p *PlayerState) ReceiveTrades() error {
	next, err := nextPhase(p.Phase, eventReceiveTrades, BetNone)
	if err != nil {
		return err
	}
	if p.Incoming == nil {
		return ruleViolation(CodeWrongPhase, "Trades have not been exchanged yet.")
	}
	for _, c := range p.Incoming.Cards() {
		p.Hand[c.Key()] = c
	}
	p.Phase = next
	return nil
}

// checkHolds verifies that the cards are distinct and all in hand.
func (p *PlayerState) checkHolds(cards []card.Card) error {
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		key := c.Key()
		if seen[key] {
			return ruleViolation(CodeCardNotHeld, "Card %s selected more than once.", key)
		}
		seen[key] = true
		if _, ok := p.Hand[key]; !ok {
			return ruleViolation(CodeCardNotHeld, "%s does not hold %s.", p.Seat, key)
		}
	}
	return nil
}

// RemoveCards takes the cards out of the hand. Nothing is removed unless all are held.
func (p *PlayerState) RemoveCards(cards []card.Card) error {
	if err := p.checkHolds(cards); err != nil {
		return err
	}
	p.removeCards(cards)
	return nil
}

func (p *PlayerState) removeCards(cards []card.Card) {
	for _, c := range cards {
		delete(p.Hand, c.Key())
	}
}

func (p *PlayerState) Holds(c card.Card) bool {
	_, ok := p.Hand[c.Key()]
	return ok
}

func (p *PlayerState) HasRequestCard() bool {
	return p.Holds(card.MahjongCard)
}

func (p *PlayerState) HasCards() bool {
	return len(p.Hand) > 0
}

func (p *PlayerState) CardCount() int {
	return len(p.Hand)
}

// Cards returns the hand sorted.
func (p *PlayerState) Cards() []card.Card {
	cards := make([]card.Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		cards = append(cards, c)
	}
	card.Sort(cards)
	return cards
}

// VisibleCards is what the player may see: the preview until revealed.
func (p *PlayerState) VisibleCards() []card.Card {
	if !p.IsRevealed() {
		return p.Preview
	}
	return p.Cards()
}

func (p *PlayerState) HasRank(rank int) bool {
	for _, c := range p.Hand {
		if !c.IsSpecial() && c.Rank == rank {
			return true
		}
	}
	return false
}

func (p *PlayerState) AddToHeap(cards ...card.Card) {
	p.Heap = append(p.Heap, cards...)
}
