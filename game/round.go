package game

import (
	"fmt"

	"tichu.com/server/card"
)

type RoundPhase uint8

const (
	RoundDealt RoundPhase = iota
	RoundTrading
	RoundPlaying
	RoundOver
)

var roundPhaseNames = map[RoundPhase]string{
	RoundDealt:   "DEALT",
	RoundTrading: "TRADING",
	RoundPlaying: "PLAYING",
	RoundOver:    "OVER",
}

func (p RoundPhase) String() string {
	return roundPhaseNames[p]
}

func (p RoundPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *RoundPhase) UnmarshalText(b []byte) error {
	for phase, name := range roundPhaseNames {
		if name == string(b) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown round phase: %s", string(b))
}

// Mode decides who may act while the round is being played.
type Mode uint8

const (
	ModeNormal Mode = iota
	// ModeInterruptPending lets InterruptSeat play a bomb out of turn.
	ModeInterruptPending
	// ModeDragonPending waits for the trick owner to give the Dragon trick away.
	ModeDragonPending
)

var modeNames = map[Mode]string{
	ModeNormal:           "NORMAL",
	ModeInterruptPending: "INTERRUPT_PENDING",
	ModeDragonPending:    "DRAGON_PENDING",
}

func (m Mode) String() string {
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for mode, name := range modeNames {
		if name == string(b) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown mode: %s", string(b))
}

// RoundState is one deal: trading followed by tricks until a team is out.
type RoundState struct {
	Players       [NumSeats]*PlayerState `json:"players"`
	Table         *TableState            `json:"table"`
	Phase         RoundPhase             `json:"phase"`
	Mode          Mode                   `json:"mode"`
	CurrentSeat   Seat                   `json:"currentSeat"`
	InterruptSeat Seat                   `json:"interruptSeat"`
	PendingWish   int                    `json:"pendingWish"`
	Wish          int                    `json:"wish"`
	WishUsed      bool                   `json:"wishUsed"`
	FinishOrder   []Seat                 `json:"finishOrder"`
	ActionNum     uint32                 `json:"actionNum"`
}

// NewRoundState deals the deck to the four seats.
func NewRoundState(deck *card.Deck) (*RoundState, error) {
	dealt := deck.Deal(NumSeats)
	var hands [NumSeats][]card.Card
	copy(hands[:], dealt)
	return NewRoundFromHands(hands)
}

// NewRoundFromHands starts a round with predetermined hands.
func NewRoundFromHands(hands [NumSeats][]card.Card) (*RoundState, error) {
	r := &RoundState{
		Table:         NewTableState(),
		CurrentSeat:   NoSeat,
		InterruptSeat: NoSeat,
	}
	seen := make(map[string]Seat)
	for _, seat := range AllSeats {
		for _, c := range hands[seat] {
			if owner, ok := seen[c.Key()]; ok {
				return nil, InvariantError{Msg: fmt.Sprintf("card %s dealt to %s and %s", c.Key(), owner, seat)}
			}
			seen[c.Key()] = seat
		}
		r.Players[seat] = NewPlayerState(seat)
		if err := r.Players[seat].HandCards(hands[seat]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *RoundState) Player(seat Seat) *PlayerState {
	return r.Players[seat]
}

// ActingSeat is the seat the round is waiting for.
func (r *RoundState) ActingSeat() Seat {
	switch r.Mode {
	case ModeInterruptPending:
		return r.InterruptSeat
	case ModeDragonPending:
		return r.Table.Owner
	}
	return r.CurrentSeat
}

func (r *RoundState) requirePhase(phase RoundPhase) error {
	if r.Phase != phase {
		return ruleViolation(CodeWrongPhase, "Not allowed while the round is %s.", r.Phase)
	}
	return nil
}

func (r *RoundState) PlaceBet(seat Seat, bet Bet) error {
	if err := r.requirePhase(RoundDealt); err != nil {
		return err
	}
	if err := r.Players[seat].PlaceBet(bet); err != nil {
		return err
	}
	r.ActionNum++
	return nil
}

func (r *RoundState) Reveal(seat Seat) error {
	if err := r.requirePhase(RoundDealt); err != nil {
		return err
	}
	if err := r.Players[seat].Reveal(); err != nil {
		return err
	}
	r.ActionNum++
	return nil
}

// SendTrades records the decision of one seat. Returns true once all four
// decisions are in and the cards have been exchanged.
func (r *RoundState) SendTrades(seat Seat, d TradeDecision) (bool, error) {
	if err := r.requirePhase(RoundDealt); err != nil {
		return false, err
	}
	if err := r.Players[seat].FinalizeTrades(d); err != nil {
		return false, err
	}
	r.ActionNum++
	for _, p := range r.Players {
		if p.Trade == nil {
			return false, nil
		}
	}
	r.exchangeTrades()
	r.Phase = RoundTrading
	return true, nil
}

func (r *RoundState) exchangeTrades() {
	for _, seat := range AllSeats {
		r.Players[seat].Incoming = &IncomingTrade{
			FromTeammate: r.Players[seat.Partner()].Trade.Teammate,
			FromLeft:     r.Players[seat.Left()].Trade.Right,
			FromRight:    r.Players[seat.Right()].Trade.Left,
		}
	}
}

// ReceiveTrades acknowledges the incoming cards. Returns true once every seat
// has received and play begins with the Mahjong holder.
func (r *RoundState) ReceiveTrades(seat Seat) (bool, error) {
	if err := r.requirePhase(RoundTrading); err != nil {
		return false, err
	}
	if err := r.Players[seat].ReceiveTrades(); err != nil {
		return false, err
	}
	r.ActionNum++
	for _, p := range r.Players {
		if p.Phase != PhaseTradesReceived {
			return false, nil
		}
	}
	holder := r.mahjongHolder()
	if holder == NoSeat {
		return false, InvariantError{Msg: "nobody holds the Mahjong"}
	}
	r.Phase = RoundPlaying
	r.CurrentSeat = holder
	return true, nil
}

func (r *RoundState) mahjongHolder() Seat {
	for _, seat := range AllSeats {
		if r.Players[seat].Holds(card.MahjongCard) {
			return seat
		}
	}
	return NoSeat
}

// nextWithCards walks from seat (inclusive) to the first seat still holding cards.
func (r *RoundState) nextWithCards(seat Seat) Seat {
	for i := 0; i < NumSeats; i++ {
		if r.Players[seat].HasCards() {
			return seat
		}
		seat = seat.Next()
	}
	return NoSeat
}

func (r *RoundState) ActivePlayers() []Seat {
	active := make([]Seat, 0, NumSeats)
	for _, seat := range AllSeats {
		if r.Players[seat].HasCards() {
			active = append(active, seat)
		}
	}
	return active
}

// PlayResult describes what a successful play did to the round.
type PlayResult struct {
	Combination Combination
	Cards       []card.Card
	Finished    bool
	DogPlayed   bool
	WishArmed   int
	NextSeat    Seat
}

// PlayCards validates and applies a play. The round is unchanged on error.
func (r *RoundState) PlayCards(seat Seat, cards []card.Card, phoenixRank int) (PlayResult, error) {
	comb, err := r.validatePlay(seat, cards, phoenixRank)
	if err != nil {
		return PlayResult{}, err
	}
	player := r.Players[seat]
	if err := player.RemoveCards(cards); err != nil {
		return PlayResult{}, err
	}
	r.Table.Place(seat, cards, comb)
	r.Mode = ModeNormal
	r.InterruptSeat = NoSeat

	result := PlayResult{Combination: comb, Cards: cards}
	switch {
	case r.PendingWish != 0 && containsSpecial(cards, card.Mahjong):
		r.Wish = r.PendingWish
		r.PendingWish = 0
		result.WishArmed = r.Wish
		if containsRank(cards, r.Wish) {
			r.Wish = 0
		}
	case r.PendingWish != 0:
		// an interrupting bomb took the lead before the Mahjong was played
		r.PendingWish = 0
		r.WishUsed = false
	case r.Wish != 0 && containsRank(cards, r.Wish):
		r.Wish = 0
	}
	if !player.HasCards() {
		r.FinishOrder = append(r.FinishOrder, seat)
		result.Finished = true
	}
	r.ActionNum++

	if len(cards) == 1 && cards[0].Is(card.Dog) {
		// the Dog is worth nothing, it stays with the seat that led it
		player.AddToHeap(r.Table.Pile()...)
		r.Table.Reset()
		result.DogPlayed = true
		r.CurrentSeat = r.nextWithCards(seat.Partner())
	} else {
		r.CurrentSeat = r.nextWithCards(seat.Next())
	}
	result.NextSeat = r.CurrentSeat
	return result, nil
}

func (r *RoundState) validatePlay(seat Seat, cards []card.Card, phoenixRank int) (Combination, error) {
	if err := r.requirePhase(RoundPlaying); err != nil {
		return Combination{}, err
	}
	if r.Mode == ModeDragonPending {
		return Combination{}, ruleViolation(CodeDragonPending, "The Dragon trick must be given away first.")
	}
	if seat != r.ActingSeat() {
		return Combination{}, ruleViolation(CodeNotYourTurn, "It is not the turn of %s.", seat)
	}
	if len(cards) == 0 {
		return Combination{}, ruleViolation(CodeInvalidCombination, "No cards selected.")
	}
	player := r.Players[seat]
	if err := player.checkHolds(cards); err != nil {
		return Combination{}, err
	}
	comb, ok := CreateCombination(cards, r.Table.Cards, phoenixRank)
	if !ok {
		return Combination{}, ruleViolation(CodeInvalidCombination, "%s is not a valid combination.", card.CardsToString(cards))
	}
	if len(cards) == 1 && cards[0].Is(card.Dog) && !r.Table.IsEmpty() {
		return Combination{}, ruleViolation(CodeCannotBeat, "The Dog can only be led.")
	}

	switch {
	case r.Mode == ModeInterruptPending:
		if comb.Kind != Bomb {
			return Combination{}, ruleViolation(CodeBombRequired, "Only a bomb may be played out of turn.")
		}
	case r.PendingWish != 0:
		if !containsSpecial(cards, card.Mahjong) {
			return Combination{}, ruleViolation(CodeMahjongRequired, "A wish was made, the Mahjong must be played.")
		}
	case r.Wish != 0:
		if !r.wishCompliant(player, comb, cards) {
			return Combination{}, ruleViolation(CodeWishNotSatisfied, "The requested rank %s must be played.", card.RankName(r.Wish))
		}
	}
	if !r.Table.IsEmpty() && !Beats(comb, *r.Table.Combination) {
		return Combination{}, ruleViolation(CodeCannotBeat, "%s does not beat %s.", comb, *r.Table.Combination)
	}
	return comb, nil
}

// CanPlay validates a play for seat without changing the round.
func (r *RoundState) CanPlay(seat Seat, cards []card.Card, phoenixRank int) (Combination, error) {
	return r.validatePlay(seat, cards, phoenixRank)
}

// CanPass reports whether PassTurn would accept a pass from seat.
func (r *RoundState) CanPass(seat Seat) bool {
	return r.Phase == RoundPlaying && r.Mode == ModeNormal && seat == r.CurrentSeat &&
		!r.Table.IsEmpty() && !r.CanSatisfyWish(seat)
}

// wishCompliant decides whether a play honors the active wish.
func (r *RoundState) wishCompliant(player *PlayerState, comb Combination, cards []card.Card) bool {
	if comb.Kind == Bomb || containsRank(cards, r.Wish) {
		return true
	}
	if r.Table.IsEmpty() {
		return !player.HasRank(r.Wish)
	}
	top := *r.Table.Combination
	best, ok := StrongestContaining(player.Cards(), top.Kind, r.Wish, top.Length)
	return !ok || !Beats(best, top)
}

// CanSatisfyWish reports whether the seat could legally play the wished rank now.
func (r *RoundState) CanSatisfyWish(seat Seat) bool {
	if r.Wish == 0 {
		return false
	}
	hand := r.Players[seat].Cards()
	if r.Table.IsEmpty() {
		return r.Players[seat].HasRank(r.Wish)
	}
	top := *r.Table.Combination
	if best, ok := StrongestContaining(hand, top.Kind, r.Wish, top.Length); ok && Beats(best, top) {
		return true
	}
	if bomb, ok := StrongestContaining(hand, Bomb, r.Wish, 0); ok && Beats(bomb, top) {
		return true
	}
	return false
}

// PassResult describes what a pass did to the round.
type PassResult struct {
	TrickEnded    bool
	DragonPending bool
	Winner        Seat
	NextSeat      Seat
}

func (r *RoundState) PassTurn(seat Seat) (PassResult, error) {
	if err := r.requirePhase(RoundPlaying); err != nil {
		return PassResult{}, err
	}
	switch r.Mode {
	case ModeInterruptPending:
		return PassResult{}, ruleViolation(CodeBombPending, "A bomb is pending.")
	case ModeDragonPending:
		return PassResult{}, ruleViolation(CodeDragonPending, "The Dragon trick must be given away first.")
	}
	if seat != r.CurrentSeat {
		return PassResult{}, ruleViolation(CodeNotYourTurn, "It is not the turn of %s.", seat)
	}
	if r.Table.IsEmpty() {
		return PassResult{}, ruleViolation(CodeCannotPass, "The opening player cannot pass.")
	}
	if r.CanSatisfyWish(seat) {
		return PassResult{}, ruleViolation(CodeCannotPass, "The requested rank %s can be played.", card.RankName(r.Wish))
	}

	r.ActionNum++
	if r.PendingWish != 0 {
		// the wish lapses with the Mahjong still in hand
		r.PendingWish = 0
		r.WishUsed = false
	}
	owner := r.Table.Owner
	next := seat.Next()
	for i := 0; i < NumSeats; i++ {
		if next == owner {
			break
		}
		if r.Players[next].HasCards() {
			r.CurrentSeat = next
			return PassResult{Winner: NoSeat, NextSeat: next}, nil
		}
		next = next.Next()
	}

	if r.Table.TopIsDragon() {
		r.Mode = ModeDragonPending
		r.CurrentSeat = owner
		return PassResult{DragonPending: true, Winner: owner, NextSeat: owner}, nil
	}
	r.Players[owner].AddToHeap(r.Table.Pile()...)
	r.Table.Reset()
	r.CurrentSeat = r.nextWithCards(owner)
	return PassResult{TrickEnded: true, Winner: owner, NextSeat: r.CurrentSeat}, nil
}

// EnablePendingBomb lets a seat interrupt the normal order to play a bomb.
func (r *RoundState) EnablePendingBomb(seat Seat) error {
	if err := r.requirePhase(RoundPlaying); err != nil {
		return err
	}
	switch r.Mode {
	case ModeInterruptPending:
		return ruleViolation(CodeBombPending, "A bomb is already pending.")
	case ModeDragonPending:
		return ruleViolation(CodeDragonPending, "The Dragon trick must be given away first.")
	}
	bomb, ok := StrongestBomb(r.Players[seat].Cards())
	if !ok {
		return ruleViolation(CodeNoBomb, "%s holds no bomb.", seat)
	}
	if !r.Table.IsEmpty() && r.Table.Combination.Kind == Bomb && !Beats(bomb, *r.Table.Combination) {
		return ruleViolation(CodeNoBomb, "%s holds no bomb stronger than the table.", seat)
	}
	r.Mode = ModeInterruptPending
	r.InterruptSeat = seat
	r.ActionNum++
	return nil
}

// SetRequestedCard arms the Mahjong wish for the next play of the seat.
func (r *RoundState) SetRequestedCard(seat Seat, rank int) error {
	if err := r.requirePhase(RoundPlaying); err != nil {
		return err
	}
	if r.Mode != ModeNormal {
		return ruleViolation(CodeWrongPhase, "Cannot make a wish now.")
	}
	if seat != r.CurrentSeat {
		return ruleViolation(CodeNotYourTurn, "It is not the turn of %s.", seat)
	}
	if !r.Players[seat].HasRequestCard() {
		return ruleViolation(CodeNoRequestCard, "%s does not hold the Mahjong.", seat)
	}
	if r.WishUsed || r.PendingWish != 0 {
		return ruleViolation(CodeWishAlreadyUsed, "A wish has already been made this round.")
	}
	if rank < card.MinRank || rank > card.MaxRank {
		return MalformedInputError{Msg: fmt.Sprintf("Invalid rank: %d", rank)}
	}
	r.PendingWish = rank
	r.WishUsed = true
	r.ActionNum++
	return nil
}

// GiveDragon hands the Dragon trick to an opponent. Returns the new lead.
func (r *RoundState) GiveDragon(seat Seat, target Seat) (Seat, error) {
	if err := r.requirePhase(RoundPlaying); err != nil {
		return NoSeat, err
	}
	if r.Mode != ModeDragonPending {
		return NoSeat, ruleViolation(CodeNoDragonPending, "There is no Dragon trick to give.")
	}
	if seat != r.Table.Owner {
		return NoSeat, ruleViolation(CodeNotTrickOwner, "%s does not own the Dragon trick.", seat)
	}
	if !target.Valid() {
		return NoSeat, MalformedInputError{Msg: fmt.Sprintf("Invalid seat: %d", target)}
	}
	if !seat.IsOpponentOf(target) || !r.Players[target].HasCards() {
		return NoSeat, ruleViolation(CodeInvalidTarget, "The Dragon trick must go to an opponent still in the round.")
	}
	r.Players[target].AddToHeap(r.Table.Pile()...)
	r.Table.Reset()
	r.Mode = ModeNormal
	r.CurrentSeat = r.nextWithCards(seat)
	r.ActionNum++
	return r.CurrentSeat, nil
}

// MustEndGameRound is true once both players of a team are out.
func (r *RoundState) MustEndGameRound() bool {
	if r.Phase != RoundPlaying {
		return false
	}
	for _, team := range []Team{Team02, Team13} {
		seats := team.Seats()
		if !r.Players[seats[0]].HasCards() && !r.Players[seats[1]].HasCards() {
			return true
		}
	}
	return false
}

// CardsInPlay gathers every card of the round, wherever it currently is.
func (r *RoundState) CardsInPlay() []card.Card {
	var cards []card.Card
	for _, p := range r.Players {
		cards = append(cards, p.Cards()...)
		cards = append(cards, p.Heap...)
		switch {
		case r.Phase == RoundDealt && p.Trade != nil:
			cards = append(cards, p.Trade.Cards()...)
		case r.Phase != RoundDealt && p.Phase == PhaseTradesSent && p.Incoming != nil:
			cards = append(cards, p.Incoming.Cards()...)
		}
	}
	return append(cards, r.Table.Pile()...)
}

func containsRank(cards []card.Card, rank int) bool {
	for _, c := range cards {
		if !c.IsSpecial() && c.Rank == rank {
			return true
		}
	}
	return false
}

func containsSpecial(cards []card.Card, s card.Special) bool {
	for _, c := range cards {
		if c.Is(s) {
			return true
		}
	}
	return false
}
