package game

import "tichu.com/server/card"

// TableState is the trick in progress. Cards holds the top combination,
// Previous every card played earlier in the same trick.
type TableState struct {
	Combination *Combination `json:"combination"`
	Cards       []card.Card  `json:"cards"`
	Owner       Seat         `json:"owner"`
	Previous    []card.Card  `json:"previous"`
}

func NewTableState() *TableState {
	return &TableState{Owner: NoSeat}
}

func (t *TableState) IsEmpty() bool {
	return t.Combination == nil
}

func (t *TableState) Place(seat Seat, cards []card.Card, comb Combination) {
	t.Previous = append(t.Previous, t.Cards...)
	t.Cards = append([]card.Card(nil), cards...)
	t.Combination = &comb
	t.Owner = seat
}

// Pile returns every card of the trick.
func (t *TableState) Pile() []card.Card {
	pile := make([]card.Card, 0, len(t.Previous)+len(t.Cards))
	pile = append(pile, t.Previous...)
	return append(pile, t.Cards...)
}

func (t *TableState) TopIsDragon() bool {
	return len(t.Cards) == 1 && t.Cards[0].Is(card.Dragon)
}

func (t *TableState) Reset() {
	t.Combination = nil
	t.Cards = nil
	t.Previous = nil
	t.Owner = NoSeat
}
