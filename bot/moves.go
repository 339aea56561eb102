package bot

import (
	"math/bits"
	"sort"

	"tichu.com/server/card"
	"tichu.com/server/game"
)

// Move is a play the round would accept right now.
type Move struct {
	Cards       []card.Card
	Combination game.Combination
}

func (m Move) Intent(seat game.Seat) game.Intent {
	return game.Intent{Type: game.IntentPlayCards, Seat: seat, CardKeys: card.Keys(m.Cards)}
}

func (m Move) IsBomb() bool {
	return m.Combination.Kind == game.Bomb
}

// LegalPlays lists every play seat may make. The Phoenix is always left to
// the engine, which picks its strongest placement.
func LegalPlays(r *game.RoundState, seat game.Seat) []Move {
	if r == nil || r.Phase != game.RoundPlaying || !seat.Valid() {
		return nil
	}
	hand := r.Players[seat].Cards()
	var moves []Move
	try := func(cards []card.Card) {
		comb, err := r.CanPlay(seat, cards, 0)
		if err == nil {
			moves = append(moves, Move{Cards: cards, Combination: comb})
		}
	}

	if r.Table.IsEmpty() && r.Mode != game.ModeInterruptPending {
		// the Dog and the Dragon are only ever played alone
		var loners uint32
		for i, c := range hand {
			if c.Is(card.Dog) || c.Is(card.Dragon) {
				loners |= 1 << uint(i)
			}
		}
		for mask := uint32(1); mask < 1<<uint(len(hand)); mask++ {
			if mask&loners != 0 && bits.OnesCount32(mask) > 1 {
				continue
			}
			try(subset(hand, mask))
		}
		return moves
	}

	if r.Mode == game.ModeNormal && !r.Table.IsEmpty() && r.Table.Combination.Kind != game.Bomb {
		size := r.Table.Combination.Length
		for mask := uint32(1); mask < 1<<uint(len(hand)); mask++ {
			if bits.OnesCount32(mask) == size {
				try(subset(hand, mask))
			}
		}
	}
	for _, bomb := range bombs(hand) {
		try(bomb)
	}
	return moves
}

func subset(hand []card.Card, mask uint32) []card.Card {
	cards := make([]card.Card, 0, bits.OnesCount32(mask))
	for i, c := range hand {
		if mask&(1<<uint(i)) != 0 {
			cards = append(cards, c)
		}
	}
	return cards
}

// bombs lists the four-of-a-kinds and the same-suit runs of five or more.
func bombs(hand []card.Card) [][]card.Card {
	byRank := make(map[int][]card.Card)
	bySuit := make(map[card.Suit]map[int]card.Card)
	for _, c := range hand {
		if c.IsSpecial() {
			continue
		}
		byRank[c.Rank] = append(byRank[c.Rank], c)
		if bySuit[c.Suit] == nil {
			bySuit[c.Suit] = make(map[int]card.Card)
		}
		bySuit[c.Suit][c.Rank] = c
	}

	var found [][]card.Card
	for rank := card.MinRank; rank <= card.MaxRank; rank++ {
		if len(byRank[rank]) == 4 {
			found = append(found, byRank[rank])
		}
	}
	for _, suit := range card.Suits {
		ranks := bySuit[suit]
		for lo := card.MinRank; lo <= card.MaxRank; lo++ {
			run := []card.Card{}
			for hi := lo; hi <= card.MaxRank; hi++ {
				c, ok := ranks[hi]
				if !ok {
					break
				}
				run = append(run, c)
				if len(run) >= 5 {
					found = append(found, append([]card.Card(nil), run...))
				}
			}
		}
	}
	return found
}

// Lowest is the weakest non-bomb play, preferring the one shedding more cards.
// Bombs are only picked when nothing else is legal.
func Lowest(moves []Move) (Move, bool) {
	if len(moves) == 0 {
		return Move{}, false
	}
	sorted := append([]Move(nil), moves...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.IsBomb() != b.IsBomb() {
			return !a.IsBomb()
		}
		if a.Combination.Value != b.Combination.Value {
			return a.Combination.Value < b.Combination.Value
		}
		return len(a.Cards) > len(b.Cards)
	})
	return sorted[0], true
}

// Strongest returns the play that beats every other listed play.
func Strongest(moves []Move) (Move, bool) {
	if len(moves) == 0 {
		return Move{}, false
	}
	best := moves[0]
	for _, m := range moves[1:] {
		if game.Beats(m.Combination, best.Combination) {
			best = m
		}
	}
	return best, true
}
