package game

import (
	"fmt"
	"sort"

	"tichu.com/server/card"
)

type Kind uint8

const (
	NoKind Kind = iota
	Single
	Pair
	Triplet
	ConsecutivePairs
	Straight
	FullHouse
	Bomb
)

var kindNames = map[Kind]string{
	Single:           "Single",
	Pair:             "Pair",
	Triplet:          "Triplet",
	ConsecutivePairs: "ConsecutivePairs",
	Straight:         "Straight",
	FullHouse:        "FullHouse",
	Bomb:             "Bomb",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "None"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	if string(b) == "None" {
		*k = NoKind
		return nil
	}
	return fmt.Errorf("unknown combination kind: %s", string(b))
}

// Combination is a validated set of cards played as one unit.
// Length is the number of cards and Value the strength within the kind.
// Suit is set only for straight bombs.
type Combination struct {
	Kind   Kind      `json:"kind"`
	Length int       `json:"length"`
	Value  float64   `json:"value"`
	Suit   card.Suit `json:"suit,omitempty"`
}

func (c Combination) String() string {
	return fmt.Sprintf("%s(%d, %g)", c.Kind, c.Length, c.Value)
}

// rankCounts is a histogram of the suited ranks in a set of cards.
type rankCounts struct {
	counts  [card.MaxRank + 1]int
	suited  [len(card.Suits) + 1][card.MaxRank + 1]bool
	phoenix int
	mahjong int
	dog     int
	dragon  int
	total   int
}

func countRanks(cards []card.Card) rankCounts {
	var rc rankCounts
	for _, c := range cards {
		rc.total++
		switch c.Special {
		case card.Phoenix:
			rc.phoenix++
		case card.Mahjong:
			rc.mahjong++
		case card.Dog:
			rc.dog++
		case card.Dragon:
			rc.dragon++
		default:
			rc.counts[c.Rank]++
			rc.suited[c.Suit][c.Rank] = true
		}
	}
	return rc
}

func (rc *rankCounts) real() int {
	return rc.total - rc.phoenix - rc.mahjong - rc.dog - rc.dragon
}

// distinct returns the suited ranks present, ascending.
func (rc *rankCounts) distinct() []int {
	ranks := make([]int, 0, card.MaxRank)
	for r := card.MinRank; r <= card.MaxRank; r++ {
		if rc.counts[r] > 0 {
			ranks = append(ranks, r)
		}
	}
	return ranks
}

// topCard returns the strongest card on the table.
func topCard(tableCards []card.Card) card.Card {
	top := tableCards[0]
	for _, c := range tableCards[1:] {
		if c.Value() > top.Value() {
			top = c
		}
	}
	return top
}

// CreateCombination validates the selected cards against the combination rules.
// tableCards is only consulted to value a single Phoenix. phoenixRank optionally
// places the Phoenix in a straight or picks the triplet of a full house; 0 lets
// the engine decide.
func CreateCombination(selected, tableCards []card.Card, phoenixRank int) (Combination, bool) {
	if phoenixRank != 0 && (phoenixRank < card.MinRank || phoenixRank > card.MaxRank) {
		return Combination{}, false
	}
	switch len(selected) {
	case 0:
		return Combination{}, false
	case 1:
		return createSingle(selected[0], tableCards)
	case 2:
		return createSameRank(selected, Pair)
	case 3:
		return createSameRank(selected, Triplet)
	}
	if c, ok := createBomb(selected); ok {
		return c, true
	}
	if len(selected) == 5 {
		if c, ok := createFullHouse(selected, phoenixRank); ok {
			return c, true
		}
	}
	if len(selected)%2 == 0 {
		if c, ok := createConsecutivePairs(selected); ok {
			return c, true
		}
	}
	return createStraight(selected, phoenixRank)
}

func createSingle(c card.Card, tableCards []card.Card) (Combination, bool) {
	single := Combination{Kind: Single, Length: 1}
	if !c.Is(card.Phoenix) {
		single.Value = c.Value()
		return single, true
	}
	if len(tableCards) == 0 {
		single.Value = 1.5
		return single, true
	}
	top := topCard(tableCards)
	if top.Is(card.Dragon) {
		return Combination{}, false
	}
	single.Value = top.Value() + 0.5
	return single, true
}

func createSameRank(cards []card.Card, kind Kind) (Combination, bool) {
	rc := countRanks(cards)
	if rc.mahjong+rc.dog+rc.dragon > 0 || rc.phoenix > 1 {
		return Combination{}, false
	}
	ranks := rc.distinct()
	if len(ranks) != 1 {
		return Combination{}, false
	}
	return Combination{Kind: kind, Length: len(cards), Value: float64(ranks[0])}, true
}

func createBomb(cards []card.Card) (Combination, bool) {
	rc := countRanks(cards)
	if rc.real() != len(cards) {
		return Combination{}, false
	}
	ranks := rc.distinct()
	if len(cards) == 4 && len(ranks) == 1 {
		return Combination{Kind: Bomb, Length: 4, Value: float64(ranks[0])}, true
	}
	if len(cards) < 5 || len(ranks) != len(cards) || ranks[len(ranks)-1]-ranks[0] != len(ranks)-1 {
		return Combination{}, false
	}
	suit := cards[0].Suit
	for _, c := range cards[1:] {
		if c.Suit != suit {
			return Combination{}, false
		}
	}
	return Combination{Kind: Bomb, Length: len(cards), Value: float64(ranks[len(ranks)-1]), Suit: suit}, true
}

func createFullHouse(cards []card.Card, phoenixRank int) (Combination, bool) {
	rc := countRanks(cards)
	if rc.mahjong+rc.dog+rc.dragon > 0 || rc.phoenix > 1 {
		return Combination{}, false
	}
	ranks := rc.distinct()
	if len(ranks) != 2 {
		return Combination{}, false
	}
	lo, hi := ranks[0], ranks[1]
	cl, ch := rc.counts[lo], rc.counts[hi]
	fullHouse := Combination{Kind: FullHouse, Length: 5}
	if rc.phoenix == 0 {
		switch {
		case cl == 3 && ch == 2:
			fullHouse.Value = float64(lo)
		case cl == 2 && ch == 3:
			fullHouse.Value = float64(hi)
		default:
			return Combination{}, false
		}
		return fullHouse, true
	}
	switch {
	case cl == 3 && ch == 1:
		if phoenixRank != 0 && phoenixRank != hi {
			return Combination{}, false
		}
		fullHouse.Value = float64(lo)
	case cl == 1 && ch == 3:
		if phoenixRank != 0 && phoenixRank != lo {
			return Combination{}, false
		}
		fullHouse.Value = float64(hi)
	case cl == 2 && ch == 2:
		switch phoenixRank {
		case 0, hi:
			fullHouse.Value = float64(hi)
		case lo:
			fullHouse.Value = float64(lo)
		default:
			return Combination{}, false
		}
	default:
		return Combination{}, false
	}
	return fullHouse, true
}

func createConsecutivePairs(cards []card.Card) (Combination, bool) {
	rc := countRanks(cards)
	if len(cards) < 4 || rc.mahjong+rc.dog+rc.dragon > 0 || rc.phoenix > 1 {
		return Combination{}, false
	}
	ranks := rc.distinct()
	if len(ranks)*2 != len(cards) || ranks[len(ranks)-1]-ranks[0] != len(ranks)-1 {
		return Combination{}, false
	}
	singles := 0
	for _, r := range ranks {
		switch rc.counts[r] {
		case 2:
		case 1:
			singles++
		default:
			return Combination{}, false
		}
	}
	if singles != rc.phoenix {
		return Combination{}, false
	}
	return Combination{Kind: ConsecutivePairs, Length: len(cards), Value: float64(ranks[len(ranks)-1])}, true
}

func createStraight(cards []card.Card, phoenixRank int) (Combination, bool) {
	rc := countRanks(cards)
	if len(cards) < 5 || rc.dog+rc.dragon > 0 || rc.phoenix > 1 {
		return Combination{}, false
	}
	ranks := rc.distinct()
	if len(ranks) != rc.real() {
		return Combination{}, false
	}
	if rc.mahjong == 1 {
		ranks = append([]int{card.MahjongValue}, ranks...)
	}
	sort.Ints(ranks)
	lo, hi := ranks[0], ranks[len(ranks)-1]
	span := hi - lo + 1
	straight := Combination{Kind: Straight, Length: len(cards)}

	if rc.phoenix == 0 {
		if span != len(ranks) {
			return Combination{}, false
		}
		straight.Value = float64(hi)
		return straight, true
	}

	switch span {
	case len(ranks) + 1:
		// the Phoenix fills the single gap
		gap := 0
		for i := 1; i < len(ranks); i++ {
			if ranks[i] != ranks[i-1]+1 {
				gap = ranks[i-1] + 1
				break
			}
		}
		if phoenixRank != 0 && phoenixRank != gap {
			return Combination{}, false
		}
		straight.Value = float64(hi)
	case len(ranks):
		above, below := hi+1, lo-1
		switch {
		case phoenixRank == 0 && above <= card.MaxRank:
			straight.Value = float64(above)
		case phoenixRank == 0 && below >= card.MinRank:
			straight.Value = float64(hi)
		case phoenixRank != 0 && phoenixRank == above && above <= card.MaxRank:
			straight.Value = float64(above)
		case phoenixRank != 0 && phoenixRank == below && below >= card.MinRank:
			straight.Value = float64(hi)
		default:
			return Combination{}, false
		}
	default:
		return Combination{}, false
	}
	return straight, true
}

// Compare orders two combinations. ok is false when they are not comparable.
func Compare(a, b Combination) (result int, ok bool) {
	if a.Kind == Bomb || b.Kind == Bomb {
		switch {
		case a.Kind != Bomb:
			return -1, true
		case b.Kind != Bomb:
			return 1, true
		case a.Length != b.Length:
			return compareInts(a.Length, b.Length), true
		}
		return compareFloats(a.Value, b.Value), true
	}
	if a.Kind != b.Kind || a.Length != b.Length {
		return 0, false
	}
	return compareFloats(a.Value, b.Value), true
}

// Beats returns true when a can be played over b.
func Beats(a, b Combination) bool {
	result, ok := Compare(a, b)
	return ok && result > 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
