package card

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Suit uint8

const (
	NoSuit Suit = iota
	Black
	Red
	Blue
	Green
)

// Suits lists the four suits in deck order.
var Suits = [...]Suit{Black, Red, Blue, Green}

var suitNames = map[Suit]string{
	Black: "black",
	Red:   "red",
	Blue:  "blue",
	Green: "green",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return ""
}

func parseSuit(name string) (Suit, bool) {
	for s, n := range suitNames {
		if n == name {
			return s, true
		}
	}
	return NoSuit, false
}

type Special uint8

const (
	NotSpecial Special = iota
	// Dog skips the next seat and voids the trick.
	Dog
	// Phoenix is the wildcard.
	Phoenix
	// Mahjong grants the wish.
	Mahjong
	// Dragon is the highest single and must be handed to an opponent.
	Dragon
)

var specialNames = map[Special]string{
	Dog:     "Dog",
	Phoenix: "Phoenix",
	Mahjong: "Mahjong",
	Dragon:  "Dragon",
}

func (s Special) String() string {
	return specialNames[s]
}

const (
	MinRank = 2
	MaxRank = 14

	MahjongValue = 1
	DragonValue  = 20
	PhoenixValue = 0.5
)

var letterRanks = map[string]int{
	"J": 11,
	"Q": 12,
	"K": 13,
	"A": 14,
}

// InvalidRankError is returned for rank names outside 2..10, J, Q, K, A.
type InvalidRankError struct {
	Name string
}

func (e InvalidRankError) Error() string {
	return fmt.Sprintf("Unknown card rank: %s", e.Name)
}

// ValueOf maps a rank name to its value.
func ValueOf(name string) (int, error) {
	if v, ok := letterRanks[name]; ok {
		return v, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < MinRank || n > 10 {
		return 0, InvalidRankError{Name: name}
	}
	return n, nil
}

// RankName is the reverse of ValueOf. Returns "" for values outside 2..14.
func RankName(rank int) string {
	switch {
	case rank >= MinRank && rank <= 10:
		return strconv.Itoa(rank)
	case rank > 10 && rank <= MaxRank:
		for name, v := range letterRanks {
			if v == rank {
				return name
			}
		}
	}
	return ""
}

// Card is either a suited card (Rank 2..14 with a Suit) or one of the four specials.
type Card struct {
	Rank    int
	Suit    Suit
	Special Special
}

var (
	DogCard     = Card{Special: Dog}
	PhoenixCard = Card{Special: Phoenix}
	MahjongCard = Card{Special: Mahjong}
	DragonCard  = Card{Special: Dragon}
)

func NewCard(rank int, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

func (c Card) IsSpecial() bool {
	return c.Special != NotSpecial
}

func (c Card) Is(s Special) bool {
	return c.Special == s
}

// Value is the strength of the card when played as a single.
// The Phoenix value here is its opening value; combinations decide the real one.
func (c Card) Value() float64 {
	switch c.Special {
	case Dog:
		return 0
	case Phoenix:
		return PhoenixValue
	case Mahjong:
		return MahjongValue
	case Dragon:
		return DragonValue
	}
	return float64(c.Rank)
}

// Key is the unique card identifier used on the wire, e.g. "red_10" or "Dragon".
func (c Card) Key() string {
	if c.IsSpecial() {
		return c.Special.String()
	}
	return c.Suit.String() + "_" + RankName(c.Rank)
}

func (c Card) String() string {
	return c.Key()
}

// ParseKey is the inverse of Key.
func ParseKey(key string) (Card, error) {
	for s, name := range specialNames {
		if name == key {
			return Card{Special: s}, nil
		}
	}
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return Card{}, fmt.Errorf("Invalid card key: %s", key)
	}
	suit, ok := parseSuit(parts[0])
	if !ok {
		return Card{}, fmt.Errorf("Invalid card suit in key: %s", key)
	}
	rank, err := ValueOf(parts[1])
	if err != nil {
		return Card{}, err
	}
	return NewCard(rank, suit), nil
}

func (c Card) MarshalJSON() ([]byte, error) {
	return []byte("\"" + c.Key() + "\""), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	key, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	parsed, err := ParseKey(key)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// EvaluatePoints sums the trick points of the given cards.
func EvaluatePoints(cards []Card) int {
	points := 0
	for _, c := range cards {
		switch {
		case c.Is(Dragon):
			points += 25
		case c.Is(Phoenix):
			points -= 25
		case c.Rank == 5:
			points += 5
		case c.Rank == 10 || c.Rank == 13:
			points += 10
		}
	}
	return points
}

// FullDeck returns the 56 cards in a fixed order, specials first.
func FullDeck() []Card {
	cards := []Card{DogCard, PhoenixCard, MahjongCard, DragonCard}
	for rank := MinRank; rank <= MaxRank; rank++ {
		for _, suit := range Suits {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Sort orders cards by value then suit, in place.
func Sort(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		vi, vj := cards[i].Value(), cards[j].Value()
		if vi != vj {
			return vi < vj
		}
		return cards[i].Suit < cards[j].Suit
	})
}

func Keys(cards []Card) []string {
	keys := make([]string, len(cards))
	for i, c := range cards {
		keys[i] = c.Key()
	}
	return keys
}

func CardsToString(cards []Card) string {
	return "[" + strings.Join(Keys(cards), " ") + "]"
}
