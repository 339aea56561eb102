package card

import (
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

type Deck struct {
	cards   []Card
	randGen *rand.Rand
}

func newSeed() rand.Source {
	var b [8]byte
	_, err := crypto_rand.Read(b[:])
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}
	return rand.NewSource(int64(binary.LittleEndian.Uint64(b[:])))
}

// NewDeck returns a shuffled deck. A nil source seeds from crypto/rand.
func NewDeck(source rand.Source) *Deck {
	if source == nil {
		source = newSeed()
	}
	deck := &Deck{randGen: rand.New(source)}
	deck.Shuffle()
	return deck
}

func NewDeckNoShuffle() *Deck {
	return &Deck{cards: FullDeck()}
}

func (deck *Deck) Shuffle() *Deck {
	deck.cards = FullDeck()
	deck.randGen.Shuffle(len(deck.cards), func(i, j int) {
		deck.cards[i], deck.cards[j] = deck.cards[j], deck.cards[i]
	})
	return deck
}

func (deck *Deck) Draw(n int) []Card {
	if n > len(deck.cards) {
		n = len(deck.cards)
	}
	cards := make([]Card, n)
	copy(cards, deck.cards[:n])
	deck.cards = deck.cards[n:]
	return cards
}

// Deal drains the deck round-robin into the given number of hands.
func (deck *Deck) Deal(hands int) [][]Card {
	dealt := make([][]Card, hands)
	i := 0
	for !deck.Empty() {
		dealt[i] = append(dealt[i], deck.Draw(1)...)
		i = (i + 1) % hands
	}
	return dealt
}

func (deck *Deck) Empty() bool {
	return len(deck.cards) == 0
}

func (deck *Deck) Len() int {
	return len(deck.cards)
}
