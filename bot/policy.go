package bot

import (
	"math/rand"

	"tichu.com/server/card"
	"tichu.com/server/game"
)

const (
	betChance     = 0.05
	wishChance    = 0.5
	passChance    = 0.3
	lowestChance  = 0.6
	dropBombOdds  = 0.1
	grandBetShare = 0.2
)

// Brain picks the next intent of a seat from a game snapshot. A Brain without
// a random source always makes the same, cautious choice.
type Brain struct {
	rnd *rand.Rand
}

func NewBrain(seed int64) *Brain {
	return &Brain{rnd: rand.New(rand.NewSource(seed))}
}

var cautious = &Brain{}

// DefaultIntent is the action taken for a seat that ran out of time.
func DefaultIntent(state *game.GameState, seat game.Seat) (game.Intent, bool) {
	return cautious.Decide(state, seat)
}

func (b *Brain) chance(p float64) bool {
	return b.rnd != nil && b.rnd.Float64() < p
}

// Decide returns false when seat has nothing to do.
func (b *Brain) Decide(state *game.GameState, seat game.Seat) (game.Intent, bool) {
	if state == nil || state.Status != game.StatusInProgress || state.Round == nil || !seat.Valid() {
		return game.Intent{}, false
	}
	r := state.Round
	p := r.Players[seat]
	switch r.Phase {
	case game.RoundDealt:
		return b.beforeTrade(p)
	case game.RoundTrading:
		if p.Phase == game.PhaseTradesSent {
			return game.Intent{Type: game.IntentReceiveTrade, Seat: seat}, true
		}
	case game.RoundPlaying:
		if r.ActingSeat() != seat {
			return b.MaybeDropBomb(r, seat)
		}
		return b.play(r, seat)
	}
	return game.Intent{}, false
}

func (b *Brain) beforeTrade(p *game.PlayerState) (game.Intent, bool) {
	seat := p.Seat
	switch p.Phase {
	case game.PhaseDealt:
		if b.chance(betChance * grandBetShare) {
			return game.Intent{Type: game.IntentPlaceBet, Seat: seat, Bet: game.BetHigh}, true
		}
		return game.Intent{Type: game.IntentRevealCards, Seat: seat}, true
	case game.PhaseRevealed:
		if b.chance(betChance) {
			return game.Intent{Type: game.IntentPlaceBet, Seat: seat, Bet: game.BetLow}, true
		}
		return b.trade(p), true
	case game.PhaseBetPlaced:
		return b.trade(p), true
	}
	return game.Intent{}, false
}

// trade hands the two weakest cards to the opponents and the third to the partner.
func (b *Brain) trade(p *game.PlayerState) game.Intent {
	cards := p.Cards()
	keys := &game.TradeKeys{
		Left:     cards[0].Key(),
		Right:    cards[1].Key(),
		Teammate: cards[2].Key(),
	}
	return game.Intent{Type: game.IntentTradeCards, Seat: p.Seat, Trade: keys}
}

func (b *Brain) play(r *game.RoundState, seat game.Seat) (game.Intent, bool) {
	switch r.Mode {
	case game.ModeDragonPending:
		return giveDragon(r, seat)
	case game.ModeInterruptPending:
		bomb, ok := Strongest(LegalPlays(r, seat))
		if !ok {
			return game.Intent{}, false
		}
		return bomb.Intent(seat), true
	}

	if r.Table.IsEmpty() && r.Players[seat].HasRequestCard() && !r.WishUsed && b.chance(wishChance) {
		rank := card.MinRank + b.rnd.Intn(card.MaxRank-card.MinRank+1)
		return game.Intent{Type: game.IntentRequestCard, Seat: seat, Rank: card.RankName(rank)}, true
	}
	canPass := r.CanPass(seat)
	if canPass && (b.rnd == nil || b.chance(passChance)) {
		return game.Intent{Type: game.IntentPassTurn, Seat: seat}, true
	}

	moves := LegalPlays(r, seat)
	if len(moves) == 0 {
		if canPass {
			return game.Intent{Type: game.IntentPassTurn, Seat: seat}, true
		}
		return game.Intent{}, false
	}
	if b.rnd != nil && !b.chance(lowestChance) {
		return moves[b.rnd.Intn(len(moves))].Intent(seat), true
	}
	lowest, _ := Lowest(moves)
	return lowest.Intent(seat), true
}

// giveDragon hands the trick to the first opponent still holding cards.
func giveDragon(r *game.RoundState, seat game.Seat) (game.Intent, bool) {
	for _, target := range []game.Seat{seat.Next(), seat.Left()} {
		if r.Players[target].HasCards() {
			t := target
			return game.Intent{Type: game.IntentGiveDragon, Seat: seat, Target: &t}, true
		}
	}
	return game.Intent{}, false
}

// MaybeDropBomb occasionally interrupts the turn order when seat holds a bomb
// strong enough for the table. The cautious brain never does.
func (b *Brain) MaybeDropBomb(r *game.RoundState, seat game.Seat) (game.Intent, bool) {
	if b.rnd == nil || r.Mode != game.ModeNormal || r.Table.IsEmpty() || r.Table.Owner == seat {
		return game.Intent{}, false
	}
	bomb, ok := game.StrongestBomb(r.Players[seat].Cards())
	if !ok {
		return game.Intent{}, false
	}
	if top := *r.Table.Combination; top.Kind == game.Bomb && !game.Beats(bomb, top) {
		return game.Intent{}, false
	}
	if !b.chance(dropBombOdds) {
		return game.Intent{}, false
	}
	return game.Intent{Type: game.IntentDropBomb, Seat: seat}, true
}
