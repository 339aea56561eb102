package game

import (
	"tichu.com/server/card"
)

// StrongestContaining returns the strongest combination of the given kind and
// length that can be formed from pool and contains a real card of rank.
// The Phoenix may substitute for at most one card and never for the rank itself.
func StrongestContaining(pool []card.Card, kind Kind, rank int, length int) (Combination, bool) {
	if rank < card.MinRank || rank > card.MaxRank {
		return Combination{}, false
	}
	rc := countRanks(pool)
	if rc.counts[rank] == 0 {
		return Combination{}, false
	}
	wild := rc.phoenix
	switch kind {
	case Single:
		return Combination{Kind: Single, Length: 1, Value: float64(rank)}, true
	case Pair:
		if rc.counts[rank]+wild >= 2 {
			return Combination{Kind: Pair, Length: 2, Value: float64(rank)}, true
		}
	case Triplet:
		if rc.counts[rank]+wild >= 3 {
			return Combination{Kind: Triplet, Length: 3, Value: float64(rank)}, true
		}
	case FullHouse:
		return strongestFullHouse(&rc, rank)
	case ConsecutivePairs:
		return strongestConsecutivePairs(&rc, rank, length)
	case Straight:
		return strongestStraight(&rc, rank, length)
	case Bomb:
		return strongestBomb(&rc, rank)
	}
	return Combination{}, false
}

func missing(have, want int) int {
	if have >= want {
		return 0
	}
	return want - have
}

func strongestFullHouse(rc *rankCounts, rank int) (Combination, bool) {
	for triple := card.MaxRank; triple >= card.MinRank; triple-- {
		for pair := card.MaxRank; pair >= card.MinRank; pair-- {
			if pair == triple || (triple != rank && pair != rank) {
				continue
			}
			if missing(rc.counts[triple], 3)+missing(rc.counts[pair], 2) <= rc.phoenix {
				return Combination{Kind: FullHouse, Length: 5, Value: float64(triple)}, true
			}
		}
	}
	return Combination{}, false
}

func strongestConsecutivePairs(rc *rankCounts, rank int, length int) (Combination, bool) {
	if length < 4 || length%2 != 0 {
		return Combination{}, false
	}
	pairs := length / 2
	top := rank + pairs - 1
	if top > card.MaxRank {
		top = card.MaxRank
	}
	for ; top >= rank && top-pairs+1 >= card.MinRank; top-- {
		need := 0
		for r := top - pairs + 1; r <= top; r++ {
			need += missing(rc.counts[r], 2)
		}
		if need <= rc.phoenix {
			return Combination{Kind: ConsecutivePairs, Length: length, Value: float64(top)}, true
		}
	}
	return Combination{}, false
}

func strongestStraight(rc *rankCounts, rank int, length int) (Combination, bool) {
	if length < 5 {
		return Combination{}, false
	}
	present := func(r int) bool {
		if r == card.MahjongValue {
			return rc.mahjong > 0
		}
		return rc.counts[r] > 0
	}
	top := rank + length - 1
	if top > card.MaxRank {
		top = card.MaxRank
	}
	for ; top >= rank && top-length+1 >= card.MahjongValue; top-- {
		bottom := top - length + 1
		if bottom == card.MahjongValue && rc.mahjong == 0 {
			// the Phoenix cannot stand in for the Mahjong
			continue
		}
		need := 0
		for r := bottom; r <= top; r++ {
			if !present(r) {
				need++
			}
		}
		if need <= rc.phoenix {
			return Combination{Kind: Straight, Length: length, Value: float64(top)}, true
		}
	}
	return Combination{}, false
}

// strongestBomb returns the strongest bomb in rc. A rank of 0 accepts any bomb,
// otherwise the bomb must contain that rank.
func strongestBomb(rc *rankCounts, rank int) (Combination, bool) {
	var best Combination
	found := false
	consider := func(c Combination) {
		if !found || Beats(c, best) {
			best = c
			found = true
		}
	}
	for r := card.MinRank; r <= card.MaxRank; r++ {
		if rc.counts[r] == 4 && (rank == 0 || rank == r) {
			consider(Combination{Kind: Bomb, Length: 4, Value: float64(r)})
		}
	}
	for _, suit := range card.Suits {
		held := rc.suited[suit]
		r := card.MinRank
		for r <= card.MaxRank {
			if !held[r] {
				r++
				continue
			}
			start := r
			for r <= card.MaxRank && held[r] {
				r++
			}
			end := r - 1
			if end-start+1 >= 5 && (rank == 0 || (start <= rank && rank <= end)) {
				consider(Combination{Kind: Bomb, Length: end - start + 1, Value: float64(end), Suit: suit})
			}
		}
	}
	return best, found
}

// StrongestBomb returns the strongest bomb that can be formed from pool.
func StrongestBomb(pool []card.Card) (Combination, bool) {
	rc := countRanks(pool)
	return strongestBomb(&rc, 0)
}
