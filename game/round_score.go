package game

import (
	"github.com/rs/zerolog/log"

	"tichu.com/server/card"
)

var roundLogger = log.With().Str("logger_name", "game::round_score").Logger()

// DoubleOutPoints is awarded when both players of a team go out first.
const DoubleOutPoints = 200

// EndGameRound scores the round and marks it over.
func (r *RoundState) EndGameRound() (RoundScore, error) {
	if !r.MustEndGameRound() {
		return RoundScore{}, ruleViolation(CodeRoundNotOver, "The round is not over yet.")
	}
	score, err := r.calculateScore()
	if err != nil {
		return RoundScore{}, err
	}
	r.Phase = RoundOver
	r.ActionNum++
	roundLogger.Debug().
		Interface("finishOrder", r.FinishOrder).
		Int("team02", score.Team02).
		Int("team13", score.Team13).
		Msg("Round scored")
	return score, nil
}

func (r *RoundState) calculateScore() (RoundScore, error) {
	var score RoundScore
	if len(r.FinishOrder) == 0 {
		return score, InvariantError{Msg: "round ended without a finisher"}
	}
	first := r.FinishOrder[0]
	if len(r.ActivePlayers()) > 1 {
		score.add(first.Team(), DoubleOutPoints)
	} else {
		r.evaluateTeamPoints(&score, first)
	}
	r.evaluateBets(&score, first)
	return score, nil
}

func (r *RoundState) evaluateTeamPoints(score *RoundScore, first Seat) {
	for _, p := range r.Players {
		if p.HasCards() {
			score.add(p.Seat.Team().Opponent(), card.EvaluatePoints(p.Cards()))
			score.add(first.Team(), card.EvaluatePoints(p.Heap))
			continue
		}
		score.add(p.Seat.Team(), card.EvaluatePoints(p.Heap))
	}
	pile := r.Table.Pile()
	if len(pile) == 0 {
		return
	}
	team := r.Table.Owner.Team()
	if r.Table.TopIsDragon() {
		team = team.Opponent()
	}
	score.add(team, card.EvaluatePoints(pile))
}

func (r *RoundState) evaluateBets(score *RoundScore, first Seat) {
	for _, p := range r.Players {
		if p.Bet == BetNone {
			continue
		}
		if p.Seat == first {
			score.add(p.Seat.Team(), int(p.Bet))
		} else {
			score.add(p.Seat.Team(), -int(p.Bet))
		}
	}
}
