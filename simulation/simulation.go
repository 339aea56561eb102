package simulation

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"tichu.com/server/bot"
	"tichu.com/server/card"
	"tichu.com/server/game"
)

var simLogger = log.With().Str("logger_name", "simulation::simulation").Logger()

// maxIntentsPerGame bounds a single game. Bots that stop making progress fail the run.
const maxIntentsPerGame = 50000

// Stats aggregates the outcome of simulated games.
type Stats struct {
	Games      int
	Rounds     int
	Intents    int
	Team02Wins int
	Team13Wins int
	Ties       int
	Bets       map[game.Bet]int
	Plays      map[string]int
	Dragons    int
	Interrupts int
}

func newStats() Stats {
	return Stats{
		Bets:  make(map[game.Bet]int),
		Plays: make(map[string]int),
	}
}

// Run plays numGames bot-only games to the winning score and checks every
// state along the way. Deals and bot decisions are derived from seed.
func Run(numGames int, winningScore int, seed int64, out io.Writer) (Stats, error) {
	rnd := rand.New(rand.NewSource(seed))
	stats := newStats()
	for i := 0; i < numGames; i++ {
		if i > 0 && i%100 == 0 {
			simLogger.Info().Msgf("Game %d", i)
		}
		if err := playGame(rnd, winningScore, &stats); err != nil {
			return stats, errors.Wrap(err, fmt.Sprintf("Game %d failed", i+1))
		}
	}
	if out != nil {
		stats.Print(out)
	}
	return stats, nil
}

func playGame(rnd *rand.Rand, winningScore int, stats *Stats) error {
	state := game.NewGameState(winningScore)
	state.SetDeckSource(func() *card.Deck {
		return card.NewDeck(rand.NewSource(rnd.Int63()))
	})
	var brains [game.NumSeats]*bot.Brain
	for _, seat := range game.AllSeats {
		brains[seat] = bot.NewBrain(rnd.Int63())
		_, err := state.Apply(game.Intent{Type: game.IntentJoin, Seat: seat, Nickname: fmt.Sprintf("sim-%d", seat)})
		if err != nil {
			return err
		}
	}

	applied := 0
	for state.Status != game.StatusOver {
		if applied >= maxIntentsPerGame {
			return fmt.Errorf("No result after %d intents", applied)
		}
		in, ok := nextIntent(state, brains)
		if !ok {
			return fmt.Errorf("No seat can act in round %d", state.RoundNum)
		}
		events, err := state.Apply(in)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("Seat %d %s %v rejected", in.Seat, in.Type, in.CardKeys))
		}
		applied++
		stats.count(events)
		if err := checkCards(state); err != nil {
			return err
		}
	}
	if err := checkTotals(state); err != nil {
		return err
	}

	stats.Games++
	stats.Intents += applied
	stats.Rounds += len(state.ScoreHistory)
	switch state.Result {
	case game.ResultTeam02:
		stats.Team02Wins++
	case game.ResultTeam13:
		stats.Team13Wins++
	case game.ResultTie:
		stats.Ties++
	}
	return nil
}

// nextIntent gives the acting seat priority, then lets any other seat act.
func nextIntent(state *game.GameState, brains [game.NumSeats]*bot.Brain) (game.Intent, bool) {
	if acting := state.ActingSeat(); acting.Valid() {
		if in, ok := brains[acting].Decide(state, acting); ok {
			return in, true
		}
	}
	for _, seat := range game.AllSeats {
		if in, ok := brains[seat].Decide(state, seat); ok {
			return in, true
		}
	}
	return game.Intent{}, false
}

func (s *Stats) count(events []game.Event) {
	for _, e := range events {
		switch e.Type {
		case game.EventCardsPlayed:
			if data, ok := e.Data.(game.CardsPlayedData); ok {
				s.Plays[data.CombinationType]++
			}
		case game.EventBetPlaced:
			if data, ok := e.Data.(game.BetPlacedData); ok {
				s.Bets[data.Bet]++
			}
		case game.EventDragonGiven:
			s.Dragons++
		case game.EventBombDropped:
			s.Interrupts++
		}
	}
}

// checkCards verifies that all 56 cards are still in play exactly once.
func checkCards(state *game.GameState) error {
	if state.Round == nil {
		return nil
	}
	keys := card.Keys(state.Round.CardsInPlay())
	if len(keys) != len(card.FullDeck()) {
		return fmt.Errorf("Round %d has %d cards in play", state.RoundNum, len(keys))
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if seen[key] {
			return fmt.Errorf("Card %s is in play twice in round %d", key, state.RoundNum)
		}
		seen[key] = true
	}
	return nil
}

func checkTotals(state *game.GameState) error {
	team02, team13 := 0, 0
	for _, score := range state.ScoreHistory {
		team02 += score.Team02
		team13 += score.Team13
	}
	if team02 != state.Team02Total || team13 != state.Team13Total {
		return fmt.Errorf("Totals %d/%d do not match the round history %d/%d",
			state.Team02Total, state.Team13Total, team02, team13)
	}
	return nil
}

func (s Stats) Print(out io.Writer) {
	fmt.Fprintf(out, "%d games completed\n\nResult:\n", s.Games)
	fmt.Fprintf(out, "Rounds                : %d (%f per game)\n", s.Rounds, ratio(s.Rounds, s.Games))
	fmt.Fprintf(out, "Intents               : %d (%f per round)\n", s.Intents, ratio(s.Intents, s.Rounds))
	fmt.Fprintf(out, "Team 0/2 wins         : %d/%d (%f)\n", s.Team02Wins, s.Games, ratio(s.Team02Wins, s.Games))
	fmt.Fprintf(out, "Team 1/3 wins         : %d/%d (%f)\n", s.Team13Wins, s.Games, ratio(s.Team13Wins, s.Games))
	fmt.Fprintf(out, "Ties                  : %d/%d (%f)\n", s.Ties, s.Games, ratio(s.Ties, s.Games))
	fmt.Fprintf(out, "Small bets            : %d\n", s.Bets[game.BetLow])
	fmt.Fprintf(out, "Grand bets            : %d\n", s.Bets[game.BetHigh])
	fmt.Fprintf(out, "Dragons given         : %d\n", s.Dragons)
	fmt.Fprintf(out, "Bomb interrupts       : %d\n", s.Interrupts)

	kinds := make([]string, 0, len(s.Plays))
	for kind := range s.Plays {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(out, "%-22s: %d\n", kind, s.Plays[kind])
	}
}

func ratio(n int, d int) float32 {
	if d == 0 {
		return 0
	}
	return float32(n) / float32(d)
}
