package archive

import (
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"tichu.com/server/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GameResult is one archived game, flattened for storage.
type GameResult struct {
	GameCode    string    `db:"game_code" json:"gameCode"`
	Players     string    `db:"players" json:"players"`
	Result      string    `db:"result" json:"result"`
	Team02Total int       `db:"team02_total" json:"team02Total"`
	Team13Total int       `db:"team13_total" json:"team13Total"`
	Rounds      int       `db:"rounds" json:"rounds"`
	Scores      string    `db:"scores" json:"scores"`
	EndedAt     time.Time `db:"ended_at" json:"endedAt"`
}

// Archive stores finished games and lists the latest ones.
type Archive interface {
	game.ResultRecorder
	Recent(limit int) ([]GameResult, error)
	Close() error
}

func toGameResult(summary game.GameSummary) (GameResult, error) {
	players, err := json.MarshalToString(summary.Players)
	if err != nil {
		return GameResult{}, errors.Wrap(err, "Unable to encode players")
	}
	rounds := summary.Rounds
	if rounds == nil {
		rounds = []game.RoundScore{}
	}
	scores, err := json.MarshalToString(rounds)
	if err != nil {
		return GameResult{}, errors.Wrap(err, "Unable to encode round scores")
	}
	endedAt := summary.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now().UTC()
	}
	return GameResult{
		GameCode:    summary.GameCode,
		Players:     players,
		Result:      string(summary.Result),
		Team02Total: summary.Team02Total,
		Team13Total: summary.Team13Total,
		Rounds:      len(summary.Rounds),
		Scores:      scores,
		EndedAt:     endedAt,
	}, nil
}

// MemoryArchive keeps results in process, used when no database is configured.
type MemoryArchive struct {
	lock    sync.Mutex
	results []GameResult
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

func (m *MemoryArchive) RecordResult(summary game.GameSummary) error {
	result, err := toGameResult(summary)
	if err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.results = append(m.results, result)
	return nil
}

// Recent returns up to limit results, latest first.
func (m *MemoryArchive) Recent(limit int) ([]GameResult, error) {
	m.lock.Lock()
	results := append([]GameResult(nil), m.results...)
	m.lock.Unlock()
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EndedAt.After(results[j].EndedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryArchive) Close() error {
	return nil
}
