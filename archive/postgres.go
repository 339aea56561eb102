package archive

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"tichu.com/server/game"
	"tichu.com/server/logging"
)

var archiveLogger = log.With().Str("logger_name", "archive::postgres").Logger()

const createGameResultTable = `
CREATE TABLE IF NOT EXISTS game_result (
	id SERIAL PRIMARY KEY,
	game_code VARCHAR(32) NOT NULL,
	players TEXT NOT NULL,
	result VARCHAR(16) NOT NULL,
	team02_total INTEGER NOT NULL,
	team13_total INTEGER NOT NULL,
	rounds INTEGER NOT NULL,
	scores TEXT NOT NULL,
	ended_at TIMESTAMP NOT NULL
)`

const insertGameResult = `
INSERT INTO game_result (game_code, players, result, team02_total, team13_total, rounds, scores, ended_at)
VALUES (:game_code, :players, :result, :team02_total, :team13_total, :rounds, :scores, :ended_at)`

const selectRecentResults = `
SELECT game_code, players, result, team02_total, team13_total, rounds, scores, ended_at
FROM game_result ORDER BY ended_at DESC LIMIT $1`

// PostgresArchive writes finished games to the game_result table.
type PostgresArchive struct {
	db *sqlx.DB
}

// NewPostgresArchive connects with the lib/pq driver and creates the table if needed.
func NewPostgresArchive(connStr string) (*PostgresArchive, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to connect to the archive database")
	}
	if _, err := db.Exec(createGameResultTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Unable to create game_result table")
	}
	return &PostgresArchive{db: db}, nil
}

func (p *PostgresArchive) RecordResult(summary game.GameSummary) error {
	result, err := toGameResult(summary)
	if err != nil {
		return err
	}
	res, err := p.db.NamedExec(insertGameResult, result)
	if err != nil {
		return errors.Wrapf(err, "Unable to archive game %s", summary.GameCode)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		archiveLogger.Warn().Str(logging.GameCodeKey, summary.GameCode).Msgf("Archived %d rows", n)
	}
	return nil
}

func (p *PostgresArchive) Recent(limit int) ([]GameResult, error) {
	if limit <= 0 {
		limit = 100
	}
	var results []GameResult
	if err := p.db.Select(&results, selectRecentResults, limit); err != nil {
		return nil, errors.Wrap(err, "sqlx Select returned an error")
	}
	return results, nil
}

func (p *PostgresArchive) Close() error {
	return p.db.Close()
}
