package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	newGameCounter           prometheus.Counter
	gameEndedCounter         prometheus.Counter
	roundEndedCounter        prometheus.Counter
	intentAcceptedCounter    prometheus.Counter
	intentRejectedCounter    *prometheus.CounterVec
	playTimeoutCounter       prometheus.Counter
	activeGamesMapCountGauge prometheus.Gauge
}

func (m *metrics) NewGame() {
	m.newGameCounter.Inc()
}

func (m *metrics) GameEnded() {
	m.gameEndedCounter.Inc()
}

func (m *metrics) RoundEnded() {
	m.roundEndedCounter.Inc()
}

func (m *metrics) IntentAccepted() {
	m.intentAcceptedCounter.Inc()
}

func (m *metrics) IntentRejected(code string) {
	m.intentRejectedCounter.WithLabelValues(code).Inc()
}

func (m *metrics) PlayTimedOut() {
	m.playTimeoutCounter.Inc()
}

func (m *metrics) SetActiveGamesMapCount(count int) {
	m.activeGamesMapCountGauge.Set(float64(count))
}

var Metrics = &metrics{
	newGameCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "new_games_total",
		Help: "Total number of games created",
	}),
	gameEndedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "games_ended_total",
		Help: "Total number of games that reached a result",
	}),
	roundEndedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "rounds_ended_total",
		Help: "Total number of scored rounds",
	}),
	intentAcceptedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "intents_accepted_total",
		Help: "Total number of player intents applied to a game",
	}),
	intentRejectedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intents_rejected_total",
		Help: "Total number of player intents rejected, by error code",
	}, []string{"code"}),
	playTimeoutCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "play_timeouts_total",
		Help: "Total number of default actions forced by the action timer",
	}),
	activeGamesMapCountGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_games_map_entries_count",
		Help: "Count of the entries in the game manager activeGames map",
	}),
}
