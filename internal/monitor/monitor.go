// Package monitor exposes wager and connection metrics to Prometheus.
package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casino-lobby/internal/models"
)

type Metrics struct {
	BetsPlaced      *prometheus.CounterVec
	BetsRejected    *prometheus.CounterVec
	AmountWagered   *prometheus.CounterVec
	WagersSettled   *prometheus.CounterVec
	AmountPaid      *prometheus.CounterVec
	CreditsIssued   *prometheus.CounterVec
	ActiveSessions  *prometheus.GaugeVec
	OnlinePlayers   prometheus.Gauge
	RequestLatency  *prometheus.HistogramVec
	PayoutMultiples *prometheus.HistogramVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BetsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_placed_total",
			Help:      "Number of accepted bets",
		}, []string{"game"}),
		BetsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_rejected_total",
			Help:      "Number of rejected bets by reason",
		}, []string{"game", "reason"}),
		AmountWagered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_wagered_total",
			Help:      "Credits debited for accepted bets",
		}, []string{"game"}),
		WagersSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wagers_settled_total",
			Help:      "Number of settled wagers by result",
		}, []string{"game", "result"}),
		AmountPaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_paid_total",
			Help:      "Credits paid out on settled wagers",
		}, []string{"game"}),
		CreditsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_issued_total",
			Help:      "Credits added to wallets by source",
		}, []string{"source"}),
		ActiveSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions waiting for settlement",
		}, []string{"game"}),
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected websocket clients",
		}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"route", "status"}),
		PayoutMultiples: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payout_multiple",
			Help:      "Payout as a multiple of the stake",
			Buckets:   []float64{0, 1, 1.5, 2, 3, 5, 10, 50, 100, 1000},
		}, []string{"game"}),
	}
}

// Monitor owns a private registry so several can coexist in tests.
type Monitor struct {
	metrics  *Metrics
	registry *prometheus.Registry
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:  NewMetrics(namespace),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.metrics.BetsPlaced,
		m.metrics.BetsRejected,
		m.metrics.AmountWagered,
		m.metrics.WagersSettled,
		m.metrics.AmountPaid,
		m.metrics.CreditsIssued,
		m.metrics.ActiveSessions,
		m.metrics.OnlinePlayers,
		m.metrics.RequestLatency,
		m.metrics.PayoutMultiples,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Monitor) Metrics() *Metrics { return m.metrics }

func (m *Monitor) Registry() *prometheus.Registry { return m.registry }

func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) BetPlaced(game models.GameID, amount int64) {
	m.metrics.BetsPlaced.WithLabelValues(string(game)).Inc()
	m.metrics.AmountWagered.WithLabelValues(string(game)).Add(float64(amount))
}

func (m *Monitor) BetRejected(game models.GameID, reason string) {
	label := string(game)
	if !game.Valid() {
		// Game ids come straight from requests.
		label = "unknown"
	}
	m.metrics.BetsRejected.WithLabelValues(label, reason).Inc()
}

func (m *Monitor) Settled(rec models.WagerRecord) {
	game := string(rec.GameID)
	m.metrics.WagersSettled.WithLabelValues(game, string(rec.Result)).Inc()
	if rec.Payout > 0 {
		m.metrics.AmountPaid.WithLabelValues(game).Add(float64(rec.Payout))
	}
	if rec.Amount > 0 {
		m.metrics.PayoutMultiples.WithLabelValues(game).Observe(float64(rec.Payout) / float64(rec.Amount))
	}
}

func (m *Monitor) SessionOpened(game models.GameID) {
	m.metrics.ActiveSessions.WithLabelValues(string(game)).Inc()
}

func (m *Monitor) SessionClosed(game models.GameID) {
	m.metrics.ActiveSessions.WithLabelValues(string(game)).Dec()
}

func (m *Monitor) Credited(source string, amount int64) {
	m.metrics.CreditsIssued.WithLabelValues(source).Add(float64(amount))
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

// GinMiddleware observes request latency by route template.
func (m *Monitor) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.metrics.RequestLatency.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
