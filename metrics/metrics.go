package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chess_league"

// Outcome labels for resolved games.
const (
	OutcomeWhite = "white"
	OutcomeBlack = "black"
	OutcomeDraw  = "draw"
)

type Recorder interface {
	RoundOrganized(games, byes, unpaired int)
	GameResolved(outcome string)
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

type prometheusRecorder struct {
	roundsOrganized prometheus.Counter
	gamesCreated    prometheus.Counter
	byesAwarded     prometheus.Counter
	playersUnpaired prometheus.Counter
	gamesResolved   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus registers the league collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (Recorder, error) {
	r := &prometheusRecorder{
		roundsOrganized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_organized_total",
			Help:      "Rounds whose pairings were materialized.",
		}),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_games_created_total",
			Help:      "Games created by round organization.",
		}),
		byesAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "byes_awarded_total",
			Help:      "Byes credited as wins.",
		}),
		playersUnpaired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_unpaired_total",
			Help:      "Players left out of a round because boards ran out.",
		}),
		gamesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_resolved_total",
			Help:      "Resolved games by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	collectors := []prometheus.Collector{
		r.roundsOrganized, r.gamesCreated, r.byesAwarded, r.playersUnpaired,
		r.gamesResolved, r.httpRequests, r.httpDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *prometheusRecorder) RoundOrganized(games, byes, unpaired int) {
	r.roundsOrganized.Inc()
	r.gamesCreated.Add(float64(games))
	r.byesAwarded.Add(float64(byes))
	r.playersUnpaired.Add(float64(unpaired))
}

func (r *prometheusRecorder) GameResolved(outcome string) {
	r.gamesResolved.WithLabelValues(outcome).Inc()
}

func (r *prometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler exposes the collectors registered on g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type noopRecorder struct{}

func NewNoop() Recorder { return noopRecorder{} }

func (noopRecorder) RoundOrganized(int, int, int) {}
func (noopRecorder) GameResolved(string) {}
func (noopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
