package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheus(reg)
	require.NoError(t, err)
	r := rec.(*prometheusRecorder)

	rec.RoundOrganized(4, 1, 0)
	rec.RoundOrganized(2, 0, 3)
	rec.GameResolved(OutcomeDraw)
	rec.GameResolved(OutcomeWhite)
	rec.GameResolved(OutcomeDraw)
	rec.ObserveHTTPRequest(http.MethodPost, "/tournaments/{tournamentID}/rounds/{round}", http.StatusCreated, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.roundsOrganized))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.gamesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.byesAwarded))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.playersUnpaired))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.gamesResolved.WithLabelValues(OutcomeDraw)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues(http.MethodPost, "/tournaments/{tournamentID}/rounds/{round}", "201")))
}

func TestNewPrometheusTwiceOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheus(reg)
	require.NoError(t, err)
	rec.GameResolved(OutcomeBlack)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `chess_league_games_resolved_total{outcome="black"} 1`)
}

func TestNoop(t *testing.T) {
	rec := NewNoop()
	assert.NotPanics(t, func() {
		rec.RoundOrganized(1, 1, 1)
		rec.GameResolved(OutcomeDraw)
		rec.ObserveHTTPRequest(http.MethodGet, "/ping", http.StatusOK, time.Millisecond)
	})
}
