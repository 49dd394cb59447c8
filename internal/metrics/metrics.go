package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/models"
)

// Recorder turns draft controller events into Prometheus series
type Recorder struct {
	registry    *prometheus.Registry
	events      *prometheus.CounterVec
	picks       *prometheus.CounterVec
	drafts      *prometheus.CounterVec
	candidates  prometheus.Histogram
	spread      prometheus.Gauge
	httpLatency *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "team_draft",
			Name:      "events_total",
			Help:      "Draft controller events by type.",
		}, []string{"type"}),
		picks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "team_draft",
			Name:      "picks_total",
			Help:      "Committed picks by tier and mode.",
		}, []string{"tier", "mode"}),
		drafts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "team_draft",
			Name:      "drafts_completed_total",
			Help:      "Completed drafts by mode.",
		}, []string{"mode"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "team_draft",
			Name:      "spin_candidates",
			Help:      "Eligible teams per spin.",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
		spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "team_draft",
			Name:      "last_score_spread",
			Help:      "Highest minus lowest team score of the last completed draft.",
		}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "team_draft",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	r.registry.MustRegister(
		r.events, r.picks, r.drafts, r.candidates, r.spread, r.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one controller event
func (r *Recorder) Observe(ev draft.Event) {
	r.events.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case draft.EventSpin:
		if ev.Spin != nil {
			r.candidates.Observe(float64(len(ev.Spin.Candidates)))
		}
	case draft.EventPick:
		if ev.Pick != nil {
			r.picks.WithLabelValues(string(ev.Pick.Player.Tier), string(ev.Mode)).Inc()
		}
	case draft.EventComplete:
		if ev.Roster != nil {
			r.drafts.WithLabelValues(string(ev.Roster.Mode)).Inc()
			r.spread.Set(float64(ScoreSpread(ev.Roster.Teams)))
		}
	}
}

// ObserveHTTP records the latency of one request
func (r *Recorder) ObserveHTTP(route, method string, status int, seconds float64) {
	r.httpLatency.WithLabelValues(route, method, strconv.Itoa(status)).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry for tests and extra collectors
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ScoreSpread is the gap between the strongest and weakest team
func ScoreSpread(teams []models.Team) int {
	if len(teams) == 0 {
		return 0
	}
	scores := lo.Map(teams, func(t models.Team, _ int) int { return t.Score })
	return lo.Max(scores) - lo.Min(scores)
}
