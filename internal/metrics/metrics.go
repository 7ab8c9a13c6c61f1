package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

const (
	StatusApplied = "applied"
	StatusStale   = "stale"
	StatusError   = "error"
)

type Metrics struct {
	CyclesTotal   *prometheus.CounterVec
	ChangedRows   *prometheus.GaugeVec
	CycleDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wls",
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"leaderboard_id", "status"}),
		ChangedRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "wls",
			Subsystem: "poller",
			Name:      "changed_rows",
			Help:      "Rows flagged as changed in the last applied cycle.",
		}, []string{"leaderboard_id"}),
		CycleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wls",
			Subsystem: "poller",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one full unified fetch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"leaderboard_id"}),
	}
}

var Module = fx.Provide(New)
