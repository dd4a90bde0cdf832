package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
)

type Collector struct {
	reg *prometheus.Registry

	FetchTotal    *prometheus.CounterVec   // feed, result: ok|error
	FetchDuration *prometheus.HistogramVec // feed

	MergeEntities *prometheus.GaugeVec // kind: indexed|merged|duplicates|dropped_no_trip|dropped_no_match

	PollErrors        prometheus.Counter
	SnapshotTimestamp prometheus.Gauge // header timestamp of the latest snapshot
	PollInterval      prometheus.Gauge // seconds
}

func NewCollector(pollInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atrt_fetch_total",
			Help: "Realtime feed requests by feed and result.",
		}, []string{"feed", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atrt_fetch_duration_seconds",
			Help:    "Duration of realtime feed requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"feed"}),
		MergeEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "atrt_merge_entities",
			Help: "Entity counts of the latest merge.",
		}, []string{"kind"}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atrt_poll_errors_total",
			Help: "Total failed poll cycles.",
		}),
		SnapshotTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atrt_snapshot_timestamp_seconds",
			Help: "Feed header timestamp of the latest merged snapshot.",
		}),
		PollInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atrt_poll_interval_seconds",
			Help: "Poll interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.FetchTotal, c.FetchDuration,
		c.MergeEntities,
		c.PollErrors, c.SnapshotTimestamp, c.PollInterval,
	)

	c.PollInterval.Set(pollInterval.Seconds())

	return c
}

// FetchHook records every request made by a gtfsrt.Client.
func (c *Collector) FetchHook() gtfsrt.FetchHook {
	return func(feed string, elapsed time.Duration, err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.FetchTotal.WithLabelValues(feed, result).Inc()
		c.FetchDuration.WithLabelValues(feed).Observe(elapsed.Seconds())
	}
}

// ObserveMerge publishes the stats and header timestamp of a new snapshot.
func (c *Collector) ObserveMerge(combined *gtfsrt.Combined) {
	s := combined.Stats
	c.MergeEntities.WithLabelValues("indexed").Set(float64(s.Indexed))
	c.MergeEntities.WithLabelValues("merged").Set(float64(s.Merged))
	c.MergeEntities.WithLabelValues("duplicates").Set(float64(s.Duplicates))
	c.MergeEntities.WithLabelValues("dropped_no_trip").Set(float64(s.DroppedNoTrip))
	c.MergeEntities.WithLabelValues("dropped_no_match").Set(float64(s.DroppedNoMatch))
	if ts := combined.Header.Timestamp; ts != nil {
		c.SnapshotTimestamp.Set(*ts)
	}
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
