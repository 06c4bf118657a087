package reporter

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/facebookgo/startstop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/metrics"
	"github.com/opsarena/meterage/reservoir"
)

// Prometheus serves the registry in exposition format on /metrics. The
// translation happens at scrape time: counters and meters become prometheus
// counters, gauges become gauges, and histogram snapshots become summaries
// with the canonical quantiles.
type Prometheus struct {
	Config   *config.Config    `inject:""`
	Logger   logger.Logger     `inject:""`
	Registry *metrics.Registry `inject:""`

	server *http.Server

	startstop.Starter
	startstop.Stopper
}

func (r *Prometheus) Start() error {
	if r.Logger == nil {
		r.Logger = &logger.NullLogger{}
	}
	if !r.Config.Reporters.Prometheus.Enabled {
		return nil
	}

	promReg := prometheus.NewRegistry()
	if err := promReg.Register(&collector{registry: r.Registry}); err != nil {
		return err
	}

	muxxer := mux.NewRouter()
	muxxer.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	r.server = &http.Server{
		Addr:    r.Config.Reporters.Prometheus.ListenAddr,
		Handler: muxxer,
	}
	r.Logger.Info().WithString("addr", r.server.Addr).Logf("serving prometheus metrics")
	go func() {
		err := r.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			r.Logger.Error().WithField("error", err.Error()).Logf("prometheus listener failed")
		}
	}()
	return nil
}

func (r *Prometheus) Stop() error {
	if r.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}

// collector adapts a metrics.Registry to the prometheus scrape model. It is
// unchecked (no Describe output) because the instrument set changes at
// runtime as code registers new names.
type collector struct {
	registry *metrics.Registry
}

var _ prometheus.Collector = (*collector)(nil)

func (c *collector) Describe(chan<- *prometheus.Desc) {}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	c.registry.Each(func(name string, inst any) {
		base := sanitize(name)
		switch m := inst.(type) {
		case metrics.Timer:
			ch <- summary(base, m.Count(), m.Snapshot())
			ch <- constGauge(base+"_rate_1m", m.Rate1())
			ch <- constGauge(base+"_rate_5m", m.Rate5())
			ch <- constGauge(base+"_rate_15m", m.Rate15())
		case metrics.Histogram:
			ch <- summary(base, m.Count(), m.Snapshot())
		case metrics.Meter:
			ch <- constCounter(base+"_total", float64(m.Count()))
			ch <- constGauge(base+"_rate_1m", m.Rate1())
			ch <- constGauge(base+"_rate_5m", m.Rate5())
			ch <- constGauge(base+"_rate_15m", m.Rate15())
		case metrics.Counter:
			ch <- constCounter(base+"_total", float64(m.Count()))
		case metrics.GaugeFloat64:
			ch <- constGauge(base, m.Value())
		case metrics.Gauge:
			ch <- constGauge(base, float64(m.Value()))
		}
	})
}

func constCounter(name string, v float64) prometheus.Metric {
	return prometheus.MustNewConstMetric(
		prometheus.NewDesc(name, name, nil, nil), prometheus.CounterValue, v)
}

func constGauge(name string, v float64) prometheus.Metric {
	return prometheus.MustNewConstMetric(
		prometheus.NewDesc(name, name, nil, nil), prometheus.GaugeValue, v)
}

func summary(name string, count int64, snap *reservoir.Snapshot) prometheus.Metric {
	qs := make(map[float64]float64, len(quantiles))
	for i, v := range snap.Percentiles(quantiles) {
		qs[quantiles[i]] = v
	}
	return prometheus.MustNewConstSummary(
		prometheus.NewDesc(name, name, nil, nil),
		uint64(count), float64(snap.Sum()), qs)
}

// sanitize maps an instrument name onto the prometheus name charset.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
}
