package reporter

import (
	"context"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/facebookgo/startstop"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/metrics"
	"github.com/opsarena/meterage/reservoir"
)

// OTel pushes the registry over OTLP/HTTP. Counters and meter counts go out
// as delta counters; gauge values, histogram snapshot statistics and meter
// rates go out as gauges, statistics distinguished by attribute. Histograms
// are pre-aggregated here, not raw, because the reservoir only retains a
// sample of the stream.
type OTel struct {
	Config    *config.Config      `inject:""`
	Logger    logger.Logger       `inject:""`
	Registry  *metrics.Registry   `inject:""`
	Scheduler scheduler.Scheduler `inject:""`

	meter        metric.Meter
	shutdownFunc func(ctx context.Context) error
	task         scheduler.Canceler

	// testReader substitutes for the periodic OTLP reader in tests
	testReader sdkmetric.Reader

	counters   sync.Map // map[string]metric.Int64Counter
	gauges     sync.Map // map[string]metric.Float64Gauge
	lastCounts sync.Map // map[string]int64

	startstop.Starter
	startstop.Stopper
}

func (r *OTel) Start() error {
	if r.Logger == nil {
		r.Logger = &logger.NullLogger{}
	}
	if r.Scheduler == nil {
		r.Scheduler = scheduler.New(nil)
	}
	cfg := r.Config.Reporters.OTel
	if !cfg.Enabled && r.testReader == nil {
		return nil
	}

	ctx := context.Background()

	reader := r.testReader
	if reader == nil {
		endpoint, err := url.Parse(cfg.Endpoint)
		if err != nil {
			r.Logger.Error().WithString("endpoint", cfg.Endpoint).Logf("failed to parse otel endpoint")
			return err
		}

		options := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(endpoint.Host),
			// deltas for counters so a collector restart doesn't replay
			// lifetime totals; everything else is a point-in-time gauge
			otlpmetrichttp.WithTemporalitySelector(func(ik sdkmetric.InstrumentKind) metricdata.Temporality {
				if ik == sdkmetric.InstrumentKindCounter {
					return metricdata.DeltaTemporality
				}
				return metricdata.CumulativeTemporality
			}),
		}
		if len(cfg.Headers) > 0 {
			options = append(options, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		if endpoint.Scheme == "http" {
			options = append(options, otlpmetrichttp.WithInsecure())
		}

		exporter, err := otlpmetrichttp.New(ctx, options...)
		if err != nil {
			return err
		}
		reader = sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.Interval.Duration()),
		)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(resource.Default().Attributes()...),
		resource.WithAttributes(attribute.String("service.name", "meterage")),
		resource.WithAttributes(attribute.String("host.name", hostname)),
	)
	if err != nil {
		return err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	r.meter = provider.Meter("meterage")
	r.shutdownFunc = provider.Shutdown

	r.task = r.Scheduler.Every(cfg.Interval.Duration(), r.report)
	return nil
}

func (r *OTel) Stop() error {
	if r.task != nil {
		r.task.Stop()
	}
	if r.shutdownFunc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.shutdownFunc(ctx)
}

// report records the current registry contents into the otel instruments.
// The reader exports them on its own cadence.
func (r *OTel) report() {
	ctx := context.Background()
	r.Registry.Each(func(name string, inst any) {
		switch m := inst.(type) {
		case metrics.Timer:
			r.recordSnapshot(ctx, name, m.Snapshot())
			r.recordRates(ctx, name, m.Rate1(), m.Rate5(), m.Rate15())
			r.recordCount(ctx, name, m.Count())
		case metrics.Histogram:
			r.recordSnapshot(ctx, name, m.Snapshot())
			r.recordCount(ctx, name, m.Count())
		case metrics.Meter:
			r.recordRates(ctx, name, m.Rate1(), m.Rate5(), m.Rate15())
			r.recordCount(ctx, name, m.Count())
		case metrics.Counter:
			r.recordCount(ctx, name, m.Count())
		case metrics.GaugeFloat64:
			r.gauge(name).Record(ctx, m.Value())
		case metrics.Gauge:
			r.gauge(name).Record(ctx, float64(m.Value()))
		}
	})
}

func (r *OTel) recordSnapshot(ctx context.Context, name string, snap *reservoir.Snapshot) {
	g := r.gauge(name)
	record := func(stat string, v float64) {
		g.Record(ctx, v, metric.WithAttributes(attribute.String("statistic", stat)))
	}
	record("min", float64(snap.Min()))
	record("max", float64(snap.Max()))
	record("mean", snap.Mean())
	record("stddev", snap.StdDev())
	for i, v := range snap.Percentiles(quantiles) {
		record(quantileNames[i], v)
	}
}

func (r *OTel) recordRates(ctx context.Context, name string, r1, r5, r15 float64) {
	g := r.gauge(name + ".rate")
	g.Record(ctx, r1, metric.WithAttributes(attribute.String("window", "1m")))
	g.Record(ctx, r5, metric.WithAttributes(attribute.String("window", "5m")))
	g.Record(ctx, r15, metric.WithAttributes(attribute.String("window", "15m")))
}

// recordCount adds the delta since the previous report so the exported
// counter stream matches what actually happened in the interval.
func (r *OTel) recordCount(ctx context.Context, name string, count int64) {
	last, _ := r.lastCounts.Swap(name, count)
	var prev int64
	if last != nil {
		prev = last.(int64)
	}
	delta := count - prev
	if delta < 0 {
		// instrument was cleared; restart the series
		delta = count
	}
	c := r.counter(name + ".count")
	c.Add(ctx, delta)
}

func (r *OTel) gauge(name string) metric.Float64Gauge {
	if g, ok := r.gauges.Load(name); ok {
		return g.(metric.Float64Gauge)
	}
	g, err := r.meter.Float64Gauge(name)
	if err != nil {
		r.Logger.Error().WithString("metric", name).WithField("error", err.Error()).
			Logf("failed to create otel gauge")
		g, _ = noop.Meter{}.Float64Gauge(name)
	}
	actual, _ := r.gauges.LoadOrStore(name, g)
	return actual.(metric.Float64Gauge)
}

func (r *OTel) counter(name string) metric.Int64Counter {
	if c, ok := r.counters.Load(name); ok {
		return c.(metric.Int64Counter)
	}
	c, err := r.meter.Int64Counter(name)
	if err != nil {
		r.Logger.Error().WithString("metric", name).WithField("error", err.Error()).
			Logf("failed to create otel counter")
		c, _ = noop.Meter{}.Int64Counter(name)
	}
	actual, _ := r.counters.LoadOrStore(name, c)
	return actual.(metric.Int64Counter)
}
