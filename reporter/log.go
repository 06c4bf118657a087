package reporter

import (
	"github.com/facebookgo/startstop"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/metrics"
)

// Log periodically walks a registry and emits one structured log entry per
// instrument, stats as fields.
type Log struct {
	Config    *config.Config      `inject:""`
	Logger    logger.Logger       `inject:""`
	Registry  *metrics.Registry   `inject:""`
	Scheduler scheduler.Scheduler `inject:""`

	task scheduler.Canceler

	startstop.Starter
	startstop.Stopper
}

func (r *Log) Start() error {
	if r.Logger == nil {
		r.Logger = &logger.NullLogger{}
	}
	if r.Scheduler == nil {
		r.Scheduler = scheduler.New(nil)
	}
	if !r.Config.Reporters.Log.Enabled {
		return nil
	}
	r.task = r.Scheduler.Every(r.Config.Reporters.Log.Interval.Duration(), r.report)
	return nil
}

func (r *Log) Stop() error {
	if r.task != nil {
		r.task.Stop()
	}
	return nil
}

func (r *Log) report() {
	r.Registry.Each(func(name string, inst any) {
		names, vals := columns(inst)
		if names == nil {
			return
		}
		fields := make(map[string]any, len(names))
		for i, n := range names {
			fields[n] = vals[i]
		}
		r.Logger.Info().WithString("metric", name).WithFields(fields).Logf("metrics report")
	})
}
