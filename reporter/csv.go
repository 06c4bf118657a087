package reporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/facebookgo/startstop"
	"github.com/jonboulle/clockwork"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/metrics"
)

// CSV appends one row per instrument per interval to a file named after the
// instrument in the configured directory. A header row is written when the
// reporter creates the file; rows survive process restarts because files are
// opened in append mode.
type CSV struct {
	Config    *config.Config      `inject:""`
	Logger    logger.Logger       `inject:""`
	Registry  *metrics.Registry   `inject:""`
	Clock     clockwork.Clock     `inject:""`
	Scheduler scheduler.Scheduler `inject:""`

	dir  string
	task scheduler.Canceler

	startstop.Starter
	startstop.Stopper
}

func (r *CSV) Start() error {
	if r.Logger == nil {
		r.Logger = &logger.NullLogger{}
	}
	if r.Clock == nil {
		r.Clock = clockwork.NewRealClock()
	}
	if r.Scheduler == nil {
		r.Scheduler = scheduler.New(r.Clock)
	}
	if !r.Config.Reporters.CSV.Enabled {
		return nil
	}
	r.dir = r.Config.Reporters.CSV.Directory
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	r.task = r.Scheduler.Every(r.Config.Reporters.CSV.Interval.Duration(), r.report)
	return nil
}

func (r *CSV) Stop() error {
	if r.task != nil {
		r.task.Stop()
	}
	return nil
}

func (r *CSV) report() {
	now := r.Clock.Now()
	r.Registry.Each(func(name string, inst any) {
		names, vals := columns(inst)
		if names == nil {
			return
		}
		if err := r.append(name, now, names, vals); err != nil {
			r.Logger.Warn().WithString("metric", name).WithField("error", err.Error()).
				Logf("failed to write csv report row")
		}
	})
}

func (r *CSV) append(name string, now time.Time, names []string, vals []float64) error {
	path := filepath.Join(r.dir, name+".csv")
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		header := append([]string{"t"}, names...)
		if err := w.Write(header); err != nil {
			return err
		}
	}
	row := make([]string, 0, len(vals)+1)
	row = append(row, strconv.FormatInt(now.Unix(), 10))
	for _, v := range vals {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
