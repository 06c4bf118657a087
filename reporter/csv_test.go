package reporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/internal/scheduler"
)

func TestCSVReporter(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Reporters.CSV.Enabled = true
	cfg.Reporters.CSV.Directory = dir
	reg, _ := newPopulatedRegistry(t, cfg)

	sched := &scheduler.Manual{}
	r := &CSV{
		Config:    cfg,
		Registry:  reg,
		Clock:     clockwork.NewFakeClock(),
		Scheduler: sched,
	}
	require.NoError(t, r.Start())
	defer r.Stop()

	sched.Fire()
	sched.Fire()

	f, err := os.Open(filepath.Join(dir, "requests.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// header plus one row per interval
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"t", "count"}, rows[0])
	assert.Equal(t, "42", rows[1][1])

	// every instrument got its own file
	for _, name := range []string{"queue.depth", "load", "sizes", "events", "handler"} {
		_, err := os.Stat(filepath.Join(dir, name+".csv"))
		assert.NoError(t, err, name)
	}
}

func TestCSVReporterDisabled(t *testing.T) {
	cfg := config.Default()
	reg, _ := newPopulatedRegistry(t, cfg)

	sched := &scheduler.Manual{}
	r := &CSV{
		Config:    cfg,
		Registry:  reg,
		Scheduler: sched,
	}
	require.NoError(t, r.Start())
	defer r.Stop()
	assert.Equal(t, 0, sched.TaskCount())
}
