package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookgo/inject"
	"github.com/facebookgo/startstop"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/opsarena/meterage/config"
	"github.com/opsarena/meterage/health"
	"github.com/opsarena/meterage/internal/scheduler"
	"github.com/opsarena/meterage/logger"
	"github.com/opsarena/meterage/metrics"
	"github.com/opsarena/meterage/reporter"
)

// set at build time
var BuildID string

type graphLogger struct{}

func (g graphLogger) Debugf(format string, v ...interface{}) {
	fmt.Printf(format+"\n", v...)
}

func main() {
	opts, err := config.NewCmdEnvOptions(os.Args[1:])
	if err != nil {
		fmt.Printf("Command line parsing error '%s' -- call with --help for usage.\n", err)
		os.Exit(1)
	}

	version := BuildID
	if version == "" {
		version = "dev"
	}
	if opts.Version {
		fmt.Println("Version: " + version)
		os.Exit(0)
	}

	cfg, err := config.NewConfig(opts.ConfigLocations...)
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
	if err := opts.ApplyTo(cfg); err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
	if opts.Validate {
		fmt.Println("Config validated successfully.")
		os.Exit(0)
	}

	lgr := &logger.LogrusLogger{}
	clock := clockwork.NewRealClock()
	registry := &metrics.Registry{}

	var g inject.Graph
	if opts.Debug {
		g.Logger = graphLogger{}
	}
	err = g.Provide(
		&inject.Object{Value: cfg},
		&inject.Object{Value: lgr},
		&inject.Object{Value: clock},
		&inject.Object{Value: scheduler.New(clock)},
		&inject.Object{Value: registry},
		&inject.Object{Value: &health.Health{}},
		&inject.Object{Value: &reporter.Log{}},
		&inject.Object{Value: &reporter.CSV{}},
		&inject.Object{Value: &reporter.Prometheus{}},
		&inject.Object{Value: &reporter.OTel{}},
	)
	if err != nil {
		fmt.Printf("failed to provide injection graph. error: %+v\n", err)
		os.Exit(1)
	}
	if err := g.Populate(); err != nil {
		fmt.Printf("failed to populate injection graph. error: %+v\n", err)
		os.Exit(1)
	}

	// startstop needs a working logger before any component has started
	ststLogger := logrus.New()
	ststLogger.SetLevel(logrus.DebugLevel)

	defer startstop.Stop(g.Objects(), ststLogger)
	if err := startstop.Start(g.Objects(), ststLogger); err != nil {
		fmt.Printf("failed to start injected dependencies. error: %+v\n", err)
		os.Exit(1)
	}

	// simulate a workload so the reporters have something to show
	done := make(chan struct{})
	go simulate(registry, done)

	sigsToExit := make(chan os.Signal, 1)
	signal.Notify(sigsToExit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigsToExit
	close(done)
	lgr.Info().Logf("Caught signal \"%s\"", sig)
}

// simulate records a steady trickle of fake request measurements until done
// is closed.
func simulate(registry *metrics.Registry, done chan struct{}) {
	requests := registry.Meter("demo.requests")
	latency := registry.Timer("demo.latency")
	inflight := registry.Gauge("demo.inflight")
	errors := registry.Counter("demo.errors")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			requests.Mark(1)
			latency.Update(time.Duration(5+rng.Intn(95)) * time.Millisecond)
			inflight.Update(int64(rng.Intn(20)))
			if rng.Intn(100) == 0 {
				errors.Inc(1)
			}
		}
	}
}
