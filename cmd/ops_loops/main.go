package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	configs "github.com/opre/ops/pkg/configs/loops"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/domain/ops"
	"github.com/opre/ops/pkg/loop/recurring"
	"github.com/opre/ops/pkg/metrics"
	"github.com/opre/ops/pkg/utils/args"
	"github.com/opre/ops/pkg/utils/echoutil"
	"github.com/opre/ops/pkg/utils/filewatch"
	"github.com/opre/ops/pkg/utils/try"
)

func main() {
	logger := log.New(os.Stderr, "[ops_loops] ", log.LstdFlags)
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	//-- path to config file
	pconfig := flag.String(
		"config", os.Getenv("OPS_LOOPS_CONFIG"), "path to config file",
	)
	//-- which loop type to run
	loopType := args.Parser(domain.AsLoopType)
	flag.Var(loopType, "type", "one of loop type (can_history_projection)")
	//-- loop policy
	policy := args.Parser(recurring.ParsePolicy)
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog).`+
			` "forever[:COOLDOWN]" = run forever until error. When backlog is over, `+
			`wait COOLDOWN (optional duration. default: 0) as inteval.`+
			` "backlog" = run until error or backlog is over.`+
			` When not given, the policy in config file is used.`,
	)
	loglevel := flag.String("loglevel", "", "log level, overriding config. debug|info|warn|error|off")
	pmetrics := flag.String("metrics", "", "address to serve /metrics (example: \":9090\"). not served when empty.")
	flag.Parse()

	if !loopType.IsSet() {
		logger.Fatal("-type is required")
	}

	{
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadLoopsConfig(*pconfig)).OrFatal(logger)
	if *loglevel == "" {
		*loglevel = conf.LogLevel()
	}

	db := try.To(ops.New(
		ctx, conf.Database(), ops.WithSchemaRepository(conf.SchemaRepository()),
	)).OrFatal(logger)
	defer db.Close()

	{
		sctx, ccan := db.Schema().Database().Context(ctx)
		defer ccan()
		ctx = sctx
	}

	p := policy.Or(conf.Policy(loopType.Value()))

	collector := metrics.NewMetricsCollector()
	if addr := *pmetrics; addr != "" {
		stop := serveMetrics(logger, addr, collector)
		defer stop()
	}

	looplogger := glog.New("ops_loops")
	if lvl, ok := echoutil.ParseLevel(*loglevel); ok {
		looplogger.SetLevel(lvl)
	} else {
		logger.Printf(`unknown loglevel "%s". fallback to warn.`, *loglevel)
		looplogger.SetLevel(glog.WARN)
	}

	logger.Printf(
		`start loop "%s" /w policy "%s"`,
		loopType.Value().String(), p.String(),
	)

	err := StartLoop(
		ctx, looplogger, db,
		LoopManifest{
			Type:      loopType.Value(),
			Policy:    recurring.UntilError(p),
			Collector: collector,
		},
	)

	if err == nil {
		return
	} else if errors.Is(err, context.Canceled) {
		logger.Fatal(err, " (loop context is cancelled by: ", context.Cause(ctx), ")")
	}
	logger.Fatal(err)
}

// serveMetrics exposes the collector at addr, and returns a function to stop serving.
func serveMetrics(logger *log.Logger, addr string, collector *metrics.Collector) func() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server stopped: %s", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			logger.Printf("error on shutdown metrics server: %s", err)
		}
	}
}
