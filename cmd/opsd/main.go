package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opre/ops/cmd/opsd/handlers"
	configs "github.com/opre/ops/pkg/configs/server"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/domain/ops"
	"github.com/opre/ops/pkg/metrics"
	"github.com/opre/ops/pkg/utils/echoutil"
	"github.com/opre/ops/pkg/utils/filewatch"
	"github.com/opre/ops/pkg/utils/try"
)

func main() {
	logger := log.New(os.Stderr, "[opsd] ", log.LstdFlags)

	pconfig := flag.String("config", os.Getenv("OPS_SERVER_CONFIG"), "path to server config file")
	loglevel := flag.String("loglevel", "", "log level, overriding config. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	conf := try.To(configs.LoadServerConfig(*pconfig)).OrFatal(logger)
	if *loglevel == "" {
		*loglevel = conf.LogLevel()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	{
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			logger.Fatalf("can not watch configration: %s", err)
		}
		defer cancel()
		ctx = wctx
	}

	db := try.To(ops.New(
		ctx, conf.Database(), ops.WithSchemaRepository(conf.SchemaRepository()),
	)).OrFatal(logger)
	defer db.Close()

	{
		sctx, cancel := db.Schema().Database().Context(ctx)
		defer cancel()
		ctx = sctx
	}

	collector := metrics.NewMetricsCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collector,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := NewServer(db, conf.ApiRoot(), *loglevel, collector, registry)
	if err != nil {
		logger.Fatalf("api root %s is invalid url or path: %s", conf.ApiRoot(), err)
	}

	logger.Println("registred routes:")
	for _, r := range e.Routes() {
		logger.Println(r.Method, r.Path)
	}

	context.AfterFunc(ctx, func() {
		logger.Printf("shutting down: %s", context.Cause(ctx))
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			logger.Printf("error on shutdown: %s", err)
		}
	})

	addr := fmt.Sprintf(":%d", conf.Port())
	if cert, key := *pcert, *pkey; cert != "" && key != "" {
		err = e.StartTLS(addr, cert, key)
	} else {
		err = e.Start(addr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

// NewServer builds the API server. /metrics exposes the registry.
func NewServer(
	db ops.Ops, apiRoot string, loglevel string,
	collector *metrics.Collector, registry *prometheus.Registry,
) (*echo.Echo, error) {
	api, err := echoutil.Root(apiRoot)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.AddTrailingSlash())

	// set log
	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(err, c)
		e.Logger.Error(err)
	}
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithRequestId(req.Context(), id)))
		},
	}))
	e.Use(echoutil.LogHandlerFunc)
	e.Use(collector.Middleware())

	e.GET("/metrics/", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	Route(e, api, db, collector)
	return e, nil
}

// Route registers handlers of the API under api. Every route requires an acting user.
func Route(e *echo.Echo, api func(...string) string, db ops.Ops, collector *metrics.Collector) {
	actor := handlers.RequireActor

	{
		cans := db.CAN().Database()
		e.POST(api("cans"), handlers.CreateCANHandler(cans), actor)
		e.GET(api("cans/:id"), handlers.GetCANHandler(cans, "id"), actor)
		e.PATCH(api("cans/:id"), handlers.PatchCANHandler(cans, "id"), actor)
		e.POST(api("cans/:id/funding-budgets"), handlers.CreateFundingBudgetHandler(cans, "id"), actor)
		e.POST(api("cans/:id/funding-received"), handlers.CreateFundingReceivedHandler(cans, "id"), actor)
		e.PATCH(api("can-funding-budgets/:id"), handlers.PatchFundingBudgetHandler(cans, "id"), actor)
		e.GET(api("cans/:id/history"), handlers.GetCANHistoryHandler(db.History().Database(), "id"), actor)
	}

	{
		agreements := db.Agreement().Database()
		e.GET(api("agreements/:id"), handlers.GetAgreementHandler(agreements, "id"), actor)
		e.PATCH(api("agreements/:id"), handlers.PatchAgreementHandler(agreements, collector, "id"), actor)
		e.POST(
			api("agreements/:id/status-changes"),
			handlers.SubmitStatusChangeHandler(agreements, collector, "id"),
			actor,
		)
		e.GET(api("agreements/:id/procurement-tracker"), handlers.GetTrackerHandler(db.Tracker().Database(), "id"), actor)
	}

	{
		blis := db.BudgetLineItem().Database()
		e.POST(api("budget-line-items"), handlers.CreateBudgetLineItemHandler(blis), actor)
		e.GET(api("budget-line-items/:id"), handlers.GetBudgetLineItemHandler(blis, "id"), actor)
		e.PATCH(api("budget-line-items/:id"), handlers.PatchBudgetLineItemHandler(blis, collector, "id"), actor)
		e.DELETE(api("budget-line-items/:id"), handlers.DeleteBudgetLineItemHandler(blis, "id"), actor)
	}

	{
		crs := db.ChangeRequest().Database()
		e.GET(api("change-requests"), handlers.FindChangeRequestHandler(crs), actor)
		e.POST(api("change-requests/review"), handlers.BulkReviewHandler(crs, collector), actor)
		e.GET(api("change-requests/:id"), handlers.GetChangeRequestHandler(crs, "id"), actor)
		e.POST(api("change-requests/:id/review"), handlers.ReviewChangeRequestHandler(crs, collector, "id"), actor)

		wfs := db.Workflow().Database()
		e.GET(api("workflow-instances/:id"), handlers.GetWorkflowHandler(wfs, "id"), actor)
		e.POST(api("workflow-instances/:id/resubmit"), handlers.ResubmitWorkflowHandler(wfs, "id"), actor)
	}

	{
		trackers := db.Tracker().Database()
		e.POST(
			api("procurement-trackers/:id/steps/:step/complete"),
			handlers.CompleteStepHandler(trackers, collector, "id", "step"),
			actor,
		)
		e.PATCH(api("procurement-trackers/:id/steps/:step"), handlers.PatchStepHandler(trackers, "id", "step"), actor)
		e.PUT(api("procurement-trackers/:id/active"), handlers.SetTrackerActiveHandler(trackers, true, "id"), actor)
		e.DELETE(api("procurement-trackers/:id/active"), handlers.SetTrackerActiveHandler(trackers, false, "id"), actor)
	}

	{
		history := db.History().Database()
		e.GET(api("history"), handlers.FindDBHistoryHandler(history), actor)
		e.GET(api("ops-events"), handlers.FindEventsHandler(history), actor)

		notifications := db.Notification().Database()
		e.GET(api("users/:id/notifications"), handlers.FindNotificationHandler(notifications, "id"), actor)
		e.PUT(api("notifications/:id/ack"), handlers.AcknowledgeNotificationHandler(notifications, "id"), actor)
	}
}
