package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opre/ops/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ops"

// Collector is a prometheus.Collector of the budget workflow.
//
// Methods of a nil *Collector do nothing.
type Collector struct {
	changeRequestsOpened *prometheus.CounterVec
	reviews              *prometheus.CounterVec
	workflowDecisions    *prometheus.CounterVec
	stepsCompleted       *prometheus.CounterVec
	historyProjected     prometheus.Counter
	eventsProjected      prometheus.Counter
	requestDuration      *prometheus.HistogramVec
}

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		changeRequestsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "change_requests_opened_total",
				Help:      "The number of change requests opened.",
			}, []string{"type"},
		),
		reviews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "change_request_reviews_total",
				Help:      "The number of reviews of change requests.",
			}, []string{"decision"},
		),
		workflowDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "workflow_decisions_total",
				Help:      "The number of workflow decisions, by workflow status after the decision.",
			}, []string{"status"},
		),
		stepsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "procurement_steps_completed_total",
				Help:      "The number of procurement tracker steps completed.",
			}, []string{"step_type"},
		),
		historyProjected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "can_history_projected_total",
				Help:      "The number of CAN history items projected from events.",
			},
		),
		eventsProjected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_projected_total",
				Help:      "The number of events consumed by the CAN history projection.",
			},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve API requests.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"method", "route", "code"},
		),
	}
}

// ChangeRequestsOpened counts opened change requests by type.
func (c *Collector) ChangeRequestsOpened(crs ...domain.ChangeRequest) {
	if c == nil {
		return
	}
	for _, cr := range crs {
		c.changeRequestsOpened.WithLabelValues(string(cr.Type)).Inc()
	}
}

// Reviewed counts a review and the workflow status it led to.
func (c *Collector) Reviewed(decision domain.ReviewDecision, r domain.Review) {
	if c == nil {
		return
	}
	c.reviews.WithLabelValues(decision.String()).Inc()
	c.workflowDecisions.WithLabelValues(r.Workflow.Status.String()).Inc()
}

// StepCompleted counts a completed procurement step.
func (c *Collector) StepCompleted(stepType domain.ProcurementStepType) {
	if c == nil {
		return
	}
	c.stepsCompleted.WithLabelValues(string(stepType)).Inc()
}

// Projected counts an event consumed by the projection and the items it produced.
func (c *Collector) Projected(items int) {
	if c == nil {
		return
	}
	c.eventsProjected.Inc()
	c.historyProjected.Add(float64(items))
}

// Middleware observes duration of requests, labeled by the route pattern.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c == nil {
				return next(ctx)
			}
			start := time.Now()
			err := next(ctx)

			code := ctx.Response().Status
			if herr, ok := err.(*echo.HTTPError); ok {
				code = herr.Code
			}
			c.requestDuration.WithLabelValues(
				ctx.Request().Method, ctx.Path(), strconv.Itoa(code),
			).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.changeRequestsOpened.Describe(ch)
	c.reviews.Describe(ch)
	c.workflowDecisions.Describe(ch)
	c.stepsCompleted.Describe(ch)
	c.historyProjected.Describe(ch)
	c.eventsProjected.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.changeRequestsOpened.Collect(ch)
	c.reviews.Collect(ch)
	c.workflowDecisions.Collect(ch)
	c.stepsCompleted.Collect(ch)
	c.historyProjected.Collect(ch)
	c.eventsProjected.Collect(ch)
	c.requestDuration.Collect(ch)
}
