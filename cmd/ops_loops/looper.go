package main

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/opre/ops/cmd/ops_loops/tasks/projection"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/domain/ops"
	"github.com/opre/ops/pkg/loop"
	"github.com/opre/ops/pkg/loop/recurring"
	"github.com/opre/ops/pkg/metrics"
)

type LoggerOptions func(*log.Logger) *log.Logger

func byLogger(l *log.Logger, opt ...LoggerOptions) *log.Logger {
	for _, o := range opt {
		l = o(l)
	}
	return l
}

func Copied() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		c := log.New(l.Prefix())
		c.SetOutput(l.Output())
		c.SetLevel(l.Level())
		return c
	}
}

func WithPrefix(pre string) LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

func WithTimestamp() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetHeader("${time_rfc3339_nano} ${level} ${prefix}")
		return l
	}
}

// Wrapper for monitoring loop tasks
//
//	Log the start and end of each time a task is executed. Essentially, it executes a task.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		counter += 1
		timestamp := time.Now()

		logger.Debugf("task start: #0x%X", counter)
		defer func() {
			logger.Debugf(
				"task end: #0x%X (takes %s): %s with value = %#v",
				counter, time.Since(timestamp), next, ret,
			)
		}()

		ret, next = task(ctx, t)
		return
	}
}

// Manifest for starting a loop, which determines how the loop should behave.
type LoopManifest struct {
	Type domain.LoopType

	// Policy for the looping
	Policy recurring.Policy

	// Collector counts what loops did. It can be nil.
	Collector *metrics.Collector
}

// StartLoop runs the loop specified by the manifest until it stops.
func StartLoop(ctx context.Context, logger *log.Logger, db ops.Ops, manifest LoopManifest) error {
	switch manifest.Type {
	case domain.CANHistoryProjection:
		return StartCANHistoryProjectionLoop(ctx, logger, db, manifest)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownLoopType, manifest.Type)
	}
}

// Start CAN history projection loop
//
// Args:
//
// - ctx
//
// - logger : logger for monitoring loop.
//
// - db : OPS database
//
// - manifest
func StartCANHistoryProjectionLoop(
	ctx context.Context,
	logger *log.Logger,
	db ops.Ops,
	manifest LoopManifest,
) error {
	l := byLogger(logger, Copied(), WithPrefix("[can history projection loop]"), WithTimestamp())
	_, err := loop.Start(
		ctx, projection.Seed(),
		monitor(
			l,
			projection.Task(
				l, db.History().Database(), manifest.Collector,
			).Applied(manifest.Policy),
		),
		loop.WithTimeout(30*time.Second),
	)
	return err
}
