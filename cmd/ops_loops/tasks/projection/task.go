package projection

import (
	"context"

	"github.com/labstack/gommon/log"
	"github.com/opre/ops/pkg/domain"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	"github.com/opre/ops/pkg/loop/recurring"
	"github.com/opre/ops/pkg/metrics"
)

// initial value for task
func Seed() struct{} {
	return struct{}{}
}

// return:
//
// - task : projecting the next OpsEvent into CAN history.
//
// collector may be nil.
func Task(logger *log.Logger, dbhistory khistory.Interface, collector *metrics.Collector) recurring.Task[struct{}] {
	return func(ctx context.Context, value struct{}) (struct{}, bool, error) {
		logger.Debug("checking...")
		var projected *domain.OpsEvent
		var items []domain.CANHistory
		consumed, err := dbhistory.ProjectNext(
			ctx,
			func(ev domain.OpsEvent, its []domain.CANHistory) error {
				projected, items = &ev, its
				return nil
			},
		)
		switch {
		case err != nil:
			logger.Errorf("projection failed: %s", err)
		case !consumed:
			logger.Debug("nothing new.")
		case projected != nil:
			// counted after commit: ProjectNext has returned without error.
			logger.Infof(
				"projected: event #%d (%s, %s) -> %d history item(s)",
				projected.Id, projected.EventType, projected.EventStatus, len(items),
			)
			collector.Projected(len(items))
		}

		return value, consumed, err
	}
}
