package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// Page selects a window of a listing.
type Page struct {
	// Limit is the max number of items. Non-positive means DefaultLimit.
	// Values above MaxLimit are cut down to MaxLimit.
	Limit int

	// Offset is the number of items skipped.
	Offset int
}

// Normalized returns the page with defaults applied.
func (p Page) Normalized() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if MaxLimit < p.Limit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type Interface interface {
	// DBHistory returns history of the row, newest first.
	//
	// Args
	//
	// - context.Context
	//
	// - string: class name of the row, like "BudgetLineItem".
	//
	// - string: key of the row.
	//
	// - Page
	DBHistory(ctx context.Context, className string, rowKey string, page Page) ([]domain.OpsDBHistory, error)

	// Events returns events of the type, newest first.
	//
	// Args
	//
	// - context.Context
	//
	// - domain.OpsEventType: type of events. Empty means any type.
	//
	// - int: max number of events. Non-positive means DefaultLimit.
	Events(ctx context.Context, eventType domain.OpsEventType, limit int) ([]domain.OpsEvent, error)

	// CANHistory returns history items of the CAN, newest first.
	//
	// Args
	//
	// - context.Context
	//
	// - int: CAN id
	//
	// - int: fiscal year. 0 means every year.
	//
	// - Page
	CANHistory(ctx context.Context, canId int, fiscalYear int, page Page) ([]domain.CANHistory, error)

	// ProjectNext projects the next event after the cursor of the loop into CAN history.
	//
	// Events are read in id order. The cursor is advanced in the same transaction as
	// the projected items are written, so each event is projected exactly once.
	//
	// Args
	//
	// - context.Context
	//
	// - func(domain.OpsEvent, []domain.CANHistory) error: called with the event and items
	// projected from it, before commit. When it returns an error, nothing is committed.
	// The items are durable only once ProjectNext returns with no error.
	//
	// Returns
	//
	// - bool: true when an event is consumed. false when no event is left.
	//
	// - error
	ProjectNext(ctx context.Context, f func(domain.OpsEvent, []domain.CANHistory) error) (bool, error)
}
