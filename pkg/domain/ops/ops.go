package ops

import (
	"context"

	"github.com/opre/ops/pkg/domain/agreement"
	"github.com/opre/ops/pkg/domain/budgetlineitem"
	"github.com/opre/ops/pkg/domain/can"
	"github.com/opre/ops/pkg/domain/changerequest"
	"github.com/opre/ops/pkg/domain/history"
	"github.com/opre/ops/pkg/domain/notification"
	dbInterface "github.com/opre/ops/pkg/domain/ops/db"
	"github.com/opre/ops/pkg/domain/ops/db/postgres"
	"github.com/opre/ops/pkg/domain/schema"
	"github.com/opre/ops/pkg/domain/tracker"
	"github.com/opre/ops/pkg/domain/workflow"
)

// Ops is the entry point of the budget domain.
type Ops interface {
	CAN() can.Interface
	Agreement() agreement.Interface
	BudgetLineItem() budgetlineitem.Interface
	ChangeRequest() changerequest.Interface
	Workflow() workflow.Interface
	Tracker() tracker.Interface
	Notification() notification.Interface
	History() history.Interface
	Schema() schema.Interface

	// Close releases the database connections.
	Close() error
}

type ops struct {
	database dbInterface.OpsDatabase

	can            can.Interface
	agreement      agreement.Interface
	budgetLineItem budgetlineitem.Interface
	changeRequest  changerequest.Interface
	workflow       workflow.Interface
	tracker        tracker.Interface
	notification   notification.Interface
	history        history.Interface
	schema         schema.Interface
}

// New connects to the database at dburi.
func New(ctx context.Context, dburi string, options ...Option) (Ops, error) {
	opt := &_options{}
	for _, o := range options {
		o(opt)
	}

	pg, err := postgres.New(ctx, dburi, opt.pg...)
	if err != nil {
		return nil, err
	}
	return Wrap(pg), nil
}

// Wrap builds Ops over the database.
func Wrap(database dbInterface.OpsDatabase) Ops {
	return &ops{
		database: database,

		can:            can.New(database.CAN()),
		agreement:      agreement.New(database.Agreement()),
		budgetLineItem: budgetlineitem.New(database.BudgetLineItem()),
		changeRequest:  changerequest.New(database.ChangeRequest()),
		workflow:       workflow.New(database.Workflow()),
		tracker:        tracker.New(database.Tracker()),
		notification:   notification.New(database.Notification()),
		history:        history.New(database.History()),
		schema:         schema.New(database.Schema()),
	}
}

type Option func(*_options)

type _options struct {
	pg []postgres.Option
}

func WithSchemaRepository(repository string) Option {
	return func(o *_options) {
		o.pg = append(o.pg, postgres.WithSchemaRepository(repository))
	}
}

func (o *ops) CAN() can.Interface {
	return o.can
}

func (o *ops) Agreement() agreement.Interface {
	return o.agreement
}

func (o *ops) BudgetLineItem() budgetlineitem.Interface {
	return o.budgetLineItem
}

func (o *ops) ChangeRequest() changerequest.Interface {
	return o.changeRequest
}

func (o *ops) Workflow() workflow.Interface {
	return o.workflow
}

func (o *ops) Tracker() tracker.Interface {
	return o.tracker
}

func (o *ops) Notification() notification.Interface {
	return o.notification
}

func (o *ops) History() history.Interface {
	return o.history
}

func (o *ops) Schema() schema.Interface {
	return o.schema
}

func (o *ops) Close() error {
	return o.database.Close()
}
