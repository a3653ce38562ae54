package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	kagreement "github.com/opre/ops/pkg/domain/agreement/db"
	kpgagreement "github.com/opre/ops/pkg/domain/agreement/db/postgres"
	kbli "github.com/opre/ops/pkg/domain/budgetlineitem/db"
	kpgbli "github.com/opre/ops/pkg/domain/budgetlineitem/db/postgres"
	kcan "github.com/opre/ops/pkg/domain/can/db"
	kpgcan "github.com/opre/ops/pkg/domain/can/db/postgres"
	kcr "github.com/opre/ops/pkg/domain/changerequest/db"
	kpgcr "github.com/opre/ops/pkg/domain/changerequest/db/postgres"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	kpghistory "github.com/opre/ops/pkg/domain/history/db/postgres"
	knotification "github.com/opre/ops/pkg/domain/notification/db"
	kpgnotification "github.com/opre/ops/pkg/domain/notification/db/postgres"
	dbInterface "github.com/opre/ops/pkg/domain/ops/db"
	kschema "github.com/opre/ops/pkg/domain/schema/db"
	kpgschema "github.com/opre/ops/pkg/domain/schema/db/postgres"
	ktracker "github.com/opre/ops/pkg/domain/tracker/db"
	kpgtracker "github.com/opre/ops/pkg/domain/tracker/db/postgres"
	kworkflow "github.com/opre/ops/pkg/domain/workflow/db"
	kpgworkflow "github.com/opre/ops/pkg/domain/workflow/db/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

type opsDBPostgres struct {
	pool *pgxpool.Pool

	can            kcan.Interface
	agreement      kagreement.Interface
	budgetLineItem kbli.Interface
	changeRequest  kcr.Interface
	workflow       kworkflow.Interface
	tracker        ktracker.Interface
	notification   knotification.Interface
	history        khistory.Interface
	schema         kschema.Interface
}

type Config struct {
	SchemaRepository string
}

func DefaultConfig() Config {
	return Config{}
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.OpsDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	p := kpool.Wrap(pool)
	var schema kschema.Interface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &opsDBPostgres{
		pool:           pool,
		can:            kpgcan.New(p),
		agreement:      kpgagreement.New(p),
		budgetLineItem: kpgbli.New(p),
		changeRequest:  kpgcr.New(p),
		workflow:       kpgworkflow.New(p),
		tracker:        kpgtracker.New(p),
		notification:   kpgnotification.New(p),
		history:        kpghistory.New(p),
		schema:         schema,
	}, nil
}

func (o *opsDBPostgres) CAN() kcan.Interface {
	return o.can
}

func (o *opsDBPostgres) Agreement() kagreement.Interface {
	return o.agreement
}

func (o *opsDBPostgres) BudgetLineItem() kbli.Interface {
	return o.budgetLineItem
}

func (o *opsDBPostgres) ChangeRequest() kcr.Interface {
	return o.changeRequest
}

func (o *opsDBPostgres) Workflow() kworkflow.Interface {
	return o.workflow
}

func (o *opsDBPostgres) Tracker() ktracker.Interface {
	return o.tracker
}

func (o *opsDBPostgres) Notification() knotification.Interface {
	return o.notification
}

func (o *opsDBPostgres) History() khistory.Interface {
	return o.history
}

func (o *opsDBPostgres) Schema() kschema.Interface {
	return o.schema
}

func (o *opsDBPostgres) Close() error {
	o.pool.Close()
	return nil
}
