package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgtype"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	xe "github.com/opre/ops/pkg/errors"
)

// EventLock is the advisory lock key between transactions writing ops_event and
// readers of ops_event in id order.
//
// Writers hold it shared for their whole transaction. Readers take it exclusively,
// so that no event id below the largest visible one is still uncommitted.
const EventLock = 0x6f707365

// Op describes a mutating operation to be recorded as an OpsEvent.
type Op struct {
	Actor     int
	EventType domain.OpsEventType
	RequestId string
}

// Recorder writes OpsDBHistory of rows changed in the operation.
type Recorder struct {
	tx      kpool.Tx
	actor   int
	now     time.Time
	eventId int
}

// Now is the time of the operation.
func (r *Recorder) Now() time.Time {
	return r.now
}

// Today is the date of the operation.
func (r *Recorder) Today() domain.Date {
	return domain.DateOf(r.now)
}

func (r *Recorder) Actor() int {
	return r.actor
}

func (r *Recorder) Tx() kpool.Tx {
	return r.tx
}

// New records a created row.
func (r *Recorder) New(ctx context.Context, className string, key int, row domain.Snapshotter) error {
	return r.write(ctx, domain.NewRowHistory(className, key, row))
}

// Updated records an updated row. Rows without changes are not recorded.
func (r *Recorder) Updated(ctx context.Context, className string, key int, old, new domain.Snapshotter) (domain.Changes, error) {
	h, ok := domain.UpdatedRowHistory(className, key, old, new)
	if !ok {
		return nil, nil
	}
	return h.Changes, r.write(ctx, h)
}

// Deleted records a deleted row.
func (r *Recorder) Deleted(ctx context.Context, className string, key int, row domain.Snapshotter) error {
	return r.write(ctx, domain.DeletedRowHistory(className, key, row))
}

func (r *Recorder) write(ctx context.Context, h domain.OpsDBHistory) error {
	changes, err := JSONB(h.Changes)
	if err != nil {
		return xe.Wrap(err)
	}
	_, err = r.tx.Exec(
		ctx,
		`
		insert into "ops_db_history"
			("event_type", "class_name", "row_key", "changes", "created_by", "created_on", "ops_event_id")
		values ($1, $2, $3, $4, $5, $6, $7)
		`,
		string(h.EventType), h.ClassName, h.RowKey, changes, r.actor, r.now, r.eventId,
	)
	return xe.Wrap(err)
}

// Now returns the current time in the precision of postgres timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Run runs f as an operation in a transaction and records it as an OpsEvent.
//
// The event is created UNKNOWN at the beginning of the transaction, and becomes SUCCESS
// with details returned from f. When f or the commit fails, the transaction is rolled back
// and a FAILED event with the error message is recorded in another transaction.
//
// # Return
//
// - domain.OpsEvent: the event recorded.
//
// - error: the error from f, or from the database.
func Run(
	ctx context.Context, pool kpool.Pool, op Op,
	f func(context.Context, *Recorder) (domain.EventDetails, error),
) (domain.OpsEvent, error) {
	now := Now()

	ev := domain.OpsEvent{
		EventType: op.EventType,
		CreatedBy: op.Actor,
		CreatedOn: now,
	}

	err := kpool.InTx(ctx, pool, func(tx kpool.Tx) error {
		if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock_shared($1)`, EventLock); err != nil {
			return xe.Wrap(err)
		}

		if err := tx.QueryRow(
			ctx,
			`
			insert into "ops_event" ("event_type", "event_status", "created_by", "created_on")
			values ($1, $2, $3, $4)
			returning "id"
			`,
			string(op.EventType), string(domain.EventUnknown), op.Actor, now,
		).Scan(&ev.Id); err != nil {
			return xe.Wrap(err)
		}

		rec := &Recorder{tx: tx, actor: op.Actor, now: now, eventId: ev.Id}
		details, err := f(ctx, rec)
		if err != nil {
			return err
		}
		details.RequestId = op.RequestId
		ev.Details = details
		ev.EventStatus = domain.EventSuccess

		d, err := eventDetails(details)
		if err != nil {
			return xe.Wrap(err)
		}
		_, err = tx.Exec(
			ctx,
			`update "ops_event" set "event_status" = $1, "details" = $2 where "id" = $3`,
			string(ev.EventStatus), d, ev.Id,
		)
		return xe.Wrap(err)
	})
	if err == nil {
		return ev, nil
	}

	failed, ferr := RecordFailure(ctx, pool, op, now, err)
	if ferr != nil {
		return failed, errors.Join(err, ferr)
	}
	return failed, err
}

// RecordFailure records a FAILED event caused by err.
func RecordFailure(ctx context.Context, q kpool.Queryer, op Op, now time.Time, cause error) (domain.OpsEvent, error) {
	ev := domain.OpsEvent{
		EventType:   op.EventType,
		EventStatus: domain.EventFailed,
		Details:     domain.EventDetails{RequestId: op.RequestId, Error: cause.Error()},
		CreatedBy:   op.Actor,
		CreatedOn:   now,
	}
	d, err := eventDetails(ev.Details)
	if err != nil {
		return ev, xe.Wrap(err)
	}
	if err := q.QueryRow(
		ctx,
		`
		insert into "ops_event" ("event_type", "event_status", "details", "created_by", "created_on")
		values ($1, $2, $3, $4, $5)
		returning "id"
		`,
		string(ev.EventType), string(ev.EventStatus), d, ev.CreatedBy, ev.CreatedOn,
	).Scan(&ev.Id); err != nil {
		return ev, xe.Wrap(err)
	}
	return ev, nil
}

func eventDetails(d domain.EventDetails) (pgtype.JSONB, error) {
	b, err := d.Marshal()
	if err != nil {
		return pgtype.JSONB{}, err
	}
	return pgtype.JSONB{Bytes: b, Status: pgtype.Present}, nil
}
