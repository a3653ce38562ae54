package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	domerr "github.com/opre/ops/pkg/domain/errors"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

type pgHistory struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) khistory.Interface {
	return &pgHistory{pool: pool}
}

func (h *pgHistory) DBHistory(ctx context.Context, className string, rowKey string, page khistory.Page) ([]domain.OpsDBHistory, error) {
	page = page.Normalized()
	rows, err := h.pool.Query(
		ctx,
		`
		select
			"id", "event_type", "class_name", "row_key", "changes",
			"created_by", "created_on", "ops_event_id"
		from "ops_db_history"
		where "class_name" = $1 and "row_key" = $2
		order by "created_on" desc, "id" desc
		limit $3 offset $4
		`,
		className, rowKey, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	hs := []domain.OpsDBHistory{}
	for rows.Next() {
		r := domain.OpsDBHistory{}
		var typ string
		var changes pgtype.JSONB
		if err := rows.Scan(
			&r.Id, &typ, &r.ClassName, &r.RowKey, &changes,
			&r.CreatedBy, &r.CreatedOn, &r.OpsEventId,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		if r.EventType, err = domain.AsDBHistoryType(typ); err != nil {
			return nil, xe.Wrap(err)
		}
		if err := ipg.FromJSONB(changes, &r.Changes); err != nil {
			return nil, xe.Wrap(err)
		}
		hs = append(hs, r)
	}
	return hs, xe.Wrap(rows.Err())
}

const eventColumns = `"id", "event_type", "event_status", "details", "created_by", "created_on"`

func scanEvent(row pgx.Row) (domain.OpsEvent, error) {
	ev := domain.OpsEvent{}
	var typ, status string
	var details pgtype.JSONB
	if err := row.Scan(&ev.Id, &typ, &status, &details, &ev.CreatedBy, &ev.CreatedOn); err != nil {
		return domain.OpsEvent{}, err
	}
	var err error
	if ev.EventType, err = domain.AsOpsEventType(typ); err != nil {
		return domain.OpsEvent{}, err
	}
	if ev.EventStatus, err = domain.AsOpsEventStatus(status); err != nil {
		return domain.OpsEvent{}, err
	}
	if ev.Details, err = domain.UnmarshalEventDetails(details.Bytes); err != nil {
		return domain.OpsEvent{}, err
	}
	return ev, nil
}

func (h *pgHistory) Events(ctx context.Context, eventType domain.OpsEventType, limit int) ([]domain.OpsEvent, error) {
	page := khistory.Page{Limit: limit}.Normalized()
	rows, err := h.pool.Query(
		ctx,
		`
		select `+eventColumns+` from "ops_event"
		where $1 = '' or "event_type" = $1
		order by "id" desc
		limit $2
		`,
		string(eventType), page.Limit,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	evs := []domain.OpsEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		evs = append(evs, ev)
	}
	return evs, xe.Wrap(rows.Err())
}

func (h *pgHistory) CANHistory(ctx context.Context, canId int, fiscalYear int, page khistory.Page) ([]domain.CANHistory, error) {
	if _, err := ipg.GetCAN(ctx, h.pool, canId, false); err != nil {
		return nil, err
	}

	page = page.Normalized()
	rows, err := h.pool.Query(
		ctx,
		`
		select
			"id", "can_id", "ops_event_id", "history_title", "history_message",
			"timestamp", "history_type", "fiscal_year"
		from "can_history"
		where "can_id" = $1 and ($2 = 0 or "fiscal_year" = $2)
		order by "timestamp" desc, "ops_event_id" desc, "id"
		limit $3 offset $4
		`,
		canId, fiscalYear, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	items := []domain.CANHistory{}
	for rows.Next() {
		c := domain.CANHistory{}
		var typ string
		if err := rows.Scan(
			&c.Id, &c.CanId, &c.OpsEventId, &c.HistoryTitle, &c.HistoryMessage,
			&c.Timestamp, &typ, &c.FiscalYear,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		if c.HistoryType, err = domain.AsCANHistoryType(typ); err != nil {
			return nil, xe.Wrap(err)
		}
		items = append(items, c)
	}
	return items, xe.Wrap(rows.Err())
}

func (h *pgHistory) ProjectNext(ctx context.Context, f func(domain.OpsEvent, []domain.CANHistory) error) (bool, error) {
	consumed := false
	err := kpool.InTx(ctx, h.pool, func(tx kpool.Tx) error {
		// no writer of ops_event is in flight while this is held.
		if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, ipg.EventLock); err != nil {
			return xe.Wrap(err)
		}

		cursor, err := lockCursor(ctx, tx, domain.CANHistoryProjection)
		if err != nil {
			return err
		}

		ev, err := scanEvent(tx.QueryRow(
			ctx,
			`select `+eventColumns+` from "ops_event" where "id" > $1 order by "id" limit 1`,
			cursor,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return xe.Wrap(err)
		}

		actor, err := ipg.GetUser(ctx, tx, ev.CreatedBy)
		if errors.Is(err, domerr.ErrMissing) {
			actor = domain.User{Id: ev.CreatedBy}
		} else if err != nil {
			return err
		}

		items := domain.ProjectCANHistory(ev, actor)
		for i := range items {
			if err := tx.QueryRow(
				ctx,
				`
				insert into "can_history" (
					"can_id", "ops_event_id", "history_title", "history_message",
					"timestamp", "history_type", "fiscal_year"
				)
				values ($1, $2, $3, $4, $5, $6, $7)
				returning "id"
				`,
				items[i].CanId, items[i].OpsEventId, items[i].HistoryTitle, items[i].HistoryMessage,
				items[i].Timestamp, string(items[i].HistoryType), items[i].FiscalYear,
			).Scan(&items[i].Id); err != nil {
				return xe.Wrap(err)
			}
		}

		if _, err := tx.Exec(
			ctx,
			`update "loop_cursor" set "last_event_id" = $2 where "loop_type" = $1`,
			string(domain.CANHistoryProjection), ev.Id,
		); err != nil {
			return xe.Wrap(err)
		}

		if f != nil {
			if err := f(ev, items); err != nil {
				return err
			}
		}
		consumed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// lockCursor locks the cursor of the loop and returns the last event id consumed.
func lockCursor(ctx context.Context, tx kpool.Tx, lt domain.LoopType) (int, error) {
	if _, err := tx.Exec(
		ctx,
		`insert into "loop_cursor" ("loop_type") values ($1) on conflict do nothing`,
		string(lt),
	); err != nil {
		return 0, xe.Wrap(err)
	}
	var cursor int
	if err := tx.QueryRow(
		ctx,
		`select "last_event_id" from "loop_cursor" where "loop_type" = $1 for update`,
		string(lt),
	).Scan(&cursor); err != nil {
		return 0, xe.Wrap(err)
	}
	return cursor, nil
}
