// manipulate records in postgres, for tests.
package tables

import (
	"context"
	"fmt"
	"time"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
)

func withCause(v any, reason error) error {
	return fmt.Errorf("error caused inserting record %+v: %w", v, reason)
}

// golang representation of records of reference tables and operational tables.
//
// Ids are given explicitly, so that tests can refer them.

type Division struct {
	Id                       int
	Name                     string
	Abbreviation             string
	DivisionDirectorId       *int
	DeputyDivisionDirectorId *int
}

type User struct {
	Id         int
	Email      string
	FullName   string
	DivisionId *int
	Roles      []domain.Role
}

type Portfolio struct {
	Id           int
	Name         string
	Abbreviation string
	DivisionId   int
}

type CAN struct {
	Id           int
	Number       string
	Nickname     string
	PortfolioId  int
	ActivePeriod int
}

type FundingBudget struct {
	Id         int
	CanId      int
	FiscalYear int
	Budget     domain.Amount
}

type ProcurementShop struct {
	Id           int
	Name         string
	Abbreviation string
}

type ProcurementShopFee struct {
	Id     int
	ShopId int
	Fee    domain.Rate
	Start  *domain.Date
	End    *domain.Date
}

type Agreement struct {
	Id                int
	Type              domain.AgreementType
	Name              string
	ProjectOfficerId  *int
	ProcurementShopId *int
	AgreementReason   *domain.AgreementReason
	CreatedBy         int
	CreatedOn         time.Time
}

type BudgetLineItem struct {
	Id              int
	AgreementId     int
	CanId           *int
	Amount          *domain.Amount
	Status          domain.BudgetLineItemStatus
	DateNeeded      *domain.Date
	LineDescription string
	CreatedBy       int
	CreatedOn       time.Time
}

// Operation declares premise of a test.
//
// Records are inserted in the order of fields. Each serial sequence is moved past
// the given ids, so records created by the tested code do not collide with them.
type Operation struct {
	Users            []User
	Divisions        []Division
	Portfolios       []Portfolio
	CANs             []CAN
	FundingBudgets   []FundingBudget
	ProcurementShops []ProcurementShop
	Fees             []ProcurementShopFee
	Agreements       []Agreement
	BudgetLineItems  []BudgetLineItem
}

func (op Operation) Apply(ctx context.Context, pool kpool.Pool) error {
	return kpool.InTx(ctx, pool, func(tx kpool.Tx) error {
		// users and divisions refer each other.
		for _, u := range op.Users {
			if _, err := tx.Exec(
				ctx,
				`insert into "ops_user" ("id", "email", "full_name", "roles") values ($1, $2, $3, $4)`,
				u.Id, u.Email, u.FullName, ipg.Roles(u.Roles),
			); err != nil {
				return withCause(u, err)
			}
		}
		for _, d := range op.Divisions {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "division"
					("id", "name", "abbreviation", "division_director_id", "deputy_division_director_id")
				values ($1, $2, $3, $4, $5)
				`,
				d.Id, d.Name, d.Abbreviation, d.DivisionDirectorId, d.DeputyDivisionDirectorId,
			); err != nil {
				return withCause(d, err)
			}
		}
		for _, u := range op.Users {
			if u.DivisionId == nil {
				continue
			}
			if _, err := tx.Exec(
				ctx, `update "ops_user" set "division_id" = $2 where "id" = $1`, u.Id, *u.DivisionId,
			); err != nil {
				return withCause(u, err)
			}
		}
		for _, p := range op.Portfolios {
			if _, err := tx.Exec(
				ctx,
				`insert into "portfolio" ("id", "name", "abbreviation", "division_id") values ($1, $2, $3, $4)`,
				p.Id, p.Name, p.Abbreviation, p.DivisionId,
			); err != nil {
				return withCause(p, err)
			}
		}
		for _, c := range op.CANs {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "can" ("id", "number", "nickname", "description", "portfolio_id", "active_period")
				values ($1, $2, $3, '', $4, $5)
				`,
				c.Id, c.Number, c.Nickname, c.PortfolioId, c.ActivePeriod,
			); err != nil {
				return withCause(c, err)
			}
		}
		for _, b := range op.FundingBudgets {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "can_funding_budget" ("id", "can_id", "fiscal_year", "budget", "notes")
				values ($1, $2, $3, $4, '')
				`,
				b.Id, b.CanId, b.FiscalYear, ipg.Amount(b.Budget),
			); err != nil {
				return withCause(b, err)
			}
		}
		for _, s := range op.ProcurementShops {
			if _, err := tx.Exec(
				ctx,
				`insert into "procurement_shop" ("id", "name", "abbreviation") values ($1, $2, $3)`,
				s.Id, s.Name, s.Abbreviation,
			); err != nil {
				return withCause(s, err)
			}
		}
		for _, f := range op.Fees {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "procurement_shop_fee" ("id", "procurement_shop_id", "fee", "start_date", "end_date")
				values ($1, $2, $3, $4, $5)
				`,
				f.Id, f.ShopId, ipg.NullableRate(&f.Fee), ipg.NullableDate(f.Start), ipg.NullableDate(f.End),
			); err != nil {
				return withCause(f, err)
			}
		}
		for _, a := range op.Agreements {
			var reason *string
			if a.AgreementReason != nil {
				r := string(*a.AgreementReason)
				reason = &r
			}
			if _, err := tx.Exec(
				ctx,
				`
				insert into "agreement" (
					"id", "agreement_type", "name", "description", "project_officer_id",
					"procurement_shop_id", "agreement_reason", "notes",
					"created_by", "created_on", "updated_on"
				)
				values ($1, $2, $3, '', $4, $5, $6, '', $7, $8, $8)
				`,
				a.Id, string(a.Type), a.Name, a.ProjectOfficerId,
				a.ProcurementShopId, reason, a.CreatedBy, a.CreatedOn,
			); err != nil {
				return withCause(a, err)
			}
		}
		for _, b := range op.BudgetLineItems {
			if _, err := tx.Exec(
				ctx,
				`
				insert into "budget_line_item" (
					"id", "agreement_id", "can_id", "amount", "status", "date_needed",
					"line_description", "comments", "created_by", "created_on", "updated_on"
				)
				values ($1, $2, $3, $4, $5, $6, $7, '', $8, $9, $9)
				`,
				b.Id, b.AgreementId, b.CanId, ipg.NullableAmount(b.Amount), string(b.Status),
				ipg.NullableDate(b.DateNeeded), b.LineDescription, b.CreatedBy, b.CreatedOn,
			); err != nil {
				return withCause(b, err)
			}
		}

		for _, table := range []string{
			"ops_user", "division", "portfolio", "can", "can_funding_budget",
			"procurement_shop", "procurement_shop_fee", "agreement", "budget_line_item",
		} {
			if _, err := tx.Exec(
				ctx,
				fmt.Sprintf(
					`select setval(pg_get_serial_sequence('"%[1]s"', 'id'), coalesce(max("id"), 0) + 1, false) from "%[1]s"`,
					table,
				),
			); err != nil {
				return fmt.Errorf("moving sequence of %s: %w", table, err)
			}
		}
		return nil
	})
}

// DBHistory reads every OpsDBHistory record, in id order.
func DBHistory(ctx context.Context, conn kpool.Queryer) ([]domain.OpsDBHistory, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "id", "event_type", "class_name", "row_key", "created_by", "created_on", "ops_event_id"
		from "ops_db_history" order by "id"
		`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hs := []domain.OpsDBHistory{}
	for rows.Next() {
		h := domain.OpsDBHistory{}
		var typ string
		if err := rows.Scan(
			&h.Id, &typ, &h.ClassName, &h.RowKey, &h.CreatedBy, &h.CreatedOn, &h.OpsEventId,
		); err != nil {
			return nil, err
		}
		h.EventType = domain.DBHistoryType(typ)
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

// Event is a record of ops_event without details.
type Event struct {
	Id        int
	EventType domain.OpsEventType
	Status    domain.OpsEventStatus
	CreatedBy int
	CreatedOn time.Time
}

// Events reads every ops_event record, in id order.
func Events(ctx context.Context, conn kpool.Queryer) ([]Event, error) {
	rows, err := conn.Query(
		ctx,
		`select "id", "event_type", "event_status", "created_by", "created_on" from "ops_event" order by "id"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evs := []Event{}
	for rows.Next() {
		ev := Event{}
		var typ, status string
		if err := rows.Scan(&ev.Id, &typ, &status, &ev.CreatedBy, &ev.CreatedOn); err != nil {
			return nil, err
		}
		ev.EventType = domain.OpsEventType(typ)
		ev.Status = domain.OpsEventStatus(status)
		evs = append(evs, ev)
	}
	return evs, rows.Err()
}
