package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

// GetCAN returns a CAN. When lock is true, the row is locked for update.
func GetCAN(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.CAN, error) {
	c := domain.CAN{}
	err := conn.QueryRow(
		ctx,
		`
		select "id", "number", "nickname", "description", "portfolio_id", "active_period"
		from "can" where "id" = $1
		`+forUpdate(lock),
		id,
	).Scan(&c.Id, &c.Number, &c.Nickname, &c.Description, &c.PortfolioId, &c.ActivePeriod)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CAN{}, xe.Wrap(xepg.Missing{Table: "can", Identity: fmt.Sprintf("id = %d", id)})
	}
	if err != nil {
		return domain.CAN{}, xe.Wrap(err)
	}
	return c, nil
}

// InsertCAN creates a CAN and returns it with its id.
func InsertCAN(ctx context.Context, conn kpool.Queryer, c domain.CAN) (domain.CAN, error) {
	err := conn.QueryRow(
		ctx,
		`
		insert into "can" ("number", "nickname", "description", "portfolio_id", "active_period")
		values ($1, $2, $3, $4, $5)
		returning "id"
		`,
		c.Number, c.Nickname, c.Description, c.PortfolioId, c.ActivePeriod,
	).Scan(&c.Id)
	if err != nil {
		return domain.CAN{}, xe.Wrap(xepg.Translate(err))
	}
	return c, nil
}

func UpdateCAN(ctx context.Context, conn kpool.Queryer, c domain.CAN) error {
	_, err := conn.Exec(
		ctx,
		`
		update "can"
		set "nickname" = $2, "description" = $3, "portfolio_id" = $4, "active_period" = $5
		where "id" = $1
		`,
		c.Id, c.Nickname, c.Description, c.PortfolioId, c.ActivePeriod,
	)
	return xe.Wrap(xepg.Translate(err))
}

// FundingBudgets returns funding budgets of the CAN in the fiscal year.
// fiscalYear 0 means every year.
func FundingBudgets(ctx context.Context, conn kpool.Queryer, canId int, fiscalYear int) ([]domain.CANFundingBudget, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "id", "can_id", "fiscal_year", "budget", "notes"
		from "can_funding_budget"
		where "can_id" = $1 and ($2 = 0 or "fiscal_year" = $2)
		order by "fiscal_year", "id"
		`,
		canId, fiscalYear,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	budgets := []domain.CANFundingBudget{}
	for rows.Next() {
		b, err := scanFundingBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, xe.Wrap(rows.Err())
}

func GetFundingBudget(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.CANFundingBudget, error) {
	b, err := scanFundingBudget(conn.QueryRow(
		ctx,
		`
		select "id", "can_id", "fiscal_year", "budget", "notes"
		from "can_funding_budget" where "id" = $1
		`+forUpdate(lock),
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CANFundingBudget{}, xe.Wrap(xepg.Missing{
			Table: "can_funding_budget", Identity: fmt.Sprintf("id = %d", id),
		})
	}
	return b, err
}

func scanFundingBudget(row pgx.Row) (domain.CANFundingBudget, error) {
	b := domain.CANFundingBudget{}
	var budget pgtype.Numeric
	if err := row.Scan(&b.Id, &b.CanId, &b.FiscalYear, &budget, &b.Notes); err != nil {
		return domain.CANFundingBudget{}, xe.Wrap(err)
	}
	a, err := AsAmount(budget)
	if err != nil {
		return domain.CANFundingBudget{}, xe.Wrap(err)
	}
	b.Budget = a
	return b, nil
}

// InsertFundingBudget creates a funding budget and returns it with its id.
func InsertFundingBudget(ctx context.Context, conn kpool.Queryer, b domain.CANFundingBudget) (domain.CANFundingBudget, error) {
	err := conn.QueryRow(
		ctx,
		`
		insert into "can_funding_budget" ("can_id", "fiscal_year", "budget", "notes")
		values ($1, $2, $3, $4)
		returning "id"
		`,
		b.CanId, b.FiscalYear, Amount(b.Budget), b.Notes,
	).Scan(&b.Id)
	if err != nil {
		return domain.CANFundingBudget{}, xe.Wrap(xepg.Translate(err))
	}
	return b, nil
}

func UpdateFundingBudget(ctx context.Context, conn kpool.Queryer, b domain.CANFundingBudget) error {
	_, err := conn.Exec(
		ctx,
		`update "can_funding_budget" set "budget" = $2, "notes" = $3 where "id" = $1`,
		b.Id, Amount(b.Budget), b.Notes,
	)
	return xe.Wrap(xepg.Translate(err))
}

// FundingReceived returns funding received by the CAN in the fiscal year.
// fiscalYear 0 means every year.
func FundingReceived(ctx context.Context, conn kpool.Queryer, canId int, fiscalYear int) ([]domain.CANFundingReceived, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "id", "can_id", "fiscal_year", "funding", "notes"
		from "can_funding_received"
		where "can_id" = $1 and ($2 = 0 or "fiscal_year" = $2)
		order by "fiscal_year", "id"
		`,
		canId, fiscalYear,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	received := []domain.CANFundingReceived{}
	for rows.Next() {
		r := domain.CANFundingReceived{}
		var funding pgtype.Numeric
		if err := rows.Scan(&r.Id, &r.CanId, &r.FiscalYear, &funding, &r.Notes); err != nil {
			return nil, xe.Wrap(err)
		}
		if r.Funding, err = AsAmount(funding); err != nil {
			return nil, xe.Wrap(err)
		}
		received = append(received, r)
	}
	return received, xe.Wrap(rows.Err())
}

func InsertFundingReceived(ctx context.Context, conn kpool.Queryer, r domain.CANFundingReceived) (domain.CANFundingReceived, error) {
	err := conn.QueryRow(
		ctx,
		`
		insert into "can_funding_received" ("can_id", "fiscal_year", "funding", "notes")
		values ($1, $2, $3, $4)
		returning "id"
		`,
		r.CanId, r.FiscalYear, Amount(r.Funding), r.Notes,
	).Scan(&r.Id)
	if err != nil {
		return domain.CANFundingReceived{}, xe.Wrap(xepg.Translate(err))
	}
	return r, nil
}

func forUpdate(lock bool) string {
	if lock {
		return " for update"
	}
	return ""
}
