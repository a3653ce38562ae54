package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

// GetAgreement returns an agreement. When lock is true, the row is locked for update.
func GetAgreement(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.Agreement, error) {
	a := domain.Agreement{}
	var typ string
	var reason *string
	err := conn.QueryRow(
		ctx,
		`
		select
			"id", "agreement_type", "name", "description", "project_officer_id",
			"procurement_shop_id", "agreement_reason", "notes",
			"created_by", "created_on", "updated_on"
		from "agreement" where "id" = $1
		`+forUpdate(lock),
		id,
	).Scan(
		&a.Id, &typ, &a.Name, &a.Description, &a.ProjectOfficerId,
		&a.ProcurementShopId, &reason, &a.Notes,
		&a.CreatedBy, &a.CreatedOn, &a.UpdatedOn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agreement{}, xe.Wrap(xepg.Missing{Table: "agreement", Identity: fmt.Sprintf("id = %d", id)})
	}
	if err != nil {
		return domain.Agreement{}, xe.Wrap(err)
	}

	if a.Type, err = domain.AsAgreementType(typ); err != nil {
		return domain.Agreement{}, xe.Wrap(err)
	}
	if reason != nil {
		r, err := domain.AsAgreementReason(*reason)
		if err != nil {
			return domain.Agreement{}, xe.Wrap(err)
		}
		a.AgreementReason = &r
	}
	return a, nil
}

func UpdateAgreement(ctx context.Context, conn kpool.Queryer, a domain.Agreement) error {
	var reason *string
	if a.AgreementReason != nil {
		r := string(*a.AgreementReason)
		reason = &r
	}
	_, err := conn.Exec(
		ctx,
		`
		update "agreement"
		set
			"name" = $2, "description" = $3, "project_officer_id" = $4,
			"procurement_shop_id" = $5, "agreement_reason" = $6, "notes" = $7,
			"updated_on" = $8
		where "id" = $1
		`,
		a.Id, a.Name, a.Description, a.ProjectOfficerId,
		a.ProcurementShopId, reason, a.Notes, a.UpdatedOn,
	)
	return xe.Wrap(xepg.Translate(err))
}

const bliColumns = `
	"b"."id", "b"."agreement_id", "b"."can_id", "b"."amount", "b"."status",
	"b"."date_needed", "b"."line_description", "b"."comments", "b"."proc_shop_fee_percentage",
	"b"."created_by", "b"."created_on", "b"."updated_on",
	exists (
		select 1 from "change_request" as "cr"
		where "cr"."budget_line_item_id" = "b"."id" and "cr"."status" = 'IN_REVIEW'
	) as "in_review"
`

// BudgetLineItemFilter selects budget line items. Zero fields do not filter.
type BudgetLineItemFilter struct {
	Ids         []int
	AgreementId int
	CanId       int
	Status      domain.BudgetLineItemStatus
}

// FindBudgetLineItems returns budget line items matching the filter, ordered by id.
// When lock is true, the rows are locked for update.
func FindBudgetLineItems(ctx context.Context, conn kpool.Queryer, f BudgetLineItemFilter, lock bool) ([]domain.BudgetLineItem, error) {
	ids := f.Ids
	if ids == nil {
		ids = []int{}
	}
	lockClause := ""
	if lock {
		lockClause = ` for update of "b"`
	}
	rows, err := conn.Query(
		ctx,
		`select `+bliColumns+`
		from "budget_line_item" as "b"
		where
			(cardinality($1::integer[]) = 0 or "b"."id" = any($1))
			and ($2 = 0 or "b"."agreement_id" = $2)
			and ($3 = 0 or "b"."can_id" = $3)
			and ($4 = '' or "b"."status" = $4)
		order by "b"."id"
		`+lockClause,
		ids, f.AgreementId, f.CanId, string(f.Status),
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	items := []domain.BudgetLineItem{}
	for rows.Next() {
		b, err := scanBudgetLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, xe.Wrap(rows.Err())
}

// LockBudgetLineItems locks budget line items of the ids.
// Duplicated ids are locked once. When any of them is not found, it returns Missing.
func LockBudgetLineItems(ctx context.Context, conn kpool.Queryer, ids []int) ([]domain.BudgetLineItem, error) {
	uniq := []int{}
	for _, id := range ids {
		if !slices.Contains(uniq, id) {
			uniq = append(uniq, id)
		}
	}
	if len(uniq) == 0 {
		return []domain.BudgetLineItem{}, nil
	}

	items, err := FindBudgetLineItems(ctx, conn, BudgetLineItemFilter{Ids: uniq}, true)
	if err != nil {
		return nil, err
	}
	if len(items) == len(uniq) {
		return items, nil
	}
	for _, id := range uniq {
		if !slices.ContainsFunc(items, func(b domain.BudgetLineItem) bool { return b.Id == id }) {
			return nil, xe.Wrap(xepg.Missing{Table: "budget_line_item", Identity: fmt.Sprintf("id = %d", id)})
		}
	}
	return items, nil
}

// GetBudgetLineItem returns a budget line item, or Missing.
func GetBudgetLineItem(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.BudgetLineItem, error) {
	items, err := FindBudgetLineItems(ctx, conn, BudgetLineItemFilter{Ids: []int{id}}, lock)
	if err != nil {
		return domain.BudgetLineItem{}, err
	}
	if len(items) == 0 {
		return domain.BudgetLineItem{}, xe.Wrap(xepg.Missing{
			Table: "budget_line_item", Identity: fmt.Sprintf("id = %d", id),
		})
	}
	return items[0], nil
}

func scanBudgetLineItem(row pgx.Row) (domain.BudgetLineItem, error) {
	b := domain.BudgetLineItem{}
	var amount, fee pgtype.Numeric
	var status string
	var dateNeeded pgtype.Date
	if err := row.Scan(
		&b.Id, &b.AgreementId, &b.CanId, &amount, &status,
		&dateNeeded, &b.LineDescription, &b.Comments, &fee,
		&b.CreatedBy, &b.CreatedOn, &b.UpdatedOn,
		&b.InReview,
	); err != nil {
		return domain.BudgetLineItem{}, xe.Wrap(err)
	}

	var err error
	if b.Amount, err = AsNullableAmount(amount); err != nil {
		return domain.BudgetLineItem{}, xe.Wrap(err)
	}
	if b.ProcShopFeePercentage, err = AsNullableRate(fee); err != nil {
		return domain.BudgetLineItem{}, xe.Wrap(err)
	}
	if b.Status, err = domain.AsBudgetLineItemStatus(status); err != nil {
		return domain.BudgetLineItem{}, xe.Wrap(err)
	}
	b.DateNeeded = AsNullableDate(dateNeeded)
	return b, nil
}

// InsertBudgetLineItem creates a budget line item and returns it with its id.
func InsertBudgetLineItem(ctx context.Context, conn kpool.Queryer, b domain.BudgetLineItem) (domain.BudgetLineItem, error) {
	err := conn.QueryRow(
		ctx,
		`
		insert into "budget_line_item" (
			"agreement_id", "can_id", "amount", "status", "date_needed",
			"line_description", "comments", "proc_shop_fee_percentage",
			"created_by", "created_on", "updated_on"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		returning "id"
		`,
		b.AgreementId, b.CanId, NullableAmount(b.Amount), string(b.Status), NullableDate(b.DateNeeded),
		b.LineDescription, b.Comments, NullableRate(b.ProcShopFeePercentage),
		b.CreatedBy, b.CreatedOn, b.UpdatedOn,
	).Scan(&b.Id)
	if err != nil {
		return domain.BudgetLineItem{}, xe.Wrap(xepg.Translate(err))
	}
	return b, nil
}

func UpdateBudgetLineItem(ctx context.Context, conn kpool.Queryer, b domain.BudgetLineItem) error {
	_, err := conn.Exec(
		ctx,
		`
		update "budget_line_item"
		set
			"can_id" = $2, "amount" = $3, "status" = $4, "date_needed" = $5,
			"line_description" = $6, "comments" = $7, "proc_shop_fee_percentage" = $8,
			"updated_on" = $9
		where "id" = $1
		`,
		b.Id, b.CanId, NullableAmount(b.Amount), string(b.Status), NullableDate(b.DateNeeded),
		b.LineDescription, b.Comments, NullableRate(b.ProcShopFeePercentage),
		b.UpdatedOn,
	)
	return xe.Wrap(xepg.Translate(err))
}

func DeleteBudgetLineItem(ctx context.Context, conn kpool.Queryer, id int) error {
	_, err := conn.Exec(ctx, `delete from "budget_line_item" where "id" = $1`, id)
	return xe.Wrap(xepg.Translate(err))
}

// GetProcurementShops returns procurement shops by id, with their fees.
func GetProcurementShops(ctx context.Context, conn kpool.Queryer, ids []int) (map[int]domain.ProcurementShop, error) {
	shops := map[int]domain.ProcurementShop{}
	{
		rows, err := conn.Query(
			ctx,
			`select "id", "name", "abbreviation" from "procurement_shop" where "id" = any($1)`,
			ids,
		)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		defer rows.Close()
		for rows.Next() {
			s := domain.ProcurementShop{}
			if err := rows.Scan(&s.Id, &s.Name, &s.Abbreviation); err != nil {
				return nil, xe.Wrap(err)
			}
			shops[s.Id] = s
		}
		if err := rows.Err(); err != nil {
			return nil, xe.Wrap(err)
		}
	}

	rows, err := conn.Query(
		ctx,
		`
		select "id", "procurement_shop_id", "fee", "start_date", "end_date"
		from "procurement_shop_fee" where "procurement_shop_id" = any($1)
		order by "start_date" nulls first, "id"
		`,
		ids,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		f := domain.ProcurementShopFee{}
		var fee pgtype.Numeric
		var start, end pgtype.Date
		if err := rows.Scan(&f.Id, &f.ShopId, &fee, &start, &end); err != nil {
			return nil, xe.Wrap(err)
		}
		if f.Fee, err = AsRate(fee); err != nil {
			return nil, xe.Wrap(err)
		}
		f.StartDate = AsDate(start)
		f.EndDate = AsDate(end)

		s := shops[f.ShopId]
		s.Fees = append(s.Fees, f)
		shops[f.ShopId] = s
	}
	return shops, xe.Wrap(rows.Err())
}

// FeeSchedule resolves fees of budget line items of the agreements by their procurement shops.
func FeeSchedule(ctx context.Context, conn kpool.Queryer, agreementIds []int) (domain.ShopsByAgreement, error) {
	rows, err := conn.Query(
		ctx,
		`
		select "id", "procurement_shop_id" from "agreement"
		where "id" = any($1) and "procurement_shop_id" is not null
		`,
		agreementIds,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	shopOf := map[int]int{}
	shopIds := []int{}
	for rows.Next() {
		var agreementId, shopId int
		if err := rows.Scan(&agreementId, &shopId); err != nil {
			return nil, xe.Wrap(err)
		}
		shopOf[agreementId] = shopId
		shopIds = append(shopIds, shopId)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	rows.Close()

	shops, err := GetProcurementShops(ctx, conn, shopIds)
	if err != nil {
		return nil, err
	}
	schedule := domain.ShopsByAgreement{}
	for agreementId, shopId := range shopOf {
		schedule[agreementId] = shops[shopId]
	}
	return schedule, nil
}

// InsertProcurementAction records a procurement action and returns it with its id.
func InsertProcurementAction(ctx context.Context, conn kpool.Queryer, a domain.ProcurementAction) (domain.ProcurementAction, error) {
	err := conn.QueryRow(
		ctx,
		`
		insert into "procurement_action"
			("agreement_id", "award_type", "status", "award_date", "procurement_shop_id", "created_by", "created_on")
		values ($1, $2, $3, $4, $5, $6, $7)
		returning "id"
		`,
		a.AgreementId, string(a.AwardType), string(a.Status), Date(a.AwardDate),
		a.ProcurementShopId, a.CreatedBy, a.CreatedOn,
	).Scan(&a.Id)
	if err != nil {
		return domain.ProcurementAction{}, xe.Wrap(xepg.Translate(err))
	}
	return a, nil
}
