package postgres

import (
	"context"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	kbli "github.com/opre/ops/pkg/domain/budgetlineitem/db"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	"github.com/opre/ops/pkg/utils"
)

type pgBudgetLineItem struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kbli.Interface {
	return &pgBudgetLineItem{pool: pool}
}

func (b *pgBudgetLineItem) Get(ctx context.Context, id int) (domain.PricedBudgetLineItem, error) {
	item, err := ipg.GetBudgetLineItem(ctx, b.pool, id, false)
	if err != nil {
		return domain.PricedBudgetLineItem{}, err
	}
	fees, err := ipg.FeeSchedule(ctx, b.pool, []int{item.AgreementId})
	if err != nil {
		return domain.PricedBudgetLineItem{}, err
	}
	return domain.Priced([]domain.BudgetLineItem{item}, fees)[0], nil
}

func (b *pgBudgetLineItem) Create(
	ctx context.Context, actor int, agreementId int, patch domain.BudgetLineItemPatch,
) (domain.BudgetLineItem, error) {
	var created domain.BudgetLineItem
	_, err := ipg.Run(
		ctx, b.pool,
		ipg.Op{Actor: actor, EventType: domain.CreateBLI, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			if _, err := ipg.GetAgreement(ctx, tx, agreementId, false); err != nil {
				return domain.EventDetails{}, err
			}
			item, err := domain.NewBudgetLineItem(agreementId, patch, actor, rec.Now())
			if err != nil {
				return domain.EventDetails{}, err
			}
			if item, err = ipg.InsertBudgetLineItem(ctx, tx, item); err != nil {
				return domain.EventDetails{}, err
			}
			if err := rec.New(ctx, domain.ClassBudgetLineItem, item.Id, item); err != nil {
				return domain.EventDetails{}, err
			}
			created = item
			return domain.EventDetails{
				BudgetLineItem: &domain.RowEventDetails{Id: item.Id},
			}, nil
		},
	)
	if err != nil {
		return domain.BudgetLineItem{}, err
	}
	return created, nil
}

func (b *pgBudgetLineItem) Update(
	ctx context.Context, actor int, id int, patch domain.BudgetLineItemPatch, notes string,
) (domain.BudgetLineItemUpdate, error) {
	var result domain.BudgetLineItemUpdate
	_, err := ipg.Run(
		ctx, b.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateBLI, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			current, err := ipg.GetBudgetLineItem(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			agreement, err := ipg.GetAgreement(ctx, tx, current.AgreementId, false)
			if err != nil {
				return domain.EventDetails{}, err
			}
			plan, err := domain.PlanBudgetLineItemUpdate(current, agreement, patch, notes, rec.Today())
			if err != nil {
				return domain.EventDetails{}, err
			}

			details := &domain.RowEventDetails{Id: id}
			next := current
			if !plan.Direct.IsEmpty() {
				next = current.Apply(plan.Direct)
				next.UpdatedOn = rec.Now()
				if err := ipg.UpdateBudgetLineItem(ctx, tx, next); err != nil {
					return domain.EventDetails{}, err
				}
				if details.Changes, err = rec.Updated(ctx, domain.ClassBudgetLineItem, id, current, next); err != nil {
					return domain.EventDetails{}, err
				}
			}

			opened, err := ipg.OpenChangeRequests(ctx, rec, plan.Requests)
			if err != nil {
				return domain.EventDetails{}, err
			}
			if 0 < len(opened) {
				next.InReview = true
			}

			result = domain.BudgetLineItemUpdate{BudgetLineItem: next, ChangeRequests: opened}
			return domain.EventDetails{
				BudgetLineItem:   details,
				ChangeRequestIds: utils.Map(opened, func(cr domain.ChangeRequest) int { return cr.Id }),
			}, nil
		},
	)
	if err != nil {
		return domain.BudgetLineItemUpdate{}, err
	}
	return result, nil
}

func (b *pgBudgetLineItem) Delete(ctx context.Context, actor int, id int) error {
	_, err := ipg.Run(
		ctx, b.pool,
		ipg.Op{Actor: actor, EventType: domain.DeleteBLI, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			current, err := ipg.GetBudgetLineItem(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			if err := current.CheckDeletable(); err != nil {
				return domain.EventDetails{}, err
			}
			if err := ipg.DeleteBudgetLineItem(ctx, tx, id); err != nil {
				return domain.EventDetails{}, err
			}
			if err := rec.Deleted(ctx, domain.ClassBudgetLineItem, id, current); err != nil {
				return domain.EventDetails{}, err
			}
			return domain.EventDetails{
				BudgetLineItem: &domain.RowEventDetails{Id: id},
			}, nil
		},
	)
	return err
}
