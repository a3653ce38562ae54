package postgres

import (
	"context"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	kagreement "github.com/opre/ops/pkg/domain/agreement/db"
	domerr "github.com/opre/ops/pkg/domain/errors"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	"github.com/opre/ops/pkg/utils"
)

type pgAgreement struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kagreement.Interface {
	return &pgAgreement{pool: pool}
}

func (a *pgAgreement) Get(ctx context.Context, id int) (domain.AgreementDetail, error) {
	agreement, err := ipg.GetAgreement(ctx, a.pool, id, false)
	if err != nil {
		return domain.AgreementDetail{}, err
	}
	items, err := ipg.FindBudgetLineItems(ctx, a.pool, ipg.BudgetLineItemFilter{AgreementId: id}, false)
	if err != nil {
		return domain.AgreementDetail{}, err
	}
	fees, err := ipg.FeeSchedule(ctx, a.pool, []int{id})
	if err != nil {
		return domain.AgreementDetail{}, err
	}
	return domain.AgreementDetail{
		Agreement: agreement,
		Items:     domain.Priced(items, fees),
		Totals:    domain.SummarizeAgreement(items, fees),
	}, nil
}

func (a *pgAgreement) Update(
	ctx context.Context, actor int, id int, patch domain.AgreementPatch, notes string,
) (domain.AgreementUpdate, error) {
	var result domain.AgreementUpdate
	_, err := ipg.Run(
		ctx, a.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateAgreement, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			current, err := ipg.GetAgreement(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			items, err := ipg.FindBudgetLineItems(ctx, tx, ipg.BudgetLineItemFilter{AgreementId: id}, false)
			if err != nil {
				return domain.EventDetails{}, err
			}
			plan, err := domain.PlanAgreementUpdate(current, items, patch, notes)
			if err != nil {
				return domain.EventDetails{}, err
			}

			details := &domain.RowEventDetails{Id: id}
			next := current
			if !plan.Direct.IsEmpty() {
				next = current.Apply(plan.Direct)
				next.UpdatedOn = rec.Now()
				if err := ipg.UpdateAgreement(ctx, tx, next); err != nil {
					return domain.EventDetails{}, err
				}
				if details.Changes, err = rec.Updated(ctx, domain.ClassAgreement, id, current, next); err != nil {
					return domain.EventDetails{}, err
				}
			}

			opened := []domain.ChangeRequest{}
			if plan.Request != nil {
				pending, err := ipg.FindChangeRequests(ctx, tx, ipg.ChangeRequestFilter{
					AgreementId: id, Status: domain.ChangeInReview,
				})
				if err != nil {
					return domain.EventDetails{}, err
				}
				if _, ok := utils.First(pending, func(cr domain.ChangeRequest) bool {
					return cr.Type == domain.AgreementChangeRequest
				}); ok {
					return domain.EventDetails{}, domerr.Conflict(
						"agreement %d has a change request in review", id,
					)
				}
				if opened, err = ipg.OpenChangeRequests(ctx, rec, []domain.ChangeRequestDraft{*plan.Request}); err != nil {
					return domain.EventDetails{}, err
				}
			}

			result = domain.AgreementUpdate{Agreement: next, ChangeRequests: opened}
			return domain.EventDetails{
				Agreement:        details,
				ChangeRequestIds: changeRequestIds(opened),
			}, nil
		},
	)
	if err != nil {
		return domain.AgreementUpdate{}, err
	}
	return result, nil
}

func (a *pgAgreement) SubmitStatusChange(
	ctx context.Context, actor int, agreementId int, bliIds []int,
	target domain.BudgetLineItemStatus, notes string,
) ([]domain.ChangeRequest, error) {
	var opened []domain.ChangeRequest
	_, err := ipg.Run(
		ctx, a.pool,
		ipg.Op{Actor: actor, EventType: domain.CreateChangeRequest, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			agreement, err := ipg.GetAgreement(ctx, tx, agreementId, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			items, err := ipg.LockBudgetLineItems(ctx, tx, bliIds)
			if err != nil {
				return domain.EventDetails{}, err
			}
			drafts, err := domain.PlanStatusChanges(agreement, items, target, notes, rec.Today())
			if err != nil {
				return domain.EventDetails{}, err
			}
			if opened, err = ipg.OpenChangeRequests(ctx, rec, drafts); err != nil {
				return domain.EventDetails{}, err
			}
			return domain.EventDetails{
				Agreement:        &domain.RowEventDetails{Id: agreementId},
				ChangeRequestIds: changeRequestIds(opened),
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return opened, nil
}

func changeRequestIds(crs []domain.ChangeRequest) []int {
	return utils.Map(crs, func(cr domain.ChangeRequest) int { return cr.Id })
}
