package postgres

import (
	"context"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	ktracker "github.com/opre/ops/pkg/domain/tracker/db"
)

type pgTracker struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) ktracker.Interface {
	return &pgTracker{pool: pool}
}

func (t *pgTracker) GetByAgreement(ctx context.Context, agreementId int) (domain.ProcurementTracker, error) {
	return ipg.GetTracker(ctx, t.pool, ipg.TrackerKey{AgreementId: agreementId}, false)
}

func (t *pgTracker) CompleteStep(
	ctx context.Context, actor int, trackerId int, stepNumber int, completion domain.StepCompletion,
) (domain.StepCompleted, error) {
	var result domain.StepCompleted
	_, err := ipg.Run(
		ctx, t.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateProcurementTracker, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			current, err := ipg.GetTracker(ctx, tx, ipg.TrackerKey{Id: trackerId}, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			next, awarded, err := domain.CompleteStep(current, stepNumber, completion, rec.Today(), rec.Now())
			if err != nil {
				return domain.EventDetails{}, err
			}
			changes, err := save(ctx, rec, current, next)
			if err != nil {
				return domain.EventDetails{}, err
			}
			result = domain.StepCompleted{Tracker: next}

			if awarded {
				agreement, err := ipg.GetAgreement(ctx, tx, next.AgreementId, false)
				if err != nil {
					return domain.EventDetails{}, err
				}
				action, err := next.Award(agreement.ProcurementShopId, actor, rec.Now())
				if err != nil {
					return domain.EventDetails{}, err
				}
				if action, err = ipg.InsertProcurementAction(ctx, tx, action); err != nil {
					return domain.EventDetails{}, err
				}
				if err := rec.New(ctx, domain.ClassProcurementAction, action.Id, action); err != nil {
					return domain.EventDetails{}, err
				}
				result.Award = &action

				obligated, err := obligate(ctx, rec, next.AgreementId)
				if err != nil {
					return domain.EventDetails{}, err
				}
				result.Obligated = obligated
			}

			return domain.EventDetails{
				Tracker: &domain.RowEventDetails{Id: trackerId, Changes: changes},
			}, nil
		},
	)
	if err != nil {
		return domain.StepCompleted{}, err
	}
	return result, nil
}

func (t *pgTracker) UpdateStep(
	ctx context.Context, actor int, trackerId int, stepNumber int, patch domain.StepPatch,
) (domain.ProcurementTracker, error) {
	return t.change(ctx, actor, trackerId, func(current domain.ProcurementTracker, rec *ipg.Recorder) (domain.ProcurementTracker, error) {
		return domain.UpdateStep(current, stepNumber, patch, rec.Now())
	})
}

func (t *pgTracker) SetActive(ctx context.Context, actor int, trackerId int, active bool) (domain.ProcurementTracker, error) {
	return t.change(ctx, actor, trackerId, func(current domain.ProcurementTracker, rec *ipg.Recorder) (domain.ProcurementTracker, error) {
		return domain.SetActive(current, active, rec.Now())
	})
}

// change updates the tracker as f does, in an UPDATE_PROCUREMENT_TRACKER event.
func (t *pgTracker) change(
	ctx context.Context, actor int, trackerId int,
	f func(domain.ProcurementTracker, *ipg.Recorder) (domain.ProcurementTracker, error),
) (domain.ProcurementTracker, error) {
	var updated domain.ProcurementTracker
	_, err := ipg.Run(
		ctx, t.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateProcurementTracker, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			current, err := ipg.GetTracker(ctx, rec.Tx(), ipg.TrackerKey{Id: trackerId}, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			next, err := f(current, rec)
			if err != nil {
				return domain.EventDetails{}, err
			}
			changes, err := save(ctx, rec, current, next)
			if err != nil {
				return domain.EventDetails{}, err
			}
			updated = next
			return domain.EventDetails{
				Tracker: &domain.RowEventDetails{Id: trackerId, Changes: changes},
			}, nil
		},
	)
	if err != nil {
		return domain.ProcurementTracker{}, err
	}
	return updated, nil
}

// save writes the tracker and records changes of it and of its steps.
//
// It returns changes of the tracker row.
func save(ctx context.Context, rec *ipg.Recorder, current, next domain.ProcurementTracker) (domain.Changes, error) {
	if err := ipg.UpdateTracker(ctx, rec.Tx(), next); err != nil {
		return nil, err
	}
	changes, err := rec.Updated(ctx, domain.ClassProcurementTracker, next.Id, current, next)
	if err != nil {
		return nil, err
	}
	for _, ns := range next.Steps {
		cs, ok := current.Step(ns.Number)
		if !ok {
			continue
		}
		if _, err := rec.Updated(ctx, domain.ClassProcurementStep, ns.Id, cs, ns); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// obligate moves IN_EXECUTION budget line items of the agreement to OBLIGATED.
func obligate(ctx context.Context, rec *ipg.Recorder, agreementId int) ([]domain.BudgetLineItem, error) {
	tx := rec.Tx()
	items, err := ipg.FindBudgetLineItems(ctx, tx, ipg.BudgetLineItemFilter{
		AgreementId: agreementId, Status: domain.InExecution,
	}, true)
	if err != nil {
		return nil, err
	}

	obligated := make([]domain.BudgetLineItem, 0, len(items))
	for _, b := range items {
		next, err := b.Obligate()
		if err != nil {
			return nil, err
		}
		next.UpdatedOn = rec.Now()
		if err := ipg.UpdateBudgetLineItem(ctx, tx, next); err != nil {
			return nil, err
		}
		if _, err := rec.Updated(ctx, domain.ClassBudgetLineItem, next.Id, b, next); err != nil {
			return nil, err
		}
		obligated = append(obligated, next)
	}
	return obligated, nil
}
