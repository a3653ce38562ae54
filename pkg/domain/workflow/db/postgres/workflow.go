package postgres

import (
	"context"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	kworkflow "github.com/opre/ops/pkg/domain/workflow/db"
	"github.com/opre/ops/pkg/utils"
)

type pgWorkflow struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kworkflow.Interface {
	return &pgWorkflow{pool: pool}
}

func (w *pgWorkflow) Get(ctx context.Context, id int) (domain.WorkflowInstance, error) {
	return ipg.GetWorkflowInstance(ctx, w.pool, id, false)
}

func (w *pgWorkflow) Resubmit(ctx context.Context, actor int, id int, notes string) (domain.WorkflowInstance, error) {
	var resubmitted domain.WorkflowInstance
	_, err := ipg.Run(
		ctx, w.pool,
		ipg.Op{Actor: actor, EventType: domain.UpdateChangeRequest, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			current, err := ipg.GetWorkflowInstance(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			user, err := ipg.GetUser(ctx, tx, actor)
			if err != nil {
				return domain.EventDetails{}, err
			}
			next, err := domain.Resubmit(current, user, notes, rec.Now())
			if err != nil {
				return domain.EventDetails{}, err
			}
			if err := ipg.UpdateWorkflowInstance(ctx, tx, next); err != nil {
				return domain.EventDetails{}, err
			}

			crs, err := ipg.FindChangeRequests(ctx, tx, ipg.ChangeRequestFilter{
				WorkflowInstanceId: id, Status: domain.ChangeInReview,
			})
			if err != nil {
				return domain.EventDetails{}, err
			}
			recipients, err := ipg.Approvers(ctx, tx, next)
			if err != nil {
				return domain.EventDetails{}, err
			}
			for _, cr := range crs {
				if _, err := ipg.Notify(ctx, rec, domain.ReviewRequested(cr, recipients, rec.Now())...); err != nil {
					return domain.EventDetails{}, err
				}
			}

			resubmitted = next
			return domain.EventDetails{
				ChangeRequestIds: utils.Map(crs, func(cr domain.ChangeRequest) int { return cr.Id }),
			}, nil
		},
	)
	if err != nil {
		return domain.WorkflowInstance{}, err
	}
	return resubmitted, nil
}
