package postgres

import (
	"context"
	"fmt"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	kcr "github.com/opre/ops/pkg/domain/changerequest/db"
	domerr "github.com/opre/ops/pkg/domain/errors"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
)

type pgChangeRequest struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kcr.Interface {
	return &pgChangeRequest{pool: pool}
}

func (c *pgChangeRequest) Get(ctx context.Context, id int) (domain.ChangeRequest, error) {
	return ipg.GetChangeRequest(ctx, c.pool, id, false)
}

func (c *pgChangeRequest) Find(ctx context.Context, q kcr.Query) ([]domain.ChangeRequest, error) {
	f := ipg.ChangeRequestFilter{
		AgreementId:      q.AgreementId,
		BudgetLineItemId: q.BudgetLineItemId,
		Status:           q.Status,
	}
	if q.ReviewerId != 0 {
		reviewer, err := ipg.GetUser(ctx, c.pool, q.ReviewerId)
		if err != nil {
			return nil, err
		}
		f.Reviewer = &reviewer
	}
	return ipg.FindChangeRequests(ctx, c.pool, f)
}

func (c *pgChangeRequest) Review(
	ctx context.Context, reviewer int, id int, decision domain.ReviewDecision, notes string,
) (domain.Review, error) {
	var review domain.Review
	_, err := ipg.Run(
		ctx, c.pool,
		ipg.Op{Actor: reviewer, EventType: domain.UpdateChangeRequest, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			r, err := reviewInTx(ctx, rec, id, decision, notes)
			if err != nil {
				return domain.EventDetails{}, err
			}
			review = r
			return domain.EventDetails{ChangeRequestIds: []int{id}}, nil
		},
	)
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}

func (c *pgChangeRequest) ReviewAll(
	ctx context.Context, reviewer int, ids []int, decision domain.ReviewDecision, notes string,
) []domain.ReviewResult {
	results := make([]domain.ReviewResult, 0, len(ids))
	for _, id := range ids {
		r, err := c.Review(ctx, reviewer, id, decision, notes)
		if err != nil {
			results = append(results, domain.ReviewResult{Id: id, Err: err})
			continue
		}
		results = append(results, domain.ReviewResult{Id: id, Review: &r})
	}
	return results
}

func reviewInTx(
	ctx context.Context, rec *ipg.Recorder, id int, decision domain.ReviewDecision, notes string,
) (domain.Review, error) {
	tx := rec.Tx()

	cr, err := ipg.GetChangeRequest(ctx, tx, id, true)
	if err != nil {
		return domain.Review{}, err
	}
	if err := cr.CheckReviewable(); err != nil {
		return domain.Review{}, err
	}
	wf, err := ipg.GetWorkflowInstance(ctx, tx, cr.WorkflowInstanceId, true)
	if err != nil {
		return domain.Review{}, err
	}
	user, err := ipg.GetUser(ctx, tx, rec.Actor())
	if err != nil {
		return domain.Review{}, err
	}

	nextWf, err := domain.Decide(wf, user, decision, notes, rec.Now())
	if err != nil {
		return domain.Review{}, err
	}
	if err := ipg.UpdateWorkflowInstance(ctx, tx, nextWf); err != nil {
		return domain.Review{}, err
	}

	nextCr, final, err := cr.Conclude(nextWf, user.Id, notes, rec.Now())
	if err != nil {
		return domain.Review{}, err
	}

	switch {
	case final:
		if err := ipg.UpdateChangeRequest(ctx, tx, nextCr); err != nil {
			return domain.Review{}, err
		}
		if _, err := rec.Updated(ctx, domain.ClassChangeRequest, id, cr, nextCr); err != nil {
			return domain.Review{}, err
		}
		if nextCr.Status == domain.ChangeApproved {
			if err := ipg.ApplyChangeRequest(ctx, rec, nextCr); err != nil {
				return domain.Review{}, fmt.Errorf("applying change request %d: %w", id, err)
			}
		}
		if _, err := ipg.Notify(ctx, rec, domain.ReviewConcluded(nextCr, rec.Now())); err != nil {
			return domain.Review{}, err
		}

	case nextWf.Status == domain.WorkflowChanges:
		if _, err := ipg.Notify(ctx, rec, domain.ChangesRequested(nextCr, notes, rec.Now())); err != nil {
			return domain.Review{}, err
		}

	case nextWf.Status == domain.WorkflowReview:
		recipients, err := ipg.Approvers(ctx, tx, nextWf)
		if err != nil {
			return domain.Review{}, err
		}
		if _, err := ipg.Notify(ctx, rec, domain.ReviewRequested(nextCr, recipients, rec.Now())...); err != nil {
			return domain.Review{}, err
		}

	default:
		return domain.Review{}, fmt.Errorf(
			"%w: workflow instance %d is %s after review", domerr.ErrInvalidStateChange, nextWf.Id, nextWf.Status,
		)
	}

	return domain.Review{ChangeRequest: nextCr, Workflow: nextWf}, nil
}
