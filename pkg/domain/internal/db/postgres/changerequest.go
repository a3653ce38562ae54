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
	domerr "github.com/opre/ops/pkg/domain/errors"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

const changeRequestColumns = `
	"cr"."id", "cr"."change_request_type", "cr"."status", "cr"."agreement_id",
	"cr"."budget_line_item_id", "cr"."managing_division_id",
	"cr"."requested_change_data", "cr"."requested_change_diff",
	"cr"."has_budget_change", "cr"."has_status_change", "cr"."has_proc_shop_change",
	"cr"."requestor_notes", "cr"."reviewer_notes", "cr"."workflow_instance_id",
	"cr"."created_by", "cr"."created_on", "cr"."reviewed_by", "cr"."reviewed_on"
`

func scanChangeRequest(row pgx.Row) (domain.ChangeRequest, error) {
	cr := domain.ChangeRequest{}
	var typ, status string
	var data, diff pgtype.JSONB
	if err := row.Scan(
		&cr.Id, &typ, &status, &cr.AgreementId,
		&cr.BudgetLineItemId, &cr.ManagingDivisionId,
		&data, &diff,
		&cr.HasBudgetChange, &cr.HasStatusChange, &cr.HasProcurementShopChange,
		&cr.RequestorNotes, &cr.ReviewerNotes, &cr.WorkflowInstanceId,
		&cr.CreatedBy, &cr.CreatedOn, &cr.ReviewedBy, &cr.ReviewedOn,
	); err != nil {
		return domain.ChangeRequest{}, err
	}

	var err error
	if cr.Type, err = domain.AsChangeRequestType(typ); err != nil {
		return domain.ChangeRequest{}, err
	}
	if cr.Status, err = domain.AsChangeRequestStatus(status); err != nil {
		return domain.ChangeRequest{}, err
	}
	if err := FromJSONB(data, &cr.RequestedChange); err != nil {
		return domain.ChangeRequest{}, err
	}
	if err := FromJSONB(diff, &cr.Diff); err != nil {
		return domain.ChangeRequest{}, err
	}
	return cr, nil
}

// GetChangeRequest returns a change request, or Missing.
func GetChangeRequest(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.ChangeRequest, error) {
	cr, err := scanChangeRequest(conn.QueryRow(
		ctx,
		`select `+changeRequestColumns+` from "change_request" as "cr" where "cr"."id" = $1`+forUpdate(lock),
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ChangeRequest{}, xe.Wrap(xepg.Missing{Table: "change_request", Identity: fmt.Sprintf("id = %d", id)})
	}
	if err != nil {
		return domain.ChangeRequest{}, xe.Wrap(err)
	}
	return cr, nil
}

// ChangeRequestFilter selects change requests. Zero fields do not filter.
type ChangeRequestFilter struct {
	AgreementId        int
	BudgetLineItemId   int
	WorkflowInstanceId int
	Status             domain.ChangeRequestStatus

	// Reviewer selects requests whose current workflow step the user may decide.
	Reviewer *domain.User
}

// FindChangeRequests returns change requests matching the filter, oldest first.
func FindChangeRequests(ctx context.Context, conn kpool.Queryer, f ChangeRequestFilter) ([]domain.ChangeRequest, error) {
	reviewerId := 0
	reviewerRoles := []string{}
	if f.Reviewer != nil {
		reviewerId = f.Reviewer.Id
		reviewerRoles = Roles(f.Reviewer.Roles)
	}

	rows, err := conn.Query(
		ctx,
		`
		select `+changeRequestColumns+`
		from "change_request" as "cr"
		inner join "workflow_instance" as "w" on "w"."id" = "cr"."workflow_instance_id"
		left outer join "workflow_step_instance" as "s"
			on "s"."workflow_instance_id" = "w"."id" and "s"."index" = "w"."current_step"
		where
			($1 = 0 or "cr"."agreement_id" = $1)
			and ($2 = 0 or "cr"."budget_line_item_id" = $2)
			and ($3 = 0 or "cr"."workflow_instance_id" = $3)
			and ($4 = '' or "cr"."status" = $4)
			and (
				$5 = 0
				or (
					"cr"."status" = 'IN_REVIEW' and "w"."status" = 'REVIEW'
					and ($5 = any("s"."approver_user_ids") or "s"."approver_roles" && $6::text[])
				)
			)
		order by "cr"."created_on", "cr"."id"
		`,
		f.AgreementId, f.BudgetLineItemId, f.WorkflowInstanceId, string(f.Status),
		reviewerId, reviewerRoles,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	crs := []domain.ChangeRequest{}
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		crs = append(crs, cr)
	}
	return crs, xe.Wrap(rows.Err())
}

func InsertChangeRequest(ctx context.Context, conn kpool.Queryer, cr domain.ChangeRequest) (domain.ChangeRequest, error) {
	data, err := JSONB(cr.RequestedChange)
	if err != nil {
		return domain.ChangeRequest{}, xe.Wrap(err)
	}
	diff, err := JSONB(cr.Diff)
	if err != nil {
		return domain.ChangeRequest{}, xe.Wrap(err)
	}
	if err := conn.QueryRow(
		ctx,
		`
		insert into "change_request" (
			"change_request_type", "status", "agreement_id", "budget_line_item_id",
			"managing_division_id", "requested_change_data", "requested_change_diff",
			"has_budget_change", "has_status_change", "has_proc_shop_change",
			"requestor_notes", "reviewer_notes", "workflow_instance_id",
			"created_by", "created_on", "reviewed_by", "reviewed_on"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		returning "id"
		`,
		string(cr.Type), string(cr.Status), cr.AgreementId, cr.BudgetLineItemId,
		cr.ManagingDivisionId, data, diff,
		cr.HasBudgetChange, cr.HasStatusChange, cr.HasProcurementShopChange,
		cr.RequestorNotes, cr.ReviewerNotes, cr.WorkflowInstanceId,
		cr.CreatedBy, cr.CreatedOn, cr.ReviewedBy, Timestamp(cr.ReviewedOn),
	).Scan(&cr.Id); err != nil {
		return domain.ChangeRequest{}, xe.Wrap(xepg.Translate(err))
	}
	return cr, nil
}

// UpdateChangeRequest writes the review state of the request.
func UpdateChangeRequest(ctx context.Context, conn kpool.Queryer, cr domain.ChangeRequest) error {
	_, err := conn.Exec(
		ctx,
		`
		update "change_request"
		set "status" = $2, "reviewer_notes" = $3, "reviewed_by" = $4, "reviewed_on" = $5
		where "id" = $1
		`,
		cr.Id, string(cr.Status), cr.ReviewerNotes, cr.ReviewedBy, Timestamp(cr.ReviewedOn),
	)
	return xe.Wrap(xepg.Translate(err))
}

// OpenChangeRequests opens change requests of the drafts.
//
// For each draft, a workflow is instantiated from the template of its action, triggered by
// the agreement and managed by the division of the managing CAN. The approvers of the first
// step are notified.
func OpenChangeRequests(ctx context.Context, rec *Recorder, drafts []domain.ChangeRequestDraft) ([]domain.ChangeRequest, error) {
	tx := rec.Tx()
	opened := make([]domain.ChangeRequest, 0, len(drafts))
	for _, d := range drafts {
		var division *domain.Division
		var divisionId *int
		if d.ManagingCanId != nil {
			div, err := DivisionOfCAN(ctx, tx, *d.ManagingCanId)
			if err != nil {
				return nil, err
			}
			division = &div
			divisionId = &div.Id
		}

		tmpl, err := TemplateFor(ctx, tx, d.Action)
		if err != nil {
			return nil, err
		}
		wf, err := domain.Instantiate(
			tmpl,
			domain.WorkflowTrigger{Type: domain.TriggerAgreement, Id: d.AgreementId},
			division, rec.Actor(), rec.Now(),
		)
		if err != nil {
			return nil, err
		}
		if wf, err = InsertWorkflowInstance(ctx, tx, wf); err != nil {
			return nil, err
		}

		cr, err := InsertChangeRequest(ctx, tx, d.Open(divisionId, wf.Id, rec.Actor(), rec.Now()))
		if err != nil {
			return nil, err
		}
		if err := rec.New(ctx, domain.ClassChangeRequest, cr.Id, cr); err != nil {
			return nil, err
		}

		recipients, err := Approvers(ctx, tx, wf)
		if err != nil {
			return nil, err
		}
		if _, err := Notify(ctx, rec, domain.ReviewRequested(cr, recipients, rec.Now())...); err != nil {
			return nil, err
		}
		opened = append(opened, cr)
	}
	return opened, nil
}

// Approvers lists user ids who may decide the current step of the workflow.
func Approvers(ctx context.Context, conn kpool.Queryer, wf domain.WorkflowInstance) ([]int, error) {
	step, ok := wf.Current()
	if !ok {
		return []int{}, nil
	}
	byRole, err := UsersWithRoles(ctx, conn, step.ApproverRoles)
	if err != nil {
		return nil, err
	}
	ids := slices.Clone(step.ApproverUserIds)
	for _, id := range byRole {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ApplyChangeRequest applies the change of an approved request to its target.
//
// Approving a move into execution ensures that the agreement has an active procurement tracker.
func ApplyChangeRequest(ctx context.Context, rec *Recorder, cr domain.ChangeRequest) error {
	if cr.Status != domain.ChangeApproved {
		return fmt.Errorf(
			"%w: change request %d is %s, not approved", domerr.ErrInvalidStateChange, cr.Id, cr.Status,
		)
	}
	tx := rec.Tx()

	switch cr.Type {
	case domain.BudgetLineItemChangeRequest:
		if cr.BudgetLineItemId == nil || cr.RequestedChange.BudgetLineItem == nil {
			return fmt.Errorf("%w: change request %d has no budget line item change", domerr.ErrMissing, cr.Id)
		}
		patch := *cr.RequestedChange.BudgetLineItem
		current, err := GetBudgetLineItem(ctx, tx, *cr.BudgetLineItemId, true)
		if err != nil {
			return err
		}
		if target := patch.Status.Value(); target != nil && *target != current.Status {
			if _, err := domain.StatusTransition(current.Status, *target); err != nil {
				return err
			}
		}
		next := current.Apply(patch)
		next.UpdatedOn = rec.Now()
		if err := UpdateBudgetLineItem(ctx, tx, next); err != nil {
			return err
		}
		if _, err := rec.Updated(ctx, domain.ClassBudgetLineItem, next.Id, current, next); err != nil {
			return err
		}
		if cr.OpensProcurement() {
			if _, _, err := EnsureTracker(ctx, rec, cr.AgreementId); err != nil {
				return err
			}
		}
		return nil

	case domain.AgreementChangeRequest:
		if cr.RequestedChange.Agreement == nil {
			return fmt.Errorf("%w: change request %d has no agreement change", domerr.ErrMissing, cr.Id)
		}
		current, err := GetAgreement(ctx, tx, cr.AgreementId, true)
		if err != nil {
			return err
		}
		next := current.Apply(*cr.RequestedChange.Agreement)
		next.UpdatedOn = rec.Now()
		if err := UpdateAgreement(ctx, tx, next); err != nil {
			return err
		}
		_, err = rec.Updated(ctx, domain.ClassAgreement, next.Id, current, next)
		return err
	}
	return fmt.Errorf("change request %d: unknown type %s", cr.Id, cr.Type)
}
