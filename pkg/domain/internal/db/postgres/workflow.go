package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

// TemplateFor returns the workflow template for the action.
func TemplateFor(ctx context.Context, conn kpool.Queryer, action domain.WorkflowAction) (domain.WorkflowTemplate, error) {
	t := domain.WorkflowTemplate{Action: action}
	err := conn.QueryRow(
		ctx,
		`select "id", "name" from "workflow_template" where "action" = $1`,
		string(action),
	).Scan(&t.Id, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WorkflowTemplate{}, xe.Wrap(xepg.Missing{
			Table: "workflow_template", Identity: fmt.Sprintf("action = %s", action),
		})
	}
	if err != nil {
		return domain.WorkflowTemplate{}, xe.Wrap(err)
	}

	rows, err := conn.Query(
		ctx,
		`
		select "index", "name", "step_type", "approver_kind", "approver_roles", "approver_user_ids"
		from "workflow_step_template"
		where "workflow_template_id" = $1
		order by "index"
		`,
		t.Id,
	)
	if err != nil {
		return domain.WorkflowTemplate{}, xe.Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		st := domain.WorkflowStepTemplate{}
		var stepType, kind string
		var roles []string
		var userIds []int
		if err := rows.Scan(&st.Index, &st.Name, &stepType, &kind, &roles, &userIds); err != nil {
			return domain.WorkflowTemplate{}, xe.Wrap(err)
		}
		if st.Type, err = domain.AsWorkflowStepType(stepType); err != nil {
			return domain.WorkflowTemplate{}, xe.Wrap(err)
		}
		if st.Approvers.Kind, err = domain.AsApproverRuleKind(kind); err != nil {
			return domain.WorkflowTemplate{}, xe.Wrap(err)
		}
		if st.Approvers.Roles, err = AsRoles(roles); err != nil {
			return domain.WorkflowTemplate{}, xe.Wrap(err)
		}
		st.Approvers.UserIds = userIds
		t.Steps = append(t.Steps, st)
	}
	return t, xe.Wrap(rows.Err())
}

// InsertWorkflowInstance creates a workflow instance with its steps, and returns it with ids.
func InsertWorkflowInstance(ctx context.Context, conn kpool.Queryer, w domain.WorkflowInstance) (domain.WorkflowInstance, error) {
	if err := conn.QueryRow(
		ctx,
		`
		insert into "workflow_instance" (
			"workflow_template_id", "action", "trigger_type", "trigger_id",
			"status", "current_step", "created_by", "created_on", "updated_on"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning "id"
		`,
		w.TemplateId, string(w.Action), string(w.TriggerType), w.TriggerId,
		string(w.Status), w.CurrentStep, w.CreatedBy, w.CreatedOn, w.UpdatedOn,
	).Scan(&w.Id); err != nil {
		return domain.WorkflowInstance{}, xe.Wrap(xepg.Translate(err))
	}

	steps := make([]domain.WorkflowStepInstance, 0, len(w.Steps))
	for _, s := range w.Steps {
		if err := conn.QueryRow(
			ctx,
			`
			insert into "workflow_step_instance" (
				"workflow_instance_id", "index", "name", "step_type", "status",
				"approver_user_ids", "approver_roles", "decided_by", "decided_on", "notes"
			)
			values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			returning "id"
			`,
			w.Id, s.Index, s.Name, string(s.Type), string(s.Status),
			intArray(s.ApproverUserIds), Roles(s.ApproverRoles), s.DecidedBy, Timestamp(s.DecidedOn), s.Notes,
		).Scan(&s.Id); err != nil {
			return domain.WorkflowInstance{}, xe.Wrap(xepg.Translate(err))
		}
		steps = append(steps, s)
	}
	w.Steps = steps
	return w, nil
}

// GetWorkflowInstance returns a workflow instance. When lock is true, the instance is locked for update.
func GetWorkflowInstance(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.WorkflowInstance, error) {
	w := domain.WorkflowInstance{}
	var action, triggerType, status string
	err := conn.QueryRow(
		ctx,
		`
		select
			"id", "workflow_template_id", "action", "trigger_type", "trigger_id",
			"status", "current_step", "created_by", "created_on", "updated_on"
		from "workflow_instance" where "id" = $1
		`+forUpdate(lock),
		id,
	).Scan(
		&w.Id, &w.TemplateId, &action, &triggerType, &w.TriggerId,
		&status, &w.CurrentStep, &w.CreatedBy, &w.CreatedOn, &w.UpdatedOn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.WorkflowInstance{}, xe.Wrap(xepg.Missing{
			Table: "workflow_instance", Identity: fmt.Sprintf("id = %d", id),
		})
	}
	if err != nil {
		return domain.WorkflowInstance{}, xe.Wrap(err)
	}
	if w.Action, err = domain.AsWorkflowAction(action); err != nil {
		return domain.WorkflowInstance{}, xe.Wrap(err)
	}
	if w.TriggerType, err = domain.AsWorkflowTriggerType(triggerType); err != nil {
		return domain.WorkflowInstance{}, xe.Wrap(err)
	}
	if w.Status, err = domain.AsWorkflowStatus(status); err != nil {
		return domain.WorkflowInstance{}, xe.Wrap(err)
	}

	rows, err := conn.Query(
		ctx,
		`
		select
			"id", "index", "name", "step_type", "status",
			"approver_user_ids", "approver_roles", "decided_by", "decided_on", "notes"
		from "workflow_step_instance"
		where "workflow_instance_id" = $1
		order by "index"
		`,
		id,
	)
	if err != nil {
		return domain.WorkflowInstance{}, xe.Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		s := domain.WorkflowStepInstance{}
		var stepType, stepStatus string
		var roles []string
		if err := rows.Scan(
			&s.Id, &s.Index, &s.Name, &stepType, &stepStatus,
			&s.ApproverUserIds, &roles, &s.DecidedBy, &s.DecidedOn, &s.Notes,
		); err != nil {
			return domain.WorkflowInstance{}, xe.Wrap(err)
		}
		if s.Type, err = domain.AsWorkflowStepType(stepType); err != nil {
			return domain.WorkflowInstance{}, xe.Wrap(err)
		}
		if s.Status, err = domain.AsWorkflowStatus(stepStatus); err != nil {
			return domain.WorkflowInstance{}, xe.Wrap(err)
		}
		if s.ApproverRoles, err = AsRoles(roles); err != nil {
			return domain.WorkflowInstance{}, xe.Wrap(err)
		}
		w.Steps = append(w.Steps, s)
	}
	return w, xe.Wrap(rows.Err())
}

// UpdateWorkflowInstance writes the status of the instance and its steps.
func UpdateWorkflowInstance(ctx context.Context, conn kpool.Queryer, w domain.WorkflowInstance) error {
	if _, err := conn.Exec(
		ctx,
		`
		update "workflow_instance"
		set "status" = $2, "current_step" = $3, "updated_on" = $4
		where "id" = $1
		`,
		w.Id, string(w.Status), w.CurrentStep, w.UpdatedOn,
	); err != nil {
		return xe.Wrap(err)
	}
	for _, s := range w.Steps {
		if _, err := conn.Exec(
			ctx,
			`
			update "workflow_step_instance"
			set "status" = $2, "decided_by" = $3, "decided_on" = $4, "notes" = $5
			where "id" = $1
			`,
			s.Id, string(s.Status), s.DecidedBy, Timestamp(s.DecidedOn), s.Notes,
		); err != nil {
			return xe.Wrap(err)
		}
	}
	return nil
}

func intArray(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
