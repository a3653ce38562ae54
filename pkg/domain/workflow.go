package domain

import (
	"fmt"
	"slices"
	"time"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

// WorkflowAction is the kind of change a workflow approves.
type WorkflowAction string

const (
	DraftToPlanned     WorkflowAction = "DRAFT_TO_PLANNED"
	PlannedToExecuting WorkflowAction = "PLANNED_TO_EXECUTING"
	Generic            WorkflowAction = "GENERIC"
)

func (a WorkflowAction) String() string {
	return string(a)
}

func AsWorkflowAction(s string) (WorkflowAction, error) {
	switch a := WorkflowAction(s); a {
	case DraftToPlanned, PlannedToExecuting, Generic:
		return a, nil
	}
	return "", fmt.Errorf("'%s' is not WorkflowAction", s)
}

type WorkflowTriggerType string

const (
	TriggerCAN             WorkflowTriggerType = "CAN"
	TriggerProcurementShop WorkflowTriggerType = "PROCUREMENT_SHOP"
	TriggerAgreement       WorkflowTriggerType = "AGREEMENT"
)

func AsWorkflowTriggerType(s string) (WorkflowTriggerType, error) {
	switch t := WorkflowTriggerType(s); t {
	case TriggerCAN, TriggerProcurementShop, TriggerAgreement:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not WorkflowTriggerType", s)
}

type WorkflowStepType string

const (
	StepApproval     WorkflowStepType = "APPROVAL"
	StepDocumentMgmt WorkflowStepType = "DOCUMENT_MGMT"
	StepValidation   WorkflowStepType = "VALIDATION"
	StepProcurement  WorkflowStepType = "PROCUREMENT"
	StepAttestation  WorkflowStepType = "ATTESTATION"
)

func AsWorkflowStepType(s string) (WorkflowStepType, error) {
	switch t := WorkflowStepType(s); t {
	case StepApproval, StepDocumentMgmt, StepValidation, StepProcurement, StepAttestation:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not WorkflowStepType", s)
}

// WorkflowStatus is the status of workflow instances and of their steps.
type WorkflowStatus string

const (
	// the step is not reached yet.
	WorkflowPending WorkflowStatus = "PENDING"

	// waiting for a decision.
	WorkflowReview WorkflowStatus = "REVIEW"

	WorkflowApproved WorkflowStatus = "APPROVED"
	WorkflowRejected WorkflowStatus = "REJECTED"

	// the reviewer asked the requestor for changes.
	WorkflowChanges WorkflowStatus = "CHANGES"
)

func (s WorkflowStatus) String() string {
	return string(s)
}

func AsWorkflowStatus(s string) (WorkflowStatus, error) {
	switch st := WorkflowStatus(s); st {
	case WorkflowPending, WorkflowReview, WorkflowApproved, WorkflowRejected, WorkflowChanges:
		return st, nil
	}
	return "", fmt.Errorf("'%s' is not WorkflowStatus", s)
}

// Terminal statuses never change.
func (s WorkflowStatus) Terminal() bool {
	return s == WorkflowApproved || s == WorkflowRejected
}

type ApproverRuleKind string

const (
	// director and deputy director of the managing division.
	DivisionDirectors ApproverRuleKind = "DIVISION_DIRECTORS"

	// any user holding one of the roles.
	ByRole ApproverRuleKind = "ROLE"

	// fixed users.
	ByUsers ApproverRuleKind = "USERS"
)

func AsApproverRuleKind(s string) (ApproverRuleKind, error) {
	switch k := ApproverRuleKind(s); k {
	case DivisionDirectors, ByRole, ByUsers:
		return k, nil
	}
	return "", fmt.Errorf("'%s' is not ApproverRuleKind", s)
}

type ApproverRule struct {
	Kind    ApproverRuleKind
	Roles   []Role
	UserIds []int
}

type WorkflowStepTemplate struct {
	Index     int
	Name      string
	Type      WorkflowStepType
	Approvers ApproverRule
}

type WorkflowTemplate struct {
	Id     int
	Name   string
	Action WorkflowAction
	Steps  []WorkflowStepTemplate
}

type WorkflowTrigger struct {
	Type WorkflowTriggerType
	Id   int
}

type WorkflowStepInstance struct {
	Id              int
	Index           int
	Name            string
	Type            WorkflowStepType
	Status          WorkflowStatus
	ApproverUserIds []int
	ApproverRoles   []Role
	DecidedBy       *int
	DecidedOn       *time.Time
	Notes           string
}

// IsApprover tells whether the user may decide on the step.
func (s WorkflowStepInstance) IsApprover(u User) bool {
	if slices.Contains(s.ApproverUserIds, u.Id) {
		return true
	}
	for _, r := range s.ApproverRoles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

type WorkflowInstance struct {
	Id          int
	TemplateId  int
	Action      WorkflowAction
	TriggerType WorkflowTriggerType
	TriggerId   int
	Status      WorkflowStatus
	CurrentStep int
	Steps       []WorkflowStepInstance
	CreatedBy   int
	CreatedOn   time.Time
	UpdatedOn   time.Time
}

// Current returns the step waiting for a decision, or the last decided step.
func (w WorkflowInstance) Current() (WorkflowStepInstance, bool) {
	if w.CurrentStep < 0 || len(w.Steps) <= w.CurrentStep {
		return WorkflowStepInstance{}, false
	}
	return w.Steps[w.CurrentStep], true
}

// CanDecide tells whether the user may decide on the instance now.
func (w WorkflowInstance) CanDecide(u User) bool {
	if w.Status != WorkflowReview {
		return false
	}
	step, ok := w.Current()
	return ok && step.IsApprover(u)
}

func (w WorkflowInstance) clone() WorkflowInstance {
	steps := make([]WorkflowStepInstance, len(w.Steps))
	for i, s := range w.Steps {
		s.ApproverUserIds = slices.Clone(s.ApproverUserIds)
		s.ApproverRoles = slices.Clone(s.ApproverRoles)
		steps[i] = s
	}
	w.Steps = steps
	return w
}

// Instantiate starts a workflow from the template.
//
// Approvers of each step are resolved now. division is the managing division of the
// change; it may be nil when no step approves by DIVISION_DIRECTORS.
func Instantiate(
	t WorkflowTemplate, trigger WorkflowTrigger, division *Division, actor int, now time.Time,
) (WorkflowInstance, error) {
	if len(t.Steps) == 0 {
		return WorkflowInstance{}, fmt.Errorf(
			"%w: workflow template %d (%s) has no steps", domerr.ErrValidation, t.Id, t.Name,
		)
	}

	tsteps := slices.Clone(t.Steps)
	slices.SortStableFunc(tsteps, func(a, b WorkflowStepTemplate) int { return a.Index - b.Index })

	steps := make([]WorkflowStepInstance, 0, len(tsteps))
	for i, ts := range tsteps {
		step := WorkflowStepInstance{
			Index:  i,
			Name:   ts.Name,
			Type:   ts.Type,
			Status: WorkflowPending,
		}
		switch ts.Approvers.Kind {
		case DivisionDirectors:
			if division != nil {
				step.ApproverUserIds = division.Directors()
			}
		case ByRole:
			step.ApproverRoles = slices.Clone(ts.Approvers.Roles)
		case ByUsers:
			step.ApproverUserIds = slices.Clone(ts.Approvers.UserIds)
		}
		if len(step.ApproverUserIds) == 0 && len(step.ApproverRoles) == 0 {
			verr := domerr.NewValidationError()
			verr.Add("workflow", fmt.Sprintf("step '%s' has no approvers", ts.Name))
			return WorkflowInstance{}, verr
		}
		steps = append(steps, step)
	}
	steps[0].Status = WorkflowReview

	return WorkflowInstance{
		TemplateId:  t.Id,
		Action:      t.Action,
		TriggerType: trigger.Type,
		TriggerId:   trigger.Id,
		Status:      WorkflowReview,
		CurrentStep: 0,
		Steps:       steps,
		CreatedBy:   actor,
		CreatedOn:   now,
		UpdatedOn:   now,
	}, nil
}

// ReviewDecision is what a reviewer decides on a step.
type ReviewDecision string

const (
	Approve        ReviewDecision = "APPROVE"
	Reject         ReviewDecision = "REJECT"
	RequestChanges ReviewDecision = "REQUEST_CHANGES"
)

func (d ReviewDecision) String() string {
	return string(d)
}

func AsReviewDecision(s string) (ReviewDecision, error) {
	switch d := ReviewDecision(s); d {
	case Approve, Reject, RequestChanges:
		return d, nil
	}
	return "", fmt.Errorf("'%s' is not ReviewDecision", s)
}

// Decide applies the decision of the user on the current step.
//
// Errors:
//
// - ErrInvalidStateChange: the instance is not in REVIEW.
//
// - ErrForbidden: the user is not an approver of the current step.
func Decide(
	w WorkflowInstance, u User, d ReviewDecision, notes string, now time.Time,
) (WorkflowInstance, error) {
	if w.Status != WorkflowReview {
		return w, fmt.Errorf(
			"%w: workflow instance %d is %s", domerr.ErrInvalidStateChange, w.Id, w.Status,
		)
	}
	step, ok := w.Current()
	if !ok {
		return w, fmt.Errorf(
			"%w: workflow instance %d has no step %d", domerr.ErrInvalidStateChange, w.Id, w.CurrentStep,
		)
	}
	if !step.IsApprover(u) {
		return w, domerr.Forbidden(
			"user %d is not an approver of step '%s' of workflow instance %d", u.Id, step.Name, w.Id,
		)
	}

	next := w.clone()
	cur := &next.Steps[next.CurrentStep]
	decidedBy := u.Id
	decidedOn := now
	cur.DecidedBy = &decidedBy
	cur.DecidedOn = &decidedOn
	cur.Notes = notes
	next.UpdatedOn = now

	switch d {
	case Approve:
		cur.Status = WorkflowApproved
		if next.CurrentStep+1 < len(next.Steps) {
			next.CurrentStep += 1
			next.Steps[next.CurrentStep].Status = WorkflowReview
		} else {
			next.Status = WorkflowApproved
		}
	case Reject:
		cur.Status = WorkflowRejected
		next.Status = WorkflowRejected
	case RequestChanges:
		cur.Status = WorkflowChanges
		next.Status = WorkflowChanges
	default:
		verr := domerr.NewValidationError()
		verr.Add("action", fmt.Sprintf("'%s' is not a decision", d))
		return w, verr
	}
	return next, nil
}

// Resubmit sends an instance the reviewer asked changes for back to review.
//
// Only the creator of the instance may resubmit.
func Resubmit(w WorkflowInstance, u User, notes string, now time.Time) (WorkflowInstance, error) {
	if w.Status != WorkflowChanges {
		return w, domerr.InvalidStateChange(
			fmt.Sprintf("workflow instance %d", w.Id), w.Status, WorkflowReview,
		)
	}
	if u.Id != w.CreatedBy {
		return w, domerr.Forbidden("only the creator can resubmit workflow instance %d", w.Id)
	}

	next := w.clone()
	cur := &next.Steps[next.CurrentStep]
	cur.Status = WorkflowReview
	cur.DecidedBy = nil
	cur.DecidedOn = nil
	if notes != "" {
		cur.Notes = notes
	}
	next.Status = WorkflowReview
	next.UpdatedOn = now
	return next, nil
}
