package domain

import (
	"fmt"
	"time"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

type ChangeRequestType string

const (
	AgreementChangeRequest      ChangeRequestType = "AGREEMENT_CHANGE_REQUEST"
	BudgetLineItemChangeRequest ChangeRequestType = "BUDGET_LINE_ITEM_CHANGE_REQUEST"
)

func AsChangeRequestType(s string) (ChangeRequestType, error) {
	switch t := ChangeRequestType(s); t {
	case AgreementChangeRequest, BudgetLineItemChangeRequest:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not ChangeRequestType", s)
}

type ChangeRequestStatus string

const (
	ChangeInReview ChangeRequestStatus = "IN_REVIEW"
	ChangeApproved ChangeRequestStatus = "APPROVED"
	ChangeRejected ChangeRequestStatus = "REJECTED"
)

func (s ChangeRequestStatus) String() string {
	return string(s)
}

func AsChangeRequestStatus(s string) (ChangeRequestStatus, error) {
	switch st := ChangeRequestStatus(s); st {
	case ChangeInReview, ChangeApproved, ChangeRejected:
		return st, nil
	}
	return "", fmt.Errorf("'%s' is not ChangeRequestStatus", s)
}

// RequestedChange is the patch a change request applies once approved.
//
// Exactly one of the fields is set, matching the type of the change request.
type RequestedChange struct {
	BudgetLineItem *BudgetLineItemPatch `json:"budget_line_item,omitempty"`
	Agreement      *AgreementPatch      `json:"agreement,omitempty"`
}

// ChangeRequestDraft is a change request to be opened.
type ChangeRequestDraft struct {
	Type             ChangeRequestType
	AgreementId      int
	BudgetLineItemId *int

	// ManagingCanId is the CAN whose division manages the change.
	// Nil when no CAN is known.
	ManagingCanId *int

	Change                   RequestedChange
	Diff                     Changes
	HasBudgetChange          bool
	HasStatusChange          bool
	HasProcurementShopChange bool
	Action                   WorkflowAction
	RequestorNotes           string
}

type ChangeRequest struct {
	Id                       int
	Type                     ChangeRequestType
	Status                   ChangeRequestStatus
	AgreementId              int
	BudgetLineItemId         *int
	ManagingDivisionId       *int
	RequestedChange          RequestedChange
	Diff                     Changes
	HasBudgetChange          bool
	HasStatusChange          bool
	HasProcurementShopChange bool
	RequestorNotes           string
	ReviewerNotes            string
	WorkflowInstanceId       int
	CreatedBy                int
	CreatedOn                time.Time
	ReviewedBy               *int
	ReviewedOn               *time.Time
}

func (cr ChangeRequest) Snapshot() Record {
	return Record{
		"change_request_type":   cr.Type,
		"status":                cr.Status,
		"agreement_id":          cr.AgreementId,
		"budget_line_item_id":   cr.BudgetLineItemId,
		"managing_division_id":  cr.ManagingDivisionId,
		"requested_change_data": cr.RequestedChange,
		"requested_change_diff": cr.Diff,
		"has_budget_change":     cr.HasBudgetChange,
		"has_status_change":     cr.HasStatusChange,
		"has_proc_shop_change":  cr.HasProcurementShopChange,
		"requestor_notes":       cr.RequestorNotes,
		"reviewer_notes":        cr.ReviewerNotes,
		"workflow_instance_id":  cr.WorkflowInstanceId,
		"reviewed_by_id":        cr.ReviewedBy,
		"reviewed_on":           cr.ReviewedOn,
	}
}

// Subject names what the change request changes, for humans.
func (cr ChangeRequest) Subject() string {
	if cr.BudgetLineItemId != nil {
		return fmt.Sprintf("budget line item %d", *cr.BudgetLineItemId)
	}
	return fmt.Sprintf("agreement %d", cr.AgreementId)
}

// Open makes a change request of the draft, reviewed by the workflow instance.
func (d ChangeRequestDraft) Open(managingDivisionId *int, workflowInstanceId int, actor int, now time.Time) ChangeRequest {
	return ChangeRequest{
		Type:                     d.Type,
		Status:                   ChangeInReview,
		AgreementId:              d.AgreementId,
		BudgetLineItemId:         d.BudgetLineItemId,
		ManagingDivisionId:       managingDivisionId,
		RequestedChange:          d.Change,
		Diff:                     d.Diff,
		HasBudgetChange:          d.HasBudgetChange,
		HasStatusChange:          d.HasStatusChange,
		HasProcurementShopChange: d.HasProcurementShopChange,
		RequestorNotes:           d.RequestorNotes,
		WorkflowInstanceId:       workflowInstanceId,
		CreatedBy:                actor,
		CreatedOn:                now,
	}
}

// Conclude follows the workflow instance reviewing the change request.
//
// It returns the updated request and whether the request reached a final decision.
// A request whose workflow is still in review (or waiting for changes) stays IN_REVIEW.
func (cr ChangeRequest) Conclude(wf WorkflowInstance, reviewer int, notes string, now time.Time) (ChangeRequest, bool, error) {
	if err := cr.CheckReviewable(); err != nil {
		return cr, false, err
	}
	if wf.Id != cr.WorkflowInstanceId {
		return cr, false, fmt.Errorf(
			"%w: change request %d is not reviewed by workflow instance %d",
			domerr.ErrConflict, cr.Id, wf.Id,
		)
	}

	switch wf.Status {
	case WorkflowApproved:
		cr.Status = ChangeApproved
	case WorkflowRejected:
		cr.Status = ChangeRejected
	default:
		return cr, false, nil
	}
	r := reviewer
	t := now
	cr.ReviewedBy = &r
	cr.ReviewedOn = &t
	cr.ReviewerNotes = notes
	return cr, true, nil
}

// CheckReviewable tells whether a review on the change request can be accepted.
func (cr ChangeRequest) CheckReviewable() error {
	if cr.Status != ChangeInReview {
		return fmt.Errorf(
			"%w: change request %d is already %s", domerr.ErrInvalidStateChange, cr.Id, cr.Status,
		)
	}
	return nil
}

// OpensProcurement tells that approving the request moves a budget line item into execution.
func (cr ChangeRequest) OpensProcurement() bool {
	if !cr.HasStatusChange || cr.RequestedChange.BudgetLineItem == nil {
		return false
	}
	st := cr.RequestedChange.BudgetLineItem.Status.Value()
	return st != nil && *st == InExecution
}
