package domain

import (
	"fmt"
	"time"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

type BudgetLineItemStatus string

const (
	// The budget line item is being drafted. It commits no money.
	Draft BudgetLineItemStatus = "DRAFT"

	// The money is planned to be spent on the agreement.
	Planned BudgetLineItemStatus = "PLANNED"

	// The procurement is in progress.
	InExecution BudgetLineItemStatus = "IN_EXECUTION"

	// The agreement has been awarded and the money is obligated.
	Obligated BudgetLineItemStatus = "OBLIGATED"
)

func (s BudgetLineItemStatus) String() string {
	return string(s)
}

func AsBudgetLineItemStatus(s string) (BudgetLineItemStatus, error) {
	switch st := BudgetLineItemStatus(s); st {
	case Draft, Planned, InExecution, Obligated:
		return st, nil
	default:
		return "", fmt.Errorf("'%s' is not BudgetLineItemStatus", s)
	}
}

// Locked reports that budget line items in the status can not be edited anymore.
func (s BudgetLineItemStatus) Locked() bool {
	return s == Obligated
}

// BudgetLineItem is an amount of money from a CAN, needed by an agreement on a date.
type BudgetLineItem struct {
	Id                    int
	AgreementId           int
	CanId                 *int
	Amount                *Amount
	Status                BudgetLineItemStatus
	DateNeeded            *Date
	LineDescription       string
	Comments              string
	ProcShopFeePercentage *Rate
	CreatedBy             int
	CreatedOn             time.Time
	UpdatedOn             time.Time

	// InReview is true while any change request on the item is IN_REVIEW.
	InReview bool
}

func (b BudgetLineItem) Snapshot() Record {
	return Record{
		"agreement_id":             b.AgreementId,
		"can_id":                   b.CanId,
		"amount":                   b.Amount,
		"status":                   b.Status,
		"date_needed":              b.DateNeeded,
		"line_description":         b.LineDescription,
		"comments":                 b.Comments,
		"proc_shop_fee_percentage": b.ProcShopFeePercentage,
	}
}

// Fee charged by the procurement shop on the item.
//
// The fee percentage of the item itself wins over the procurement shop's fee schedule.
func (b BudgetLineItem) Fee(fees FeeSchedule) Amount {
	if b.Amount == nil {
		return 0
	}
	if b.ProcShopFeePercentage != nil {
		return b.ProcShopFeePercentage.Of(*b.Amount)
	}
	if fees == nil {
		return 0
	}
	return fees.RateAt(b.AgreementId, deref(b.DateNeeded)).Of(*b.Amount)
}

// Total is the amount with the fee.
func (b BudgetLineItem) Total(fees FeeSchedule) Amount {
	return deref(b.Amount) + b.Fee(fees)
}

// BudgetLineItemPatch is a partial update of a budget line item.
type BudgetLineItemPatch struct {
	CanId                 Field[int]                  `json:"can_id"`
	Amount                Field[Amount]               `json:"amount"`
	DateNeeded            Field[Date]                 `json:"date_needed"`
	Status                Field[BudgetLineItemStatus] `json:"status"`
	LineDescription       Field[string]               `json:"line_description"`
	Comments              Field[string]               `json:"comments"`
	ProcShopFeePercentage Field[Rate]                 `json:"proc_shop_fee_percentage"`
}

func (p BudgetLineItemPatch) MarshalJSON() ([]byte, error) {
	return marshalPatch(
		entry("can_id", p.CanId),
		entry("amount", p.Amount),
		entry("date_needed", p.DateNeeded),
		entry("status", p.Status),
		entry("line_description", p.LineDescription),
		entry("comments", p.Comments),
		entry("proc_shop_fee_percentage", p.ProcShopFeePercentage),
	)
}

func (p BudgetLineItemPatch) IsEmpty() bool {
	return !p.CanId.IsSet() && !p.Amount.IsSet() && !p.DateNeeded.IsSet() &&
		!p.Status.IsSet() && !p.LineDescription.IsSet() && !p.Comments.IsSet() &&
		!p.ProcShopFeePercentage.IsSet()
}

// HasBudgetChange reports that the patch touches money: amount, CAN or date needed.
func (p BudgetLineItemPatch) HasBudgetChange() bool {
	return p.CanId.IsSet() || p.Amount.IsSet() || p.DateNeeded.IsSet()
}

func (p BudgetLineItemPatch) Validate() error {
	verr := domerr.NewValidationError()
	if v := p.Amount.Value(); v != nil && *v < 0 {
		verr.Add("amount", "must not be negative")
	}
	if p.Status.IsSet() {
		v := p.Status.Value()
		if v == nil {
			verr.Add("status", "must not be null")
		} else if _, err := AsBudgetLineItemStatus(string(*v)); err != nil {
			verr.Add("status", err.Error())
		}
	}
	if v := p.ProcShopFeePercentage.Value(); v != nil && (*v < 0 || 100_00 < *v) {
		verr.Add("proc_shop_fee_percentage", "must be between 0 and 100")
	}
	return verr.OrNil()
}

// Apply returns the patched item.
func (b BudgetLineItem) Apply(p BudgetLineItemPatch) BudgetLineItem {
	b.CanId = p.CanId.Or(b.CanId)
	b.Amount = p.Amount.Or(b.Amount)
	b.DateNeeded = p.DateNeeded.Or(b.DateNeeded)
	if v := p.Status.Value(); v != nil {
		b.Status = *v
	}
	if v := p.LineDescription; v.IsSet() {
		b.LineDescription = deref(v.Value())
	}
	if v := p.Comments; v.IsSet() {
		b.Comments = deref(v.Value())
	}
	b.ProcShopFeePercentage = p.ProcShopFeePercentage.Or(b.ProcShopFeePercentage)
	return b
}

// changed drops fields of the patch whose requested values are the current ones.
func (p BudgetLineItemPatch) changed(current BudgetLineItem) BudgetLineItemPatch {
	out := BudgetLineItemPatch{}
	if v := p.CanId; v.IsSet() && !samePtr(v.Value(), current.CanId) {
		out.CanId = v
	}
	if v := p.Amount; v.IsSet() && !samePtr(v.Value(), current.Amount) {
		out.Amount = v
	}
	if v := p.DateNeeded; v.IsSet() && !sameDate(v.Value(), current.DateNeeded) {
		out.DateNeeded = v
	}
	if v := p.Status; v.IsSet() && deref(v.Value()) != current.Status {
		out.Status = v
	}
	if v := p.LineDescription; v.IsSet() && deref(v.Value()) != current.LineDescription {
		out.LineDescription = v
	}
	if v := p.Comments; v.IsSet() && deref(v.Value()) != current.Comments {
		out.Comments = v
	}
	if v := p.ProcShopFeePercentage; v.IsSet() && !samePtr(v.Value(), current.ProcShopFeePercentage) {
		out.ProcShopFeePercentage = v
	}
	return out
}

func sameDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// NewBudgetLineItem builds a budget line item to be created. New items are always DRAFT.
func NewBudgetLineItem(agreementId int, p BudgetLineItemPatch, actor int, now time.Time) (BudgetLineItem, error) {
	if v := p.Status.Value(); v != nil && *v != Draft {
		return BudgetLineItem{}, fmt.Errorf(
			"%w: budget line items are created as %s, not %s",
			domerr.ErrInvalidStateChange, Draft, *v,
		)
	}
	if err := p.Validate(); err != nil {
		return BudgetLineItem{}, err
	}
	b := BudgetLineItem{
		AgreementId: agreementId,
		Status:      Draft,
		CreatedBy:   actor,
		CreatedOn:   now,
		UpdatedOn:   now,
	}
	p.Status = Field[BudgetLineItemStatus]{}
	return b.Apply(p), nil
}

// CheckDeletable tells whether the item can be deleted.
func (b BudgetLineItem) CheckDeletable() error {
	if b.Status != Draft {
		return fmt.Errorf(
			"%w: budget line item %d is %s; only %s items can be deleted",
			domerr.ErrInvalidStateChange, b.Id, b.Status, Draft,
		)
	}
	if b.InReview {
		return domerr.Conflict("budget line item %d is in review", b.Id)
	}
	return nil
}

// StatusTransition returns the workflow action approving the transition from -> to.
//
// Moving to OBLIGATED is not requestable; it happens on procurement award only.
func StatusTransition(from, to BudgetLineItemStatus) (WorkflowAction, error) {
	switch {
	case from == Draft && to == Planned:
		return DraftToPlanned, nil
	case from == Planned && to == InExecution:
		return PlannedToExecuting, nil
	case from == Planned && to == Draft:
		return Generic, nil
	}
	return "", domerr.InvalidStateChange("budget line item", from, to)
}

// Obligate moves an IN_EXECUTION item to OBLIGATED.
func (b BudgetLineItem) Obligate() (BudgetLineItem, error) {
	if b.Status != InExecution {
		return b, domerr.InvalidStateChange("budget line item", b.Status, Obligated)
	}
	b.Status = Obligated
	return b, nil
}

// CheckReadiness verifies that the item and its agreement carry everything needed
// to leave DRAFT. All problems are reported at once.
func CheckReadiness(b BudgetLineItem, a Agreement, today Date) error {
	verr := domerr.NewValidationError()
	if b.CanId == nil {
		verr.Add("can_id", "must be set")
	}
	if b.Amount == nil || *b.Amount <= 0 {
		verr.Add("amount", "must be greater than 0")
	}
	if b.DateNeeded == nil || b.DateNeeded.IsZero() {
		verr.Add("date_needed", "must be set")
	} else if !b.DateNeeded.After(today) {
		verr.Add("date_needed", "must be after today")
	}
	if b.LineDescription == "" {
		verr.Add("line_description", "must not be empty")
	}
	if a.Name == "" {
		verr.Add("agreement.name", "must not be empty")
	}
	if a.ProjectOfficerId == nil {
		verr.Add("agreement.project_officer_id", "must be set")
	}
	if a.ProcurementShopId == nil {
		verr.Add("agreement.procurement_shop_id", "must be set")
	}
	if a.AgreementReason == nil {
		verr.Add("agreement.agreement_reason", "must be set")
	}
	return verr.OrNil()
}

// BudgetLineItemUpdatePlan splits a requested update into changes applied now
// and change requests to be opened.
type BudgetLineItemUpdatePlan struct {
	Direct   BudgetLineItemPatch
	Requests []ChangeRequestDraft
}

// Accepted reports that some part of the update waits for approval.
func (p BudgetLineItemUpdatePlan) Accepted() bool {
	return len(p.Requests) > 0
}

// PlanBudgetLineItemUpdate decides how an update of a budget line item is carried out.
//
// DRAFT items take every change directly. PLANNED and IN_EXECUTION items take budget
// changes (amount, CAN, date needed) through change requests, one per field.
// Status changes always go through a change request.
//
// Errors:
//
// - ErrInvalidStateChange: the item is locked, or the status transition is not allowed.
//
// - ErrConflict: the item has a change request in review.
//
// - ErrValidation: the patch is malformed, clears a budget field of a committed item,
// or the item is not ready to leave DRAFT.
func PlanBudgetLineItemUpdate(
	current BudgetLineItem, agreement Agreement, patch BudgetLineItemPatch, notes string, today Date,
) (BudgetLineItemUpdatePlan, error) {
	if current.Status.Locked() {
		return BudgetLineItemUpdatePlan{}, fmt.Errorf(
			"%w: budget line item %d is %s", domerr.ErrInvalidStateChange, current.Id, current.Status,
		)
	}
	if current.InReview {
		return BudgetLineItemUpdatePlan{}, domerr.Conflict(
			"budget line item %d has a change request in review", current.Id,
		)
	}
	if err := patch.Validate(); err != nil {
		return BudgetLineItemUpdatePlan{}, err
	}

	ch := patch.changed(current)
	plan := BudgetLineItemUpdatePlan{}

	var statusAction WorkflowAction
	if target := ch.Status.Value(); target != nil {
		act, err := StatusTransition(current.Status, *target)
		if err != nil {
			return BudgetLineItemUpdatePlan{}, err
		}
		statusAction = act
	}

	plan.Direct = BudgetLineItemPatch{
		LineDescription:       ch.LineDescription,
		Comments:              ch.Comments,
		ProcShopFeePercentage: ch.ProcShopFeePercentage,
	}
	if current.Status == Draft {
		plan.Direct.CanId = ch.CanId
		plan.Direct.Amount = ch.Amount
		plan.Direct.DateNeeded = ch.DateNeeded
	} else {
		verr := domerr.NewValidationError()
		for _, f := range []struct {
			name    string
			cleared bool
		}{
			{"can_id", ch.CanId.IsSet() && ch.CanId.Value() == nil},
			{"amount", ch.Amount.IsSet() && ch.Amount.Value() == nil},
			{"date_needed", ch.DateNeeded.IsSet() && ch.DateNeeded.Value() == nil},
		} {
			if f.cleared {
				verr.Add(f.name, fmt.Sprintf("must not be cleared on a %s item", current.Status))
			}
		}
		if err := verr.OrNil(); err != nil {
			return BudgetLineItemUpdatePlan{}, err
		}

		budgetChanges := []BudgetLineItemPatch{}
		if ch.Amount.IsSet() {
			budgetChanges = append(budgetChanges, BudgetLineItemPatch{Amount: ch.Amount})
		}
		if ch.CanId.IsSet() {
			budgetChanges = append(budgetChanges, BudgetLineItemPatch{CanId: ch.CanId})
		}
		if ch.DateNeeded.IsSet() {
			budgetChanges = append(budgetChanges, BudgetLineItemPatch{DateNeeded: ch.DateNeeded})
		}
		for _, bc := range budgetChanges {
			plan.Requests = append(plan.Requests, budgetLineItemRequest(current, bc, Generic, notes))
		}
	}

	if target := ch.Status.Value(); target != nil {
		applied := current.Apply(plan.Direct)
		if current.Status == Draft {
			if err := CheckReadiness(applied, agreement, today); err != nil {
				return BudgetLineItemUpdatePlan{}, err
			}
		}
		plan.Requests = append(
			plan.Requests,
			budgetLineItemRequest(applied, BudgetLineItemPatch{Status: ch.Status}, statusAction, notes),
		)
	}

	return plan, nil
}

// PlanStatusChanges builds STATUS change requests moving each item to the target status.
//
// Either every item passes, or nothing is requested.
func PlanStatusChanges(
	agreement Agreement, items []BudgetLineItem, target BudgetLineItemStatus, notes string, today Date,
) ([]ChangeRequestDraft, error) {
	if len(items) == 0 {
		verr := domerr.NewValidationError()
		verr.Add("budget_line_item_ids", "must not be empty")
		return nil, verr
	}

	drafts := make([]ChangeRequestDraft, 0, len(items))
	for _, bli := range items {
		if bli.AgreementId != agreement.Id {
			verr := domerr.NewValidationError()
			verr.Add(
				"budget_line_item_ids",
				fmt.Sprintf("budget line item %d does not belong to agreement %d", bli.Id, agreement.Id),
			)
			return nil, verr
		}
		if bli.InReview {
			return nil, domerr.Conflict("budget line item %d has a change request in review", bli.Id)
		}
		act, err := StatusTransition(bli.Status, target)
		if err != nil {
			return nil, fmt.Errorf("budget line item %d: %w", bli.Id, err)
		}
		if bli.Status == Draft {
			if err := CheckReadiness(bli, agreement, today); err != nil {
				return nil, fmt.Errorf("budget line item %d: %w", bli.Id, err)
			}
		}
		drafts = append(
			drafts,
			budgetLineItemRequest(bli, BudgetLineItemPatch{Status: Set(target)}, act, notes),
		)
	}
	return drafts, nil
}

func budgetLineItemRequest(
	current BudgetLineItem, change BudgetLineItemPatch, action WorkflowAction, notes string,
) ChangeRequestDraft {
	id := current.Id
	var managingCan *int
	if current.CanId != nil {
		c := *current.CanId
		managingCan = &c
	}
	return ChangeRequestDraft{
		Type:             BudgetLineItemChangeRequest,
		AgreementId:      current.AgreementId,
		BudgetLineItemId: &id,
		ManagingCanId:    managingCan,
		Change:           RequestedChange{BudgetLineItem: &change},
		Diff:             Diff(current.Snapshot(), current.Apply(change).Snapshot()),
		HasBudgetChange:  change.HasBudgetChange(),
		HasStatusChange:  change.Status.IsSet(),
		Action:           action,
		RequestorNotes:   notes,
	}
}
