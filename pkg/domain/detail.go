package domain

// PricedBudgetLineItem is a budget line item with its fee resolved.
type PricedBudgetLineItem struct {
	BudgetLineItem
	Fee   Amount
	Total Amount
}

func Priced(items []BudgetLineItem, fees FeeSchedule) []PricedBudgetLineItem {
	priced := make([]PricedBudgetLineItem, 0, len(items))
	for _, b := range items {
		fee := b.Fee(fees)
		priced = append(priced, PricedBudgetLineItem{
			BudgetLineItem: b,
			Fee:            fee,
			Total:          b.Total(fees),
		})
	}
	return priced
}

// AgreementDetail is an agreement with its budget line items and totals.
type AgreementDetail struct {
	Agreement
	Items  []PricedBudgetLineItem
	Totals AgreementTotals
}

// CANDetail is a CAN with its funding in a fiscal year.
type CANDetail struct {
	CAN
	Portfolio       Portfolio
	FundingBudgets  []CANFundingBudget
	FundingReceived []CANFundingReceived
	Summary         CANFundingSummary
}

// AgreementUpdate is the result of an agreement edit.
//
// ChangeRequests lists requests opened for changes which need approval.
type AgreementUpdate struct {
	Agreement      Agreement
	ChangeRequests []ChangeRequest
}

// BudgetLineItemUpdate is the result of a budget line item edit.
//
// ChangeRequests lists requests opened for changes which need approval.
type BudgetLineItemUpdate struct {
	BudgetLineItem BudgetLineItem
	ChangeRequests []ChangeRequest
}

// Accepted reports that some part of the update waits for approval.
func (u BudgetLineItemUpdate) Accepted() bool {
	return 0 < len(u.ChangeRequests)
}

// Accepted reports that some part of the update waits for approval.
func (u AgreementUpdate) Accepted() bool {
	return 0 < len(u.ChangeRequests)
}

// Review is the state of a change request and its workflow after a review.
type Review struct {
	ChangeRequest ChangeRequest
	Workflow      WorkflowInstance
}

// ReviewResult is the outcome of a review in a bulk review. Either Review or Err is set.
type ReviewResult struct {
	Id     int
	Review *Review
	Err    error
}

// StepCompleted is the result of completing a procurement tracker step.
//
// Award and Obligated are set when the AWARD step is completed.
type StepCompleted struct {
	Tracker   ProcurementTracker
	Award     *ProcurementAction
	Obligated []BudgetLineItem
}
