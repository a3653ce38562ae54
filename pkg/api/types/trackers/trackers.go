package trackers

import (
	"time"

	"github.com/opre/ops/pkg/api/types/budgetlineitems"
	"github.com/opre/ops/pkg/domain"
)

type Step struct {
	Id                   int         `json:"id"`
	Number               int         `json:"step_number"`
	Type                 string      `json:"step_type"`
	Status               string      `json:"status"`
	TargetCompletionDate domain.Date `json:"target_completion_date"`
	DateCompleted        domain.Date `json:"date_completed"`
	CompletedBy          *int        `json:"completed_by"`
	Notes                string      `json:"notes"`
	SolicitationStart    domain.Date `json:"solicitation_period_start"`
	SolicitationEnd      domain.Date `json:"solicitation_period_end"`
	AwardDate            domain.Date `json:"award_date"`
}

type Tracker struct {
	Id          int       `json:"id"`
	AgreementId int       `json:"agreement_id"`
	Status      string    `json:"status"`
	ActiveStep  int       `json:"active_step_number"`
	Steps       []Step    `json:"steps"`
	CreatedBy   int       `json:"created_by"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

type ProcurementAction struct {
	Id                int         `json:"id"`
	AgreementId       int         `json:"agreement_id"`
	AwardType         string      `json:"award_type"`
	Status            string      `json:"status"`
	AwardDate         domain.Date `json:"award_date"`
	ProcurementShopId *int        `json:"procurement_shop_id"`
	CreatedBy         int         `json:"created_by"`
	CreatedOn         time.Time   `json:"created_on"`
}

type CompleteRequest struct {
	CompletedBy       *int        `json:"completed_by"`
	DateCompleted     domain.Date `json:"date_completed"`
	Notes             string      `json:"notes"`
	SolicitationStart domain.Date `json:"solicitation_period_start"`
	SolicitationEnd   domain.Date `json:"solicitation_period_end"`
	AwardDate         domain.Date `json:"award_date"`
}

// StepCompleted is the tracker after a step completed.
//
// ProcurementAction and Obligated are set when the AWARD step completes.
type StepCompleted struct {
	Tracker           Tracker                          `json:"procurement_tracker"`
	ProcurementAction *ProcurementAction               `json:"procurement_action,omitempty"`
	Obligated         []budgetlineitems.BudgetLineItem `json:"obligated_budget_line_items,omitempty"`
}
