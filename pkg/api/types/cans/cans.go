package cans

import (
	"time"

	"github.com/opre/ops/pkg/domain"
)

type CAN struct {
	Id           int    `json:"id"`
	Number       string `json:"number"`
	Nickname     string `json:"nickname"`
	Description  string `json:"description"`
	PortfolioId  int    `json:"portfolio_id"`
	ActivePeriod int    `json:"active_period"`
}

type Portfolio struct {
	Id           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	DivisionId   int    `json:"division_id"`
}

type FundingBudget struct {
	Id         int           `json:"id"`
	CanId      int           `json:"can_id"`
	FiscalYear int           `json:"fiscal_year"`
	Budget     domain.Amount `json:"budget"`
	Notes      string        `json:"notes"`
}

type FundingReceived struct {
	Id         int           `json:"id"`
	CanId      int           `json:"can_id"`
	FiscalYear int           `json:"fiscal_year"`
	Funding    domain.Amount `json:"funding"`
	Notes      string        `json:"notes"`
}

// FundingSummary is the money of a CAN in a fiscal year.
type FundingSummary struct {
	FiscalYear  int           `json:"fiscal_year"`
	Budget      domain.Amount `json:"total_funding"`
	Received    domain.Amount `json:"received_funding"`
	Planned     domain.Amount `json:"planned_funding"`
	InExecution domain.Amount `json:"in_execution_funding"`
	Obligated   domain.Amount `json:"obligated_funding"`
	Available   domain.Amount `json:"available_funding"`
}

type Detail struct {
	CAN
	Portfolio       Portfolio         `json:"portfolio"`
	FundingBudgets  []FundingBudget   `json:"funding_budgets"`
	FundingReceived []FundingReceived `json:"funding_received"`
	FundingSummary  FundingSummary    `json:"funding_summary"`
}

type CreateRequest struct {
	Number       string `json:"number"`
	Nickname     string `json:"nickname"`
	Description  string `json:"description"`
	PortfolioId  int    `json:"portfolio_id"`
	ActivePeriod int    `json:"active_period"`
}

type FundingBudgetRequest struct {
	FiscalYear int           `json:"fiscal_year"`
	Budget     domain.Amount `json:"budget"`
	Notes      string        `json:"notes"`
}

type FundingReceivedRequest struct {
	FiscalYear int           `json:"fiscal_year"`
	Funding    domain.Amount `json:"funding"`
	Notes      string        `json:"notes"`
}

type HistoryItem struct {
	Id             int       `json:"id"`
	CanId          int       `json:"can_id"`
	OpsEventId     int       `json:"ops_event_id"`
	HistoryTitle   string    `json:"history_title"`
	HistoryMessage string    `json:"history_message"`
	Timestamp      time.Time `json:"timestamp"`
	HistoryType    string    `json:"history_type"`
	FiscalYear     int       `json:"fiscal_year"`
}
