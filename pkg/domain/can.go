package domain

import (
	"encoding/json"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

// CAN is a Common Accounting Number, an account funding budget line items.
type CAN struct {
	Id           int
	Number       string
	Nickname     string
	Description  string
	PortfolioId  int
	ActivePeriod int
}

func (c CAN) Snapshot() Record {
	return Record{
		"number":        c.Number,
		"nickname":      c.Nickname,
		"description":   c.Description,
		"portfolio_id":  c.PortfolioId,
		"active_period": c.ActivePeriod,
	}
}

// CANPatch is a partial update of a CAN.
type CANPatch struct {
	Nickname    Field[string] `json:"nickname"`
	Description Field[string] `json:"description"`
	PortfolioId Field[int]    `json:"portfolio_id"`
}

func (p CANPatch) MarshalJSON() ([]byte, error) {
	return marshalPatch(
		entry("nickname", p.Nickname),
		entry("description", p.Description),
		entry("portfolio_id", p.PortfolioId),
	)
}

var _ json.Marshaler = CANPatch{}

// Apply returns the patched CAN. Null on non-nullable attributes clears them to zero values.
func (c CAN) Apply(p CANPatch) CAN {
	if v := p.Nickname; v.IsSet() {
		c.Nickname = deref(v.Value())
	}
	if v := p.Description; v.IsSet() {
		c.Description = deref(v.Value())
	}
	if v := p.PortfolioId; v.IsSet() {
		c.PortfolioId = deref(v.Value())
	}
	return c
}

// CANFundingBudget is the budget granted to a CAN for a fiscal year.
type CANFundingBudget struct {
	Id         int
	CanId      int
	FiscalYear int
	Budget     Amount
	Notes      string
}

func (b CANFundingBudget) Snapshot() Record {
	return Record{
		"can_id":      b.CanId,
		"fiscal_year": b.FiscalYear,
		"budget":      b.Budget,
		"notes":       b.Notes,
	}
}

type CANFundingBudgetPatch struct {
	Budget Field[Amount] `json:"budget"`
	Notes  Field[string] `json:"notes"`
}

func (p CANFundingBudgetPatch) MarshalJSON() ([]byte, error) {
	return marshalPatch(entry("budget", p.Budget), entry("notes", p.Notes))
}

func (b CANFundingBudget) Apply(p CANFundingBudgetPatch) CANFundingBudget {
	if v := p.Budget; v.IsSet() {
		b.Budget = deref(v.Value())
	}
	if v := p.Notes; v.IsSet() {
		b.Notes = deref(v.Value())
	}
	return b
}

// CANFundingReceived is money actually received for a CAN.
type CANFundingReceived struct {
	Id         int
	CanId      int
	FiscalYear int
	Funding    Amount
	Notes      string
}

func (r CANFundingReceived) Snapshot() Record {
	return Record{
		"can_id":      r.CanId,
		"fiscal_year": r.FiscalYear,
		"funding":     r.Funding,
		"notes":       r.Notes,
	}
}

// CANFundingSummary is the money state of a CAN in a fiscal year.
type CANFundingSummary struct {
	CanId       int
	FiscalYear  int
	Budget      Amount
	Received    Amount
	Planned     Amount
	InExecution Amount
	Obligated   Amount
}

// Available is the budget not yet committed to non-draft budget line items.
func (s CANFundingSummary) Available() Amount {
	return s.Budget - s.Planned - s.InExecution - s.Obligated
}

// SummarizeCANFunding sums the budgets and the budget line items charged to the CAN
// in the fiscal year.
//
// Budget line items are charged in the fiscal year of their DateNeeded, with their fees.
// Items without a date or an amount, and DRAFT items, are not charged.
func SummarizeCANFunding(
	canId int, fiscalYear int,
	budgets []CANFundingBudget, received []CANFundingReceived,
	items []BudgetLineItem, fees FeeSchedule,
) CANFundingSummary {
	s := CANFundingSummary{CanId: canId, FiscalYear: fiscalYear}
	for _, b := range budgets {
		if b.CanId == canId && b.FiscalYear == fiscalYear {
			s.Budget += b.Budget
		}
	}
	for _, r := range received {
		if r.CanId == canId && r.FiscalYear == fiscalYear {
			s.Received += r.Funding
		}
	}
	for _, bli := range items {
		if bli.CanId == nil || *bli.CanId != canId {
			continue
		}
		if bli.Amount == nil || bli.DateNeeded == nil {
			continue
		}
		if bli.DateNeeded.FiscalYear() != fiscalYear {
			continue
		}
		total := *bli.Amount + bli.Fee(fees)
		switch bli.Status {
		case Planned:
			s.Planned += total
		case InExecution:
			s.InExecution += total
		case Obligated:
			s.Obligated += total
		}
	}
	return s
}

func deref[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// Validate tells whether the patch is acceptable.
func (p CANPatch) Validate() error {
	verr := domerr.NewValidationError()
	if p.PortfolioId.IsSet() && p.PortfolioId.Value() == nil {
		verr.Add("portfolio_id", "must not be null")
	}
	return verr.OrNil()
}

func (b CANFundingBudget) Validate() error {
	verr := domerr.NewValidationError()
	if b.FiscalYear <= 0 {
		verr.Add("fiscal_year", "must be positive")
	}
	if b.Budget < 0 {
		verr.Add("budget", "must not be negative")
	}
	return verr.OrNil()
}

func (r CANFundingReceived) Validate() error {
	verr := domerr.NewValidationError()
	if r.FiscalYear <= 0 {
		verr.Add("fiscal_year", "must be positive")
	}
	if r.Funding < 0 {
		verr.Add("funding", "must not be negative")
	}
	return verr.OrNil()
}

func (p CANFundingBudgetPatch) Validate() error {
	verr := domerr.NewValidationError()
	if p.Budget.IsSet() {
		if v := p.Budget.Value(); v == nil {
			verr.Add("budget", "must not be null")
		} else if *v < 0 {
			verr.Add("budget", "must not be negative")
		}
	}
	return verr.OrNil()
}

// Validate tells whether the CAN can be created.
func (c CAN) Validate() error {
	verr := domerr.NewValidationError()
	if c.Number == "" {
		verr.Add("number", "must be set")
	} else if 30 < len(c.Number) {
		verr.Add("number", "must be at most 30 characters")
	}
	if c.PortfolioId == 0 {
		verr.Add("portfolio_id", "must be set")
	}
	if c.ActivePeriod < 0 {
		verr.Add("active_period", "must not be negative")
	}
	return verr.OrNil()
}
