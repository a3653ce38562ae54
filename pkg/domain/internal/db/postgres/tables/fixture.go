package tables

import (
	"time"

	"github.com/opre/ops/pkg/domain"
)

// ids of records in Basic.
const (
	Director  = 1
	Deputy    = 2
	Requestor = 3
	Outsider  = 4

	DivisionId       = 1
	PortfolioId      = 1
	OtherPortfolioId = 2
	CanId            = 1
	ShopId           = 1
	AgreementId      = 1

	DraftItem     = 1
	PlannedItem   = 2
	ExecutingItem = 3
)

func ptr[T any](v T) *T {
	return &v
}

// Basic is a premise with one agreement in a division directed by Director.
//
// The agreement is ready to leave DRAFT. Its procurement shop charges 0.50%.
// Budget line items are DraftItem ($1,000.00), PlannedItem ($2,000.00) and
// ExecutingItem ($500.00), all charged to CanId and needed 60 days after now.
func Basic(now time.Time) Operation {
	needed := domain.DateOf(now).AddDays(60)
	reason := domain.NewRequirement
	return Operation{
		Users: []User{
			{Id: Director, Email: "director@example.com", FullName: "Dana Director", DivisionId: ptr(DivisionId), Roles: []domain.Role{domain.ReviewerApprover}},
			{Id: Deputy, Email: "deputy@example.com", FullName: "Dale Deputy", DivisionId: ptr(DivisionId), Roles: []domain.Role{domain.ReviewerApprover}},
			{Id: Requestor, Email: "requestor@example.com", FullName: "Robin Requestor", DivisionId: ptr(DivisionId), Roles: []domain.Role{domain.ViewerEditor}},
			{Id: Outsider, Email: "outsider@example.com", FullName: "Oli Outsider", Roles: []domain.Role{domain.ViewerEditor}},
		},
		Divisions: []Division{
			{Id: DivisionId, Name: "Division of Research", Abbreviation: "DR", DivisionDirectorId: ptr(Director), DeputyDivisionDirectorId: ptr(Deputy)},
		},
		Portfolios: []Portfolio{
			{Id: PortfolioId, Name: "Child Welfare Research", Abbreviation: "CWR", DivisionId: DivisionId},
			{Id: OtherPortfolioId, Name: "Healthy Marriage", Abbreviation: "HM", DivisionId: DivisionId},
		},
		CANs: []CAN{
			{Id: CanId, Number: "G99HRF2", Nickname: "HRF", PortfolioId: PortfolioId, ActivePeriod: 1},
		},
		FundingBudgets: []FundingBudget{
			{Id: 1, CanId: CanId, FiscalYear: needed.FiscalYear(), Budget: domain.Dollars(10000, 0)},
		},
		ProcurementShops: []ProcurementShop{
			{Id: ShopId, Name: "Government Contracting Services", Abbreviation: "GCS"},
		},
		Fees: []ProcurementShopFee{
			{Id: 1, ShopId: ShopId, Fee: 50},
		},
		Agreements: []Agreement{
			{
				Id: AgreementId, Type: domain.Contract, Name: "Research Support",
				ProjectOfficerId: ptr(Requestor), ProcurementShopId: ptr(ShopId),
				AgreementReason: &reason, CreatedBy: Requestor, CreatedOn: now,
			},
		},
		BudgetLineItems: []BudgetLineItem{
			{
				Id: DraftItem, AgreementId: AgreementId, CanId: ptr(CanId),
				Amount: ptr(domain.Dollars(1000, 0)), Status: domain.Draft, DateNeeded: &needed,
				LineDescription: "draft line", CreatedBy: Requestor, CreatedOn: now,
			},
			{
				Id: PlannedItem, AgreementId: AgreementId, CanId: ptr(CanId),
				Amount: ptr(domain.Dollars(2000, 0)), Status: domain.Planned, DateNeeded: &needed,
				LineDescription: "planned line", CreatedBy: Requestor, CreatedOn: now,
			},
			{
				Id: ExecutingItem, AgreementId: AgreementId, CanId: ptr(CanId),
				Amount: ptr(domain.Dollars(500, 0)), Status: domain.InExecution, DateNeeded: &needed,
				LineDescription: "executing line", CreatedBy: Requestor, CreatedOn: now,
			},
		},
	}
}
