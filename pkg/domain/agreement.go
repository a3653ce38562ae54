package domain

import (
	"fmt"
	"time"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

type AgreementType string

const (
	Contract         AgreementType = "CONTRACT"
	Grant            AgreementType = "GRANT"
	DirectObligation AgreementType = "DIRECT_OBLIGATION"
	IAA              AgreementType = "IAA"
	IAAAA            AgreementType = "IAA_AA"
	Miscellaneous    AgreementType = "MISCELLANEOUS"
)

func AsAgreementType(s string) (AgreementType, error) {
	switch t := AgreementType(s); t {
	case Contract, Grant, DirectObligation, IAA, IAAAA, Miscellaneous:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not AgreementType", s)
}

type AgreementReason string

const (
	NewRequirement  AgreementReason = "NEW_REQ"
	Recompete       AgreementReason = "RECOMPETE"
	LogicalFollowOn AgreementReason = "LOGICAL_FOLLOW_ON"
)

func AsAgreementReason(s string) (AgreementReason, error) {
	switch r := AgreementReason(s); r {
	case NewRequirement, Recompete, LogicalFollowOn:
		return r, nil
	}
	return "", fmt.Errorf("'%s' is not AgreementReason", s)
}

// Agreement is a funding vehicle: contract, grant, IAA or direct obligation.
type Agreement struct {
	Id                int
	Type              AgreementType
	Name              string
	Description       string
	ProjectOfficerId  *int
	ProcurementShopId *int
	AgreementReason   *AgreementReason
	Notes             string
	CreatedBy         int
	CreatedOn         time.Time
	UpdatedOn         time.Time
}

func (a Agreement) Snapshot() Record {
	return Record{
		"agreement_type":      a.Type,
		"name":                a.Name,
		"description":         a.Description,
		"project_officer_id":  a.ProjectOfficerId,
		"procurement_shop_id": a.ProcurementShopId,
		"agreement_reason":    a.AgreementReason,
		"notes":               a.Notes,
	}
}

// AgreementPatch is a partial update of an agreement.
type AgreementPatch struct {
	Name              Field[string]          `json:"name"`
	Description       Field[string]          `json:"description"`
	ProjectOfficerId  Field[int]             `json:"project_officer_id"`
	ProcurementShopId Field[int]             `json:"procurement_shop_id"`
	AgreementReason   Field[AgreementReason] `json:"agreement_reason"`
	Notes             Field[string]          `json:"notes"`
}

func (p AgreementPatch) MarshalJSON() ([]byte, error) {
	return marshalPatch(
		entry("name", p.Name),
		entry("description", p.Description),
		entry("project_officer_id", p.ProjectOfficerId),
		entry("procurement_shop_id", p.ProcurementShopId),
		entry("agreement_reason", p.AgreementReason),
		entry("notes", p.Notes),
	)
}

func (p AgreementPatch) IsEmpty() bool {
	return !p.Name.IsSet() && !p.Description.IsSet() && !p.ProjectOfficerId.IsSet() &&
		!p.ProcurementShopId.IsSet() && !p.AgreementReason.IsSet() && !p.Notes.IsSet()
}

func (p AgreementPatch) Validate() error {
	verr := domerr.NewValidationError()
	if p.Name.IsSet() {
		if v := p.Name.Value(); v == nil || *v == "" {
			verr.Add("name", "must not be empty")
		}
	}
	if v := p.AgreementReason.Value(); v != nil {
		if _, err := AsAgreementReason(string(*v)); err != nil {
			verr.Add("agreement_reason", err.Error())
		}
	}
	return verr.OrNil()
}

func (a Agreement) Apply(p AgreementPatch) Agreement {
	if v := p.Name; v.IsSet() {
		a.Name = deref(v.Value())
	}
	if v := p.Description; v.IsSet() {
		a.Description = deref(v.Value())
	}
	a.ProjectOfficerId = p.ProjectOfficerId.Or(a.ProjectOfficerId)
	a.ProcurementShopId = p.ProcurementShopId.Or(a.ProcurementShopId)
	a.AgreementReason = p.AgreementReason.Or(a.AgreementReason)
	if v := p.Notes; v.IsSet() {
		a.Notes = deref(v.Value())
	}
	return a
}

// AgreementUpdatePlan splits a requested agreement update into what applies now and what
// needs an approval.
type AgreementUpdatePlan struct {
	Direct  AgreementPatch
	Request *ChangeRequestDraft
}

// PlanAgreementUpdate decides how an agreement update is carried out.
//
// Changing the procurement shop needs approval once any budget line item has left DRAFT,
// since fees of committed money would change. Everything else applies directly.
// Fields requested to be their current values are dropped.
func PlanAgreementUpdate(
	current Agreement, items []BudgetLineItem, patch AgreementPatch, notes string,
) (AgreementUpdatePlan, error) {
	if err := patch.Validate(); err != nil {
		return AgreementUpdatePlan{}, err
	}

	direct := AgreementPatch{}
	if v := patch.Name; v.IsSet() && deref(v.Value()) != current.Name {
		direct.Name = v
	}
	if v := patch.Description; v.IsSet() && deref(v.Value()) != current.Description {
		direct.Description = v
	}
	if v := patch.ProjectOfficerId; v.IsSet() && !samePtr(v.Value(), current.ProjectOfficerId) {
		direct.ProjectOfficerId = v
	}
	if v := patch.AgreementReason; v.IsSet() && !samePtr(v.Value(), current.AgreementReason) {
		direct.AgreementReason = v
	}
	if v := patch.Notes; v.IsSet() && deref(v.Value()) != current.Notes {
		direct.Notes = v
	}

	plan := AgreementUpdatePlan{Direct: direct}

	shop := patch.ProcurementShopId
	if !shop.IsSet() || samePtr(shop.Value(), current.ProcurementShopId) {
		return plan, nil
	}

	// the managing CAN is the CAN of the lowest-id committed item.
	var managing *BudgetLineItem
	for i := range items {
		bli := items[i]
		if bli.Status == Draft {
			continue
		}
		if managing == nil || bli.Id < managing.Id {
			managing = &bli
		}
	}
	if managing == nil {
		plan.Direct.ProcurementShopId = shop
		return plan, nil
	}

	if shop.Value() == nil {
		return AgreementUpdatePlan{}, domerr.Conflict(
			"procurement shop cannot be cleared while budget lines are committed",
		)
	}

	change := AgreementPatch{ProcurementShopId: shop}
	plan.Request = &ChangeRequestDraft{
		Type:                     AgreementChangeRequest,
		AgreementId:              current.Id,
		ManagingCanId:            managing.CanId,
		Change:                   RequestedChange{Agreement: &change},
		Diff:                     Diff(current.Snapshot(), current.Apply(change).Snapshot()),
		HasProcurementShopChange: true,
		Action:                   Generic,
		RequestorNotes:           notes,
	}
	return plan, nil
}

// AgreementTotals sums the money of budget line items of an agreement.
type AgreementTotals struct {
	Subtotal Amount
	Fees     Amount
	Total    Amount
	ByStatus map[BudgetLineItemStatus]Amount
}

// SummarizeAgreement computes totals. Subtotal, Fees and Total cover non-DRAFT items only;
// ByStatus covers every status (amount + fee).
func SummarizeAgreement(items []BudgetLineItem, fees FeeSchedule) AgreementTotals {
	t := AgreementTotals{ByStatus: map[BudgetLineItemStatus]Amount{}}
	for _, bli := range items {
		if bli.Amount == nil {
			continue
		}
		fee := bli.Fee(fees)
		t.ByStatus[bli.Status] += *bli.Amount + fee
		if bli.Status == Draft {
			continue
		}
		t.Subtotal += *bli.Amount
		t.Fees += fee
	}
	t.Total = t.Subtotal + t.Fees
	return t
}
