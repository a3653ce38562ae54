package domain

import (
	"fmt"
	"time"
)

// ProcurementShop is an awarding entity which charges a fee on budget line items.
type ProcurementShop struct {
	Id           int
	Name         string
	Abbreviation string
	Fees         []ProcurementShopFee
}

// ProcurementShopFee is a fee rate effective in [StartDate, EndDate]. Zero dates are open ends.
type ProcurementShopFee struct {
	Id        int
	ShopId    int
	Fee       Rate
	StartDate Date
	EndDate   Date
}

func (f ProcurementShopFee) EffectiveOn(d Date) bool {
	if !f.StartDate.IsZero() && d.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && d.After(f.EndDate) {
		return false
	}
	return true
}

// FeeOn returns the fee rate effective on the day.
//
// When d is zero, or no fee is effective on d, the fee without an end date is used.
// When there are none of them, the rate is 0.
func (s ProcurementShop) FeeOn(d Date) Rate {
	if !d.IsZero() {
		for _, f := range s.Fees {
			if f.EffectiveOn(d) {
				return f.Fee
			}
		}
	}
	for _, f := range s.Fees {
		if f.EndDate.IsZero() {
			return f.Fee
		}
	}
	return 0
}

// FeeSchedule resolves the fee rate for a budget line item of an agreement.
type FeeSchedule interface {
	RateAt(agreementId int, d Date) Rate
}

// SingleShop applies one procurement shop to any agreement.
type SingleShop ProcurementShop

func (s SingleShop) RateAt(_ int, d Date) Rate {
	return ProcurementShop(s).FeeOn(d)
}

// ShopsByAgreement applies the procurement shop chosen by each agreement.
type ShopsByAgreement map[int]ProcurementShop

func (s ShopsByAgreement) RateAt(agreementId int, d Date) Rate {
	shop, ok := s[agreementId]
	if !ok {
		return 0
	}
	return shop.FeeOn(d)
}

// NoFee charges nothing.
type NoFee struct{}

func (NoFee) RateAt(int, Date) Rate { return 0 }

type AwardType string

const (
	NewAward     AwardType = "NEW_AWARD"
	Modification AwardType = "MODIFICATION"
)

type ProcurementActionStatus string

const (
	ActionPlanned    ProcurementActionStatus = "PLANNED"
	ActionInProgress ProcurementActionStatus = "IN_PROGRESS"
	ActionAwarded    ProcurementActionStatus = "AWARDED"
	ActionCertified  ProcurementActionStatus = "CERTIFIED"
	ActionCancelled  ProcurementActionStatus = "CANCELLED"
)

func AsProcurementActionStatus(s string) (ProcurementActionStatus, error) {
	switch v := ProcurementActionStatus(s); v {
	case ActionPlanned, ActionInProgress, ActionAwarded, ActionCertified, ActionCancelled:
		return v, nil
	}
	return "", fmt.Errorf("'%s' is not ProcurementActionStatus", s)
}

// ProcurementAction is an award or a modification of an agreement.
type ProcurementAction struct {
	Id                int
	AgreementId       int
	AwardType         AwardType
	Status            ProcurementActionStatus
	AwardDate         Date
	ProcurementShopId *int
	CreatedBy         int
	CreatedOn         time.Time
}

func (a ProcurementAction) Snapshot() Record {
	return Record{
		"agreement_id":        a.AgreementId,
		"award_type":          a.AwardType,
		"status":              a.Status,
		"award_date":          a.AwardDate,
		"procurement_shop_id": a.ProcurementShopId,
	}
}
