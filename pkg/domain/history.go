package domain

import (
	"fmt"
	"sort"
	"time"
)

type CANHistoryType string

const (
	CANDataImport        CANHistoryType = "CAN_DATA_IMPORT"
	CANNicknameEdited    CANHistoryType = "CAN_NICKNAME_EDITED"
	CANDescriptionEdited CANHistoryType = "CAN_DESCRIPTION_EDITED"
	CANFundingCreated    CANHistoryType = "CAN_FUNDING_CREATED"
	CANFundingEdited     CANHistoryType = "CAN_FUNDING_EDITED"
	CANReceivedCreated   CANHistoryType = "CAN_RECEIVED_CREATED"
	CANPortfolioEdited   CANHistoryType = "CAN_PORTFOLIO_EDITED"
)

func AsCANHistoryType(s string) (CANHistoryType, error) {
	switch t := CANHistoryType(s); t {
	case CANDataImport, CANNicknameEdited, CANDescriptionEdited,
		CANFundingCreated, CANFundingEdited, CANReceivedCreated, CANPortfolioEdited:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not CANHistoryType", s)
}

// CANHistory is a human readable history item of a CAN.
type CANHistory struct {
	Id             int
	CanId          int
	OpsEventId     int
	HistoryTitle   string
	HistoryMessage string
	Timestamp      time.Time
	HistoryType    CANHistoryType
	FiscalYear     int
}

// ProjectCANHistory derives CAN history items from an event.
//
// Events not about CANs, and events which did not succeed, derive nothing.
// actor is the user who caused the event.
func ProjectCANHistory(ev OpsEvent, actor User) []CANHistory {
	if ev.EventStatus != EventSuccess {
		return nil
	}

	d := ev.Details
	name := actor.DisplayName()
	fy := FiscalYear(ev.CreatedOn)
	item := func(canId int, fiscalYear int, typ CANHistoryType, title, message string) CANHistory {
		return CANHistory{
			CanId:          canId,
			OpsEventId:     ev.Id,
			HistoryTitle:   title,
			HistoryMessage: message,
			Timestamp:      ev.CreatedOn,
			HistoryType:    typ,
			FiscalYear:     fiscalYear,
		}
	}

	switch ev.EventType {
	case CreateNewCAN:
		if d.CAN == nil {
			return nil
		}
		return []CANHistory{item(
			d.CAN.CanId, fy, CANDataImport,
			fmt.Sprintf("FY %d Data Import", fy),
			fmt.Sprintf("FY %d CAN Funding Information imported by %s", fy, name),
		)}

	case UpdateCAN:
		if d.CAN == nil {
			return nil
		}
		items := []CANHistory{}
		for _, key := range d.CAN.Changes.Keys() {
			ch := d.CAN.Changes[key]
			switch key {
			case "nickname":
				items = append(items, item(
					d.CAN.CanId, fy, CANNicknameEdited,
					"Nickname Edited",
					fmt.Sprintf("%s edited the nickname from %s to %s", name, text(ch.Old), text(ch.New)),
				))
			case "description":
				items = append(items, item(
					d.CAN.CanId, fy, CANDescriptionEdited,
					"Description Edited",
					fmt.Sprintf("%s edited the description", name),
				))
			case "portfolio_id":
				from, to := d.CAN.OldPortfolio, d.CAN.NewPortfolio
				if from == "" {
					from = text(ch.Old)
				}
				if to == "" {
					to = text(ch.New)
				}
				items = append(items, item(
					d.CAN.CanId, fy, CANPortfolioEdited,
					"CAN Portfolio Edited",
					fmt.Sprintf("%s changed the portfolio from %s to %s", name, from, to),
				))
			}
		}
		return items

	case CreateCANFundingBudget:
		if d.Funding == nil {
			return nil
		}
		f := d.Funding
		return []CANHistory{item(
			f.CanId, f.FiscalYear, CANFundingCreated,
			fmt.Sprintf("FY %d Budget Entered", f.FiscalYear),
			fmt.Sprintf("%s entered a FY %d budget of %s", name, f.FiscalYear, f.Amount.Currency()),
		)}

	case UpdateCANFundingBudget:
		if d.Funding == nil {
			return nil
		}
		f := d.Funding
		ch, ok := f.Changes["budget"]
		if !ok {
			return nil
		}
		return []CANHistory{item(
			f.CanId, f.FiscalYear, CANFundingEdited,
			fmt.Sprintf("FY %d Budget Edited", f.FiscalYear),
			fmt.Sprintf(
				"%s edited the FY %d budget from %s to %s",
				name, f.FiscalYear, money(ch.Old), money(ch.New),
			),
		)}

	case CreateCANFundingReceived:
		if d.Funding == nil {
			return nil
		}
		f := d.Funding
		return []CANHistory{item(
			f.CanId, f.FiscalYear, CANReceivedCreated,
			"Funding Received Added",
			fmt.Sprintf(
				"%s added funding received to funding ID %d in the amount of %s",
				name, f.Id, f.Amount.Currency(),
			),
		)}
	}
	return nil
}

// SortCANHistory orders items newest first. Items of the same time keep the order of events.
func SortCANHistory(items []CANHistory) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].OpsEventId > items[j].OpsEventId
	})
}

func text(v any) string {
	if v == nil {
		return "(none)"
	}
	return fmt.Sprint(v)
}

// money formats a JSON normalized amount.
func money(v any) string {
	if v == nil {
		return Amount(0).Currency()
	}
	a, err := ParseAmount(fmt.Sprint(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return a.Currency()
}
