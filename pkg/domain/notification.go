package domain

import (
	"fmt"
	"time"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

type Notification struct {
	Id              int
	Title           string
	Message         string
	RecipientId     int
	IsRead          bool
	ChangeRequestId *int
	CreatedOn       time.Time
}

func (n Notification) Snapshot() Record {
	return Record{
		"title":             n.Title,
		"message":           n.Message,
		"recipient_id":      n.RecipientId,
		"is_read":           n.IsRead,
		"change_request_id": n.ChangeRequestId,
	}
}

// Acknowledge marks the notification read. Only the recipient can do that.
func (n Notification) Acknowledge(by int) (Notification, error) {
	if n.RecipientId != by {
		return n, domerr.Forbidden("notification %d is not for user %d", n.Id, by)
	}
	n.IsRead = true
	return n, nil
}

// ReviewRequested notifies approvers that a change request waits for their review.
func ReviewRequested(cr ChangeRequest, recipients []int, now time.Time) []Notification {
	ns := make([]Notification, 0, len(recipients))
	for _, r := range recipients {
		id := cr.Id
		ns = append(ns, Notification{
			Title:           "Approval Request",
			Message:         fmt.Sprintf("A change request on %s needs your review.", cr.Subject()),
			RecipientId:     r,
			ChangeRequestId: &id,
			CreatedOn:       now,
		})
	}
	return ns
}

// ReviewConcluded notifies the requestor that the change request was decided.
func ReviewConcluded(cr ChangeRequest, now time.Time) Notification {
	id := cr.Id
	title := "Change Request Approved"
	verb := "approved"
	if cr.Status == ChangeRejected {
		title = "Change Request Rejected"
		verb = "rejected"
	}
	msg := fmt.Sprintf("Your change request on %s has been %s.", cr.Subject(), verb)
	if cr.ReviewerNotes != "" {
		msg += fmt.Sprintf(" Notes: %s", cr.ReviewerNotes)
	}
	return Notification{
		Title:           title,
		Message:         msg,
		RecipientId:     cr.CreatedBy,
		ChangeRequestId: &id,
		CreatedOn:       now,
	}
}

// ChangesRequested notifies the requestor that the reviewer asked for changes.
func ChangesRequested(cr ChangeRequest, notes string, now time.Time) Notification {
	id := cr.Id
	msg := fmt.Sprintf("Changes are requested on your change request on %s.", cr.Subject())
	if notes != "" {
		msg += fmt.Sprintf(" Notes: %s", notes)
	}
	return Notification{
		Title:           "Changes Requested",
		Message:         msg,
		RecipientId:     cr.CreatedBy,
		ChangeRequestId: &id,
		CreatedOn:       now,
	}
}
