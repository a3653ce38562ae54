package notifications

import "time"

type Notification struct {
	Id              int       `json:"id"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	RecipientId     int       `json:"recipient_id"`
	IsRead          bool      `json:"is_read"`
	ChangeRequestId *int      `json:"change_request_id"`
	CreatedOn       time.Time `json:"created_on"`
}
