package notifications

import (
	apinotifications "github.com/opre/ops/pkg/api/types/notifications"
	"github.com/opre/ops/pkg/domain"
)

func Compose(n domain.Notification) apinotifications.Notification {
	return apinotifications.Notification{
		Id:              n.Id,
		Title:           n.Title,
		Message:         n.Message,
		RecipientId:     n.RecipientId,
		IsRead:          n.IsRead,
		ChangeRequestId: n.ChangeRequestId,
		CreatedOn:       n.CreatedOn,
	}
}
