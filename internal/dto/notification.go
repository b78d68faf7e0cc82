package dto

import (
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/query"
	"github.com/yukikurage/workforce-api/internal/services"
)

// NotificationListResponse is one page of notifications, newest first
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    query.Meta            `json:"pagination"`
}

func ToNotificationListResponse(page *services.NotificationPage) NotificationListResponse {
	items := page.Notifications
	if items == nil {
		items = []models.Notification{}
	}
	return NotificationListResponse{Notifications: items, Pagination: page.Pagination}
}
