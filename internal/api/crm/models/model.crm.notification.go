package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType loại notification
const (
	NotificationTypeInApp = "in_app"
	NotificationTypeEmail = "email"
)

// Notification là thông báo in-app cho user (crm_notifications).
// ContactID liên kết ngược về contact gây ra thông báo (nếu có).
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"`
	Type      string             `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	ContactID primitive.ObjectID `json:"contactId,omitempty" bson:"contactId,omitempty"`
	IsRead    bool               `json:"isRead" bson:"isRead" index:"single:1"`

	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:-1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
