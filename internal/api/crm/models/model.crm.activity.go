// Package models - ActivityLog thuộc domain CRM (crm_activity_logs).
// Lưu lịch sử hoạt động gắn với contact: deal tạo bởi automation, ghi chú hệ thống, ...
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityType các loại hoạt động được ghi log
const (
	ActivityTypeDealCreated     = "deal_created"
	ActivityTypeWorkflowAction  = "workflow_action"
	ActivityTypeFormSubmitted   = "form_submitted"
	ActivityTypeNote            = "note"
)

// ActivityLog lưu một hoạt động gắn với contact (crm_activity_logs).
type ActivityLog struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	ContactID    primitive.ObjectID     `json:"contactId" bson:"contactId" index:"single:1,compound:crm_activity_contact_at"`
	ActivityType string                 `json:"activityType" bson:"activityType" index:"single:1"`
	Description  string                 `json:"description" bson:"description"`
	DealID       primitive.ObjectID     `json:"dealId,omitempty" bson:"dealId,omitempty"`
	UserID       primitive.ObjectID     `json:"userId,omitempty" bson:"userId,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`

	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:-1,compound:crm_activity_contact_at,order:-1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
