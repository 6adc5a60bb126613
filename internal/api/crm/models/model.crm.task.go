package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus trạng thái task
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// TaskPriority độ ưu tiên task
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task là việc cần làm gắn với contact (crm_tasks).
// DueAt = 0 nghĩa là không có hạn.
type Task struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Status      string             `json:"status" bson:"status" index:"single:1"`
	Priority    string             `json:"priority,omitempty" bson:"priority,omitempty"`
	DueAt       int64              `json:"dueAt,omitempty" bson:"dueAt,omitempty" index:"single:1"`

	ContactID  primitive.ObjectID `json:"contactId,omitempty" bson:"contactId,omitempty" index:"single:1"`
	AssignedTo primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`

	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
