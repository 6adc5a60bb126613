package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DealStatus trạng thái deal
const (
	DealStatusOpen = "open"
	DealStatusWon  = "won"
	DealStatusLost = "lost"
)

// Deal là cơ hội bán hàng (crm_deals), nằm trong một stage của một pipeline.
// Position là thứ tự trong stage; deal mới luôn được chèn vào cuối (max position + 1).
type Deal struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title      string             `json:"title" bson:"title"`
	Value      float64            `json:"value" bson:"value"`
	PipelineID primitive.ObjectID `json:"pipelineId" bson:"pipelineId" index:"single:1"`
	StageID    string             `json:"stageId" bson:"stageId"`
	Position   int                `json:"position" bson:"position"`
	Status     string             `json:"status" bson:"status" index:"single:1"`

	ContactID  primitive.ObjectID `json:"contactId,omitempty" bson:"contactId,omitempty" index:"single:1"`
	AssignedTo primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`

	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
