package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag là nhãn gắn lên contact (crm_tags).
// Tên tag là duy nhất trong phạm vi một tổ chức.
type Tag struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name" index:"compound:crm_tag_org_name_unique"`
	Color               string             `json:"color,omitempty" bson:"color,omitempty"`
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1,compound:crm_tag_org_name_unique"`
	CreatedAt           int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt           int64              `json:"updatedAt" bson:"updatedAt"`
}
