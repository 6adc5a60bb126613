package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormField một field trong form, nhúng trực tiếp vào Form.
type FormField struct {
	Name     string `json:"name" bson:"name"`
	Label    string `json:"label" bson:"label"`
	Type     string `json:"type" bson:"type"` // text | email | phone | number | select
	Required bool   `json:"required" bson:"required"`
}

// Form là form thu thập lead của tổ chức (crm_forms).
type Form struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	Fields              []FormField        `json:"fields" bson:"fields"`
	IsActive            bool               `json:"isActive" bson:"isActive" index:"single:1"`
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`
	CreatedAt           int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt           int64              `json:"updatedAt" bson:"updatedAt"`
}
