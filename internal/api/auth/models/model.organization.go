// Package models - Organization thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization là đơn vị thuê (tenant) của hệ thống.
// Mọi dữ liệu CRM và workflow đều gắn với một organization qua ownerOrganizationId.
type Organization struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name" index:"single:1"`
	Code      string             `json:"code" bson:"code" index:"unique"`
	OwnerID   primitive.ObjectID `json:"ownerId" bson:"ownerId" index:"single:1"`
	IsActive  bool               `json:"isActive" bson:"isActive" index:"single:1"`
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`
}
