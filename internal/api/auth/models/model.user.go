// Package models - model người dùng (User) thuộc domain auth.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User định nghĩa mô hình người dùng.
// Token chứa token xác thực mới nhất của người dùng.
// Tokens chứa danh sách các token, mỗi thiết bị khác nhau sẽ có một token riêng để xác thực (bằng hwid).
// OrganizationIDs là danh sách tổ chức mà user là thành viên, dùng cho organization context.
type User struct {
	ID                    primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Name                  string               `json:"name" bson:"name"`
	Email                 string               `json:"email" bson:"email" index:"unique"`
	Password              string               `json:"-" bson:"password"`
	Token                 string               `json:"token" bson:"token"`
	Tokens                []Token              `json:"-" bson:"tokens"`
	OrganizationIDs       []primitive.ObjectID `json:"organizationIds" bson:"organizationIds" index:"single:1"`
	DefaultOrganizationID primitive.ObjectID   `json:"defaultOrganizationId,omitempty" bson:"defaultOrganizationId,omitempty"`
	IsBlock               bool                 `json:"-" bson:"isBlock"`
	BlockNote             string               `json:"-" bson:"blockNote"`
	CreatedAt             int64                `json:"createdAt" bson:"createdAt"`
	UpdatedAt             int64                `json:"updatedAt" bson:"updatedAt"`
}
