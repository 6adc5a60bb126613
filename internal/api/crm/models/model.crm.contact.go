// Package models - các model thuộc domain CRM.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactStandardFields là allow-list các cột chuẩn của contact.
// Action update_field ghi trực tiếp vào các cột này; field khác được merge vào customFields.
var ContactStandardFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"email":     true,
	"phone":     true,
	"company":   true,
	"jobTitle":  true,
	"type":      true,
	"source":    true,
	"address":   true,
	"city":      true,
	"country":   true,
}

// Contact là khách hàng tiềm năng / liên hệ của một tổ chức (crm_contacts).
// CustomFields chứa các field do tenant tự định nghĩa, được condition evaluator
// truy cập qua đường dẫn dạng "customFields.<key>".
type Contact struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName string              `json:"firstName" bson:"firstName"`
	LastName  string              `json:"lastName" bson:"lastName"`
	Email     string              `json:"email,omitempty" bson:"email,omitempty" index:"single:1"`
	Phone     string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Company   string              `json:"company,omitempty" bson:"company,omitempty"`
	JobTitle  string              `json:"jobTitle,omitempty" bson:"jobTitle,omitempty"`
	Type      string              `json:"type,omitempty" bson:"type,omitempty" index:"single:1"`
	Source    string              `json:"source,omitempty" bson:"source,omitempty"`
	Address   string              `json:"address,omitempty" bson:"address,omitempty"`
	City      string              `json:"city,omitempty" bson:"city,omitempty"`
	Country   string              `json:"country,omitempty" bson:"country,omitempty"`

	// AssignedTo là user phụ trách contact, dùng cho assignee fallback "owner" của engine
	AssignedTo primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty" index:"single:1"`

	TagIDs       []primitive.ObjectID   `json:"tagIds" bson:"tagIds"`
	CustomFields map[string]interface{} `json:"customFields,omitempty" bson:"customFields,omitempty"`

	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// FullName trả về tên đầy đủ của contact
func (c *Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
