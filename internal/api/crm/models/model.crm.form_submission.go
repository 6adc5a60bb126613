package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormSubmission là một lượt submit form (crm_form_submissions).
// ContactID là contact được tạo/ghép từ dữ liệu submit, dùng làm subject cho trigger form_submitted.
type FormSubmission struct {
	ID        primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	FormID    primitive.ObjectID     `json:"formId" bson:"formId" index:"single:1"`
	ContactID primitive.ObjectID     `json:"contactId,omitempty" bson:"contactId,omitempty" index:"single:1"`
	Data      map[string]interface{} `json:"data" bson:"data"`

	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt" index:"single:-1"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
