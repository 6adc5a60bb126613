// Package crmdto - các DTO thuộc domain CRM.
package crmdto

// ContactCreateInput đầu vào tạo contact.
type ContactCreateInput struct {
	FirstName    string                 `json:"firstName" validate:"required,no_xss"`
	LastName     string                 `json:"lastName" validate:"omitempty,no_xss"`
	Email        string                 `json:"email" validate:"omitempty,email"`
	Phone        string                 `json:"phone" validate:"omitempty"`
	Company      string                 `json:"company" validate:"omitempty,no_xss"`
	JobTitle     string                 `json:"jobTitle" validate:"omitempty,no_xss"`
	Type         string                 `json:"type" validate:"omitempty,no_xss"`
	Source       string                 `json:"source" validate:"omitempty,no_xss"`
	AssignedTo   string                 `json:"assignedTo" validate:"omitempty"`
	CustomFields map[string]interface{} `json:"customFields"`
}

// ContactUpdateInput đầu vào cập nhật contact. Chỉ field khác rỗng được cập nhật.
type ContactUpdateInput struct {
	FirstName    string                 `json:"firstName" validate:"omitempty,no_xss"`
	LastName     string                 `json:"lastName" validate:"omitempty,no_xss"`
	Email        string                 `json:"email" validate:"omitempty,email"`
	Phone        string                 `json:"phone" validate:"omitempty"`
	Company      string                 `json:"company" validate:"omitempty,no_xss"`
	JobTitle     string                 `json:"jobTitle" validate:"omitempty,no_xss"`
	Type         string                 `json:"type" validate:"omitempty,no_xss"`
	Source       string                 `json:"source" validate:"omitempty,no_xss"`
	AssignedTo   string                 `json:"assignedTo" validate:"omitempty"`
	CustomFields map[string]interface{} `json:"customFields"`
}

// ContactTagsInput đầu vào gắn / gỡ tag cho contact.
type ContactTagsInput struct {
	TagIDs []string `json:"tagIds" validate:"required,min=1"`
}
