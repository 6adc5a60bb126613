package crmdto

// FormFieldInput một field của form.
type FormFieldInput struct {
	Name     string `json:"name" validate:"required"`
	Label    string `json:"label" validate:"required,no_xss"`
	Type     string `json:"type" validate:"required,oneof=text email phone number select"`
	Required bool   `json:"required"`
}

// FormCreateInput đầu vào tạo form.
type FormCreateInput struct {
	Name   string           `json:"name" validate:"required,no_xss"`
	Fields []FormFieldInput `json:"fields" validate:"required,min=1,dive"`
}

// FormUpdateInput đầu vào cập nhật form.
type FormUpdateInput struct {
	Name     string           `json:"name" validate:"omitempty,no_xss"`
	Fields   []FormFieldInput `json:"fields" validate:"omitempty,min=1,dive"`
	IsActive *bool            `json:"isActive,omitempty"`
}

// FormSubmitInput đầu vào submit form (public endpoint).
type FormSubmitInput struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}
