package crmdto

// TagCreateInput đầu vào tạo tag.
type TagCreateInput struct {
	Name  string `json:"name" validate:"required,no_xss"`
	Color string `json:"color" validate:"omitempty"`
}

// TagUpdateInput đầu vào cập nhật tag.
type TagUpdateInput struct {
	Name  string `json:"name" validate:"omitempty,no_xss"`
	Color string `json:"color" validate:"omitempty"`
}
