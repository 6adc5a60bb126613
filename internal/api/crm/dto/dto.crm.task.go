package crmdto

// TaskCreateInput đầu vào tạo task.
type TaskCreateInput struct {
	Title       string `json:"title" validate:"required,no_xss"`
	Description string `json:"description" validate:"omitempty,no_xss"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueAt       int64  `json:"dueAt" validate:"omitempty,gte=0"`
	ContactID   string `json:"contactId" validate:"omitempty"`
	AssignedTo  string `json:"assignedTo" validate:"omitempty"`
}

// TaskUpdateInput đầu vào cập nhật task.
type TaskUpdateInput struct {
	Title       string `json:"title" validate:"omitempty,no_xss"`
	Description string `json:"description" validate:"omitempty,no_xss"`
	Status      string `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueAt       *int64 `json:"dueAt,omitempty" validate:"omitempty,gte=0"`
	AssignedTo  string `json:"assignedTo" validate:"omitempty"`
}
