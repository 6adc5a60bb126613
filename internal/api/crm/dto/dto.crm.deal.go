package crmdto

// DealCreateInput đầu vào tạo deal.
type DealCreateInput struct {
	Title      string  `json:"title" validate:"required,no_xss"`
	Value      float64 `json:"value" validate:"omitempty,gte=0"`
	PipelineID string  `json:"pipelineId" validate:"required"`
	StageID    string  `json:"stageId" validate:"required"`
	ContactID  string  `json:"contactId" validate:"omitempty"`
	AssignedTo string  `json:"assignedTo" validate:"omitempty"`
}

// DealUpdateInput đầu vào cập nhật deal.
type DealUpdateInput struct {
	Title      string   `json:"title" validate:"omitempty,no_xss"`
	Value      *float64 `json:"value,omitempty" validate:"omitempty,gte=0"`
	Status     string   `json:"status" validate:"omitempty,oneof=open won lost"`
	AssignedTo string   `json:"assignedTo" validate:"omitempty"`
}

// DealMoveStageInput đầu vào chuyển stage cho deal.
type DealMoveStageInput struct {
	StageID string `json:"stageId" validate:"required"`
}
