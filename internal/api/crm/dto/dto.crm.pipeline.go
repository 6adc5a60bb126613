package crmdto

// PipelineStageInput một stage trong pipeline.
type PipelineStageInput struct {
	StageID string `json:"stageId" validate:"required"`
	Name    string `json:"name" validate:"required,no_xss"`
	Order   int    `json:"order"`
}

// PipelineCreateInput đầu vào tạo pipeline.
type PipelineCreateInput struct {
	Name      string               `json:"name" validate:"required,no_xss"`
	Stages    []PipelineStageInput `json:"stages" validate:"required,min=1,dive"`
	IsDefault bool                 `json:"isDefault"`
}

// PipelineUpdateInput đầu vào cập nhật pipeline.
type PipelineUpdateInput struct {
	Name      string               `json:"name" validate:"omitempty,no_xss"`
	Stages    []PipelineStageInput `json:"stages" validate:"omitempty,min=1,dive"`
	IsDefault *bool                `json:"isDefault,omitempty"`
}
