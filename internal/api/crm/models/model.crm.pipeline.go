package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PipelineStage là một cột trong pipeline, nhúng trực tiếp vào Pipeline.
// StageID là chuỗi do client sinh (ổn định khi đổi tên stage).
type PipelineStage struct {
	StageID string `json:"stageId" bson:"stageId"`
	Name    string `json:"name" bson:"name"`
	Order   int    `json:"order" bson:"order"`
}

// Pipeline là quy trình bán hàng của tổ chức (crm_pipelines), chứa danh sách stage có thứ tự.
type Pipeline struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	Stages              []PipelineStage    `json:"stages" bson:"stages"`
	IsDefault           bool               `json:"isDefault" bson:"isDefault"`
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId" index:"single:1"`
	CreatedAt           int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt           int64              `json:"updatedAt" bson:"updatedAt"`
}

// FindStage tìm stage theo stageId, trả về nil nếu không có
func (p *Pipeline) FindStage(stageID string) *PipelineStage {
	for i := range p.Stages {
		if p.Stages[i].StageID == stageID {
			return &p.Stages[i]
		}
	}
	return nil
}
