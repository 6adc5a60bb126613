package crmhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"

	basehdl "cornerstone_crm/internal/api/base/handler"
	basesvc "cornerstone_crm/internal/api/base/service"
	crmdto "cornerstone_crm/internal/api/crm/dto"
	crmmodels "cornerstone_crm/internal/api/crm/models"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/api/middleware"
	"cornerstone_crm/internal/common"
)

// PipelineHandler xử lý các request pipeline
type PipelineHandler struct {
	pipelineService *crmsvc.PipelineService
}

// NewPipelineHandler tạo instance mới của PipelineHandler
func NewPipelineHandler() (*PipelineHandler, error) {
	pipelineService, err := crmsvc.NewPipelineService()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline service: %v", err)
	}
	return &PipelineHandler{pipelineService: pipelineService}, nil
}

func toStages(inputs []crmdto.PipelineStageInput) []crmmodels.PipelineStage {
	stages := make([]crmmodels.PipelineStage, 0, len(inputs))
	for i, st := range inputs {
		order := st.Order
		if order == 0 {
			order = i
		}
		stages = append(stages, crmmodels.PipelineStage{
			StageID: st.StageID,
			Name:    st.Name,
			Order:   order,
		})
	}
	return stages
}

// HandleCreate tạo pipeline mới
func (h *PipelineHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input crmdto.PipelineCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	pipeline, err := h.pipelineService.InsertOne(c.Context(), crmmodels.Pipeline{
		Name:                input.Name,
		Stages:              toStages(input.Stages),
		IsDefault:           input.IsDefault,
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, pipeline)
	return nil
}

// HandleList liệt kê pipeline của tổ chức
func (h *PipelineHandler) HandleList(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	pipelines, err := h.pipelineService.Find(c.Context(), bson.M{"ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, pipelines, err)
	return nil
}

// HandleGetById lấy chi tiết pipeline
func (h *PipelineHandler) HandleGetById(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	pipelineID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	pipeline, err := h.pipelineService.FindOne(c.Context(), bson.M{"_id": pipelineID, "ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, pipeline, err)
	return nil
}

// HandleUpdate cập nhật pipeline
func (h *PipelineHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	pipelineID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.PipelineUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if len(input.Stages) > 0 {
		set["stages"] = toStages(input.Stages)
	}
	if input.IsDefault != nil {
		set["isDefault"] = *input.IsDefault
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}
	updated, err := h.pipelineService.UpdateOne(c.Context(),
		bson.M{"_id": pipelineID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleDelete xóa pipeline
func (h *PipelineHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	pipelineID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.pipelineService.DeleteOne(c.Context(), bson.M{"_id": pipelineID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}
