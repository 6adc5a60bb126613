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
	"cornerstone_crm/internal/utility"
)

// DealHandler xử lý các request deal
type DealHandler struct {
	dealService     *crmsvc.DealService
	pipelineService *crmsvc.PipelineService
}

// NewDealHandler tạo instance mới của DealHandler
func NewDealHandler() (*DealHandler, error) {
	dealService, err := crmsvc.NewDealService()
	if err != nil {
		return nil, fmt.Errorf("failed to create deal service: %v", err)
	}
	pipelineService, err := crmsvc.NewPipelineService()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline service: %v", err)
	}
	return &DealHandler{dealService: dealService, pipelineService: pipelineService}, nil
}

// HandleCreate tạo deal ở cuối stage đích.
// Pipeline và stage phải tồn tại trong tổ chức đang hoạt động.
func (h *DealHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input crmdto.DealCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	pipelineID := utility.String2ObjectID(input.PipelineID)
	pipeline, err := h.pipelineService.FindOne(c.Context(), bson.M{"_id": pipelineID, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if pipeline.FindStage(input.StageID) == nil {
		basehdl.HandleResponse(c, nil, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Stage '%s' không tồn tại trong pipeline", input.StageID),
			common.StatusBadRequest,
			nil,
		))
		return nil
	}

	deal, err := h.dealService.CreateInStage(c.Context(), crmmodels.Deal{
		Title:               input.Title,
		Value:               input.Value,
		PipelineID:          pipelineID,
		StageID:             input.StageID,
		ContactID:           utility.String2ObjectID(input.ContactID),
		AssignedTo:          utility.String2ObjectID(input.AssignedTo),
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, deal)
	return nil
}

// HandleFindWithPagination liệt kê deal của tổ chức, filter theo pipeline/stage/status
func (h *DealHandler) HandleFindWithPagination(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"ownerOrganizationId": orgID}
	if pipelineID := c.Query("pipelineId"); pipelineID != "" {
		filter["pipelineId"] = utility.String2ObjectID(pipelineID)
	}
	if stageID := c.Query("stageId"); stageID != "" {
		filter["stageId"] = stageID
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	result, err := h.dealService.FindWithPagination(c.Context(), filter, page, limit, nil)
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleGetById lấy chi tiết deal
func (h *DealHandler) HandleGetById(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	dealID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	deal, err := h.dealService.FindOne(c.Context(), bson.M{"_id": dealID, "ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, deal, err)
	return nil
}

// HandleUpdate cập nhật deal (không đổi stage, dùng HandleMoveStage cho việc đó)
func (h *DealHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	dealID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.DealUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	set := map[string]interface{}{}
	if input.Title != "" {
		set["title"] = input.Title
	}
	if input.Value != nil {
		set["value"] = *input.Value
	}
	if input.Status != "" {
		set["status"] = input.Status
	}
	if input.AssignedTo != "" {
		set["assignedTo"] = utility.String2ObjectID(input.AssignedTo)
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}
	updated, err := h.dealService.UpdateOne(c.Context(),
		bson.M{"_id": dealID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleMoveStage chuyển deal sang stage khác, chèn vào cuối stage đích.
// Đây là điểm phát trigger deal_stage_changed của workflow engine.
func (h *DealHandler) HandleMoveStage(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	dealID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.DealMoveStageInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	deal, err := h.dealService.FindOne(c.Context(), bson.M{"_id": dealID, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	pipeline, err := h.pipelineService.FindOneById(c.Context(), deal.PipelineID)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if pipeline.FindStage(input.StageID) == nil {
		basehdl.HandleResponse(c, nil, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Stage '%s' không tồn tại trong pipeline", input.StageID),
			common.StatusBadRequest,
			nil,
		))
		return nil
	}

	moved, err := h.dealService.MoveStage(c.Context(), dealID, input.StageID)
	basehdl.HandleResponse(c, moved, err)
	return nil
}

// HandleDelete xóa deal
func (h *DealHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	dealID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.dealService.DeleteOne(c.Context(), bson.M{"_id": dealID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}
