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

// TagHandler xử lý các request tag
type TagHandler struct {
	tagService *crmsvc.TagService
}

// NewTagHandler tạo instance mới của TagHandler
func NewTagHandler() (*TagHandler, error) {
	tagService, err := crmsvc.NewTagService()
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %v", err)
	}
	return &TagHandler{tagService: tagService}, nil
}

// HandleCreate tạo tag mới
func (h *TagHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input crmdto.TagCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	tag, err := h.tagService.InsertOne(c.Context(), crmmodels.Tag{
		Name:                input.Name,
		Color:               input.Color,
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, tag)
	return nil
}

// HandleList liệt kê tag của tổ chức
func (h *TagHandler) HandleList(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	tags, err := h.tagService.Find(c.Context(), bson.M{"ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, tags, err)
	return nil
}

// HandleUpdate cập nhật tag
func (h *TagHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	tagID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.TagUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.Color != "" {
		set["color"] = input.Color
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}
	updated, err := h.tagService.UpdateOne(c.Context(),
		bson.M{"_id": tagID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleDelete xóa tag
func (h *TagHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	tagID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.tagService.DeleteOne(c.Context(), bson.M{"_id": tagID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}
