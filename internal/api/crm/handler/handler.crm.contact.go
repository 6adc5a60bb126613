// Package crmhdl xử lý request HTTP cho domain CRM.
package crmhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "cornerstone_crm/internal/api/base/handler"
	basesvc "cornerstone_crm/internal/api/base/service"
	crmdto "cornerstone_crm/internal/api/crm/dto"
	crmmodels "cornerstone_crm/internal/api/crm/models"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/api/middleware"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/utility"
)

// ContactHandler xử lý các request contact
type ContactHandler struct {
	contactService *crmsvc.ContactService
}

// NewContactHandler tạo instance mới của ContactHandler
func NewContactHandler() (*ContactHandler, error) {
	contactService, err := crmsvc.NewContactService()
	if err != nil {
		return nil, fmt.Errorf("failed to create contact service: %v", err)
	}
	return &ContactHandler{contactService: contactService}, nil
}

// HandleCreate tạo contact mới trong tổ chức đang hoạt động
func (h *ContactHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input crmdto.ContactCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	contact := crmmodels.Contact{
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		Email:               input.Email,
		Phone:               input.Phone,
		Company:             input.Company,
		JobTitle:            input.JobTitle,
		Type:                input.Type,
		Source:              input.Source,
		AssignedTo:          utility.String2ObjectID(input.AssignedTo),
		TagIDs:              []primitive.ObjectID{},
		CustomFields:        input.CustomFields,
		OwnerOrganizationID: orgID,
	}

	created, err := h.contactService.InsertOne(c.Context(), contact)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, created)
	return nil
}

// HandleFindWithPagination liệt kê contact của tổ chức, có phân trang
func (h *ContactHandler) HandleFindWithPagination(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"ownerOrganizationId": orgID}
	if tagID := c.Query("tagId"); tagID != "" {
		filter["tagIds"] = utility.String2ObjectID(tagID)
	}
	if contactType := c.Query("type"); contactType != "" {
		filter["type"] = contactType
	}

	result, err := h.contactService.FindWithPagination(c.Context(), filter, page, limit, nil)
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleGetById lấy chi tiết contact
func (h *ContactHandler) HandleGetById(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	contactID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	contact, err := h.contactService.FindOne(c.Context(), bson.M{"_id": contactID, "ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, contact, err)
	return nil
}

// HandleUpdate cập nhật contact, chỉ các field khác rỗng
func (h *ContactHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	contactID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.ContactUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	set := map[string]interface{}{}
	if input.FirstName != "" {
		set["firstName"] = input.FirstName
	}
	if input.LastName != "" {
		set["lastName"] = input.LastName
	}
	if input.Email != "" {
		set["email"] = input.Email
	}
	if input.Phone != "" {
		set["phone"] = input.Phone
	}
	if input.Company != "" {
		set["company"] = input.Company
	}
	if input.JobTitle != "" {
		set["jobTitle"] = input.JobTitle
	}
	if input.Type != "" {
		set["type"] = input.Type
	}
	if input.Source != "" {
		set["source"] = input.Source
	}
	if input.AssignedTo != "" {
		set["assignedTo"] = utility.String2ObjectID(input.AssignedTo)
	}
	for key, value := range input.CustomFields {
		set["customFields."+key] = value
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}

	updated, err := h.contactService.UpdateOne(c.Context(),
		bson.M{"_id": contactID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleDelete xóa contact
func (h *ContactHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	contactID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.contactService.DeleteOne(c.Context(), bson.M{"_id": contactID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}

// HandleAddTags gắn tag lên contact (phép hợp, idempotent)
func (h *ContactHandler) HandleAddTags(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	contactID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.ContactTagsInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	// Xác nhận contact thuộc tổ chức trước khi mutate
	if _, err := h.contactService.FindOne(c.Context(), bson.M{"_id": contactID, "ownerOrganizationId": orgID}, nil); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	contact, added, err := h.contactService.AddTags(c.Context(), contactID, utility.StringArray2ObjectIDArray(input.TagIDs))
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, fiber.Map{
		"contact":    contact,
		"addedTags":  added,
		"totalTags":  len(contact.TagIDs),
	}, nil)
	return nil
}

// HandleRemoveTags gỡ tag khỏi contact (phép hiệu, idempotent)
func (h *ContactHandler) HandleRemoveTags(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	contactID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.ContactTagsInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	if _, err := h.contactService.FindOne(c.Context(), bson.M{"_id": contactID, "ownerOrganizationId": orgID}, nil); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	contact, removed, err := h.contactService.RemoveTags(c.Context(), contactID, utility.StringArray2ObjectIDArray(input.TagIDs))
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, fiber.Map{
		"contact":     contact,
		"removedTags": removed,
		"totalTags":   len(contact.TagIDs),
	}, nil)
	return nil
}
