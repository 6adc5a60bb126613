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

// FormHandler xử lý các request form và form submission
type FormHandler struct {
	formService       *crmsvc.FormService
	submissionService *crmsvc.FormSubmissionService
}

// NewFormHandler tạo instance mới của FormHandler
func NewFormHandler() (*FormHandler, error) {
	formService, err := crmsvc.NewFormService()
	if err != nil {
		return nil, fmt.Errorf("failed to create form service: %v", err)
	}
	submissionService, err := crmsvc.NewFormSubmissionService()
	if err != nil {
		return nil, fmt.Errorf("failed to create form submission service: %v", err)
	}
	return &FormHandler{formService: formService, submissionService: submissionService}, nil
}

func toFormFields(inputs []crmdto.FormFieldInput) []crmmodels.FormField {
	fields := make([]crmmodels.FormField, 0, len(inputs))
	for _, f := range inputs {
		fields = append(fields, crmmodels.FormField{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
		})
	}
	return fields
}

// HandleCreate tạo form mới
func (h *FormHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input crmdto.FormCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	form, err := h.formService.InsertOne(c.Context(), crmmodels.Form{
		Name:                input.Name,
		Fields:              toFormFields(input.Fields),
		IsActive:            true,
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, form)
	return nil
}

// HandleList liệt kê form của tổ chức
func (h *FormHandler) HandleList(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	forms, err := h.formService.Find(c.Context(), bson.M{"ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, forms, err)
	return nil
}

// HandleUpdate cập nhật form
func (h *FormHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	formID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.FormUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if len(input.Fields) > 0 {
		set["fields"] = toFormFields(input.Fields)
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}
	updated, err := h.formService.UpdateOne(c.Context(),
		bson.M{"_id": formID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleSubmit nhận một lượt submit form.
// Endpoint này nằm sau auth + org context như các endpoint khác; việc mở public
// cho form nhúng website là chuyện của lớp gateway phía trước.
func (h *FormHandler) HandleSubmit(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	formID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.FormSubmitInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	submission, err := h.submissionService.Submit(c.Context(), formID, input.Data, orgID)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, submission)
	return nil
}

// HandleListSubmissions liệt kê submission của một form
func (h *FormHandler) HandleListSubmissions(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	formID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	page, limit := basehdl.ParsePagination(c)
	result, err := h.submissionService.FindWithPagination(c.Context(),
		bson.M{"formId": formID, "ownerOrganizationId": orgID}, page, limit, nil)
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleDelete xóa form
func (h *FormHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	formID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.formService.DeleteOne(c.Context(), bson.M{"_id": formID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}
