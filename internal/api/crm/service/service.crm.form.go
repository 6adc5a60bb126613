package crmsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// FormService xử lý logic form (crm_forms).
type FormService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Form]
}

// NewFormService tạo FormService mới.
func NewFormService() (*FormService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Forms)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Forms, common.ErrNotFound)
	}
	return &FormService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Form](coll),
	}, nil
}

// FormSubmissionService xử lý logic form submission (crm_form_submissions).
type FormSubmissionService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.FormSubmission]
	formService    *FormService
	contactService *ContactService
}

// NewFormSubmissionService tạo FormSubmissionService mới.
func NewFormSubmissionService() (*FormSubmissionService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.FormSubmissions)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.FormSubmissions, common.ErrNotFound)
	}
	formService, err := NewFormService()
	if err != nil {
		return nil, err
	}
	contactService, err := NewContactService()
	if err != nil {
		return nil, err
	}
	return &FormSubmissionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.FormSubmission](coll),
		formService:          formService,
		contactService:       contactService,
	}, nil
}

// Submit ghi nhận một lượt submit form.
// Dữ liệu submit được ghép vào contact theo email: có contact trùng email thì
// cập nhật, chưa có thì tạo mới. Submission sau đó được insert và phát event
// lên bus (trigger form_submitted của engine bắt từ event insert này).
func (s *FormSubmissionService) Submit(ctx context.Context, formID primitive.ObjectID, data map[string]interface{}, ownerOrgID primitive.ObjectID) (*crmmodels.FormSubmission, error) {
	form, err := s.formService.FindOne(ctx, bson.M{"_id": formID, "ownerOrganizationId": ownerOrgID}, nil)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, common.NewError(common.ErrCodeBusinessState, "Form đã ngừng nhận submit", common.StatusConflict, nil)
	}

	// Validate các field bắt buộc của form
	for _, field := range form.Fields {
		if field.Required {
			if v, ok := data[field.Name]; !ok || v == "" || v == nil {
				return nil, common.NewError(
					common.ErrCodeValidationInput,
					fmt.Sprintf("Thiếu field bắt buộc: %s", field.Name),
					common.StatusBadRequest,
					nil,
				)
			}
		}
	}

	contact, err := s.resolveContact(ctx, data, ownerOrgID)
	if err != nil {
		return nil, err
	}

	submission, err := s.InsertOne(ctx, crmmodels.FormSubmission{
		FormID:              formID,
		ContactID:           contact.ID,
		Data:                data,
		OwnerOrganizationID: ownerOrgID,
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// resolveContact ghép dữ liệu submit vào contact theo email
func (s *FormSubmissionService) resolveContact(ctx context.Context, data map[string]interface{}, ownerOrgID primitive.ObjectID) (*crmmodels.Contact, error) {
	email, _ := data["email"].(string)

	if email != "" {
		existing, err := s.contactService.FindOne(ctx, bson.M{"email": email, "ownerOrganizationId": ownerOrgID}, nil)
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	firstName, _ := data["firstName"].(string)
	lastName, _ := data["lastName"].(string)
	phone, _ := data["phone"].(string)
	contact, err := s.contactService.InsertOne(ctx, crmmodels.Contact{
		FirstName:           firstName,
		LastName:            lastName,
		Email:               email,
		Phone:               phone,
		Source:              "form",
		TagIDs:              []primitive.ObjectID{},
		OwnerOrganizationID: ownerOrgID,
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
