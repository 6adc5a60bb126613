// Package initsvc chứa InitService dùng để khởi tạo dữ liệu ban đầu
// (tổ chức hệ thống, pipeline và tag mặc định). Tách ra package riêng để
// tránh import cycle giữa auth/service và crm/service.
package initsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "cornerstone_crm/internal/api/auth/models"
	authsvc "cornerstone_crm/internal/api/auth/service"
	crmmodels "cornerstone_crm/internal/api/crm/models"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/logger"
)

// RootOrganizationCode là mã cố định của tổ chức hệ thống.
const RootOrganizationCode = "system"

// InitService khởi tạo dữ liệu mặc định cho hệ thống.
type InitService struct {
	organizationService *authsvc.OrganizationService
	pipelineService     *crmsvc.PipelineService
	tagService          *crmsvc.TagService
}

// NewInitService tạo mới một đối tượng InitService.
func NewInitService() (*InitService, error) {
	organizationService, err := authsvc.NewOrganizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create organization service: %v", err)
	}
	pipelineService, err := crmsvc.NewPipelineService()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline service: %v", err)
	}
	tagService, err := crmsvc.NewTagService()
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %v", err)
	}
	return &InitService{
		organizationService: organizationService,
		pipelineService:     pipelineService,
		tagService:          tagService,
	}, nil
}

// InitRootOrganization đảm bảo tổ chức hệ thống tồn tại. Idempotent.
func (h *InitService) InitRootOrganization(ctx context.Context) (*authmodels.Organization, error) {
	org, err := h.organizationService.FindOne(ctx, bson.M{"code": RootOrganizationCode}, nil)
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created, err := h.organizationService.InsertOne(ctx, authmodels.Organization{
		Name:     "System Organization",
		Code:     RootOrganizationCode,
		IsActive: true,
	})
	if err != nil {
		return nil, err
	}
	logger.GetAppLogger().Infof("🔄 [INIT] Created root organization (ID: %s)", created.ID.Hex())
	return &created, nil
}

// SeedOrganizationDefaults tạo pipeline bán hàng và bộ tag khởi đầu cho
// một tổ chức nếu tổ chức đó chưa có. Idempotent, an toàn gọi lại.
func (h *InitService) SeedOrganizationDefaults(ctx context.Context, orgID primitive.ObjectID) error {
	if err := h.seedDefaultPipeline(ctx, orgID); err != nil {
		return err
	}
	return h.seedDefaultTags(ctx, orgID)
}

func (h *InitService) seedDefaultPipeline(ctx context.Context, orgID primitive.ObjectID) error {
	_, err := h.pipelineService.FindOne(ctx, bson.M{"ownerOrganizationId": orgID, "isDefault": true}, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	_, err = h.pipelineService.InsertOne(ctx, crmmodels.Pipeline{
		Name:      "Sales Pipeline",
		IsDefault: true,
		Stages: []crmmodels.PipelineStage{
			{StageID: "lead", Name: "Lead", Order: 0},
			{StageID: "qualified", Name: "Qualified", Order: 1},
			{StageID: "proposal", Name: "Proposal", Order: 2},
			{StageID: "negotiation", Name: "Negotiation", Order: 3},
			{StageID: "closed", Name: "Closed", Order: 4},
		},
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		return err
	}
	logger.GetAppLogger().Infof("🔄 [INIT] Seeded default pipeline for organization %s", orgID.Hex())
	return nil
}

func (h *InitService) seedDefaultTags(ctx context.Context, orgID primitive.ObjectID) error {
	defaults := []crmmodels.Tag{
		{Name: "vip", Color: "#d4af37"},
		{Name: "newsletter", Color: "#4a90d9"},
		{Name: "cold-lead", Color: "#8e9aaf"},
	}
	for _, tag := range defaults {
		_, err := h.tagService.FindOne(ctx, bson.M{"ownerOrganizationId": orgID, "name": tag.Name}, nil)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		tag.OwnerOrganizationID = orgID
		if _, err := h.tagService.InsertOne(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}
