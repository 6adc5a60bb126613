package main

import (
	"context"

	"cornerstone_crm/internal/api/initsvc"
	"cornerstone_crm/internal/global"
	"cornerstone_crm/internal/logger"
)

// InitDefaultData khởi tạo dữ liệu mặc định: tổ chức hệ thống luôn được
// đảm bảo tồn tại; pipeline và tag mẫu chỉ seed khi chạy ở chế độ INITMODE.
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	initService, err := initsvc.NewInitService()
	if err != nil {
		log.Fatalf("Failed to initialize init service: %v", err)
	}

	ctx := context.Background()

	// 1. Khởi tạo Organization Root (PHẢI LÀM TRƯỚC)
	log.Info("🔄 [INIT] Step 1: Initializing root organization...")
	rootOrg, err := initService.InitRootOrganization(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize root organization: %v", err)
	}
	log.Info("✅ [INIT] Step 1: Root organization initialized")

	// 2. Seed pipeline + tag mặc định cho tổ chức hệ thống (chỉ INITMODE)
	if global.ServerConfig.InitMode {
		log.Info("🔄 [INIT] Step 2: Seeding default CRM data (INITMODE)...")
		if err := initService.SeedOrganizationDefaults(ctx, rootOrg.ID); err != nil {
			log.WithError(err).Error("❌ [INIT] Step 2: Failed to seed default CRM data")
		} else {
			log.Info("✅ [INIT] Step 2: Default CRM data seeded")
		}
	}

	log.Info("✅ [INIT] InitDefaultData completed successfully")
}
