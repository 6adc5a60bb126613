package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"cornerstone_crm/config"
	authmodels "cornerstone_crm/internal/api/auth/models"
	crmmodels "cornerstone_crm/internal/api/crm/models"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/database"
	"cornerstone_crm/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, ...)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index cho các collection
	dbName := global.ServerConfig.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)

	// Auth
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Users), authmodels.User{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Organizations), authmodels.Organization{})

	// CRM
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Contacts), crmmodels.Contact{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Tags), crmmodels.Tag{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Pipelines), crmmodels.Pipeline{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Deals), crmmodels.Deal{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Tasks), crmmodels.Task{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Notifications), crmmodels.Notification{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.ActivityLogs), crmmodels.ActivityLog{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Forms), crmmodels.Form{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.FormSubmissions), crmmodels.FormSubmission{})

	// Workflow Engine
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Workflows), wfmodels.Workflow{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Enrollments), wfmodels.WorkflowEnrollment{})

	// Các compound index không biểu diễn được bằng struct tag (vd: hàng đợi
	// enrollment đến hạn theo status + nextStepAt)
	if err := database.CreateWorkflowAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Warnf("Failed to create additional indexes: %v", err)
	}
}
