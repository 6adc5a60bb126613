package global

import (
	"cornerstone_crm/config"
	"cornerstone_crm/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	// Auth Collections
	Users         string // Tên collection cho người dùng
	Organizations string // Tên collection cho tổ chức

	// CRM Collections
	Contacts        string // Tên collection cho liên hệ
	Tags            string // Tên collection cho nhãn
	Pipelines       string // Tên collection cho pipeline bán hàng
	Deals           string // Tên collection cho cơ hội bán hàng
	Tasks           string // Tên collection cho công việc
	Notifications   string // Tên collection cho thông báo in-app
	ActivityLogs    string // Tên collection cho nhật ký hoạt động
	Forms           string // Tên collection cho form
	FormSubmissions string // Tên collection cho lượt submit form

	// Workflow Engine Collections
	Workflows   string // Tên collection cho workflow definitions
	Enrollments string // Tên collection cho workflow enrollments
}

// Các biến toàn cục
var Validate *validator.Validate               // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client              // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration         // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{ // Tên các collection
	Users:           "auth_users",
	Organizations:   "auth_organizations",
	Contacts:        "crm_contacts",
	Tags:            "crm_tags",
	Pipelines:       "crm_pipelines",
	Deals:           "crm_deals",
	Tasks:           "crm_tasks",
	Notifications:   "crm_notifications",
	ActivityLogs:    "crm_activity_logs",
	Forms:           "crm_forms",
	FormSubmissions: "crm_form_submissions",
	Workflows:       "wf_workflows",
	Enrollments:     "wf_enrollments",
}

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
