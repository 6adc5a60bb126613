package wfsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "cornerstone_crm/internal/api/base/service"
	crmmodels "cornerstone_crm/internal/api/crm/models"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// EngineStore là persistence port của engine. Mọi truy cập dữ liệu của
// lifecycle manager, action handlers và trigger matchers đi qua interface này,
// cho phép thay bằng fake in-memory trong test.
//
// AdvanceEnrollment là conditional update: chỉ ghi khi enrollment vẫn active
// và vẫn đang đứng ở step được nạp lúc đọc. Toàn bộ lập luận an toàn
// at-least-once của engine dựa trên capability này.
type EngineStore interface {
	GetWorkflow(ctx context.Context, id primitive.ObjectID) (*wfmodels.Workflow, error)
	ListActiveWorkflowsByTrigger(ctx context.Context, orgID primitive.ObjectID, triggerType string) ([]wfmodels.Workflow, error)
	IncWorkflowCounter(ctx context.Context, workflowID primitive.ObjectID, field string, delta int64) error

	GetEnrollment(ctx context.Context, id primitive.ObjectID) (*wfmodels.WorkflowEnrollment, error)
	InsertEnrollment(ctx context.Context, enrollment wfmodels.WorkflowEnrollment) (*wfmodels.WorkflowEnrollment, error)
	HasOpenEnrollment(ctx context.Context, workflowID, contactID primitive.ObjectID) (bool, error)
	AdvanceEnrollment(ctx context.Context, id primitive.ObjectID, guardStepID string, exec *wfmodels.StepExecution, set map[string]interface{}, unset []string) (bool, error)
	ExitEnrollmentIfActive(ctx context.Context, id primitive.ObjectID, reason string, at int64) (bool, error)
	ListDueEnrollments(ctx context.Context, now int64, limit int64) ([]wfmodels.WorkflowEnrollment, error)

	GetContact(ctx context.Context, id primitive.ObjectID) (*crmmodels.Contact, error)
	AddContactTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error)
	RemoveContactTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error)
	SetContactField(ctx context.Context, contactID primitive.ObjectID, field string, value interface{}) (oldValue interface{}, isCustom bool, err error)

	InsertTask(ctx context.Context, task crmmodels.Task) (*crmmodels.Task, error)
	InsertDeal(ctx context.Context, deal crmmodels.Deal) (*crmmodels.Deal, error)
	InsertNotification(ctx context.Context, notification crmmodels.Notification) (*crmmodels.Notification, error)
	InsertActivity(ctx context.Context, activity crmmodels.ActivityLog) error
}

// MongoEngineStore là implementation MongoDB của EngineStore, bọc các domain
// service chạy trên BaseServiceMongo. Các conditional update và $inc đi thẳng
// xuống collection để giữ tính atomic.
type MongoEngineStore struct {
	workflowService     *basesvc.BaseServiceMongoImpl[wfmodels.Workflow]
	enrollmentService   *basesvc.BaseServiceMongoImpl[wfmodels.WorkflowEnrollment]
	contactService      *crmsvc.ContactService
	dealService         *crmsvc.DealService
	taskService         *crmsvc.TaskService
	notificationService *crmsvc.NotificationService
	activityLogService  *crmsvc.ActivityLogService
}

// NewMongoEngineStore tạo store mới từ registry collection toàn cục.
func NewMongoEngineStore() (*MongoEngineStore, error) {
	workflowColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Workflows)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Workflows, common.ErrNotFound)
	}
	enrollmentColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Enrollments)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Enrollments, common.ErrNotFound)
	}
	contactService, err := crmsvc.NewContactService()
	if err != nil {
		return nil, err
	}
	dealService, err := crmsvc.NewDealService()
	if err != nil {
		return nil, err
	}
	taskService, err := crmsvc.NewTaskService()
	if err != nil {
		return nil, err
	}
	notificationService, err := crmsvc.NewNotificationService()
	if err != nil {
		return nil, err
	}
	activityLogService, err := crmsvc.NewActivityLogService()
	if err != nil {
		return nil, err
	}
	return &MongoEngineStore{
		workflowService:     basesvc.NewBaseServiceMongo[wfmodels.Workflow](workflowColl),
		enrollmentService:   basesvc.NewBaseServiceMongo[wfmodels.WorkflowEnrollment](enrollmentColl),
		contactService:      contactService,
		dealService:         dealService,
		taskService:         taskService,
		notificationService: notificationService,
		activityLogService:  activityLogService,
	}, nil
}

func (s *MongoEngineStore) GetWorkflow(ctx context.Context, id primitive.ObjectID) (*wfmodels.Workflow, error) {
	workflow, err := s.workflowService.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (s *MongoEngineStore) ListActiveWorkflowsByTrigger(ctx context.Context, orgID primitive.ObjectID, triggerType string) ([]wfmodels.Workflow, error) {
	return s.workflowService.Find(ctx, bson.M{
		"ownerOrganizationId": orgID,
		"status":              wfmodels.WorkflowStatusActive,
		"trigger.type":        triggerType,
	}, nil)
}

// IncWorkflowCounter tăng counter bằng $inc atomic, không read-modify-write.
func (s *MongoEngineStore) IncWorkflowCounter(ctx context.Context, workflowID primitive.ObjectID, field string, delta int64) error {
	_, err := s.workflowService.Collection().UpdateOne(ctx,
		bson.M{"_id": workflowID},
		bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

func (s *MongoEngineStore) GetEnrollment(ctx context.Context, id primitive.ObjectID) (*wfmodels.WorkflowEnrollment, error) {
	enrollment, err := s.enrollmentService.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *MongoEngineStore) InsertEnrollment(ctx context.Context, enrollment wfmodels.WorkflowEnrollment) (*wfmodels.WorkflowEnrollment, error) {
	created, err := s.enrollmentService.InsertOne(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// HasOpenEnrollment kiểm tra contact đã có enrollment chưa kết thúc (active
// hoặc paused) trong workflow hay chưa.
func (s *MongoEngineStore) HasOpenEnrollment(ctx context.Context, workflowID, contactID primitive.ObjectID) (bool, error) {
	count, err := s.enrollmentService.CountDocuments(ctx, bson.M{
		"workflowId": workflowID,
		"contactId":  contactID,
		"status":     bson.M{"$in": []string{wfmodels.EnrollmentStatusActive, wfmodels.EnrollmentStatusPaused}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AdvanceEnrollment ghi một bước chuyển trạng thái của enrollment với guard
// status=active và currentStepId=guardStepID. Trả về false khi guard không khớp
// (một lời gọi processStep song song đã thắng), caller coi đó là no-op.
// exec (nếu có) được $push vào stepHistory trong cùng một write.
func (s *MongoEngineStore) AdvanceEnrollment(ctx context.Context, id primitive.ObjectID, guardStepID string, exec *wfmodels.StepExecution, set map[string]interface{}, unset []string) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": wfmodels.EnrollmentStatusActive,
	}
	if guardStepID != "" {
		filter["currentStepId"] = guardStepID
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if exec != nil {
		update["$push"] = bson.M{"stepHistory": exec}
	}
	if len(unset) > 0 {
		unsetDoc := bson.M{}
		for _, field := range unset {
			unsetDoc[field] = ""
		}
		update["$unset"] = unsetDoc
	}
	if len(update) == 0 {
		return false, nil
	}

	result, err := s.enrollmentService.Collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return false, common.ConvertMongoError(err)
	}
	return result.MatchedCount > 0, nil
}

// ExitEnrollmentIfActive chuyển enrollment active sang exited.
// Conditional update: enrollment đã terminal thì không ghi gì (false, nil).
func (s *MongoEngineStore) ExitEnrollmentIfActive(ctx context.Context, id primitive.ObjectID, reason string, at int64) (bool, error) {
	return s.AdvanceEnrollment(ctx, id, "", nil, map[string]interface{}{
		"status":     wfmodels.EnrollmentStatusExited,
		"exitReason": reason,
		"exitedAt":   at,
	}, []string{"nextStepAt"})
}

// ListDueEnrollments trả về các enrollment active đã đến hạn xử lý,
// sắp xếp theo nextStepAt tăng dần.
func (s *MongoEngineStore) ListDueEnrollments(ctx context.Context, now int64, limit int64) ([]wfmodels.WorkflowEnrollment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "nextStepAt", Value: 1}}).
		SetLimit(limit)
	return s.enrollmentService.Find(ctx, bson.M{
		"status":     wfmodels.EnrollmentStatusActive,
		"nextStepAt": bson.M{"$gt": 0, "$lte": now},
	}, opts)
}

func (s *MongoEngineStore) GetContact(ctx context.Context, id primitive.ObjectID) (*crmmodels.Contact, error) {
	contact, err := s.contactService.FindOneById(ctx, id)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (s *MongoEngineStore) AddContactTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error) {
	return s.contactService.AddTags(ctx, contactID, tagIDs)
}

func (s *MongoEngineStore) RemoveContactTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error) {
	return s.contactService.RemoveTags(ctx, contactID, tagIDs)
}

func (s *MongoEngineStore) SetContactField(ctx context.Context, contactID primitive.ObjectID, field string, value interface{}) (interface{}, bool, error) {
	return s.contactService.SetField(ctx, contactID, field, value)
}

func (s *MongoEngineStore) InsertTask(ctx context.Context, task crmmodels.Task) (*crmmodels.Task, error) {
	created, err := s.taskService.InsertOne(ctx, task)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// InsertDeal chèn deal vào cuối stage đích (position = max + 1).
func (s *MongoEngineStore) InsertDeal(ctx context.Context, deal crmmodels.Deal) (*crmmodels.Deal, error) {
	created, err := s.dealService.CreateInStage(ctx, deal)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *MongoEngineStore) InsertNotification(ctx context.Context, notification crmmodels.Notification) (*crmmodels.Notification, error) {
	created, err := s.notificationService.InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *MongoEngineStore) InsertActivity(ctx context.Context, activity crmmodels.ActivityLog) error {
	_, err := s.activityLogService.InsertOne(ctx, activity)
	return err
}
