package wfsvc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/delivery/channels"
)

// fakeEngineStore là EngineStore in-memory cho test lifecycle của engine.
// AdvanceEnrollment mô phỏng đúng guard semantics của MongoEngineStore:
// chỉ ghi khi enrollment còn active và đứng đúng step guard.
type fakeEngineStore struct {
	workflows     map[primitive.ObjectID]*wfmodels.Workflow
	enrollments   map[primitive.ObjectID]*wfmodels.WorkflowEnrollment
	contacts      map[primitive.ObjectID]*crmmodels.Contact
	tasks         []crmmodels.Task
	deals         []crmmodels.Deal
	notifications []crmmodels.Notification
	activities    []crmmodels.ActivityLog
}

func newFakeStore() *fakeEngineStore {
	return &fakeEngineStore{
		workflows:   map[primitive.ObjectID]*wfmodels.Workflow{},
		enrollments: map[primitive.ObjectID]*wfmodels.WorkflowEnrollment{},
		contacts:    map[primitive.ObjectID]*crmmodels.Contact{},
	}
}

func (s *fakeEngineStore) addWorkflow(wf *wfmodels.Workflow) primitive.ObjectID {
	if wf.ID.IsZero() {
		wf.ID = primitive.NewObjectID()
	}
	s.workflows[wf.ID] = wf
	return wf.ID
}

func (s *fakeEngineStore) addContact(c *crmmodels.Contact) primitive.ObjectID {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.contacts[c.ID] = c
	return c.ID
}

func (s *fakeEngineStore) GetWorkflow(ctx context.Context, id primitive.ObjectID) (*wfmodels.Workflow, error) {
	wf, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %s không tồn tại", id.Hex())
	}
	return wf, nil
}

func (s *fakeEngineStore) ListActiveWorkflowsByTrigger(ctx context.Context, orgID primitive.ObjectID, triggerType string) ([]wfmodels.Workflow, error) {
	var out []wfmodels.Workflow
	for _, wf := range s.workflows {
		if wf.OwnerOrganizationID == orgID &&
			wf.Status == wfmodels.WorkflowStatusActive &&
			wf.Trigger.Type == triggerType {
			out = append(out, *wf)
		}
	}
	return out, nil
}

func (s *fakeEngineStore) IncWorkflowCounter(ctx context.Context, workflowID primitive.ObjectID, field string, delta int64) error {
	wf, ok := s.workflows[workflowID]
	if !ok {
		return fmt.Errorf("workflow %s không tồn tại", workflowID.Hex())
	}
	switch field {
	case "enrolledCount":
		wf.EnrolledCount += delta
	case "completedCount":
		wf.CompletedCount += delta
	}
	return nil
}

func (s *fakeEngineStore) GetEnrollment(ctx context.Context, id primitive.ObjectID) (*wfmodels.WorkflowEnrollment, error) {
	en, ok := s.enrollments[id]
	if !ok {
		return nil, fmt.Errorf("enrollment %s không tồn tại", id.Hex())
	}
	copied := *en
	return &copied, nil
}

func (s *fakeEngineStore) InsertEnrollment(ctx context.Context, enrollment wfmodels.WorkflowEnrollment) (*wfmodels.WorkflowEnrollment, error) {
	enrollment.ID = primitive.NewObjectID()
	s.enrollments[enrollment.ID] = &enrollment
	return &enrollment, nil
}

func (s *fakeEngineStore) HasOpenEnrollment(ctx context.Context, workflowID, contactID primitive.ObjectID) (bool, error) {
	for _, en := range s.enrollments {
		if en.WorkflowID == workflowID && en.ContactID == contactID &&
			(en.Status == wfmodels.EnrollmentStatusActive || en.Status == wfmodels.EnrollmentStatusPaused) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeEngineStore) AdvanceEnrollment(ctx context.Context, id primitive.ObjectID, guardStepID string, exec *wfmodels.StepExecution, set map[string]interface{}, unset []string) (bool, error) {
	en, ok := s.enrollments[id]
	if !ok || en.Status != wfmodels.EnrollmentStatusActive {
		return false, nil
	}
	if guardStepID != "" && en.CurrentStepID != guardStepID {
		return false, nil
	}

	for key, value := range set {
		switch key {
		case "status":
			en.Status = value.(string)
		case "currentStepId":
			en.CurrentStepID = value.(string)
		case "currentStepIndex":
			en.CurrentStepIndex = value.(int)
		case "nextStepAt":
			en.NextStepAt = value.(int64)
		case "completedAt":
			en.CompletedAt = value.(int64)
		case "exitedAt":
			en.ExitedAt = value.(int64)
		case "exitReason":
			en.ExitReason = value.(string)
		case "failureReason":
			en.FailureReason = value.(string)
		}
	}
	if exec != nil {
		en.StepHistory = append(en.StepHistory, *exec)
	}
	for _, field := range unset {
		if field == "nextStepAt" {
			en.NextStepAt = 0
		}
	}
	return true, nil
}

func (s *fakeEngineStore) ExitEnrollmentIfActive(ctx context.Context, id primitive.ObjectID, reason string, at int64) (bool, error) {
	return s.AdvanceEnrollment(ctx, id, "", nil, map[string]interface{}{
		"status":     wfmodels.EnrollmentStatusExited,
		"exitReason": reason,
		"exitedAt":   at,
	}, []string{"nextStepAt"})
}

func (s *fakeEngineStore) ListDueEnrollments(ctx context.Context, now int64, limit int64) ([]wfmodels.WorkflowEnrollment, error) {
	var out []wfmodels.WorkflowEnrollment
	for _, en := range s.enrollments {
		if en.Status == wfmodels.EnrollmentStatusActive && en.NextStepAt > 0 && en.NextStepAt <= now {
			out = append(out, *en)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (s *fakeEngineStore) GetContact(ctx context.Context, id primitive.ObjectID) (*crmmodels.Contact, error) {
	c, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s không tồn tại", id.Hex())
	}
	copied := *c
	return &copied, nil
}

func (s *fakeEngineStore) AddContactTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error) {
	c, ok := s.contacts[contactID]
	if !ok {
		return nil, nil, fmt.Errorf("contact %s không tồn tại", contactID.Hex())
	}
	existing := map[primitive.ObjectID]bool{}
	for _, id := range c.TagIDs {
		existing[id] = true
	}
	var added []primitive.ObjectID
	for _, id := range tagIDs {
		if !existing[id] {
			c.TagIDs = append(c.TagIDs, id)
			added = append(added, id)
		}
	}
	return c, added, nil
}

func (s *fakeEngineStore) RemoveContactTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error) {
	c, ok := s.contacts[contactID]
	if !ok {
		return nil, nil, fmt.Errorf("contact %s không tồn tại", contactID.Hex())
	}
	toRemove := map[primitive.ObjectID]bool{}
	for _, id := range tagIDs {
		toRemove[id] = true
	}
	var kept []primitive.ObjectID
	var removed []primitive.ObjectID
	for _, id := range c.TagIDs {
		if toRemove[id] {
			removed = append(removed, id)
		} else {
			kept = append(kept, id)
		}
	}
	c.TagIDs = kept
	return c, removed, nil
}

func (s *fakeEngineStore) SetContactField(ctx context.Context, contactID primitive.ObjectID, field string, value interface{}) (interface{}, bool, error) {
	c, ok := s.contacts[contactID]
	if !ok {
		return nil, false, fmt.Errorf("contact %s không tồn tại", contactID.Hex())
	}
	if c.CustomFields == nil {
		c.CustomFields = map[string]interface{}{}
	}
	old := c.CustomFields[field]
	c.CustomFields[field] = value
	return old, true, nil
}

func (s *fakeEngineStore) InsertTask(ctx context.Context, task crmmodels.Task) (*crmmodels.Task, error) {
	task.ID = primitive.NewObjectID()
	s.tasks = append(s.tasks, task)
	return &task, nil
}

func (s *fakeEngineStore) InsertDeal(ctx context.Context, deal crmmodels.Deal) (*crmmodels.Deal, error) {
	deal.ID = primitive.NewObjectID()
	// Chèn vào cuối stage đích (position = max hiện tại + 1), như store thật
	deal.Position = 1
	for _, existing := range s.deals {
		if existing.PipelineID == deal.PipelineID && existing.StageID == deal.StageID && existing.Position >= deal.Position {
			deal.Position = existing.Position + 1
		}
	}
	s.deals = append(s.deals, deal)
	return &deal, nil
}

func (s *fakeEngineStore) InsertNotification(ctx context.Context, notification crmmodels.Notification) (*crmmodels.Notification, error) {
	notification.ID = primitive.NewObjectID()
	s.notifications = append(s.notifications, notification)
	return &notification, nil
}

func (s *fakeEngineStore) InsertActivity(ctx context.Context, activity crmmodels.ActivityLog) error {
	s.activities = append(s.activities, activity)
	return nil
}

func newTestEngine(store *fakeEngineStore) *Engine {
	return NewEngine(store, &channels.LogOnlyMailer{}, &channels.LogOnlySmsSender{})
}

func activeWorkflow(steps ...wfmodels.WorkflowStep) *wfmodels.Workflow {
	return &wfmodels.Workflow{
		Name:                "Test workflow",
		Status:              wfmodels.WorkflowStatusActive,
		Trigger:             wfmodels.Trigger{Type: wfmodels.TriggerContactCreated},
		Steps:               steps,
		OwnerOrganizationID: primitive.NewObjectID(),
	}
}

func tagStep(stepID string, tagHex string) wfmodels.WorkflowStep {
	return wfmodels.WorkflowStep{
		StepID: stepID,
		Type:   wfmodels.StepAddTag,
		Tag:    &wfmodels.TagStepConfig{TagIDs: []string{tagHex}},
	}
}

func TestEnroll_HappyPath(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex())))
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Lan"})

	en, err := engine.Enroll(ctx, wfID, contactID, map[string]interface{}{"trigger": "manual"})
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	if en.Status != wfmodels.EnrollmentStatusActive {
		t.Errorf("enrollment mới phải active, nhận %q", en.Status)
	}
	if en.CurrentStepID != "s1" || en.CurrentStepIndex != 0 {
		t.Errorf("enrollment phải đứng ở step đầu, nhận %q idx=%d", en.CurrentStepID, en.CurrentStepIndex)
	}
	if en.NextStepAt == 0 {
		t.Error("nextStepAt phải được đặt khi enroll")
	}
	if len(en.StepHistory) != 0 {
		t.Errorf("stepHistory lúc enroll phải rỗng, nhận %d phần tử", len(en.StepHistory))
	}
	if store.workflows[wfID].EnrolledCount != 1 {
		t.Errorf("enrolledCount phải tăng lên 1, nhận %d", store.workflows[wfID].EnrolledCount)
	}
}

func TestEnroll_InactiveWorkflowRejected(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	wf := activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex()))
	wf.Status = wfmodels.WorkflowStatusDraft
	wfID := store.addWorkflow(wf)
	contactID := store.addContact(&crmmodels.Contact{})

	if _, err := engine.Enroll(context.Background(), wfID, contactID, nil); err == nil {
		t.Fatal("Enroll vào workflow draft phải bị từ chối")
	}
	if store.workflows[wfID].EnrolledCount != 0 {
		t.Error("enroll bị từ chối không được tăng enrolledCount")
	}
}

func TestEnroll_DuplicateOpenEnrollmentRejected(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex())))
	contactID := store.addContact(&crmmodels.Contact{})

	if _, err := engine.Enroll(ctx, wfID, contactID, nil); err != nil {
		t.Fatalf("lần enroll đầu phải thành công: %v", err)
	}
	if _, err := engine.Enroll(ctx, wfID, contactID, nil); err == nil {
		t.Fatal("enroll trùng khi còn enrollment active phải bị từ chối")
	}
	if store.workflows[wfID].EnrolledCount != 1 {
		t.Errorf("enrolledCount phải giữ nguyên 1, nhận %d", store.workflows[wfID].EnrolledCount)
	}
}

func TestEnroll_AllowReEnrollmentPermitsDuplicate(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wf := activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex()))
	wf.Settings.AllowReEnrollment = true
	wfID := store.addWorkflow(wf)
	contactID := store.addContact(&crmmodels.Contact{})

	if _, err := engine.Enroll(ctx, wfID, contactID, nil); err != nil {
		t.Fatalf("lần enroll đầu phải thành công: %v", err)
	}
	if _, err := engine.Enroll(ctx, wfID, contactID, nil); err != nil {
		t.Fatalf("allowReEnrollment phải cho enroll lại: %v", err)
	}
	if store.workflows[wfID].EnrolledCount != 2 {
		t.Errorf("enrolledCount phải là 2, nhận %d", store.workflows[wfID].EnrolledCount)
	}
}

func TestEnroll_EnrollmentLimitRejected(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	wf := activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex()))
	wf.Settings.EnrollmentLimit = 1
	wf.EnrolledCount = 1
	wfID := store.addWorkflow(wf)
	contactID := store.addContact(&crmmodels.Contact{})

	if _, err := engine.Enroll(context.Background(), wfID, contactID, nil); err == nil {
		t.Fatal("workflow đã chạm enrollment limit phải từ chối enroll mới")
	}
}

func TestProcessStep_AddTagAdvances(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	tagID := primitive.NewObjectID()
	wfID := store.addWorkflow(activeWorkflow(
		tagStep("s1", tagID.Hex()),
		wfmodels.WorkflowStep{StepID: "s2", Type: wfmodels.StepEnd},
	))
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Lan"})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}

	advanced, err := engine.ProcessStep(ctx, en.ID)
	if err != nil {
		t.Fatalf("ProcessStep trả về lỗi: %v", err)
	}
	if !advanced {
		t.Fatal("ProcessStep phải advance enrollment")
	}

	got := store.enrollments[en.ID]
	if got.CurrentStepID != "s2" {
		t.Errorf("enrollment phải chuyển tới s2, nhận %q", got.CurrentStepID)
	}
	if len(got.StepHistory) != 1 {
		t.Fatalf("stepHistory phải có 1 bản ghi, nhận %d", len(got.StepHistory))
	}
	if got.StepHistory[0].Status != wfmodels.StepExecStatusCompleted {
		t.Errorf("bản ghi thực thi phải completed, nhận %q", got.StepHistory[0].Status)
	}
	if len(store.contacts[contactID].TagIDs) != 1 || store.contacts[contactID].TagIDs[0] != tagID {
		t.Error("tag phải được gắn vào contact")
	}
}

func TestProcessStep_ConditionBranchRouting(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(
		wfmodels.WorkflowStep{
			StepID: "check",
			Type:   wfmodels.StepCondition,
			Condition: &wfmodels.ConditionStepConfig{
				Conditions: []wfmodels.Condition{
					{Field: "email", Operator: wfmodels.OperatorIsNotEmpty},
				},
			},
			Branches: map[string]string{"yes": "has_email", "no": "no_email"},
		},
		wfmodels.WorkflowStep{StepID: "has_email", Type: wfmodels.StepEnd},
		wfmodels.WorkflowStep{StepID: "no_email", Type: wfmodels.StepEnd},
	))
	// Contact không có email: phải đi nhánh "no"
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Lan"})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	if _, err := engine.ProcessStep(ctx, en.ID); err != nil {
		t.Fatalf("ProcessStep trả về lỗi: %v", err)
	}

	got := store.enrollments[en.ID]
	if got.CurrentStepID != "no_email" {
		t.Errorf("condition trượt phải đi nhánh no, nhận %q", got.CurrentStepID)
	}
	if got.StepHistory[0].BranchTaken != "no" {
		t.Errorf("branchTaken phải là no, nhận %q", got.StepHistory[0].BranchTaken)
	}
}

func TestProcessStep_EmailFailureStillAdvances(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(
		wfmodels.WorkflowStep{
			StepID: "mail",
			Type:   wfmodels.StepSendEmail,
			Email:  &wfmodels.EmailStepConfig{Subject: "Hi", Body: "Chào {{first_name}}"},
		},
		wfmodels.WorkflowStep{StepID: "done", Type: wfmodels.StepEnd},
	))
	// Contact không có email: action fail nhưng enrollment vẫn đi tiếp
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Lan"})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	advanced, err := engine.ProcessStep(ctx, en.ID)
	if err != nil {
		t.Fatalf("ProcessStep trả về lỗi: %v", err)
	}
	if !advanced {
		t.Fatal("action thất bại vẫn phải advance enrollment")
	}

	got := store.enrollments[en.ID]
	if got.Status != wfmodels.EnrollmentStatusActive {
		t.Errorf("enrollment phải vẫn active, nhận %q", got.Status)
	}
	if got.CurrentStepID != "done" {
		t.Errorf("enrollment phải chuyển tới done, nhận %q", got.CurrentStepID)
	}
	if got.StepHistory[0].Status != wfmodels.StepExecStatusFailed {
		t.Errorf("bản ghi thực thi phải failed, nhận %q", got.StepHistory[0].Status)
	}
	if got.StepHistory[0].Error == "" {
		t.Error("bản ghi failed phải kèm thông điệp lỗi")
	}
}

func TestProcessStep_UnknownStepTypeFailsEnrollment(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(
		wfmodels.WorkflowStep{StepID: "s1", Type: "teleport"},
	))
	contactID := store.addContact(&crmmodels.Contact{})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	advanced, err := engine.ProcessStep(ctx, en.ID)
	if err != nil {
		t.Fatalf("ProcessStep trả về lỗi: %v", err)
	}
	if advanced {
		t.Error("step type lạ không được tính là advance")
	}

	got := store.enrollments[en.ID]
	if got.Status != wfmodels.EnrollmentStatusFailed {
		t.Errorf("step type lạ phải chuyển enrollment sang failed, nhận %q", got.Status)
	}
	if got.NextStepAt != 0 {
		t.Error("enrollment failed phải bị xóa nextStepAt")
	}
	if len(got.StepHistory) != 1 || got.StepHistory[0].Status != wfmodels.StepExecStatusFailed {
		t.Error("stepHistory phải ghi nhận lượt thực thi failed")
	}
}

func TestProcessStep_MissingCurrentStepFailsEnrollment(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex())))
	contactID := store.addContact(&crmmodels.Contact{})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	// Step hiện tại bị xóa khỏi definition sau khi enroll
	store.workflows[wfID].Steps = []wfmodels.WorkflowStep{
		{StepID: "khac", Type: wfmodels.StepEnd},
	}

	if _, err := engine.ProcessStep(ctx, en.ID); err != nil {
		t.Fatalf("ProcessStep trả về lỗi: %v", err)
	}
	got := store.enrollments[en.ID]
	if got.Status != wfmodels.EnrollmentStatusFailed {
		t.Errorf("step hiện tại biến mất phải fail enrollment, nhận %q", got.Status)
	}
	if got.FailureReason == "" {
		t.Error("failureReason phải được ghi lại")
	}
}

func TestProcessStep_WaitServedInSameTick(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	tagID := primitive.NewObjectID()
	wfID := store.addWorkflow(activeWorkflow(
		wfmodels.WorkflowStep{
			StepID: "cho",
			Type:   wfmodels.StepWait,
			Wait:   &wfmodels.WaitStepConfig{Duration: 1, Unit: "hours"},
		},
		tagStep("gan_tag", tagID.Hex()),
		wfmodels.WorkflowStep{StepID: "het", Type: wfmodels.StepEnd},
	))
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Lan"})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	if en.NextStepAt <= time.Now().UnixMilli() {
		t.Error("wait đầu tiên phải được lên lịch trong tương lai")
	}

	// Tick 1: wait đã hết hạn, bước kế (add_tag) được thực thi trong cùng tick
	advanced, err := engine.ProcessStep(ctx, en.ID)
	if err != nil {
		t.Fatalf("ProcessStep lần 1 trả về lỗi: %v", err)
	}
	if !advanced {
		t.Fatal("tick 1 phải advance enrollment")
	}
	got := store.enrollments[en.ID]
	if got.CurrentStepID != "het" {
		t.Fatalf("sau tick 1 enrollment phải đứng ở het, nhận %q", got.CurrentStepID)
	}
	if len(got.StepHistory) != 2 {
		t.Fatalf("sau tick 1 stepHistory phải có 2 bản ghi, nhận %d", len(got.StepHistory))
	}
	if got.StepHistory[0].Status != wfmodels.StepExecStatusSkipped || got.StepHistory[0].StepType != wfmodels.StepWait {
		t.Error("bản ghi đầu phải là wait skipped")
	}
	if got.StepHistory[1].Status != wfmodels.StepExecStatusCompleted || got.StepHistory[1].StepType != wfmodels.StepAddTag {
		t.Error("bản ghi thứ hai phải là add_tag completed")
	}
	if len(store.contacts[contactID].TagIDs) != 1 {
		t.Error("tag phải được gắn ngay trong tick 1")
	}

	// Tick 2: step end kết thúc enrollment
	if _, err := engine.ProcessStep(ctx, en.ID); err != nil {
		t.Fatalf("ProcessStep lần 2 trả về lỗi: %v", err)
	}
	got = store.enrollments[en.ID]
	if got.Status != wfmodels.EnrollmentStatusCompleted {
		t.Fatalf("sau tick 2 enrollment phải completed, nhận %q", got.Status)
	}
	if got.NextStepAt != 0 {
		t.Error("enrollment completed phải bị xóa nextStepAt")
	}
	if len(got.StepHistory) != 3 {
		t.Errorf("stepHistory cuối phải có 3 bản ghi, nhận %d", len(got.StepHistory))
	}
	if store.workflows[wfID].CompletedCount != 1 {
		t.Errorf("completedCount phải tăng lên 1, nhận %d", store.workflows[wfID].CompletedCount)
	}
}

func TestProcessStep_PausedWorkflowFreezesEnrollment(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex())))
	contactID := store.addContact(&crmmodels.Contact{})

	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}
	store.workflows[wfID].Status = wfmodels.WorkflowStatusPaused

	advanced, err := engine.ProcessStep(ctx, en.ID)
	if err != nil {
		t.Fatalf("ProcessStep trả về lỗi: %v", err)
	}
	if advanced {
		t.Error("workflow paused thì enrollment không được advance")
	}
	got := store.enrollments[en.ID]
	if got.CurrentStepID != "s1" || len(got.StepHistory) != 0 {
		t.Error("enrollment phải đứng yên khi workflow paused")
	}
}

func TestAdvanceEnrollment_GuardMiss(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	en, _ := store.InsertEnrollment(ctx, wfmodels.WorkflowEnrollment{
		Status:        wfmodels.EnrollmentStatusActive,
		CurrentStepID: "s2",
	})

	// Guard s1 không khớp với step hiện tại s2: write phải là no-op
	ok, err := store.AdvanceEnrollment(ctx, en.ID, "s1", nil, map[string]interface{}{
		"currentStepId": "s3",
	}, nil)
	if err != nil {
		t.Fatalf("AdvanceEnrollment trả về lỗi: %v", err)
	}
	if ok {
		t.Error("guard không khớp phải trả về false")
	}
	if store.enrollments[en.ID].CurrentStepID != "s2" {
		t.Error("guard không khớp thì không được ghi gì")
	}
}

func TestExit_OnlyActiveEnrollment(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(tagStep("s1", primitive.NewObjectID().Hex())))
	contactID := store.addContact(&crmmodels.Contact{})
	en, err := engine.Enroll(ctx, wfID, contactID, nil)
	if err != nil {
		t.Fatalf("Enroll trả về lỗi: %v", err)
	}

	ok, err := engine.Exit(ctx, en.ID, "manual")
	if err != nil || !ok {
		t.Fatalf("Exit enrollment active phải thành công, ok=%v err=%v", ok, err)
	}
	got := store.enrollments[en.ID]
	if got.Status != wfmodels.EnrollmentStatusExited || got.ExitReason != "manual" {
		t.Errorf("enrollment phải exited với reason manual, nhận %q/%q", got.Status, got.ExitReason)
	}
	if got.NextStepAt != 0 {
		t.Error("enrollment exited phải bị xóa nextStepAt")
	}

	// Exit lần hai là no-op
	ok, err = engine.Exit(ctx, en.ID, "manual")
	if err != nil {
		t.Fatalf("Exit lần hai trả về lỗi: %v", err)
	}
	if ok {
		t.Error("Exit enrollment đã terminal phải trả về false")
	}
}

func TestProcessDue_Batch(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	wfID := store.addWorkflow(activeWorkflow(
		tagStep("s1", primitive.NewObjectID().Hex()),
		wfmodels.WorkflowStep{StepID: "s2", Type: wfmodels.StepEnd},
	))

	for i := 0; i < 3; i++ {
		contactID := store.addContact(&crmmodels.Contact{})
		en, err := engine.Enroll(ctx, wfID, contactID, nil)
		if err != nil {
			t.Fatalf("Enroll trả về lỗi: %v", err)
		}
		// Ép đến hạn ngay để không phải chờ 1 giây
		store.enrollments[en.ID].NextStepAt = time.Now().UnixMilli() - 1
	}

	processed, err := engine.ProcessDue(ctx, 100)
	if err != nil {
		t.Fatalf("ProcessDue trả về lỗi: %v", err)
	}
	if processed != 3 {
		t.Errorf("ProcessDue phải advance cả 3 enrollment, nhận %d", processed)
	}
}
