package wfsvc

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

func TestExecuteStep_SplitTotality(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	step := &wfmodels.WorkflowStep{
		StepID: "chia",
		Type:   wfmodels.StepSplit,
		Split: &wfmodels.SplitStepConfig{
			SplitType: "percentage",
			Variants: []wfmodels.SplitVariant{
				{VariantID: "a", Percentage: 50},
				{VariantID: "b", Percentage: 30},
				{VariantID: "c", Percentage: 20},
			},
		},
	}

	valid := map[string]bool{"a": true, "b": true, "c": true}
	seen := map[string]int{}
	for i := 0; i < 200; i++ {
		result, err := engine.ExecuteStep(context.Background(), &wfmodels.Workflow{}, step, &crmmodels.Contact{})
		if err != nil {
			t.Fatalf("ExecuteStep split trả về lỗi: %v", err)
		}
		if !result.Success {
			t.Fatalf("split phải thành công, nhận error %q", result.Error)
		}
		if !valid[result.BranchTaken] {
			t.Fatalf("split chọn variant ngoài danh sách: %q", result.BranchTaken)
		}
		seen[result.BranchTaken]++
	}
	// Mỗi lần rút thăm đều phải rơi vào một variant được cấu hình
	total := seen["a"] + seen["b"] + seen["c"]
	if total != 200 {
		t.Errorf("tổng số lần chọn phải bằng số lần rút thăm, nhận %d", total)
	}
}

func TestExecuteStep_AddTagIdempotent(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	tagID := primitive.NewObjectID()
	contactID := store.addContact(&crmmodels.Contact{TagIDs: []primitive.ObjectID{tagID}})
	contact := store.contacts[contactID]

	step := &wfmodels.WorkflowStep{
		StepID: "gan",
		Type:   wfmodels.StepAddTag,
		Tag:    &wfmodels.TagStepConfig{TagIDs: []string{tagID.Hex()}},
	}

	result, err := engine.ExecuteStep(ctx, &wfmodels.Workflow{}, step, contact)
	if err != nil {
		t.Fatalf("ExecuteStep trả về lỗi: %v", err)
	}
	if !result.Success {
		t.Fatalf("gắn tag đã có phải là no-op thành công, nhận error %q", result.Error)
	}
	if len(store.contacts[contactID].TagIDs) != 1 {
		t.Errorf("tag đã có không được nhân đôi, nhận %d tag", len(store.contacts[contactID].TagIDs))
	}

	// Gỡ tag không có trên contact cũng là no-op thành công
	otherStep := &wfmodels.WorkflowStep{
		StepID: "go",
		Type:   wfmodels.StepRemoveTag,
		Tag:    &wfmodels.TagStepConfig{TagIDs: []string{primitive.NewObjectID().Hex()}},
	}
	result, err = engine.ExecuteStep(ctx, &wfmodels.Workflow{}, otherStep, contact)
	if err != nil {
		t.Fatalf("ExecuteStep trả về lỗi: %v", err)
	}
	if !result.Success {
		t.Errorf("gỡ tag vắng mặt phải là no-op thành công, nhận error %q", result.Error)
	}
	if len(store.contacts[contactID].TagIDs) != 1 {
		t.Errorf("gỡ tag vắng mặt không được đụng tag khác, nhận %d tag", len(store.contacts[contactID].TagIDs))
	}
}

func TestExecuteStep_UpdateFieldCustom(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	contactID := store.addContact(&crmmodels.Contact{})
	step := &wfmodels.WorkflowStep{
		StepID: "ghi",
		Type:   wfmodels.StepUpdateField,
		Field:  &wfmodels.FieldStepConfig{Field: "plan", Value: "Pro"},
	}

	result, err := engine.ExecuteStep(context.Background(), &wfmodels.Workflow{}, step, store.contacts[contactID])
	if err != nil {
		t.Fatalf("ExecuteStep trả về lỗi: %v", err)
	}
	if !result.Success {
		t.Fatalf("update_field phải thành công, nhận error %q", result.Error)
	}
	if store.contacts[contactID].CustomFields["plan"] != "Pro" {
		t.Error("giá trị phải được ghi vào customFields")
	}
}

func TestExecuteStep_CreateDealWithActivity(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	orgID := primitive.NewObjectID()
	creatorID := primitive.NewObjectID()
	workflow := &wfmodels.Workflow{
		Name:                "Deal flow",
		CreatedBy:           creatorID,
		OwnerOrganizationID: orgID,
	}
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Lan"})

	step := &wfmodels.WorkflowStep{
		StepID: "tao_deal",
		Type:   wfmodels.StepCreateDeal,
		Deal: &wfmodels.DealStepConfig{
			PipelineID: primitive.NewObjectID().Hex(),
			StageID:    "lead",
			Title:      "Deal cho {{first_name}}",
			Value:      1500,
		},
	}

	result, err := engine.ExecuteStep(context.Background(), workflow, step, store.contacts[contactID])
	if err != nil {
		t.Fatalf("ExecuteStep trả về lỗi: %v", err)
	}
	if !result.Success {
		t.Fatalf("create_deal phải thành công, nhận error %q", result.Error)
	}
	if len(store.deals) != 1 {
		t.Fatalf("phải có đúng 1 deal được tạo, nhận %d", len(store.deals))
	}
	deal := store.deals[0]
	if deal.ContactID != contactID || deal.OwnerOrganizationID != orgID {
		t.Error("deal phải gắn đúng contact và organization")
	}
	if deal.AssignedTo != creatorID {
		t.Error("không cấu hình assignee thì deal phải về người tạo workflow")
	}
	if len(store.activities) != 1 {
		t.Fatalf("create_deal phải ghi 1 activity log, nhận %d", len(store.activities))
	}
	if store.activities[0].ActivityType != crmmodels.ActivityTypeWorkflowAction {
		t.Errorf("activity log phải có type workflow_action, nhận %q", store.activities[0].ActivityType)
	}
}

func TestExecuteStep_CreateDealPositionIncreasing(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	ctx := context.Background()

	workflow := &wfmodels.Workflow{
		CreatedBy:           primitive.NewObjectID(),
		OwnerOrganizationID: primitive.NewObjectID(),
	}
	contactID := store.addContact(&crmmodels.Contact{FirstName: "Minh"})
	contact := store.contacts[contactID]

	step := &wfmodels.WorkflowStep{
		StepID: "tao_deal",
		Type:   wfmodels.StepCreateDeal,
		Deal: &wfmodels.DealStepConfig{
			PipelineID: primitive.NewObjectID().Hex(),
			StageID:    "lead",
			Title:      "Deal lặp",
			Value:      500,
		},
	}

	for i := 0; i < 2; i++ {
		result, err := engine.ExecuteStep(ctx, workflow, step, contact)
		if err != nil {
			t.Fatalf("ExecuteStep lần %d trả về lỗi: %v", i+1, err)
		}
		if !result.Success {
			t.Fatalf("create_deal lần %d phải thành công, nhận error %q", i+1, result.Error)
		}
	}

	if len(store.deals) != 2 {
		t.Fatalf("phải có 2 deal trong stage, nhận %d", len(store.deals))
	}
	// Deal mới luôn được nối vào cuối stage, position tăng dần
	if store.deals[0].Position != 1 || store.deals[1].Position != 2 {
		t.Errorf("position phải tăng dần 1, 2; nhận %d, %d",
			store.deals[0].Position, store.deals[1].Position)
	}
}
