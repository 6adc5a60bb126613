// Package database - Index bổ sung cho workflow engine và CRM (compound phức tạp)
// không thể định nghĩa qua model tags.
package database

import (
	"context"
	"strings"

	"cornerstone_crm/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateWorkflowAdditionalIndexes tạo các index bổ sung cho workflow engine.
// Gọi sau CreateIndexes cho từng collection.
func CreateWorkflowAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// wf_enrollments: (status, nextStepAt): query chính của enrollment worker
	enrollments := db.Collection(global.MongoDB_ColNames.Enrollments)
	if _, err := enrollments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "nextStepAt", Value: 1},
		},
		Options: options.Index().SetName("wf_enrollment_due"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// wf_enrollments: (workflowId, contactId, status): duplicate enrollment check
	if _, err := enrollments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "workflowId", Value: 1},
			{Key: "contactId", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("wf_enrollment_wf_contact_status"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// wf_workflows: (ownerOrganizationId, status, trigger.type): trigger matching
	workflows := db.Collection(global.MongoDB_ColNames.Workflows)
	if _, err := workflows.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "trigger.type", Value: 1},
		},
		Options: options.Index().SetName("wf_workflow_org_status_trigger"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// crm_deals: (ownerOrganizationId, pipelineId, stageId, position): positioning trong stage
	deals := db.Collection(global.MongoDB_ColNames.Deals)
	if _, err := deals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "pipelineId", Value: 1},
			{Key: "stageId", Value: 1},
			{Key: "position", Value: 1},
		},
		Options: options.Index().SetName("crm_deal_org_pipeline_stage_position"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// crm_contacts: (ownerOrganizationId, tagIds) multikey: tag trigger matching
	contacts := db.Collection(global.MongoDB_ColNames.Contacts)
	if _, err := contacts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "tagIds", Value: 1},
		},
		Options: options.Index().SetName("crm_contact_org_tags"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// crm_tasks: (ownerOrganizationId, assignedTo, status): danh sách việc của user
	tasks := db.Collection(global.MongoDB_ColNames.Tasks)
	if _, err := tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "ownerOrganizationId", Value: 1},
			{Key: "assignedTo", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("crm_task_org_assignee_status").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
