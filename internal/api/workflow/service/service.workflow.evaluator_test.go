// Package wfsvc - Test condition evaluator: từng operator, logic and/or,
// tra field lồng và ép kiểu số.
package wfsvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

func record() map[string]interface{} {
	return map[string]interface{}{
		"firstName": "Lan",
		"email":     "lan@example.com",
		"company":   "",
		"tagCount":  3,
		"city":      "Hà Nội",
		"customFields": map[string]interface{}{
			"budget_min": 5000,
			"plan":       "Pro",
		},
	}
}

func cond(field, operator string, value interface{}) wfmodels.Condition {
	return wfmodels.Condition{Field: field, Operator: operator, Value: value}
}

func TestEvaluateConditions_Operators(t *testing.T) {
	cases := []struct {
		name string
		cond wfmodels.Condition
		want bool
	}{
		{"equals khớp không phân biệt hoa thường", cond("firstName", "equals", "lan"), true},
		{"equals không khớp", cond("firstName", "equals", "Minh"), false},
		{"not_equals", cond("firstName", "not_equals", "Minh"), true},
		{"contains", cond("email", "contains", "@EXAMPLE"), true},
		{"not_contains", cond("email", "not_contains", "@gmail"), true},
		{"starts_with", cond("email", "starts_with", "LAN@"), true},
		{"ends_with", cond("email", "ends_with", ".com"), true},
		{"greater_than số", cond("tagCount", "greater_than", 2), true},
		{"greater_than sai", cond("tagCount", "greater_than", 3), false},
		{"less_than", cond("tagCount", "less_than", 10), true},
		{"greater_than vế không phải số cho false", cond("firstName", "greater_than", 1), false},
		{"is_empty trên chuỗi rỗng", cond("company", "is_empty", nil), true},
		{"is_empty trên field thiếu", cond("missing", "is_empty", nil), true},
		{"is_not_empty", cond("email", "is_not_empty", nil), true},
		{"in danh sách", cond("city", "in", []interface{}{"Đà Nẵng", "hà nội"}), true},
		{"in không khớp", cond("city", "in", []interface{}{"Huế"}), false},
		{"not_in", cond("city", "not_in", []interface{}{"Huế"}), true},
		{"operator lạ cho false", cond("firstName", "matches_regex", ".*"), false},
		{"field lồng customFields", cond("customFields.plan", "equals", "pro"), true},
		{"field lồng kiểu số", cond("customFields.budget_min", "greater_than", 1000), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateConditions("and", []wfmodels.Condition{tc.cond}, record())
			if got != tc.want {
				t.Errorf("điều kiện %s %s %v: muốn %v, nhận %v",
					tc.cond.Field, tc.cond.Operator, tc.cond.Value, tc.want, got)
			}
		})
	}
}

func TestEvaluateConditions_Logic(t *testing.T) {
	match := cond("firstName", "equals", "Lan")
	miss := cond("firstName", "equals", "Minh")

	if !EvaluateConditions("and", []wfmodels.Condition{match, match}, record()) {
		t.Error("and với cả hai điều kiện khớp phải true")
	}
	if EvaluateConditions("and", []wfmodels.Condition{match, miss}, record()) {
		t.Error("and với một điều kiện trượt phải false")
	}
	if !EvaluateConditions("or", []wfmodels.Condition{miss, match}, record()) {
		t.Error("or với một điều kiện khớp phải true")
	}
	if EvaluateConditions("or", []wfmodels.Condition{miss, miss}, record()) {
		t.Error("or với cả hai điều kiện trượt phải false")
	}
	// Logic rỗng mặc định là and
	if !EvaluateConditions("", []wfmodels.Condition{match}, record()) {
		t.Error("logic rỗng phải hành xử như and")
	}
	// Danh sách điều kiện rỗng là vacuously true
	if !EvaluateConditions("and", nil, record()) {
		t.Error("danh sách điều kiện rỗng phải true")
	}
}

func TestLookupField(t *testing.T) {
	r := record()
	if got := LookupField(r, "firstName"); got != "Lan" {
		t.Errorf("LookupField firstName: nhận %v", got)
	}
	if got := LookupField(r, "customFields.plan"); got != "Pro" {
		t.Errorf("LookupField customFields.plan: nhận %v", got)
	}
	if got := LookupField(r, "customFields.missing"); got != nil {
		t.Errorf("field lồng thiếu phải trả nil, nhận %v", got)
	}
	if got := LookupField(r, "missing.plan"); got != nil {
		t.Errorf("segment đầu thiếu phải trả nil, nhận %v", got)
	}
	if got := LookupField(nil, "firstName"); got != nil {
		t.Errorf("record nil phải trả nil, nhận %v", got)
	}
}

// Workflow đọc lại từ MongoDB decode giá trị mảng thành primitive.A,
// không phải []interface{}. Các operator danh sách phải hoạt động trên
// workflow đã qua vòng persist chứ không chỉ trên literal trong memory.
func TestEvaluateConditions_AfterBsonRoundTrip(t *testing.T) {
	workflow := wfmodels.Workflow{
		Name: "Chào khách Hà Nội",
		Trigger: wfmodels.Trigger{
			Type: wfmodels.TriggerContactCreated,
			Config: wfmodels.TriggerConfig{
				Conditions: []wfmodels.Condition{
					cond("city", "in", []interface{}{"Huế", "hà nội"}),
				},
			},
		},
	}

	raw, err := bson.Marshal(workflow)
	if err != nil {
		t.Fatalf("bson.Marshal trả về lỗi: %v", err)
	}
	var decoded wfmodels.Workflow
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal trả về lỗi: %v", err)
	}

	conditions := decoded.Trigger.Config.Conditions
	if len(conditions) != 1 {
		t.Fatalf("workflow decode phải giữ nguyên 1 condition, nhận %d", len(conditions))
	}
	if !EvaluateConditions("and", conditions, record()) {
		t.Errorf("in trên value decode từ bson (kiểu %T) phải true", conditions[0].Value)
	}

	notIn := []wfmodels.Condition{cond("city", "not_in", primitive.A{"Huế"})}
	if !EvaluateConditions("and", notIn, record()) {
		t.Error("not_in trên primitive.A không chứa giá trị phải true")
	}
	empty := []wfmodels.Condition{cond("tags", "is_empty", nil)}
	if !EvaluateConditions("and", empty, map[string]interface{}{"tags": primitive.A{}}) {
		t.Error("is_empty trên primitive.A rỗng phải true")
	}
	notEmpty := []wfmodels.Condition{cond("tags", "is_not_empty", nil)}
	if !EvaluateConditions("and", notEmpty, map[string]interface{}{"tags": primitive.A{"vip"}}) {
		t.Error("is_not_empty trên primitive.A có phần tử phải true")
	}
}

func TestEvaluateConditions_NumberFormatting(t *testing.T) {
	// equals so sánh dạng chuỗi: 5 và 5.0 phải được coi là bằng nhau
	r := map[string]interface{}{"score": 5.0}
	if !EvaluateConditions("and", []wfmodels.Condition{cond("score", "equals", 5)}, r) {
		t.Error("5.0 equals 5 phải true")
	}
}
