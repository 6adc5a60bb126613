package wfsvc

import (
	"testing"
	"time"

	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

func linearWorkflow() *wfmodels.Workflow {
	return &wfmodels.Workflow{
		Steps: []wfmodels.WorkflowStep{
			{StepID: "s1", Type: wfmodels.StepAddTag},
			{StepID: "s2", Type: wfmodels.StepWait},
			{StepID: "s3", Type: wfmodels.StepEnd},
		},
	}
}

func TestResolveNextStep_Positional(t *testing.T) {
	wf := linearWorkflow()
	next, idx := ResolveNextStep(wf, &wf.Steps[0], 0, "")
	if next == nil || next.StepID != "s2" || idx != 1 {
		t.Fatalf("step không có next_step_id phải rơi xuống step kế tiếp theo vị trí, nhận %v idx=%d", next, idx)
	}
}

func TestResolveNextStep_ExplicitNextStepID(t *testing.T) {
	wf := linearWorkflow()
	wf.Steps[0].NextStepID = "s3"
	next, idx := ResolveNextStep(wf, &wf.Steps[0], 0, "")
	if next == nil || next.StepID != "s3" || idx != 2 {
		t.Fatalf("next_step_id tường minh phải thắng vị trí, nhận %v idx=%d", next, idx)
	}
}

func TestResolveNextStep_BranchBeatsNextStepID(t *testing.T) {
	wf := linearWorkflow()
	wf.Steps[0].NextStepID = "s2"
	wf.Steps[0].Branches = map[string]string{"yes": "s3"}

	next, _ := ResolveNextStep(wf, &wf.Steps[0], 0, "yes")
	if next == nil || next.StepID != "s3" {
		t.Fatalf("branch khớp phải thắng next_step_id, nhận %v", next)
	}

	// Branch không khớp thì rơi về next_step_id
	next, _ = ResolveNextStep(wf, &wf.Steps[0], 0, "no")
	if next == nil || next.StepID != "s2" {
		t.Fatalf("branch trượt phải rơi về next_step_id, nhận %v", next)
	}
}

func TestResolveNextStep_GoToOverridesAll(t *testing.T) {
	wf := linearWorkflow()
	wf.Steps[1] = wfmodels.WorkflowStep{
		StepID:     "s2",
		Type:       wfmodels.StepGoTo,
		GoTo:       &wfmodels.GoToStepConfig{TargetStepID: "s1"},
		NextStepID: "s3",
		Branches:   map[string]string{"yes": "s3"},
	}
	next, idx := ResolveNextStep(wf, &wf.Steps[1], 1, "yes")
	if next == nil || next.StepID != "s1" || idx != 0 {
		t.Fatalf("go_to phải nhảy vô điều kiện tới target, nhận %v idx=%d", next, idx)
	}
}

func TestResolveNextStep_EndAndExhausted(t *testing.T) {
	wf := linearWorkflow()
	if next, idx := ResolveNextStep(wf, &wf.Steps[2], 2, ""); next != nil || idx != -1 {
		t.Errorf("step end phải kết thúc workflow, nhận %v idx=%d", next, idx)
	}

	// Step cuối không phải end, không có next: cũng kết thúc
	wf.Steps[2].Type = wfmodels.StepAddTag
	if next, idx := ResolveNextStep(wf, &wf.Steps[2], 2, ""); next != nil || idx != -1 {
		t.Errorf("hết mảng steps phải trả (nil, -1), nhận %v idx=%d", next, idx)
	}
}

func TestComputeDueTime_NonWaitStep(t *testing.T) {
	now := time.Now()
	step := &wfmodels.WorkflowStep{StepID: "s1", Type: wfmodels.StepAddTag}
	due := ComputeDueTime(step, now)
	if due != now.Add(time.Second).UnixMilli() {
		t.Errorf("step không phải wait phải due sau 1 giây, nhận %d", due)
	}
}

func TestComputeDueTime_WaitDefaults(t *testing.T) {
	now := time.Now()
	step := &wfmodels.WorkflowStep{StepID: "s1", Type: wfmodels.StepWait}
	due := ComputeDueTime(step, now)
	if due != now.Add(24*time.Hour).UnixMilli() {
		t.Errorf("wait không có config phải mặc định 1 ngày, nhận %d", due)
	}
}

func TestComputeDueTime_WaitUnits(t *testing.T) {
	now := time.Now()
	cases := []struct {
		unit     string
		duration int
		want     int64
	}{
		{"minutes", 30, now.Add(30 * time.Minute).UnixMilli()},
		{"hours", 2, now.Add(2 * time.Hour).UnixMilli()},
		{"days", 3, now.Add(3 * 24 * time.Hour).UnixMilli()},
		{"weeks", 1, now.Add(7 * 24 * time.Hour).UnixMilli()},
	}
	for _, tc := range cases {
		step := &wfmodels.WorkflowStep{
			StepID: "s1",
			Type:   wfmodels.StepWait,
			Wait:   &wfmodels.WaitStepConfig{Duration: tc.duration, Unit: tc.unit},
		}
		if due := ComputeDueTime(step, now); due != tc.want {
			t.Errorf("wait %d %s: muốn %d, nhận %d", tc.duration, tc.unit, tc.want, due)
		}
	}
}
