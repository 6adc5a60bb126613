package wfsvc

import (
	"testing"

	crmmodels "cornerstone_crm/internal/api/crm/models"
)

func sampleContact() *crmmodels.Contact {
	return &crmmodels.Contact{
		FirstName: "Lan",
		LastName:  "Nguyễn",
		Email:     "lan@example.com",
		Phone:     "0901234567",
		Company:   "Cornerstone",
		CustomFields: map[string]interface{}{
			"plan":       "Pro",
			"budget_min": 5000,
			// custom field trùng tên không được đè lên field chuẩn
			"email": "khac@example.com",
		},
	}
}

func TestPersonalize_ReplaceTokens(t *testing.T) {
	data := PersonalizationData(sampleContact())

	got := Personalize("Chào {{first_name}} từ {{company}}!", data)
	want := "Chào Lan từ Cornerstone!"
	if got != want {
		t.Errorf("Personalize: muốn %q, nhận %q", want, got)
	}
}

func TestPersonalize_SpacedTokens(t *testing.T) {
	data := PersonalizationData(sampleContact())

	got := Personalize("Xin chào {{ full_name }}", data)
	if got != "Xin chào Lan Nguyễn" {
		t.Errorf("token có khoảng trắng phải được thay, nhận %q", got)
	}
}

func TestPersonalize_UnresolvedTokenKeptVerbatim(t *testing.T) {
	data := PersonalizationData(sampleContact())

	got := Personalize("Mã của bạn: {{coupon_code}}", data)
	if got != "Mã của bạn: {{coupon_code}}" {
		t.Errorf("token không có trong data phải giữ nguyên văn, nhận %q", got)
	}

	// Giá trị nil cũng giữ nguyên văn, không thay bằng chuỗi rỗng
	data["coupon_code"] = nil
	got = Personalize("Mã: {{coupon_code}}", data)
	if got != "Mã: {{coupon_code}}" {
		t.Errorf("token giá trị nil phải giữ nguyên văn, nhận %q", got)
	}
}

func TestPersonalizationData_StandardAndCustomFields(t *testing.T) {
	data := PersonalizationData(sampleContact())

	wantKeys := []string{"first_name", "last_name", "full_name", "email", "phone", "company"}
	for _, key := range wantKeys {
		if _, ok := data[key]; !ok {
			t.Errorf("PersonalizationData thiếu key chuẩn %q", key)
		}
	}

	if data["plan"] != "Pro" {
		t.Errorf("custom field plan phải có trong data, nhận %v", data["plan"])
	}
	// Field chuẩn thắng custom field trùng tên
	if data["email"] != "lan@example.com" {
		t.Errorf("custom field không được đè field chuẩn, email = %v", data["email"])
	}
}

func TestPersonalize_NumericCustomField(t *testing.T) {
	data := PersonalizationData(sampleContact())

	got := Personalize("Ngân sách tối thiểu: {{budget_min}}", data)
	if got != "Ngân sách tối thiểu: 5000" {
		t.Errorf("giá trị số phải được format không có phần thập phân thừa, nhận %q", got)
	}
}

func TestPersonalize_EmptyInputs(t *testing.T) {
	if got := Personalize("", map[string]interface{}{"a": 1}); got != "" {
		t.Errorf("text rỗng phải trả về rỗng, nhận %q", got)
	}
	if got := Personalize("không có token", nil); got != "không có token" {
		t.Errorf("data nil phải trả về text gốc, nhận %q", got)
	}
}
