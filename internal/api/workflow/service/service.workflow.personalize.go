package wfsvc

import (
	"regexp"
	"strings"

	crmmodels "cornerstone_crm/internal/api/crm/models"
)

// tokenPattern khớp token dạng {{field_name}}, cho phép khoảng trắng trong ngoặc.
var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Personalize thay các token {{field_name}} trong text bằng giá trị tương ứng.
// Token không có trong data được giữ nguyên văn, không thay bằng chuỗi rỗng.
func Personalize(text string, data map[string]interface{}) string {
	if text == "" || len(data) == 0 {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := strings.TrimSpace(strings.Trim(match, "{}"))
		value, ok := data[key]
		if !ok || value == nil {
			return match
		}
		return stringify(value)
	})
}

// PersonalizationData dựng map token từ contact: first_name / last_name /
// full_name / email / phone / company cộng toàn bộ custom fields.
func PersonalizationData(contact *crmmodels.Contact) map[string]interface{} {
	data := map[string]interface{}{
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"full_name":  contact.FullName(),
		"email":      contact.Email,
		"phone":      contact.Phone,
		"company":    contact.Company,
	}
	for key, value := range contact.CustomFields {
		if _, exists := data[key]; !exists {
			data[key] = value
		}
	}
	return data
}
