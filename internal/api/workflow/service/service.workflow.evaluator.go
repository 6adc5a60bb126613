// Package wfsvc - workflow automation engine: condition evaluator, step executor,
// action handlers, scheduler, enrollment lifecycle, trigger matchers.
package wfsvc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

// EvaluateConditions đánh giá danh sách condition trên một record contact.
// Logic "and" yêu cầu mọi condition đúng, "or" cần ít nhất một. Danh sách rỗng
// luôn đúng (vacuous truth). Logic rỗng được coi là "and".
func EvaluateConditions(logic string, conditions []wfmodels.Condition, record map[string]interface{}) bool {
	if len(conditions) == 0 {
		return true
	}
	if logic == wfmodels.ConditionLogicOr {
		for _, cond := range conditions {
			if evaluateCondition(cond, record) {
				return true
			}
		}
		return false
	}
	for _, cond := range conditions {
		if !evaluateCondition(cond, record) {
			return false
		}
	}
	return true
}

// evaluateCondition đánh giá một condition đơn lẻ.
// So sánh chuỗi không phân biệt hoa thường; so sánh số ép kiểu hai vế về số,
// ép kiểu thất bại cho ra NaN và mọi phép so sánh với NaN đều false.
func evaluateCondition(cond wfmodels.Condition, record map[string]interface{}) bool {
	fieldValue := LookupField(record, cond.Field)

	switch cond.Operator {
	case wfmodels.OperatorEquals:
		return stringsEqualFold(fieldValue, cond.Value)
	case wfmodels.OperatorNotEquals:
		return !stringsEqualFold(fieldValue, cond.Value)
	case wfmodels.OperatorContains:
		return strings.Contains(lowerString(fieldValue), lowerString(cond.Value))
	case wfmodels.OperatorNotContains:
		return !strings.Contains(lowerString(fieldValue), lowerString(cond.Value))
	case wfmodels.OperatorStartsWith:
		return strings.HasPrefix(lowerString(fieldValue), lowerString(cond.Value))
	case wfmodels.OperatorEndsWith:
		return strings.HasSuffix(lowerString(fieldValue), lowerString(cond.Value))
	case wfmodels.OperatorGreaterThan:
		left, right := toNumber(fieldValue), toNumber(cond.Value)
		return left > right // so sánh với NaN luôn false
	case wfmodels.OperatorLessThan:
		left, right := toNumber(fieldValue), toNumber(cond.Value)
		return left < right
	case wfmodels.OperatorIsEmpty:
		return isEmptyValue(fieldValue)
	case wfmodels.OperatorIsNotEmpty:
		return !isEmptyValue(fieldValue)
	case wfmodels.OperatorIn:
		return valueInList(fieldValue, cond.Value)
	case wfmodels.OperatorNotIn:
		return !valueInList(fieldValue, cond.Value)
	}
	return false
}

// LookupField tra giá trị theo path chấm, hỗ trợ một cấp lồng
// (vd: "customFields.budget_min"). Segment nào thiếu thì trả về nil.
func LookupField(record map[string]interface{}, path string) interface{} {
	if record == nil || path == "" {
		return nil
	}
	parts := strings.SplitN(path, ".", 2)
	value, ok := record[parts[0]]
	if !ok {
		return nil
	}
	if len(parts) == 1 {
		return value
	}
	nested, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return nested[parts[1]]
}

func stringsEqualFold(a, b interface{}) bool {
	return strings.EqualFold(stringify(a), stringify(b))
}

func lowerString(v interface{}) string {
	return strings.ToLower(stringify(v))
}

// stringify chuyển giá trị bất kỳ về dạng chuỗi so sánh được.
// Số nguyên và số thực cùng giá trị cho ra cùng chuỗi (5 và 5.0 -> "5").
func stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// toNumber ép giá trị về float64, thất bại trả về NaN.
func toNumber(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return math.NaN()
		}
		return parsed
	default:
		return math.NaN()
	}
}

func isEmptyValue(v interface{}) bool {
	if items, ok := asList(v); ok {
		return len(items) == 0
	}
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	case map[string]interface{}:
		return len(value) == 0
	}
	return false
}

// valueInList kiểm tra membership không phân biệt hoa thường.
// list không phải mảng thì coi như danh sách một phần tử.
func valueInList(v interface{}, list interface{}) bool {
	target := lowerString(v)
	items, ok := asList(list)
	if !ok {
		return target == lowerString(list) && list != nil
	}
	for _, item := range items {
		if lowerString(item) == target {
			return true
		}
	}
	return false
}

// asList quy giá trị mảng về []interface{}. Giá trị decode từ MongoDB
// cho ra primitive.A thay vì []interface{} nên phải nhận cả hai kiểu.
func asList(v interface{}) ([]interface{}, bool) {
	switch value := v.(type) {
	case []interface{}:
		return value, true
	case primitive.A:
		return value, true
	case []string:
		items := make([]interface{}, len(value))
		for i, s := range value {
			items[i] = s
		}
		return items, true
	}
	return nil, false
}
