package basehdl

import (
	"bytes"
	"encoding/json"
	"strconv"

	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseRequestBody parse body JSON vào input và validate bằng global validator.
// UseNumber để giữ nguyên số lớn, tránh mất độ chính xác khi decode float64.
func ParseRequestBody(c fiber.Ctx, input interface{}) error {
	body := c.Body()
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(input); err != nil {
		return common.NewError(common.ErrCodeValidationFormat, common.MsgValidationError, common.StatusBadRequest, err)
	}

	if err := global.Validate.Struct(input); err != nil {
		return common.NewError(common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err)
	}

	return nil
}

// GetObjectIDFromParams lấy ObjectID từ route param
func GetObjectIDFromParams(c fiber.Ctx, name string) (primitive.ObjectID, error) {
	idStr := c.Params(name)
	objID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationFormat,
			"ID không hợp lệ: "+idStr,
			common.StatusBadRequest,
			err,
		)
	}
	return objID, nil
}

// ParsePagination lấy page và limit từ query string, áp mặc định khi thiếu
func ParsePagination(c fiber.Ctx) (page int64, limit int64) {
	page = 1
	limit = 10
	if v, err := strconv.ParseInt(c.Query("page", "1"), 10, 64); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.ParseInt(c.Query("limit", "10"), 10, 64); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit
}
