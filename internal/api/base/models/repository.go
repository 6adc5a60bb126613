// Package models chứa các kiểu trả về dùng chung của layer base service
// (kết quả phân trang và kết quả đếm cho mọi collection).
package models

// PaginateResult gói một trang kết quả truy vấn kèm thông tin phân trang.
// Mọi endpoint danh sách (contact, deal, workflow, enrollment...) đều trả kiểu này.
type PaginateResult[T any] struct {
	// Trang đang trả về (bắt đầu từ 0)
	Page int64 `json:"page" bson:"page"`
	// Kích thước trang mà client yêu cầu
	Limit int64 `json:"limit" bson:"limit"`
	// Số mục thực tế có trong trang này
	ItemCount int64 `json:"itemCount" bson:"itemCount"`
	// Dữ liệu của trang
	Items []T `json:"items" bson:"items"`
	// Tổng số mục khớp filter trên toàn collection
	Total int64 `json:"total" bson:"total"`
	// Tổng số trang tương ứng với limit
	TotalPage int64 `json:"totalPage" bson:"totalPage"`
}

// CountResult là kết quả của thao tác đếm theo filter.
type CountResult struct {
	// Tổng số mục khớp filter
	TotalCount int64 `json:"totalCount" bson:"totalCount"`
	// Kích thước trang dùng để quy ra số trang
	Limit int64 `json:"limit" bson:"limit"`
	// Tổng số trang
	TotalPage int64 `json:"totalPage" bson:"totalPage"`
}
