package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ****************************************************  Bson *******************************************
// Các thao tác Bson tùy chỉnh

// CustomBson dùng để thực hiện các thao tác bson tùy chỉnh
// như set, push, unset bằng cách sử dụng các struct
type CustomBson struct{}

// BsonWrapper chứa các toán tử bson cơ bản ($set, $unset, $push, $addToSet).
// Gán struct dữ liệu vào trường tương ứng rồi ToMap để tạo update document.
type BsonWrapper struct {

	// Set thay thế giá trị của các trường.
	// Ví dụ: gán struct {Name: "Jack"} sẽ mã hóa thành { $set : {name : "Jack"}}
	Set interface{} `json:"$set,omitempty" bson:"$set,omitempty"`

	// Unset xóa một trường cụ thể. Trường không tồn tại thì Unset không làm gì cả.
	Unset interface{} `json:"$unset,omitempty" bson:"$unset,omitempty"`

	// Push thêm một giá trị vào trường mảng.
	// Trường chưa tồn tại thì Push tạo mảng mới với giá trị đó.
	Push interface{} `json:"$push,omitempty" bson:"$push,omitempty"`

	// AddToSet thêm giá trị vào mảng nếu giá trị chưa có trong mảng.
	AddToSet interface{} `json:"$addToSet,omitempty" bson:"$addToSet,omitempty"`
}

// ToMap chuyển đổi struct thành map[string]interface{} qua bson marshal/unmarshal.
// Field names trong map theo bson tags của struct.
func ToMap(s interface{}) (map[string]interface{}, error) {
	var stringInterfaceMap map[string]interface{}
	itr, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	err = bson.Unmarshal(itr, &stringInterfaceMap)
	if err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return stringInterfaceMap, nil
}

// Set tạo truy vấn thay thế giá trị của một trường
func (customBson *CustomBson) Set(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{Set: data}
	return ToMap(s)
}

// Push tạo truy vấn thêm một giá trị vào trường mảng
func (customBson *CustomBson) Push(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{Push: data}
	return ToMap(s)
}

// Unset tạo truy vấn xóa một trường cụ thể
func (customBson *CustomBson) Unset(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{Unset: data}
	return ToMap(s)
}

// AddToSet tạo truy vấn thêm một giá trị vào mảng nếu chưa có
func (customBson *CustomBson) AddToSet(data interface{}) (map[string]interface{}, error) {
	s := BsonWrapper{AddToSet: data}
	return ToMap(s)
}

// ****************************************************  Bson End  *******************************************
