package authdto

// OrganizationCreateInput đầu vào khi tạo tổ chức.
type OrganizationCreateInput struct {
	Name string `json:"name" validate:"required,no_xss"`
	Code string `json:"code" validate:"required,alphanum"`
}

// OrganizationUpdateInput đầu vào khi cập nhật tổ chức.
type OrganizationUpdateInput struct {
	Name     string `json:"name" validate:"omitempty,no_xss"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// OrganizationMemberInput đầu vào thêm hoặc gỡ thành viên.
type OrganizationMemberInput struct {
	Email string `json:"email" validate:"required,email"`
}
