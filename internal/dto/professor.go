package dto

// ── 教授模块 DTO ──

// UpdateProfessorRequest 更新教授职级与出席时段，nil 表示不修改
type UpdateProfessorRequest struct {
	Role         *string `json:"role"`
	Availability *string `json:"availability"`
}
