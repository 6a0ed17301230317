package dto

// ── 委员会模块 DTO ──

// UploadCommissionResponse 名册上传结果
type UploadCommissionResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Entries    int    `json:"entries"`
	Professors int    `json:"professors"`
}

// DeleteCommissionResponse 删除结果
type DeleteCommissionResponse struct {
	ID int64 `json:"id"`
}
