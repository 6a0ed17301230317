package dto

// ── 优化配置模块 DTO ──

// UpdateConfigurationRequest 更新配置请求（部分更新，nil 表示不修改）
// 人数上下限字段使用 Optional 区分“未提供”与“显式置空”
type UpdateConfigurationRequest struct {
	Title                     *string     `json:"title"`
	MaxDuration               *int        `json:"max_duration"              binding:"omitempty,min=0"`
	MaxCommissionsMorning     *int        `json:"max_commissions_morning"   binding:"omitempty,min=0"`
	MaxCommissionsAfternoon   *int        `json:"max_commissions_afternoon" binding:"omitempty,min=0"`
	Online                    *bool       `json:"online"`
	MinProfessorNumber        OptionalInt `json:"min_professor_number"`
	MinProfessorNumberMasters OptionalInt `json:"min_professor_number_masters"`
	MaxProfessorNumber        OptionalInt `json:"max_professor_number"`
	Solver                    *string     `json:"solver"`
	OptimizationTimeLimit     *int        `json:"optimization_time_limit"`
	OptimizationGap           *float64    `json:"optimization_gap"`
}

// SolveResponse 提交求解结果
type SolveResponse struct {
	JobID       string `json:"job_id"`
	VersionHash string `json:"version_hash"`
}

// ConflictState 配置冲突时返回的状态
type ConflictState struct {
	State string `json:"state"` // solved / solving / stalled
}

// ExportICSRequest 日历导出参数
type ExportICSRequest struct {
	Date     string `form:"date"     binding:"required"` // YYYY-MM-DD
	Start    string `form:"start"`                       // 上午开始时间，默认 09:00
	Location string `form:"location"`
}
