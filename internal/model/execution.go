package model

import "time"

// ExecutionRecord 一次求解执行记录，对应 execution_details
// 只追加，创建后不再修改
type ExecutionRecord struct {
	ID                      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CommissionID            int64     `gorm:"not null"                 json:"commission_id"`
	OptConfigID             int64     `gorm:"not null;index"           json:"opt_config_id"`
	StartTime               time.Time `gorm:"not null"                 json:"start_time"`
	EndTime                 time.Time `gorm:"not null"                 json:"end_time"`
	Success                 bool      `gorm:"not null"                 json:"success"`
	SolverReachedOptimality bool      `gorm:"not null;default:false"   json:"solver_reached_optimality"`
	SolverReachedTimeLimit  bool      `gorm:"not null;default:false"   json:"solver_reached_time_limit"`
	ErrorMessage            *string   `gorm:"type:text"                json:"error_message"`
	OptimizerLog            *string   `gorm:"type:text"                json:"optimizer_log"`
}

func (ExecutionRecord) TableName() string { return "execution_details" }

// Elapsed 执行耗时
func (r ExecutionRecord) Elapsed() time.Duration { return r.EndTime.Sub(r.StartTime) }
