package model

import (
	"fmt"
	"time"

	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// 新建配置时的默认参数
const (
	DefaultMaxDuration             = 210
	DefaultMaxCommissionsMorning   = 6
	DefaultMaxCommissionsAfternoon = 6
	DefaultOptimizationTimeLimit   = 60
	DefaultOptimizationGap         = 0.005

	MinOptimizationTimeLimit = 60
	MaxTitleLength           = 256
)

// OptimizationConfiguration 一次优化运行的配置，对应 optimization_configurations
// RunLock 在提交求解时置位，此后配置不可再编辑
type OptimizationConfiguration struct {
	ID                        int64      `gorm:"primaryKey;autoIncrement"       json:"id"`
	CommissionID              int64      `gorm:"not null;index"                 json:"commission_id"`
	Title                     string     `gorm:"type:varchar(256);not null"     json:"title"`
	MaxDuration               int        `gorm:"not null;default:210"           json:"max_duration"`
	MaxCommissionsMorning     int        `gorm:"not null;default:6"             json:"max_commissions_morning"`
	MaxCommissionsAfternoon   int        `gorm:"not null;default:6"             json:"max_commissions_afternoon"`
	Online                    bool       `gorm:"not null;default:false"         json:"online"`
	MinProfessorNumber        *int       `                                      json:"min_professor_number"`
	MinProfessorNumberMasters *int       `                                      json:"min_professor_number_masters"`
	MaxProfessorNumber        *int       `                                      json:"max_professor_number"`
	Solver                    Solver     `gorm:"type:varchar(16);not null;default:cplex" json:"solver"`
	OptimizationTimeLimit     int        `gorm:"not null;default:60"            json:"optimization_time_limit"`
	OptimizationGap           float64    `gorm:"not null;default:0.005"         json:"optimization_gap"`
	RunLock                   bool       `gorm:"not null;default:false"         json:"run_lock"`
	LockedAt                  *time.Time `                                      json:"locked_at,omitempty"`

	SolutionCommissions []SolutionSlot    `gorm:"foreignKey:OptConfigID" json:"solution_commissions"`
	ExecutionDetails    []ExecutionRecord `gorm:"foreignKey:OptConfigID" json:"execution_details"`
	BaseModel
}

func (OptimizationConfiguration) TableName() string { return "optimization_configurations" }

// NewOptimizationConfiguration 按默认参数构造一个新配置
func NewOptimizationConfiguration(commissionID int64, title string) *OptimizationConfiguration {
	return &OptimizationConfiguration{
		CommissionID:            commissionID,
		Title:                   title,
		MaxDuration:             DefaultMaxDuration,
		MaxCommissionsMorning:   DefaultMaxCommissionsMorning,
		MaxCommissionsAfternoon: DefaultMaxCommissionsAfternoon,
		Solver:                  SolverCPLEX,
		OptimizationTimeLimit:   DefaultOptimizationTimeLimit,
		OptimizationGap:         DefaultOptimizationGap,
	}
}

// HasSolutions 是否已有求解结果
func (c *OptimizationConfiguration) HasSolutions() bool {
	return len(c.SolutionCommissions) > 0
}

// ClearProfessorBounds 线下模式不使用人数上下限
func (c *OptimizationConfiguration) ClearProfessorBounds() {
	c.MinProfessorNumber = nil
	c.MinProfessorNumberMasters = nil
	c.MaxProfessorNumber = nil
}

// Validate 接受配置前的校验，失败时返回 *ValidationError 并指明字段
func (c *OptimizationConfiguration) Validate() error {
	if n := len([]rune(c.Title)); n == 0 || n > MaxTitleLength {
		return invalid("title", fmt.Sprintf("长度必须在 1-%d 之间", MaxTitleLength))
	}
	if c.MaxDuration < 0 {
		return invalid("max_duration", "不能为负数")
	}
	if c.MaxCommissionsMorning < 0 {
		return invalid("max_commissions_morning", "不能为负数")
	}
	if c.MaxCommissionsAfternoon < 0 {
		return invalid("max_commissions_afternoon", "不能为负数")
	}
	if !c.Solver.Valid() {
		return invalid("solver", fmt.Sprintf("可选值: %v", Solvers()))
	}
	if c.OptimizationTimeLimit < MinOptimizationTimeLimit {
		return invalid("optimization_time_limit", fmt.Sprintf("不能小于 %d 秒", MinOptimizationTimeLimit))
	}
	if c.OptimizationGap < 0 || c.OptimizationGap >= 1 {
		return invalid("optimization_gap", "必须在 [0, 1) 区间内")
	}
	if c.Online {
		return c.validateOnlineBounds()
	}
	return nil
}

func (c *OptimizationConfiguration) validateOnlineBounds() error {
	bounds := []struct {
		field string
		value *int
	}{
		{"min_professor_number", c.MinProfessorNumber},
		{"min_professor_number_masters", c.MinProfessorNumberMasters},
		{"max_professor_number", c.MaxProfessorNumber},
	}
	for _, b := range bounds {
		if b.value == nil {
			return invalid(b.field, "线上模式下不能为空")
		}
		if *b.value < 1 {
			return invalid(b.field, "必须大于等于 1")
		}
	}
	if *c.MinProfessorNumber > *c.MaxProfessorNumber {
		return invalid("min_professor_number", "不能大于 max_professor_number")
	}
	if *c.MinProfessorNumberMasters > *c.MaxProfessorNumber {
		return invalid("min_professor_number_masters", "不能大于 max_professor_number")
	}
	return nil
}

func invalid(field, reason string) error {
	return &apperrors.ValidationError{Field: field, Reason: reason}
}
