package planning

import (
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// RunStatus 优化运行状态
type RunStatus string

const (
	StatusNotStarted RunStatus = "not_started"
	StatusRunning    RunStatus = "running"
	StatusEnded      RunStatus = "ended"
)

// ClassifyRun 由运行锁与执行记录数判定状态
//
//	runLock=false              → not_started
//	runLock=true, executions=0 → running
//	runLock=true, executions>0 → ended
func ClassifyRun(runLock bool, executions int) RunStatus {
	if !runLock {
		return StatusNotStarted
	}
	if executions == 0 {
		return StatusRunning
	}
	return StatusEnded
}

// OptimizationStatus 一次快照的判定结果
// ConfigurationLocked 与 Status 分开返回：前者决定是否禁止编辑，后者只描述运行进度
type OptimizationStatus struct {
	Status              RunStatus                     `json:"status"`
	ConfigurationLocked bool                          `json:"configuration_locked"`
	HasExecutions       bool                          `json:"has_executions"`
	Solutions           SolutionPartition             `json:"solutions"`
	Anomaly             *apperrors.ConcurrencyAnomaly `json:"-"`
}

// ResolveStatus 对配置快照应用状态判定与结果分组；conf 为 nil 时视为未开始
// 未加锁却存在执行记录属于上报异常，状态仍按 not_started 返回
func ResolveStatus(conf *model.OptimizationConfiguration) OptimizationStatus {
	if conf == nil {
		return OptimizationStatus{Status: StatusNotStarted, Solutions: PartitionSolutions(nil)}
	}
	n := len(conf.ExecutionDetails)
	st := OptimizationStatus{
		Status:              ClassifyRun(conf.RunLock, n),
		ConfigurationLocked: conf.RunLock,
		HasExecutions:       n > 0,
		Solutions:           PartitionSolutions(conf.SolutionCommissions),
	}
	if !conf.RunLock && n > 0 {
		st.Anomaly = &apperrors.ConcurrencyAnomaly{
			ConfigurationID: conf.ID,
			Detail:          "存在执行记录但运行锁未置位",
		}
	}
	return st
}
