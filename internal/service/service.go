package service

import (
	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/config"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
	"github.com/stefa168/ottimizzatore-lauree/internal/solver"
)

// JobRunner 求解任务执行器（*solver.Runner）
type JobRunner interface {
	Submit(job *solver.Job) (string, error)
	IsActive(configID int64) bool
}

// Service 所有 Service 的聚合入口
type Service struct {
	Commission    CommissionService
	Configuration ConfigurationService
	Solve         SolveService
	Professor     ProfessorService
	Export        ExportService
}

// NewService 创建 Service 聚合；cache 可为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache CommissionCache,
	runner JobRunner,
	logger *zap.Logger,
) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		Commission:    NewCommissionService(repo, cache, logger),
		Configuration: NewConfigurationService(repo, cache, logger),
		Solve:         NewSolveService(repo, cache, runner, cfg.Solver.StallTimeout, logger),
		Professor:     NewProfessorService(repo, cache, logger),
		Export:        NewExportService(repo, logger),
	}
}
