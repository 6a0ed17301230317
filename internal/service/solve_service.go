package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
	"github.com/stefa168/ottimizzatore-lauree/internal/solver"
	pkgerrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// ErrSolverBusy 求解队列已满
var ErrSolverBusy = errors.New("求解队列已满，请稍后重试")

// StalledError 运行锁已置位但没有执行记录，也没有正在执行的任务
// errors.Is 可匹配 ErrConfigurationStalled
type StalledError struct {
	Anomaly *pkgerrors.ConcurrencyAnomaly
}

func (e *StalledError) Error() string { return e.Anomaly.Error() }

func (e *StalledError) Is(target error) bool { return target == ErrConfigurationStalled }

func (e *StalledError) Unwrap() error { return e.Anomaly }

// SolveService 求解提交与运行锁巡检
type SolveService interface {
	// Solve 加锁、计算版本哈希并提交求解任务
	Solve(ctx context.Context, commissionID, configID int64) (*dto.SolveResponse, error)
	// SweepStalled 找出已加锁却没有执行记录且无任务在执行（或执行超时）的配置
	SweepStalled(ctx context.Context) ([]pkgerrors.ConcurrencyAnomaly, error)
}

type solveService struct {
	repo         *repository.Repository
	cache        CommissionCache
	runner       JobRunner
	stallTimeout time.Duration
	logger       *zap.Logger
}

// NewSolveService 创建 SolveService 实例
func NewSolveService(repo *repository.Repository, cache CommissionCache, runner JobRunner, stallTimeout time.Duration, logger *zap.Logger) SolveService {
	return &solveService{
		repo:         repo,
		cache:        cache,
		runner:       runner,
		stallTimeout: stallTimeout,
		logger:       logger,
	}
}

// ────────────────────── Solve ──────────────────────

func (s *solveService) Solve(ctx context.Context, commissionID, configID int64) (*dto.SolveResponse, error) {
	commission, err := s.repo.Commission.GetByID(ctx, commissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		s.logger.Error("查询委员会失败", zap.Int64("commission_id", commissionID), zap.Error(err))
		return nil, err
	}

	conf, ok := commission.Configuration(configID)
	if !ok {
		return nil, ErrConfigurationNotFound
	}
	if conf.HasSolutions() {
		return nil, ErrConfigurationSolved
	}
	if conf.RunLock {
		switch {
		case s.runner.IsActive(configID):
			return nil, ErrConfigurationRunning
		case len(conf.ExecutionDetails) == 0:
			anomaly := &pkgerrors.ConcurrencyAnomaly{
				ConfigurationID: configID,
				Detail:          "运行锁已置位但没有执行记录，也没有正在执行的任务",
			}
			s.logger.Warn("检测到停滞的配置", zap.Int64("config_id", configID), zap.Error(anomaly))
			return nil, &StalledError{Anomaly: anomaly}
		default:
			return nil, ErrConfigurationEnded
		}
	}

	if err := s.repo.Configuration.Lock(ctx, configID); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrConfigurationRunning
		}
		s.logger.Error("配置加锁失败", zap.Int64("config_id", configID), zap.Error(err))
		return nil, err
	}
	conf.RunLock = true
	s.cache.Evict(ctx, commissionID)

	hash := planning.VersionHash(conf, commission.Entries)
	jobID, err := s.runner.Submit(solver.NewJob(*conf, commission.Entries, hash))
	if err != nil {
		if unlockErr := s.repo.Configuration.Unlock(ctx, configID); unlockErr != nil {
			s.logger.Error("撤销配置加锁失败", zap.Int64("config_id", configID), zap.Error(unlockErr))
		}
		if errors.Is(err, solver.ErrQueueFull) {
			return nil, ErrSolverBusy
		}
		s.logger.Error("提交求解任务失败", zap.Int64("config_id", configID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("求解任务已提交",
		zap.Int64("commission_id", commissionID),
		zap.Int64("config_id", configID),
		zap.String("job_id", jobID),
		zap.String("version_hash", hash),
	)
	return &dto.SolveResponse{JobID: jobID, VersionHash: hash}, nil
}

// ────────────────────── SweepStalled ──────────────────────

func (s *solveService) SweepStalled(ctx context.Context) ([]pkgerrors.ConcurrencyAnomaly, error) {
	confs, err := s.repo.Configuration.ListLockedWithoutExecutions(ctx)
	if err != nil {
		s.logger.Error("查询已加锁配置失败", zap.Error(err))
		return nil, err
	}

	anomalies := make([]pkgerrors.ConcurrencyAnomaly, 0)
	now := time.Now()
	for _, conf := range confs {
		var detail string
		switch {
		case !s.runner.IsActive(conf.ID):
			detail = "运行锁已置位但没有正在执行的任务"
		case s.stallTimeout > 0 && conf.LockedAt != nil && now.Sub(*conf.LockedAt) > s.stallTimeout:
			detail = "求解任务执行时间超过 " + s.stallTimeout.String()
		default:
			continue
		}
		a := pkgerrors.ConcurrencyAnomaly{ConfigurationID: conf.ID, Detail: detail}
		s.logger.Warn("检测到停滞的配置",
			zap.Int64("commission_id", conf.CommissionID),
			zap.Int64("config_id", conf.ID),
			zap.Error(&a),
		)
		anomalies = append(anomalies, a)
	}
	return anomalies, nil
}

// ────────────────────── 执行结果写回 ──────────────────────

type executionStore struct {
	repo  *repository.Repository
	cache CommissionCache
}

// NewExecutionStore 供求解执行器写回结果；写入成功后清除委员会缓存
func NewExecutionStore(repo *repository.Repository, cache CommissionCache) solver.Store {
	if cache == nil {
		cache = noopCache{}
	}
	return &executionStore{repo: repo, cache: cache}
}

func (s *executionStore) RecordExecution(ctx context.Context, rec *model.ExecutionRecord, slots []model.SolutionSlot) error {
	if err := s.repo.Execution.RecordExecution(ctx, rec, slots); err != nil {
		return err
	}
	s.cache.Evict(ctx, rec.CommissionID)
	return nil
}
