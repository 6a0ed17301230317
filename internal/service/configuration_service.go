package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
	pkgerrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// ── 优化配置模块业务错误 ──

var (
	ErrConfigurationNotFound = errors.New("配置不存在")
	ErrConfigurationSolved   = errors.New("配置已求解，不可修改或重复求解")
	ErrConfigurationRunning  = errors.New("配置正在求解中")
	ErrConfigurationStalled  = errors.New("配置已加锁但没有正在执行的求解任务")
	ErrConfigurationEnded    = errors.New("配置的求解已结束但未产生结果")
	ErrInvalidSolver         = errors.New("无效的求解器")
)

// newConfigurationTitle 新配置标题前缀，后接序号
const newConfigurationTitle = "Nuova configurazione"

// ConfigurationService 优化配置业务接口
type ConfigurationService interface {
	Create(ctx context.Context, commissionID int64) (*model.OptimizationConfiguration, error)
	List(ctx context.Context, commissionID int64) ([]model.OptimizationConfiguration, error)
	Get(ctx context.Context, commissionID, id int64) (*model.OptimizationConfiguration, error)
	// Update 部分更新；已加锁时返回 ErrConfigurationSolved / ErrConfigurationRunning，
	// 校验失败时返回 *errors.ValidationError
	Update(ctx context.Context, commissionID, id int64, req *dto.UpdateConfigurationRequest) (*model.OptimizationConfiguration, error)
	// Status 对配置快照应用运行状态判定与结果分组
	Status(ctx context.Context, commissionID, id int64) (*planning.OptimizationStatus, error)
}

type configurationService struct {
	repo   *repository.Repository
	cache  CommissionCache
	logger *zap.Logger
}

// NewConfigurationService 创建 ConfigurationService 实例
func NewConfigurationService(repo *repository.Repository, cache CommissionCache, logger *zap.Logger) ConfigurationService {
	return &configurationService{repo: repo, cache: cache, logger: logger}
}

func (s *configurationService) ensureCommission(ctx context.Context, commissionID int64) error {
	exists, err := s.repo.Commission.Exists(ctx, commissionID)
	if err != nil {
		s.logger.Error("查询委员会失败", zap.Int64("commission_id", commissionID), zap.Error(err))
		return err
	}
	if !exists {
		return ErrCommissionNotFound
	}
	return nil
}

// ────────────────────── Create ──────────────────────

func (s *configurationService) Create(ctx context.Context, commissionID int64) (*model.OptimizationConfiguration, error) {
	if err := s.ensureCommission(ctx, commissionID); err != nil {
		return nil, err
	}

	count, err := s.repo.Configuration.CountByCommission(ctx, commissionID)
	if err != nil {
		s.logger.Error("统计配置数量失败", zap.Int64("commission_id", commissionID), zap.Error(err))
		return nil, err
	}

	conf := model.NewOptimizationConfiguration(commissionID, fmt.Sprintf("%s %d", newConfigurationTitle, count+1))
	if err := s.repo.Configuration.Create(ctx, conf); err != nil {
		s.logger.Error("创建配置失败", zap.Int64("commission_id", commissionID), zap.Error(err))
		return nil, err
	}
	s.cache.Evict(ctx, commissionID)
	return conf, nil
}

// ────────────────────── List / Get ──────────────────────

func (s *configurationService) List(ctx context.Context, commissionID int64) ([]model.OptimizationConfiguration, error) {
	if err := s.ensureCommission(ctx, commissionID); err != nil {
		return nil, err
	}
	confs, err := s.repo.Configuration.ListByCommission(ctx, commissionID)
	if err != nil {
		s.logger.Error("列出配置失败", zap.Int64("commission_id", commissionID), zap.Error(err))
		return nil, err
	}
	if confs == nil {
		confs = []model.OptimizationConfiguration{}
	}
	return confs, nil
}

func (s *configurationService) Get(ctx context.Context, commissionID, id int64) (*model.OptimizationConfiguration, error) {
	conf, err := s.repo.Configuration.GetByID(ctx, commissionID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigurationNotFound
		}
		s.logger.Error("查询配置失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return conf, nil
}

// ────────────────────── Update ──────────────────────

func (s *configurationService) Update(ctx context.Context, commissionID, id int64, req *dto.UpdateConfigurationRequest) (*model.OptimizationConfiguration, error) {
	conf, err := s.Get(ctx, commissionID, id)
	if err != nil {
		return nil, err
	}
	if conf.RunLock {
		if conf.HasSolutions() {
			return nil, ErrConfigurationSolved
		}
		return nil, ErrConfigurationRunning
	}

	if err := applyUpdate(conf, req); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Configuration.Update(ctx, conf); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 读取之后被提交求解
			return nil, ErrConfigurationRunning
		}
		s.logger.Error("更新配置失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.Evict(ctx, commissionID)
	return conf, nil
}

// applyUpdate 将请求合并到配置；online=false 时清空人数上下限
func applyUpdate(conf *model.OptimizationConfiguration, req *dto.UpdateConfigurationRequest) error {
	if req.Title != nil {
		conf.Title = strings.TrimSpace(*req.Title)
	}
	if req.MaxDuration != nil {
		conf.MaxDuration = *req.MaxDuration
	}
	if req.MaxCommissionsMorning != nil {
		conf.MaxCommissionsMorning = *req.MaxCommissionsMorning
	}
	if req.MaxCommissionsAfternoon != nil {
		conf.MaxCommissionsAfternoon = *req.MaxCommissionsAfternoon
	}
	if req.Online != nil {
		conf.Online = *req.Online
	}

	if conf.Online {
		if req.MinProfessorNumber.Set {
			conf.MinProfessorNumber = req.MinProfessorNumber.Value
		}
		if req.MinProfessorNumberMasters.Set {
			conf.MinProfessorNumberMasters = req.MinProfessorNumberMasters.Value
		}
		if req.MaxProfessorNumber.Set {
			conf.MaxProfessorNumber = req.MaxProfessorNumber.Value
		}
	} else {
		conf.ClearProfessorBounds()
	}

	if req.Solver != nil {
		solver, err := model.ParseSolver(*req.Solver)
		if err != nil {
			return ErrInvalidSolver
		}
		conf.Solver = solver
	}
	if req.OptimizationTimeLimit != nil {
		conf.OptimizationTimeLimit = *req.OptimizationTimeLimit
	}
	if req.OptimizationGap != nil {
		conf.OptimizationGap = *req.OptimizationGap
	}
	return nil
}

// ────────────────────── Status ──────────────────────

func (s *configurationService) Status(ctx context.Context, commissionID, id int64) (*planning.OptimizationStatus, error) {
	conf, err := s.Get(ctx, commissionID, id)
	if err != nil {
		return nil, err
	}
	st := planning.ResolveStatus(conf)
	if st.Anomaly != nil {
		s.logger.Warn("配置状态异常", zap.Int64("config_id", id), zap.Error(st.Anomaly))
	}
	return &st, nil
}
