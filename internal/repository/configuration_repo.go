package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	pkgerrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// ConfigurationRepository 优化配置数据访问接口
type ConfigurationRepository interface {
	Create(ctx context.Context, conf *model.OptimizationConfiguration) error
	// GetByID 按委员会与配置 ID 查询，预加载执行记录与场次
	GetByID(ctx context.Context, commissionID, id int64) (*model.OptimizationConfiguration, error)
	ListByCommission(ctx context.Context, commissionID int64) ([]model.OptimizationConfiguration, error)
	CountByCommission(ctx context.Context, commissionID int64) (int64, error)
	// Update 仅在未加锁时更新；已加锁返回 ErrOptimisticLock
	Update(ctx context.Context, conf *model.OptimizationConfiguration) error
	// Lock 将 run_lock 由 false 置为 true；已加锁返回 ErrOptimisticLock
	Lock(ctx context.Context, id int64) error
	// Unlock 撤销尚未产生执行记录的加锁（任务未能入队时使用）
	Unlock(ctx context.Context, id int64) error
	// ListLockedWithoutExecutions 已加锁但没有任何执行记录的配置
	ListLockedWithoutExecutions(ctx context.Context) ([]model.OptimizationConfiguration, error)
}

type configurationRepo struct {
	db *gorm.DB
}

// NewConfigurationRepo 创建 ConfigurationRepository 实例
func NewConfigurationRepo(db *gorm.DB) ConfigurationRepository {
	return &configurationRepo{db: db}
}

func (r *configurationRepo) Create(ctx context.Context, conf *model.OptimizationConfiguration) error {
	return r.db.WithContext(ctx).Create(conf).Error
}

func (r *configurationRepo) withResults(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("ExecutionDetails", func(db *gorm.DB) *gorm.DB { return db.Order("execution_details.id") }).
		Preload("SolutionCommissions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`solution_commissions."order"`)
		}).
		Preload("SolutionCommissions.Professors").
		Preload("SolutionCommissions.Students")
}

func (r *configurationRepo) GetByID(ctx context.Context, commissionID, id int64) (*model.OptimizationConfiguration, error) {
	var conf model.OptimizationConfiguration
	err := r.withResults(ctx).
		Where("id = ? AND commission_id = ?", id, commissionID).
		First(&conf).Error
	if err != nil {
		return nil, err
	}
	return &conf, nil
}

func (r *configurationRepo) ListByCommission(ctx context.Context, commissionID int64) ([]model.OptimizationConfiguration, error) {
	var confs []model.OptimizationConfiguration
	err := r.withResults(ctx).
		Where("commission_id = ?", commissionID).
		Order("id").
		Find(&confs).Error
	return confs, err
}

func (r *configurationRepo) CountByCommission(ctx context.Context, commissionID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.OptimizationConfiguration{}).
		Where("commission_id = ?", commissionID).
		Count(&count).Error
	return count, err
}

func (r *configurationRepo) Update(ctx context.Context, conf *model.OptimizationConfiguration) error {
	result := r.db.WithContext(ctx).
		Model(&model.OptimizationConfiguration{}).
		Where("id = ? AND run_lock = ?", conf.ID, false).
		Updates(map[string]interface{}{
			"title":                        conf.Title,
			"max_duration":                 conf.MaxDuration,
			"max_commissions_morning":      conf.MaxCommissionsMorning,
			"max_commissions_afternoon":    conf.MaxCommissionsAfternoon,
			"online":                       conf.Online,
			"min_professor_number":         conf.MinProfessorNumber,
			"min_professor_number_masters": conf.MinProfessorNumberMasters,
			"max_professor_number":         conf.MaxProfessorNumber,
			"solver":                       conf.Solver,
			"optimization_time_limit":      conf.OptimizationTimeLimit,
			"optimization_gap":             conf.OptimizationGap,
			"updated_at":                   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *configurationRepo) Lock(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Model(&model.OptimizationConfiguration{}).
		Where("id = ? AND run_lock = ?", id, false).
		Updates(map[string]interface{}{
			"run_lock":   true,
			"locked_at":  time.Now(),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *configurationRepo) Unlock(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.OptimizationConfiguration{}).
		Where("id = ? AND run_lock = ?", id, true).
		Where("NOT EXISTS (SELECT 1 FROM execution_details e WHERE e.opt_config_id = optimization_configurations.id)").
		Updates(map[string]interface{}{
			"run_lock":   false,
			"locked_at":  nil,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *configurationRepo) ListLockedWithoutExecutions(ctx context.Context) ([]model.OptimizationConfiguration, error) {
	var confs []model.OptimizationConfiguration
	err := r.db.WithContext(ctx).
		Where("run_lock = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM execution_details e WHERE e.opt_config_id = optimization_configurations.id)").
		Order("id").
		Find(&confs).Error
	return confs, err
}
