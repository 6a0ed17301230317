package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// ExecutionRepository 执行记录数据访问接口（只追加）
type ExecutionRepository interface {
	// RecordExecution 在同一事务中写入执行记录与场次
	RecordExecution(ctx context.Context, rec *model.ExecutionRecord, slots []model.SolutionSlot) error
	ListByConfiguration(ctx context.Context, configID int64) ([]model.ExecutionRecord, error)
	CountByConfiguration(ctx context.Context, configID int64) (int64, error)
}

type executionRepo struct {
	db *gorm.DB
}

// NewExecutionRepo 创建 ExecutionRepository 实例
func NewExecutionRepo(db *gorm.DB) ExecutionRepository {
	return &executionRepo{db: db}
}

func (r *executionRepo) RecordExecution(ctx context.Context, rec *model.ExecutionRecord, slots []model.SolutionSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		// 教授、学生已存在，只写关联表
		return tx.Omit("Professors.*", "Students.*").Create(&slots).Error
	})
}

func (r *executionRepo) ListByConfiguration(ctx context.Context, configID int64) ([]model.ExecutionRecord, error) {
	var recs []model.ExecutionRecord
	err := r.db.WithContext(ctx).
		Where("opt_config_id = ?", configID).
		Order("id").
		Find(&recs).Error
	return recs, err
}

func (r *executionRepo) CountByConfiguration(ctx context.Context, configID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ExecutionRecord{}).
		Where("opt_config_id = ?", configID).
		Count(&count).Error
	return count, err
}
