package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// SolutionRepository 答辩场次数据访问接口（只读，写入见 ExecutionRepository）
type SolutionRepository interface {
	ListByConfiguration(ctx context.Context, configID int64) ([]model.SolutionSlot, error)
	CountByConfiguration(ctx context.Context, configID int64) (int64, error)
}

type solutionRepo struct {
	db *gorm.DB
}

// NewSolutionRepo 创建 SolutionRepository 实例
func NewSolutionRepo(db *gorm.DB) SolutionRepository {
	return &solutionRepo{db: db}
}

func (r *solutionRepo) ListByConfiguration(ctx context.Context, configID int64) ([]model.SolutionSlot, error) {
	var slots []model.SolutionSlot
	err := r.db.WithContext(ctx).
		Preload("Professors").
		Preload("Students").
		Where("opt_config_id = ?", configID).
		Order(`"order"`).
		Find(&slots).Error
	return slots, err
}

func (r *solutionRepo) CountByConfiguration(ctx context.Context, configID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SolutionSlot{}).
		Where("opt_config_id = ?", configID).
		Count(&count).Error
	return count, err
}
