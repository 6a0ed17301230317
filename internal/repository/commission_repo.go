package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// CommissionRepository 委员会数据访问接口
type CommissionRepository interface {
	// Create 仅写入委员会本身，条目与学生分别写入
	Create(ctx context.Context, commission *model.Commission) error
	CreateStudent(ctx context.Context, student *model.Student) error
	CreateEntries(ctx context.Context, entries []model.CommissionEntry) error
	// GetByID 预加载条目（含学生、教授）与配置（含执行记录、场次）
	GetByID(ctx context.Context, id int64) (*model.Commission, error)
	List(ctx context.Context) ([]model.Commission, error)
	ListPreviews(ctx context.Context) ([]model.CommissionPreview, error)
	// Delete 删除委员会及其条目、配置、执行记录、场次与学生
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type commissionRepo struct {
	db *gorm.DB
}

// NewCommissionRepo 创建 CommissionRepository 实例
func NewCommissionRepo(db *gorm.DB) CommissionRepository {
	return &commissionRepo{db: db}
}

func (r *commissionRepo) Create(ctx context.Context, commission *model.Commission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(commission).Error
}

func (r *commissionRepo) CreateStudent(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// CreateEntries 写入条目；学生与教授须已存在并设置好外键
func (r *commissionRepo) CreateEntries(ctx context.Context, entries []model.CommissionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&entries).Error
}

func (r *commissionRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("commission_entries.id") }).
		Preload("Entries.Candidate").
		Preload("Entries.Supervisor").
		Preload("Entries.SupervisorAssistant").
		Preload("Entries.CounterSupervisor").
		Preload("Configurations", func(db *gorm.DB) *gorm.DB { return db.Order("optimization_configurations.id") }).
		Preload("Configurations.ExecutionDetails", func(db *gorm.DB) *gorm.DB { return db.Order("execution_details.id") }).
		Preload("Configurations.SolutionCommissions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`solution_commissions."order"`)
		}).
		Preload("Configurations.SolutionCommissions.Professors").
		Preload("Configurations.SolutionCommissions.Students")
}

func (r *commissionRepo) GetByID(ctx context.Context, id int64) (*model.Commission, error) {
	var commission model.Commission
	err := r.preloaded(ctx).
		Where("id = ?", id).
		First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepo) List(ctx context.Context) ([]model.Commission, error) {
	var commissions []model.Commission
	err := r.preloaded(ctx).
		Order("id").
		Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepo) ListPreviews(ctx context.Context) ([]model.CommissionPreview, error) {
	var previews []model.CommissionPreview
	err := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Select("id, title").
		Order("id").
		Scan(&previews).Error
	return previews, err
}

func (r *commissionRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var studentIDs []int64
		if err := tx.Model(&model.CommissionEntry{}).
			Where("commission_id = ?", id).
			Pluck("candidate_id", &studentIDs).Error; err != nil {
			return err
		}

		// 条目、配置、执行记录、场次由外键级联删除
		result := tx.Where("id = ?", id).Delete(&model.Commission{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if len(studentIDs) > 0 {
			return tx.Where("id IN ?", studentIDs).Delete(&model.Student{}).Error
		}
		return nil
	})
}

func (r *commissionRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
