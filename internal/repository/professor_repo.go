package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// ProfessorRepository 教授数据访问接口
type ProfessorRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Professor, error)
	// GetOrCreate 按 (name, surname) 查找，不存在时以 unspecified 职级创建
	GetOrCreate(ctx context.Context, name, surname string) (*model.Professor, error)
	Update(ctx context.Context, professor *model.Professor) error
	ListByCommission(ctx context.Context, commissionID int64) ([]model.Professor, error)
	// ListCommissionIDs 教授出现过的委员会
	ListCommissionIDs(ctx context.Context, professorID int64) ([]int64, error)
}

type professorRepo struct {
	db *gorm.DB
}

// NewProfessorRepo 创建 ProfessorRepository 实例
func NewProfessorRepo(db *gorm.DB) ProfessorRepository {
	return &professorRepo{db: db}
}

func (r *professorRepo) GetByID(ctx context.Context, id int64) (*model.Professor, error) {
	var professor model.Professor
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&professor).Error
	if err != nil {
		return nil, err
	}
	return &professor, nil
}

func (r *professorRepo) GetOrCreate(ctx context.Context, name, surname string) (*model.Professor, error) {
	professor := model.Professor{Name: name, Surname: surname, Role: model.RoleUnspecified}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "surname"}},
			DoNothing: true,
		}).
		Create(&professor).Error
	if err != nil {
		return nil, err
	}
	if professor.ID != 0 {
		return &professor, nil
	}

	// 已存在：冲突时不返回 ID，重新查询
	var existing model.Professor
	err = r.db.WithContext(ctx).
		Where("name = ? AND surname = ?", name, surname).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *professorRepo) Update(ctx context.Context, professor *model.Professor) error {
	return r.db.WithContext(ctx).
		Model(&model.Professor{}).
		Where("id = ?", professor.ID).
		Updates(map[string]interface{}{
			"role":         professor.Role,
			"availability": professor.Availability,
			"updated_at":   gorm.Expr("NOW()"),
		}).Error
}

func (r *professorRepo) ListByCommission(ctx context.Context, commissionID int64) ([]model.Professor, error) {
	var professors []model.Professor
	column := func(name string) *gorm.DB {
		return r.db.Model(&model.CommissionEntry{}).
			Select(name).
			Where("commission_id = ? AND "+name+" IS NOT NULL", commissionID)
	}
	err := r.db.WithContext(ctx).
		Where("id IN (?) OR id IN (?) OR id IN (?)",
			column("supervisor_id"),
			column("supervisor_assistant_id"),
			column("counter_supervisor_id"),
		).
		Order("surname, name").
		Find(&professors).Error
	return professors, err
}

func (r *professorRepo) ListCommissionIDs(ctx context.Context, professorID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.CommissionEntry{}).
		Distinct("commission_id").
		Where("supervisor_id = ? OR supervisor_assistant_id = ? OR counter_supervisor_id = ?",
			professorID, professorID, professorID).
		Pluck("commission_id", &ids).Error
	return ids, err
}
