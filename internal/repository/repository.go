package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Commission    CommissionRepository
	Professor     ProfessorRepository
	Configuration ConfigurationRepository
	Execution     ExecutionRepository
	Solution      SolutionRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Commission:    NewCommissionRepo(db),
		Professor:     NewProfessorRepo(db),
		Configuration: NewConfigurationRepo(db),
		Execution:     NewExecutionRepo(db),
		Solution:      NewSolutionRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn，fn 返回错误时回滚
// 未绑定数据库连接（单元测试中直接组装的聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
