package selection

import (
	"context"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// Selection 当前选中的委员会与配置
type Selection struct {
	Commission    Slot[*model.Commission]
	Configuration Slot[*model.OptimizationConfiguration]
}

// New 创建空的选择状态
func New() *Selection {
	return &Selection{}
}

// Burden 在当前选中的委员会上统计 p 的负担；未选中时为 (0, 0)
func (s *Selection) Burden(p model.Professor) planning.ProfessorBurden {
	c, _ := s.Commission.Get()
	return planning.BurdenOf(c, p)
}

// SelectConfiguration 在当前委员会中按 ID 选中配置（显式切换，覆盖原值）
func (s *Selection) SelectConfiguration(id int64) (*model.OptimizationConfiguration, error) {
	c, ok := s.Commission.Get()
	if !ok || c == nil {
		return nil, &apperrors.NotFoundError{Resource: "commission", ID: 0}
	}
	conf, found := c.Configuration(id)
	if !found {
		return nil, &apperrors.NotFoundError{Resource: "configuration", ID: id}
	}
	s.Configuration.Replace(conf)
	return conf, nil
}

// Forget 委员会被删除后清除本地副本及其下的配置
func (s *Selection) Forget(commissionID int64) {
	s.Commission.Update(func(cur *model.Commission, ok bool) (*model.Commission, bool) {
		if !ok || cur == nil || cur.ID == commissionID {
			return nil, false
		}
		return cur, true
	})
	s.Configuration.Update(func(cur *model.OptimizationConfiguration, ok bool) (*model.OptimizationConfiguration, bool) {
		if !ok || cur == nil || cur.CommissionID == commissionID {
			return nil, false
		}
		return cur, true
	})
}

// ── context 传递 ──

type ctxKey struct{}

// NewContext 将 s 绑定到 ctx
func NewContext(ctx context.Context, s *Selection) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext 取出绑定的 Selection
func FromContext(ctx context.Context) (*Selection, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Selection)
	return s, ok && s != nil
}
