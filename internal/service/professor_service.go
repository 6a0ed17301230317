package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
)

// ── 教授模块业务错误 ──

var (
	ErrProfessorNotFound   = errors.New("教授不存在")
	ErrProfessorEmptyField = errors.New("职级与出席时段不能为空字符串")
	ErrInvalidRole         = errors.New("无效的职级")
	ErrInvalidAvailability = errors.New("无效的出席时段")
)

// ProfessorService 教授业务接口
type ProfessorService interface {
	// Update 修改职级和/或出席时段，并使其参与的所有委员会缓存失效
	Update(ctx context.Context, id int64, req *dto.UpdateProfessorRequest) (*model.Professor, error)
}

type professorService struct {
	repo   *repository.Repository
	cache  CommissionCache
	logger *zap.Logger
}

// NewProfessorService 创建 ProfessorService 实例
func NewProfessorService(repo *repository.Repository, cache CommissionCache, logger *zap.Logger) ProfessorService {
	return &professorService{repo: repo, cache: cache, logger: logger}
}

func (s *professorService) Update(ctx context.Context, id int64, req *dto.UpdateProfessorRequest) (*model.Professor, error) {
	professor, err := s.repo.Professor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessorNotFound
		}
		s.logger.Error("查询教授失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	if req.Role != nil {
		raw := strings.TrimSpace(*req.Role)
		if raw == "" {
			return nil, ErrProfessorEmptyField
		}
		role, err := model.ParseUniversityRole(raw)
		if err != nil {
			return nil, ErrInvalidRole
		}
		professor.Role = role
	}
	if req.Availability != nil {
		raw := strings.TrimSpace(*req.Availability)
		if raw == "" {
			return nil, ErrProfessorEmptyField
		}
		availability, err := model.ParseTimeAvailability(raw)
		if err != nil {
			return nil, ErrInvalidAvailability
		}
		professor.Availability = &availability
	}

	if err := s.repo.Professor.Update(ctx, professor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfessorNotFound
		}
		s.logger.Error("更新教授失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	commissionIDs, err := s.repo.Professor.ListCommissionIDs(ctx, id)
	if err != nil {
		// 更新已生效，缓存最迟在 TTL 后过期
		s.logger.Warn("查询教授所属委员会失败", zap.Int64("id", id), zap.Error(err))
		return professor, nil
	}
	for _, cid := range commissionIDs {
		s.cache.Evict(ctx, cid)
	}
	return professor, nil
}
