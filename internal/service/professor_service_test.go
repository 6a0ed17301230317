package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

func setupTestProfessorService(t *testing.T) (ProfessorService, *configFixture) {
	t.Helper()
	fx := setupTestConfigurationService(t)
	return NewProfessorService(newTestRepository(fx.store), fx.cache, zap.NewNop()), fx
}

func professorBySurname(t *testing.T, store *memStore, surname string) *model.Professor {
	t.Helper()
	for _, p := range store.professors {
		if p.Surname == surname {
			return p
		}
	}
	t.Fatalf("教授 %s 不存在", surname)
	return nil
}

func TestProfessorService_Update_Success(t *testing.T) {
	svc, fx := setupTestProfessorService(t)
	p := professorBySurname(t, fx.store, "Bianchi")

	updated, err := svc.Update(context.Background(), p.ID, &dto.UpdateProfessorRequest{
		Role:         strPtr("associate"),
		Availability: strPtr("morning"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.Role != model.RoleAssociate {
		t.Errorf("期望 associate，实际=%s", updated.Role)
	}
	if updated.EffectiveAvailability() != model.AvailableMorning {
		t.Errorf("期望 morning，实际=%s", updated.EffectiveAvailability())
	}
	if fx.store.professors[p.ID].Role != model.RoleAssociate {
		t.Error("修改应写入存储")
	}
	if !fx.cache.wasEvicted(fx.commissionID) {
		t.Error("应清除教授所属委员会的缓存")
	}
}

func TestProfessorService_Update_OnlyRole(t *testing.T) {
	svc, fx := setupTestProfessorService(t)
	p := professorBySurname(t, fx.store, "Verdi")

	updated, err := svc.Update(context.Background(), p.ID, &dto.UpdateProfessorRequest{Role: strPtr("ordinary")})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.Availability != nil {
		t.Error("未提供的出席时段不应被修改")
	}
}

func TestProfessorService_Update_Errors(t *testing.T) {
	svc, fx := setupTestProfessorService(t)
	p := professorBySurname(t, fx.store, "Gialli")

	cases := []struct {
		name string
		id   int64
		req  *dto.UpdateProfessorRequest
		want error
	}{
		{"不存在", 9999, &dto.UpdateProfessorRequest{Role: strPtr("ordinary")}, ErrProfessorNotFound},
		{"空职级", p.ID, &dto.UpdateProfessorRequest{Role: strPtr(" ")}, ErrProfessorEmptyField},
		{"空时段", p.ID, &dto.UpdateProfessorRequest{Availability: strPtr("")}, ErrProfessorEmptyField},
		{"无效职级", p.ID, &dto.UpdateProfessorRequest{Role: strPtr("emeritus")}, ErrInvalidRole},
		{"无效时段", p.ID, &dto.UpdateProfessorRequest{Availability: strPtr("evening")}, ErrInvalidAvailability},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tc.id, tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际: %v", tc.want, err)
			}
		})
	}
}
