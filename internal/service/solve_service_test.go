package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/solver"
)

// ── 测试辅助 ──

type solveFixture struct {
	*configFixture
	runner *fakeRunner
	solve  SolveService
}

func setupTestSolveService(t *testing.T, stallTimeout time.Duration) *solveFixture {
	t.Helper()
	fx := setupTestConfigurationService(t)
	runner := newFakeRunner()
	return &solveFixture{
		configFixture: fx,
		runner:        runner,
		solve:         NewSolveService(newTestRepository(fx.store), fx.cache, runner, stallTimeout, zap.NewNop()),
	}
}

// ── Solve 测试 ──

func TestSolveService_Solve_Success(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)

	resp, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID)
	if err != nil {
		t.Fatalf("Solve 应成功: %v", err)
	}
	if resp.JobID == "" || len(resp.VersionHash) != 64 {
		t.Errorf("期望任务 ID 与 64 位哈希，实际=%+v", resp)
	}
	if !fx.store.configs[conf.ID].RunLock {
		t.Error("提交后配置应加锁")
	}
	if len(fx.runner.submitted) != 1 {
		t.Fatalf("期望提交 1 个任务，实际=%d", len(fx.runner.submitted))
	}
	job := fx.runner.submitted[0]
	if len(job.Entries) != 3 {
		t.Errorf("任务应携带全部 3 个条目，实际=%d", len(job.Entries))
	}
	if job.VersionHash != resp.VersionHash {
		t.Error("任务与响应的版本哈希应一致")
	}
}

func TestSolveService_Solve_Running(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)

	if _, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID); err != nil {
		t.Fatalf("首次 Solve 应成功: %v", err)
	}
	_, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID)
	if !errors.Is(err, ErrConfigurationRunning) {
		t.Errorf("任务执行中再次提交应返回 ErrConfigurationRunning，实际: %v", err)
	}
}

func TestSolveService_Solve_Stalled(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)
	_ = fx.store.configsLock(conf.ID)

	_, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID)
	if !errors.Is(err, ErrConfigurationStalled) {
		t.Fatalf("加锁无任务无记录应返回 ErrConfigurationStalled，实际: %v", err)
	}
	var se *StalledError
	if !errors.As(err, &se) || se.Anomaly.ConfigurationID != conf.ID {
		t.Errorf("应携带异常详情，实际: %v", err)
	}
}

func TestSolveService_Solve_EndedWithoutSolutions(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)
	_ = fx.store.configsLock(conf.ID)
	fx.store.configs[conf.ID].ExecutionDetails = []model.ExecutionRecord{{ID: 9, Success: false}}

	_, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID)
	if !errors.Is(err, ErrConfigurationEnded) {
		t.Errorf("失败的运行后应返回 ErrConfigurationEnded，实际: %v", err)
	}
}

func TestSolveService_Solve_Solved(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)
	_ = fx.store.configsLock(conf.ID)
	fx.store.configs[conf.ID].ExecutionDetails = []model.ExecutionRecord{{ID: 9, Success: true}}
	fx.store.configs[conf.ID].SolutionCommissions = []model.SolutionSlot{{ID: 10, Duration: 15}}

	_, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID)
	if !errors.Is(err, ErrConfigurationSolved) {
		t.Errorf("已有结果时应返回 ErrConfigurationSolved，实际: %v", err)
	}
}

func TestSolveService_Solve_QueueFullUnlocks(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)
	fx.runner.err = solver.ErrQueueFull

	_, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID)
	if !errors.Is(err, ErrSolverBusy) {
		t.Fatalf("期望 ErrSolverBusy，实际: %v", err)
	}
	if fx.store.configs[conf.ID].RunLock {
		t.Error("提交失败后应撤销运行锁")
	}
}

func TestSolveService_Solve_NotFound(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()

	if _, err := fx.solve.Solve(ctx, 999, 1); !errors.Is(err, ErrCommissionNotFound) {
		t.Errorf("期望 ErrCommissionNotFound，实际: %v", err)
	}
	if _, err := fx.solve.Solve(ctx, fx.commissionID, 999); !errors.Is(err, ErrConfigurationNotFound) {
		t.Errorf("期望 ErrConfigurationNotFound，实际: %v", err)
	}
}

func TestSolveService_Solve_HashChangesWithConfiguration(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	a, _ := fx.svc.Create(ctx, fx.commissionID)
	b, _ := fx.svc.Create(ctx, fx.commissionID)
	if _, err := fx.svc.Update(ctx, fx.commissionID, b.ID, &dto.UpdateConfigurationRequest{MaxDuration: intPtr(180)}); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}

	ra, _ := fx.solve.Solve(ctx, fx.commissionID, a.ID)
	rb, _ := fx.solve.Solve(ctx, fx.commissionID, b.ID)
	if ra.VersionHash == rb.VersionHash {
		t.Error("参数不同的配置应得到不同的版本哈希")
	}
}

// ── SweepStalled 测试 ──

func TestSolveService_SweepStalled(t *testing.T) {
	fx := setupTestSolveService(t, time.Hour)
	ctx := context.Background()

	orphan, _ := fx.svc.Create(ctx, fx.commissionID)
	_ = fx.store.configsLock(orphan.ID)

	live, _ := fx.svc.Create(ctx, fx.commissionID)
	if _, err := fx.solve.Solve(ctx, fx.commissionID, live.ID); err != nil {
		t.Fatalf("Solve 应成功: %v", err)
	}

	overdue, _ := fx.svc.Create(ctx, fx.commissionID)
	if _, err := fx.solve.Solve(ctx, fx.commissionID, overdue.ID); err != nil {
		t.Fatalf("Solve 应成功: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	fx.store.configs[overdue.ID].LockedAt = &past

	anomalies, err := fx.solve.SweepStalled(ctx)
	if err != nil {
		t.Fatalf("SweepStalled 应成功: %v", err)
	}
	got := make(map[int64]bool)
	for _, a := range anomalies {
		got[a.ConfigurationID] = true
	}
	if !got[orphan.ID] {
		t.Error("无任务的加锁配置应被上报")
	}
	if !got[overdue.ID] {
		t.Error("超时的任务应被上报")
	}
	if got[live.ID] {
		t.Error("正常执行中的任务不应被上报")
	}
	if len(anomalies) != 2 {
		t.Errorf("期望 2 个异常，实际=%d", len(anomalies))
	}
}

func TestSolveService_StatusAfterSolve(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)
	if _, err := fx.solve.Solve(ctx, fx.commissionID, conf.ID); err != nil {
		t.Fatalf("Solve 应成功: %v", err)
	}

	st, _ := fx.svc.Status(ctx, fx.commissionID, conf.ID)
	if st.Status != planning.StatusRunning || !st.ConfigurationLocked {
		t.Errorf("提交后应为 running 且加锁，实际=%+v", st)
	}
}

func TestExecutionStore_EvictsCache(t *testing.T) {
	fx := setupTestSolveService(t, 0)
	ctx := context.Background()
	conf, _ := fx.svc.Create(ctx, fx.commissionID)
	fx.cache.Set(ctx, &model.Commission{ID: fx.commissionID})

	store := NewExecutionStore(newTestRepository(fx.store), fx.cache)
	rec := &model.ExecutionRecord{CommissionID: fx.commissionID, OptConfigID: conf.ID, Success: true}
	if err := store.RecordExecution(ctx, rec, []model.SolutionSlot{{Order: 0, Morning: true, Duration: 15}}); err != nil {
		t.Fatalf("RecordExecution 应成功: %v", err)
	}
	if _, ok := fx.cache.Get(ctx, fx.commissionID); ok {
		t.Error("写回结果后应清除委员会缓存")
	}
	if len(fx.store.configs[conf.ID].SolutionCommissions) != 1 {
		t.Error("结果应写入存储")
	}
}
