// Package solver 将已加锁的配置交给外部求解器执行，并写回执行记录与答辩场次。
package solver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// ErrQueueFull 待执行队列已满
var ErrQueueFull = errors.New("求解队列已满，请稍后重试")

// ErrRunnerStopped 执行器已停止
var ErrRunnerStopped = errors.New("求解执行器已停止")

// Store 持久化一次执行的结果；记录与场次须在同一事务内写入
type Store interface {
	RecordExecution(ctx context.Context, rec *model.ExecutionRecord, slots []model.SolutionSlot) error
}

// Job 一次求解任务；Configuration 与 Entries 为提交时的快照
type Job struct {
	ID            string
	Configuration model.OptimizationConfiguration
	Entries       []model.CommissionEntry
	VersionHash   string
}

// NewJob 构造任务并分配 ID
func NewJob(conf model.OptimizationConfiguration, entries []model.CommissionEntry, versionHash string) *Job {
	return &Job{
		ID:            uuid.NewString(),
		Configuration: conf,
		Entries:       entries,
		VersionHash:   versionHash,
	}
}

// RunnerConfig 执行器参数
type RunnerConfig struct {
	WorkDir   string
	Workers   int
	QueueSize int
	// Grace 在配置的时间限制之外额外允许的运行时间
	Grace time.Duration
}

// Runner 固定数量 worker 的求解执行器
type Runner struct {
	cfg      RunnerConfig
	executor Executor
	store    Store
	logger   *zap.Logger

	jobs chan *Job
	wg   sync.WaitGroup

	mu      sync.RWMutex
	active  map[int64]string // 配置 ID → 任务 ID（排队中或执行中）
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunner 创建执行器
func NewRunner(cfg RunnerConfig, executor Executor, store Store, logger *zap.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 8
	}
	if cfg.Grace <= 0 {
		cfg.Grace = time.Minute
	}
	return &Runner{
		cfg:      cfg,
		executor: executor,
		store:    store,
		logger:   logger,
		jobs:     make(chan *Job, cfg.QueueSize),
		active:   make(map[int64]string),
	}
}

// Start 启动 worker
func (r *Runner) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Info("求解执行器已启动",
		zap.Int("workers", r.cfg.Workers),
		zap.Int("queue_size", r.cfg.QueueSize),
	)
}

// Stop 不再接受新任务，取消执行中的求解并等待 worker 退出
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.jobs)
	r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("求解执行器已停止")
}

// Submit 入队；同一配置已有任务时返回原任务 ID
func (r *Runner) Submit(job *Job) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return "", ErrRunnerStopped
	}
	if id, ok := r.active[job.Configuration.ID]; ok {
		return id, nil
	}

	select {
	case r.jobs <- job:
		r.active[job.Configuration.ID] = job.ID
		r.logger.Info("求解任务已入队",
			zap.String("job_id", job.ID),
			zap.Int64("commission_id", job.Configuration.CommissionID),
			zap.Int64("config_id", job.Configuration.ID),
			zap.String("solver", string(job.Configuration.Solver)),
		)
		return job.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// IsActive 配置是否有排队中或执行中的任务
func (r *Runner) IsActive(configID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.active[configID]
	return ok
}

// Stats 队列状态
func (r *Runner) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string]interface{}{
		"workers":        r.cfg.Workers,
		"active_jobs":    len(r.active),
		"queue_length":   len(r.jobs),
		"queue_capacity": cap(r.jobs),
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	for job := range r.jobs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("求解任务 panic",
						zap.Int("worker_id", id),
						zap.String("job_id", job.ID),
						zap.Any("panic", rec),
					)
				}
				r.mu.Lock()
				delete(r.active, job.Configuration.ID)
				r.mu.Unlock()
			}()
			r.run(job)
		}()
	}
}

// run 执行一个任务；无论成功与否都写入一条执行记录
func (r *Runner) run(job *Job) {
	conf := &job.Configuration
	log := r.logger.With(
		zap.String("job_id", job.ID),
		zap.Int64("commission_id", conf.CommissionID),
		zap.Int64("config_id", conf.ID),
	)

	rec := &model.ExecutionRecord{
		CommissionID: conf.CommissionID,
		OptConfigID:  conf.ID,
		StartTime:    time.Now(),
	}
	slots, outcome, err := r.solve(job)
	rec.EndTime = time.Now()

	if outcome != nil {
		rec.SolverReachedOptimality = outcome.ReachedOptimality()
		rec.SolverReachedTimeLimit = outcome.ReachedTimeLimit()
		if outcome.Log != "" {
			rec.OptimizerLog = &outcome.Log
		}
	}
	if err != nil {
		msg := err.Error()
		rec.ErrorMessage = &msg
		slots = nil
		log.Warn("求解失败", zap.Error(err))
	} else {
		rec.Success = true
	}

	// 写回不受 Stop 取消影响
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.store.RecordExecution(ctx, rec, slots); err != nil {
		log.Error("写入执行结果失败", zap.Error(err))
		return
	}
	log.Info("求解任务完成",
		zap.Bool("success", rec.Success),
		zap.Int("slots", len(slots)),
		zap.Duration("elapsed", rec.Elapsed()),
	)
}

func (r *Runner) solve(job *Job) ([]model.SolutionSlot, *Outcome, error) {
	conf := &job.Configuration
	dir := filepath.Join(r.cfg.WorkDir,
		strconv.FormatInt(conf.CommissionID, 10),
		strconv.FormatInt(conf.ID, 10),
	)

	datPath, err := WriteDatFile(dir, conf)
	if err != nil {
		return nil, nil, err
	}
	rosterPath, err := WriteRoster(dir, job.Entries)
	if err != nil {
		return nil, nil, err
	}
	opts, err := Options(conf.Solver, conf.OptimizationTimeLimit, conf.OptimizationGap)
	if err != nil {
		return nil, nil, err
	}

	timeout := time.Duration(conf.OptimizationTimeLimit)*time.Second + r.cfg.Grace
	ctx, cancel := context.WithTimeout(r.ctx, timeout)
	defer cancel()

	outcome, err := r.executor.Execute(ctx, Invocation{
		Solver:       conf.Solver,
		Model:        ModelFor(conf),
		Dir:          dir,
		DatPath:      datPath,
		RosterPath:   rosterPath,
		SolutionPath: filepath.Join(dir, SolutionFileName),
		Options:      opts,
	})
	if err != nil {
		return nil, outcome, err
	}
	if !outcome.Usable() {
		return nil, outcome, fmt.Errorf("求解器未给出可用解: status=%s termination=%s",
			outcome.Status, outcome.Termination)
	}

	slots, err := BuildSlots(conf, job.Entries, outcome.Sessions, job.VersionHash)
	if err != nil {
		return nil, outcome, err
	}
	return slots, outcome, nil
}
