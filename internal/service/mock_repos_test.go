package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
	"github.com/stefa168/ottimizzatore-lauree/internal/solver"
	pkgerrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

// ── 内存存储 ──
// 所有 mock 共享同一份数据，模拟预加载后的聚合视图

type memStore struct {
	mu          sync.Mutex
	nextID      int64
	commissions map[int64]*model.Commission
	students    map[int64]*model.Student
	professors  map[int64]*model.Professor
	configs     map[int64]*model.OptimizationConfiguration
}

func newMemStore() *memStore {
	return &memStore{
		commissions: make(map[int64]*model.Commission),
		students:    make(map[int64]*model.Student),
		professors:  make(map[int64]*model.Professor),
		configs:     make(map[int64]*model.OptimizationConfiguration),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// commission 组装委员会快照（条目带教授与学生，配置按 ID 排序）
func (m *memStore) commission(id int64) (*model.Commission, bool) {
	c, ok := m.commissions[id]
	if !ok {
		return nil, false
	}
	out := *c
	out.Entries = make([]model.CommissionEntry, len(c.Entries))
	for i, e := range c.Entries {
		e.Candidate = m.students[e.CandidateID]
		e.Supervisor = m.professors[e.SupervisorID]
		if e.SupervisorAssistantID != nil {
			e.SupervisorAssistant = m.professors[*e.SupervisorAssistantID]
		}
		if e.CounterSupervisorID != nil {
			e.CounterSupervisor = m.professors[*e.CounterSupervisorID]
		}
		out.Entries[i] = e
	}
	out.Configurations = m.configsOf(id)
	return &out, true
}

func (m *memStore) configsOf(commissionID int64) []model.OptimizationConfiguration {
	confs := []model.OptimizationConfiguration{}
	for _, conf := range m.configs {
		if conf.CommissionID == commissionID {
			confs = append(confs, *conf)
		}
	}
	sort.Slice(confs, func(i, j int) bool { return confs[i].ID < confs[j].ID })
	return confs
}

func newTestRepository(store *memStore) *repository.Repository {
	return &repository.Repository{
		Commission:    &mockCommissionRepo{store: store},
		Professor:     &mockProfessorRepo{store: store},
		Configuration: &mockConfigurationRepo{store: store},
		Execution:     &mockExecutionRepo{store: store},
		Solution:      &mockSolutionRepo{store: store},
	}
}

// ── Mock CommissionRepository ──

type mockCommissionRepo struct {
	store *memStore
}

func (m *mockCommissionRepo) Create(_ context.Context, commission *model.Commission) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	commission.ID = m.store.id()
	stored := *commission
	m.store.commissions[commission.ID] = &stored
	return nil
}

func (m *mockCommissionRepo) CreateStudent(_ context.Context, student *model.Student) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	student.ID = m.store.id()
	stored := *student
	m.store.students[student.ID] = &stored
	return nil
}

func (m *mockCommissionRepo) CreateEntries(_ context.Context, entries []model.CommissionEntry) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for i := range entries {
		entries[i].ID = m.store.id()
		c, ok := m.store.commissions[entries[i].CommissionID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		c.Entries = append(c.Entries, entries[i])
	}
	return nil
}

func (m *mockCommissionRepo) GetByID(_ context.Context, id int64) (*model.Commission, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if c, ok := m.store.commission(id); ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommissionRepo) List(_ context.Context) ([]model.Commission, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var result []model.Commission
	for id := range m.store.commissions {
		c, _ := m.store.commission(id)
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockCommissionRepo) ListPreviews(ctx context.Context) ([]model.CommissionPreview, error) {
	all, _ := m.List(ctx)
	var result []model.CommissionPreview
	for _, c := range all {
		result = append(result, c.Preview())
	}
	return result, nil
}

func (m *mockCommissionRepo) Delete(_ context.Context, id int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c, ok := m.store.commissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, e := range c.Entries {
		delete(m.store.students, e.CandidateID)
	}
	for cid, conf := range m.store.configs {
		if conf.CommissionID == id {
			delete(m.store.configs, cid)
		}
	}
	delete(m.store.commissions, id)
	return nil
}

func (m *mockCommissionRepo) Exists(_ context.Context, id int64) (bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	_, ok := m.store.commissions[id]
	return ok, nil
}

// ── Mock ProfessorRepository ──

type mockProfessorRepo struct {
	store *memStore
}

func (m *mockProfessorRepo) GetByID(_ context.Context, id int64) (*model.Professor, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if p, ok := m.store.professors[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfessorRepo) GetOrCreate(_ context.Context, name, surname string) (*model.Professor, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, p := range m.store.professors {
		if p.Name == name && p.Surname == surname {
			cp := *p
			return &cp, nil
		}
	}
	p := &model.Professor{ID: m.store.id(), Name: name, Surname: surname, Role: model.RoleUnspecified}
	m.store.professors[p.ID] = p
	cp := *p
	return &cp, nil
}

func (m *mockProfessorRepo) Update(_ context.Context, professor *model.Professor) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	p, ok := m.store.professors[professor.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Role = professor.Role
	p.Availability = professor.Availability
	return nil
}

func (m *mockProfessorRepo) ListByCommission(_ context.Context, commissionID int64) ([]model.Professor, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	c, ok := m.store.commission(commissionID)
	if !ok {
		return nil, nil
	}
	seen := make(map[int64]bool)
	var result []model.Professor
	add := func(p *model.Professor) {
		if p != nil && !seen[p.ID] {
			seen[p.ID] = true
			result = append(result, *p)
		}
	}
	for _, e := range c.Entries {
		add(e.Supervisor)
		add(e.SupervisorAssistant)
		add(e.CounterSupervisor)
	}
	return result, nil
}

func (m *mockProfessorRepo) ListCommissionIDs(_ context.Context, professorID int64) ([]int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var ids []int64
	for id, c := range m.store.commissions {
		for _, e := range c.Entries {
			if e.SupervisorID == professorID ||
				(e.SupervisorAssistantID != nil && *e.SupervisorAssistantID == professorID) ||
				(e.CounterSupervisorID != nil && *e.CounterSupervisorID == professorID) {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

// ── Mock ConfigurationRepository ──

type mockConfigurationRepo struct {
	store *memStore
}

func (m *mockConfigurationRepo) Create(_ context.Context, conf *model.OptimizationConfiguration) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	conf.ID = m.store.id()
	stored := *conf
	m.store.configs[conf.ID] = &stored
	return nil
}

func (m *mockConfigurationRepo) GetByID(_ context.Context, commissionID, id int64) (*model.OptimizationConfiguration, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	conf, ok := m.store.configs[id]
	if !ok || conf.CommissionID != commissionID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *conf
	return &cp, nil
}

func (m *mockConfigurationRepo) ListByCommission(_ context.Context, commissionID int64) ([]model.OptimizationConfiguration, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.store.configsOf(commissionID), nil
}

func (m *mockConfigurationRepo) CountByCommission(ctx context.Context, commissionID int64) (int64, error) {
	confs, _ := m.ListByCommission(ctx, commissionID)
	return int64(len(confs)), nil
}

func (m *mockConfigurationRepo) Update(_ context.Context, conf *model.OptimizationConfiguration) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	stored, ok := m.store.configs[conf.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.RunLock {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *conf
	cp.SolutionCommissions = stored.SolutionCommissions
	cp.ExecutionDetails = stored.ExecutionDetails
	m.store.configs[conf.ID] = &cp
	return nil
}

func (m *mockConfigurationRepo) Lock(_ context.Context, id int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	conf, ok := m.store.configs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if conf.RunLock {
		return pkgerrors.ErrOptimisticLock
	}
	now := time.Now()
	conf.RunLock = true
	conf.LockedAt = &now
	return nil
}

func (m *mockConfigurationRepo) Unlock(_ context.Context, id int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	conf, ok := m.store.configs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if len(conf.ExecutionDetails) == 0 {
		conf.RunLock = false
		conf.LockedAt = nil
	}
	return nil
}

func (m *mockConfigurationRepo) ListLockedWithoutExecutions(_ context.Context) ([]model.OptimizationConfiguration, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var result []model.OptimizationConfiguration
	for _, conf := range m.store.configs {
		if conf.RunLock && len(conf.ExecutionDetails) == 0 {
			result = append(result, *conf)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ── Mock ExecutionRepository ──

type mockExecutionRepo struct {
	store *memStore
}

func (m *mockExecutionRepo) RecordExecution(_ context.Context, rec *model.ExecutionRecord, slots []model.SolutionSlot) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	conf, ok := m.store.configs[rec.OptConfigID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.ID = m.store.id()
	conf.ExecutionDetails = append(conf.ExecutionDetails, *rec)
	for _, slot := range slots {
		slot.ID = m.store.id()
		conf.SolutionCommissions = append(conf.SolutionCommissions, slot)
	}
	return nil
}

func (m *mockExecutionRepo) ListByConfiguration(_ context.Context, configID int64) ([]model.ExecutionRecord, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if conf, ok := m.store.configs[configID]; ok {
		return conf.ExecutionDetails, nil
	}
	return nil, nil
}

func (m *mockExecutionRepo) CountByConfiguration(ctx context.Context, configID int64) (int64, error) {
	recs, _ := m.ListByConfiguration(ctx, configID)
	return int64(len(recs)), nil
}

// ── Mock SolutionRepository ──

type mockSolutionRepo struct {
	store *memStore
}

func (m *mockSolutionRepo) ListByConfiguration(_ context.Context, configID int64) ([]model.SolutionSlot, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if conf, ok := m.store.configs[configID]; ok {
		return conf.SolutionCommissions, nil
	}
	return nil, nil
}

func (m *mockSolutionRepo) CountByConfiguration(ctx context.Context, configID int64) (int64, error) {
	slots, _ := m.ListByConfiguration(ctx, configID)
	return int64(len(slots)), nil
}

// ── Fake JobRunner ──

type fakeRunner struct {
	mu        sync.Mutex
	submitted []*solver.Job
	active    map[int64]bool
	err       error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{active: make(map[int64]bool)}
}

func (f *fakeRunner) Submit(job *solver.Job) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.submitted = append(f.submitted, job)
	f.active[job.Configuration.ID] = true
	return job.ID, nil
}

func (f *fakeRunner) IsActive(configID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[configID]
}

// ── Recording cache ──

type recordingCache struct {
	mu      sync.Mutex
	items   map[int64]*model.Commission
	evicted []int64
}

func newRecordingCache() *recordingCache {
	return &recordingCache{items: make(map[int64]*model.Commission)}
}

func (c *recordingCache) Get(_ context.Context, id int64) (*model.Commission, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[id]
	return v, ok
}

func (c *recordingCache) Set(_ context.Context, commission *model.Commission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[commission.ID] = commission
}

func (c *recordingCache) Evict(_ context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.evicted = append(c.evicted, id)
}

func (c *recordingCache) wasEvicted(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.evicted {
		if e == id {
			return true
		}
	}
	return false
}

// configsLock 直接置位运行锁，模拟已提交的求解
func (m *memStore) configsLock(id int64) error {
	return (&mockConfigurationRepo{store: m}).Lock(context.Background(), id)
}
