package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnout-deployment/internal/model"
	"turnout-deployment/internal/repository"
	pkgredis "turnout-deployment/pkg/redis"
)

var errTransport = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	mu      sync.Mutex
	rows    map[model.Slot]*model.Assignment
	listErr error
	// failOn 对指定岗位的任意写入/读取返回错误
	failOn map[model.Slot]error
	// writes 记录 Create/UpdateName/DeleteBySlot 调用次数
	writes int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{
		rows:   make(map[model.Slot]*model.Assignment),
		failOn: make(map[model.Slot]error),
	}
}

func (m *mockAssignmentRepo) seed(vehicle, position, name string) {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	slot := model.Slot{Vehicle: vehicle, Position: position}
	m.rows[slot] = &model.Assignment{
		ID: "seed-" + vehicle + "-" + position, VehicleCode: vehicle, PositionCode: position,
		PersonnelName: name, CreatedAt: t, UpdatedAt: t,
	}
}

func (m *mockAssignmentRepo) get(vehicle, position string) (*model.Assignment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[model.Slot{Vehicle: vehicle, Position: position}]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

func (m *mockAssignmentRepo) List(_ context.Context) ([]model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]model.Assignment, 0, len(m.rows))
	for _, a := range m.rows {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].VehicleCode != result[j].VehicleCode {
			return result[i].VehicleCode < result[j].VehicleCode
		}
		return result[i].PositionCode < result[j].PositionCode
	})
	return result, nil
}

func (m *mockAssignmentRepo) GetBySlot(_ context.Context, vehicle, position string) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := model.Slot{Vehicle: vehicle, Position: position}
	if err := m.failOn[slot]; err != nil {
		return nil, err
	}
	a, ok := m.rows[slot]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := a.Slot()
	if err := m.failOn[slot]; err != nil {
		return err
	}
	m.writes++
	if existing, ok := m.rows[slot]; ok {
		existing.PersonnelName = a.PersonnelName
		existing.UpdatedAt = a.UpdatedAt
		return nil
	}
	cp := *a
	m.rows[slot] = &cp
	return nil
}

func (m *mockAssignmentRepo) UpdateName(_ context.Context, vehicle, position, name string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := model.Slot{Vehicle: vehicle, Position: position}
	if err := m.failOn[slot]; err != nil {
		return 0, err
	}
	m.writes++
	a, ok := m.rows[slot]
	if !ok {
		return 0, nil
	}
	a.PersonnelName = name
	a.UpdatedAt = at
	return 1, nil
}

func (m *mockAssignmentRepo) DeleteBySlot(_ context.Context, vehicle, position string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := model.Slot{Vehicle: vehicle, Position: position}
	if err := m.failOn[slot]; err != nil {
		return 0, err
	}
	m.writes++
	if _, ok := m.rows[slot]; !ok {
		return 0, nil
	}
	delete(m.rows, slot)
	return 1, nil
}

// ── Mock DeploymentRepository ──

type mockDeploymentRepo struct {
	mu      sync.Mutex
	rows    []model.CurrentDeployment
	err     error
	touches int
}

func newMockDeploymentRepo() *mockDeploymentRepo {
	return &mockDeploymentRepo{}
}

func (m *mockDeploymentRepo) Get(_ context.Context) (*model.CurrentDeployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.rows[0]
	return &cp, nil
}

func (m *mockDeploymentRepo) Touch(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.touches++
	if len(m.rows) == 0 {
		m.rows = append(m.rows, model.CurrentDeployment{ID: model.CurrentDeploymentID, LastUpdated: at})
		return nil
	}
	m.rows[0].LastUpdated = at
	return nil
}

// ── Mock PersonnelRepository ──

type mockPersonnelRepo struct {
	names []string
	err   error
	calls int
	// onList 在返回名单前调用，用于模拟查询期间的并发操作
	onList func()
}

func newMockPersonnelRepo(names ...string) *mockPersonnelRepo {
	return &mockPersonnelRepo{names: names}
}

func (m *mockPersonnelRepo) ListNames(_ context.Context) ([]string, error) {
	m.calls++
	if m.onList != nil {
		m.onList()
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out, nil
}

func (m *mockPersonnelRepo) BulkInsert(_ context.Context, names []string) (int64, error) {
	m.names = append(m.names, names...)
	return int64(len(names)), nil
}

// ── Mock NameCache ──

type mockNameCache struct {
	data   map[string][]string
	getErr error
	sets   int
}

func newMockNameCache() *mockNameCache {
	return &mockNameCache{data: make(map[string][]string)}
}

func (m *mockNameCache) GetStrings(_ context.Context, key string) ([]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, pkgredis.ErrCacheMiss
	}
	return v, nil
}

func (m *mockNameCache) SetStrings(_ context.Context, key string, values []string, _ time.Duration) error {
	m.data[key] = values
	m.sets++
	return nil
}

// ── 测试辅助 ──

type testFixture struct {
	assignments *mockAssignmentRepo
	deployments *mockDeploymentRepo
	personnel   *mockPersonnelRepo
	repo        *repository.Repository
	store       *assignmentStore
	clock       *fakeClock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestFixture() *testFixture {
	f := &testFixture{
		assignments: newMockAssignmentRepo(),
		deployments: newMockDeploymentRepo(),
		personnel:   newMockPersonnelRepo(),
		clock:       &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
	}
	f.repo = &repository.Repository{
		Assignment: f.assignments,
		Deployment: f.deployments,
		Personnel:  f.personnel,
	}
	store := NewAssignmentStore(f.repo, time.Second, zap.NewNop()).(*assignmentStore)
	store.now = f.clock.Now
	ids := 0
	store.newID = func() string {
		ids++
		return fmt.Sprintf("gen-id-%d", ids)
	}
	f.store = store
	return f
}

func slotOf(vehicle, position string) model.Slot {
	return model.Slot{Vehicle: vehicle, Position: position}
}
