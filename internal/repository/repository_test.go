package repository_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"turnout-deployment/internal/model"
	"turnout-deployment/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup（内存 SQLite，每个测试独立库）
// ═══════════════════════════════════════════════════════════

func newTestRepo(t *testing.T) *repository.Repository {
	t.Helper()
	return repository.NewRepository(newTestDB(t))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取 sql.DB 失败: %v", err)
	}
	// :memory: 每个连接独立，限制单连接保证同一库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.Tables()...); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	return db
}

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// ═══════════════════════════════════════════════════════════
// AssignmentRepository
// ═══════════════════════════════════════════════════════════

func TestAssignmentRepo_CreateGetList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := &model.Assignment{
		ID: "id-1", VehicleCode: "PL181", PositionCode: "RC", PersonnelName: "LTA SHABIR",
		CreatedAt: t0, UpdatedAt: t0,
	}
	if err := repo.Assignment.Create(ctx, a); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	got, err := repo.Assignment.GetBySlot(ctx, "PL181", "RC")
	if err != nil {
		t.Fatalf("GetBySlot 失败: %v", err)
	}
	if got.PersonnelName != "LTA SHABIR" || got.ID != "id-1" {
		t.Errorf("读取结果不符: %+v", got)
	}
	if !got.CreatedAt.Equal(t0) || !got.UpdatedAt.Equal(t0) {
		t.Errorf("时间戳应原样保存: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}

	list, err := repo.Assignment.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List 期望 1 条，实际 %d 条, err=%v", len(list), err)
	}

	_, err = repo.Assignment.GetBySlot(ctx, "PL181", "DRC")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("不存在的岗位应返回 ErrRecordNotFound，实际: %v", err)
	}
}

func TestAssignmentRepo_CreateConflictLastWriteWins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &model.Assignment{ID: "id-1", VehicleCode: "A181D", PositionCode: "PRM", PersonnelName: "WO2 AMIN", CreatedAt: t0, UpdatedAt: t0}
	later := t0.Add(time.Minute)
	second := &model.Assignment{ID: "id-2", VehicleCode: "A181D", PositionCode: "PRM", PersonnelName: "SGT SULTAN", CreatedAt: later, UpdatedAt: later}

	if err := repo.Assignment.Create(ctx, first); err != nil {
		t.Fatalf("首次 Create 失败: %v", err)
	}
	if err := repo.Assignment.Create(ctx, second); err != nil {
		t.Fatalf("冲突 Create 应转为更新: %v", err)
	}

	list, _ := repo.Assignment.List(ctx)
	if len(list) != 1 {
		t.Fatalf("同一岗位只能有一条记录，实际 %d 条", len(list))
	}
	if list[0].PersonnelName != "SGT SULTAN" {
		t.Errorf("应以最后一次写入为准，实际=%s", list[0].PersonnelName)
	}
	if list[0].ID != "id-1" || !list[0].CreatedAt.Equal(t0) {
		t.Errorf("冲突更新不应改变 id / created_at: %+v", list[0])
	}
}

func TestAssignmentRepo_UpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_ = repo.Assignment.Create(ctx, &model.Assignment{ID: "id-1", VehicleCode: "LF181E", PositionCode: "PO", PersonnelName: "SGT FAUZI", CreatedAt: t0, UpdatedAt: t0})

	later := t0.Add(time.Hour)
	n, err := repo.Assignment.UpdateName(ctx, "LF181E", "PO", "SGT ADLY", later)
	if err != nil || n != 1 {
		t.Fatalf("UpdateName 期望影响 1 行，实际 %d, err=%v", n, err)
	}
	got, _ := repo.Assignment.GetBySlot(ctx, "LF181E", "PO")
	if got.PersonnelName != "SGT ADLY" || !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(t0) {
		t.Errorf("更新结果不符: %+v", got)
	}

	n, err = repo.Assignment.DeleteBySlot(ctx, "LF181E", "PO")
	if err != nil || n != 1 {
		t.Fatalf("DeleteBySlot 期望影响 1 行，实际 %d, err=%v", n, err)
	}
	n, err = repo.Assignment.DeleteBySlot(ctx, "LF181E", "PO")
	if err != nil || n != 0 {
		t.Errorf("重复删除应影响 0 行，实际 %d, err=%v", n, err)
	}
}

// ═══════════════════════════════════════════════════════════
// DeploymentRepository
// ═══════════════════════════════════════════════════════════

func TestDeploymentRepo_Touch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Deployment.Get(ctx); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("空表应返回 ErrRecordNotFound，实际: %v", err)
	}

	if err := repo.Deployment.Touch(ctx, t0); err != nil {
		t.Fatalf("首次 Touch 失败: %v", err)
	}
	later := t0.Add(2 * time.Hour)
	if err := repo.Deployment.Touch(ctx, later); err != nil {
		t.Fatalf("再次 Touch 失败: %v", err)
	}

	d, err := repo.Deployment.Get(ctx)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if d.ID != model.CurrentDeploymentID || !d.LastUpdated.Equal(later) {
		t.Errorf("元数据不符: %+v", d)
	}
}

func TestDeploymentRepo_ConcurrentTouchKeepsOneRow(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Deployment.Touch(ctx, t0.Add(time.Duration(i)*time.Minute))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("并发 Touch 不应失败: %v", err)
		}
	}

	var count int64
	if err := db.Model(&model.CurrentDeployment{}).Count(&count).Error; err != nil {
		t.Fatalf("Count 失败: %v", err)
	}
	if count != 1 {
		t.Fatalf("current_deployment 应只有 1 行，实际 %d 行", count)
	}
}

// ═══════════════════════════════════════════════════════════
// PersonnelRepository
// ═══════════════════════════════════════════════════════════

func TestPersonnelRepo_BulkInsertAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Personnel.BulkInsert(ctx, []string{"WO2 AMIN", "LTA SHABIR"})
	if err != nil || n != 2 {
		t.Fatalf("BulkInsert 期望新增 2 条，实际 %d, err=%v", n, err)
	}
	n, err = repo.Personnel.BulkInsert(ctx, []string{"LTA SHABIR", "CPL PUTRA"})
	if err != nil {
		t.Fatalf("重复导入不应报错: %v", err)
	}
	if n != 1 {
		t.Errorf("重复姓名应忽略，期望新增 1 条，实际 %d", n)
	}

	names, err := repo.Personnel.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames 失败: %v", err)
	}
	want := []string{"CPL PUTRA", "LTA SHABIR", "WO2 AMIN"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListNames=%v，期望 %v", names, want)
	}
}
