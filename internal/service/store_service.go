package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"turnout-deployment/internal/model"
	"turnout-deployment/internal/repository"
	pkgerrors "turnout-deployment/pkg/errors"
)

// AssignmentStore 岗位分配持久层抽象
//
// 三类操作彼此独立，对各自岗位幂等；并发会话写同一岗位以最后一次写入为准，
// 不做版本校验。失败不自动重试。
type AssignmentStore interface {
	// LoadAll 读取全部分配记录并按车辆分组；失败时错误包装 ErrTransportUnavailable
	LoadAll(ctx context.Context) (model.Snapshot, error)
	// Upsert 非空姓名创建/更新，空姓名删除；失败返回 *SlotWriteError
	Upsert(ctx context.Context, vehicle, position, name string) error
	// TouchDeploymentTimestamp 确保元数据行存在并刷新 last_updated
	TouchDeploymentTimestamp(ctx context.Context) error
	// LastUpdated 元数据时间戳；尚无记录时返回 nil
	LastUpdated(ctx context.Context) (*time.Time, error)
}

type assignmentStore struct {
	repo      *repository.Repository
	logger    *zap.Logger
	opTimeout time.Duration
	now       func() time.Time
	newID     func() string
}

// NewAssignmentStore 创建 AssignmentStore；opTimeout 限制单次持久层调用时长
func NewAssignmentStore(repo *repository.Repository, opTimeout time.Duration, logger *zap.Logger) AssignmentStore {
	return &assignmentStore{
		repo:      repo,
		logger:    logger,
		opTimeout: opTimeout,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (s *assignmentStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// ────────────────────── LoadAll ──────────────────────

func (s *assignmentStore) LoadAll(ctx context.Context) (model.Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := s.repo.Assignment.List(ctx)
	if err != nil {
		s.logger.Warn("读取岗位分配失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrTransportUnavailable, err)
	}

	snapshot := make(model.Snapshot)
	for _, item := range items {
		// 空姓名记录视为未分配
		if item.PersonnelName == "" {
			continue
		}
		snapshot.Set(item.VehicleCode, item.PositionCode, item.PersonnelName)
	}
	return snapshot, nil
}

// ────────────────────── Upsert ──────────────────────

func (s *assignmentStore) Upsert(ctx context.Context, vehicle, position, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.upsert(ctx, vehicle, position, name); err != nil {
		s.logger.Warn("岗位写入失败",
			zap.String("vehicle", vehicle),
			zap.String("position", position),
			zap.Error(err),
		)
		return &pkgerrors.SlotWriteError{Vehicle: vehicle, Position: position, Err: err}
	}
	return nil
}

func (s *assignmentStore) upsert(ctx context.Context, vehicle, position, name string) error {
	existing, err := s.repo.Assignment.GetBySlot(ctx, vehicle, position)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	exists := existing != nil

	switch {
	case name == "" && !exists:
		return nil
	case name == "" && exists:
		_, err := s.repo.Assignment.DeleteBySlot(ctx, vehicle, position)
		return err
	case exists:
		affected, err := s.repo.Assignment.UpdateName(ctx, vehicle, position, name, s.now())
		if err != nil {
			return err
		}
		if affected > 0 {
			return nil
		}
		// 读取后被其他会话删除，按新建处理
	}

	now := s.now()
	return s.repo.Assignment.Create(ctx, &model.Assignment{
		ID:            s.newID(),
		VehicleCode:   vehicle,
		PositionCode:  position,
		PersonnelName: name,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// ────────────────────── Deployment metadata ──────────────────────

func (s *assignmentStore) TouchDeploymentTimestamp(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.Deployment.Touch(ctx, s.now()); err != nil {
		s.logger.Warn("刷新部署时间戳失败", zap.Error(err))
		return fmt.Errorf("%w: %v", pkgerrors.ErrTransportUnavailable, err)
	}
	return nil
}

func (s *assignmentStore) LastUpdated(ctx context.Context) (*time.Time, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.repo.Deployment.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrTransportUnavailable, err)
	}
	t := current.LastUpdated
	return &t, nil
}
