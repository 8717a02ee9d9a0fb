package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"turnout-deployment/internal/dto"
	"turnout-deployment/internal/model"
)

// ── 部署模块业务错误 ──

var (
	ErrUnknownPersonnel = errors.New("人员不在名册中")
)

// DeploymentService 部署业务接口
//
// 设计说明：
//   - 汇总页始终直接读取持久层，不读草稿，可能观察到其他会话保存到一半的状态
//   - 草稿只属于当前会话，离开编辑页时未保存的改动被丢弃
//   - 持久层不可用时返回可用数据并附带 ErrTransportUnavailable，由 Handler 降级为提示
type DeploymentService interface {
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
	Catalog(ctx context.Context) *dto.CatalogResponse
	OpenEdit(ctx context.Context, sess *Session) (*dto.DraftResponse, error)
	OpenSummary(ctx context.Context, sess *Session) (*dto.SummaryResponse, error)
	GetDraft(ctx context.Context, sess *Session) *dto.DraftResponse
	SetSlot(ctx context.Context, sess *Session, vehicle, position, name string) (*dto.DraftResponse, error)
	ResetAll(ctx context.Context, sess *Session) *dto.DraftResponse
	Save(ctx context.Context, sess *Session) *dto.SaveResponse
}

type deploymentService struct {
	store      AssignmentStore
	reconciler Reconciler
	catalog    CatalogService
	logger     *zap.Logger
}

// NewDeploymentService 创建 DeploymentService 实例
func NewDeploymentService(store AssignmentStore, reconciler Reconciler, catalog CatalogService, logger *zap.Logger) DeploymentService {
	return &deploymentService{store: store, reconciler: reconciler, catalog: catalog, logger: logger}
}

// ────────────────────── Summary ──────────────────────

func (s *deploymentService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	snapshot, err := s.store.LoadAll(ctx)
	if err != nil {
		return buildSummary(nil, nil), err
	}

	lastUpdated, err := s.store.LastUpdated(ctx)
	if err != nil {
		s.logger.Warn("读取部署时间戳失败", zap.Error(err))
		lastUpdated = nil
	}

	var formatted *string
	if lastUpdated != nil {
		v := lastUpdated.UTC().Format("2006-01-02T15:04:05Z")
		formatted = &v
	}
	return buildSummary(snapshot, formatted), nil
}

func buildSummary(snapshot model.Snapshot, lastUpdated *string) *dto.SummaryResponse {
	resp := &dto.SummaryResponse{
		Vehicles:    make([]dto.VehicleSummary, 0, len(model.Vehicles)),
		Empty:       snapshot.Len() == 0,
		LastUpdated: lastUpdated,
	}
	for _, vehicle := range model.Vehicles {
		positions := model.PositionsFor(vehicle)
		model.SortPositions(positions)

		vs := dto.VehicleSummary{Vehicle: vehicle, Positions: []dto.PositionEntry{}}
		for _, position := range positions {
			name := snapshot.Get(vehicle, position)
			if name == "" {
				continue
			}
			vs.Positions = append(vs.Positions, dto.PositionEntry{
				Position:        position,
				RoleDescription: model.RoleDescription(position),
				Name:            name,
			})
		}
		vs.HasAssignments = len(vs.Positions) > 0
		resp.Vehicles = append(resp.Vehicles, vs)
	}
	return resp
}

// ────────────────────── Catalog ──────────────────────

func (s *deploymentService) Catalog(ctx context.Context) *dto.CatalogResponse {
	c := s.catalog.ListNames(ctx)
	return &dto.CatalogResponse{Names: c.Names, Source: c.Source}
}

// ────────────────────── 导航 ──────────────────────

// OpenEdit 进入编辑页：从持久层重新加载草稿并清除 dirty；
// 加载失败时保留会话现有草稿
func (s *deploymentService) OpenEdit(ctx context.Context, sess *Session) (*dto.DraftResponse, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.page = PageEdit
	_, err := s.reconciler.Load(ctx, sess.draft)
	return draftResponse(sess), err
}

// OpenSummary 返回汇总页：有未保存改动时丢弃（重新加载）
func (s *deploymentService) OpenSummary(ctx context.Context, sess *Session) (*dto.SummaryResponse, error) {
	sess.mu.Lock()
	sess.page = PageSummary
	if sess.draft.IsDirty() {
		if _, err := s.reconciler.Load(ctx, sess.draft); err != nil {
			s.logger.Warn("丢弃未保存改动时重新加载失败", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	sess.mu.Unlock()

	return s.Summary(ctx)
}

// ────────────────────── 草稿编辑 ──────────────────────

func (s *deploymentService) GetDraft(_ context.Context, sess *Session) *dto.DraftResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return draftResponse(sess)
}

// SetSlot 修改岗位人员。新姓名须在当前名册中；与现值相同（包括名册已移除的旧姓名）时直接放行
func (s *deploymentService) SetSlot(ctx context.Context, sess *Session, vehicle, position, name string) (*dto.DraftResponse, error) {
	if !model.IsKnownSlot(vehicle, position) {
		return nil, ErrUnknownSlot
	}

	// 名册查询可能访问缓存/数据库，不持有会话锁；与现值的比较和写入在同一次加锁内完成
	var catalog Catalog
	if name != "" {
		catalog = s.catalog.ListNames(ctx)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if name != "" && name != sess.draft.ValueOf(vehicle, position) && !catalog.Contains(name) {
		return nil, ErrUnknownPersonnel
	}
	if err := sess.draft.SetSlot(vehicle, position, name); err != nil {
		return nil, err
	}
	return draftResponse(sess), nil
}

func (s *deploymentService) ResetAll(_ context.Context, sess *Session) *dto.DraftResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.draft.ResetAll()
	return draftResponse(sess)
}

// ────────────────────── Save ──────────────────────

// Save 同步草稿到持久层。保存不可中途取消：脱离请求的取消信号，跑完全部岗位后才返回。
// 全部成功时清除 dirty 并回到汇总页；部分失败时保留 dirty 供用户手动重试
func (s *deploymentService) Save(ctx context.Context, sess *Session) *dto.SaveResponse {
	ctx = context.WithoutCancel(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result := s.reconciler.Save(ctx, sess.draft.Values())
	if result.Success() {
		sess.draft.MarkSaved()
		sess.page = PageSummary
	}

	resp := &dto.SaveResponse{
		Success: result.Success(),
		Written: result.Written,
		Page:    string(sess.page),
		Dirty:   sess.draft.IsDirty(),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, dto.SlotFailure{
			Vehicle:  f.Vehicle,
			Position: f.Position,
			Error:    f.Err.Error(),
		})
	}
	if result.TimestampErr != nil {
		resp.TimestampError = result.TimestampErr.Error()
	}
	return resp
}

// draftResponse 调用方须持有 sess.mu
func draftResponse(sess *Session) *dto.DraftResponse {
	resp := &dto.DraftResponse{
		Page:     string(sess.page),
		Dirty:    sess.draft.IsDirty(),
		Vehicles: make([]dto.VehicleDraft, 0, len(model.Vehicles)),
	}
	for _, vehicle := range model.Vehicles {
		vd := dto.VehicleDraft{Vehicle: vehicle}
		for _, position := range model.PositionsFor(vehicle) {
			vd.Slots = append(vd.Slots, dto.PositionEntry{
				Position:        position,
				RoleDescription: model.RoleDescription(position),
				Name:            sess.draft.ValueOf(vehicle, position),
			})
		}
		resp.Vehicles = append(resp.Vehicles, vd)
	}
	return resp
}
