package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"turnout-deployment/internal/model"
	pkgerrors "turnout-deployment/pkg/errors"
)

// SaveResult 一次保存的汇总结果
type SaveResult struct {
	// Written 实际发起的岗位写入次数
	Written int
	// Failures 写入失败的岗位；已成功的写入不回滚
	Failures []*pkgerrors.SlotWriteError
	// TimestampErr 刷新部署时间戳失败
	TimestampErr error
}

// Success 全部岗位写入且时间戳刷新均成功
func (r *SaveResult) Success() bool {
	return len(r.Failures) == 0 && r.TimestampErr == nil
}

// Reconciler 草稿与持久层之间的同步引擎
type Reconciler interface {
	// Load 读取持久层并覆盖草稿，返回被拒绝的未知岗位
	Load(ctx context.Context, draft *Draft) ([]model.Slot, error)
	// Save 将草稿的全部编制岗位同步到持久层，逐岗位尽力写入
	Save(ctx context.Context, values []SlotValue) *SaveResult
}

type reconciler struct {
	store  AssignmentStore
	logger *zap.Logger
}

// NewReconciler 创建 Reconciler
func NewReconciler(store AssignmentStore, logger *zap.Logger) Reconciler {
	return &reconciler{store: store, logger: logger}
}

func (r *reconciler) Load(ctx context.Context, draft *Draft) ([]model.Slot, error) {
	snapshot, err := r.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	rejected := draft.Initialize(snapshot)
	if len(rejected) > 0 {
		r.logger.Warn("持久层存在编制外岗位，已忽略", zap.Any("slots", rejected))
	}
	return rejected, nil
}

// Save 覆盖全部编制岗位（而非仅改动过的岗位），以便清空/重置能删除持久层记录。
//
// 先重新读取持久层，只对取值不同的岗位调用 Upsert；未改动的草稿不产生任何写入。
// 读取失败时退化为对全部岗位逐一 Upsert，由 Upsert 自身保证结果正确。
// 至少发起一次写入后才刷新部署时间戳。
func (r *reconciler) Save(ctx context.Context, values []SlotValue) *SaveResult {
	result := &SaveResult{}

	current, err := r.store.LoadAll(ctx)
	blind := err != nil
	if blind {
		r.logger.Warn("保存前读取持久层失败，改为全量写入", zap.Error(err))
	}

	for _, v := range values {
		if !model.IsKnownSlot(v.Vehicle, v.Position) {
			continue
		}
		if !blind && current.Get(v.Vehicle, v.Position) == v.Name {
			continue
		}
		result.Written++
		if err := r.store.Upsert(ctx, v.Vehicle, v.Position, v.Name); err != nil {
			var swe *pkgerrors.SlotWriteError
			if !errors.As(err, &swe) {
				swe = &pkgerrors.SlotWriteError{Vehicle: v.Vehicle, Position: v.Position, Err: err}
			}
			result.Failures = append(result.Failures, swe)
		}
	}

	if result.Written > 0 {
		result.TimestampErr = r.store.TouchDeploymentTimestamp(ctx)
	}

	if result.Success() {
		r.logger.Info("部署保存完成", zap.Int("written", result.Written))
	} else {
		r.logger.Warn("部署部分保存失败",
			zap.Int("written", result.Written),
			zap.Int("failed", len(result.Failures)),
			zap.NamedError("timestamp_error", result.TimestampErr),
		)
	}
	return result
}
