package service

import (
	"errors"

	"turnout-deployment/internal/model"
)

// ErrUnknownSlot 车辆/岗位不属于固定编制
var ErrUnknownSlot = errors.New("未知的车辆或岗位")

// SlotValue 草稿中单个岗位的取值
type SlotValue struct {
	Vehicle  string
	Position string
	Name     string
}

// Draft 部署编辑草稿：会话内的全部岗位工作副本
//
// 键空间在构造时即固定为编制内的 25 个岗位，运行期不增不减。
// 不是并发安全的，由所属 Session 加锁访问。
type Draft struct {
	values map[model.Slot]string
	dirty  bool
}

// NewDraft 创建全部岗位为空的草稿
func NewDraft() *Draft {
	d := &Draft{values: make(map[model.Slot]string, model.SlotCount())}
	for _, slot := range model.AllSlots() {
		d.values[slot] = ""
	}
	return d
}

// Initialize 以持久层快照覆盖全部岗位，快照缺席的岗位置空，并清除 dirty。
// 快照中不属于编制的 (vehicle, position) 被拒绝，原样返回给调用方记录。
func (d *Draft) Initialize(snapshot model.Snapshot) (rejected []model.Slot) {
	for slot := range d.values {
		d.values[slot] = snapshot.Get(slot.Vehicle, slot.Position)
	}
	for vehicle, positions := range snapshot {
		for position := range positions {
			if !model.IsKnownSlot(vehicle, position) {
				rejected = append(rejected, model.Slot{Vehicle: vehicle, Position: position})
			}
		}
	}
	d.dirty = false
	return rejected
}

// SetSlot 覆盖岗位取值；仅当取值实际变化时标记 dirty
func (d *Draft) SetSlot(vehicle, position, name string) error {
	slot := model.Slot{Vehicle: vehicle, Position: position}
	current, ok := d.values[slot]
	if !ok {
		return ErrUnknownSlot
	}
	if current != name {
		d.values[slot] = name
		d.dirty = true
	}
	return nil
}

// ResetAll 清空全部岗位并标记 dirty
func (d *Draft) ResetAll() {
	for slot := range d.values {
		d.values[slot] = ""
	}
	d.dirty = true
}

// IsDirty 自上次 Initialize / 保存成功以来是否有改动
func (d *Draft) IsDirty() bool {
	return d.dirty
}

// MarkSaved 全部岗位写入成功后清除 dirty
func (d *Draft) MarkSaved() {
	d.dirty = false
}

// ValueOf 读取岗位取值；未知岗位返回空串
func (d *Draft) ValueOf(vehicle, position string) string {
	return d.values[model.Slot{Vehicle: vehicle, Position: position}]
}

// Values 按编制顺序返回全部岗位取值（含空串）
func (d *Draft) Values() []SlotValue {
	out := make([]SlotValue, 0, len(d.values))
	for _, slot := range model.AllSlots() {
		out = append(out, SlotValue{Vehicle: slot.Vehicle, Position: slot.Position, Name: d.values[slot]})
	}
	return out
}

// SnapshotForExport 返回全部非空岗位：车辆按固定顺序，车内岗位按展示序号
func (d *Draft) SnapshotForExport() []SlotValue {
	var out []SlotValue
	for _, vehicle := range model.Vehicles {
		positions := model.PositionsFor(vehicle)
		model.SortPositions(positions)
		for _, position := range positions {
			name := d.values[model.Slot{Vehicle: vehicle, Position: position}]
			if name == "" {
				continue
			}
			out = append(out, SlotValue{Vehicle: vehicle, Position: position, Name: name})
		}
	}
	return out
}
