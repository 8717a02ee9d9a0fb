package model

import "sort"

// ── 固定车辆/岗位编制 ──
//
// 5 辆车、25 个岗位，运行期间不会增减，只有岗位上的人员姓名会变化。

// Slot 岗位：(车辆代号, 岗位代号)，人员分配的最小单位
type Slot struct {
	Vehicle  string `json:"vehicle"`
	Position string `json:"position"`
}

// Vehicles 车辆固定顺序（汇总页、导出均按此顺序）
var Vehicles = []string{"PL181", "LF181E", "CPL181E", "A181D", "A182D"}

var vehiclePositions = map[string][]string{
	"PL181":   {"RC", "DRC", "PO", "SC", "FF1", "FF2", "FF3"},
	"LF181E":  {"PO", "SC", "FF1", "FF2"},
	"CPL181E": {"PO", "SC", "FF1", "FF2", "FF3", "FF4"},
	"A181D":   {"PRM", "EMTD", "EMT1", "EMT2"},
	"A182D":   {"PRM", "EMTD", "EMT1", "EMT2"},
}

// positionRank 岗位展示排序，未列出的岗位排最后
var positionRank = map[string]int{
	"RC":   0,
	"DRC":  1,
	"PO":   2,
	"SC":   3,
	"FF1":  4,
	"FF2":  5,
	"FF3":  6,
	"FF4":  7,
	"PRM":  0,
	"EMTD": 1,
	"EMT1": 2,
	"EMT2": 3,
}

const unrankedPosition = 99

var roleDescriptions = map[string]string{
	"RC":   "ROTA COMMANDER",
	"DRC":  "DEPUTY ROTA COMMANDER",
	"PO":   "SECTION COMMANDER",
	"SC":   "SECTION COMMANDER",
	"FF1":  "FIREFIGHTER",
	"FF2":  "FIREFIGHTER",
	"FF3":  "FIREFIGHTER",
	"FF4":  "FIREFIGHTER",
	"PRM":  "PARAMEDIC",
	"EMTD": "DRIVER",
	"EMT1": "EMT",
	"EMT2": "EMT",
}

// PositionsFor 返回车辆的岗位列表（编制顺序）；未知车辆返回 nil
func PositionsFor(vehicle string) []string {
	positions, ok := vehiclePositions[vehicle]
	if !ok {
		return nil
	}
	out := make([]string, len(positions))
	copy(out, positions)
	return out
}

// AllSlots 按编制顺序返回全部岗位
func AllSlots() []Slot {
	slots := make([]Slot, 0, SlotCount())
	for _, v := range Vehicles {
		for _, p := range vehiclePositions[v] {
			slots = append(slots, Slot{Vehicle: v, Position: p})
		}
	}
	return slots
}

// SlotCount 编制岗位总数
func SlotCount() int {
	n := 0
	for _, positions := range vehiclePositions {
		n += len(positions)
	}
	return n
}

// IsKnownSlot 判断 (vehicle, position) 是否属于固定编制
func IsKnownSlot(vehicle, position string) bool {
	for _, p := range vehiclePositions[vehicle] {
		if p == position {
			return true
		}
	}
	return false
}

// PositionRank 岗位展示序号
func PositionRank(position string) int {
	if r, ok := positionRank[position]; ok {
		return r
	}
	return unrankedPosition
}

// RoleDescription 岗位全称；未知岗位返回空串
func RoleDescription(position string) string {
	return roleDescriptions[position]
}

// SortPositions 按展示序号就地排序（序号相同保持原顺序）
func SortPositions(positions []string) {
	sort.SliceStable(positions, func(i, j int) bool {
		return PositionRank(positions[i]) < PositionRank(positions[j])
	})
}

// [自证通过] internal/model/fleet.go
