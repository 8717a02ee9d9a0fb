package service

import (
	"errors"
	"testing"

	"turnout-deployment/internal/model"
)

func TestNewDraft_AllSlotsEmpty(t *testing.T) {
	d := NewDraft()
	values := d.Values()
	if len(values) != model.SlotCount() {
		t.Fatalf("期望 %d 个岗位，实际 %d", model.SlotCount(), len(values))
	}
	for _, v := range values {
		if v.Name != "" {
			t.Errorf("%s/%s 期望为空，实际 %q", v.Vehicle, v.Position, v.Name)
		}
	}
	if d.IsDirty() {
		t.Error("新草稿不应为 dirty")
	}
}

func TestDraft_Initialize(t *testing.T) {
	d := NewDraft()
	_ = d.SetSlot("PL181", "FF1", "SGT ADLY")

	snapshot := model.Snapshot{}
	snapshot.Set("PL181", "RC", "LTA SHABIR")
	snapshot.Set("A181D", "PRM", "SGT FAUZI")
	snapshot.Set("PL181", "XX9", "GHOST")
	snapshot.Set("TRUCK9", "RC", "NOBODY")

	rejected := d.Initialize(snapshot)
	if len(rejected) != 2 {
		t.Fatalf("期望拒绝 2 个编制外岗位，实际 %v", rejected)
	}
	if got := d.ValueOf("PL181", "RC"); got != "LTA SHABIR" {
		t.Errorf("PL181/RC = %q", got)
	}
	if got := d.ValueOf("PL181", "FF1"); got != "" {
		t.Errorf("快照缺席的岗位应置空，实际 %q", got)
	}
	if got := d.ValueOf("PL181", "XX9"); got != "" {
		t.Errorf("编制外岗位不应进入草稿，实际 %q", got)
	}
	if d.IsDirty() {
		t.Error("Initialize 后不应为 dirty")
	}
	if len(d.Values()) != model.SlotCount() {
		t.Error("键空间不应变化")
	}
}

func TestDraft_SetSlot(t *testing.T) {
	d := NewDraft()

	if err := d.SetSlot("PL181", "RC", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.IsDirty() {
		t.Error("取值未变化不应标记 dirty")
	}

	if err := d.SetSlot("PL181", "RC", "LTA SHABIR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsDirty() {
		t.Error("取值变化应标记 dirty")
	}

	err := d.SetSlot("LF181E", "RC", "LTA SHABIR")
	if !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("期望 ErrUnknownSlot，实际 %v", err)
	}
	if got := d.ValueOf("LF181E", "RC"); got != "" {
		t.Errorf("未知岗位不应被写入，实际 %q", got)
	}
}

func TestDraft_ResetAllAndMarkSaved(t *testing.T) {
	d := NewDraft()
	snapshot := model.Snapshot{}
	snapshot.Set("PL181", "RC", "LTA SHABIR")
	d.Initialize(snapshot)

	d.ResetAll()
	if !d.IsDirty() {
		t.Error("ResetAll 应标记 dirty")
	}
	for _, v := range d.Values() {
		if v.Name != "" {
			t.Errorf("%s/%s 未被清空", v.Vehicle, v.Position)
		}
	}

	d.MarkSaved()
	if d.IsDirty() {
		t.Error("MarkSaved 后不应为 dirty")
	}
}

func TestDraft_SnapshotForExport_Order(t *testing.T) {
	d := NewDraft()
	_ = d.SetSlot("A182D", "EMT2", "LCP CHINMAY")
	_ = d.SetSlot("PL181", "FF1", "SGT ADLY")
	_ = d.SetSlot("PL181", "RC", "LTA SHABIR")
	_ = d.SetSlot("A181D", "PRM", "SGT FAUZI")

	got := d.SnapshotForExport()
	want := []SlotValue{
		{Vehicle: "PL181", Position: "RC", Name: "LTA SHABIR"},
		{Vehicle: "PL181", Position: "FF1", Name: "SGT ADLY"},
		{Vehicle: "A181D", Position: "PRM", Name: "SGT FAUZI"},
		{Vehicle: "A182D", Position: "EMT2", Name: "LCP CHINMAY"},
	}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 行，实际 %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("第 %d 行: 期望 %v，实际 %v", i, want[i], got[i])
		}
	}
}

func TestDraft_SnapshotForExport_Empty(t *testing.T) {
	if got := NewDraft().SnapshotForExport(); len(got) != 0 {
		t.Errorf("空草稿不应导出任何行，实际 %v", got)
	}
}
