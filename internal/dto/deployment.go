package dto

// ── 部署模块 DTO ──

// SetSlotRequest 设置岗位人员请求；name 为空串表示清空该岗位
type SetSlotRequest struct {
	Name *string `json:"name" binding:"required,max=100"`
}

// ── 响应 ──

// PositionEntry 岗位条目
type PositionEntry struct {
	Position        string `json:"position"`
	RoleDescription string `json:"role_description"`
	Name            string `json:"name"`
}

// VehicleSummary 汇总页单车信息（仅含已分配岗位，按岗位序号排序）
type VehicleSummary struct {
	Vehicle        string          `json:"vehicle"`
	HasAssignments bool            `json:"has_assignments"`
	Positions      []PositionEntry `json:"positions"`
}

// SummaryResponse 汇总页响应（直接读取持久层，不读草稿）
type SummaryResponse struct {
	Vehicles    []VehicleSummary `json:"vehicles"`
	Empty       bool             `json:"empty"`
	LastUpdated *string          `json:"last_updated,omitempty"`
}

// VehicleDraft 编辑页单车信息（包含全部编制岗位，未分配为空串）
type VehicleDraft struct {
	Vehicle string          `json:"vehicle"`
	Slots   []PositionEntry `json:"slots"`
}

// DraftResponse 编辑草稿响应
type DraftResponse struct {
	Page     string         `json:"page"`
	Dirty    bool           `json:"dirty"`
	Vehicles []VehicleDraft `json:"vehicles"`
	// Catalog 仅 GET /draft 返回，供编辑页下拉框使用
	Catalog *CatalogResponse `json:"catalog,omitempty"`
}

// CatalogResponse 人员名册响应；names[0] 恒为空串（未分配）
type CatalogResponse struct {
	Names  []string `json:"names"`
	Source string   `json:"source"` // directory | fallback
}

// SlotFailure 单岗位写入失败
type SlotFailure struct {
	Vehicle  string `json:"vehicle"`
	Position string `json:"position"`
	Error    string `json:"error"`
}

// SaveResponse 保存结果；部分失败时 success=false，已成功的写入不会回滚
type SaveResponse struct {
	Success        bool          `json:"success"`
	Written        int           `json:"written"`
	Failures       []SlotFailure `json:"failures,omitempty"`
	TimestampError string        `json:"timestamp_error,omitempty"`
	Page           string        `json:"page"`
	Dirty          bool          `json:"dirty"`
}
