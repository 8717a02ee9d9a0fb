package model

import "time"

// Assignment 岗位分配表 — 对应 assignments
// 每个岗位至多一条；无记录即表示该岗位未分配（不存储空姓名记录）
type Assignment struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"                                    json:"id"`
	VehicleCode   string    `gorm:"type:varchar(16);not null;uniqueIndex:uq_assignments_slot"      json:"vehicle_code"`
	PositionCode  string    `gorm:"type:varchar(16);not null;uniqueIndex:uq_assignments_slot"      json:"position_code"`
	PersonnelName string    `gorm:"type:varchar(100);not null"                                     json:"personnel_name"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"                                  json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"                                  json:"updated_at"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// Slot 返回该记录对应的岗位
func (a *Assignment) Slot() Slot {
	return Slot{Vehicle: a.VehicleCode, Position: a.PositionCode}
}

// CurrentDeploymentID current_deployment 唯一一行的固定主键。
// 所有写入都落在这一行上，主键冲突保证表中至多一行。
const CurrentDeploymentID = "00000000-0000-0000-0000-000000000001"

// CurrentDeployment 当前部署元数据 — 对应 current_deployment（至多一行）
type CurrentDeployment struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	LastUpdated time.Time `gorm:"not null"                    json:"last_updated"`
}

// TableName 指定表名
func (CurrentDeployment) TableName() string { return "current_deployment" }

// Personnel 人员名册 — 对应 personnel
type Personnel struct {
	Name string `gorm:"type:varchar(100);primaryKey" json:"name"`
}

// TableName 指定表名
func (Personnel) TableName() string { return "personnel" }

// Tables 全部持久化模型（SQLite 模式 AutoMigrate 使用）
func Tables() []interface{} {
	return []interface{}{&Assignment{}, &CurrentDeployment{}, &Personnel{}}
}
