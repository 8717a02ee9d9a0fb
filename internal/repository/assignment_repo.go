package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"turnout-deployment/internal/model"
)

// AssignmentRepository 岗位分配数据访问接口
// 所有方法以 (vehicle, position) 为键，互相独立；并发写同一岗位以最后一次写入为准
type AssignmentRepository interface {
	List(ctx context.Context) ([]model.Assignment, error)
	GetBySlot(ctx context.Context, vehicle, position string) (*model.Assignment, error)
	Create(ctx context.Context, a *model.Assignment) error
	UpdateName(ctx context.Context, vehicle, position, name string, at time.Time) (int64, error)
	DeleteBySlot(ctx context.Context, vehicle, position string) (int64, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) List(ctx context.Context) ([]model.Assignment, error) {
	var items []model.Assignment
	err := r.db.WithContext(ctx).
		Order("vehicle_code ASC, position_code ASC").
		Find(&items).Error
	return items, err
}

func (r *assignmentRepo) GetBySlot(ctx context.Context, vehicle, position string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("vehicle_code = ? AND position_code = ?", vehicle, position).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create 插入新记录；若并发会话已抢先创建同一岗位，则覆盖其姓名与更新时间
func (r *assignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_code"}, {Name: "position_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"personnel_name", "updated_at"}),
		}).
		Create(a).Error
}

func (r *assignmentRepo) UpdateName(ctx context.Context, vehicle, position, name string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("vehicle_code = ? AND position_code = ?", vehicle, position).
		Updates(map[string]interface{}{
			"personnel_name": name,
			"updated_at":     at,
		})
	return result.RowsAffected, result.Error
}

func (r *assignmentRepo) DeleteBySlot(ctx context.Context, vehicle, position string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("vehicle_code = ? AND position_code = ?", vehicle, position).
		Delete(&model.Assignment{})
	return result.RowsAffected, result.Error
}
