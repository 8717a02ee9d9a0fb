package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"turnout-deployment/internal/model"
)

// DeploymentRepository 当前部署元数据访问接口（单行表，主键固定为 model.CurrentDeploymentID）
type DeploymentRepository interface {
	Get(ctx context.Context) (*model.CurrentDeployment, error)
	Touch(ctx context.Context, at time.Time) error
}

type deploymentRepo struct {
	db *gorm.DB
}

// NewDeploymentRepo 创建 DeploymentRepository 实例
func NewDeploymentRepo(db *gorm.DB) DeploymentRepository {
	return &deploymentRepo{db: db}
}

// Get 读取元数据行；表为空时返回 gorm.ErrRecordNotFound
func (r *deploymentRepo) Get(ctx context.Context) (*model.CurrentDeployment, error) {
	var d model.CurrentDeployment
	err := r.db.WithContext(ctx).
		Where("id = ?", model.CurrentDeploymentID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Touch 不存在则插入、存在则刷新 last_updated，单条语句完成，
// 多个会话同时首次保存也只会留下一行
func (r *deploymentRepo) Touch(ctx context.Context, at time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_updated"}),
		}).
		Create(&model.CurrentDeployment{ID: model.CurrentDeploymentID, LastUpdated: at}).Error
}
