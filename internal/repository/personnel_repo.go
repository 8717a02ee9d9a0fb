package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"turnout-deployment/internal/model"
)

// PersonnelRepository 人员名册数据访问接口
type PersonnelRepository interface {
	ListNames(ctx context.Context) ([]string, error)
	BulkInsert(ctx context.Context, names []string) (int64, error)
}

type personnelRepo struct {
	db *gorm.DB
}

// NewPersonnelRepo 创建 PersonnelRepository 实例
func NewPersonnelRepo(db *gorm.DB) PersonnelRepository {
	return &personnelRepo{db: db}
}

func (r *personnelRepo) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&model.Personnel{}).
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}

// BulkInsert 批量导入姓名，已存在的姓名忽略；返回实际新增条数
func (r *personnelRepo) BulkInsert(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	rows := make([]model.Personnel, 0, len(names))
	for _, n := range names {
		rows = append(rows, model.Personnel{Name: n})
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return result.RowsAffected, result.Error
}
