package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/risksim/internal/simulation/domain"
)

// RunRepository domain.RunRepository 的 MySQL 实现
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository 创建台账仓储，并确保表结构存在
func NewRunRepository(db *gorm.DB) (*RunRepository, error) {
	if err := db.AutoMigrate(&SimulationRunModel{}); err != nil {
		return nil, err
	}
	return &RunRepository{db: db}, nil
}

// Save 追加一条运行记录，写回自增 ID
func (r *RunRepository) Save(ctx context.Context, run *domain.SimulationRun) error {
	model, err := toModel(run)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	run.ID = model.ID
	run.CreatedAt = model.CreatedAt
	run.UpdatedAt = model.UpdatedAt
	return nil
}

// ListRecent 按创建时间倒序返回最近 limit 条记录
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SimulationRun, error) {
	var models []SimulationRunModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.SimulationRun, 0, len(models))
	for i := range models {
		run, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
