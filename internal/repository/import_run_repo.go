package repository

import (
	"context"

	"TrophySync/internal/model"

	"gorm.io/gorm"
)

// ImportRunRepository 导入审计记录
type ImportRunRepository interface {
	CreateRun(ctx context.Context, run *model.ImportRun) error
	// FinishRun 写入状态、计数、逐游戏结果与结束时间
	FinishRun(ctx context.Context, run *model.ImportRun) error
	GetRun(ctx context.Context, id string) (*model.ImportRun, error)
}

type importRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) ImportRunRepository {
	return &importRunRepository{db: db}
}

func (r *importRunRepository) CreateRun(ctx context.Context, run *model.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *importRunRepository) FinishRun(ctx context.Context, run *model.ImportRun) error {
	return r.db.WithContext(ctx).Model(&model.ImportRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":          run.Status,
			"games_total":     run.GamesTotal,
			"games_succeeded": run.GamesSucceeded,
			"games_failed":    run.GamesFailed,
			"games_skipped":   run.GamesSkipped,
			"results":         run.Results,
			"error":           run.Error,
			"finished_at":     run.FinishedAt,
		}).Error
}

func (r *importRunRepository) GetRun(ctx context.Context, id string) (*model.ImportRun, error) {
	var run model.ImportRun
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &run); err != nil {
		return nil, err
	}
	return &run, nil
}
