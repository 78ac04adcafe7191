package repository

import (
	"context"

	"TrophySync/internal/model"

	"gorm.io/gorm"
)

// AchievementRepository 成就定义仓储，自然键 (game_platform_link_id, platform_api_name)
type AchievementRepository interface {
	FindAchievement(ctx context.Context, linkID uint64, apiName string) (*model.Achievement, error)
	// CreateAchievementIfAbsent 自然键冲突时不插入，a 回填为已有行
	CreateAchievementIfAbsent(ctx context.Context, a *model.Achievement) (bool, error)
	ListAchievementsByLink(ctx context.Context, linkID uint64) ([]*model.Achievement, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) FindAchievement(ctx context.Context, linkID uint64, apiName string) (*model.Achievement, error) {
	var a model.Achievement
	if err := first(r.db.WithContext(ctx).
		Where("game_platform_link_id = ? AND platform_api_name = ?", linkID, apiName), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *achievementRepository) CreateAchievementIfAbsent(ctx context.Context, a *model.Achievement) (bool, error) {
	created, err := insertIfAbsent(ctx, r.db, a, "game_platform_link_id", "platform_api_name")
	if err != nil || created {
		return created, err
	}
	existing, err := r.FindAchievement(ctx, a.GamePlatformLinkID, a.PlatformAPIName)
	if err != nil {
		return false, err
	}
	*a = *existing
	return false, nil
}

func (r *achievementRepository) ListAchievementsByLink(ctx context.Context, linkID uint64) ([]*model.Achievement, error) {
	var list []*model.Achievement
	if err := r.db.WithContext(ctx).
		Where("game_platform_link_id = ?", linkID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
