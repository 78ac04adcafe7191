package repository

import (
	"context"
	"time"

	"TrophySync/internal/model"

	"gorm.io/gorm"
)

// UnlockRepository 用户侧写入：解锁记录与游戏库条目
type UnlockRepository interface {
	// EnsureLibraryEntry (user_id, game_platform_link_id) 不存在则创建
	EnsureLibraryEntry(ctx context.Context, userID string, linkID uint64) (bool, error)
	FindUnlock(ctx context.Context, userID string, achievementID uint64) (*model.UserAchievementUnlock, error)
	// CreateUnlockIfAbsent (user_id, achievement_id) 冲突时不插入，u 回填为已有行
	CreateUnlockIfAbsent(ctx context.Context, u *model.UserAchievementUnlock) (bool, error)
	// FillUnlockTime 只在 unlock_time 为空时写入
	FillUnlockTime(ctx context.Context, unlockID uint64, t time.Time) (bool, error)
}

type unlockRepository struct {
	db *gorm.DB
}

func NewUnlockRepository(db *gorm.DB) UnlockRepository {
	return &unlockRepository{db: db}
}

func (r *unlockRepository) EnsureLibraryEntry(ctx context.Context, userID string, linkID uint64) (bool, error) {
	entry := &model.UserGameLibraryEntry{UserID: userID, GamePlatformLinkID: linkID}
	return insertIfAbsent(ctx, r.db, entry, "user_id", "game_platform_link_id")
}

func (r *unlockRepository) FindUnlock(ctx context.Context, userID string, achievementID uint64) (*model.UserAchievementUnlock, error) {
	var u model.UserAchievementUnlock
	if err := first(r.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *unlockRepository) CreateUnlockIfAbsent(ctx context.Context, u *model.UserAchievementUnlock) (bool, error) {
	created, err := insertIfAbsent(ctx, r.db, u, "user_id", "achievement_id")
	if err != nil || created {
		return created, err
	}
	existing, err := r.FindUnlock(ctx, u.UserID, u.AchievementID)
	if err != nil {
		return false, err
	}
	*u = *existing
	return false, nil
}

func (r *unlockRepository) FillUnlockTime(ctx context.Context, unlockID uint64, t time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.UserAchievementUnlock{}).
		Where("id = ? AND unlock_time IS NULL", unlockID).
		Update("unlock_time", t)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
