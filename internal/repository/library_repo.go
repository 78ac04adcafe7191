package repository

import (
	"context"

	"TrophySync/internal/model"

	"gorm.io/gorm"
)

// LibraryRepository 用户游戏库的读取仓储（投影用，只读）
type LibraryRepository interface {
	// ListLibraryEntries 用户游戏库条目
	ListLibraryEntries(ctx context.Context, userID string) ([]*model.UserGameLibraryEntry, error)
	// ListUnlocks 用户全部解锁记录
	ListUnlocks(ctx context.Context, userID string) ([]*model.UserAchievementUnlock, error)
	GetLinksByIDs(ctx context.Context, ids []uint64) ([]*model.GamePlatformLink, error)
	GetGamesByIDs(ctx context.Context, ids []uint64) ([]*model.Game, error)
	GetAchievementsByIDs(ctx context.Context, ids []uint64) ([]*model.Achievement, error)
	// GetPlatforms 获取所有平台基础信息
	GetPlatforms(ctx context.Context) ([]*model.Platform, error)
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) ListLibraryEntries(ctx context.Context, userID string) ([]*model.UserGameLibraryEntry, error) {
	var entries []*model.UserGameLibraryEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *libraryRepository) ListUnlocks(ctx context.Context, userID string) ([]*model.UserAchievementUnlock, error) {
	var unlocks []*model.UserAchievementUnlock
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND unlocked = ?", userID, true).
		Order("id ASC").
		Find(&unlocks).Error; err != nil {
		return nil, err
	}
	return unlocks, nil
}

func (r *libraryRepository) GetLinksByIDs(ctx context.Context, ids []uint64) ([]*model.GamePlatformLink, error) {
	if len(ids) == 0 {
		return []*model.GamePlatformLink{}, nil
	}
	var links []*model.GamePlatformLink
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *libraryRepository) GetGamesByIDs(ctx context.Context, ids []uint64) ([]*model.Game, error) {
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}
	var games []*model.Game
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *libraryRepository) GetAchievementsByIDs(ctx context.Context, ids []uint64) ([]*model.Achievement, error) {
	if len(ids) == 0 {
		return []*model.Achievement{}, nil
	}
	var list []*model.Achievement
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *libraryRepository) GetPlatforms(ctx context.Context) ([]*model.Platform, error) {
	var platforms []*model.Platform
	if err := r.db.WithContext(ctx).Find(&platforms).Error; err != nil {
		return nil, err
	}
	return platforms, nil
}
