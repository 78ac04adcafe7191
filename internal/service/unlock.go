package service

import (
	"context"
	"fmt"

	"TrophySync/internal/model"
	"TrophySync/internal/repository"

	"github.com/sirupsen/logrus"
)

// UnlockStats 一次解锁记录写入的统计
type UnlockStats struct {
	LibraryEntryCreated bool `json:"library_entry_created"`
	Created             int  `json:"created"`
	Existing            int  `json:"existing"`
	TimeFilled          int  `json:"time_filled"`
	Skipped             int  `json:"skipped"`
}

// UnlockRecorder 记录用户游戏库与解锁，只追加，不降级，不覆盖已有解锁时间
type UnlockRecorder struct {
	repo   repository.UnlockRepository
	logger *logrus.Logger
}

func NewUnlockRecorder(repo repository.UnlockRepository, logger *logrus.Logger) *UnlockRecorder {
	return &UnlockRecorder{repo: repo, logger: logger}
}

// EnsureLibraryEntry 游戏进入用户游戏库，零解锁的游戏同样可见
func (r *UnlockRecorder) EnsureLibraryEntry(ctx context.Context, userID string, link *model.GamePlatformLink) (bool, error) {
	created, err := r.repo.EnsureLibraryEntry(ctx, userID, link.ID)
	if err != nil {
		return false, fmt.Errorf("写入游戏库失败: %w", err)
	}
	return created, nil
}

// RecordUnlocks 先确保游戏库条目，再逐条写入解锁；找不到定义的解锁键跳过
func (r *UnlockRecorder) RecordUnlocks(ctx context.Context, userID string, link *model.GamePlatformLink, defsByKey map[string]uint64, unlocks []model.NormalizedUnlock) (UnlockStats, error) {
	var stats UnlockStats
	created, err := r.EnsureLibraryEntry(ctx, userID, link)
	if err != nil {
		return stats, err
	}
	stats.LibraryEntryCreated = created

	for _, ul := range unlocks {
		achievementID, ok := defsByKey[ul.APIName]
		if !ok {
			stats.Skipped++
			r.logger.WithFields(logrus.Fields{
				"link_id":  link.ID,
				"api_name": ul.APIName,
			}).Warn("解锁键没有对应的成就定义，跳过")
			continue
		}

		rec := &model.UserAchievementUnlock{
			UserID:        userID,
			AchievementID: achievementID,
			Unlocked:      true,
			UnlockTime:    ul.UnlockTime,
		}
		created, err := r.repo.CreateUnlockIfAbsent(ctx, rec)
		if err != nil {
			return stats, fmt.Errorf("写入解锁记录%s失败: %w", ul.APIName, err)
		}
		if created {
			stats.Created++
			continue
		}
		stats.Existing++

		if rec.UnlockTime == nil && ul.UnlockTime != nil {
			filled, err := r.repo.FillUnlockTime(ctx, rec.ID, *ul.UnlockTime)
			if err != nil {
				return stats, fmt.Errorf("补齐解锁时间%s失败: %w", ul.APIName, err)
			}
			if filled {
				stats.TimeFilled++
			}
		}
	}
	return stats, nil
}
