package service

import (
	"context"
	"fmt"

	"TrophySync/internal/model"
	"TrophySync/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefinitionStats 一次成就定义写入的统计
type DefinitionStats struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Skipped  int `json:"skipped"`
}

// AchievementUpserter 成就定义写入：按 (link, platform_api_name) 去重，已有定义不修改
type AchievementUpserter struct {
	repo   repository.AchievementRepository
	logger *logrus.Logger
}

func NewAchievementUpserter(repo repository.AchievementRepository, logger *logrus.Logger) *AchievementUpserter {
	return &AchievementUpserter{repo: repo, logger: logger}
}

// UpsertDefinitions 写入缺失的定义，返回该映射下全部 apiName → achievement id（含之前已存在的）
func (u *AchievementUpserter) UpsertDefinitions(ctx context.Context, link *model.GamePlatformLink, defs []model.NormalizedAchievement) (map[string]uint64, DefinitionStats, error) {
	var stats DefinitionStats
	for _, def := range defs {
		if def.APIName == "" {
			stats.Skipped++
			continue
		}
		name := def.Name
		if name == "" {
			name = model.UnknownAchievementName
		}
		a := &model.Achievement{
			GamePlatformLinkID: link.ID,
			PlatformAPIName:    def.APIName,
			Name:               name,
			Description:        def.Description,
			IconURL:            def.IconURL,
			LockedIconURL:      def.LockedIconURL,
			Type:               def.Type,
		}
		created, err := u.repo.CreateAchievementIfAbsent(ctx, a)
		if err != nil {
			return nil, stats, fmt.Errorf("写入成就定义%s失败: %w", def.APIName, err)
		}
		if created {
			stats.Created++
		} else {
			stats.Existing++
		}
	}

	all, err := u.repo.ListAchievementsByLink(ctx, link.ID)
	if err != nil {
		return nil, stats, fmt.Errorf("读取成就定义失败: %w", err)
	}
	byKey := make(map[string]uint64, len(all))
	for _, a := range all {
		byKey[a.PlatformAPIName] = a.ID
	}

	if stats.Skipped > 0 {
		u.logger.WithFields(logrus.Fields{"link_id": link.ID, "skipped": stats.Skipped}).Debug("跳过缺少成就键的定义")
	}
	return byKey, stats, nil
}
