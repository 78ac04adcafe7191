package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"TrophySync/internal/model"
	"TrophySync/internal/repository"

	"github.com/sirupsen/logrus"
)

// LibraryGame 用户游戏库中的一条（规范游戏 × 平台）
type LibraryGame struct {
	GameID             uint64 `json:"game_id"`
	LinkID             uint64 `json:"link_id"`
	Name               string `json:"name"`
	IconURL            string `json:"icon_url,omitempty"`
	Description        string `json:"description,omitempty"`
	Platform           string `json:"platform"`
	PlatformName       string `json:"platform_name"`
	PlatformSpecificID string `json:"platform_specific_id,omitempty"`
	// AddedAt 游戏库条目创建时间；解锁指向的映射没有库条目时为空
	AddedAt *time.Time `json:"added_at,omitempty"`
}

// UnlockedAchievement 已解锁成就
type UnlockedAchievement struct {
	ID            uint64     `json:"id"`
	APIName       string     `json:"api_name"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	IconURL       string     `json:"icon_url,omitempty"`
	LockedIconURL string     `json:"locked_icon_url,omitempty"`
	Type          string     `json:"type,omitempty"`
	UnlockTime    *time.Time `json:"unlock_time"`
}

// GameAchievement {game, achievement} 对
type GameAchievement struct {
	Game        LibraryGame         `json:"game"`
	Achievement UnlockedAchievement `json:"achievement"`
}

// UserLibrary 展示层消费的用户视图
type UserLibrary struct {
	UserID       string            `json:"user_id"`
	Games        []LibraryGame     `json:"games"`
	Achievements []GameAchievement `json:"achievements"`
}

// LibraryProjector 从已持久化数据重建用户视图，不依赖导入过程中的内存状态
type LibraryProjector struct {
	repo   repository.LibraryRepository
	logger *logrus.Logger
}

func NewLibraryProjector(repo repository.LibraryRepository, logger *logrus.Logger) *LibraryProjector {
	return &LibraryProjector{repo: repo, logger: logger}
}

// Project 读取游戏库条目与解锁记录并在内存中拼装
func (p *LibraryProjector) Project(ctx context.Context, userID string) (*UserLibrary, error) {
	entries, err := p.repo.ListLibraryEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("读取游戏库失败: %w", err)
	}
	unlocks, err := p.repo.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("读取解锁记录失败: %w", err)
	}

	achievementIDs := make([]uint64, 0, len(unlocks))
	for _, u := range unlocks {
		achievementIDs = append(achievementIDs, u.AchievementID)
	}
	achievements, err := p.repo.GetAchievementsByIDs(ctx, achievementIDs)
	if err != nil {
		return nil, fmt.Errorf("读取成就定义失败: %w", err)
	}
	achievementByID := make(map[uint64]*model.Achievement, len(achievements))
	for _, a := range achievements {
		achievementByID[a.ID] = a
	}

	// 解锁记录可能指向尚未进入游戏库的映射，一并加载
	linkIDs := make([]uint64, 0, len(entries)+len(achievements))
	seenLink := make(map[uint64]bool)
	for _, e := range entries {
		if !seenLink[e.GamePlatformLinkID] {
			seenLink[e.GamePlatformLinkID] = true
			linkIDs = append(linkIDs, e.GamePlatformLinkID)
		}
	}
	for _, a := range achievements {
		if !seenLink[a.GamePlatformLinkID] {
			seenLink[a.GamePlatformLinkID] = true
			linkIDs = append(linkIDs, a.GamePlatformLinkID)
		}
	}
	links, err := p.repo.GetLinksByIDs(ctx, linkIDs)
	if err != nil {
		return nil, fmt.Errorf("读取平台映射失败: %w", err)
	}

	gameIDs := make([]uint64, 0, len(links))
	linkByID := make(map[uint64]*model.GamePlatformLink, len(links))
	for _, l := range links {
		linkByID[l.ID] = l
		gameIDs = append(gameIDs, l.GameID)
	}
	games, err := p.repo.GetGamesByIDs(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("读取游戏失败: %w", err)
	}
	gameByID := make(map[uint64]*model.Game, len(games))
	for _, g := range games {
		gameByID[g.ID] = g
	}
	platforms, err := p.repo.GetPlatforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取平台失败: %w", err)
	}
	platformByID := make(map[uint64]*model.Platform, len(platforms))
	for _, pl := range platforms {
		platformByID[pl.ID] = pl
	}

	view := func(linkID uint64, addedAt *time.Time) (LibraryGame, bool) {
		link, ok := linkByID[linkID]
		if !ok {
			return LibraryGame{}, false
		}
		game, ok := gameByID[link.GameID]
		if !ok {
			return LibraryGame{}, false
		}
		lg := LibraryGame{
			GameID:  game.ID,
			LinkID:  link.ID,
			Name:    game.Name,
			AddedAt: addedAt,
		}
		if game.IconURL != nil {
			lg.IconURL = *game.IconURL
		}
		if game.Description != nil {
			lg.Description = *game.Description
		}
		if link.PlatformSpecificID != nil {
			lg.PlatformSpecificID = *link.PlatformSpecificID
		}
		if pl, ok := platformByID[link.PlatformID]; ok {
			lg.Platform = pl.Name
			lg.PlatformName = pl.DisplayName
		}
		return lg, true
	}

	lib := &UserLibrary{
		UserID:       userID,
		Games:        make([]LibraryGame, 0, len(entries)),
		Achievements: make([]GameAchievement, 0, len(unlocks)),
	}
	addedAt := make(map[uint64]*time.Time, len(entries))
	for _, e := range entries {
		created := e.CreatedAt
		lg, ok := view(e.GamePlatformLinkID, &created)
		if !ok {
			p.logger.WithField("link_id", e.GamePlatformLinkID).Warn("游戏库条目指向不存在的映射")
			continue
		}
		addedAt[e.GamePlatformLinkID] = &created
		lib.Games = append(lib.Games, lg)
	}
	for _, u := range unlocks {
		a, ok := achievementByID[u.AchievementID]
		if !ok {
			continue
		}
		lg, ok := view(a.GamePlatformLinkID, addedAt[a.GamePlatformLinkID])
		if !ok {
			continue
		}
		lib.Achievements = append(lib.Achievements, GameAchievement{
			Game: lg,
			Achievement: UnlockedAchievement{
				ID:            a.ID,
				APIName:       a.PlatformAPIName,
				Name:          a.Name,
				Description:   a.Description,
				IconURL:       a.IconURL,
				LockedIconURL: a.LockedIconURL,
				Type:          a.Type,
				UnlockTime:    u.UnlockTime,
			},
		})
	}

	sort.SliceStable(lib.Games, func(i, j int) bool {
		a, b := lib.Games[i], lib.Games[j]
		if ka, kb := strings.ToLower(a.Name), strings.ToLower(b.Name); ka != kb {
			return ka < kb
		}
		return a.Platform < b.Platform
	})
	sort.SliceStable(lib.Achievements, func(i, j int) bool {
		a, b := lib.Achievements[i].Achievement, lib.Achievements[j].Achievement
		switch {
		case a.UnlockTime != nil && b.UnlockTime == nil:
			return true
		case a.UnlockTime == nil && b.UnlockTime != nil:
			return false
		case a.UnlockTime != nil && !a.UnlockTime.Equal(*b.UnlockTime):
			return a.UnlockTime.Before(*b.UnlockTime)
		}
		return a.Name < b.Name
	})
	return lib, nil
}
