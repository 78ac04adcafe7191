package service

import (
	"context"
	"errors"
	"fmt"

	"TrophySync/internal/lock"
	"TrophySync/internal/model"
	"TrophySync/internal/repository"

	"github.com/sirupsen/logrus"
)

// CatalogResolver 把归一化游戏解析到规范游戏与平台映射
type CatalogResolver struct {
	repo   repository.CatalogRepository
	locker lock.Locker
	logger *logrus.Logger
}

func NewCatalogResolver(repo repository.CatalogRepository, locker lock.Locker, logger *logrus.Logger) *CatalogResolver {
	return &CatalogResolver{repo: repo, locker: locker, logger: logger}
}

// ResolveGame 按别名表 → name_key 查找规范游戏，不存在则创建；已有行只补齐空的图标/简介
func (r *CatalogResolver) ResolveGame(ctx context.Context, ng *model.NormalizedGame) (*model.Game, bool, error) {
	key := model.NameKey(ng.Name)
	if key == "" {
		return nil, false, errors.New("游戏名称为空")
	}

	unlock, err := r.locker.Lock(ctx, "game:"+key)
	if err != nil {
		return nil, false, fmt.Errorf("获取游戏锁失败: %w", err)
	}
	defer unlock()

	game, err := r.repo.FindGameByAlias(ctx, key)
	switch {
	case err == nil:
		r.logger.WithFields(logrus.Fields{"name": ng.Name, "game_id": game.ID}).Debug("命中游戏别名")
		if err := r.repo.FillGameMetadata(ctx, game.ID, ng.IconURL, ng.Description); err != nil {
			return nil, false, fmt.Errorf("补齐游戏信息失败: %w", err)
		}
		return game, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("查询游戏别名失败: %w", err)
	}

	game = &model.Game{
		Name:        ng.Name,
		NameKey:     key,
		IconURL:     optional(ng.IconURL),
		Description: optional(ng.Description),
	}
	created, err := r.repo.CreateGameIfAbsent(ctx, game)
	if err != nil {
		return nil, false, fmt.Errorf("创建游戏失败: %w", err)
	}
	if !created {
		if err := r.repo.FillGameMetadata(ctx, game.ID, ng.IconURL, ng.Description); err != nil {
			return nil, false, fmt.Errorf("补齐游戏信息失败: %w", err)
		}
	}
	return game, created, nil
}

// ResolveGamePlatformLink (game, platform) 映射不存在则创建，已有映射不更新
func (r *CatalogResolver) ResolveGamePlatformLink(ctx context.Context, gameID, platformID uint64, platformSpecificID string) (*model.GamePlatformLink, bool, error) {
	link := &model.GamePlatformLink{
		GameID:             gameID,
		PlatformID:         platformID,
		PlatformSpecificID: optional(platformSpecificID),
	}
	created, err := r.repo.CreateLinkIfAbsent(ctx, link)
	if err != nil {
		return nil, false, fmt.Errorf("创建平台映射失败: %w", err)
	}
	return link, created, nil
}

// AddAlias 写入显式映射：alias 的 name_key 指向 gameID
func (r *CatalogResolver) AddAlias(ctx context.Context, gameID uint64, alias string) (*model.GameAlias, error) {
	key := model.NameKey(alias)
	if key == "" {
		return nil, ErrInvalidAlias
	}
	if _, err := r.repo.GetGameByID(ctx, gameID); err != nil {
		return nil, err
	}
	a := &model.GameAlias{AliasKey: key, GameID: gameID}
	if err := r.repo.UpsertAlias(ctx, a); err != nil {
		return nil, fmt.Errorf("写入游戏别名失败: %w", err)
	}
	r.logger.WithFields(logrus.Fields{"alias": key, "game_id": gameID}).Info("游戏别名已写入")
	return a, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
