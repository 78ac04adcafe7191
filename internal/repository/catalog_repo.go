package repository

import (
	"context"
	"errors"

	"TrophySync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 查询无结果
var ErrNotFound = errors.New("记录不存在")

// CatalogRepository 规范游戏目录仓储（games / game_aliases / game_platform_links / platforms）
type CatalogRepository interface {
	GetPlatformByName(ctx context.Context, name string) (*model.Platform, error)
	// EnsurePlatform 不存在则创建，存在则同步展示名与启用状态
	EnsurePlatform(ctx context.Context, p *model.Platform) error
	FindGameByAlias(ctx context.Context, aliasKey string) (*model.Game, error)
	FindGameByNameKey(ctx context.Context, nameKey string) (*model.Game, error)
	GetGameByID(ctx context.Context, id uint64) (*model.Game, error)
	// CreateGameIfAbsent name_key 冲突时不插入，g 回填为已有行
	CreateGameIfAbsent(ctx context.Context, g *model.Game) (bool, error)
	// FillGameMetadata 只填充之前为空的图标/简介
	FillGameMetadata(ctx context.Context, gameID uint64, iconURL, description string) error
	UpsertAlias(ctx context.Context, alias *model.GameAlias) error
	FindLink(ctx context.Context, gameID, platformID uint64) (*model.GamePlatformLink, error)
	// CreateLinkIfAbsent (game_id, platform_id) 冲突时不插入，link 回填为已有行
	CreateLinkIfAbsent(ctx context.Context, link *model.GamePlatformLink) (bool, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// first 把 gorm.ErrRecordNotFound 统一成 ErrNotFound
func first(q *gorm.DB, dest interface{}) error {
	if err := q.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// insertIfAbsent INSERT ... ON CONFLICT DO NOTHING，返回是否真正插入
func insertIfAbsent(ctx context.Context, db *gorm.DB, value interface{}, conflict ...string) (bool, error) {
	cols := make([]clause.Column, 0, len(conflict))
	for _, c := range conflict {
		cols = append(cols, clause.Column{Name: c})
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *catalogRepository) GetPlatformByName(ctx context.Context, name string) (*model.Platform, error) {
	var p model.Platform
	if err := first(r.db.WithContext(ctx).Where("name = ?", name), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) EnsurePlatform(ctx context.Context, p *model.Platform) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "is_enabled", "updated_at"}),
	}).Create(p).Error
}

func (r *catalogRepository) FindGameByAlias(ctx context.Context, aliasKey string) (*model.Game, error) {
	var alias model.GameAlias
	if err := first(r.db.WithContext(ctx).Where("alias_key = ?", aliasKey), &alias); err != nil {
		return nil, err
	}
	return r.GetGameByID(ctx, alias.GameID)
}

func (r *catalogRepository) FindGameByNameKey(ctx context.Context, nameKey string) (*model.Game, error) {
	var g model.Game
	if err := first(r.db.WithContext(ctx).Where("name_key = ?", nameKey), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *catalogRepository) GetGameByID(ctx context.Context, id uint64) (*model.Game, error) {
	var g model.Game
	if err := first(r.db.WithContext(ctx).Where("id = ?", id), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *catalogRepository) CreateGameIfAbsent(ctx context.Context, g *model.Game) (bool, error) {
	created, err := insertIfAbsent(ctx, r.db, g, "name_key")
	if err != nil || created {
		return created, err
	}
	existing, err := r.FindGameByNameKey(ctx, g.NameKey)
	if err != nil {
		return false, err
	}
	*g = *existing
	return false, nil
}

func (r *catalogRepository) FillGameMetadata(ctx context.Context, gameID uint64, iconURL, description string) error {
	db := r.db.WithContext(ctx).Model(&model.Game{})
	if iconURL != "" {
		if err := db.Where("id = ? AND (icon_url IS NULL OR icon_url = '')", gameID).
			Update("icon_url", iconURL).Error; err != nil {
			return err
		}
	}
	if description != "" {
		if err := r.db.WithContext(ctx).Model(&model.Game{}).
			Where("id = ? AND (description IS NULL OR description = '')", gameID).
			Update("description", description).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *catalogRepository) UpsertAlias(ctx context.Context, alias *model.GameAlias) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alias_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"game_id"}),
	}).Create(alias).Error
}

func (r *catalogRepository) FindLink(ctx context.Context, gameID, platformID uint64) (*model.GamePlatformLink, error) {
	var link model.GamePlatformLink
	if err := first(r.db.WithContext(ctx).Where("game_id = ? AND platform_id = ?", gameID, platformID), &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *catalogRepository) CreateLinkIfAbsent(ctx context.Context, link *model.GamePlatformLink) (bool, error) {
	created, err := insertIfAbsent(ctx, r.db, link, "game_id", "platform_id")
	if err != nil || created {
		return created, err
	}
	existing, err := r.FindLink(ctx, link.GameID, link.PlatformID)
	if err != nil {
		return false, err
	}
	*link = *existing
	return false, nil
}
