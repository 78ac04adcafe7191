package model

import (
	"strings"
	"time"
)

// Game 跨平台规范游戏（同名游戏多平台去重后一条）
// name_key 为小写去空白后的名称，是跨平台去重键
type Game struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:varchar(256);not null"`
	NameKey     string    `gorm:"column:name_key;type:varchar(256);uniqueIndex;not null"`
	IconURL     *string   `gorm:"column:icon_url;type:varchar(512)"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Game) TableName() string { return "games" }

// GameAlias 显式映射表：地区译名、商标后缀等别名指向同一个规范游戏
type GameAlias struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AliasKey  string    `gorm:"column:alias_key;type:varchar(256);uniqueIndex;not null"`
	GameID    uint64    `gorm:"column:game_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GameAlias) TableName() string { return "game_aliases" }

// GamePlatformLink 规范游戏与平台的映射，携带平台原生ID
type GamePlatformLink struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GameID             uint64    `gorm:"column:game_id;not null;uniqueIndex:uq_game_platform"`
	PlatformID         uint64    `gorm:"column:platform_id;not null;uniqueIndex:uq_game_platform"`
	PlatformSpecificID *string   `gorm:"column:platform_specific_id;type:varchar(128)"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GamePlatformLink) TableName() string { return "game_platform_links" }

// Achievement 成就定义，挂在 GamePlatformLink 下（解锁条件按平台区分）
type Achievement struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GamePlatformLinkID uint64    `gorm:"column:game_platform_link_id;not null;uniqueIndex:uq_link_api_name"`
	Name               string    `gorm:"column:name;type:varchar(256);not null"`
	Description        string    `gorm:"column:description;type:text"`
	IconURL            string    `gorm:"column:icon_url;type:varchar(512)"`
	LockedIconURL      string    `gorm:"column:locked_icon_url;type:varchar(512)"`
	PlatformAPIName    string    `gorm:"column:platform_api_name;type:varchar(256);not null;uniqueIndex:uq_link_api_name"`
	Type               string    `gorm:"column:type;type:varchar(32)"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Achievement) TableName() string { return "achievements" }

// NameKey 生成游戏去重键：大小写不敏感的精确匹配
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
