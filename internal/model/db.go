package model

import (
	"time"

	"gorm.io/datatypes"
)

// Platform 外部平台（steam / psn / xbox），启动时按配置写入
type Platform struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Name        string    `gorm:"column:name;type:varchar(32);uniqueIndex;not null;comment:平台名称"`
	DisplayName string    `gorm:"column:display_name;type:varchar(64);comment:展示名称"`
	IsEnabled   bool      `gorm:"column:is_enabled;not null;comment:是否启用"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// UserAchievementUnlock 用户解锁记录，(user_id, achievement_id) 唯一
type UserAchievementUnlock struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        string     `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uq_user_achievement"`
	AchievementID uint64     `gorm:"column:achievement_id;not null;uniqueIndex:uq_user_achievement;index"`
	Unlocked      bool       `gorm:"column:unlocked;not null;default:true"`
	UnlockTime    *time.Time `gorm:"column:unlock_time;comment:平台未提供时为空"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// UserGameLibraryEntry 用户游戏库条目，(user_id, game_platform_link_id) 唯一
type UserGameLibraryEntry struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID             string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uq_user_link"`
	GamePlatformLinkID uint64    `gorm:"column:game_platform_link_id;not null;uniqueIndex:uq_user_link"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ImportRun 一次导入的审计记录
type ImportRun struct {
	ID             string         `gorm:"column:id;primaryKey;type:varchar(36)"`
	UserID         string         `gorm:"column:user_id;type:varchar(64);not null;index"`
	PlatformID     uint64         `gorm:"column:platform_id;not null"`
	Status         string         `gorm:"column:status;type:varchar(16);not null;comment:running/completed/failed"`
	GamesTotal     int            `gorm:"column:games_total;default:0"`
	GamesSucceeded int            `gorm:"column:games_succeeded;default:0"`
	GamesFailed    int            `gorm:"column:games_failed;default:0"`
	GamesSkipped   int            `gorm:"column:games_skipped;default:0"`
	Results        datatypes.JSON `gorm:"column:results;comment:逐游戏结果"`
	Error          string         `gorm:"column:error;type:text"`
	StartedAt      time.Time      `gorm:"column:started_at;not null"`
	FinishedAt     *time.Time     `gorm:"column:finished_at"`
}

const (
	ImportRunRunning   = "running"
	ImportRunCompleted = "completed"
	ImportRunFailed    = "failed"
)

func (Platform) TableName() string              { return "platforms" }
func (UserAchievementUnlock) TableName() string { return "user_achievement_unlocks" }
func (UserGameLibraryEntry) TableName() string  { return "user_game_library_entries" }
func (ImportRun) TableName() string             { return "import_runs" }

// AllModels 按依赖顺序列出需要迁移的表
func AllModels() []interface{} {
	return []interface{}{
		&Platform{},
		&Game{},
		&GameAlias{},
		&GamePlatformLink{},
		&Achievement{},
		&UserAchievementUnlock{},
		&UserGameLibraryEntry{},
		&ImportRun{},
	}
}
