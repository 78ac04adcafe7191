package model

import "time"

// PlatformType 平台类型枚举
type PlatformType string

const (
	PlatformSteam PlatformType = "steam" // PC 发行平台
	PlatformPSN   PlatformType = "psn"   // 主机平台 A
	PlatformXbox  PlatformType = "xbox"  // 主机平台 B
)

// UnknownAchievementName 平台未提供展示名时的兜底名称
const UnknownAchievementName = "Unknown Achievement"

// NormalizedGame 所有平台归一化后的游戏记录
type NormalizedGame struct {
	ExternalGameID string // 平台原生ID，PSN 可能为空
	Name           string
	IconURL        string
	Description    string
	Achievements   []NormalizedAchievement
	Unlocks        []NormalizedUnlock
}

// NormalizedAchievement 归一化后的成就定义
type NormalizedAchievement struct {
	APIName       string // 平台原生成就键，缺失时跳过
	Name          string
	Description   string
	IconURL       string
	LockedIconURL string
	Type          string
}

// NormalizedUnlock 归一化后的解锁记录，UnlockTime 为空表示时间未知
type NormalizedUnlock struct {
	APIName    string
	UnlockTime *time.Time
}

// SkippedGame 因缺少关键字段被跳过的游戏条目
type SkippedGame struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// NormalizedBatch 一次平台负载归一化的结果
type NormalizedBatch struct {
	Platform PlatformType
	Games    []*NormalizedGame
	Skipped  []SkippedGame
}
