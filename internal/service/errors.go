package service

import (
	"errors"
	"fmt"
)

// 整批失败：导入尚未开始处理任何游戏即终止
var (
	ErrMissingSession      = errors.New("缺少有效的用户会话")
	ErrPlatformNotFound    = errors.New("平台未配置")
	ErrPlatformDisabled    = errors.New("平台已停用")
	ErrUnsupportedPlatform = errors.New("平台无适配器")
	ErrInvalidPayload      = errors.New("平台负载无法解析")
	ErrRelayUnavailable    = errors.New("中转函数调用失败")
)

// ErrInvalidAlias 别名为空或规范化后为空
var ErrInvalidAlias = errors.New("游戏别名无效")

// ErrNotAdmin 调用管理接口的用户不在管理员列表中
var ErrNotAdmin = errors.New("无管理权限")

// Stage 单个游戏在导入状态机中的阶段
type Stage string

const (
	StageNormalized           Stage = "normalized"
	StageCatalogResolved      Stage = "catalog-resolved"
	StageAchievementsUpserted Stage = "achievements-upserted"
	StageUnlocksRecorded      Stage = "unlocks-recorded"
	StageProjected            Stage = "projected"
)

// GameError 单个游戏处理失败，Stage 为失败时正在推进的目标阶段
type GameError struct {
	Stage Stage
	Game  string
	Err   error
}

func (e *GameError) Error() string {
	return fmt.Sprintf("游戏[%s]在%s阶段失败: %v", e.Game, e.Stage, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }
