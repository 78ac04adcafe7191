package interfaces

import (
	"TrophySync/internal/model"

	"github.com/sirupsen/logrus"
)

// PlatformAdapter 所有平台必须实现的核心接口
type PlatformAdapter interface {
	GetType() model.PlatformType                              // 平台类型
	Normalize(payload []byte) (*model.NormalizedBatch, error) // 中转函数输出 → 统一记录
}

// Factory 平台适配器工厂函数签名
type Factory func(logger *logrus.Logger) PlatformAdapter
