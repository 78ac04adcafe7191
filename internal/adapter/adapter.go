package adapter

import (
	"fmt"

	"TrophySync/internal/interfaces"
	"TrophySync/internal/model"

	"github.com/sirupsen/logrus"
)

// PlatformRegistry 平台类型→适配器实例
type PlatformRegistry struct {
	logger   *logrus.Logger
	adapters map[model.PlatformType]interfaces.PlatformAdapter
}

// NewPlatformRegistry 用已注册的工厂函数创建适配器实例
func NewPlatformRegistry(logger *logrus.Logger) *PlatformRegistry {
	r := &PlatformRegistry{
		logger:   logger,
		adapters: make(map[model.PlatformType]interfaces.PlatformAdapter),
	}
	r.initAdaptersFromFactories()
	return r
}

func (r *PlatformRegistry) initAdaptersFromFactories() {
	for _, platformType := range ListFactories() {
		factory, _ := GetFactory(platformType)
		adapterIns := factory(r.logger)
		if adapterIns == nil {
			r.logger.WithField("platform", platformType).Error("工厂函数返回nil适配器实例")
			continue
		}
		// 验证实例的平台类型是否匹配
		if adapterIns.GetType() != platformType {
			r.logger.WithFields(logrus.Fields{
				"registered_platform": platformType,
				"adapter_platform":    adapterIns.GetType(),
			}).Error("适配器平台类型与注册不匹配")
			continue
		}
		r.adapters[platformType] = adapterIns
	}
	r.logger.WithField("platforms", r.ListRegisteredPlatforms()).Info("平台适配器初始化完成")
}

// ListRegisteredPlatforms 获取所有已初始化的平台类型列表
func (r *PlatformRegistry) ListRegisteredPlatforms() []model.PlatformType {
	platforms := make([]model.PlatformType, 0, len(r.adapters))
	for _, p := range ListFactories() {
		if _, ok := r.adapters[p]; ok {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

// GetAdapter 获取适配器实例
func (r *PlatformRegistry) GetAdapter(platform model.PlatformType) (interfaces.PlatformAdapter, error) {
	adapterIns, ok := r.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("平台%s未初始化适配器实例（已初始化：%v）", platform, r.ListRegisteredPlatforms())
	}
	return adapterIns, nil
}
