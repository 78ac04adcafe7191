// internal/adapter/registry.go
package adapter

import (
	"fmt"
	"sort"
	"sync"

	"TrophySync/internal/interfaces"
	"TrophySync/internal/model"

	"github.com/sirupsen/logrus"
)

// ========== 全局工厂函数注册表 ==========
var (
	factoryMu       sync.RWMutex
	factoryRegistry = make(map[model.PlatformType]interfaces.Factory)
)

// Register 供适配器init函数调用，注册工厂函数
func Register(platform model.PlatformType, factory interfaces.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("平台%s的工厂函数不能为nil", platform))
	}
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factoryRegistry[platform]; exists {
		logrus.Warnf("平台%s的适配器已注册，将覆盖原有实现", platform)
	}
	factoryRegistry[platform] = factory
}

// GetFactory 获取指定平台的工厂函数
func GetFactory(platform model.PlatformType) (interfaces.Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	factory, ok := factoryRegistry[platform]
	return factory, ok
}

// ListFactories 列出所有已注册的工厂函数平台（按名称排序）
func ListFactories() []model.PlatformType {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	platforms := make([]model.PlatformType, 0, len(factoryRegistry))
	for p := range factoryRegistry {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}
