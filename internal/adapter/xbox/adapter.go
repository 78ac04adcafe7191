package xbox

import (
	"fmt"
	"strings"

	"TrophySync/internal/adapter"
	"TrophySync/internal/interfaces"
	"TrophySync/internal/model"

	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(model.PlatformXbox, NewXboxAdapter)
}

type Adapter struct {
	logger *logrus.Logger
}

func NewXboxAdapter(logger *logrus.Logger) interfaces.PlatformAdapter {
	return &Adapter{logger: logger}
}

// GetType ========== 实现PlatformAdapter接口 ==========
func (x *Adapter) GetType() model.PlatformType {
	return model.PlatformXbox
}

func (x *Adapter) Normalize(payload []byte) (*model.NormalizedBatch, error) {
	var raw model.XboxPayload
	if err := adapter.DecodePayload(payload, &raw); err != nil {
		return nil, fmt.Errorf("Xbox负载: %w", err)
	}

	account := logrus.Fields{"gamertag": raw.Gamertag, "xuid": raw.XUID}
	batch := &model.NormalizedBatch{Platform: model.PlatformXbox}
	for _, item := range raw.Titles {
		var title model.XboxTitle
		if err := adapter.DecodeEntry(item, &title); err != nil {
			name := adapter.FirstNonEmpty(adapter.NameHint(item, "name"), adapter.NameHint(item, "titleId"))
			x.logger.WithError(err).WithFields(account).WithField("game", name).Warn("Xbox标题条目格式错误，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: name, Reason: "条目格式错误"})
			continue
		}
		name := strings.TrimSpace(title.Name)
		// titleId 只接受整数或纯数字字符串
		titleID, ok := adapter.DigitID(title.TitleID)
		if !ok {
			x.logger.WithFields(account).WithField("game", name).Warn("Xbox titleId缺失或类型错误，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: name, Reason: "titleId缺失或类型错误"})
			continue
		}
		if name == "" {
			x.logger.WithFields(account).WithField("title_id", titleID).Warn("Xbox标题名为空，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: titleID, Reason: "名称为空"})
			continue
		}

		game := &model.NormalizedGame{
			ExternalGameID: titleID,
			Name:           name,
			IconURL:        strings.TrimSpace(title.DisplayImage),
			Description:    strings.TrimSpace(title.Description),
		}
		// 成就定义与解锁状态在同一个数组里
		for _, a := range title.Achievements {
			apiName, _ := adapter.FlexibleID(a.ID)
			game.Achievements = append(game.Achievements, model.NormalizedAchievement{
				APIName:       apiName,
				Name:          strings.TrimSpace(a.Name),
				Description:   adapter.FirstNonEmpty(a.Description, a.LockedDescription),
				IconURL:       iconAsset(a.MediaAssets),
				LockedIconURL: iconAsset(a.MediaAssets),
				Type:          a.AchievementType,
			})
			if apiName != "" && strings.EqualFold(a.ProgressState, model.XboxProgressAchieved) {
				game.Unlocks = append(game.Unlocks, model.NormalizedUnlock{
					APIName:    apiName,
					UnlockTime: adapter.RFC3339Time(a.Progression.TimeUnlocked),
				})
			}
		}
		batch.Games = append(batch.Games, game)
	}
	return batch, nil
}

// iconAsset 取 type=Icon 的媒体资源，没有则取第一个
func iconAsset(assets []model.XboxMediaAsset) string {
	for _, m := range assets {
		if strings.EqualFold(m.Type, "Icon") && m.URL != "" {
			return m.URL
		}
	}
	if len(assets) > 0 {
		return assets[0].URL
	}
	return ""
}
