package steam

import (
	"fmt"
	"strings"

	"TrophySync/internal/adapter"
	"TrophySync/internal/interfaces"
	"TrophySync/internal/model"

	"github.com/sirupsen/logrus"
)

// iconCDN 游戏图标 hash 的公共地址模板：appid + hash
const iconCDN = "https://media.steampowered.com/steamcommunity/public/images/apps/%s/%s.jpg"

func init() {
	adapter.Register(model.PlatformSteam, NewSteamAdapter)
}

type Adapter struct {
	logger *logrus.Logger
}

func NewSteamAdapter(logger *logrus.Logger) interfaces.PlatformAdapter {
	return &Adapter{logger: logger}
}

// GetType ========== 实现PlatformAdapter接口 ==========
func (s *Adapter) GetType() model.PlatformType {
	return model.PlatformSteam
}

func (s *Adapter) Normalize(payload []byte) (*model.NormalizedBatch, error) {
	var raw model.SteamPayload
	if err := adapter.DecodePayload(payload, &raw); err != nil {
		return nil, fmt.Errorf("Steam负载: %w", err)
	}

	batch := &model.NormalizedBatch{Platform: model.PlatformSteam}
	for _, item := range raw.Games {
		var entry model.SteamGameEntry
		if err := adapter.DecodeEntry(item, &entry); err != nil {
			name := adapter.FirstNonEmpty(adapter.NameHint(item, "game", "name"), adapter.NameHint(item, "game", "appid"))
			s.logger.WithError(err).WithField("game", name).Warn("Steam游戏条目格式错误，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: name, Reason: "条目格式错误"})
			continue
		}
		name := strings.TrimSpace(entry.Game.Name)
		appID, ok := adapter.IntegerID(entry.Game.AppID)
		if !ok {
			s.logger.WithField("game", name).Warn("Steam游戏appid缺失或非整数，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: name, Reason: "appid缺失或非整数"})
			continue
		}
		if name == "" {
			s.logger.WithField("appid", appID).Warn("Steam游戏名称为空，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: appID, Reason: "名称为空"})
			continue
		}

		batch.Games = append(batch.Games, &model.NormalizedGame{
			ExternalGameID: appID,
			Name:           name,
			IconURL:        iconURL(appID, entry.Game.ImgIconURL),
			Description:    strings.TrimSpace(entry.Game.Description),
			Achievements:   s.buildAchievements(entry.AvailableAchievements),
			Unlocks:        s.buildUnlocks(entry.PlayerStats.PlayerStats.Achievements),
		})
	}
	return batch, nil
}

func (s *Adapter) buildAchievements(defs []model.SteamAchievementDef) []model.NormalizedAchievement {
	out := make([]model.NormalizedAchievement, 0, len(defs))
	for _, d := range defs {
		out = append(out, model.NormalizedAchievement{
			APIName:       strings.TrimSpace(d.Name),
			Name:          strings.TrimSpace(d.DisplayName),
			Description:   d.Description,
			IconURL:       d.Icon,
			LockedIconURL: d.IconGray,
			Type:          d.Type,
		})
	}
	return out
}

func (s *Adapter) buildUnlocks(stats []model.SteamPlayerAchievement) []model.NormalizedUnlock {
	var out []model.NormalizedUnlock
	for _, a := range stats {
		if !adapter.FlexBool(a.Unlocked) && !adapter.FlexBool(a.Achieved) {
			continue
		}
		apiName := adapter.FirstNonEmpty(a.Name, a.APIName)
		if apiName == "" {
			continue
		}
		out = append(out, model.NormalizedUnlock{
			APIName:    apiName,
			UnlockTime: adapter.UnixSeconds(a.UnlockTime),
		})
	}
	return out
}

// iconURL img_icon_url 只给 hash，已经是完整地址时原样返回
func iconURL(appID, hash string) string {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return ""
	}
	if strings.HasPrefix(hash, "http://") || strings.HasPrefix(hash, "https://") {
		return hash
	}
	return fmt.Sprintf(iconCDN, appID, hash)
}
