package psn

import (
	"fmt"
	"strings"

	"TrophySync/internal/adapter"
	"TrophySync/internal/interfaces"
	"TrophySync/internal/model"

	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(model.PlatformPSN, NewPSNAdapter)
}

type Adapter struct {
	logger *logrus.Logger
}

func NewPSNAdapter(logger *logrus.Logger) interfaces.PlatformAdapter {
	return &Adapter{logger: logger}
}

// GetType ========== 实现PlatformAdapter接口 ==========
func (p *Adapter) GetType() model.PlatformType {
	return model.PlatformPSN
}

// Normalize 奖杯标题名是必需键；npCommunicationId 有则作为平台原生ID，没有则链接上的原生ID为空
func (p *Adapter) Normalize(payload []byte) (*model.NormalizedBatch, error) {
	var raw model.PSNPayload
	if err := adapter.DecodePayload(payload, &raw); err != nil {
		return nil, fmt.Errorf("PSN负载: %w", err)
	}

	batch := &model.NormalizedBatch{Platform: model.PlatformPSN}
	for _, item := range raw.FullGameData {
		var entry model.PSNGameEntry
		if err := adapter.DecodeEntry(item, &entry); err != nil {
			name := adapter.FirstNonEmpty(adapter.NameHint(item, "trophyTitle", "trophyTitleName"), adapter.NameHint(item, "trophyTitle", "npCommunicationId"))
			p.logger.WithError(err).WithField("game", name).Warn("PSN奖杯标题条目格式错误，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: name, Reason: "条目格式错误"})
			continue
		}
		title := entry.TrophyTitle
		name := strings.TrimSpace(title.TrophyTitleName)
		if name == "" {
			p.logger.WithField("np_communication_id", title.NpCommunicationID).Warn("PSN奖杯标题名缺失，跳过")
			batch.Skipped = append(batch.Skipped, model.SkippedGame{Name: title.NpCommunicationID, Reason: "奖杯标题名缺失"})
			continue
		}

		batch.Games = append(batch.Games, &model.NormalizedGame{
			ExternalGameID: strings.TrimSpace(title.NpCommunicationID),
			Name:           name,
			IconURL:        strings.TrimSpace(title.TrophyTitleIconURL),
			Description:    strings.TrimSpace(title.TrophyTitleDetail),
			Achievements:   p.buildAchievements(entry.TrophyData.Trophies),
			Unlocks:        p.buildUnlocks(name, entry.UserAchievements.Trophies),
		})
	}
	return batch, nil
}

func (p *Adapter) buildAchievements(trophies []model.PSNTrophy) []model.NormalizedAchievement {
	out := make([]model.NormalizedAchievement, 0, len(trophies))
	for _, t := range trophies {
		// trophyId 缺失时 APIName 为空，由成就写入步骤跳过
		id, _ := adapter.IntegerID(t.TrophyID)
		out = append(out, model.NormalizedAchievement{
			APIName:     id,
			Name:        strings.TrimSpace(t.TrophyName),
			Description: t.TrophyDetail,
			IconURL:     t.TrophyIconURL,
			// PSN 没有单独的未解锁图标
			LockedIconURL: t.TrophyIconURL,
			Type:          t.TrophyType,
		})
	}
	return out
}

func (p *Adapter) buildUnlocks(game string, earned []model.PSNEarnedTrophy) []model.NormalizedUnlock {
	var out []model.NormalizedUnlock
	for _, t := range earned {
		if !t.Earned {
			continue
		}
		id, ok := adapter.IntegerID(t.TrophyID)
		if !ok {
			p.logger.WithField("game", game).Warn("PSN已获得奖杯缺少trophyId，跳过")
			continue
		}
		out = append(out, model.NormalizedUnlock{
			APIName:    id,
			UnlockTime: adapter.RFC3339Time(t.EarnedDateTime),
		})
	}
	return out
}
