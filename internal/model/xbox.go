package model

import "encoding/json"

// ========== Xbox 中转函数输出结构（按 gamertag 拉取的标题列表） ==========

// XboxPayload 根结构
type XboxPayload struct {
	Gamertag string            `json:"gamertag"`
	XUID     string            `json:"xuid"`
	Titles   []json.RawMessage `json:"titles"` // 逐个解析为 XboxTitle
}

// XboxTitle titleId 可能是数字或数字字符串
type XboxTitle struct {
	TitleID      json.RawMessage   `json:"titleId"`
	Name         string            `json:"name"`
	DisplayImage string            `json:"displayImage"`
	Description  string            `json:"description"`
	Achievements []XboxAchievement `json:"achievements"`
}

type XboxAchievement struct {
	ID                json.RawMessage  `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	LockedDescription string           `json:"lockedDescription"`
	AchievementType   string           `json:"achievementType"`
	MediaAssets       []XboxMediaAsset `json:"mediaAssets"`
	ProgressState     string           `json:"progressState"`
	Progression       XboxProgression  `json:"progression"`
}

type XboxMediaAsset struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type XboxProgression struct {
	TimeUnlocked string `json:"timeUnlocked"`
}

// XboxProgressAchieved 已解锁的 progressState 取值
const XboxProgressAchieved = "Achieved"
