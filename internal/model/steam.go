package model

import "encoding/json"

// ========== Steam 中转函数输出结构 ==========

// SteamPayload 根结构：{ games: [...] }，条目逐个解析，单条格式错误只跳过该条
type SteamPayload struct {
	Games []json.RawMessage `json:"games"`
}

// SteamGameEntry 单个游戏：基础信息 + 成就定义 + 玩家统计
type SteamGameEntry struct {
	Game                  SteamGame             `json:"game"`
	AvailableAchievements []SteamAchievementDef `json:"availableAchievements"`
	PlayerStats           SteamPlayerStats      `json:"playerStats"`
}

// SteamGame appid 须为整数，其他类型的条目会被跳过
type SteamGame struct {
	AppID       json.RawMessage `json:"appid"`
	Name        string          `json:"name"`
	ImgIconURL  string          `json:"img_icon_url"`
	Description string          `json:"description"`
}

// SteamAchievementDef GetSchemaForGame 的成就定义，name 为 API 名
type SteamAchievementDef struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IconGray    string `json:"icongray"`
	Type        string `json:"type"`
}

// SteamPlayerStats 部分游戏没有任何统计数据，playerstats 可为空对象
type SteamPlayerStats struct {
	PlayerStats SteamPlayerStatsBody `json:"playerstats"`
}

type SteamPlayerStatsBody struct {
	Achievements []SteamPlayerAchievement `json:"achievements"`
}

// SteamPlayerAchievement 兼容中转函数的 name/unlocked 与官方 API 的 apiname/achieved
type SteamPlayerAchievement struct {
	Name       string          `json:"name"`
	APIName    string          `json:"apiname"`
	Unlocked   json.RawMessage `json:"unlocked"`
	Achieved   json.RawMessage `json:"achieved"`
	UnlockTime json.RawMessage `json:"unlocktime"`
}
