package model

import "encoding/json"

// ========== PSN 中转函数输出结构 ==========

// PSNPayload 根结构：{ fullGameData: [...] }，条目逐个解析
type PSNPayload struct {
	FullGameData []json.RawMessage `json:"fullGameData"`
}

// PSNGameEntry 奖杯标题 + 奖杯定义 + 用户获得情况，三者分开返回
type PSNGameEntry struct {
	TrophyTitle      PSNTrophyTitle  `json:"trophyTitle"`
	TrophyData       PSNTrophyData   `json:"trophyData"`
	UserAchievements PSNUserTrophies `json:"userAchievements"`
}

type PSNTrophyTitle struct {
	NpCommunicationID  string `json:"npCommunicationId"`
	TrophyTitleName    string `json:"trophyTitleName"`
	TrophyTitleIconURL string `json:"trophyTitleIconUrl"`
	TrophyTitleDetail  string `json:"trophyTitleDetail"`
}

type PSNTrophyData struct {
	Trophies []PSNTrophy `json:"trophies"`
}

// PSNTrophy trophyId 是奖杯在标题内的序号
type PSNTrophy struct {
	TrophyID      json.RawMessage `json:"trophyId"`
	TrophyName    string          `json:"trophyName"`
	TrophyDetail  string          `json:"trophyDetail"`
	TrophyIconURL string          `json:"trophyIconUrl"`
	TrophyType    string          `json:"trophyType"`
}

type PSNUserTrophies struct {
	Trophies []PSNEarnedTrophy `json:"trophies"`
}

type PSNEarnedTrophy struct {
	TrophyID       json.RawMessage `json:"trophyId"`
	Earned         bool            `json:"earned"`
	EarnedDateTime string          `json:"earnedDateTime"`
}
