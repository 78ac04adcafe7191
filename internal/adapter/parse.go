package adapter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DecodePayload 解析中转函数输出；顶层结构不合法时整批失败
func DecodePayload(payload []byte, v interface{}) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("负载为空")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("解析负载失败: %w", err)
	}
	return nil
}

// DecodeEntry 解析单个游戏条目，失败只影响该条目
func DecodeEntry(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("解析条目失败: %w", err)
	}
	return nil
}

// NameHint 按路径从解析失败的条目里尽量取出名称，用于告警和跳过记录
func NameHint(raw []byte, path ...string) string {
	cur := raw
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return ""
		}
		next, ok := obj[key]
		if !ok {
			return ""
		}
		cur = next
	}
	var s string
	if err := json.Unmarshal(cur, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(cur))
}

// IntegerID 仅接受 JSON 整数（字符串、小数、null 均视为非法）
func IntegerID(raw []byte) (string, bool) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return "", false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

// DigitID 接受 JSON 整数或纯数字字符串
func DigitID(raw []byte) (string, bool) {
	if id, ok := IntegerID(raw); ok {
		return id, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

// FlexibleID 接受 JSON 整数或非空字符串
func FlexibleID(raw []byte) (string, bool) {
	if id, ok := IntegerID(raw); ok {
		return id, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// FlexBool 兼容 true/false、1/0 与它们的字符串形式
func FlexBool(raw []byte) bool {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		return true
	}
	return false
}

// UnixSeconds 解析秒级时间戳，0 / 缺失 / 非法都返回 nil（时间未知）
func UnixSeconds(raw []byte) *time.Time {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	t := time.Unix(n, 0).UTC()
	return &t
}

// RFC3339Time 解析 ISO 时间；空串、非法值、零值日期（0001-01-01）返回 nil
func RFC3339Time(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil || t.Year() <= 1 {
		return nil
	}
	t = t.UTC()
	return &t
}

// FirstNonEmpty 返回第一个非空白字符串
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
