package tools

import (
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var expiryRegex = regexp.MustCompile(
	`(?i)\b(registry expiry date|registrar registration expiration date|registry expiration date|expiration date|expiration|expiry date|expiry|expires on|expires|paid-till)\b[^0-9A-Za-z]*([0-9A-Za-z ,:/\-T\.Z+]+)`,
)

// 注册数据中常见的日期格式
var layouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"02-Jan-2006",
	"02.01.2006",
	"Jan 02, 2006",
	"January 2 2006",
	"January 02 2006",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02T15:04:05-0700",
	"Mon Jan 2 15:04:05 MST 2006",
}

// NormalizeDate 尝试按已知格式解析日期，成功时返回 YYYY-MM-DD。
func NormalizeDate(raw string) (string, bool) {
	cleaned := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), ":"))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "", false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return "", false
}

// FirstDate 处理多值字段（逗号或换行分隔），返回第一个可解析的日期。
func FirstDate(raw string) (string, bool) {
	if d, ok := NormalizeDate(raw); ok {
		return d, true
	}
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '|' }) {
		if d, ok := NormalizeDate(part); ok {
			return d, true
		}
	}
	if i := strings.Index(raw, ","); i > 0 {
		return NormalizeDate(raw[:i])
	}
	return "", false
}

// ExtractExpiry 从原始 WHOIS 文本中抽取到期日期。
func ExtractExpiry(result string) (string, bool) {
	for _, raw := range strings.Split(strings.ReplaceAll(result, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)
		// 跳过提示/免责声明行
		if line == "" || strings.HasPrefix(lower, "notice:") ||
			strings.Contains(lower, "terms of use") ||
			strings.Contains(lower, "disclaimer") {
			continue
		}
		if match := expiryRegex.FindStringSubmatch(line); len(match) >= 3 {
			if parsed, ok := NormalizeDate(match[2]); ok {
				return parsed, true
			}
		}
	}
	return "", false
}

// Today 返回 now 所在本地日历日，表示为该日的 UTC 零点。
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween 返回两个日历日之间的整天数 (to - from)。
func DaysBetween(from, to time.Time) int {
	from = Today(from)
	to = Today(to)
	return int(to.Sub(from).Hours() / 24)
}
