package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultWindowHours 默认的新鲜度窗口（小时）
const DefaultWindowHours = 24

// now 方便测试时替换当前时间
var now = time.Now

// Normalize 把来源各异的日期字符串解析为目标时区的时间。
// 字符串不带时区偏移时按 UTC 处理；空串、解析失败或时区名非法时返回 nil，不向上抛错。
func Normalize(raw, tzname string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	loc, err := time.LoadLocation(tzname)
	if err != nil {
		return nil
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return nil
	}

	t = t.In(loc)
	return &t
}

// IsRecent 判断 t 是否落在 windowHours 小时的新鲜度窗口内。
// t 为 nil 或时区名非法时直接返回 false。
func IsRecent(t *time.Time, tzname string, windowHours int) bool {
	if t == nil {
		return false
	}
	if windowHours <= 0 {
		windowHours = DefaultWindowHours
	}

	loc, err := time.LoadLocation(tzname)
	if err != nil {
		return false
	}

	return now().In(loc).Sub(*t) <= time.Duration(windowHours)*time.Hour
}
