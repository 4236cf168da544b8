package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldText 做 NFKD 分解、去掉组合重音符并转小写，
// 让 "México" 和 "mexico"、"ECONOMÍA" 和 "economia" 互相匹配。
func foldText(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// foldAll 预先归一化关键词列表，空词丢弃
func foldAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if f := foldText(strings.TrimSpace(k)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// containsAny 判断归一化后的关键词是否命中任一文本
func containsAny(folded []string, texts ...string) bool {
	for _, raw := range texts {
		ft := foldText(raw)
		for _, k := range folded {
			if strings.Contains(ft, k) {
				return true
			}
		}
	}
	return false
}
