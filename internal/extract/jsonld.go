package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// newsArticleMeta 是从 JSON-LD NewsArticle 块里读出的原始字段
type newsArticleMeta struct {
	Headline      string
	Body          string
	Author        string
	DatePublished string
	DateModified  string
}

// findNewsArticle 扫描页面里的 ld+json 脚本块，返回第一个 @type 为
// NewsArticle（标量或列表形式）的块。坏 JSON 直接跳过。
func findNewsArticle(doc *goquery.Document) *newsArticleMeta {
	var meta *newsArticleMeta

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return true
		}

		for _, obj := range jsonObjects(data) {
			if !isNewsArticle(obj["@type"]) {
				continue
			}
			meta = &newsArticleMeta{
				Headline:      stringField(obj, "headline"),
				Body:          stringField(obj, "articleBody"),
				Author:        authorNames(obj["author"]),
				DatePublished: stringField(obj, "datePublished"),
				DateModified:  stringField(obj, "dateModified"),
			}
			return false
		}
		return true
	})

	return meta
}

// jsonObjects 把单个对象或对象数组统一为对象切片
func jsonObjects(data any) []map[string]any {
	switch v := data.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

func isNewsArticle(typeVal any) bool {
	switch t := typeVal.(type) {
	case string:
		return t == "NewsArticle"
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s == "NewsArticle" {
				return true
			}
		}
	}
	return false
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// authorNames 把 author 字段（对象 / 字符串 / 两者混合的列表）解析为
// 按原始顺序逗号拼接的显示名，空项跳过。
func authorNames(v any) string {
	var names []string
	switch a := v.(type) {
	case string:
		names = append(names, strings.TrimSpace(a))
	case map[string]any:
		names = append(names, oneAuthorName(a))
	case []any:
		for _, e := range a {
			names = append(names, oneAuthorName(e))
		}
	}

	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, ", ")
}

// oneAuthorName 优先 name 字段，其次 @id，再退回原始字符串
func oneAuthorName(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case map[string]any:
		if n := stringField(a, "name"); n != "" {
			return n
		}
		if id := stringField(a, "@id"); id != "" {
			return id
		}
	}
	return ""
}
