package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 各站点常见的作者 meta 约定，按可信度排序
var authorMetaNames = []string{
	"author",
	"article:author",
	"byl",
	"dc.creator",
	"parsely-author",
}

// meta 都没有时探测的 DOM 选择器
var authorSelectors = []string{
	"[itemprop='author'] [itemprop='name']",
	"[itemprop='author']",
	"[rel='author']",
	".byline",
	".author",
	".ue-c-article__byline-name",
}

// authorFromDOM 在结构化数据没给出作者时，按固定顺序探测
// meta 标签和常见署名元素，第一个非空命中生效。
func authorFromDOM(doc *goquery.Document) string {
	for _, name := range authorMetaNames {
		for _, attr := range []string{"name", "property"} {
			v := doc.Find("meta[" + attr + "='" + name + "']").First().AttrOr("content", "")
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}

	for _, sel := range authorSelectors {
		v := strings.TrimSpace(doc.Find(sel).First().Text())
		if v != "" {
			return v
		}
	}

	return ""
}
