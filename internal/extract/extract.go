package extract

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/LJTian/NewsDigest/internal/dates"
)

// Record 是一篇文章抽取后的统一结构。
// URL 永远有值；其余字段缺失时保持零值，抽取本身不会失败，只会降级。
type Record struct {
	URL         string
	Title       string
	Author      string
	PublishedAt *time.Time
	BodyText    string
	Source      string
}

// Article 对一篇文章页做分层抽取：
//  1. JSON-LD 结构化数据（NewsArticle 块）
//  2. 作者：meta 标签 / 常见 DOM 选择器兜底
//  3. 正文：readability 去模板兜底
//  4. 标题：h1 兜底
//
// 后一层只填前一层留空的字段。
func Article(pageURL string, body []byte, tzname string) Record {
	rec := Record{URL: pageURL}

	doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(body))

	if docErr == nil {
		if meta := findNewsArticle(doc); meta != nil {
			rec.Title = meta.Headline
			rec.BodyText = strings.TrimSpace(meta.Body)
			rec.Author = meta.Author

			raw := meta.DatePublished
			if raw == "" {
				raw = meta.DateModified
			}
			rec.PublishedAt = dates.Normalize(raw, tzname)
		}
	}

	if rec.Author == "" && docErr == nil {
		rec.Author = authorFromDOM(doc)
	}

	if rec.BodyText == "" {
		rec.BodyText = readableBody(body, pageURL)
	}

	if rec.Title == "" && docErr == nil {
		rec.Title = headlineFromDOM(doc)
	}

	return rec
}

// headlineFromDOM 取第一个 h1 的可见文本，优先 header 里的
func headlineFromDOM(doc *goquery.Document) string {
	h := doc.Find("header h1").First()
	if h.Length() == 0 {
		h = doc.Find("h1").First()
	}
	return strings.TrimSpace(h.Text())
}

// readableBody 用 readability 对整页做去模板正文抽取，失败返回空串
func readableBody(body []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = nil
	}
	art, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(art.TextContent)
}
