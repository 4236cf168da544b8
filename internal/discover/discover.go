package discover

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// 文章页统一以 .html 结尾；列表页里其它链接（栏目、标签等）都没有该后缀
const articleSuffix = ".html"

// 主策略至少要命中这么多条，否则回退到正则扫描
const minPrimaryItems = 5

// 图集、视频等非文章路径，正则回退时排除
var nonArticleSegments = []string{"/album/", "/video/", "/fotogaleria/"}

var hrefPattern = regexp.MustCompile(`href="([^"]+?\.html)"`)

// Item 是列表页上发现的一条候选文章链接，只在一轮采集内存活
type Item struct {
	URL      string
	Title    string
	TimeHint string
	Source   string
}

// FromHTML 从列表页 HTML 里提取候选文章链接。
// 先走结构化选择器（article 容器内、h2/h3 标题内的链接），命中太少时
// 回退到正则扫描 href 属性。结果按首次出现顺序去重并截断到 maxItems。
func FromHTML(body []byte, pageURL, domainPrefix string, maxItems int) []Item {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var items []Item

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err == nil {
		items = selectorItems(doc, base, domainPrefix)
	}

	if len(items) < minPrimaryItems {
		for _, u := range regexURLs(body, base, domainPrefix) {
			items = append(items, Item{URL: u})
		}
	}

	return dedup(items, maxItems)
}

func selectorItems(doc *goquery.Document, base *url.URL, domainPrefix string) []Item {
	sel := doc.Find("article a[href$='" + articleSuffix + "']")
	if sel.Length() == 0 {
		sel = doc.Find("h2 a[href$='" + articleSuffix + "'], h3 a[href$='" + articleSuffix + "']")
	}

	var items []Item
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		abs := resolve(base, href)
		if abs == "" || !strings.HasPrefix(abs, domainPrefix) {
			return
		}

		item := Item{
			URL:   abs,
			Title: strings.TrimSpace(a.Text()),
		}

		// 时间线索通常在同一个条目容器内（time 元素或站点特有的日期 class）
		parent := a.Closest("article, li, div")
		if parent.Length() > 0 {
			timeEl := parent.Find("time, .ue-c-article__published-date, .mod-date").First()
			item.TimeHint = strings.TrimSpace(timeEl.Text())
		}

		items = append(items, item)
	})
	return items
}

func regexURLs(body []byte, base *url.URL, domainPrefix string) []string {
	var urls []string
	for _, m := range hrefPattern.FindAllSubmatch(body, -1) {
		abs := resolve(base, string(m[1]))
		if abs == "" || !strings.HasPrefix(abs, domainPrefix) {
			continue
		}
		if isNonArticle(abs) {
			continue
		}
		urls = append(urls, abs)
	}
	return urls
}

func isNonArticle(u string) bool {
	for _, seg := range nonArticleSegments {
		if strings.Contains(u, seg) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func dedup(items []Item, maxItems int) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.URL]; ok {
			continue
		}
		seen[it.URL] = struct{}{}
		out = append(out, it)
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	return out
}
