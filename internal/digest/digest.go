package digest

import (
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/LJTian/NewsDigest/internal/extract"
)

// 每篇文章正文在邮件里最多展示的字符数
const bodyCharBudget = 1500

const pageTemplate = `<!doctype html>
<html lang="es"><head><meta charset="utf-8"><title>Noticias ( {{.Now}} )</title></head>
<body style="font-family:system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial; max-width:800px; margin:24px auto; padding:0 16px;">
<h1 style="margin-bottom:8px;">Resumen de noticias</h1>
<div style="color:#666; font-size:12px; margin-bottom:16px;">Generado {{.Now}} ({{.TZName}})</div>
{{if .Articles}}{{range .Articles}}<article style="margin-bottom:24px;">
  <div style="font-size:12px;color:#999">{{.Source}}</div>
  <h3 style="margin:2px 0 6px 0;">{{.Title}}</h3>
  <div style="font-size:12px;color:#666;">{{.DateLabel}} - <a href="{{.URL}}">{{.URL}}</a></div>
  <p style="white-space:pre-wrap; line-height:1.45; margin-top:10px;">{{.Body}}</p>
</article>
{{end}}{{else}}<p>No hay artículos en el rango actual.</p>{{end}}
</body></html>`

var tmpl = template.Must(template.New("digest").Parse(pageTemplate))

type articleView struct {
	Source    string
	Title     string
	DateLabel string
	URL       string
	Body      string
}

type pageView struct {
	Now      string
	TZName   string
	Articles []articleView
}

// Render 把入选文章按抽取顺序渲染成自包含的 HTML 文档和纯文本兜底正文。
// 文章集为空时输出占位提示而不是空页。
func Render(arts []extract.Record, tzname string) (htmlBody, textBody string) {
	loc, err := time.LoadLocation(tzname)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc).Format("2006-01-02 15:04")

	view := pageView{Now: now, TZName: tzname}
	for _, a := range arts {
		label := "Sin fecha"
		if a.PublishedAt != nil {
			label = a.PublishedAt.In(loc).Format("2006-01-02 15:04")
		}
		view.Articles = append(view.Articles, articleView{
			Source:    a.Source,
			Title:     a.Title,
			DateLabel: label,
			URL:       a.URL,
			Body:      truncateRunes(a.BodyText, bodyCharBudget),
		})
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, view); err != nil {
		log.Printf("digest: render template: %v", err)
	}

	return buf.String(), plainText(view)
}

func plainText(view pageView) string {
	var b strings.Builder
	b.WriteString("Resumen de noticias - " + view.Now + " (" + view.TZName + ")\n\n")
	if len(view.Articles) == 0 {
		b.WriteString("No hay artículos en el rango actual.\n")
		return b.String()
	}
	for _, a := range view.Articles {
		b.WriteString("[" + a.Source + "] " + a.Title + "\n")
		b.WriteString(a.DateLabel + " - " + a.URL + "\n\n")
	}
	return b.String()
}

// truncateRunes 按 rune 数截断，超出时追加省略号标记
func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
