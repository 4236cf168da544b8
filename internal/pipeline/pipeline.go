package pipeline

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/LJTian/NewsDigest/internal/config"
	"github.com/LJTian/NewsDigest/internal/dates"
	"github.com/LJTian/NewsDigest/internal/discover"
	"github.com/LJTian/NewsDigest/internal/extract"
	"github.com/LJTian/NewsDigest/internal/fetcher"
	"github.com/LJTian/NewsDigest/internal/seen"
)

const (
	// 同一目标站点两次请求的最小间隔，避免触发反爬
	defaultThrottle = 800 * time.Millisecond
	// 参考实现是串行的；调大 Workers 可以并发抽取，限速仍按站点生效
	defaultWorkers = 1
)

// Runner 驱动一轮完整的采集：发现 → 合并去重 → 抽取 → 过滤。
// 单条文章的任何失败都只记日志，不会中断整轮运行。
type Runner struct {
	Sources     []config.Source
	Keywords    []string
	TZName      string
	WindowHours int
	Throttle    time.Duration
	Workers     int

	Fetcher *fetcher.Client
	Seen    seen.Store

	hostMu  sync.Mutex
	lastHit map[string]time.Time
}

func New(cfg *config.Config, fc *fetcher.Client, st seen.Store) *Runner {
	return &Runner{
		Sources:     cfg.Sources,
		Keywords:    cfg.Keywords,
		TZName:      cfg.TZName,
		WindowHours: cfg.HoursRecent,
		Throttle:    defaultThrottle,
		Workers:     defaultWorkers,
		Fetcher:     fc,
		Seen:        st,
	}
}

// Run 执行一轮采集，返回按发现顺序排列的入选文章
func (r *Runner) Run(ctx context.Context) ([]extract.Record, error) {
	if r.Fetcher == nil {
		r.Fetcher = fetcher.New()
	}
	if r.Seen == nil {
		r.Seen = seen.Noop{}
	}

	seenSet, err := r.Seen.Load(ctx)
	if err != nil {
		seenSet = make(map[string]struct{})
	}

	listing := r.discoverAll(ctx)
	log.Printf("combined listing: %d unique urls", len(listing))

	folded := foldAll(r.Keywords)
	filtered := listing
	if len(folded) > 0 {
		var kept []discover.Item
		for _, it := range listing {
			if containsAny(folded, it.Title, it.URL) {
				kept = append(kept, it)
			}
		}
		log.Printf("keyword prefilter: kept %d of %d items", len(kept), len(listing))
		if len(kept) == 0 {
			// 标题/URL 全不命中时放弃预过滤，让正文匹配有机会兜底
			log.Printf("keyword prefilter empty, continuing with full listing")
			kept = listing
		}
		filtered = kept
	}

	records := r.extractAll(ctx, filtered, folded, seenSet)

	if err := r.Seen.Save(ctx, seenSet); err != nil {
		log.Printf("warn: persist seen set: %v", err)
	}

	if len(records) == 0 {
		log.Printf("no articles inside the recency window")
	}
	return records, nil
}

// discoverAll 逐站点发现候选链接，列表页失败或为空时退回首页，
// 然后跨站点按 URL 去重（保留首次出现的顺序）。
func (r *Runner) discoverAll(ctx context.Context) []discover.Item {
	var all []discover.Item
	for _, src := range r.Sources {
		items := r.discoverPage(ctx, src.ListingURL, src)
		if len(items) == 0 {
			log.Printf("%s: listing gave 0 items, trying homepage", src.Name)
			items = r.discoverPage(ctx, src.HomepageURL, src)
		}
		log.Printf("%s: %d listing items", src.Name, len(items))
		for i := range items {
			items[i].Source = src.Name
		}
		all = append(all, items...)
	}

	seenURL := make(map[string]struct{}, len(all))
	out := make([]discover.Item, 0, len(all))
	for _, it := range all {
		if _, dup := seenURL[it.URL]; dup {
			continue
		}
		seenURL[it.URL] = struct{}{}
		out = append(out, it)
	}
	return out
}

func (r *Runner) discoverPage(ctx context.Context, pageURL string, src config.Source) []discover.Item {
	if pageURL == "" {
		return nil
	}
	if err := r.waitHost(ctx, pageURL); err != nil {
		return nil
	}
	res, err := r.Fetcher.Get(ctx, pageURL)
	if err != nil {
		log.Printf("%s: fetch %s: %v", src.Name, pageURL, err)
		return nil
	}
	return discover.FromHTML(res.Body, pageURL, src.DomainPrefix, src.MaxItems)
}

// extractAll 对幸存的候选链接做限速抽取与最终过滤。
// 并发度由 Workers 控制；slots 按下标写入，保证结果保持发现顺序。
func (r *Runner) extractAll(ctx context.Context, items []discover.Item, folded []string, seenSet map[string]struct{}) []extract.Record {
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	type slot struct {
		rec extract.Record
		ok  bool
	}
	slots := make([]slot, len(items))

	var (
		mu  sync.Mutex // 保护 seenSet
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)

	for i, it := range items {
		// 没配关键词时跳过历史已投递的 URL；配了关键词则全量重查
		if len(folded) == 0 {
			mu.Lock()
			_, dup := seenSet[it.URL]
			mu.Unlock()
			if dup {
				continue
			}
		}

		if ctx.Err() != nil {
			log.Printf("run deadline reached, stopping after %d items", i)
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, it discover.Item) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, err := r.extractOne(ctx, it)
			if err != nil {
				log.Printf("extract %s: %v", it.URL, err)
				return
			}

			if len(folded) > 0 && !containsAny(folded, rec.Title+" "+rec.BodyText) {
				return
			}
			if !dates.IsRecent(rec.PublishedAt, r.TZName, r.WindowHours) {
				return
			}

			rec.Source = it.Source

			mu.Lock()
			seenSet[it.URL] = struct{}{}
			mu.Unlock()

			slots[idx] = slot{rec: rec, ok: true}
			log.Printf("ok [%s] %.80s", rec.Source, rec.Title)
		}(i, it)
	}
	wg.Wait()

	out := make([]extract.Record, 0, len(items))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.rec)
		}
	}
	return out
}

func (r *Runner) extractOne(ctx context.Context, it discover.Item) (extract.Record, error) {
	if err := r.waitHost(ctx, it.URL); err != nil {
		return extract.Record{}, err
	}
	res, err := r.Fetcher.Get(ctx, it.URL)
	if err != nil {
		return extract.Record{}, err
	}
	return extract.Article(it.URL, res.Body, r.TZName), nil
}

// waitHost 为同一 host 的请求预约时间槽并睡到那一刻，
// 并发抽取时也能保证按站点的最小请求间隔。
func (r *Runner) waitHost(ctx context.Context, rawURL string) error {
	if r.Throttle <= 0 {
		return ctx.Err()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	r.hostMu.Lock()
	if r.lastHit == nil {
		r.lastHit = make(map[string]time.Time)
	}
	now := time.Now()
	next := r.lastHit[u.Host].Add(r.Throttle)
	if next.Before(now) {
		next = now
	}
	r.lastHit[u.Host] = next
	r.hostMu.Unlock()

	d := time.Until(next)
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
