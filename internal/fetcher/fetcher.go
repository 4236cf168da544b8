package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	defaultTimeout = 15 * time.Second
	defaultRetries = 2
	maxBodyBytes   = 4 << 20 // 4MB，防止超大页面

	// 部分站点会拦截明显的爬虫 UA，这里统一伪装成普通浏览器
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage   = "es-ES,es;q=0.9,en;q=0.8"
	refererHeader    = "https://www.google.com/"
)

// FetchError 表示重试耗尽后的抓取失败，携带 URL 和根因
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Result 是一次成功抓取的响应体和状态码
type Result struct {
	Body       []byte
	StatusCode int
}

// Client 带固定重试预算的页面抓取客户端。
// 非 2xx 状态码与传输错误同样视为失败并参与重试。
type Client struct {
	Timeout time.Duration
	Retries int
}

func New() *Client {
	return &Client{
		Timeout: defaultTimeout,
		Retries: defaultRetries,
	}
}

// Get 抓取一个 URL。重试间隔按 1.2s * 次数递增；
// 耗尽重试后返回 *FetchError，调用方不应再重试。
func (c *Client) Get(ctx context.Context, url string) (*Result, error) {
	retries := c.Retries
	if retries <= 0 {
		retries = defaultRetries
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(float64(attempt) * 1.2 * float64(time.Second))
			select {
			case <-ctx.Done():
				return nil, &FetchError{URL: url, Cause: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		res, err := c.doOnce(url)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}

	return nil, &FetchError{URL: url, Cause: lastErr}
}

func (c *Client) doOnce(url string) (*Result, error) {
	col := colly.NewCollector(
		colly.UserAgent(browserUserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	col.MaxBodySize = maxBodyBytes

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	col.SetRequestTimeout(timeout)

	col.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
		r.Headers.Set("Accept-Language", acceptLanguage)
		r.Headers.Set("Referer", refererHeader)
	})

	var res *Result
	col.OnResponse(func(r *colly.Response) {
		res = &Result{Body: r.Body, StatusCode: r.StatusCode}
	})

	// 非 2xx 时 colly 不会触发 OnResponse，错误从 Visit 返回
	if err := col.Visit(url); err != nil {
		return nil, err
	}
	col.Wait()

	if res == nil {
		return nil, errors.New("empty response")
	}
	return res, nil
}
