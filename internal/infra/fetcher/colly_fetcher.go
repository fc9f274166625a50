package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/param"
)

// collyFetcher 静态抓取后端,适用于不依赖前端渲染的legacy文章页
type collyFetcher struct {
	userAgent     string
	referer       string
	bodySelector  string
	titleSelector string
	timeout       time.Duration
	logger        *zap.Logger
}

func InitCollyFetcher(launch param.Launch, logger *zap.Logger) DetailFetcher {
	timeout := 60 * time.Second
	if launch.DetailTimeoutSeconds > 0 {
		timeout = time.Duration(launch.DetailTimeoutSeconds) * time.Second
	}
	return &collyFetcher{
		userAgent:     launch.UserAgent,
		referer:       launch.Referer,
		bodySelector:  launch.DetailBodySelector,
		titleSelector: launch.DetailTitleSelector,
		timeout:       timeout,
		logger:        logger,
	}
}

// FetchDetail 每次抓取使用独立collector,互不串状态
func (f *collyFetcher) FetchDetail(ctx context.Context, url string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(f.timeout)

	var body, title, docTitle string
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		if f.referer != "" {
			r.Headers.Set("Referer", f.referer)
		}
	})
	c.OnHTML(f.bodySelector, func(e *colly.HTMLElement) {
		if body != "" {
			return
		}
		html, err := e.DOM.Html()
		if err != nil {
			fetchErr = err
			return
		}
		body = html
	})
	c.OnHTML(f.titleSelector, func(e *colly.HTMLElement) {
		if title == "" {
			title = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML("title", func(e *colly.HTMLElement) {
		if docTitle == "" {
			docTitle = strings.TrimSpace(e.Text)
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(url); err != nil {
		return "", "", fmt.Errorf("访问详情页失败: %w", err)
	}
	c.Wait()
	if fetchErr != nil {
		return "", "", fmt.Errorf("抓取详情页失败: %w", fetchErr)
	}
	if title == "" {
		title = docTitle
	}
	return body, title, nil
}
