package fetcher

import (
	"context"

	"github.com/Ki1ro0133/XZCrawler/internal/infra/browser"
)

// browserFetcher 复用浏览器实例渲染详情页,适配需要执行前端渲染的文章
type browserFetcher struct {
	browser browser.Browser
}

func InitBrowserFetcher(b browser.Browser) DetailFetcher {
	return &browserFetcher{browser: b}
}

func (f *browserFetcher) FetchDetail(ctx context.Context, url string) (string, string, error) {
	return f.browser.FetchDetailDocument(ctx, url)
}
