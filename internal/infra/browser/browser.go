package browser

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/param"
)

// Browser 列表页协作方:渲染页面、产出条目片段、翻页、抓详情
type Browser interface {
	// NavigateToListing 打开列表页并等待条目渲染完成
	NavigateToListing(ctx context.Context) error
	// CurrentPageEntries 当前页全部条目的outerHTML片段
	CurrentPageEntries(ctx context.Context) ([]string, error)
	// AdvanceToNextPage 点击下一页,无下一页时返回false
	AdvanceToNextPage(ctx context.Context) (bool, error)
	// FetchDetailDocument 渲染详情页,返回正文容器HTML与标题提示
	FetchDetailDocument(ctx context.Context, url string) (string, string, error)
	Close() error
}

// InitBrowser 按引擎名构造浏览器后端,默认chromedp
func InitBrowser(ctx context.Context, engine string, listing param.Listing, launch param.Launch, logger *zap.Logger) (Browser, error) {
	if !listing.IsValid() {
		return nil, fmt.Errorf("列表页选项不完整: url=%q entry_selector=%q", listing.URL, listing.EntrySelector)
	}
	switch engine {
	case "rod":
		return InitRodBrowser(listing, launch, logger)
	case "", "chromedp":
		return InitChromedpBrowser(ctx, listing, launch, logger)
	default:
		return nil, fmt.Errorf("未知浏览器引擎: %q", engine)
	}
}
