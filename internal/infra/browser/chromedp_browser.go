package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/param"
)

type chromedpBrowser struct {
	listing     param.Listing
	launch      param.Launch
	allocCtx    context.Context
	allocCancel context.CancelFunc
	pageCtx     context.Context
	pageCancel  context.CancelFunc
	logger      *zap.Logger
}

func InitChromedpBrowser(ctx context.Context, listing param.Listing, launch param.Launch, logger *zap.Logger) (Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", launch.Headless),
		chromedp.Flag("disable-blink-features", launch.DisableBlinkFeatures),
		chromedp.Flag("incognito", launch.Incognito),
		chromedp.Flag("disable-dev-shm-usage", launch.DisableDevShmUsage),
		chromedp.Flag("no-sandbox", launch.NoSandbox),
		chromedp.UserAgent(launch.UserAgent),
	)
	if launch.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(launch.UserDataDir))
	}
	if launch.Bin != "" {
		opts = append(opts, chromedp.ExecPath(launch.Bin))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	return &chromedpBrowser{
		listing:     listing,
		launch:      launch,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		pageCtx:     pageCtx,
		pageCancel:  pageCancel,
		logger:      logger,
	}, nil
}

func (b *chromedpBrowser) Close() error {
	b.pageCancel()
	b.allocCancel()
	return nil
}

func (b *chromedpBrowser) settle() time.Duration {
	if b.listing.SettleSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(b.listing.SettleSeconds) * time.Second
}

func (b *chromedpBrowser) NavigateToListing(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := chromedp.Run(b.pageCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Referer": b.launch.Referer}),
		chromedp.Navigate(b.listing.URL),
		chromedp.WaitVisible(b.listing.EntrySelector, chromedp.ByQuery),
		chromedp.Sleep(b.settle()),
	)
	if err != nil {
		return fmt.Errorf("导航到列表页失败: %w", err)
	}
	b.logger.Info("列表页已打开", zap.String("url", b.listing.URL))
	return nil
}

func (b *chromedpBrowser) CurrentPageEntries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(el => el.outerHTML)`, b.listing.EntrySelector)
	var entries []string
	if err := chromedp.Run(b.pageCtx, chromedp.Evaluate(js, &entries)); err != nil {
		return nil, fmt.Errorf("采集列表条目失败: %w", err)
	}
	return entries, nil
}

func (b *chromedpBrowser) AdvanceToNextPage(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	js := fmt.Sprintf(`document.querySelector(%q) !== null`, b.listing.NextPageSelector)
	var hasNext bool
	if err := chromedp.Run(b.pageCtx, chromedp.Evaluate(js, &hasNext)); err != nil {
		return false, fmt.Errorf("检测下一页按钮失败: %w", err)
	}
	if !hasNext {
		return false, nil
	}
	err := chromedp.Run(b.pageCtx,
		chromedp.Click(b.listing.NextPageSelector, chromedp.ByQuery),
		chromedp.Sleep(b.settle()),
	)
	if err != nil {
		return false, fmt.Errorf("翻页失败: %w", err)
	}
	return true, nil
}

// FetchDetailDocument 每次抓取开独立标签页,与列表页互不干扰,
// 多个worker可各自持有标签页并发渲染
func (b *chromedpBrowser) FetchDetailDocument(ctx context.Context, url string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()

	timeout := 60 * time.Second
	if b.launch.DetailTimeoutSeconds > 0 {
		timeout = time.Duration(b.launch.DetailTimeoutSeconds) * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	bodyJS := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		return el ? el.innerHTML : "";
	})()`, b.launch.DetailBodySelector)
	titleJS := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (el && el.textContent.trim()) return el.textContent.trim();
		return document.title || "";
	})()`, b.launch.DetailTitleSelector)

	var content, titleHint string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Referer": b.launch.Referer}),
		chromedp.Navigate(url),
		chromedp.Sleep(b.settle()),
		chromedp.Evaluate(bodyJS, &content),
		chromedp.Evaluate(titleJS, &titleHint),
	)
	if err != nil {
		return "", "", fmt.Errorf("渲染详情页失败: %w", err)
	}
	return content, titleHint, nil
}
