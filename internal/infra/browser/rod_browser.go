package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/param"
)

type rodBrowser struct {
	browser *rod.Browser
	page    *rod.Page
	listing param.Listing
	launch  param.Launch
	logger  *zap.Logger
}

func InitRodBrowser(listing param.Listing, launch param.Launch, logger *zap.Logger) (Browser, error) {
	l := launcher.New().Headless(launch.Headless)
	if launch.Bin != "" {
		l = l.Bin(launch.Bin)
	}
	if launch.UserDataDir != "" {
		l = l.UserDataDir(launch.UserDataDir)
	}
	if launch.NoSandbox {
		l = l.Set("no-sandbox")
	}
	if launch.DisableDevShmUsage {
		l = l.Set("disable-dev-shm-usage")
	}
	if launch.DisableBlinkFeatures != "" {
		l = l.Set("disable-blink-features", launch.DisableBlinkFeatures)
	}
	if launch.Incognito {
		l = l.Set("incognito")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	return &rodBrowser{
		browser: b,
		listing: listing,
		launch:  launch,
		logger:  logger,
	}, nil
}

func (b *rodBrowser) Close() error {
	if b.page != nil {
		_ = b.page.Close()
	}
	return b.browser.Close()
}

func (b *rodBrowser) settle() time.Duration {
	if b.listing.SettleSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(b.listing.SettleSeconds) * time.Second
}

// newStealthPage 反检测页面,按需覆盖UA并带上Referer
func (b *rodBrowser) newStealthPage() (*rod.Page, error) {
	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("创建页面失败: %w", err)
	}
	if b.launch.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.launch.UserAgent}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("设置UA失败: %w", err)
		}
	}
	if b.launch.Referer != "" {
		if _, err := page.SetExtraHeaders([]string{"Referer", b.launch.Referer}); err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("设置Referer失败: %w", err)
		}
	}
	return page, nil
}

func (b *rodBrowser) NavigateToListing(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, err := b.newStealthPage()
	if err != nil {
		return err
	}
	b.page = page
	if err := page.Navigate(b.listing.URL); err != nil {
		return fmt.Errorf("导航到列表页失败: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("等待列表页加载失败: %w", err)
	}
	time.Sleep(b.settle())
	b.logger.Info("列表页已打开", zap.String("url", b.listing.URL))
	return nil
}

func (b *rodBrowser) CurrentPageEntries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.page == nil {
		return nil, fmt.Errorf("列表页尚未打开")
	}
	els, err := b.page.Elements(b.listing.EntrySelector)
	if err != nil {
		return nil, fmt.Errorf("采集列表条目失败: %w", err)
	}
	entries := make([]string, 0, len(els))
	for _, el := range els {
		html, err := el.HTML()
		if err != nil {
			return nil, fmt.Errorf("读取条目HTML失败: %w", err)
		}
		entries = append(entries, html)
	}
	return entries, nil
}

func (b *rodBrowser) AdvanceToNextPage(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if b.page == nil {
		return false, fmt.Errorf("列表页尚未打开")
	}
	has, el, err := b.page.Has(b.listing.NextPageSelector)
	if err != nil {
		return false, fmt.Errorf("检测下一页按钮失败: %w", err)
	}
	if !has {
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, fmt.Errorf("翻页失败: %w", err)
	}
	time.Sleep(b.settle())
	return true, nil
}

func (b *rodBrowser) FetchDetailDocument(ctx context.Context, url string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	page, err := b.newStealthPage()
	if err != nil {
		return "", "", err
	}
	defer page.Close()

	timeout := 60 * time.Second
	if b.launch.DetailTimeoutSeconds > 0 {
		timeout = time.Duration(b.launch.DetailTimeoutSeconds) * time.Second
	}
	page = page.Timeout(timeout)

	if err := page.Navigate(url); err != nil {
		return "", "", fmt.Errorf("打开详情页失败: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", "", fmt.Errorf("等待详情页加载失败: %w", err)
	}
	time.Sleep(b.settle())

	bodyJS := fmt.Sprintf(`() => {
		const el = document.querySelector(%q);
		return el ? el.innerHTML : "";
	}`, b.launch.DetailBodySelector)
	bodyRes, err := page.Eval(bodyJS)
	if err != nil {
		return "", "", fmt.Errorf("提取详情正文失败: %w", err)
	}
	titleJS := fmt.Sprintf(`() => {
		const el = document.querySelector(%q);
		if (el && el.textContent.trim()) return el.textContent.trim();
		return document.title || "";
	}`, b.launch.DetailTitleSelector)
	titleRes, err := page.Eval(titleJS)
	if err != nil {
		return "", "", fmt.Errorf("提取详情标题失败: %w", err)
	}
	return bodyRes.Value.Str(), titleRes.Value.Str(), nil
}
