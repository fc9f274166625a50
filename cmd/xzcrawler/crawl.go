package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/config"
	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/browser"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/embedding"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/fetcher"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/llm"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/persistence/es"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/storage"
	"github.com/Ki1ro0133/XZCrawler/internal/service/archive"
	"github.com/Ki1ro0133/XZCrawler/internal/service/convert"
	"github.com/Ki1ro0133/XZCrawler/internal/service/crawl"
	"github.com/Ki1ro0133/XZCrawler/internal/service/localize"
	"github.com/Ki1ro0133/XZCrawler/param"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "抓取一轮文章并生成Markdown镜像",
	RunE:  runCrawl,
}

func init() {
	addCrawlFlags(crawlCmd)
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, lg, err := initDeps(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := executeCrawl(ctx, cfg, lg)
	if err != nil {
		return err
	}
	stats.RenderTable(os.Stdout)
	return nil
}

// executeCrawl 按配置装配整条流水线并跑完一轮,crawl与schedule共用
func executeCrawl(ctx context.Context, cfg *config.Config, lg *zap.Logger) (*crawl.RunStats, error) {
	window, err := cfg.Window()
	if err != nil {
		return nil, err
	}

	listing := param.Listing{
		URL:              cfg.Site.ListingURL,
		EntrySelector:    cfg.Site.Selectors.Entry,
		NextPageSelector: cfg.Site.Selectors.NextPage,
		SettleSeconds:    cfg.Browser.PageSettleSeconds,
	}
	launch := param.Launch{
		Headless:             cfg.Browser.Headless,
		UserAgent:            cfg.Site.UserAgent,
		Referer:              cfg.Site.Referer,
		UserDataDir:          cfg.Browser.UserDataDir,
		Bin:                  cfg.Browser.Bin,
		NoSandbox:            cfg.Browser.NoSandbox,
		DisableDevShmUsage:   cfg.Browser.DisableDevShmUsage,
		DisableBlinkFeatures: cfg.Browser.DisableBlinkFeatures,
		Incognito:            cfg.Browser.Incognito,
		DetailTimeoutSeconds: cfg.Crawler.DetailTimeoutSecond,
		DetailBodySelector:   cfg.Site.Selectors.DetailBody,
		DetailTitleSelector:  cfg.Site.Selectors.DetailTitle,
	}

	b, err := browser.InitBrowser(ctx, cfg.Browser.Engine, listing, launch, lg)
	if err != nil {
		return nil, fmt.Errorf("初始化浏览器失败: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			lg.Warn("关闭浏览器失败", zap.Error(err))
		}
	}()

	var detail fetcher.DetailFetcher
	switch cfg.Fetcher.Mode {
	case "static":
		detail = fetcher.InitCollyFetcher(launch, lg)
	case "", "browser":
		detail = fetcher.InitBrowserFetcher(b)
	default:
		return nil, fmt.Errorf("未知抓取模式: %s", cfg.Fetcher.Mode)
	}

	converter := convert.InitConverter(lg)

	store, err := storage.InitMarkdownStore(cfg.Crawler.OutputDir, cfg.Site.BaseURL, lg)
	if err != nil {
		return nil, fmt.Errorf("初始化文章目录失败: %w", err)
	}

	var loc localize.Localizer
	if cfg.Crawler.LocalizeImages {
		loc = localize.InitLocalizer(param.Localize{
			ImagesDir:      store.ImagesDir(),
			Referer:        cfg.Site.Referer,
			UserAgent:      cfg.Site.UserAgent,
			TimeoutSeconds: cfg.Images.TimeoutSecond,
			MaxRedirects:   cfg.Images.MaxRedirects,
			Concurrency:    cfg.Crawler.Concurrency,
		}, lg)
	}

	var summarizer crawl.Summarizer
	if cfg.Summary.Enabled {
		s, err := llm.InitSummarizer(ctx, cfg)
		if err != nil {
			lg.Warn("摘要器初始化失败, 本轮不生成摘要", zap.Error(err))
		} else {
			summarizer = s
		}
	}

	var archiver crawl.Archiver
	if cfg.Elasticsearch.Enabled {
		esClient, err := es.InitTypedEsClient[*model.ArticleDoc](cfg, lg)
		if err != nil {
			lg.Warn("ES客户端初始化失败, 本轮不做归档", zap.Error(err))
		} else {
			var emb embedding.Embedder
			if cfg.Embedder.Enabled {
				e, err := embedding.InitEmbedder(ctx, cfg)
				if err != nil {
					lg.Warn("嵌入器初始化失败, 归档不带向量", zap.Error(err))
				} else {
					emb = e
				}
			}
			archiveSvc := archive.InitArchiveService(esClient, emb, lg)
			if err := archiveSvc.EnsureIndex(ctx); err != nil {
				lg.Warn("归档索引不可用, 本轮不做归档", zap.Error(err))
			} else {
				archiver = archiveSvc
			}
		}
	}

	opts := crawl.Options{
		BaseURL: cfg.Site.BaseURL,
		Selectors: crawl.EntrySelectors{
			Title:       cfg.Site.Selectors.Title,
			PublishTime: cfg.Site.Selectors.PublishTime,
			Category:    cfg.Site.Selectors.Category,
			Author:      cfg.Site.Selectors.Author,
		},
		Window:           window,
		Concurrency:      cfg.Crawler.Concurrency,
		MaxPages:         cfg.Crawler.MaxPages,
		Retries:          cfg.Crawler.Retries,
		RetryBaseDelay:   time.Duration(cfg.Crawler.RetryBaseDelaySecond) * time.Second,
		BoundaryMinPages: cfg.Crawler.BoundaryMinPages,
		RateLimit:        cfg.Crawler.RateLimit,
		RateBurst:        cfg.Crawler.RateBurst,
		LocalizeImages:   cfg.Crawler.LocalizeImages,
	}

	svc := crawl.InitCrawlService(b, detail, converter, store, loc, summarizer, archiver, opts, lg)
	return svc.Run(ctx)
}
