package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/browser"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/fetcher"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/storage"
	"github.com/Ki1ro0133/XZCrawler/internal/service/convert"
	"github.com/Ki1ro0133/XZCrawler/internal/service/localize"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CrawlService 抓取编排器:分页遍历列表页,按窗口过滤后并发抓取详情,
// 逐篇落盘并在结束时输出汇总
type CrawlService interface {
	Run(ctx context.Context) (*RunStats, error)
}

// Summarizer 可选的文章摘要器,失败时降级为空摘要
type Summarizer interface {
	Summarize(ctx context.Context, title string, content string) (string, error)
}

// Archiver 可选的归档器:单篇随抓随写,收尾阶段整批重写
type Archiver interface {
	ArchiveArticle(ctx context.Context, record *entity.ArticleRecord) error
	ArchiveArticles(ctx context.Context, records []*entity.ArticleRecord) error
}

// EntrySelectors 列表页条目内各字段的CSS选择器
type EntrySelectors struct {
	Title       string
	PublishTime string
	Category    string
	Author      string
}

// Options 单次运行的编排参数
type Options struct {
	BaseURL          string
	Selectors        EntrySelectors
	Window           entity.CrawlWindow
	Concurrency      int
	MaxPages         int
	Retries          int
	RetryBaseDelay   time.Duration
	BoundaryMinPages int
	RateLimit        float64
	RateBurst        int
	LocalizeImages   bool
}

type crawlService struct {
	browser    browser.Browser
	detail     fetcher.DetailFetcher
	converter  convert.Converter
	store      storage.ArticleStore
	localizer  localize.Localizer
	summarizer Summarizer
	archiver   Archiver
	opts       Options
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu        sync.Mutex
	seen      map[string]struct{}
	results   []*entity.ArticleRecord
	failures  []entity.FailureRecord
	saveCount int
	stats     RunStats
}

// InitCrawlService 构造编排器,localizer/summarizer/archiver传nil表示关闭对应环节
func InitCrawlService(
	b browser.Browser,
	detail fetcher.DetailFetcher,
	converter convert.Converter,
	store storage.ArticleStore,
	localizer localize.Localizer,
	summarizer Summarizer,
	archiver Archiver,
	opts Options,
	logger *zap.Logger,
) CrawlService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.BoundaryMinPages < 1 {
		opts.BoundaryMinPages = 1
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 2 * time.Second
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &crawlService{
		browser:    b,
		detail:     detail,
		converter:  converter,
		store:      store,
		localizer:  localizer,
		summarizer: summarizer,
		archiver:   archiver,
		opts:       opts,
		limiter:    limiter,
		logger:     logger,
		seen:       make(map[string]struct{}),
	}
}
