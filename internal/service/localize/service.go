package localize

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/param"
)

// Localizer 把Markdown中的远程图片与内嵌图片改写为本地缓存文件
type Localizer interface {
	// LocalizeFiles 就地改写给定文件,单个引用失败只记录不中断
	LocalizeFiles(ctx context.Context, files []string) (*Result, error)
}

// Result 一次本地化过程的统计
type Result struct {
	Files      int
	Rewritten  int
	Downloaded int
	Failed     int
}

type localizer struct {
	imagesDir   string
	referer     string
	userAgent   string
	concurrency int
	client      *http.Client
	logger      *zap.Logger
}

func InitLocalizer(p param.Localize, logger *zap.Logger) Localizer {
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = 30
	}
	if p.MaxRedirects <= 0 {
		p.MaxRedirects = 10
	}
	if p.Concurrency <= 0 {
		p.Concurrency = 3
	}
	maxRedirects := p.MaxRedirects
	client := &http.Client{
		Timeout: time.Duration(p.TimeoutSeconds) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
	return &localizer{
		imagesDir:   p.ImagesDir,
		referer:     p.Referer,
		userAgent:   p.UserAgent,
		concurrency: p.Concurrency,
		client:      client,
		logger:      logger,
	}
}
