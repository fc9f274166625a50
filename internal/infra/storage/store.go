package storage

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
)

// ArticleStore 文章落盘:单篇文件、汇总索引、失败清单
type ArticleStore interface {
	// SaveArticle 立即写入单篇文件,返回相对文件名
	SaveArticle(record *entity.ArticleRecord) (string, error)
	// WriteRunningIndex 抓取过程中周期性重写的运行中索引
	WriteRunningIndex(records []*entity.ArticleRecord, window entity.CrawlWindow) error
	// WriteFinalIndex 收尾时写入带时间戳的最终索引,返回相对文件名
	WriteFinalIndex(records []*entity.ArticleRecord, window entity.CrawlWindow) (string, error)
	// WriteFailures 失败清单,空切片时不落盘
	WriteFailures(failures []entity.FailureRecord) (string, error)
	// Dir 文章目录绝对路径
	Dir() string
	// ImagesDir 图片缓存目录绝对路径,与文章目录同级布局
	ImagesDir() string
	// MarkdownFiles 列出全部文章文件(不含索引与失败清单)
	MarkdownFiles() ([]string, error)
}

func InitMarkdownStore(dir, source string, logger *zap.Logger) (ArticleStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	return &markdownStore{
		dir:    dir,
		source: source,
		logger: logger,
	}, nil
}
