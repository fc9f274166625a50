package archive

import (
	"context"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/embedding"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/persistence/es"

	"go.uber.org/zap"
)

// ArchiveService 把抓取结果归档进ES
// C是可归档的记录类型,D是对应的文档类型
// 单篇随抓随写,收尾时带嵌入向量整批重写,文档ID固定所以重复写入是幂等的
type ArchiveService[C entity.Crawlable[D], D model.Document] interface {
	EnsureIndex(ctx context.Context) error
	ArchiveArticle(ctx context.Context, record C) error
	ArchiveArticles(ctx context.Context, records []C) error
}

type archiveService[C entity.Crawlable[D], D model.Document] struct {
	esClient es.TypedEsClient[D]
	embedder embedding.Embedder
	logger   *zap.Logger
}

// InitArchiveService 构造归档服务,embedder传nil表示不做向量化
func InitArchiveService[C entity.Crawlable[D], D model.Document](
	esClient es.TypedEsClient[D],
	embedder embedding.Embedder,
	logger *zap.Logger,
) ArchiveService[C, D] {
	return &archiveService[C, D]{
		esClient: esClient,
		embedder: embedder,
		logger:   logger,
	}
}
