package archive

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// EnsureIndex 保证归档索引存在,mapping取自文档类型
func (as *archiveService[C, D]) EnsureIndex(ctx context.Context) error {
	return as.esClient.CreateIndexWithMapping(ctx)
}

// ArchiveArticle 单篇随抓随写,不做向量化,向量留给收尾的整批归档补齐
func (as *archiveService[C, D]) ArchiveArticle(ctx context.Context, record C) error {
	doc := record.ToDocument()
	if err := as.esClient.IndexDocWithID(ctx, doc); err != nil {
		return fmt.Errorf("单篇归档失败: %w", err)
	}
	return nil
}

// ArchiveArticles 收尾整批归档,配置了嵌入器时先按批次补向量
// 向量化失败只降级为无向量归档,不影响文档本身入库
func (as *archiveService[C, D]) ArchiveArticles(ctx context.Context, records []C) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]D, 0, len(records))
	for _, rec := range records {
		docs = append(docs, rec.ToDocument())
	}

	if as.embedder != nil {
		as.embedDocs(ctx, docs)
	}

	if err := as.esClient.BulkIndexDocsWithID(ctx, docs); err != nil {
		return fmt.Errorf("整批归档失败: %w", err)
	}
	as.logger.Info("归档完成", zap.Int("文章数", len(docs)))
	return nil
}

// embedDocs 按嵌入器的批次大小分批向量化,单批失败跳过该批继续
func (as *archiveService[C, D]) embedDocs(ctx context.Context, docs []D) {
	batchSize := as.embedder.BatchSize()
	if batchSize < 1 {
		batchSize = 1
	}
	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, 0, len(batch))
		for _, doc := range batch {
			texts = append(texts, doc.GetEmbeddingString())
		}
		vectors, err := as.embedder.Embed(ctx, texts)
		if err != nil {
			as.logger.Warn("批次向量化失败, 该批按无向量归档",
				zap.Int("起始", start), zap.Int("数量", len(batch)), zap.Error(err))
			continue
		}
		if len(vectors) != len(batch) {
			as.logger.Warn("向量数量与文档数不一致, 该批按无向量归档",
				zap.Int("文档数", len(batch)), zap.Int("向量数", len(vectors)))
			continue
		}
		for i, doc := range batch {
			doc.SetEmbedding(vectors[i])
		}
	}
}
