package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/config"
	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esutil"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"go.uber.org/zap"
)

type typedEsClient[D model.Document] struct {
	client *elasticsearch.TypedClient
	// 零值实例只用来取索引名和mapping,不承载数据
	schemaDoc D
	logger    *zap.Logger
}

// InitTypedEsClient 按配置构造泛型客户端
// 开发环境的ES多为自签名证书,这里跳过TLS校验
func InitTypedEsClient[D model.Document](cfg *config.Config, logger *zap.Logger) (TypedEsClient[D], error) {
	typedClient, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Addresses: []string{cfg.Elasticsearch.Address},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化ES客户端失败: %w", err)
	}
	return &typedEsClient[D]{client: typedClient, logger: logger}, nil
}

func (tec *typedEsClient[D]) GetClient() *elasticsearch.TypedClient {
	return tec.client
}

// CreateIndexWithMapping 建索引,已存在时跳过
func (tec *typedEsClient[D]) CreateIndexWithMapping(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	exists, err := tec.client.Indices.Exists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("检查索引是否存在失败: %w", err)
	}
	if exists {
		tec.logger.Debug("索引已存在, 跳过创建", zap.String("索引", index))
		return nil
	}

	mapping := tec.schemaDoc.GetTypeMapping()
	if mapping == nil {
		_, err = tec.client.Indices.Create(index).Do(ctx)
	} else {
		_, err = tec.client.Indices.Create(index).Mappings(mapping).Do(ctx)
	}
	if err != nil {
		return fmt.Errorf("创建索引失败: %w", err)
	}
	tec.logger.Info("索引创建完成", zap.String("索引", index))
	return nil
}

func (tec *typedEsClient[D]) DeleteIndex(ctx context.Context) error {
	index := tec.schemaDoc.GetIndex()
	if _, err := tec.client.Indices.Delete(index).Do(ctx); err != nil {
		return fmt.Errorf("删除索引失败: %w", err)
	}
	return nil
}

func (tec *typedEsClient[D]) IndexDocWithID(ctx context.Context, doc D) error {
	_, err := tec.client.Index(tec.schemaDoc.GetIndex()).
		Id(doc.GetID()).
		Document(doc).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("写入文档失败: %w", err)
	}
	return nil
}

// BulkIndexDocsWithID 批量写入,逐条失败只记日志,整体失败数带回错误
func (tec *typedEsClient[D]) BulkIndexDocsWithID(ctx context.Context, docs []D) error {
	if len(docs) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         tec.schemaDoc.GetIndex(),
		Client:        tec.client,
		NumWorkers:    2,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			tec.logger.Warn("批量写入器异常", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("创建批量写入器失败: %w", err)
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			tec.logger.Warn("文档序列化失败, 跳过", zap.String("id", doc.GetID()), zap.Error(err))
			continue
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.GetID(),
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					tec.logger.Warn("文档写入失败", zap.String("id", item.DocumentID), zap.Error(err))
				} else {
					tec.logger.Warn("文档被ES拒绝",
						zap.String("id", item.DocumentID),
						zap.String("原因", res.Error.Reason))
				}
			},
		})
		if err != nil {
			tec.logger.Warn("提交批量任务失败", zap.String("id", doc.GetID()), zap.Error(err))
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("批量写入收尾失败: %w", err)
	}
	stats := bi.Stats()
	tec.logger.Info("批量归档完成",
		zap.Uint64("成功", stats.NumIndexed),
		zap.Uint64("失败", stats.NumFailed))
	if stats.NumFailed > 0 {
		return fmt.Errorf("批量归档有%d篇失败", stats.NumFailed)
	}
	return nil
}

// GetDoc 按ID取文档,未命中时返回nil
func (tec *typedEsClient[D]) GetDoc(ctx context.Context, id string) (D, error) {
	resp, err := tec.client.Get(tec.schemaDoc.GetIndex(), id).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取文档失败: %w", err)
	}
	if !resp.Found {
		return nil, nil
	}
	var doc D
	if err := json.Unmarshal(resp.Source_, &doc); err != nil {
		return nil, fmt.Errorf("文档反序列化失败: %w", err)
	}
	return doc, nil
}

func (tec *typedEsClient[D]) CountDocs(ctx context.Context) (int64, error) {
	resp, err := tec.client.Count().Index(tec.schemaDoc.GetIndex()).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("统计文档数失败: %w", err)
	}
	return resp.Count, nil
}

func (tec *typedEsClient[D]) SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]D, int64, error) {
	resp, err := tec.client.Search().
		Index(tec.schemaDoc.GetIndex()).
		Query(query).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("搜索失败: %w", err)
	}

	results := make([]D, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		var doc D
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			tec.logger.Warn("命中文档反序列化失败, 跳过", zap.Error(err))
			continue
		}
		results = append(results, doc)
	}
	return results, resp.Hits.Total.Value, nil
}

// UpdateDoc 部分更新
func (tec *typedEsClient[D]) UpdateDoc(ctx context.Context, doc D) error {
	_, err := tec.client.Update(tec.schemaDoc.GetIndex(), doc.GetID()).
		Doc(doc).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("更新文档失败: %w", err)
	}
	return nil
}

func (tec *typedEsClient[D]) DeleteDoc(ctx context.Context, id string) error {
	if _, err := tec.client.Delete(tec.schemaDoc.GetIndex(), id).Do(ctx); err != nil {
		return fmt.Errorf("删除文档失败: %w", err)
	}
	return nil
}

func (tec *typedEsClient[D]) BulkDeleteDocs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         tec.schemaDoc.GetIndex(),
		Client:        tec.client,
		NumWorkers:    2,
		FlushBytes:    5 * 1024 * 1024,
		FlushInterval: 30 * time.Second,
		OnError: func(ctx context.Context, err error) {
			tec.logger.Warn("批量删除器异常", zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("创建批量删除器失败: %w", err)
	}

	for _, id := range ids {
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "delete",
			DocumentID: id,
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					tec.logger.Warn("文档删除失败", zap.String("id", item.DocumentID), zap.Error(err))
				} else {
					tec.logger.Warn("删除被ES拒绝",
						zap.String("id", item.DocumentID),
						zap.String("原因", res.Error.Reason))
				}
			},
		})
		if err != nil {
			tec.logger.Warn("提交删除任务失败", zap.String("id", id), zap.Error(err))
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("批量删除收尾失败: %w", err)
	}
	stats := bi.Stats()
	tec.logger.Info("批量删除完成",
		zap.Uint64("成功", stats.NumDeleted),
		zap.Uint64("失败", stats.NumFailed))
	return nil
}
