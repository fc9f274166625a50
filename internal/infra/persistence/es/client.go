package es

import (
	"context"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// TypedEsClient 泛型ES客户端,D为归档文档类型
// 索引名和mapping都取自文档类型自身
type TypedEsClient[D model.Document] interface {
	GetClient() *elasticsearch.TypedClient
	CreateIndexWithMapping(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	IndexDocWithID(ctx context.Context, doc D) error
	BulkIndexDocsWithID(ctx context.Context, docs []D) error
	GetDoc(ctx context.Context, id string) (D, error)
	CountDocs(ctx context.Context) (int64, error)
	SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]D, int64, error)
	UpdateDoc(ctx context.Context, doc D) error
	DeleteDoc(ctx context.Context, id string) error
	BulkDeleteDocs(ctx context.Context, ids []string) error
}
