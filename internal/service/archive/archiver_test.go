package archive

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"
	"github.com/Ki1ro0133/XZCrawler/internal/infra/embedding"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEsClient struct {
	mu          sync.Mutex
	createCalls int
	indexed     []*model.ArticleDoc
	bulked      []*model.ArticleDoc
	bulkErr     error
}

func (f *fakeEsClient) GetClient() *elasticsearch.TypedClient { return nil }

func (f *fakeEsClient) CreateIndexWithMapping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return nil
}

func (f *fakeEsClient) DeleteIndex(ctx context.Context) error { return nil }

func (f *fakeEsClient) IndexDocWithID(ctx context.Context, doc *model.ArticleDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, doc)
	return nil
}

func (f *fakeEsClient) BulkIndexDocsWithID(ctx context.Context, docs []*model.ArticleDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulked = append(f.bulked, docs...)
	return nil
}

func (f *fakeEsClient) GetDoc(ctx context.Context, id string) (*model.ArticleDoc, error) {
	return nil, nil
}

func (f *fakeEsClient) CountDocs(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeEsClient) SearchDoc(ctx context.Context, query *types.Query, from, size int) ([]*model.ArticleDoc, int64, error) {
	return nil, 0, nil
}

func (f *fakeEsClient) UpdateDoc(ctx context.Context, doc *model.ArticleDoc) error { return nil }
func (f *fakeEsClient) DeleteDoc(ctx context.Context, id string) error             { return nil }
func (f *fakeEsClient) BulkDeleteDocs(ctx context.Context, ids []string) error     { return nil }

type fakeEmbedder struct {
	mu        sync.Mutex
	batchSize int
	batches   [][]string
	err       error
}

func (f *fakeEmbedder) BatchSize() int { return f.batchSize }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func newTestService(esc *fakeEsClient, emb embedding.Embedder) ArchiveService[*entity.ArticleRecord, *model.ArticleDoc] {
	return InitArchiveService[*entity.ArticleRecord, *model.ArticleDoc](esc, emb, zap.NewNop())
}

func testRecords(n int) []*entity.ArticleRecord {
	records := make([]*entity.ArticleRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &entity.ArticleRecord{
			Title:       "文章" + string(rune('A'+i)),
			Link:        "https://xz.aliyun.com/t/" + string(rune('1'+i)),
			PublishTime: "2025-06-15",
			Content:     "正文内容",
		})
	}
	return records
}

func TestArchiveArticlesWithEmbedding(t *testing.T) {
	esc := &fakeEsClient{}
	emb := &fakeEmbedder{batchSize: 2}
	svc := newTestService(esc, emb)

	err := svc.ArchiveArticles(context.Background(), testRecords(5))
	require.NoError(t, err)

	require.Len(t, emb.batches, 3)
	assert.Len(t, emb.batches[0], 2)
	assert.Len(t, emb.batches[1], 2)
	assert.Len(t, emb.batches[2], 1)

	require.Len(t, esc.bulked, 5)
	for _, doc := range esc.bulked {
		assert.Len(t, doc.Embedding, 3)
		assert.Len(t, doc.ID, 32, "文档ID应是身份键的md5")
	}
}

func TestArchiveArticlesWithoutEmbedder(t *testing.T) {
	esc := &fakeEsClient{}
	svc := newTestService(esc, nil)

	err := svc.ArchiveArticles(context.Background(), testRecords(2))
	require.NoError(t, err)

	require.Len(t, esc.bulked, 2)
	for _, doc := range esc.bulked {
		assert.Nil(t, doc.Embedding)
	}
}

func TestArchiveArticlesEmbeddingFailureDegrades(t *testing.T) {
	esc := &fakeEsClient{}
	emb := &fakeEmbedder{batchSize: 10, err: errors.New("ollama挂了")}
	svc := newTestService(esc, emb)

	err := svc.ArchiveArticles(context.Background(), testRecords(3))
	require.NoError(t, err, "向量化失败不应阻止归档")

	require.Len(t, esc.bulked, 3)
	for _, doc := range esc.bulked {
		assert.Nil(t, doc.Embedding)
	}
}

func TestArchiveArticleSingle(t *testing.T) {
	esc := &fakeEsClient{}
	svc := newTestService(esc, nil)

	rec := testRecords(1)[0]
	require.NoError(t, svc.ArchiveArticle(context.Background(), rec))
	require.Len(t, esc.indexed, 1)
	assert.Equal(t, rec.Title, esc.indexed[0].Title)
}

func TestArchiveArticlesEmptyNoop(t *testing.T) {
	esc := &fakeEsClient{}
	svc := newTestService(esc, nil)

	require.NoError(t, svc.ArchiveArticles(context.Background(), nil))
	assert.Empty(t, esc.bulked)
}

func TestEnsureIndex(t *testing.T) {
	esc := &fakeEsClient{}
	svc := newTestService(esc, nil)

	require.NoError(t, svc.EnsureIndex(context.Background()))
	assert.Equal(t, 1, esc.createCalls)
}
