package embedding

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Ki1ro0133/XZCrawler/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/ollama"
)

type ollamaEmbedder struct {
	model     *ollama.Embedder
	batchSize int
}

// InitEmbedder 连接本地ollama服务构造嵌入器
func InitEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	model, err := ollama.NewEmbedder(ctx, &ollama.EmbeddingConfig{
		Model:   cfg.Embedder.Model,
		BaseURL: cfg.Embedder.Host + ":" + strconv.Itoa(cfg.Embedder.Port),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化嵌入模型失败: %w", err)
	}
	return &ollamaEmbedder{model: model, batchSize: cfg.Embedder.BatchSize}, nil
}

func (e *ollamaEmbedder) BatchSize() int {
	return e.batchSize
}

// Embed 文本转向量
// eino返回float64向量,ES的dense_vector按float32存,这里就地降精度
func (e *ollamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.model.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("向量化失败: %w", err)
	}
	out := make([][]float32, 0, len(vectors))
	for _, vec := range vectors {
		v32 := make([]float32, len(vec))
		for i, f := range vec {
			v32[i] = float32(f)
		}
		out = append(out, v32)
	}
	return out, nil
}
