package embedding

import "context"

// Embedder 文本向量化,BatchSize为单次提交的建议条数
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	BatchSize() int
}
