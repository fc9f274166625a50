package model

import (
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

const (
	// ArticleIndexName 归档索引名
	ArticleIndexName = "xz_articles"
	// EmbeddingDims 嵌入向量维度,需与配置的嵌入模型输出一致
	EmbeddingDims = 768
	// 参与嵌入的正文截断长度,全文嵌入对本地模型太重
	embedContentLimit = 2000
)

// ArticleDoc 文章的ES归档形态,ID为身份键的md5
type ArticleDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishTime string    `json:"publish_time"`
	Category    string    `json:"category,omitempty"`
	Author      string    `json:"author,omitempty"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

func (d *ArticleDoc) GetID() string {
	return d.ID
}

func (d *ArticleDoc) GetIndex() string {
	return ArticleIndexName
}

func (d *ArticleDoc) GetTypeMapping() *types.TypeMapping {
	dateProp := types.NewDateProperty()
	dateFormat := "yyyy-MM-dd HH:mm:ss||yyyy-MM-dd HH:mm||yyyy-MM-dd"
	dateProp.Format = &dateFormat

	vecProp := types.NewDenseVectorProperty()
	dims := EmbeddingDims
	vecProp.Dims = &dims

	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"id":           types.NewKeywordProperty(),
			"title":        types.NewTextProperty(),
			"link":         types.NewKeywordProperty(),
			"publish_time": dateProp,
			"category":     types.NewKeywordProperty(),
			"author":       types.NewKeywordProperty(),
			"content":      types.NewTextProperty(),
			"summary":      types.NewTextProperty(),
			"extracted_at": types.NewDateProperty(),
			"embedding":    vecProp,
		},
	}
}

// GetEmbeddingString 拼接参与向量化的文本,正文做截断
func (d *ArticleDoc) GetEmbeddingString() string {
	content := d.Content
	if runes := []rune(content); len(runes) > embedContentLimit {
		content = string(runes[:embedContentLimit])
	}
	return d.Title + "\n" + d.Category + "\n" + content
}

func (d *ArticleDoc) SetEmbedding(embedding []float32) {
	d.Embedding = embedding
}

func (d *ArticleDoc) GetEmbedding() []float32 {
	return d.Embedding
}
