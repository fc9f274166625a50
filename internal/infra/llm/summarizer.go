package llm

import "context"

// Summarizer 生成文章摘要,供汇总索引的摘要列使用
type Summarizer interface {
	Summarize(ctx context.Context, title string, content string) (string, error)
}
