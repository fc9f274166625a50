package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Ki1ro0133/XZCrawler/internal/config"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/schema"
)

// 参与摘要的正文截断长度,本地模型吃不下全文
const summaryContentLimit = 4000

const summarySystemPrompt = "你是安全技术文章的摘要助手。" +
	"用不超过两句中文概括文章的核心内容,直接输出摘要正文,不要任何前缀和解释。"

type ollamaSummarizer struct {
	model *ollama.ChatModel
}

// InitSummarizer 连接本地ollama服务构造摘要器
func InitSummarizer(ctx context.Context, cfg *config.Config) (Summarizer, error) {
	model, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: cfg.Summary.Host + ":" + strconv.Itoa(cfg.Summary.Port),
		Model:   cfg.Summary.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化摘要模型失败: %w", err)
	}
	return &ollamaSummarizer{model: model}, nil
}

func (s *ollamaSummarizer) Summarize(ctx context.Context, title string, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", nil
	}
	if runes := []rune(content); len(runes) > summaryContentLimit {
		content = string(runes[:summaryContentLimit])
	}

	resp, err := s.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(summarySystemPrompt),
		schema.UserMessage(fmt.Sprintf("标题: %s\n\n正文:\n%s", title, content)),
	})
	if err != nil {
		return "", fmt.Errorf("生成摘要失败: %w", err)
	}
	return cleanSummary(resp.Content), nil
}

// cleanSummary 去掉模型常见的前缀和包裹空白
func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"摘要:", "摘要：", "TL;DR:", "TLDR:"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}
	return strings.ReplaceAll(s, "\n", " ")
}
