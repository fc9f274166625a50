package crawl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"

	"go.uber.org/zap"
)

// 详情页虽然返回了内容但实际是错误页时的识别特征
var (
	failureTitles  = []string{"404", "出错了", "页面不存在", "访问异常"}
	failureMarkers = []string{"页面不存在", "访问频率过高"}
)

// classifyDetail 判断一次返回成功的抓取结果是否其实是失败页,返回失败原因
// 正常结果返回空串
func classifyDetail(rawHTML, title string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return "详情内容为空"
	}
	t := strings.TrimSpace(title)
	for _, bad := range failureTitles {
		if t == bad {
			return "命中失败标题: " + bad
		}
	}
	for _, marker := range failureMarkers {
		if strings.Contains(rawHTML, marker) {
			return "正文包含失败标记: " + marker
		}
	}
	return ""
}

// fetchWithRetry 抓取详情页并按指数退避重试
// 取消后立即返回,不再发起新的尝试,也不做退避等待
func (s *crawlService) fetchWithRetry(ctx context.Context, rec *entity.ArticleRecord) (string, string, error) {
	attempts := s.opts.Retries + 1
	delay := s.opts.RetryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		rawHTML, title, err := s.detail.FetchDetail(ctx, rec.Link)
		if err == nil {
			if reason := classifyDetail(rawHTML, title); reason != "" {
				err = errors.New(reason)
			} else {
				return rawHTML, title, nil
			}
		}
		lastErr = err
		if attempt < attempts {
			s.logger.Warn("抓取详情失败, 稍后重试",
				zap.String("链接", rec.Link),
				zap.Int("已尝试", attempt),
				zap.Duration("等待", delay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return "", "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return "", "", fmt.Errorf("重试%d次后仍然失败: %w", attempts-1, lastErr)
}
