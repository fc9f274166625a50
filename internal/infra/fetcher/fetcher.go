package fetcher

import (
	"context"
)

// DetailFetcher 详情页抓取能力,返回正文容器HTML与标题提示
type DetailFetcher interface {
	FetchDetail(ctx context.Context, url string) (string, string, error)
}
