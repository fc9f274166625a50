package crawl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDetail(t *testing.T) {
	cases := []struct {
		name    string
		rawHTML string
		title   string
		want    string
	}{
		{"正常内容", "<p>正文</p>", "某篇文章", ""},
		{"空内容", "", "某篇文章", "详情内容为空"},
		{"全空白内容", "  \n\t ", "某篇文章", "详情内容为空"},
		{"404标题", "<p>body</p>", "404", "命中失败标题: 404"},
		{"带空白的404标题", "<p>body</p>", "  404  ", "命中失败标题: 404"},
		{"出错了标题", "<p>body</p>", "出错了", "命中失败标题: 出错了"},
		{"标题只含404不算", "<p>body</p>", "CVE-2025-404分析", ""},
		{"页面不存在标记", "<div>页面不存在或已被删除</div>", "提示", "正文包含失败标记: 页面不存在"},
		{"限频标记", "<div>访问频率过高,请稍候</div>", "提示", "正文包含失败标记: 访问频率过高"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyDetail(tc.rawHTML, tc.title))
		})
	}
}

func TestFetchWithRetryEventualSuccess(t *testing.T) {
	f := newFakeFetcher(func(url string, attempt int) (string, string, error) {
		if attempt < 3 {
			return "", "", errors.New("抓取超时")
		}
		return "<p>成功</p>", "标题", nil
	})
	opts := testOptions()
	opts.Retries = 2
	svc := newTestService(&fakeBrowser{}, f, &fakeStore{}, opts)

	rec := &entity.ArticleRecord{Link: "https://x/t/1", Title: "文章"}
	rawHTML, title, err := svc.fetchWithRetry(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "<p>成功</p>", rawHTML)
	assert.Equal(t, "标题", title)
	assert.Equal(t, 3, f.callsFor("https://x/t/1"))
}

func TestFetchWithRetryExhaustion(t *testing.T) {
	f := newFakeFetcher(func(url string, attempt int) (string, string, error) {
		return "", "", errors.New("连接被拒绝")
	})
	opts := testOptions()
	opts.Retries = 1
	svc := newTestService(&fakeBrowser{}, f, &fakeStore{}, opts)

	rec := &entity.ArticleRecord{Link: "https://x/t/2"}
	_, _, err := svc.fetchWithRetry(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "重试1次后仍然失败")
	assert.Contains(t, err.Error(), "连接被拒绝")
	assert.Equal(t, 2, f.callsFor("https://x/t/2"))
}

func TestFetchWithRetryNoRetriesConfigured(t *testing.T) {
	f := newFakeFetcher(func(url string, attempt int) (string, string, error) {
		return "", "", errors.New("一次就死")
	})
	opts := testOptions()
	opts.Retries = 0
	svc := newTestService(&fakeBrowser{}, f, &fakeStore{}, opts)

	_, _, err := svc.fetchWithRetry(context.Background(), &entity.ArticleRecord{Link: "https://x/t/3"})
	require.Error(t, err)
	assert.Equal(t, 1, f.callsFor("https://x/t/3"))
}

func TestFetchWithRetryFailedResultAlsoRetried(t *testing.T) {
	f := newFakeFetcher(func(url string, attempt int) (string, string, error) {
		if attempt == 1 {
			return "<div>访问频率过高</div>", "", nil
		}
		return "<p>缓过来了</p>", "", nil
	})
	opts := testOptions()
	opts.Retries = 1
	svc := newTestService(&fakeBrowser{}, f, &fakeStore{}, opts)

	rawHTML, _, err := svc.fetchWithRetry(context.Background(), &entity.ArticleRecord{Link: "https://x/t/4"})
	require.NoError(t, err)
	assert.Equal(t, "<p>缓过来了</p>", rawHTML)
	assert.Equal(t, 2, f.callsFor("https://x/t/4"))
}

func TestFetchWithRetryCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFakeFetcher(goodDetail)
	svc := newTestService(&fakeBrowser{}, f, &fakeStore{}, testOptions())

	_, _, err := svc.fetchWithRetry(ctx, &entity.ArticleRecord{Link: "https://x/t/5"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.callsFor("https://x/t/5"))
}

func TestFetchWithRetryCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFakeFetcher(func(url string, attempt int) (string, string, error) {
		cancel()
		return "", "", errors.New("网络错误")
	})
	opts := testOptions()
	opts.Retries = 5
	opts.RetryBaseDelay = time.Minute
	svc := newTestService(&fakeBrowser{}, f, &fakeStore{}, opts)

	start := time.Now()
	_, _, err := svc.fetchWithRetry(ctx, &entity.ArticleRecord{Link: "https://x/t/6"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, f.callsFor("https://x/t/6"))
	assert.Less(t, time.Since(start), 10*time.Second, "取消后不应继续退避等待")
}
