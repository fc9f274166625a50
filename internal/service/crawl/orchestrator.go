package crawl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"

	"go.uber.org/zap"
)

// 每成功保存runningIndexEvery篇就重写一次进度索引,便于中途查看
const runningIndexEvery = 3

// Run 执行一轮完整抓取:导航到列表页,逐页处理,最后无论成败都进入收尾阶段
func (s *crawlService) Run(ctx context.Context) (*RunStats, error) {
	start := time.Now()

	if err := s.browser.NavigateToListing(ctx); err != nil {
		return nil, fmt.Errorf("导航到列表页失败: %w", err)
	}
	s.logger.Info("列表页就绪, 开始分页抓取",
		zap.String("窗口", s.opts.Window.Describe()),
		zap.Int("并发数", s.opts.Concurrency))

	s.pageLoop(ctx)
	s.finalize(ctx)

	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()
	stats.Duration = time.Since(start)
	return &stats, nil
}

// pageLoop 分页主循环,返回即表示分页结束,收尾阶段仍会执行
func (s *crawlService) pageLoop(ctx context.Context) {
	page := 1
	for {
		if ctx.Err() != nil {
			s.logger.Info("收到取消信号, 结束分页", zap.Int("当前页", page))
			return
		}

		raw, err := s.browser.CurrentPageEntries(ctx)
		if err != nil {
			s.logger.Warn("读取当前页条目失败, 结束分页", zap.Int("页码", page), zap.Error(err))
			return
		}
		s.mu.Lock()
		s.stats.PagesCrawled++
		s.mu.Unlock()

		if len(raw) == 0 {
			s.logger.Info("当前页没有文章条目, 结束分页", zap.Int("页码", page))
			return
		}

		entries := s.extractEntries(raw, page)
		matched := filterByWindow(entries, s.opts.Window)
		s.mu.Lock()
		s.stats.EntriesFound += len(entries)
		s.stats.Matched += len(matched)
		s.mu.Unlock()
		s.logger.Info("本页条目解析完成",
			zap.Int("页码", page),
			zap.Int("条目数", len(entries)),
			zap.Int("命中窗口", len(matched)))

		s.processPage(ctx, matched)

		if s.opts.MaxPages > 0 && page >= s.opts.MaxPages {
			s.logger.Info("达到页数上限, 结束分页", zap.Int("上限", s.opts.MaxPages))
			return
		}
		if s.boundaryCrossed(entries, page) {
			s.logger.Info("本页已出现早于窗口下界的文章, 结束分页", zap.Int("页码", page))
			return
		}
		if ctx.Err() != nil {
			s.logger.Info("收到取消信号, 不再翻页", zap.Int("当前页", page))
			return
		}

		ok, err := s.browser.AdvanceToNextPage(ctx)
		if err != nil {
			s.logger.Warn("翻页失败, 结束分页", zap.Int("页码", page), zap.Error(err))
			return
		}
		if !ok {
			s.logger.Info("已到最后一页", zap.Int("页码", page))
			return
		}
		page++
	}
}

// boundaryCrossed 越界停止判断:窗口有下界,且已翻够最少页数,
// 且本页任一条目的发布时间不晚于下界
// 列表页大体按时间倒序,但置顶或编辑过的文章会打乱顺序,所以要求最少页数兜底
func (s *crawlService) boundaryCrossed(entries []*entity.ArticleRecord, page int) bool {
	bound, ok := s.opts.Window.LowerBound()
	if !ok {
		return false
	}
	if page < s.opts.BoundaryMinPages {
		return false
	}
	for _, e := range entries {
		if t, ok := e.ParsedTime(); ok && !t.After(bound) {
			return true
		}
	}
	return false
}

// filterByWindow 丢掉发布时间缺失或解析失败的条目,再按窗口过滤
func filterByWindow(entries []*entity.ArticleRecord, w entity.CrawlWindow) []*entity.ArticleRecord {
	out := make([]*entity.ArticleRecord, 0, len(entries))
	for _, e := range entries {
		t, ok := e.ParsedTime()
		if !ok {
			continue
		}
		if w.Contains(t) {
			out = append(out, e)
		}
	}
	return out
}

// processPage 用固定数量的工作协程消费本页条目,全部处理完才返回
func (s *crawlService) processPage(ctx context.Context, entries []*entity.ArticleRecord) {
	if len(entries) == 0 {
		return
	}
	ch := make(chan *entity.ArticleRecord)
	var wg sync.WaitGroup
	for i := 0; i < s.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case rec, ok := <-ch:
					if !ok {
						return
					}
					s.processEntry(ctx, rec)
				}
			}
		}()
	}

feed:
	for _, rec := range entries {
		select {
		case <-ctx.Done():
			break feed
		case ch <- rec:
		}
	}
	close(ch)
	wg.Wait()
}

// processEntry 单篇文章的完整流水线:去重,限速,抓取详情,转换,落盘
func (s *crawlService) processEntry(ctx context.Context, rec *entity.ArticleRecord) {
	if ctx.Err() != nil {
		return
	}

	key := rec.Key()
	s.mu.Lock()
	if _, dup := s.seen[key]; dup {
		s.stats.DuplicatesSkipped++
		s.mu.Unlock()
		s.logger.Debug("跳过重复文章", zap.String("key", key))
		return
	}
	s.seen[key] = struct{}{}
	s.mu.Unlock()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
	}

	rawHTML, detailTitle, err := s.fetchWithRetry(ctx, rec)
	if err != nil {
		s.recordFailure(rec, err)
		return
	}
	if t := strings.TrimSpace(detailTitle); t != "" {
		rec.Title = t
	}

	rec.Content = s.converter.Convert(rawHTML)

	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, rec.Title, rec.Content)
		if err != nil {
			s.logger.Warn("生成摘要失败, 跳过摘要", zap.String("标题", rec.Title), zap.Error(err))
		} else {
			rec.Summary = summary
		}
	}

	fileName, err := s.store.SaveArticle(rec)
	if err != nil {
		s.recordFailure(rec, fmt.Errorf("保存文章失败: %w", err))
		return
	}
	s.logger.Info("文章已保存",
		zap.String("标题", rec.Title),
		zap.String("文件", fileName),
		zap.String("发布时间", rec.PublishTime))

	if s.archiver != nil {
		if err := s.archiver.ArchiveArticle(ctx, rec); err != nil {
			s.logger.Warn("单篇归档失败, 收尾时会整批重试", zap.String("标题", rec.Title), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.results = append(s.results, rec)
	s.saveCount++
	s.stats.Saved++
	flush := s.saveCount%runningIndexEvery == 0
	var snapshot []*entity.ArticleRecord
	if flush {
		snapshot = make([]*entity.ArticleRecord, len(s.results))
		copy(snapshot, s.results)
	}
	s.mu.Unlock()

	if flush {
		if err := s.store.WriteRunningIndex(snapshot, s.opts.Window); err != nil {
			s.logger.Warn("更新进度索引失败", zap.Error(err))
		}
	}
}

// recordFailure 重试耗尽或落盘失败时登记失败记录,本轮继续
func (s *crawlService) recordFailure(rec *entity.ArticleRecord, err error) {
	s.logger.Warn("文章处理失败",
		zap.String("标题", rec.Title),
		zap.String("链接", rec.Link),
		zap.Error(err))
	s.mu.Lock()
	s.failures = append(s.failures, entity.FailureRecord{
		Link:   rec.Link,
		Title:  rec.Title,
		ErrMsg: err.Error(),
	})
	s.stats.Failed++
	s.mu.Unlock()
}

// finalize 收尾阶段:即使被取消也会写出最终索引和失败清单,
// 归档与图片本地化属于增益环节,取消时跳过
func (s *crawlService) finalize(ctx context.Context) {
	s.mu.Lock()
	results := make([]*entity.ArticleRecord, len(s.results))
	copy(results, s.results)
	failures := make([]entity.FailureRecord, len(s.failures))
	copy(failures, s.failures)
	s.mu.Unlock()

	if name, err := s.store.WriteFinalIndex(results, s.opts.Window); err != nil {
		s.logger.Error("写入最终索引失败", zap.Error(err))
	} else {
		s.logger.Info("最终索引已生成", zap.String("文件", name), zap.Int("文章数", len(results)))
	}

	if name, err := s.store.WriteFailures(failures); err != nil {
		s.logger.Error("写入失败清单失败", zap.Error(err))
	} else if name != "" {
		s.logger.Warn("本轮存在抓取失败的文章", zap.String("文件", name), zap.Int("数量", len(failures)))
	}

	if ctx.Err() != nil {
		s.logger.Info("本轮被取消, 跳过归档与图片本地化")
		return
	}

	if s.archiver != nil && len(results) > 0 {
		if err := s.archiver.ArchiveArticles(ctx, results); err != nil {
			s.logger.Warn("归档失败, 本地结果不受影响", zap.Error(err))
		}
	}

	if s.localizer != nil && s.opts.LocalizeImages {
		files, err := s.store.MarkdownFiles()
		if err != nil {
			s.logger.Warn("枚举文章文件失败, 跳过图片本地化", zap.Error(err))
			return
		}
		if _, err := s.localizer.LocalizeFiles(ctx, files); err != nil {
			s.logger.Warn("图片本地化未完成", zap.Error(err))
		}
	}
}
