package crawl

import (
	"net/url"
	"strings"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// fieldNote 单个字段的提取备注,由编排器决定日志级别
type fieldNote struct {
	field string
	note  string
}

// extractEntries 把列表页条目的HTML片段批量解析成文章记录
// 标题和链接同时缺失的条目直接丢弃,其余字段缺失只记日志
func (s *crawlService) extractEntries(raw []string, page int) []*entity.ArticleRecord {
	entries := make([]*entity.ArticleRecord, 0, len(raw))
	for i, fragment := range raw {
		rec, notes := extractEntry(fragment, s.opts.Selectors, s.opts.BaseURL)
		for _, n := range notes {
			switch n.field {
			case "标题", "链接":
				s.logger.Warn("条目字段提取异常",
					zap.Int("页码", page), zap.Int("序号", i),
					zap.String("字段", n.field), zap.String("说明", n.note))
			default:
				s.logger.Debug("条目字段缺失",
					zap.Int("页码", page), zap.Int("序号", i),
					zap.String("字段", n.field), zap.String("说明", n.note))
			}
		}
		if rec == nil {
			s.logger.Warn("条目解析失败, 丢弃", zap.Int("页码", page), zap.Int("序号", i))
			continue
		}
		if rec.Title == "" && rec.Link == "" {
			s.logger.Warn("条目缺少标题和链接, 丢弃", zap.Int("页码", page), zap.Int("序号", i))
			continue
		}
		entries = append(entries, rec)
	}
	return entries
}

// extractEntry 从单个条目片段中逐字段提取文章信息
func extractEntry(fragment string, sel EntrySelectors, baseURL string) (*entity.ArticleRecord, []fieldNote) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, []fieldNote{{field: "条目", note: "HTML解析失败: " + err.Error()}}
	}

	var notes []fieldNote
	rec := &entity.ArticleRecord{ExtractedAt: time.Now()}

	titleEl := doc.Find(sel.Title).First()
	rec.Title = strings.TrimSpace(titleEl.Text())
	if rec.Title == "" {
		notes = append(notes, fieldNote{field: "标题", note: "选择器未命中或文本为空"})
	}

	href, ok := entryHref(doc, titleEl)
	if !ok {
		notes = append(notes, fieldNote{field: "链接", note: "条目内没有可用的href"})
	} else {
		rec.Link = absoluteURL(href, baseURL)
		if rec.Link == "" {
			notes = append(notes, fieldNote{field: "链接", note: "href无法解析: " + href})
		}
	}

	rec.PublishTime = strings.TrimSpace(doc.Find(sel.PublishTime).First().Text())
	if rec.PublishTime == "" {
		notes = append(notes, fieldNote{field: "发布时间", note: "缺失, 条目会被时间过滤丢弃"})
	}

	if sel.Category != "" {
		rec.Category = strings.TrimSpace(doc.Find(sel.Category).First().Text())
		if rec.Category == "" {
			notes = append(notes, fieldNote{field: "分类", note: "选择器未命中"})
		}
	}
	if sel.Author != "" {
		rec.Author = strings.TrimSpace(doc.Find(sel.Author).First().Text())
		if rec.Author == "" {
			notes = append(notes, fieldNote{field: "作者", note: "选择器未命中"})
		}
	}

	return rec, notes
}

// entryHref 按就近原则找条目链接:标题元素自身,标题内部的锚点,
// 包裹标题的锚点,最后退化为条目内第一个带href的锚点
func entryHref(doc *goquery.Document, titleEl *goquery.Selection) (string, bool) {
	if href, ok := titleEl.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href, true
	}
	if href, ok := titleEl.Find("a[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href, true
	}
	if href, ok := titleEl.Closest("a[href]").Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href, true
	}
	if href, ok := doc.Find("a[href]").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href, true
	}
	return "", false
}

// absoluteURL 把相对链接补全成绝对链接,补全失败时返回空串
func absoluteURL(href, baseURL string) string {
	h := strings.TrimSpace(href)
	if h == "" {
		return ""
	}
	u, err := url.Parse(h)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" {
		return ""
	}
	return base.ResolveReference(u).String()
}
