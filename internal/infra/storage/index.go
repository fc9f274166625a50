package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
)

func (s *markdownStore) WriteRunningIndex(records []*entity.ArticleRecord, window entity.CrawlWindow) error {
	return s.writeIndexFile("index.md", records, window)
}

func (s *markdownStore) WriteFinalIndex(records []*entity.ArticleRecord, window entity.CrawlWindow) (string, error) {
	name := "index_" + time.Now().Format("20060102_150405") + ".md"
	if err := s.writeIndexFile(name, records, window); err != nil {
		return "", err
	}
	return name, nil
}

func (s *markdownStore) writeIndexFile(name string, records []*entity.ArticleRecord, window entity.CrawlWindow) error {
	content := renderIndex(records, window, s.source, time.Now())
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("写入索引文件失败: %w", err)
	}
	return nil
}

func (s *markdownStore) WriteFailures(failures []entity.FailureRecord) (string, error) {
	if len(failures) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("# 抓取失败清单\n\n")
	b.WriteString(fmt.Sprintf("共 %d 篇文章重试耗尽后仍然失败。\n\n", len(failures)))
	b.WriteString("| 链接 | 标题 | 错误 |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, f := range failures {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			tableCell(f.Link), tableCell(f.Title), tableCell(f.ErrMsg)))
	}
	if err := os.WriteFile(filepath.Join(s.dir, "failures.md"), []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("写入失败清单失败: %w", err)
	}
	return "failures.md", nil
}

// renderIndex 索引正文:元信息、分类统计(按数量降序)、按发布时间降序的文章表
func renderIndex(records []*entity.ArticleRecord, window entity.CrawlWindow, source string, now time.Time) string {
	sorted := make([]*entity.ArticleRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := sorted[i].ParsedTime()
		tj, _ := sorted[j].ParsedTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return sorted[i].Title < sorted[j].Title
	})

	hasSummary := false
	counts := map[string]int{}
	for _, r := range sorted {
		category := r.Category
		if category == "" {
			category = "未分类"
		}
		counts[category]++
		if r.Summary != "" {
			hasSummary = true
		}
	}
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})

	var b strings.Builder
	b.WriteString("# 文章索引\n\n")
	b.WriteString("- 来源: " + source + "\n")
	b.WriteString(fmt.Sprintf("- 文章数量: %d\n", len(sorted)))
	b.WriteString("- 时间范围: " + window.Describe() + "\n")
	b.WriteString("- 生成时间: " + now.Format("2006-01-02 15:04:05") + "\n\n")

	b.WriteString("## 分类统计\n\n")
	for _, c := range categories {
		b.WriteString(fmt.Sprintf("- %s: %d\n", c, counts[c]))
	}

	b.WriteString("\n## 文章列表\n\n")
	if hasSummary {
		b.WriteString("| 发布时间 | 标题 | 分类 | 作者 | 摘要 |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
	} else {
		b.WriteString("| 发布时间 | 标题 | 分类 | 作者 |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
	}
	for _, r := range sorted {
		title := fmt.Sprintf("[%s](./%s)", tableCell(r.Title), ArticleFileName(r))
		row := fmt.Sprintf("| %s | %s | %s | %s |",
			tableCell(r.PublishTime), title, orDash(r.Category), orDash(r.Author))
		if hasSummary {
			row += fmt.Sprintf(" %s |", orDash(r.Summary))
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return tableCell(s)
}
