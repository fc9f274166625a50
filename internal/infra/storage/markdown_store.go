package storage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
)

const maxFileNameRunes = 80

type markdownStore struct {
	dir    string
	source string
	logger *zap.Logger
}

func (s *markdownStore) Dir() string {
	return s.dir
}

func (s *markdownStore) ImagesDir() string {
	return filepath.Join(s.dir, "images")
}

func (s *markdownStore) SaveArticle(record *entity.ArticleRecord) (string, error) {
	filename := ArticleFileName(record)
	path := filepath.Join(s.dir, filename)

	body := renderArticle(record)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("写入文章文件失败: %w", err)
	}
	s.logger.Debug("文章已落盘", zap.String("file", filename))
	return filename, nil
}

func (s *markdownStore) MarkdownFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("读取输出目录失败: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		if name == "failures.md" || name == "index.md" || strings.HasPrefix(name, "index_") {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ArticleFileName 由标题生成安全文件名,标题清洗为空时退化为哈希名
func ArticleFileName(record *entity.ArticleRecord) string {
	name := sanitizeTitle(record.Title)
	if name == "" {
		sum := md5.Sum([]byte(record.Key()))
		name = "article_" + hex.EncodeToString(sum[:])[:8]
	}
	return name + ".md"
}

// sanitizeTitle 剔除文件系统不安全字符,空白与括号折叠为下划线,限长80字符
func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			continue
		case '(', ')', '[', ']', '{', '}', '（', '）', '【', '】', '「', '」':
			b.WriteRune('_')
		case ' ', '\t', '\n', '\r', ' ', '　':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	name := b.String()
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	name = strings.Trim(name, "_.")

	if runes := []rune(name); len(runes) > maxFileNameRunes {
		name = string(runes[:maxFileNameRunes])
		name = strings.TrimRight(name, "_.")
	}
	return name
}

func renderArticle(record *entity.ArticleRecord) string {
	var b strings.Builder
	b.WriteString("# " + record.Title + "\n\n")
	b.WriteString(record.Content)
	b.WriteString("\n\n---\n\n")
	if record.Link != "" {
		b.WriteString(fmt.Sprintf("- 原文链接: [%s](%s)\n", record.Link, record.Link))
	}
	if record.PublishTime != "" {
		b.WriteString("- 发布时间: " + record.PublishTime + "\n")
	}
	b.WriteString("- 抓取时间: " + record.ExtractedAt.Format("2006-01-02 15:04:05") + "\n")
	return collapseBlankRuns(b.String())
}

// collapseBlankRuns 把围栏外的连续空白行(含零宽字符/NBSP/全角空格行)折叠为一个空行
func collapseBlankRuns(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	blankPending := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			if blankPending && len(out) > 0 {
				out = append(out, "")
			}
			blankPending = false
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if isBlankish(line) {
			blankPending = true
			continue
		}
		if blankPending && len(out) > 0 {
			out = append(out, "")
		}
		blankPending = false
		out = append(out, line)
	}
	result := strings.Join(out, "\n")
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

func isBlankish(line string) bool {
	for _, r := range line {
		switch r {
		case ' ', '\t', '\r', ' ', '　', '​', '‌', '‍', '\uFEFF':
		default:
			return false
		}
	}
	return true
}
