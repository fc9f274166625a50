package entity

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/model"
)

// 列表页支持的时间格式,先知的文章时间有带秒和不带秒两种
var publishTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ArticleRecord 一篇被发现/处理中的文章,Link为主身份键
type ArticleRecord struct {
	Title       string
	Link        string
	PublishTime string
	Category    string
	Author      string
	Content     string
	Summary     string
	ExtractedAt time.Time
}

// Key 返回去重身份键:优先使用链接,链接为空时退化为 标题|发布时间
func (ar *ArticleRecord) Key() string {
	if ar.Link != "" {
		return ar.Link
	}
	return ar.Title + "|" + ar.PublishTime
}

// ParsedTime 解析发布时间,解析失败时第二个返回值为false
func (ar *ArticleRecord) ParsedTime() (time.Time, bool) {
	return ParsePublishTime(ar.PublishTime)
}

func ParsePublishTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToDocument 转换为ES归档文档,文档ID取身份键的md5
func (ar *ArticleRecord) ToDocument() *model.ArticleDoc {
	sum := md5.Sum([]byte(ar.Key()))
	return &model.ArticleDoc{
		ID:          hex.EncodeToString(sum[:]),
		Title:       ar.Title,
		Link:        ar.Link,
		PublishTime: ar.PublishTime,
		Category:    ar.Category,
		Author:      ar.Author,
		Content:     ar.Content,
		Summary:     ar.Summary,
		ExtractedAt: ar.ExtractedAt,
	}
}

// FailureRecord 重试耗尽后的失败记录,只记录不中断
type FailureRecord struct {
	Link   string
	Title  string
	ErrMsg string
}
