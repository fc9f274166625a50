package convert

import (
	stdhtml "html"
	"regexp"
	"strings"

	markdown "github.com/JohannesKaufmann/html-to-markdown"
	"go.uber.org/zap"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// fallbackConvert 降级链: 先试通用HTML转Markdown, 再退化为纯文本清洗
// 转换永远返回一些文本, 不向上抛错
func (c *neConverter) fallbackConvert(raw string) string {
	conv := markdown.NewConverter("", true, nil)
	md, err := conv.ConvertString(raw)
	if err == nil && strings.TrimSpace(md) != "" {
		return strings.TrimSpace(md)
	}
	if err != nil {
		c.logger.Warn("通用Markdown转换失败, 退化为纯文本清洗", zap.Error(err))
	}
	return plainTextClean(raw)
}

// plainTextClean 去掉脚本与样式块, 剥除全部标签, 实体解码后折叠空白
func plainTextClean(raw string) string {
	s := scriptBlockRe.ReplaceAllString(raw, " ")
	s = styleBlockRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = stdhtml.UnescapeString(s)
	s = stripZeroWidth(s)
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
