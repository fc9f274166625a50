package convert

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// 编辑器渲染层的装饰性节点, 不属于正文, 整体丢弃
var chromeClassPrefixes = []string{
	"cm-gutter",
	"cm-cursor",
	"cm-selection",
	"cm-tooltip",
	"cm-panel",
	"copy-btn",
	"ne-toolbar",
}

var newlineRunRe = regexp.MustCompile(`[\r\n]+`)

func (c *neConverter) Convert(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		c.logger.Warn("解析文档树失败, 走降级转换", zap.Error(err))
		return c.fallbackConvert(rawHTML)
	}
	body := findFirst(doc, byTag("body"))
	if body == nil {
		return c.fallbackConvert(rawHTML)
	}

	var b strings.Builder
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(c.convertNode(child, Context{}))
	}
	return strings.TrimSpace(b.String())
}

// convertNode 按节点类型的封闭分派, 未知标签透明传递子内容
func (c *neConverter) convertNode(n *html.Node, cc Context) string {
	switch n.Type {
	case html.TextNode:
		if cc.InCodeBlock {
			return n.Data
		}
		return escapeText(n.Data)
	case html.ElementNode:
	default:
		return ""
	}

	if isUIChrome(n) {
		return ""
	}

	switch n.Data {
	case "ne-card":
		return c.convertCard(n, cc)
	case "ne-table", "table":
		return c.convertTable(n)
	case "pre":
		return c.extractCodeBlock(n)
	case "ne-code", "code":
		return fenceInline(rawInlineText(n))
	case "ne-text":
		return c.convertStyledText(n, cc)
	case "ne-p", "p", "div":
		content := strings.TrimSpace(c.convertChildren(n, cc))
		if content == "" {
			return ""
		}
		return content + "\n\n"
	case "ne-h1", "ne-h2", "ne-h3", "ne-h4", "ne-h5", "ne-h6",
		"h1", "h2", "h3", "h4", "h5", "h6":
		return c.convertHeading(n, cc)
	case "ne-ol", "ol":
		return c.convertList(n, cc, ListOrdered)
	case "ne-ul", "ul":
		return c.convertList(n, cc, ListUnordered)
	case "ne-li", "li":
		return c.convertListItem(n, cc)
	case "ne-quote", "blockquote":
		content := strings.TrimSpace(c.convertChildren(n, cc))
		if content == "" {
			return ""
		}
		return blockQuote(content)
	case "strong", "b":
		return wrapStyle(c.convertChildren(n, cc), "**", "**")
	case "em", "i":
		return wrapStyle(c.convertChildren(n, cc), "*", "*")
	case "u":
		return wrapStyle(c.convertChildren(n, cc), "<u>", "</u>")
	case "s", "del", "strike":
		return wrapStyle(c.convertChildren(n, cc), "~~", "~~")
	case "a":
		content := strings.TrimSpace(c.convertChildren(n, cc))
		href, ok := attrVal(n, "href")
		if !ok || href == "" {
			return content
		}
		if content == "" {
			content = href
		}
		return fmt.Sprintf("[%s](%s)", content, href)
	case "img":
		src, ok := attrVal(n, "src")
		if !ok || src == "" {
			return ""
		}
		alt, _ := attrVal(n, "alt")
		return fmt.Sprintf("![%s](%s)", alt, src)
	case "br":
		return "\n"
	case "hr":
		return "\n---\n\n"
	case "script", "style", "noscript", "iframe", "template", "svg":
		return ""
	default:
		return c.convertChildren(n, cc)
	}
}

func (c *neConverter) convertChildren(n *html.Node, cc Context) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(c.convertNode(child, cc))
	}
	return b.String()
}

// convertCard 卡片节点: 代码卡/表格卡走原始子树短路, 其余卡片按内容包装
func (c *neConverter) convertCard(n *html.Node, cc Context) string {
	name, _ := attrVal(n, "data-card-name")
	switch name {
	case "codeblock", "code":
		return c.extractCodeBlock(n)
	case "table":
		return c.convertTable(n)
	}
	content := strings.TrimSpace(c.convertChildren(n, cc))
	if content == "" {
		return ""
	}
	if strings.Contains(content, "![") {
		return "\n" + content + "\n\n"
	}
	return blockQuote(content)
}

// convertStyledText 按布尔样式属性叠加装饰, 行内代码优先走原始文本
func (c *neConverter) convertStyledText(n *html.Node, cc Context) string {
	if attrTrue(n, "ne-code") {
		return fenceInline(rawInlineText(n))
	}
	content := c.convertChildren(n, cc)
	if strings.TrimSpace(content) == "" {
		return content
	}
	if attrTrue(n, "ne-bold") {
		content = wrapStyle(content, "**", "**")
	}
	if attrTrue(n, "ne-italic") {
		content = wrapStyle(content, "*", "*")
	}
	if attrTrue(n, "ne-underline") {
		content = wrapStyle(content, "<u>", "</u>")
	}
	if attrTrue(n, "ne-strikethrough") {
		content = wrapStyle(content, "~~", "~~")
	}
	return content
}

func (c *neConverter) convertHeading(n *html.Node, cc Context) string {
	level := int(n.Data[len(n.Data)-1] - '0')
	if level < 1 || level > 6 {
		return c.convertChildren(n, cc)
	}
	content := strings.TrimSpace(newlineRunRe.ReplaceAllString(c.convertChildren(n, cc), " "))
	if content == "" {
		return ""
	}
	return "\n" + strings.Repeat("#", level) + " " + content + "\n\n"
}

// convertList 列表容器为子项克隆独立上下文, 兄弟项共享同一计数器,
// 嵌套列表再次克隆得到全新计数
func (c *neConverter) convertList(n *html.Node, cc Context, t ListType) string {
	child := cc.enterList(t)
	var b strings.Builder
	for item := n.FirstChild; item != nil; item = item.NextSibling {
		if item.Type != html.ElementNode {
			continue
		}
		switch item.Data {
		case "ne-li", "li":
			child.ListIndex++
			b.WriteString(c.convertListItem(item, child))
		default:
			b.WriteString(c.convertNode(item, child))
		}
	}
	out := b.String()
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (c *neConverter) convertListItem(n *html.Node, cc Context) string {
	content := strings.TrimSpace(c.convertChildren(n, cc))
	if content == "" {
		return ""
	}
	if cc.ParentListType == ListOrdered {
		return fmt.Sprintf("%d. %s\n", cc.ListIndex, content)
	}
	return fmt.Sprintf("- %s\n", content)
}

// fenceInline 行内代码围栏: 围栏长度取内容中最长反引号连续段+1,
// 首尾是反引号或空格时两侧各垫一个空格防止与围栏粘连
func fenceInline(s string) string {
	s = newlineRunRe.ReplaceAllString(stripZeroWidth(s), " ")
	if strings.TrimSpace(s) == "" {
		return ""
	}
	fence := strings.Repeat("`", longestBacktickRun(s)+1)
	pad := ""
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		pad = " "
	}
	return fence + pad + s + pad + fence
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

func rawInlineText(n *html.Node) string {
	return nodeText(n)
}

func wrapStyle(content, open, close string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return content
	}
	return open + trimmed + close
}

func blockQuote(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return "\n" + strings.Join(lines, "\n") + "\n\n"
}

// escapeText 文本节点仅转义尖括号, 避免被下游当作内嵌HTML解释
// 实体解码由解析器完成
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func isUIChrome(n *html.Node) bool {
	for _, token := range classTokens(n) {
		for _, prefix := range chromeClassPrefixes {
			if strings.HasPrefix(token, prefix) {
				return true
			}
		}
	}
	return false
}
