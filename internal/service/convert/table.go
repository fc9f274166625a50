package convert

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// convertTable 重建Markdown表格
// 表头行为含th的行, 或尚未产出表头时的首行; 分隔行只在首个表头后产出一次
func (c *neConverter) convertTable(n *html.Node) string {
	rows := findAll(n, byTag("tr"))
	if len(rows) == 0 {
		return c.tableFallback(n)
	}

	var b strings.Builder
	b.WriteString("\n")
	headerEmitted := false
	headerCols := 0
	rendered := 0
	for _, row := range rows {
		cells := findAll(row, byTag("td", "th"))
		if len(cells) == 0 {
			continue
		}

		isHeader := rendered == 0 && !headerEmitted
		for _, cell := range cells {
			if cell.Data == "th" {
				isHeader = true
				break
			}
		}

		texts := make([]string, 0, len(cells))
		for _, cell := range cells {
			texts = append(texts, c.cellText(cell))
		}
		// 短行补齐到表头列数, 超出的溢出列并入最后一列, 保持列对齐
		for headerCols > 0 && len(texts) < headerCols {
			texts = append(texts, "")
		}
		if headerCols > 0 && len(texts) > headerCols {
			texts[headerCols-1] = strings.Join(texts[headerCols-1:], " ")
			texts = texts[:headerCols]
		}
		b.WriteString("| " + strings.Join(texts, " | ") + " |\n")
		rendered++

		if isHeader && !headerEmitted {
			headerEmitted = true
			headerCols = len(texts)
			seps := make([]string, len(texts))
			for i := range seps {
				seps[i] = "---"
			}
			b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
		}
	}
	if rendered == 0 {
		return c.tableFallback(n)
	}
	b.WriteString("\n")
	return b.String()
}

// cellText 单元格内容递归转换后做表格安全清洗:
// 去零宽与BOM, NBSP转普通空格, 去行尾空白, 空行折叠, 竖线转义, 换行转<br>
func (c *neConverter) cellText(cell *html.Node) string {
	container := cell
	if el := findFirst(cell, byClass("ne-table-cell-content")); el != nil {
		container = el
	}
	md := c.convertChildren(container, Context{})

	md = stripZeroWidth(md)
	md = strings.ReplaceAll(md, " ", " ")

	lines := make([]string, 0, 4)
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	md = strings.TrimSpace(strings.Join(lines, "\n"))

	md = strings.ReplaceAll(md, "|", `\|`)
	md = strings.ReplaceAll(md, "\n", "<br>")
	return md
}

// tableFallback 找不到任何行时退化为去标签文本的围栏块, 不静默丢表
func (c *neConverter) tableFallback(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	txt := plainTextClean(buf.String())
	if txt == "" {
		return ""
	}
	return "\n```\n" + txt + "\n```\n\n"
}
