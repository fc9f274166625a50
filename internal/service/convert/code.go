package convert

import (
	"strings"

	"golang.org/x/net/html"
)

// extractCodeBlock 从代码卡或legacy pre中提取代码并输出围栏块
// 编辑器按行渲染代码(每行一个cm-line元素), 逐行取文本再用换行拼接;
// 找不到行元素时按内容容器逐级回退
func (c *neConverter) extractCodeBlock(n *html.Node) string {
	lang := codeLanguage(n)

	var code string
	if lineEls := findAll(n, byClass("cm-line")); len(lineEls) > 0 {
		lines := make([]string, 0, len(lineEls))
		for _, el := range lineEls {
			lines = append(lines, codeLineText(el))
		}
		code = strings.Join(lines, "\n")
	} else if el := findFirst(n, byClass("cm-content")); el != nil {
		code = nodeText(el)
	} else if el := findFirst(n, byClass("ne-code-content")); el != nil {
		code = nodeText(el)
	} else if el := findFirst(n, byTag("code")); el != nil {
		code = nodeText(el)
	} else if el := findFirst(n, byTag("pre")); el != nil {
		code = nodeText(el)
	}

	code = strings.Trim(stripZeroWidth(code), "\r\n")
	if strings.TrimSpace(code) == "" {
		return ""
	}
	return "\n```" + lang + "\n" + code + "\n```\n\n"
}

// codeLanguage 识别语言标记, 站点把shell记作bash更通用
func codeLanguage(n *html.Node) string {
	lang := ""
	for _, key := range []string{"data-language", "data-mode", "language"} {
		if v, ok := attrVal(n, key); ok && v != "" {
			lang = v
			break
		}
	}
	if lang == "" {
		if codeEl := findFirst(n, byTag("code")); codeEl != nil {
			for _, token := range classTokens(codeEl) {
				if strings.HasPrefix(token, "language-") {
					lang = strings.TrimPrefix(token, "language-")
					break
				}
			}
		}
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "shell" {
		lang = "bash"
	}
	return lang
}

// codeLineText 单个行元素内的文本拼接
// 行内的br不产出换行, 一个行元素本身就代表一个逻辑行
func codeLineText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			return
		case html.ElementNode:
			if cur.Data == "br" || isUIChrome(cur) {
				return
			}
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return stripZeroWidth(b.String())
}
