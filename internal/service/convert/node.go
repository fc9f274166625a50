package convert

import (
	"strings"

	"golang.org/x/net/html"
)

// attrVal 读取属性值, 解析器已将属性名统一转成小写
func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attrTrue(n *html.Node, key string) bool {
	v, ok := attrVal(n, key)
	return ok && v == "true"
}

func classTokens(n *html.Node) []string {
	cls, ok := attrVal(n, "class")
	if !ok {
		return nil
	}
	return strings.Fields(cls)
}

func hasClass(n *html.Node, name string) bool {
	for _, t := range classTokens(n) {
		if t == name {
			return true
		}
	}
	return false
}

// findFirst 深度优先查找第一个满足条件的节点, 包含n自身
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll 深度优先收集所有满足条件的节点, 命中后不再深入其子树
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.ElementNode && match(cur) {
			out = append(out, cur)
			return
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return out
}

func byTag(names ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, name := range names {
			if n.Data == name {
				return true
			}
		}
		return false
	}
}

func byClass(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return hasClass(n, name)
	}
}

// nodeText 拼接子树内全部文本节点的原始内容
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			return
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

func stripZeroWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '​', '‌', '‍', '\uFEFF':
			return -1
		}
		return r
	}, s)
}
