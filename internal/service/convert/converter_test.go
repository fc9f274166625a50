package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConverter() Converter {
	return InitConverter(zap.NewNop())
}

func TestConvertDeterministic(t *testing.T) {
	c := newTestConverter()
	input := `<ne-h2><ne-text>标题</ne-text></ne-h2><ne-p><ne-text ne-bold="true">加粗</ne-text>正文</ne-p>`

	first := c.Convert(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Convert(input))
	}
}

func TestConvertAttributeOrderIndependent(t *testing.T) {
	c := newTestConverter()
	a := c.Convert(`<ne-p><ne-text ne-bold="true" ne-italic="true">重点</ne-text></ne-p>`)
	b := c.Convert(`<ne-p><ne-text ne-italic="true" ne-bold="true">重点</ne-text></ne-p>`)

	assert.Equal(t, a, b)
	assert.Equal(t, "***重点***", a)
}

func TestConvertParagraphAndHeading(t *testing.T) {
	c := newTestConverter()

	assert.Equal(t, "Hello world", c.Convert(`<ne-p><ne-text>Hello world</ne-text></ne-p>`))
	assert.Equal(t, "## 安装步骤", c.Convert(`<ne-h2><ne-text>安装步骤</ne-text></ne-h2>`))
	assert.Equal(t, "###### 深层", c.Convert(`<h6>深层</h6>`))
	// 空段落不产出
	assert.Equal(t, "", c.Convert(`<ne-p><ne-text>   </ne-text></ne-p>`))
}

func TestConvertTextStyles(t *testing.T) {
	c := newTestConverter()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"加粗", `<ne-p><ne-text ne-bold="true">粗</ne-text></ne-p>`, "**粗**"},
		{"斜体", `<ne-p><ne-text ne-italic="true">斜</ne-text></ne-p>`, "*斜*"},
		{"下划线", `<ne-p><ne-text ne-underline="true">线</ne-text></ne-p>`, "<u>线</u>"},
		{"删除线", `<ne-p><ne-text ne-strikethrough="true">删</ne-text></ne-p>`, "~~删~~"},
		{"legacy加粗", `<p><strong>粗</strong></p>`, "**粗**"},
		{"legacy斜体", `<p><em>斜</em></p>`, "*斜*"},
		{"legacy删除线", `<p><del>删</del></p>`, "~~删~~"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Convert(tc.input))
		})
	}
}

func TestConvertInlineCode(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-p>运行 <ne-text ne-code="true">go build</ne-text> 即可</ne-p>`)
	assert.Equal(t, "运行 `go build` 即可", out)

	// 行内代码中的换行折叠为空格
	out = c.Convert("<ne-p><ne-code>first\nsecond</ne-code></ne-p>")
	assert.Equal(t, "`first second`", out)
}

func TestFenceInlineBacktickSafety(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"无反引号", "go build", "`go build`"},
		{"单反引号段", "a `b` c", "``a `b` c``"},
		{"双反引号段", "x``y", "```x``y```"},
		{"首尾反引号需垫空格", "`ls`", "`` `ls` ``"},
		{"首尾空格需再垫空格", " padded ", "`  padded  `"},
		{"换行折叠", "line1\nline2", "`line1 line2`"},
		{"全空白不产出", "  \n ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fenceInline(tc.input))
		})
	}
}

func TestFenceInlineAlwaysOneLongerThanRun(t *testing.T) {
	for _, content := range []string{"a`b", "a``b", "a```b", "````", "`start", "end`"} {
		run := longestBacktickRun(content)
		out := fenceInline(content)
		require.NotEmpty(t, out)
		fence := strings.Repeat("`", run+1)
		assert.True(t, strings.HasPrefix(out, fence), "输入 %q 的围栏应为 %q, 实际 %q", content, fence, out)
		assert.False(t, strings.HasPrefix(out, fence+"`"), "输入 %q 的围栏过长: %q", content, out)
	}
}

func TestConvertOrderedListNumbering(t *testing.T) {
	c := newTestConverter()

	input := `<ne-ol><ne-li>first</ne-li><ne-li>second<ne-ol><ne-li>inner one</ne-li><ne-li>inner two</ne-li></ne-ol></ne-li><ne-li>third</ne-li></ne-ol>`
	out := c.Convert(input)
	lines := strings.Split(out, "\n")

	assert.Contains(t, lines, "1. first")
	assert.Contains(t, lines, "1. inner one")
	assert.Contains(t, lines, "2. inner two")
	// 嵌套列表不污染外层计数器
	assert.Contains(t, lines, "3. third")
}

func TestConvertSiblingListsIndependent(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-ol><ne-li>a</ne-li><ne-li>b</ne-li></ne-ol><ne-ol><ne-li>c</ne-li></ne-ol>`)
	lines := strings.Split(out, "\n")

	assert.Contains(t, lines, "2. b")
	assert.Contains(t, lines, "1. c")
	assert.NotContains(t, lines, "3. c")
}

func TestConvertUnorderedList(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-ul><ne-li>甲</ne-li><ne-li>乙</ne-li></ne-ul>`)
	assert.Equal(t, "- 甲\n- 乙", out)
}

func TestConvertAnchorAndImage(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-p><a href="https://xz.aliyun.com/t/123">文章</a></ne-p>`)
	assert.Equal(t, "[文章](https://xz.aliyun.com/t/123)", out)

	// 无href退化为纯文本
	out = c.Convert(`<ne-p><a>裸链接文字</a></ne-p>`)
	assert.Equal(t, "裸链接文字", out)

	out = c.Convert(`<ne-p><img src="https://img.example.com/a.png" alt="图1"></ne-p>`)
	assert.Equal(t, "![图1](https://img.example.com/a.png)", out)

	// 无src的图片直接丢弃
	assert.Equal(t, "", c.Convert(`<ne-p><img alt="孤儿"></ne-p>`))
}

func TestConvertQuote(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-quote><ne-p>引用一</ne-p><ne-p>引用二</ne-p></ne-quote>`)
	assert.Equal(t, "> 引用一\n>\n> 引用二", out)

	out = c.Convert(`<blockquote>legacy引用</blockquote>`)
	assert.Equal(t, "> legacy引用", out)
}

func TestConvertGenericCard(t *testing.T) {
	c := newTestConverter()

	// 非代码卡默认包装为引用块
	out := c.Convert(`<ne-card data-card-name="hint"><ne-p>注意事项</ne-p></ne-card>`)
	assert.Equal(t, "> 注意事项", out)

	// 含图片的卡片只做空行包装
	out = c.Convert(`<ne-card data-card-name="image"><img src="https://img.example.com/a.png" alt="图1"></ne-card>`)
	assert.Equal(t, "![图1](https://img.example.com/a.png)", out)
	assert.NotContains(t, out, ">")
}

func TestConvertChromeDroppedUnknownTransparent(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-p>正文<span class="copy-btn">复制</span></ne-p>`)
	assert.Equal(t, "正文", out)

	out = c.Convert(`<ne-p><ne-inline-box>透明内容</ne-inline-box></ne-p>`)
	assert.Equal(t, "透明内容", out)
}

func TestConvertEscapesAngleBrackets(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-p>1 &lt; 2 &gt; 0</ne-p>`)
	assert.Equal(t, "1 &lt; 2 &gt; 0", out)
}

func TestConvertBreakAndRule(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-p>上<br>下</ne-p>`)
	assert.Equal(t, "上\n下", out)

	out = c.Convert(`<ne-p>a</ne-p><hr><ne-p>b</ne-p>`)
	assert.Contains(t, out, "---")
}

func TestPlainTextClean(t *testing.T) {
	assert.Equal(t, "a b", plainTextClean(`<div>a<script>evil()</script>b</div>`))
	assert.Equal(t, "样式外", plainTextClean(`<style>.x{color:red}</style><p>样式外</p>`))
	assert.Equal(t, "1 < 2", plainTextClean(`1 &lt; 2`))
	assert.Equal(t, "", plainTextClean(`<div>   </div>`))
}

func TestFallbackConvertAlwaysReturnsText(t *testing.T) {
	c := &neConverter{logger: zap.NewNop()}

	out := c.fallbackConvert(`<h1>标题</h1><p>段落</p>`)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "标题")
	assert.Contains(t, out, "段落")
}
