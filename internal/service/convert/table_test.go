package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "|") {
			lines = append(lines, line)
		}
	}
	return lines
}

func isSeparatorLine(line string) bool {
	body := strings.Trim(line, "| ")
	for _, cell := range strings.Split(body, "|") {
		if strings.TrimSpace(cell) != "---" {
			return false
		}
	}
	return body != ""
}

func cellCount(line string) int {
	return len(strings.Split(strings.Trim(line, "|"), "|"))
}

func TestConvertTableFirstRowBecomesHeader(t *testing.T) {
	c := newTestConverter()

	input := `<ne-table><table><tbody>` +
		`<tr><td>名称</td><td>值</td></tr>` +
		`<tr><td>超时</td><td>30s</td></tr>` +
		`</tbody></table></ne-table>`

	out := c.Convert(input)
	lines := tableLines(out)
	require.Len(t, lines, 3)

	assert.Equal(t, "| 名称 | 值 |", lines[0])
	assert.True(t, isSeparatorLine(lines[1]))
	assert.Equal(t, "| 超时 | 30s |", lines[2])
}

func TestConvertTableExplicitHeader(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`)
	lines := tableLines(out)
	require.Len(t, lines, 3)
	assert.Equal(t, "| A | B |", lines[0])
	assert.True(t, isSeparatorLine(lines[1]))
}

func TestConvertTableExactlyOneSeparator(t *testing.T) {
	c := newTestConverter()

	// 第三行出现th也不会再次产出分隔行
	input := `<table>` +
		`<tr><td>r1c1</td><td>r1c2</td></tr>` +
		`<tr><td>r2c1</td><td>r2c2</td></tr>` +
		`<tr><th>r3c1</th><th>r3c2</th></tr>` +
		`</table>`

	out := c.Convert(input)
	lines := tableLines(out)
	require.Len(t, lines, 4)

	separators := 0
	for i, line := range lines {
		if isSeparatorLine(line) {
			separators++
			assert.Equal(t, 1, i, "分隔行必须紧跟首个表头行")
		}
	}
	assert.Equal(t, 1, separators)
}

func TestConvertTableUniformCellCount(t *testing.T) {
	c := newTestConverter()

	// 短行补齐到表头列数
	input := `<table>` +
		`<tr><th>A</th><th>B</th><th>C</th></tr>` +
		`<tr><td>1</td></tr>` +
		`<tr><td>2</td><td>3</td><td>4</td></tr>` +
		`</table>`

	out := c.Convert(input)
	lines := tableLines(out)
	require.Len(t, lines, 4)

	want := cellCount(lines[0])
	for _, line := range lines {
		assert.Equal(t, want, cellCount(line), "行 %q 的列数与表头不一致", line)
	}
}

func TestConvertTableOverflowCellsMergeIntoLastColumn(t *testing.T) {
	c := newTestConverter()

	input := `<table>` +
		`<tr><th>A</th><th>B</th></tr>` +
		`<tr><td>1</td><td>2</td><td>3</td><td>4</td></tr>` +
		`</table>`

	out := c.Convert(input)
	lines := tableLines(out)
	require.Len(t, lines, 3)

	want := cellCount(lines[0])
	for _, line := range lines {
		assert.Equal(t, want, cellCount(line), "行 %q 的列数与表头不一致", line)
	}
	assert.Equal(t, "| 1 | 2 3 4 |", lines[2])
}

func TestConvertTableSkipsEmptyRows(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<table><tr></tr><tr><td>有效</td></tr></table>`)
	lines := tableLines(out)
	require.Len(t, lines, 2)
	assert.Equal(t, "| 有效 |", lines[0])
	assert.True(t, isSeparatorLine(lines[1]))
}

func TestConvertTableCellCleaning(t *testing.T) {
	c := newTestConverter()

	// 竖线转义
	out := c.Convert(`<table><tr><td>a|b</td></tr></table>`)
	assert.Contains(t, out, `a\|b`)

	// NBSP转普通空格
	out = c.Convert(`<table><tr><td>a&nbsp;b</td></tr></table>`)
	assert.Contains(t, out, "| a b |")

	// 单元格内多段落折叠为<br>
	out = c.Convert(`<table><tr><td><ne-p>第一</ne-p><ne-p>第二</ne-p></td></tr></table>`)
	assert.Contains(t, out, "| 第一<br>第二 |")
}

func TestConvertTableCellContentContainer(t *testing.T) {
	c := newTestConverter()

	input := `<ne-table><table><tbody><tr>` +
		`<td><div class="ne-table-cell-wrap"><div class="ne-table-cell-content">内容</div></div></td>` +
		`</tr></tbody></table></ne-table>`

	out := c.Convert(input)
	assert.Contains(t, out, "| 内容 |")
}

func TestConvertTableNoRowsFallsBackToFence(t *testing.T) {
	c := newTestConverter()

	out := c.Convert(`<ne-table><ne-p>不是表格</ne-p></ne-table>`)
	assert.Contains(t, out, "```\n不是表格\n```")
}
