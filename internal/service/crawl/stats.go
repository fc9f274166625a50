package crawl

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RunStats 单轮抓取的汇总统计
type RunStats struct {
	PagesCrawled      int
	EntriesFound      int
	Matched           int
	Saved             int
	DuplicatesSkipped int
	Failed            int
	Duration          time.Duration
}

// RenderTable 把统计结果渲染成控制台表格
func (st *RunStats) RenderTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"指标", "数值"})
	t.AppendRow(table.Row{"抓取页数", st.PagesCrawled})
	t.AppendRow(table.Row{"发现条目", st.EntriesFound})
	t.AppendRow(table.Row{"命中窗口", st.Matched})
	t.AppendRow(table.Row{"保存成功", st.Saved})
	t.AppendRow(table.Row{"重复跳过", st.DuplicatesSkipped})
	t.AppendRow(table.Row{"抓取失败", st.Failed})
	t.AppendRow(table.Row{"总耗时", st.Duration.Round(time.Millisecond).String()})
	t.Render()
}
