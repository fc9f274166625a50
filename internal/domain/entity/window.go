package entity

import (
	"fmt"
	"time"
)

// CrawlWindow 发布时间过滤窗口
// 两种互斥形态:Start/End闭区间(允许只给一端),或单个Target表示"严格晚于"
// 两者都给时以区间为准
type CrawlWindow struct {
	Start  time.Time
	End    time.Time
	Target time.Time
}

// NewRangeWindow 构造闭区间窗口,零值的一端视为不设边界
func NewRangeWindow(start, end time.Time) CrawlWindow {
	return CrawlWindow{Start: start, End: end}
}

// NewTargetWindow 构造"严格晚于target"的窗口
func NewTargetWindow(target time.Time) CrawlWindow {
	return CrawlWindow{Target: target}
}

// IsZero 未配置任何过滤条件
func (w CrawlWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero() && w.Target.IsZero()
}

func (w CrawlWindow) hasRange() bool {
	return !w.Start.IsZero() || !w.End.IsZero()
}

// Contains 判断发布时间是否落入窗口
func (w CrawlWindow) Contains(t time.Time) bool {
	if w.hasRange() {
		if !w.Start.IsZero() && t.Before(w.Start) {
			return false
		}
		if !w.End.IsZero() && t.After(w.End) {
			return false
		}
		return true
	}
	if !w.Target.IsZero() {
		return t.After(w.Target)
	}
	return true
}

// LowerBound 返回窗口下界,用于翻页越界判断
// 只给End的区间没有下界,翻页只能靠页数上限兜底
func (w CrawlWindow) LowerBound() (time.Time, bool) {
	if w.hasRange() {
		if w.Start.IsZero() {
			return time.Time{}, false
		}
		return w.Start, true
	}
	if !w.Target.IsZero() {
		return w.Target, true
	}
	return time.Time{}, false
}

// Describe 生成汇总文件里的时间范围描述
func (w CrawlWindow) Describe() string {
	const day = "2006-01-02"
	switch {
	case !w.Start.IsZero() && !w.End.IsZero():
		return fmt.Sprintf("%s ~ %s", w.Start.Format(day), w.End.Format(day))
	case !w.Start.IsZero():
		return fmt.Sprintf("%s 起", w.Start.Format(day))
	case !w.End.IsZero():
		return fmt.Sprintf("至 %s", w.End.Format(day))
	case !w.Target.IsZero():
		return fmt.Sprintf("%s 之后", w.Target.Format(day))
	default:
		return "全部"
	}
}
