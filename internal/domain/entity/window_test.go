package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowZeroContainsEverything(t *testing.T) {
	var w CrawlWindow
	assert.True(t, w.IsZero())
	assert.True(t, w.Contains(day(1999, 1, 1)))
	assert.True(t, w.Contains(day(2099, 1, 1)))

	_, ok := w.LowerBound()
	assert.False(t, ok)
	assert.Equal(t, "全部", w.Describe())
}

func TestWindowRangeInclusiveBounds(t *testing.T) {
	w := NewRangeWindow(day(2025, 6, 1), day(2025, 6, 30))

	assert.True(t, w.Contains(day(2025, 6, 1)), "下界当天在窗口内")
	assert.True(t, w.Contains(day(2025, 6, 30)), "上界当天在窗口内")
	assert.True(t, w.Contains(day(2025, 6, 15)))
	assert.False(t, w.Contains(day(2025, 5, 31)))
	assert.False(t, w.Contains(day(2025, 7, 1)))

	bound, ok := w.LowerBound()
	assert.True(t, ok)
	assert.Equal(t, day(2025, 6, 1), bound)
	assert.Equal(t, "2025-06-01 ~ 2025-06-30", w.Describe())
}

func TestWindowOpenEndedRange(t *testing.T) {
	startOnly := NewRangeWindow(day(2025, 6, 1), time.Time{})
	assert.True(t, startOnly.Contains(day(2026, 1, 1)))
	assert.False(t, startOnly.Contains(day(2025, 5, 1)))
	_, ok := startOnly.LowerBound()
	assert.True(t, ok)
	assert.Equal(t, "2025-06-01 起", startOnly.Describe())

	endOnly := NewRangeWindow(time.Time{}, day(2025, 6, 30))
	assert.True(t, endOnly.Contains(day(2020, 1, 1)))
	assert.False(t, endOnly.Contains(day(2025, 7, 1)))
	_, ok = endOnly.LowerBound()
	assert.False(t, ok, "只有上界时没有翻页下界")
	assert.Equal(t, "至 2025-06-30", endOnly.Describe())
}

func TestWindowTargetStrictlyAfter(t *testing.T) {
	w := NewTargetWindow(day(2025, 6, 10))

	assert.False(t, w.Contains(day(2025, 6, 10)), "target当天不算")
	assert.True(t, w.Contains(day(2025, 6, 10).Add(time.Minute)))
	assert.False(t, w.Contains(day(2025, 6, 9)))

	bound, ok := w.LowerBound()
	assert.True(t, ok)
	assert.Equal(t, day(2025, 6, 10), bound)
	assert.Equal(t, "2025-06-10 之后", w.Describe())
}

func TestWindowRangeBeatsTarget(t *testing.T) {
	w := CrawlWindow{
		Start:  day(2025, 6, 1),
		End:    day(2025, 6, 30),
		Target: day(2020, 1, 1),
	}
	assert.False(t, w.Contains(day(2020, 6, 1)), "区间与target同时存在时区间优先")
	assert.True(t, w.Contains(day(2025, 6, 15)))
}
