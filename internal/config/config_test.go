package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInitConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "crawler:\n  output_dir: /tmp/xz_articles\n")

	cfg, err := InitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://xz.aliyun.com", cfg.Site.BaseURL)
	assert.Equal(t, 3, cfg.Crawler.Concurrency)
	assert.Equal(t, 1, cfg.Crawler.Retries)
	assert.Equal(t, 3, cfg.Crawler.BoundaryMinPages)
	assert.Equal(t, "chromedp", cfg.Browser.Engine)
	assert.Equal(t, "browser", cfg.Fetcher.Mode)
	assert.True(t, cfg.Crawler.LocalizeImages)
	assert.False(t, cfg.Elasticsearch.Enabled)

	w, err := cfg.Window()
	require.NoError(t, err)
	assert.True(t, w.IsZero())
}

func TestInitConfigRangeWindow(t *testing.T) {
	path := writeConfigFile(t, `
crawler:
  start_date: "2025-06-01"
  end_date: "2025-06-30"
`)

	cfg, err := InitConfig(path)
	require.NoError(t, err)

	w, err := cfg.Window()
	require.NoError(t, err)
	require.False(t, w.IsZero())

	inside := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	first := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lastDayAfternoon := time.Date(2025, 6, 30, 16, 30, 0, 0, time.UTC)
	before := time.Date(2025, 5, 31, 23, 59, 0, 0, time.UTC)
	after := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, w.Contains(inside))
	assert.True(t, w.Contains(first))
	assert.True(t, w.Contains(lastDayAfternoon), "end_date当天整天都在闭区间内")
	assert.False(t, w.Contains(before))
	assert.False(t, w.Contains(after))
}

func TestInitConfigOpenEndedWindow(t *testing.T) {
	path := writeConfigFile(t, `
crawler:
  start_date: "2025-06-01"
`)
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	w, err := cfg.Window()
	require.NoError(t, err)
	require.False(t, w.IsZero())
	assert.True(t, w.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)))

	bound, ok := w.LowerBound()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), bound)

	path = writeConfigFile(t, `
crawler:
  end_date: "2025-06-30"
`)
	cfg, err = InitConfig(path)
	require.NoError(t, err)

	w, err = cfg.Window()
	require.NoError(t, err)
	assert.True(t, w.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))

	_, ok = w.LowerBound()
	assert.False(t, ok, "只有上界的窗口没有翻页下界")
}

func TestInitConfigRangeTakesPrecedenceOverTarget(t *testing.T) {
	path := writeConfigFile(t, `
crawler:
  start_date: "2025-06-01"
  end_date: "2025-06-30"
  target_date: "2020-01-01"
`)
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	w, err := cfg.Window()
	require.NoError(t, err)
	assert.False(t, w.Contains(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)),
		"区间与target同时给出时以区间为准")
}

func TestInitConfigTargetWindow(t *testing.T) {
	path := writeConfigFile(t, `
crawler:
  target_date: "2025-06-10"
`)

	cfg, err := InitConfig(path)
	require.NoError(t, err)

	w, err := cfg.Window()
	require.NoError(t, err)

	after := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	same := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, w.Contains(after))
	assert.False(t, w.Contains(same))
}

func TestInitConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"零并发", "crawler:\n  concurrency: 0\n"},
		{"未知引擎", "browser:\n  engine: firefox\n"},
		{"未知抓取模式", "fetcher:\n  mode: carrier_pigeon\n"},
		{"窗口颠倒", "crawler:\n  start_date: \"2025-06-30\"\n  end_date: \"2025-06-01\"\n"},
		{"日期格式错误", "crawler:\n  target_date: \"2025/06/10\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, tc.yaml)
			_, err := InitConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestInitConfigMakesOutputDirAbsolute(t *testing.T) {
	path := writeConfigFile(t, "crawler:\n  output_dir: relative/articles\n")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Crawler.OutputDir))
}
