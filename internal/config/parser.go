package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Ki1ro0133/XZCrawler/internal/domain/entity"
)

// InitConfig 加载并校验配置,cfgFile为空时按默认路径查找config.yaml
func InitConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("XZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 未显式指定配置文件时允许缺省,全部走默认值与环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://xz.aliyun.com")
	v.SetDefault("site.listing_url", "https://xz.aliyun.com/news")
	v.SetDefault("site.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	v.SetDefault("site.referer", "https://xz.aliyun.com/")
	v.SetDefault("site.selectors.entry", "div.article-list div.article-item")
	v.SetDefault("site.selectors.title", "a.article-title")
	v.SetDefault("site.selectors.publish_time", "span.publish-time")
	v.SetDefault("site.selectors.category", "span.article-category")
	v.SetDefault("site.selectors.author", "a.article-author, span.article-author")
	v.SetDefault("site.selectors.next_page", "li.ant-pagination-next:not(.ant-pagination-disabled)")
	v.SetDefault("site.selectors.detail_body", "div.article-content, #topic_content")
	v.SetDefault("site.selectors.detail_title", "h1.article-title, span.content-title")

	v.SetDefault("crawler.concurrency", 3)
	v.SetDefault("crawler.max_pages", 0)
	v.SetDefault("crawler.retries", 1)
	v.SetDefault("crawler.retry_base_delay_seconds", 2)
	v.SetDefault("crawler.boundary_min_pages", 3)
	v.SetDefault("crawler.rate_limit", 2.0)
	v.SetDefault("crawler.rate_burst", 1)
	v.SetDefault("crawler.detail_timeout_seconds", 60)
	v.SetDefault("crawler.output_dir", "xz_articles")
	v.SetDefault("crawler.localize_images", true)

	v.SetDefault("browser.engine", "chromedp")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.disable_dev_shm_usage", true)
	v.SetDefault("browser.disable_blink_features", "AutomationControlled")
	v.SetDefault("browser.incognito", false)
	v.SetDefault("browser.page_settle_seconds", 2)

	v.SetDefault("fetcher.mode", "browser")

	v.SetDefault("images.timeout_seconds", 30)
	v.SetDefault("images.max_redirects", 10)

	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("elasticsearch.address", "https://localhost:9200")

	v.SetDefault("embedder.enabled", false)
	v.SetDefault("embedder.host", "http://localhost")
	v.SetDefault("embedder.port", 11434)
	v.SetDefault("embedder.model", "nomic-embed-text")
	v.SetDefault("embedder.batch_size", 8)

	v.SetDefault("summary.enabled", false)
	v.SetDefault("summary.host", "http://localhost")
	v.SetDefault("summary.port", 11434)
	v.SetDefault("summary.model", "qwen2.5:7b")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// normalize 校验取值范围并把路径转为绝对路径
func normalize(cfg *Config) error {
	if cfg.Crawler.Concurrency < 1 {
		return fmt.Errorf("crawler.concurrency 必须大于0, 实际为 %d", cfg.Crawler.Concurrency)
	}
	if cfg.Crawler.Retries < 0 {
		return fmt.Errorf("crawler.retries 不能为负数, 实际为 %d", cfg.Crawler.Retries)
	}
	if cfg.Crawler.RateLimit <= 0 {
		return fmt.Errorf("crawler.rate_limit 必须大于0, 实际为 %v", cfg.Crawler.RateLimit)
	}
	if cfg.Crawler.RateBurst < 1 {
		cfg.Crawler.RateBurst = 1
	}
	if cfg.Crawler.BoundaryMinPages < 1 {
		cfg.Crawler.BoundaryMinPages = 1
	}

	switch cfg.Browser.Engine {
	case "chromedp", "rod":
	default:
		return fmt.Errorf("browser.engine 仅支持 chromedp/rod, 实际为 %q", cfg.Browser.Engine)
	}
	switch cfg.Fetcher.Mode {
	case "browser", "static":
	default:
		return fmt.Errorf("fetcher.mode 仅支持 browser/static, 实际为 %q", cfg.Fetcher.Mode)
	}

	if _, err := cfg.Window(); err != nil {
		return err
	}

	if cfg.Browser.UserDataDir != "" && !filepath.IsAbs(cfg.Browser.UserDataDir) {
		abs, err := filepath.Abs(cfg.Browser.UserDataDir)
		if err != nil {
			return fmt.Errorf("解析 browser.user_data_dir 失败: %w", err)
		}
		cfg.Browser.UserDataDir = abs
	}
	if !filepath.IsAbs(cfg.Crawler.OutputDir) {
		abs, err := filepath.Abs(cfg.Crawler.OutputDir)
		if err != nil {
			return fmt.Errorf("解析 crawler.output_dir 失败: %w", err)
		}
		cfg.Crawler.OutputDir = abs
	}
	return nil
}

// Window 根据日期配置构造抓取时间窗口
// start_date/end_date 与 target_date 互斥,同时给出时以区间优先
func (cfg *Config) Window() (entity.CrawlWindow, error) {
	if cfg.Crawler.StartDate != "" || cfg.Crawler.EndDate != "" {
		start, err := parseDay(cfg.Crawler.StartDate, "crawler.start_date")
		if err != nil {
			return entity.CrawlWindow{}, err
		}
		end, err := parseDay(cfg.Crawler.EndDate, "crawler.end_date")
		if err != nil {
			return entity.CrawlWindow{}, err
		}
		if !start.IsZero() && !end.IsZero() && end.Before(start) {
			return entity.CrawlWindow{}, fmt.Errorf("时间窗口无效: end_date %s 早于 start_date %s", cfg.Crawler.EndDate, cfg.Crawler.StartDate)
		}
		// 闭区间要包含end_date当天整天,发布时间往往带时分
		if !end.IsZero() {
			end = end.Add(24*time.Hour - time.Second)
		}
		return entity.NewRangeWindow(start, end), nil
	}
	if cfg.Crawler.TargetDate != "" {
		target, err := parseDay(cfg.Crawler.TargetDate, "crawler.target_date")
		if err != nil {
			return entity.CrawlWindow{}, err
		}
		return entity.NewTargetWindow(target), nil
	}
	return entity.CrawlWindow{}, nil
}

func parseDay(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s 格式应为 YYYY-MM-DD, 实际为 %q", field, s)
	}
	return t, nil
}
