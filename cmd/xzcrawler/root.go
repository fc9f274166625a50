package main

import (
	"context"
	"fmt"

	"github.com/Ki1ro0133/XZCrawler/internal/config"
	"github.com/Ki1ro0133/XZCrawler/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string

	flagPages  int
	flagStart  string
	flagEnd    string
	flagTarget string
	flagEngine string
	flagMode   string

	rootCmd = &cobra.Command{
		Use:   "xzcrawler",
		Short: "先知社区文章镜像工具",
		Long: `xzcrawler 把先知社区(xz.aliyun.com)的文章抓取为本地Markdown镜像:
分页遍历列表页,按发布时间窗口过滤,把富文本编辑器产出的DOM还原成Markdown,
并可选地本地化图片、生成摘要、归档到Elasticsearch。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
)

// Execute CLI入口,先加载.env再执行命令树
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"配置文件路径(默认查找./config.yaml与./config/config.yaml)")
}

// initDeps 加载配置并构造logger,flag覆盖在配置加载后生效
func initDeps(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.InitConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	applyOverrides(cmd, cfg)
	lg, err := logger.InitLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, lg, nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("pages") {
		cfg.Crawler.MaxPages = flagPages
	}
	if flags.Changed("start") {
		cfg.Crawler.StartDate = flagStart
	}
	if flags.Changed("end") {
		cfg.Crawler.EndDate = flagEnd
	}
	if flags.Changed("target") {
		cfg.Crawler.TargetDate = flagTarget
	}
	if flags.Changed("engine") {
		cfg.Browser.Engine = flagEngine
	}
	if flags.Changed("mode") {
		cfg.Fetcher.Mode = flagMode
	}
}

// addCrawlFlags crawl与schedule共用的一组覆盖flag
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagPages, "pages", 0, "最多抓取页数, 0为不限")
	cmd.Flags().StringVar(&flagStart, "start", "", "起始日期(YYYY-MM-DD, 闭区间)")
	cmd.Flags().StringVar(&flagEnd, "end", "", "结束日期(YYYY-MM-DD, 闭区间)")
	cmd.Flags().StringVar(&flagTarget, "target", "", "只抓严格晚于该日期的文章(YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagEngine, "engine", "", "浏览器引擎(chromedp|rod)")
	cmd.Flags().StringVar(&flagMode, "mode", "", "详情抓取模式(browser|static)")
}
