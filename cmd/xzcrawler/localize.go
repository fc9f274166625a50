package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Ki1ro0133/XZCrawler/internal/infra/storage"
	"github.com/Ki1ro0133/XZCrawler/internal/service/localize"
	"github.com/Ki1ro0133/XZCrawler/param"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var localizeCmd = &cobra.Command{
	Use:   "localize",
	Short: "对已有文章目录单独跑一遍图片本地化",
	RunE:  runLocalize,
}

func init() {
	rootCmd.AddCommand(localizeCmd)
}

func runLocalize(cmd *cobra.Command, args []string) error {
	cfg, lg, err := initDeps(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.InitMarkdownStore(cfg.Crawler.OutputDir, cfg.Site.BaseURL, lg)
	if err != nil {
		return err
	}
	files, err := store.MarkdownFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		lg.Info("文章目录为空, 无事可做", zap.String("目录", cfg.Crawler.OutputDir))
		return nil
	}

	loc := localize.InitLocalizer(param.Localize{
		ImagesDir:      store.ImagesDir(),
		Referer:        cfg.Site.Referer,
		UserAgent:      cfg.Site.UserAgent,
		TimeoutSeconds: cfg.Images.TimeoutSecond,
		MaxRedirects:   cfg.Images.MaxRedirects,
		Concurrency:    cfg.Crawler.Concurrency,
	}, lg)

	result, err := loc.LocalizeFiles(ctx, files)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"指标", "数值"})
	t.AppendRow(table.Row{"处理文件", result.Files})
	t.AppendRow(table.Row{"改写引用", result.Rewritten})
	t.AppendRow(table.Row{"下载图片", result.Downloaded})
	t.AppendRow(table.Row{"失败引用", result.Failed})
	t.Render()
	return nil
}
