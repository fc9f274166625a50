package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagCronSpec string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "按cron表达式周期性抓取, Ctrl+C退出",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&flagCronSpec, "cron", "0 3 * * *",
		"cron表达式(分 时 日 月 周), 默认每天凌晨3点")
	addCrawlFlags(scheduleCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, lg, err := initDeps(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger), cron.Recover(cron.DefaultLogger)),
	)

	entryID, err := c.AddFunc(flagCronSpec, func() {
		lg.Info("定时抓取开始", zap.String("cron", flagCronSpec))
		stats, err := executeCrawl(ctx, cfg, lg)
		if err != nil {
			lg.Error("定时抓取失败", zap.Error(err))
			return
		}
		stats.RenderTable(os.Stdout)
	})
	if err != nil {
		return err
	}

	c.Start()
	lg.Info("调度器已启动",
		zap.String("cron", flagCronSpec),
		zap.Time("下次执行", c.Entry(entryID).Next))

	<-ctx.Done()
	lg.Info("收到退出信号, 等待进行中的抓取结束")
	<-c.Stop().Done()
	return nil
}
