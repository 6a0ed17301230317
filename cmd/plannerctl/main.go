// plannerctl 是答辩排程后端的运维命令行工具。
//
//	plannerctl [-config path] <command> [args]
//
// 命令：
//
//	list                         委员会摘要
//	show <commission>            委员会详情与各配置状态
//	burden <commission>          教授负担
//	solve <commission> <config>  提交求解
//	watch <commission> <config>  轮询配置状态直至结束（仅终端环境）
//	delete <commission>          删除委员会
//	token <subject>              签发访问令牌（需启用认证）
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/stefa168/ottimizzatore-lauree/config"
	applogger "github.com/stefa168/ottimizzatore-lauree/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg, os.Stdout, logger)
	app.interactive = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	if err := app.run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "plannerctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `用法: plannerctl [-config path] <command> [args]

命令:
  list                         委员会摘要
  show <commission>            委员会详情与各配置状态
  burden <commission>          教授负担
  solve <commission> <config>  提交求解
  watch <commission> <config>  轮询配置状态直至结束
  delete <commission>          删除委员会
  token <subject>              签发访问令牌

选项:
`)
	flag.PrintDefaults()
}
