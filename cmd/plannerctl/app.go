package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/config"
	"github.com/stefa168/ottimizzatore-lauree/internal/client"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/poller"
	"github.com/stefa168/ottimizzatore-lauree/internal/selection"
	"github.com/stefa168/ottimizzatore-lauree/pkg/jwt"
	applogger "github.com/stefa168/ottimizzatore-lauree/pkg/logger"
)

var errUsage = errors.New("参数错误，使用 -h 查看用法")

// app 命令执行上下文
type app struct {
	cfg         *config.Config
	out         io.Writer
	logger      *zap.Logger
	client      *client.Client
	sel         *selection.Selection
	interactive func() bool
}

func newApp(cfg *config.Config, out io.Writer, logger *zap.Logger) *app {
	sel := selection.New()
	return &app{
		cfg:    cfg,
		out:    out,
		logger: logger,
		sel:    sel,
		client: client.New(cfg.Client.BaseURL, cfg.Client.Timeout,
			client.WithToken(cfg.Client.Token),
			client.WithSelection(sel),
			client.WithLogger(applogger.Component(logger, "client")),
		),
		interactive: func() bool { return false },
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		return a.list(ctx)
	case "show":
		ids, err := parseIDs(rest, 1)
		if err != nil {
			return err
		}
		return a.show(ctx, ids[0])
	case "burden":
		ids, err := parseIDs(rest, 1)
		if err != nil {
			return err
		}
		return a.burden(ctx, ids[0])
	case "solve":
		ids, err := parseIDs(rest, 2)
		if err != nil {
			return err
		}
		return a.solve(ctx, ids[0], ids[1])
	case "watch":
		ids, err := parseIDs(rest, 2)
		if err != nil {
			return err
		}
		return a.watch(ctx, ids[0], ids[1])
	case "delete":
		ids, err := parseIDs(rest, 1)
		if err != nil {
			return err
		}
		return a.client.DeleteCommission(ctx, ids[0])
	case "token":
		if len(rest) != 1 {
			return errUsage
		}
		return a.token(rest[0])
	default:
		return fmt.Errorf("未知命令 %q: %w", cmd, errUsage)
	}
}

func parseIDs(args []string, n int) ([]int64, error) {
	if len(args) != n {
		return nil, errUsage
	}
	ids := make([]int64, n)
	for i, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("无效的 ID %q", s)
		}
		ids[i] = id
	}
	return ids, nil
}

// ── 命令 ──

func (a *app) list(ctx context.Context) error {
	previews, err := a.client.ListCommissions(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE")
	for _, p := range previews {
		fmt.Fprintf(tw, "%d\t%s\n", p.ID, p.Title)
	}
	return tw.Flush()
}

func (a *app) show(ctx context.Context, id int64) error {
	c, err := a.client.GetCommission(ctx, id)
	if err != nil {
		return err
	}
	a.sel.Commission.Replace(c)

	fmt.Fprintf(a.out, "%s (#%d): %d 名候选人\n\n", c.Title, c.ID, len(c.Entries))
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIG\tTITLE\tSOLVER\tSTATUS\tSLOTS\tDURATION")
	for i := range c.Configurations {
		conf := &c.Configurations[i]
		st := planning.ResolveStatus(conf)
		if st.Anomaly != nil {
			a.logger.Warn("配置状态异常", zap.Error(st.Anomaly))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n",
			conf.ID, conf.Title, conf.Solver, st.Status,
			len(st.Solutions.All), planning.TotalDuration(st.Solutions.All))
	}
	return tw.Flush()
}

func (a *app) burden(ctx context.Context, id int64) error {
	burdens, err := a.client.Burdens(ctx, id)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFESSOR\tROLE\tSUPERVISOR\tCOUNTER")
	for _, b := range burdens {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", b.Professor.FullName(), b.Professor.Role, b.AsSupervisor, b.AsCounterSupervisor)
	}
	return tw.Flush()
}

func (a *app) solve(ctx context.Context, commissionID, configID int64) error {
	res, err := a.client.Solve(ctx, commissionID, configID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "已提交: job=%s version=%s\n", res.JobID, res.VersionHash)
	return nil
}

// watch 轮询配置，状态变为 ended 或 ctx 结束时返回
func (a *app) watch(ctx context.Context, commissionID, configID int64) error {
	if !a.interactive() {
		return errors.New("watch 需要在终端中运行")
	}

	ended := make(chan *model.OptimizationConfiguration, 1)
	var last planning.RunStatus
	p := poller.New[*model.OptimizationConfiguration](
		a.client.ConfigurationURL(commissionID, configID),
		a.cfg.Poller.Interval,
		func(conf *model.OptimizationConfiguration) {
			a.sel.Configuration.Replace(conf)
			st := planning.ResolveStatus(conf)
			if st.Status != last {
				last = st.Status
				fmt.Fprintf(a.out, "%s: %s\n", conf.Title, st.Status)
			}
			if st.Status == planning.StatusEnded {
				select {
				case ended <- conf:
				default:
				}
			}
		},
		func(err error) {
			fmt.Fprintf(a.out, "轮询失败: %v\n", err)
		},
		poller.WithHTTPClient[*model.OptimizationConfiguration](a.client.HTTPClient(), a.client.Token()),
		poller.WithEnvironment[*model.OptimizationConfiguration](a.interactive),
		poller.WithImmediate[*model.OptimizationConfiguration](),
		poller.WithLogger[*model.OptimizationConfiguration](applogger.Component(a.logger, "poller")),
	)
	p.Start(ctx)
	defer p.Stop()

	select {
	case <-ctx.Done():
		return nil
	case conf := <-ended:
		p.Stop()
		a.printResult(conf)
		return nil
	}
}

func (a *app) printResult(conf *model.OptimizationConfiguration) {
	if n := len(conf.ExecutionDetails); n > 0 {
		last := conf.ExecutionDetails[n-1]
		if !last.Success && last.ErrorMessage != nil {
			fmt.Fprintf(a.out, "求解失败: %s\n", *last.ErrorMessage)
			return
		}
	}
	parts := planning.PartitionSolutions(conf.SolutionCommissions)
	fmt.Fprintf(a.out, "上午 %d 场，下午 %d 场，总时长 %d 分钟\n",
		len(parts.Morning), len(parts.Afternoon), planning.TotalDuration(parts.All))
}

func (a *app) token(subject string) error {
	if !a.cfg.Auth.Enabled {
		return errors.New("未启用认证（auth.enabled=false）")
	}
	tok, err := jwt.NewManager(&a.cfg.Auth).GenerateAccessToken(subject, "staff")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tok)
	return nil
}
