package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// Invocation 一次外部求解调用的输入
type Invocation struct {
	Solver       model.Solver
	Model        Model
	Dir          string
	DatPath      string
	RosterPath   string
	SolutionPath string
	Options      map[string]string
}

// 求解器终止状态
const (
	StatusOK = "ok"

	TerminationOptimal   = "optimal"
	TerminationTimeLimit = "maxTimeLimit"
)

// Session solution.json 中的一场答辩；Index 为 cfg.dat 中的场次编号
type Session struct {
	Index      int     `json:"index"`
	Professors []int64 `json:"professors"`
	Students   []int64 `json:"students"`
}

// Outcome 适配器写入 solution.json 的结果
type Outcome struct {
	Status      string    `json:"status"`
	Termination string    `json:"termination"`
	Sessions    []Session `json:"sessions"`
	Log         string    `json:"-"`
}

// ReachedOptimality 是否达到最优
func (o *Outcome) ReachedOptimality() bool { return o.Termination == TerminationOptimal }

// ReachedTimeLimit 是否因时间限制终止
func (o *Outcome) ReachedTimeLimit() bool { return o.Termination == TerminationTimeLimit }

// Usable 结果是否可用：状态正常且达到最优或时间上限
func (o *Outcome) Usable() bool {
	return o.Status == StatusOK && (o.ReachedOptimality() || o.ReachedTimeLimit())
}

// Executor 执行外部求解
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (*Outcome, error)
}

// CommandExecutor 调用按求解器配置的适配器可执行文件
//
// 适配器约定：
//
//	<exe> --model <min_durata|max_durata> --dat cfg.dat --roster val.xlsx --out solution.json [--option k=v ...]
//
// 标准输出与标准错误作为求解日志保存
type CommandExecutor struct {
	Executables map[string]string
}

// Execute 实现 Executor
func (e *CommandExecutor) Execute(ctx context.Context, inv Invocation) (*Outcome, error) {
	exe, ok := e.Executables[string(inv.Solver)]
	if !ok || exe == "" {
		return nil, fmt.Errorf("未配置求解器 %s 的可执行文件", inv.Solver)
	}

	args := []string{
		"--model", string(inv.Model),
		"--dat", inv.DatPath,
		"--roster", inv.RosterPath,
		"--out", inv.SolutionPath,
	}
	args = append(args, optionArgs(inv.Options)...)

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()
	log := out.String()
	_ = os.WriteFile(filepath.Join(inv.Dir, LogFileName), out.Bytes(), 0o644)

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			runErr = fmt.Errorf("求解超时: %w", runErr)
		}
		return &Outcome{Log: log}, fmt.Errorf("求解器退出异常: %w", runErr)
	}

	outcome, err := ReadOutcome(inv.SolutionPath)
	if err != nil {
		return &Outcome{Log: log}, err
	}
	outcome.Log = log
	return outcome, nil
}

// ReadOutcome 读取 solution.json
func ReadOutcome(path string) (*Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取求解结果失败: %w", err)
	}
	var o Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("解析求解结果失败: %w", err)
	}
	return &o, nil
}
