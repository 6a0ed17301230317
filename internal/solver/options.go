package solver

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// Model 求解模型
type Model string

const (
	// ModelMinDuration 线上模式：在人数约束下最小化时长
	ModelMinDuration Model = "min_durata"
	// ModelMaxDuration 线下模式：在时长约束下安排全部学生
	ModelMaxDuration Model = "max_durata"
)

// ModelFor 按配置选择模型
func ModelFor(conf *model.OptimizationConfiguration) Model {
	if conf.Online {
		return ModelMinDuration
	}
	return ModelMaxDuration
}

// Options 各求解器的时间限制与 gap 参数名不同
func Options(s model.Solver, timeLimit int, gap float64) (map[string]string, error) {
	limit := strconv.Itoa(timeLimit)
	g := strconv.FormatFloat(gap, 'g', -1, 64)

	switch s {
	case model.SolverCPLEX:
		return map[string]string{"timelimit": limit, "mip_tolerances_mipgap": g}, nil
	case model.SolverGLPK:
		return map[string]string{"tmlim": limit, "mipgap": g}, nil
	case model.SolverGurobi:
		return map[string]string{"TimeLimit": limit, "MIPGap": g}, nil
	}
	return nil, fmt.Errorf("未知求解器 %q", string(s))
}

// optionArgs 将参数转为稳定顺序的命令行参数
func optionArgs(opts map[string]string) []string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "--option", k+"="+opts[k])
	}
	return args
}
