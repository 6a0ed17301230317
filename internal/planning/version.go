package planning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// VersionHash 标识一次求解输入的内容哈希（SHA-256 十六进制）
// 覆盖配置的全部求解参数与委员会条目；条目按 ID 排序后参与计算
func VersionHash(conf *model.OptimizationConfiguration, entries []model.CommissionEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "config:%d|%d|%d|%d|%t|%s|%s|%s|%s|%d|%g\n",
		conf.ID,
		conf.MaxDuration,
		conf.MaxCommissionsMorning,
		conf.MaxCommissionsAfternoon,
		conf.Online,
		optInt(conf.MinProfessorNumber),
		optInt(conf.MinProfessorNumberMasters),
		optInt(conf.MaxProfessorNumber),
		conf.Solver,
		conf.OptimizationTimeLimit,
		conf.OptimizationGap,
	)

	sorted := make([]model.CommissionEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, e := range sorted {
		counter, hasCounter := e.CounterSupervisorKey()
		assistant, hasAssistant := e.SupervisorAssistantKey()
		fmt.Fprintf(&b, "entry:%d|%d|%s|%d|%s|%s\n",
			e.ID, e.CandidateID, e.DegreeLevel, e.SupervisorKey(),
			optID(assistant, hasAssistant), optID(counter, hasCounter),
		)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func optID(id int64, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprint(id)
}
