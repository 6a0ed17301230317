package solver

import (
	"fmt"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// BuildSlots 将求解结果转为答辩场次
//
// 时长为场内学生答辩时长之和，时长为 0 的场次丢弃；
// Order 先按上午场连续编号，下午场从上午场数量开始接续
func BuildSlots(conf *model.OptimizationConfiguration, entries []model.CommissionEntry, sessions []Session, versionHash string) ([]model.SolutionSlot, error) {
	byStudent := make(map[int64]model.CommissionEntry, len(entries))
	for _, e := range entries {
		byStudent[e.CandidateID] = e
	}

	morningCount := conf.MaxCommissionsMorning
	total := morningCount + conf.MaxCommissionsAfternoon

	bySession := make(map[int]Session, len(sessions))
	for _, s := range sessions {
		if s.Index < 0 || s.Index >= total {
			return nil, fmt.Errorf("场次编号 %d 超出范围 [0, %d)", s.Index, total)
		}
		bySession[s.Index] = s
	}

	extract := func(from, to int, morning bool, offset int) ([]model.SolutionSlot, error) {
		var used []model.SolutionSlot
		for idx := from; idx < to; idx++ {
			s, ok := bySession[idx]
			if !ok {
				continue
			}
			slot := model.SolutionSlot{
				Morning:      morning,
				CommissionID: conf.CommissionID,
				OptConfigID:  conf.ID,
				VersionHash:  versionHash,
			}
			for _, sid := range s.Students {
				e, ok := byStudent[sid]
				if !ok {
					return nil, fmt.Errorf("场次 %d 中的学生 %d 不属于该委员会", idx, sid)
				}
				slot.Duration += e.Duration()
				slot.Students = append(slot.Students, model.Student{ID: sid})
			}
			if slot.Duration == 0 {
				continue
			}
			for _, pid := range s.Professors {
				slot.Professors = append(slot.Professors, model.Professor{ID: pid})
			}
			slot.Order = offset + len(used)
			used = append(used, slot)
		}
		return used, nil
	}

	morning, err := extract(0, morningCount, true, 0)
	if err != nil {
		return nil, err
	}
	afternoon, err := extract(morningCount, total, false, len(morning))
	if err != nil {
		return nil, err
	}
	return append(morning, afternoon...), nil
}
