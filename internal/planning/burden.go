// Package planning 包含答辩排程的纯函数核心：教授负担统计、运行状态判定与结果分组。
// 所有函数只读取传入的快照，不持有状态，可在任意 goroutine 中重复调用。
package planning

import (
	"sort"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// ProfessorBurden 教授在某委员会中的负担
type ProfessorBurden struct {
	Professor           model.Professor `json:"professor"`
	AsSupervisor        int             `json:"as_supervisor"`
	AsCounterSupervisor int             `json:"as_counter_supervisor"`
}

// Burden 统计 p 在 entries 中担任导师与评阅人的次数
// 按 ID 比较；评阅人为空的条目不计入
func Burden(entries []model.CommissionEntry, p model.Professor) (asSupervisor, asCounter int) {
	for _, e := range entries {
		if e.SupervisorKey() == p.ID {
			asSupervisor++
		}
		if id, ok := e.CounterSupervisorKey(); ok && id == p.ID {
			asCounter++
		}
	}
	return asSupervisor, asCounter
}

// BurdenOf 统计 p 在委员会 c 中的负担；c 为 nil 时为 (0, 0)
func BurdenOf(c *model.Commission, p model.Professor) ProfessorBurden {
	b := ProfessorBurden{Professor: p}
	if c == nil {
		return b
	}
	b.AsSupervisor, b.AsCounterSupervisor = Burden(c.Entries, p)
	return b
}

// Burdens 委员会中出现过的每位教授（任意角色）的负担，按姓、名排序
func Burdens(c *model.Commission) []ProfessorBurden {
	if c == nil {
		return []ProfessorBurden{}
	}
	seen := make(map[int64]model.Professor)
	add := func(p *model.Professor) {
		if p != nil {
			seen[p.ID] = *p
		}
	}
	for i := range c.Entries {
		add(c.Entries[i].Supervisor)
		add(c.Entries[i].SupervisorAssistant)
		add(c.Entries[i].CounterSupervisor)
	}

	out := make([]ProfessorBurden, 0, len(seen))
	for _, p := range seen {
		out = append(out, BurdenOf(c, p))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Professor, out[j].Professor
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}
