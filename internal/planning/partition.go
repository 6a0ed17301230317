package planning

import "github.com/stefa168/ottimizzatore-lauree/internal/model"

// SolutionPartition 按上午/下午分组的求解结果，组内保持原顺序
type SolutionPartition struct {
	All       []model.SolutionSlot `json:"all"`
	Morning   []model.SolutionSlot `json:"morning"`
	Afternoon []model.SolutionSlot `json:"afternoon"`
}

// PartitionSolutions 稳定分组；返回的切片均非 nil
func PartitionSolutions(slots []model.SolutionSlot) SolutionPartition {
	p := SolutionPartition{
		All:       make([]model.SolutionSlot, len(slots)),
		Morning:   make([]model.SolutionSlot, 0, len(slots)),
		Afternoon: make([]model.SolutionSlot, 0, len(slots)),
	}
	copy(p.All, slots)
	for _, s := range slots {
		if s.Morning {
			p.Morning = append(p.Morning, s)
		} else {
			p.Afternoon = append(p.Afternoon, s)
		}
	}
	return p
}

// TotalDuration 一组答辩的总时长（分钟）
func TotalDuration(slots []model.SolutionSlot) int {
	total := 0
	for _, s := range slots {
		total += s.Duration
	}
	return total
}
