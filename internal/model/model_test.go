package model

import (
	"testing"

	apperrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestValidate_OnlineBounds(t *testing.T) {
	tests := []struct {
		name      string
		min       *int
		minMaster *int
		max       *int
		wantField string
	}{
		{"全部为空", nil, nil, nil, "min_professor_number"},
		{"缺少硕士下限", intPtr(3), nil, intPtr(5), "min_professor_number_masters"},
		{"缺少上限", intPtr(3), intPtr(3), nil, "max_professor_number"},
		{"下限大于上限", intPtr(6), intPtr(3), intPtr(5), "min_professor_number"},
		{"硕士下限大于上限", intPtr(3), intPtr(6), intPtr(5), "min_professor_number_masters"},
		{"下限为 0", intPtr(0), intPtr(3), intPtr(5), "min_professor_number"},
		{"合法", intPtr(3), intPtr(5), intPtr(5), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOptimizationConfiguration(1, "prova")
			c.Online = true
			c.MinProfessorNumber = tt.min
			c.MinProfessorNumberMasters = tt.minMaster
			c.MaxProfessorNumber = tt.max

			err := c.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("期望通过，实际错误: %v", err)
				}
				return
			}
			ve, ok := apperrors.AsValidation(err)
			if !ok {
				t.Fatalf("期望 ValidationError，实际: %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("期望失败字段 %s，实际=%s", tt.wantField, ve.Field)
			}
		})
	}
}

func TestValidate_OfflineIgnoresBounds(t *testing.T) {
	c := NewOptimizationConfiguration(1, "prova")
	c.MinProfessorNumber = intPtr(9)
	c.MaxProfessorNumber = intPtr(1)
	if err := c.Validate(); err != nil {
		t.Errorf("线下模式不应校验人数上下限: %v", err)
	}
}

func TestValidate_Tunables(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *OptimizationConfiguration)
		wantField string
	}{
		{"空标题", func(c *OptimizationConfiguration) { c.Title = "" }, "title"},
		{"时间限制过短", func(c *OptimizationConfiguration) { c.OptimizationTimeLimit = 59 }, "optimization_time_limit"},
		{"gap 等于 1", func(c *OptimizationConfiguration) { c.OptimizationGap = 1 }, "optimization_gap"},
		{"gap 为负", func(c *OptimizationConfiguration) { c.OptimizationGap = -0.1 }, "optimization_gap"},
		{"未知求解器", func(c *OptimizationConfiguration) { c.Solver = "scip" }, "solver"},
		{"负时长", func(c *OptimizationConfiguration) { c.MaxDuration = -1 }, "max_duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOptimizationConfiguration(1, "prova")
			tt.mutate(c)
			ve, ok := apperrors.AsValidation(c.Validate())
			if !ok {
				t.Fatal("期望 ValidationError")
			}
			if ve.Field != tt.wantField {
				t.Errorf("期望失败字段 %s，实际=%s", tt.wantField, ve.Field)
			}
		})
	}
}

func TestNewOptimizationConfiguration_Defaults(t *testing.T) {
	c := NewOptimizationConfiguration(4, "Nuova configurazione 1")
	if c.MaxDuration != 210 || c.MaxCommissionsMorning != 6 || c.MaxCommissionsAfternoon != 6 {
		t.Errorf("默认时长/场次不符: %+v", c)
	}
	if c.Solver != SolverCPLEX {
		t.Errorf("默认求解器应为 cplex，实际=%s", c.Solver)
	}
	if c.Online || c.RunLock {
		t.Error("新配置应为线下且未加锁")
	}
}

func TestEntryDuration(t *testing.T) {
	counter := &Professor{ID: 9}
	tests := []struct {
		name  string
		entry CommissionEntry
		want  int
	}{
		{"本科", CommissionEntry{DegreeLevel: DegreeBachelors, CounterSupervisor: counter}, 15},
		{"硕士无评阅人", CommissionEntry{DegreeLevel: DegreeMasters}, 20},
		{"硕士有评阅人", CommissionEntry{DegreeLevel: DegreeMasters, CounterSupervisor: counter}, 30},
	}
	for _, tt := range tests {
		if got := tt.entry.Duration(); got != tt.want {
			t.Errorf("%s: 期望 %d，实际=%d", tt.name, tt.want, got)
		}
	}
}

func TestProfessorSameAs_ByID(t *testing.T) {
	a := &Professor{ID: 1, Name: "Mario", Surname: "Rossi"}
	b := &Professor{ID: 1, Name: "Mario", Surname: "Rossi"}
	c := &Professor{ID: 2, Name: "Mario", Surname: "Rossi"}

	if !a.SameAs(b) {
		t.Error("相同 ID 的不同实例应视为同一教授")
	}
	if a.SameAs(c) {
		t.Error("不同 ID 不应视为同一教授")
	}
	var none *Professor
	if none.SameAs(a) || a.SameAs(nil) {
		t.Error("nil 不应与任何教授相同")
	}
}

func TestEnums(t *testing.T) {
	if s, err := ParseSolver(" GLPK "); err != nil || s != SolverGLPK {
		t.Errorf("ParseSolver 应大小写不敏感: %v %v", s, err)
	}
	if _, err := ParseSolver("scip"); err == nil {
		t.Error("未知求解器应报错")
	}
	if _, err := RoleUnspecified.Abbr(); err == nil {
		t.Error("未设置职级无法生成缩写")
	}
	if abbr, _ := RoleResearcher.Abbr(); abbr != "RIC" {
		t.Errorf("研究员缩写应为 RIC，实际=%s", abbr)
	}
	if !AvailableAlways.InMorning() || !AvailableAlways.InAfternoon() {
		t.Error("always 应上下午均可")
	}
	if AvailableMorning.InAfternoon() || AvailableAfternoon.InMorning() {
		t.Error("单时段出席不应覆盖另一时段")
	}
}
