package model

import (
	"fmt"
	"strings"
)

// ── 封闭枚举 ──
// 所有枚举均为有限取值，消费处使用穷举 switch；未知值在解析阶段即被拒绝。

// DegreeLevel 学位层次
type DegreeLevel string

const (
	DegreeBachelors DegreeLevel = "bachelors"
	DegreeMasters   DegreeLevel = "masters"
)

// Valid 是否为合法取值
func (d DegreeLevel) Valid() bool {
	switch d {
	case DegreeBachelors, DegreeMasters:
		return true
	}
	return false
}

// UniversityRole 教授职级
type UniversityRole string

const (
	RoleOrdinary    UniversityRole = "ordinary"
	RoleAssociate   UniversityRole = "associate"
	RoleResearcher  UniversityRole = "researcher"
	RoleUnspecified UniversityRole = "unspecified"
)

// Valid 是否为合法取值
func (r UniversityRole) Valid() bool {
	switch r {
	case RoleOrdinary, RoleAssociate, RoleResearcher, RoleUnspecified:
		return true
	}
	return false
}

// Abbr 求解器输入中使用的职级缩写（PO / PA / RIC）
// 职级未设置时无法生成求解输入，返回错误
func (r UniversityRole) Abbr() (string, error) {
	switch r {
	case RoleOrdinary:
		return "PO", nil
	case RoleAssociate:
		return "PA", nil
	case RoleResearcher:
		return "RIC", nil
	case RoleUnspecified:
		return "", fmt.Errorf("职级未设置")
	}
	return "", fmt.Errorf("未知职级 %q", string(r))
}

// ParseUniversityRole 解析职级
func ParseUniversityRole(s string) (UniversityRole, error) {
	r := UniversityRole(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("未知职级 %q", s)
	}
	return r, nil
}

// TimeAvailability 教授可出席时段
type TimeAvailability string

const (
	AvailableAlways    TimeAvailability = "always"
	AvailableMorning   TimeAvailability = "morning"
	AvailableAfternoon TimeAvailability = "afternoon"
)

// Valid 是否为合法取值
func (a TimeAvailability) Valid() bool {
	switch a {
	case AvailableAlways, AvailableMorning, AvailableAfternoon:
		return true
	}
	return false
}

// InMorning 上午场是否可出席
func (a TimeAvailability) InMorning() bool {
	switch a {
	case AvailableAlways, AvailableMorning:
		return true
	case AvailableAfternoon:
		return false
	}
	return false
}

// InAfternoon 下午场是否可出席
func (a TimeAvailability) InAfternoon() bool {
	switch a {
	case AvailableAlways, AvailableAfternoon:
		return true
	case AvailableMorning:
		return false
	}
	return false
}

// ParseTimeAvailability 解析出席时段
func ParseTimeAvailability(s string) (TimeAvailability, error) {
	a := TimeAvailability(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("未知出席时段 %q", s)
	}
	return a, nil
}

// Solver 外部求解器
type Solver string

const (
	SolverCPLEX  Solver = "cplex"
	SolverGurobi Solver = "gurobi"
	SolverGLPK   Solver = "glpk"
)

// Solvers 全部可选求解器
func Solvers() []Solver {
	return []Solver{SolverCPLEX, SolverGurobi, SolverGLPK}
}

// Valid 是否为合法取值
func (s Solver) Valid() bool {
	switch s {
	case SolverCPLEX, SolverGurobi, SolverGLPK:
		return true
	}
	return false
}

// ParseSolver 解析求解器名称（大小写不敏感）
func ParseSolver(s string) (Solver, error) {
	v := Solver(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("未知求解器 %q", s)
	}
	return v, nil
}
