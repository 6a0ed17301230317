package solver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
)

// 求解目录中的文件名
const (
	DatFileName      = "cfg.dat"
	RosterFileName   = "val.xlsx"
	SolutionFileName = "solution.json"
	LogFileName      = "solver.log"

	rosterSheet = "Tesisti"
)

// ── cfg.dat ──

// WriteDatFile 写入求解参数文件
//
// 上午场编号 0..M-1，下午场编号 M..M+A-1；线上模式额外写入人数上下限
func WriteDatFile(dir string, conf *model.OptimizationConfiguration) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建求解目录失败: %w", err)
	}

	rosterPath, err := filepath.Abs(filepath.Join(dir, RosterFileName))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "param max_durata := %d;\n", conf.MaxDuration)
	fmt.Fprintf(&b, "set commissioni_mattina := %s;\n", indexRange(0, conf.MaxCommissionsMorning))
	fmt.Fprintf(&b, "set commissioni_pomeriggio := %s;\n",
		indexRange(conf.MaxCommissionsMorning, conf.MaxCommissionsAfternoon))
	fmt.Fprintf(&b, "param excel_path := %q;\n", rosterPath)

	if conf.Online {
		if conf.MinProfessorNumber == nil || conf.MinProfessorNumberMasters == nil || conf.MaxProfessorNumber == nil {
			return "", fmt.Errorf("线上模式缺少教授人数上下限")
		}
		fmt.Fprintf(&b, "param minDocenti := %d;\n", *conf.MinProfessorNumber)
		fmt.Fprintf(&b, "param minDocentiMag := %d;\n", *conf.MinProfessorNumberMasters)
		fmt.Fprintf(&b, "param max_doc := %d;\n", *conf.MaxProfessorNumber)
	}

	path := filepath.Join(dir, DatFileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("写入 %s 失败: %w", DatFileName, err)
	}
	return path, nil
}

// indexRange 从 start 开始的 n 个连续编号，空格分隔
func indexRange(start, n int) string {
	parts := make([]string, 0, n)
	for i := start; i < start+n; i++ {
		parts = append(parts, fmt.Sprint(i))
	}
	return strings.Join(parts, " ")
}

// ── val.xlsx ──

var rosterHeader = []interface{}{
	"ID_Studente", "Cognome", "Nome", "Durata",
	"ID_Relatore", "Relatore", "Ruolo", "Mattina", "Pomeriggio",
	"ID_Controrelatore", "Controrelatore", "Ruolo", "Mattina", "Pomeriggio",
}

// WriteRoster 写入求解器读取的名册表
// 导师或评阅人职级未设置时返回错误，不生成文件
func WriteRoster(dir string, entries []model.CommissionEntry) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	if err := f.SetSheetRow(rosterSheet, "A1", &rosterHeader); err != nil {
		return "", err
	}

	for i, e := range entries {
		row, err := rosterRow(e)
		if err != nil {
			return "", err
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(rosterSheet, start, &row); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建求解目录失败: %w", err)
	}
	path := filepath.Join(dir, RosterFileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("写入 %s 失败: %w", RosterFileName, err)
	}
	return path, nil
}

func rosterRow(e model.CommissionEntry) ([]interface{}, error) {
	if e.Candidate == nil || e.Supervisor == nil {
		return nil, fmt.Errorf("条目 %d 缺少学生或导师信息", e.ID)
	}
	row := []interface{}{e.Candidate.ID, e.Candidate.Surname, e.Candidate.Name, e.Duration()}

	sup, err := professorCells(e.Supervisor)
	if err != nil {
		return nil, err
	}
	row = append(row, sup...)

	if e.CounterSupervisor != nil {
		counter, err := professorCells(e.CounterSupervisor)
		if err != nil {
			return nil, err
		}
		row = append(row, counter...)
	}
	return row, nil
}

func professorCells(p *model.Professor) ([]interface{}, error) {
	abbr, err := p.Role.Abbr()
	if err != nil {
		return nil, fmt.Errorf("教授 %s: %w", p.FullName(), err)
	}
	avail := p.EffectiveAvailability()
	return []interface{}{p.ID, p.FullName(), abbr, yesNo(avail.InMorning()), yesNo(avail.InAfternoon())}, nil
}

func yesNo(v bool) string {
	if v {
		return "SI"
	}
	return "NO"
}
