package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSolution   = errors.New("该配置尚无求解结果")
	ErrExportInvalidDate  = errors.New("日期或时间格式错误")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 日历导出默认时间
const (
	defaultMorningStart   = "09:00"
	defaultAfternoonStart = "14:00"
	icsProductID          = "-//ottimizzatore-lauree//sessioni di laurea//IT"
)

// ExportService 求解结果导出
//
// 两种格式都以内存缓冲返回，由 Handler 设置响应头后写出：
//   - xlsx：一行一场答辩，按上午/下午与序号排列
//   - ics：指定日期的日程，上午场次从 start（默认 09:00）起依次排列，下午从 14:00 起
type ExportService interface {
	ExportXLSX(ctx context.Context, commissionID, configID int64) (*bytes.Buffer, string, error)
	ExportICS(ctx context.Context, commissionID, configID int64, req *dto.ExportICSRequest) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// loadSolved 读取配置，按 order 排序后按时段分组
func (s *exportService) loadSolved(ctx context.Context, commissionID, configID int64) (*model.OptimizationConfiguration, planning.SolutionPartition, error) {
	conf, err := s.repo.Configuration.GetByID(ctx, commissionID, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, planning.SolutionPartition{}, ErrConfigurationNotFound
		}
		s.logger.Error("查询配置失败", zap.Int64("id", configID), zap.Error(err))
		return nil, planning.SolutionPartition{}, err
	}
	if !conf.HasSolutions() {
		return nil, planning.SolutionPartition{}, ErrExportNoSolution
	}
	slots := append([]model.SolutionSlot(nil), conf.SolutionCommissions...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Order < slots[j].Order })
	return conf, planning.PartitionSolutions(slots), nil
}

func exportFilename(conf *model.OptimizationConfiguration, ext string) string {
	title := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, conf.Title)
	return fmt.Sprintf("%s.%s", strings.TrimSpace(title), ext)
}

func professorNames(slot model.SolutionSlot) string {
	names := make([]string, 0, len(slot.Professors))
	for _, p := range slot.Professors {
		names = append(names, p.FullName())
	}
	return strings.Join(names, ", ")
}

func studentNames(slot model.SolutionSlot) string {
	names := make([]string, 0, len(slot.Students))
	for _, st := range slot.Students {
		names = append(names, fmt.Sprintf("%s %s (%d)", st.Surname, st.Name, st.MatriculationNumber))
	}
	return strings.Join(names, ", ")
}

func sessionLabel(morning bool) string {
	if morning {
		return "Mattina"
	}
	return "Pomeriggio"
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX
// ═══════════════════════════════════════════════════════════
//
// 表头：| Ordine | Sessione | Durata (min) | Docenti | Candidati |
// 末行为总时长

func (s *exportService) ExportXLSX(ctx context.Context, commissionID, configID int64) (*bytes.Buffer, string, error) {
	conf, parts, err := s.loadSolved(ctx, commissionID, configID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Commissioni"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	headers := []string{"Ordine", "Sessione", "Durata (min)", "Docenti", "Candidati"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetCellStyle(sheetName, "A1", "E1", headerStyle)

	row := 2
	for _, slot := range parts.All {
		values := []interface{}{slot.Order + 1, sessionLabel(slot.Morning), slot.Duration, professorNames(slot), studentNames(slot)}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
		row++
	}
	if row > 2 {
		end, _ := excelize.CoordinatesToCellName(5, row-1)
		f.SetCellStyle(sheetName, "D2", end, wrapStyle)
	}

	totalLabel, _ := excelize.CoordinatesToCellName(2, row)
	totalValue, _ := excelize.CoordinatesToCellName(3, row)
	f.SetCellValue(sheetName, totalLabel, "Totale")
	f.SetCellValue(sheetName, totalValue, planning.TotalDuration(parts.All))

	f.SetColWidth(sheetName, "A", "C", 14)
	f.SetColWidth(sheetName, "D", "E", 60)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Int64("config_id", configID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出求解结果",
		zap.Int64("config_id", conf.ID),
		zap.Int("slots", len(parts.All)),
		zap.String("format", "xlsx"),
	)
	return &buf, exportFilename(conf, "xlsx"), nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(ctx context.Context, commissionID, configID int64, req *dto.ExportICSRequest) ([]byte, string, error) {
	morningStart, afternoonStart, err := sessionStarts(req.Date, req.Start)
	if err != nil {
		return nil, "", err
	}

	conf, parts, err := s.loadSolved(ctx, commissionID, configID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := time.Now().UTC()
	addSession := func(slots []model.SolutionSlot, start time.Time) {
		at := start
		for _, slot := range slots {
			end := at.Add(time.Duration(slot.Duration) * time.Minute)
			event := cal.AddEvent(fmt.Sprintf("slot-%d@ottimizzatore-lauree", slot.ID))
			event.SetDtStampTime(stamp)
			event.SetStartAt(at)
			event.SetEndAt(end)
			event.SetSummary(fmt.Sprintf("%s - Commissione %d (%s)", conf.Title, slot.Order+1, sessionLabel(slot.Morning)))
			event.SetDescription(fmt.Sprintf("Docenti: %s\nCandidati: %s", professorNames(slot), studentNames(slot)))
			if req.Location != "" {
				event.SetLocation(req.Location)
			}
			at = end
		}
	}
	addSession(parts.Morning, morningStart)
	addSession(parts.Afternoon, afternoonStart)

	s.logger.Info("导出求解结果",
		zap.Int64("config_id", conf.ID),
		zap.Int("slots", len(parts.All)),
		zap.String("format", "ics"),
	)
	return []byte(cal.Serialize()), exportFilename(conf, "ics"), nil
}

// sessionStarts 解析日期与上午开始时间，返回上午与下午的开始时刻
func sessionStarts(date, start string) (time.Time, time.Time, error) {
	if start == "" {
		start = defaultMorningStart
	}
	morning, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, ErrExportInvalidDate
	}
	afternoon, err := time.ParseInLocation("2006-01-02 15:04", date+" "+defaultAfternoonStart, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, ErrExportInvalidDate
	}
	return morning, afternoon, nil
}
