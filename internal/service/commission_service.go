package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/planning"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
)

// ── 委员会模块业务错误 ──

var (
	ErrCommissionNotFound   = errors.New("委员会不存在")
	ErrUploadInvalidFile    = errors.New("无法读取名册文件")
	ErrUploadMissingColumns = errors.New("名册缺少必需列")
	ErrUploadInvalidRow     = errors.New("名册数据行无效")
	ErrUploadEmpty          = errors.New("名册中没有数据行")
)

// MissingColumnsError 名册缺少的列（大写），errors.Is 可匹配 ErrUploadMissingColumns
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUploadMissingColumns.Error(), strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrUploadMissingColumns }

// RowError 名册第 Row 行（从 1 开始，含表头）数据无效
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("第 %d 行: %s", e.Row, e.Reason)
}

func (e *RowError) Is(target error) bool { return target == ErrUploadInvalidRow }

// 名册列
const (
	colMatricola        = "MATRICOLA"
	colCognome          = "COGNOME"
	colNome             = "NOME"
	colCellulare        = "CELLULARE"
	colEmail            = "EMAIL"
	colEmailAteneo      = "EMAIL_ATENEO"
	colTipoCorso        = "TIPO_CORSO_DESCRIZIONE"
	colRelCognome       = "REL_COGNOME"
	colRelNome          = "REL_NOME"
	colRel2Cognome      = "REL2_COGNOME"
	colRel2Nome         = "REL2_NOME"
	colControrelCognome = "CONTROREL_COGNOME"
	colControrelNome    = "CONTROREL_NOME"
)

// RequiredColumns 名册必需列（不区分大小写）
var RequiredColumns = []string{
	colMatricola, colCognome, colNome, colCellulare, colEmail, colEmailAteneo, colTipoCorso,
	colRelCognome, colRelNome, colRel2Cognome, colRel2Nome, colControrelCognome, colControrelNome,
}

// CommissionService 委员会业务接口
type CommissionService interface {
	List(ctx context.Context) ([]model.Commission, error)
	ListPreviews(ctx context.Context) ([]model.CommissionPreview, error)
	Get(ctx context.Context, id int64) (*model.Commission, error)
	Delete(ctx context.Context, id int64) error
	// Upload 解析名册并创建委员会；title 为空时使用去掉扩展名的文件名
	Upload(ctx context.Context, filename, title string, r io.Reader) (*dto.UploadCommissionResponse, error)
	// Burdens 委员会中每位教授的导师 / 评阅负担
	Burdens(ctx context.Context, id int64) ([]planning.ProfessorBurden, error)
}

type commissionService struct {
	repo   *repository.Repository
	cache  CommissionCache
	logger *zap.Logger
}

// NewCommissionService 创建 CommissionService 实例
func NewCommissionService(repo *repository.Repository, cache CommissionCache, logger *zap.Logger) CommissionService {
	return &commissionService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *commissionService) List(ctx context.Context) ([]model.Commission, error) {
	commissions, err := s.repo.Commission.List(ctx)
	if err != nil {
		s.logger.Error("列出委员会失败", zap.Error(err))
		return nil, err
	}
	if commissions == nil {
		commissions = []model.Commission{}
	}
	return commissions, nil
}

func (s *commissionService) ListPreviews(ctx context.Context) ([]model.CommissionPreview, error) {
	previews, err := s.repo.Commission.ListPreviews(ctx)
	if err != nil {
		s.logger.Error("列出委员会摘要失败", zap.Error(err))
		return nil, err
	}
	if previews == nil {
		previews = []model.CommissionPreview{}
	}
	return previews, nil
}

// ────────────────────── Get ──────────────────────

func (s *commissionService) Get(ctx context.Context, id int64) (*model.Commission, error) {
	if c, ok := s.cache.Get(ctx, id); ok {
		return c, nil
	}

	commission, err := s.repo.Commission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		s.logger.Error("查询委员会失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	s.cache.Set(ctx, commission)
	return commission, nil
}

// ────────────────────── Delete ──────────────────────

func (s *commissionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Commission.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommissionNotFound
		}
		s.logger.Error("删除委员会失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	s.cache.Evict(ctx, id)
	s.logger.Info("委员会已删除", zap.Int64("id", id))
	return nil
}

// ────────────────────── Burdens ──────────────────────

func (s *commissionService) Burdens(ctx context.Context, id int64) ([]planning.ProfessorBurden, error) {
	commission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return planning.Burdens(commission), nil
}

// ────────────────────── Upload ──────────────────────

// rosterRow 名册中的一行
type rosterRow struct {
	line       int
	student    model.Student
	degree     model.DegreeLevel
	supervisor [2]string // name, surname
	assistant  [2]string
	counter    [2]string
}

func (s *commissionService) Upload(ctx context.Context, filename, title string, r io.Reader) (*dto.UploadCommissionResponse, error) {
	rows, err := parseRoster(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrUploadEmpty
	}

	if strings.TrimSpace(title) == "" {
		title = defaultTitle(filename)
	}
	commission := &model.Commission{Title: strings.TrimSpace(title)}
	professors := make(map[[2]string]*model.Professor)

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Commission.Create(ctx, commission); err != nil {
			return err
		}

		getOrCreate := func(key [2]string) (*model.Professor, error) {
			if p, ok := professors[key]; ok {
				return p, nil
			}
			p, err := tx.Professor.GetOrCreate(ctx, key[0], key[1])
			if err != nil {
				return nil, err
			}
			professors[key] = p
			return p, nil
		}

		entries := make([]model.CommissionEntry, 0, len(rows))
		for _, row := range rows {
			student := row.student
			if err := tx.Commission.CreateStudent(ctx, &student); err != nil {
				return err
			}

			sup, err := getOrCreate(row.supervisor)
			if err != nil {
				return err
			}
			entry := model.CommissionEntry{
				CommissionID: commission.ID,
				CandidateID:  student.ID,
				DegreeLevel:  row.degree,
				SupervisorID: sup.ID,
			}
			if present(row.assistant) {
				p, err := getOrCreate(row.assistant)
				if err != nil {
					return err
				}
				entry.SupervisorAssistantID = &p.ID
			}
			if present(row.counter) {
				p, err := getOrCreate(row.counter)
				if err != nil {
					return err
				}
				entry.CounterSupervisorID = &p.ID
			}
			entries = append(entries, entry)
		}
		return tx.Commission.CreateEntries(ctx, entries)
	})
	if err != nil {
		s.logger.Error("导入名册失败", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	s.logger.Info("名册导入完成",
		zap.Int64("commission_id", commission.ID),
		zap.String("title", commission.Title),
		zap.Int("entries", len(rows)),
		zap.Int("professors", len(professors)),
	)
	return &dto.UploadCommissionResponse{
		ID:         commission.ID,
		Title:      commission.Title,
		Entries:    len(rows),
		Professors: len(professors),
	}, nil
}

// parseRoster 读取第一个工作表；表头不区分大小写
func parseRoster(r io.Reader) ([]rosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadInvalidFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrUploadInvalidFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadInvalidFile, err)
	}
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: append([]string(nil), RequiredColumns...)}
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingColumnsError{Columns: missing}
	}

	out := make([]rosterRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		line := i + 2
		get := func(col string) string {
			idx := index[col]
			if idx >= len(cells) {
				return ""
			}
			return cleanCell(cells[idx])
		}
		if blankRow(cells) {
			continue
		}

		matricola, err := parseMatricola(get(colMatricola))
		if err != nil {
			return nil, &RowError{Row: line, Reason: fmt.Sprintf("MATRICOLA 无效: %v", err)}
		}
		row := rosterRow{
			line: line,
			student: model.Student{
				MatriculationNumber: matricola,
				Name:                get(colNome),
				Surname:             get(colCognome),
				PhoneNumber:         get(colCellulare),
				PersonalEmail:       get(colEmail),
				UniversityEmail:     get(colEmailAteneo),
			},
			degree:     degreeOf(get(colTipoCorso)),
			supervisor: [2]string{get(colRelNome), get(colRelCognome)},
			assistant:  [2]string{get(colRel2Nome), get(colRel2Cognome)},
			counter:    [2]string{get(colControrelNome), get(colControrelCognome)},
		}
		if !present(row.supervisor) {
			return nil, &RowError{Row: line, Reason: "缺少导师（REL_NOME / REL_COGNOME）"}
		}
		out = append(out, row)
	}
	return out, nil
}

// cleanCell 去除空白；"None" 视为空
func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if v == "None" {
		return ""
	}
	return v
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}

// present 姓与名都非空才视为存在
func present(nameSurname [2]string) bool {
	return nameSurname[0] != "" && nameSurname[1] != ""
}

// degreeOf 课程描述包含 "magistrale" 即为硕士
func degreeOf(course string) model.DegreeLevel {
	if strings.Contains(strings.ToLower(course), "magistrale") {
		return model.DegreeMasters
	}
	return model.DegreeBachelors
}

// parseMatricola 兼容数值单元格导出的 "123.0" 形式
func parseMatricola(v string) (int64, error) {
	if v == "" {
		return 0, errors.New("为空")
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("%q 不是整数", v)
	}
	return int64(f), nil
}

// defaultTitle 去掉文件名中的表格扩展名（不区分大小写）
func defaultTitle(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if strings.EqualFold(ext, ".xlsx") || strings.EqualFold(ext, ".xls") {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
