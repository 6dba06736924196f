package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"condominio/backend/config"
	"condominio/backend/internal/dto"
	"condominio/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportTooManyRows  = errors.New("名册记录数超出导出上限")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Roster 导出名册全部出席记录（每记录一行：单元号、住户、出席方式、代理姓名）
//   - Detailed 在 Roster 基础上追加统计 Sheet（两种法定人数口径）
//   - 导出是只读批量查询，不加锁，允许与标记操作并发（快照最终一致即可）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出名册为 Excel
	ExportRoster(ctx context.Context, listID string) (*bytes.Buffer, string, error)
	// ExportDetailed 导出名册与统计为 Excel
	ExportDetailed(ctx context.Context, listID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

func (s *exportService) ExportRoster(ctx context.Context, listID string) (*bytes.Buffer, string, error) {
	title, rows, err := s.loadRows(ctx, listID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeRosterSheet(f, title, rows); err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("asistencia_%s.xlsx", title)
	return buf, filename, nil
}

func (s *exportService) ExportDetailed(ctx context.Context, listID string) (*bytes.Buffer, string, error) {
	title, rows, err := s.loadRows(ctx, listID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeRosterSheet(f, title, rows); err != nil {
		return nil, "", err
	}

	// 统计 Sheet：与 Summary 接口同一快照查询与折算逻辑，保证两处口径一致
	summaryRows, err := s.repo.AttendanceRecord.SummaryRows(ctx, listID)
	if err != nil {
		s.logger.Error("查询统计快照失败", zap.String("attendance_list_id", listID), zap.Error(err))
		return nil, "", err
	}
	if err := s.writeSummarySheet(f, summaryFromRows(summaryRows)); err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("asistencia_detalle_%s.xlsx", title)
	return buf, filename, nil
}

// ── 内部辅助方法 ──

// loadRows 读取名册及全量记录（带导出上限保护）
func (s *exportService) loadRows(ctx context.Context, listID string) (string, []repository.RecordRow, error) {
	list, err := s.repo.AttendanceList.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrAttendanceListNotFound
		}
		s.logger.Error("查询出席名册失败", zap.String("id", listID), zap.Error(err))
		return "", nil, err
	}

	rows, err := s.repo.AttendanceRecord.ListAll(ctx, listID, s.cfg.Export.MaxRows+1)
	if err != nil {
		s.logger.Error("查询导出记录失败", zap.String("attendance_list_id", listID), zap.Error(err))
		return "", nil, err
	}
	if len(rows) > s.cfg.Export.MaxRows {
		return "", nil, ErrExportTooManyRows
	}

	return list.Title, rows, nil
}

func (s *exportService) writeRosterSheet(f *excelize.File, title string, rows []repository.RecordRow) error {
	sheetName := "Asistencia"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 28)
	f.SetColWidth(sheetName, "F", "G", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"Unidad", "Residente", "Propietario", "Apoderado", "Nombre apoderado", "Firma", "Válido"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	// 数据行
	row := 3
	for i := range rows {
		r := &rows[i]
		f.SetCellValue(sheetName, cell("A", row), r.UnitNumber)
		f.SetCellValue(sheetName, cell("B", row), derefOr(r.ResidentName, "-"))
		f.SetCellValue(sheetName, cell("C", row), boolMark(r.AttendedAsOwner))
		f.SetCellValue(sheetName, cell("D", row), boolMark(r.AttendedAsProxy))
		f.SetCellValue(sheetName, cell("E", row), derefOr(r.ProxyName, "-"))
		f.SetCellValue(sheetName, cell("F", row), derefOr(r.SignatureMethod, "-"))
		f.SetCellValue(sheetName, cell("G", row), boolMark(r.IsValid))
		row++
	}

	return nil
}

func (s *exportService) writeSummarySheet(f *excelize.File, summary *dto.SummaryResponse) error {
	sheetName := "Resumen"
	if _, err := f.NewSheet(sheetName); err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return ErrExportGenerateFail
	}

	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "B", "B", 14)

	lines := []struct {
		label string
		value interface{}
	}{
		{"Total unidades", summary.TotalUnits},
		{"Unidades presentes", summary.AttendedUnits},
		{"Unidades ausentes", summary.AbsentUnits},
		{"Presentes como propietario", summary.AttendedAsOwner},
		{"Presentes por apoderado", summary.AttendedAsProxy},
		{"Tasa de asistencia (%)", summary.AttendanceRate},
		{"Tasa de ausencia (%)", summary.AbsenceRate},
		{"Asistencia por coeficiente (%)", summary.AttendanceRateByCoef},
		{"Ausencia por coeficiente (%)", summary.AbsenceRateByCoef},
	}

	for i, line := range lines {
		f.SetCellValue(sheetName, cell("A", i+1), line.label)
		f.SetCellValue(sheetName, cell("B", i+1), line.value)
	}

	return nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func boolMark(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
