package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"condominio/backend/config"
	"condominio/backend/internal/model"
	"condominio/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestExportService(maxRows int) (ExportService, *mockAttendanceListRepo, *mockAttendanceRecordRepo) {
	listRepo := newMockAttendanceListRepo()
	recordRepo := newMockAttendanceRecordRepo()

	repo := &repository.Repository{
		AttendanceList:   listRepo,
		AttendanceRecord: recordRepo,
		Proxy:            newMockProxyRepo(),
	}
	cfg := &config.Config{Export: config.ExportConfig{MaxRows: maxRows}}

	svc := NewExportService(cfg, repo, zap.NewNop())
	return svc, listRepo, recordRepo
}

func seedExportList(listRepo *mockAttendanceListRepo, recordRepo *mockAttendanceRecordRepo, records int) {
	listRepo.lists["list-1"] = &model.AttendanceList{
		AttendanceListID: "list-1",
		BusinessID:       "biz-1",
		Title:            "Asamblea Ordinaria",
		IsActive:         true,
	}
	for i := 0; i < records; i++ {
		uid := unitID(i)
		recordRepo.units[uid] = &model.PropertyUnit{
			PropertyUnitID:       uid,
			UnitNumber:           unitNumber(i),
			OwnershipCoefficient: 0.5,
		}
		recordRepo.records["rec-"+uid] = &model.AttendanceRecord{
			AttendanceRecordID: "rec-" + uid,
			AttendanceListID:   "list-1",
			PropertyUnitID:     uid,
			AttendedAsOwner:    i == 0,
			IsValid:            true,
		}
	}
}

// ── ExportRoster 测试 ──

func TestExportService_ExportRoster_NotFound(t *testing.T) {
	svc, _, _ := setupTestExportService(1000)

	_, _, err := svc.ExportRoster(context.Background(), "list-missing")
	if !errors.Is(err, ErrAttendanceListNotFound) {
		t.Errorf("期望 ErrAttendanceListNotFound，实际: %v", err)
	}
}

func TestExportService_ExportRoster_Success(t *testing.T) {
	svc, listRepo, recordRepo := setupTestExportService(1000)
	seedExportList(listRepo, recordRepo, 2)

	buf, filename, err := svc.ExportRoster(context.Background(), "list-1")
	if err != nil {
		t.Fatalf("ExportRoster 应成功: %v", err)
	}
	if !strings.HasPrefix(filename, "asistencia_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名格式错误: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Asistencia")
	if err != nil {
		t.Fatalf("读取 Asistencia Sheet 失败: %v", err)
	}
	// 标题行 + 表头 + 2 条数据
	if len(rows) != 4 {
		t.Fatalf("期望4行，实际=%d", len(rows))
	}
	if rows[2][0] != "101" {
		t.Errorf("第一条数据应为单元101，实际=%s", rows[2][0])
	}
	if rows[2][2] != "Sí" {
		t.Errorf("出席单元 Propietario 列应为 Sí，实际=%s", rows[2][2])
	}
	if rows[3][2] != "No" {
		t.Errorf("缺席单元 Propietario 列应为 No，实际=%s", rows[3][2])
	}
}

func TestExportService_ExportRoster_TooManyRows(t *testing.T) {
	svc, listRepo, recordRepo := setupTestExportService(1)
	seedExportList(listRepo, recordRepo, 2)

	_, _, err := svc.ExportRoster(context.Background(), "list-1")
	if !errors.Is(err, ErrExportTooManyRows) {
		t.Errorf("期望 ErrExportTooManyRows，实际: %v", err)
	}
}

// ── ExportDetailed 测试 ──

func TestExportService_ExportDetailed_HasSummarySheet(t *testing.T) {
	svc, listRepo, recordRepo := setupTestExportService(1000)
	seedExportList(listRepo, recordRepo, 2)

	buf, filename, err := svc.ExportDetailed(context.Background(), "list-1")
	if err != nil {
		t.Fatalf("ExportDetailed 应成功: %v", err)
	}
	if !strings.HasPrefix(filename, "asistencia_detalle_") {
		t.Errorf("文件名格式错误: %s", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Resumen")
	if err != nil {
		t.Fatalf("读取 Resumen Sheet 失败: %v", err)
	}
	if len(rows) != 9 {
		t.Fatalf("统计 Sheet 期望9行，实际=%d", len(rows))
	}
	if rows[0][0] != "Total unidades" || rows[0][1] != "2" {
		t.Errorf("Total unidades 行错误: %v", rows[0])
	}
	// 1/2 出席 → 50%
	if rows[5][1] != "50" {
		t.Errorf("期望出席率50，实际=%s", rows[5][1])
	}
}

// ── Calendar 测试 ──

func setupTestCalendarService() (CalendarService, *mockAttendanceListRepo) {
	listRepo := newMockAttendanceListRepo()
	repo := &repository.Repository{
		AttendanceList:   listRepo,
		AttendanceRecord: newMockAttendanceRecordRepo(),
		Proxy:            newMockProxyRepo(),
	}
	svc := NewCalendarService(&config.Config{}, repo, zap.NewNop())
	return svc, listRepo
}

func TestCalendarService_Feed(t *testing.T) {
	svc, listRepo := setupTestCalendarService()

	meetingDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	listRepo.lists["list-1"] = &model.AttendanceList{
		AttendanceListID: "list-1",
		BusinessID:       "biz-1",
		Title:            "Asamblea Ordinaria",
		MeetingDate:      &meetingDate,
		IsActive:         true,
	}
	// 无大会日期与未激活的名册不进日历
	listRepo.lists["list-2"] = &model.AttendanceList{
		AttendanceListID: "list-2",
		BusinessID:       "biz-1",
		Title:            "Sin fecha",
		IsActive:         true,
	}
	listRepo.lists["list-3"] = &model.AttendanceList{
		AttendanceListID: "list-3",
		BusinessID:       "biz-1",
		Title:            "Cerrada",
		MeetingDate:      &meetingDate,
		IsActive:         false,
	}

	feed, err := svc.Feed(context.Background(), "biz-1")
	if err != nil {
		t.Fatalf("Feed 应成功: %v", err)
	}

	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "END:VCALENDAR") {
		t.Error("输出应为 iCalendar 格式")
	}
	if strings.Count(feed, "BEGIN:VEVENT") != 1 {
		t.Errorf("期望恰好1个事件，实际=%d", strings.Count(feed, "BEGIN:VEVENT"))
	}
	if !strings.Contains(feed, "list-1@condominio") {
		t.Error("事件 UID 应由名册 ID 派生")
	}
	if !strings.Contains(feed, "SUMMARY:Asamblea Ordinaria") {
		t.Error("事件摘要应为名册标题")
	}
}

func TestCalendarService_Feed_Empty(t *testing.T) {
	svc, _ := setupTestCalendarService()

	feed, err := svc.Feed(context.Background(), "biz-1")
	if err != nil {
		t.Fatalf("Feed 应成功: %v", err)
	}
	if strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("无名册时不应有事件")
	}
}
