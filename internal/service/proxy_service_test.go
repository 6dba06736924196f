package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/model"
	"condominio/backend/internal/registry"
	"condominio/backend/internal/repository"
	apperrors "condominio/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestProxyService() (ProxyService, *mockProxyRepo, *mockAttendanceRecordRepo, *mockPropertyUnitRegistry) {
	proxyRepo := newMockProxyRepo()
	recordRepo := newMockAttendanceRecordRepo()
	unitReg := newMockPropertyUnitRegistry()

	unitReg.units["unit-a"] = &model.PropertyUnit{
		PropertyUnitID:       "unit-a",
		BusinessID:           "biz-1",
		UnitNumber:           "101",
		OwnershipCoefficient: 0.5,
	}

	repo := &repository.Repository{
		AttendanceList:   newMockAttendanceListRepo(),
		AttendanceRecord: recordRepo,
		Proxy:            proxyRepo,
	}
	reg := &registry.Registry{
		PropertyUnit: unitReg,
		VotingGroup:  newMockVotingGroupRegistry(),
	}

	svc := NewProxyService(repo, reg, zap.NewNop())
	return svc, proxyRepo, recordRepo, unitReg
}

func createProxyReq(unitID, start string, end *string) *dto.CreateProxyRequest {
	return &dto.CreateProxyRequest{
		BusinessID:     "biz-1",
		PropertyUnitID: unitID,
		ProxyName:      "Carlos Apoderado",
		ProxyType:      model.ProxyTypeExternal,
		StartDate:      start,
		EndDate:        end,
	}
}

// ── Create 测试 ──

func TestProxyService_Create_Success(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	result, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-30")), "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if !result.IsActive {
		t.Error("新建代理应默认激活")
	}
	if result.StartDate != "2026-09-01" {
		t.Errorf("期望StartDate=2026-09-01，实际=%s", result.StartDate)
	}
	if result.EndDate == nil || *result.EndDate != "2026-09-30" {
		t.Error("EndDate 应原样返回")
	}
}

func TestProxyService_Create_OpenEnded(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	result, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", nil), "admin-001")
	if err != nil {
		t.Fatalf("无截止日期的委托应允许创建: %v", err)
	}
	if result.EndDate != nil {
		t.Error("开放式委托 EndDate 应为空")
	}
}

func TestProxyService_Create_DateInvalid(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	// 截止日期早于开始日期
	_, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-30", strPtr("2026-09-01")), "admin-001")
	if !errors.Is(err, ErrProxyDateInvalid) {
		t.Errorf("期望 ErrProxyDateInvalid，实际: %v", err)
	}

	// 日期格式错误
	_, err = svc.Create(context.Background(), createProxyReq("unit-a", "01/09/2026", nil), "admin-001")
	if !errors.Is(err, ErrProxyDateInvalid) {
		t.Errorf("期望 ErrProxyDateInvalid，实际: %v", err)
	}
}

func TestProxyService_Create_UnitMissing(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	_, err := svc.Create(context.Background(), createProxyReq("unit-missing", "2026-09-01", nil), "admin-001")
	if !errors.Is(err, ErrProxyUnitMissing) {
		t.Errorf("期望 ErrProxyUnitMissing，实际: %v", err)
	}
}

func TestProxyService_Create_RegistryUnavailable(t *testing.T) {
	svc, _, _, unitReg := setupTestProxyService()
	unitReg.err = errors.New("connection refused")

	_, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", nil), "admin-001")
	if !errors.Is(err, ErrRegistryUnavailable) {
		t.Errorf("期望 ErrRegistryUnavailable，实际: %v", err)
	}
}

// ── 窗口重叠测试 ──

func TestProxyService_Create_NonOverlapping(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-15")), "admin-001"); err != nil {
		t.Fatalf("第一个委托应成功: %v", err)
	}

	// 紧邻但不相接的窗口
	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-16", strPtr("2026-09-30")), "admin-001"); err != nil {
		t.Fatalf("不重叠的委托应成功: %v", err)
	}
}

func TestProxyService_Create_Overlap(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-15")), "admin-001"); err != nil {
		t.Fatalf("第一个委托应成功: %v", err)
	}

	// 与现有窗口相交
	_, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-10", strPtr("2026-09-20")), "admin-001")
	if !errors.Is(err, ErrProxyOverlap) {
		t.Errorf("期望 ErrProxyOverlap，实际: %v", err)
	}

	// 端点相接视为重叠
	_, err = svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-15", strPtr("2026-09-30")), "admin-001")
	if !errors.Is(err, ErrProxyOverlap) {
		t.Errorf("端点相接期望 ErrProxyOverlap，实际: %v", err)
	}
}

func TestProxyService_Create_OverlapWithOpenEnded(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", nil), "admin-001"); err != nil {
		t.Fatalf("开放式委托应成功: %v", err)
	}

	// 开放式窗口覆盖其后的任何日期
	_, err := svc.Create(context.Background(), createProxyReq("unit-a", "2027-01-01", strPtr("2027-01-31")), "admin-001")
	if !errors.Is(err, ErrProxyOverlap) {
		t.Errorf("期望 ErrProxyOverlap，实际: %v", err)
	}
}

func TestProxyService_Create_InactiveDoesNotBlock(t *testing.T) {
	svc, proxyRepo, _, _ := setupTestProxyService()

	first, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-30")), "admin-001")
	if err != nil {
		t.Fatalf("第一个委托应成功: %v", err)
	}
	proxyRepo.proxies[first.ID].IsActive = false

	// 已停用的代理不参与重叠校验
	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-10", strPtr("2026-09-20")), "admin-001"); err != nil {
		t.Fatalf("与停用代理重叠应允许: %v", err)
	}
}

func TestProxyService_Create_ConcurrentWindowConflict(t *testing.T) {
	svc, proxyRepo, _, _ := setupTestProxyService()

	// 两个并发事务都通过预校验时，排他约束在写入阶段拒绝后到者
	proxyRepo.createErr = apperrors.ErrWindowConflict

	_, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-30")), "admin-001")
	if !errors.Is(err, ErrProxyOverlap) {
		t.Errorf("期望 ErrProxyOverlap，实际: %v", err)
	}
}

func TestProxyService_Update_ConcurrentWindowConflict(t *testing.T) {
	svc, proxyRepo, _, _ := setupTestProxyService()

	first, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-30")), "admin-001")
	if err != nil {
		t.Fatalf("创建应成功: %v", err)
	}

	proxyRepo.updateErr = apperrors.ErrWindowConflict

	newEnd := "2026-10-31"
	_, err = svc.Update(context.Background(), first.ID, &dto.UpdateProxyRequest{EndDate: &newEnd}, "admin-001")
	if !errors.Is(err, ErrProxyOverlap) {
		t.Errorf("期望 ErrProxyOverlap，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestProxyService_Update_ReactivateChecksOverlap(t *testing.T) {
	svc, proxyRepo, _, _ := setupTestProxyService()

	first, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-30")), "admin-001")
	if err != nil {
		t.Fatalf("第一个委托应成功: %v", err)
	}
	proxyRepo.proxies[first.ID].IsActive = false

	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-10", strPtr("2026-09-20")), "admin-001"); err != nil {
		t.Fatalf("第二个委托应成功: %v", err)
	}

	// 重新激活第一个会与第二个重叠
	active := true
	_, err = svc.Update(context.Background(), first.ID, &dto.UpdateProxyRequest{IsActive: &active}, "admin-001")
	if !errors.Is(err, ErrProxyOverlap) {
		t.Errorf("重新激活期望 ErrProxyOverlap，实际: %v", err)
	}
}

func TestProxyService_Update_PartialFields(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	created, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-30")), "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	result, err := svc.Update(context.Background(), created.ID, &dto.UpdateProxyRequest{
		ProxyName: strPtr("María Sustituta"),
	}, "admin-002")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.ProxyName != "María Sustituta" {
		t.Errorf("期望更新姓名，实际=%s", result.ProxyName)
	}
	if result.StartDate != "2026-09-01" {
		t.Error("未提供的字段不应变动")
	}
}

func TestProxyService_Update_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	_, err := svc.Update(context.Background(), "proxy-missing", &dto.UpdateProxyRequest{}, "admin-001")
	if !errors.Is(err, ErrProxyNotFound) {
		t.Errorf("期望 ErrProxyNotFound，实际: %v", err)
	}
}

// ── Delete 级联测试 ──

func TestProxyService_Delete_CascadesAttendance(t *testing.T) {
	svc, _, recordRepo, _ := setupTestProxyService()

	created, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", nil), "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 两条记录通过该代理出席，一条本人出席
	proxyID := created.ID
	recordRepo.records["rec-1"] = &model.AttendanceRecord{
		AttendanceRecordID: "rec-1", AttendanceListID: "list-1", PropertyUnitID: "unit-a",
		AttendedAsProxy: true, ProxyID: &proxyID, IsValid: true,
	}
	recordRepo.records["rec-2"] = &model.AttendanceRecord{
		AttendanceRecordID: "rec-2", AttendanceListID: "list-2", PropertyUnitID: "unit-a",
		AttendedAsProxy: true, ProxyID: &proxyID, IsValid: true,
	}
	recordRepo.records["rec-3"] = &model.AttendanceRecord{
		AttendanceRecordID: "rec-3", AttendanceListID: "list-1", PropertyUnitID: "unit-b",
		AttendedAsOwner: true, IsValid: true,
	}

	if err := svc.Delete(context.Background(), proxyID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	// 代理出席退回未出席，本人出席不受影响
	for _, id := range []string{"rec-1", "rec-2"} {
		r := recordRepo.records[id]
		if r.AttendedAsProxy || r.ProxyID != nil {
			t.Errorf("记录%s应已清除代理出席", id)
		}
	}
	if !recordRepo.records["rec-3"].AttendedAsOwner {
		t.Error("本人出席记录不应受级联影响")
	}
}

func TestProxyService_Delete_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	err := svc.Delete(context.Background(), "proxy-missing")
	if !errors.Is(err, ErrProxyNotFound) {
		t.Errorf("期望 ErrProxyNotFound，实际: %v", err)
	}
}

// ── List / ListByUnit 测试 ──

func TestProxyService_ListByUnit(t *testing.T) {
	svc, _, _, _ := setupTestProxyService()

	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-15")), "admin-001"); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	result, err := svc.ListByUnit(context.Background(), "unit-a")
	if err != nil {
		t.Fatalf("ListByUnit 应成功: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("期望1条委托，实际=%d", len(result))
	}
}

func TestProxyService_List_FilterByActive(t *testing.T) {
	svc, proxyRepo, _, _ := setupTestProxyService()

	first, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-09-01", strPtr("2026-09-15")), "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if _, err := svc.Create(context.Background(), createProxyReq("unit-a", "2026-10-01", strPtr("2026-10-15")), "admin-001"); err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	proxyRepo.proxies[first.ID].IsActive = false

	active := true
	result, total, err := svc.List(context.Background(), &dto.ListProxiesRequest{
		BusinessID: "biz-1",
		IsActive:   &active,
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Errorf("期望仅返回激活代理，实际total=%d len=%d", total, len(result))
	}
}

// ── 窗口函数测试 ──

func TestProxyWindowContains(t *testing.T) {
	start, _ := time.Parse("2006-01-02", "2026-09-01")
	end, _ := time.Parse("2006-01-02", "2026-09-30")
	proxy := &model.Proxy{StartDate: start, EndDate: &end}

	cases := []struct {
		date string
		want bool
	}{
		{"2026-08-31", false},
		{"2026-09-01", true}, // 起始日含端点
		{"2026-09-15", true},
		{"2026-09-30", true}, // 截止日含端点
		{"2026-10-01", false},
	}
	for _, c := range cases {
		d, _ := time.Parse("2006-01-02", c.date)
		if got := proxy.WindowContains(d); got != c.want {
			t.Errorf("WindowContains(%s)=%v，期望%v", c.date, got, c.want)
		}
	}

	// 开放式窗口
	open := &model.Proxy{StartDate: start}
	far, _ := time.Parse("2006-01-02", "2030-01-01")
	if !open.WindowContains(far) {
		t.Error("开放式窗口应覆盖未来任意日期")
	}
}
