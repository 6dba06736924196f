package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/model"
	"condominio/backend/internal/repository"
	apperrors "condominio/backend/pkg/errors"
)

// ── 出席记录模块业务错误 ──

var (
	ErrRecordNotFound        = errors.New("出席记录不存在")
	ErrAlreadyAttended       = errors.New("该单元已登记出席")
	ErrNotAttended           = errors.New("该单元尚未登记出席")
	ErrAttendanceModeInvalid = errors.New("本人出席与代理出席必须恰好选择一种")
	ErrInvalidProxy          = errors.New("代理无效：不属于该单元或不在委托有效期内")
)

// AttendanceRecordService 出席记录业务接口
//
// 状态机：未出席 → 本人出席 / 代理出席，unmark 回到未出席；
// 两种出席状态之间不允许直接切换（先 unmark 再 mark，保证每次转移可审计）。
// 重复 mark/unmark 按冲突处理，两条入口路径（按记录 ID / 按业务键）共用同一套校验。
type AttendanceRecordService interface {
	// Mark 简化标记：按记录 ID 登记本人出席
	Mark(ctx context.Context, recordID, callerID string) (*dto.AttendanceRecordResponse, error)
	// MarkWithDetails 完整标记：按 (名册, 单元) 定位，支持代理出席与签名信息
	MarkWithDetails(ctx context.Context, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceRecordResponse, error)
	// Unmark 取消出席：清空两个出席标志与代理引用及签名信息
	Unmark(ctx context.Context, recordID, callerID string) (*dto.AttendanceRecordResponse, error)
	// Verify 审计核验盖章，不改变出席状态
	Verify(ctx context.Context, recordID, verifiedBy string, req *dto.VerifyAttendanceRequest) (*dto.AttendanceRecordResponse, error)
	// SetValidity 管理员开关：排除/恢复记录参与法定人数统计
	SetValidity(ctx context.Context, recordID string, isValid bool, callerID string) (*dto.AttendanceRecordResponse, error)
	// Records 分页查询名册记录（含展示名称）
	Records(ctx context.Context, listID string, req *dto.ListRecordsRequest) ([]dto.AttendanceRecordResponse, int64, error)
	// Summary 计算名册的出席统计（单元数口径 + 产权系数口径）
	Summary(ctx context.Context, listID string) (*dto.SummaryResponse, error)
}

type attendanceRecordService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceRecordService 创建 AttendanceRecordService 实例
func NewAttendanceRecordService(repo *repository.Repository, logger *zap.Logger) AttendanceRecordService {
	return &attendanceRecordService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Mark（简化路径） ──────────────────────

func (s *attendanceRecordService) Mark(ctx context.Context, recordID, callerID string) (*dto.AttendanceRecordResponse, error) {
	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	req := &dto.MarkAttendanceRequest{
		AttendanceListID: record.AttendanceListID,
		PropertyUnitID:   record.PropertyUnitID,
		AttendedAsOwner:  true,
	}

	return s.applyMark(ctx, record, req, callerID)
}

// ────────────────────── MarkWithDetails（完整路径） ──────────────────────

func (s *attendanceRecordService) MarkWithDetails(ctx context.Context, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceRecordResponse, error) {
	record, err := s.repo.AttendanceRecord.GetByListAndUnit(ctx, req.AttendanceListID, req.PropertyUnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询出席记录失败",
			zap.String("attendance_list_id", req.AttendanceListID),
			zap.String("property_unit_id", req.PropertyUnitID),
			zap.Error(err))
		return nil, err
	}

	return s.applyMark(ctx, record, req, callerID)
}

// applyMark 两条标记路径共用的状态转移
// 所有字段通过一次条件更新写入，失败时记录保持原状
func (s *attendanceRecordService) applyMark(ctx context.Context, record *model.AttendanceRecord, req *dto.MarkAttendanceRequest, callerID string) (*dto.AttendanceRecordResponse, error) {
	// 本人/代理互斥，且必须选择一种
	if req.AttendedAsOwner == req.AttendedAsProxy {
		return nil, ErrAttendanceModeInvalid
	}

	if record.Attended() {
		return nil, ErrAlreadyAttended
	}

	updates := map[string]interface{}{
		"attended_as_owner": req.AttendedAsOwner,
		"attended_as_proxy": req.AttendedAsProxy,
		"updated_by":        callerID,
		"updated_at":        s.now(),
	}

	if req.AttendedAsProxy {
		if req.ProxyID == nil {
			return nil, ErrInvalidProxy
		}
		if err := s.validateProxy(ctx, record, *req.ProxyID); err != nil {
			return nil, err
		}
		updates["proxy_id"] = *req.ProxyID
	}

	if req.ResidentID != nil {
		updates["resident_id"] = *req.ResidentID
	}
	if req.Signature != nil {
		updates["signature"] = *req.Signature
		updates["signature_date"] = s.now()
	}
	if req.SignatureMethod != nil {
		updates["signature_method"] = *req.SignatureMethod
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := s.repo.AttendanceRecord.Mark(ctx, record.AttendanceRecordID, updates); err != nil {
		if errors.Is(err, apperrors.ErrOptimisticLock) {
			// 并发下另一操作员抢先标记
			return nil, ErrAlreadyAttended
		}
		s.logger.Error("标记出席失败", zap.String("attendance_record_id", record.AttendanceRecordID), zap.Error(err))
		return nil, err
	}

	return s.rowResponse(ctx, record.AttendanceRecordID)
}

// validateProxy 校验代理属于该单元、处于激活状态且委托窗口覆盖大会日期
func (s *attendanceRecordService) validateProxy(ctx context.Context, record *model.AttendanceRecord, proxyID string) error {
	proxy, err := s.repo.Proxy.GetByID(ctx, proxyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidProxy
		}
		s.logger.Error("查询代理失败", zap.String("proxy_id", proxyID), zap.Error(err))
		return err
	}

	if proxy.PropertyUnitID != record.PropertyUnitID || !proxy.IsActive {
		return ErrInvalidProxy
	}

	// 名册未设置大会日期时以当前日期为基准
	effective := s.now()
	if list, err := s.repo.AttendanceList.GetByID(ctx, record.AttendanceListID); err == nil {
		effective = list.EffectiveDate(effective)
	}

	if !proxy.WindowContains(effective) {
		return ErrInvalidProxy
	}

	return nil
}

// ────────────────────── Unmark ──────────────────────

func (s *attendanceRecordService) Unmark(ctx context.Context, recordID, callerID string) (*dto.AttendanceRecordResponse, error) {
	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if !record.Attended() {
		return nil, ErrNotAttended
	}

	// 标记时写入的全部字段（签名、登记人、备注）一并清空：
	// mark 后立即 unmark 应回到完全一致的初始状态
	updates := map[string]interface{}{
		"attended_as_owner": false,
		"attended_as_proxy": false,
		"proxy_id":          nil,
		"resident_id":       nil,
		"signature":         nil,
		"signature_date":    nil,
		"signature_method":  nil,
		"notes":             nil,
		"updated_by":        callerID,
		"updated_at":        s.now(),
	}

	if err := s.repo.AttendanceRecord.Unmark(ctx, recordID, updates); err != nil {
		if errors.Is(err, apperrors.ErrOptimisticLock) {
			return nil, ErrNotAttended
		}
		s.logger.Error("取消出席失败", zap.String("attendance_record_id", recordID), zap.Error(err))
		return nil, err
	}

	return s.rowResponse(ctx, recordID)
}

// ────────────────────── Verify ──────────────────────

func (s *attendanceRecordService) Verify(ctx context.Context, recordID, verifiedBy string, req *dto.VerifyAttendanceRequest) (*dto.AttendanceRecordResponse, error) {
	if _, err := s.getRecord(ctx, recordID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"verified_by":       verifiedBy,
		"verification_date": s.now(),
		"updated_by":        verifiedBy,
		"updated_at":        s.now(),
	}
	if req.Notes != nil {
		updates["verification_notes"] = *req.Notes
	}

	if err := s.repo.AttendanceRecord.Update(ctx, recordID, updates); err != nil {
		s.logger.Error("核验出席失败", zap.String("attendance_record_id", recordID), zap.Error(err))
		return nil, err
	}

	return s.rowResponse(ctx, recordID)
}

// ────────────────────── SetValidity ──────────────────────

func (s *attendanceRecordService) SetValidity(ctx context.Context, recordID string, isValid bool, callerID string) (*dto.AttendanceRecordResponse, error) {
	if _, err := s.getRecord(ctx, recordID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"is_valid":   isValid,
		"updated_by": callerID,
		"updated_at": s.now(),
	}

	if err := s.repo.AttendanceRecord.Update(ctx, recordID, updates); err != nil {
		s.logger.Error("更新记录有效性失败", zap.String("attendance_record_id", recordID), zap.Error(err))
		return nil, err
	}

	return s.rowResponse(ctx, recordID)
}

// ────────────────────── Records ──────────────────────

func (s *attendanceRecordService) Records(ctx context.Context, listID string, req *dto.ListRecordsRequest) ([]dto.AttendanceRecordResponse, int64, error) {
	if _, err := s.repo.AttendanceList.GetByID(ctx, listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrAttendanceListNotFound
		}
		s.logger.Error("查询出席名册失败", zap.String("id", listID), zap.Error(err))
		return nil, 0, err
	}

	rows, total, err := s.repo.AttendanceRecord.ListPage(ctx, listID, req.GetOffset(), req.GetPageSize(), req.UnitNumber, req.Attended)
	if err != nil {
		s.logger.Error("查询出席记录失败", zap.String("attendance_list_id", listID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AttendanceRecordResponse, 0, len(rows))
	for i := range rows {
		result = append(result, *toAttendanceRecordResponse(&rows[i]))
	}

	return result, total, nil
}

// ────────────────────── Summary ──────────────────────

// Summary 出席统计
// 无效记录（is_valid=false）保留在分母中但不计入任何出席项：
// 其缺席同样拉低通过率，这是法定人数口径的有意设计，不可改动。
func (s *attendanceRecordService) Summary(ctx context.Context, listID string) (*dto.SummaryResponse, error) {
	if _, err := s.repo.AttendanceList.GetByID(ctx, listID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceListNotFound
		}
		s.logger.Error("查询出席名册失败", zap.String("id", listID), zap.Error(err))
		return nil, err
	}

	rows, err := s.repo.AttendanceRecord.SummaryRows(ctx, listID)
	if err != nil {
		s.logger.Error("查询统计快照失败", zap.String("attendance_list_id", listID), zap.Error(err))
		return nil, err
	}

	return summaryFromRows(rows), nil
}

// summaryFromRows 从点时快照折算两种口径的出席率
func summaryFromRows(rows []repository.SummaryRow) *dto.SummaryResponse {
	summary := &dto.SummaryResponse{TotalUnits: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	var totalCoef, attendedCoef float64
	for _, row := range rows {
		totalCoef += row.OwnershipCoefficient

		attended := row.AttendedAsOwner || row.AttendedAsProxy
		if !attended || !row.IsValid {
			continue
		}
		summary.AttendedUnits++
		attendedCoef += row.OwnershipCoefficient
		if row.AttendedAsOwner {
			summary.AttendedAsOwner++
		} else {
			summary.AttendedAsProxy++
		}
	}

	summary.AbsentUnits = summary.TotalUnits - summary.AttendedUnits
	summary.AttendanceRate = roundRate(float64(summary.AttendedUnits) / float64(summary.TotalUnits) * 100)
	summary.AbsenceRate = roundRate(100 - summary.AttendanceRate)

	if totalCoef > 0 {
		summary.AttendanceRateByCoef = roundRate(attendedCoef / totalCoef * 100)
		summary.AbsenceRateByCoef = roundRate(100 - summary.AttendanceRateByCoef)
	} else {
		// 系数全为 0 的退化数据：按系数口径视为全体缺席，两口径之和恒为 100
		summary.AbsenceRateByCoef = 100
	}

	return summary
}

// roundRate 百分比保留两位小数
func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}

// ── 内部辅助方法 ──

func (s *attendanceRecordService) getRecord(ctx context.Context, recordID string) (*model.AttendanceRecord, error) {
	record, err := s.repo.AttendanceRecord.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询出席记录失败", zap.String("attendance_record_id", recordID), zap.Error(err))
		return nil, err
	}
	return record, nil
}

// rowResponse 重新读取记录（含展示名称）并转响应
func (s *attendanceRecordService) rowResponse(ctx context.Context, recordID string) (*dto.AttendanceRecordResponse, error) {
	record, err := s.getRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	// 变更接口返回不带联表名称的记录即可满足前端镜像状态的需要
	row := &repository.RecordRow{AttendanceRecord: *record}
	return toAttendanceRecordResponse(row), nil
}

func toAttendanceRecordResponse(row *repository.RecordRow) *dto.AttendanceRecordResponse {
	resp := &dto.AttendanceRecordResponse{
		ID:                row.AttendanceRecordID,
		AttendanceListID:  row.AttendanceListID,
		PropertyUnitID:    row.PropertyUnitID,
		UnitNumber:        row.UnitNumber,
		ResidentID:        row.ResidentID,
		ResidentName:      row.ResidentName,
		ProxyID:           row.ProxyID,
		ProxyName:         row.ProxyName,
		AttendedAsOwner:   row.AttendedAsOwner,
		AttendedAsProxy:   row.AttendedAsProxy,
		Signature:         row.Signature,
		SignatureMethod:   row.SignatureMethod,
		VerifiedBy:        row.VerifiedBy,
		VerificationNotes: row.VerificationNotes,
		Notes:             row.Notes,
		IsValid:           row.IsValid,
		CreatedAt:         row.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:         row.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if row.SignatureDate != nil {
		d := row.SignatureDate.Format("2006-01-02T15:04:05Z")
		resp.SignatureDate = &d
	}
	if row.VerificationDate != nil {
		d := row.VerificationDate.Format("2006-01-02T15:04:05Z")
		resp.VerificationDate = &d
	}
	return resp
}
