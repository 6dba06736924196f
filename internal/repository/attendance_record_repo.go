package repository

import (
	"context"

	"gorm.io/gorm"

	"condominio/backend/internal/model"
	apperrors "condominio/backend/pkg/errors"
)

// RecordRow 出席记录连同展示名称的查询结果
// 分页列表与 Excel 导出共用同一行结构
type RecordRow struct {
	model.AttendanceRecord
	UnitNumber   string  `json:"unit_number"`
	ResidentName *string `json:"resident_name"`
	ProxyName    *string `json:"proxy_name"`
}

// SummaryRow 统计引擎的单条输入：一次查询取回的点时快照
type SummaryRow struct {
	AttendedAsOwner      bool
	AttendedAsProxy      bool
	IsValid              bool
	OwnershipCoefficient float64
}

// AttendanceRecordRepository 出席记录数据访问接口
type AttendanceRecordRepository interface {
	CreateBatch(ctx context.Context, records []model.AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error)
	GetByListAndUnit(ctx context.Context, listID, unitID string) (*model.AttendanceRecord, error)
	// Mark 在记录仍为未出席时应用 updates，否则返回 ErrOptimisticLock
	Mark(ctx context.Context, id string, updates map[string]interface{}) error
	// Unmark 在记录仍为已出席时应用 updates，否则返回 ErrOptimisticLock
	Unmark(ctx context.Context, id string, updates map[string]interface{}) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	// ListPage 分页查询记录并联表取回单元号/住户/代理姓名
	ListPage(ctx context.Context, listID string, offset, limit int, unitNumber string, attended *bool) ([]RecordRow, int64, error)
	// ListAll 按单元号排序取回名册全部记录（导出用）
	ListAll(ctx context.Context, listID string, limit int) ([]RecordRow, error)
	// SummaryRows 单条 SQL 取回统计快照，保证各计数来自同一读取
	SummaryRows(ctx context.Context, listID string) ([]SummaryRow, error)
	// ClearProxyAttendance 清除指向某代理的出席状态（代理删除级联）
	ClearProxyAttendance(ctx context.Context, proxyID string) (int64, error)
}

// attendanceRecordRepo AttendanceRecordRepository 的 GORM 实现
type attendanceRecordRepo struct {
	db *gorm.DB
}

// NewAttendanceRecordRepo 创建 AttendanceRecordRepository 实例
func NewAttendanceRecordRepo(db *gorm.DB) AttendanceRecordRepository {
	return &attendanceRecordRepo{db: db}
}

func (r *attendanceRecordRepo) CreateBatch(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, 200).Error
}

func (r *attendanceRecordRepo) GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("attendance_record_id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRecordRepo) GetByListAndUnit(ctx context.Context, listID, unitID string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("attendance_list_id = ? AND property_unit_id = ?", listID, unitID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Mark 条件更新：仅当记录仍未出席时生效，并发双标记会在此失败
func (r *attendanceRecordRepo) Mark(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("attendance_record_id = ?", id).
		Where("attended_as_owner = ? AND attended_as_proxy = ?", false, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	return nil
}

// Unmark 条件更新：仅当记录仍为已出席时生效
func (r *attendanceRecordRepo) Unmark(ctx context.Context, id string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("attendance_record_id = ?", id).
		Where("attended_as_owner = ? OR attended_as_proxy = ?", true, true).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrOptimisticLock
	}
	return nil
}

func (r *attendanceRecordRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("attendance_record_id = ?", id).
		Updates(updates).Error
}

func (r *attendanceRecordRepo) ListPage(ctx context.Context, listID string, offset, limit int, unitNumber string, attended *bool) ([]RecordRow, int64, error) {
	db := r.baseRowQuery(ctx).Where("ar.attendance_list_id = ?", listID)

	if unitNumber != "" {
		db = db.Where("pu.unit_number ILIKE ?", "%"+unitNumber+"%")
	}
	if attended != nil {
		// 与统计引擎同一判定：本人出席或代理出席
		if *attended {
			db = db.Where("ar.attended_as_owner OR ar.attended_as_proxy")
		} else {
			db = db.Where("NOT (ar.attended_as_owner OR ar.attended_as_proxy)")
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []RecordRow
	err := db.
		Offset(offset).Limit(limit).
		Order("pu.unit_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *attendanceRecordRepo) ListAll(ctx context.Context, listID string, limit int) ([]RecordRow, error) {
	var rows []RecordRow
	err := r.baseRowQuery(ctx).
		Where("ar.attendance_list_id = ?", listID).
		Order("pu.unit_number ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// baseRowQuery 记录 ⟕ 单元 ⟕ 住户 ⟕ 代理 的基础联表查询
func (r *attendanceRecordRepo) baseRowQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("attendance_records AS ar").
		Select("ar.*, pu.unit_number, res.full_name AS resident_name, px.proxy_name").
		Joins("LEFT JOIN property_units pu ON pu.property_unit_id = ar.property_unit_id").
		Joins("LEFT JOIN residents res ON res.resident_id = ar.resident_id").
		Joins("LEFT JOIN proxies px ON px.proxy_id = ar.proxy_id")
}

func (r *attendanceRecordRepo) SummaryRows(ctx context.Context, listID string) ([]SummaryRow, error) {
	var rows []SummaryRow
	err := r.db.WithContext(ctx).
		Table("attendance_records AS ar").
		Select("ar.attended_as_owner, ar.attended_as_proxy, ar.is_valid, COALESCE(pu.ownership_coefficient, 0) AS ownership_coefficient").
		Joins("LEFT JOIN property_units pu ON pu.property_unit_id = ar.property_unit_id").
		Where("ar.attendance_list_id = ?", listID).
		Find(&rows).Error
	return rows, err
}

func (r *attendanceRecordRepo) ClearProxyAttendance(ctx context.Context, proxyID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("proxy_id = ?", proxyID).
		Updates(map[string]interface{}{
			"proxy_id":          nil,
			"attended_as_proxy": false,
		})
	return result.RowsAffected, result.Error
}
