package repository

import (
	"context"

	"gorm.io/gorm"

	"condominio/backend/internal/model"
)

// AttendanceListRepository 出席名册数据访问接口
type AttendanceListRepository interface {
	Create(ctx context.Context, list *model.AttendanceList) error
	GetByID(ctx context.Context, id string) (*model.AttendanceList, error)
	List(ctx context.Context, businessID, title string, isActive *bool) ([]model.AttendanceList, error)
	Update(ctx context.Context, list *model.AttendanceList) error
	// Delete 硬删除名册；记录由外键 ON DELETE CASCADE 级联清理
	Delete(ctx context.Context, id string) error
}

// attendanceListRepo AttendanceListRepository 的 GORM 实现
type attendanceListRepo struct {
	db *gorm.DB
}

// NewAttendanceListRepo 创建 AttendanceListRepository 实例
func NewAttendanceListRepo(db *gorm.DB) AttendanceListRepository {
	return &attendanceListRepo{db: db}
}

func (r *attendanceListRepo) Create(ctx context.Context, list *model.AttendanceList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *attendanceListRepo) GetByID(ctx context.Context, id string) (*model.AttendanceList, error) {
	var list model.AttendanceList
	err := r.db.WithContext(ctx).
		Where("attendance_list_id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *attendanceListRepo) List(ctx context.Context, businessID, title string, isActive *bool) ([]model.AttendanceList, error) {
	db := r.db.WithContext(ctx).Where("business_id = ?", businessID)

	if title != "" {
		db = db.Where("title ILIKE ?", "%"+title+"%")
	}
	if isActive != nil {
		db = db.Where("is_active = ?", *isActive)
	}

	var lists []model.AttendanceList
	err := db.Order("created_at DESC").Find(&lists).Error
	return lists, err
}

func (r *attendanceListRepo) Update(ctx context.Context, list *model.AttendanceList) error {
	return r.db.WithContext(ctx).Save(list).Error
}

func (r *attendanceListRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("attendance_list_id = ?", id).
		Delete(&model.AttendanceList{}).Error
}
