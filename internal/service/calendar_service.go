package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"condominio/backend/config"
	"condominio/backend/internal/repository"
)

// CalendarService 大会日历业务接口
//
// 将某物业全部带大会日期的活动名册输出为标准 iCalendar (RFC 5545)，
// 供管理后台订阅，提醒即将召开的业主大会。
type CalendarService interface {
	// Feed 生成物业的大会日历（ICS 文本）
	Feed(ctx context.Context, businessID string) (string, error)
}

type calendarService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, logger: logger}
}

func (s *calendarService) Feed(ctx context.Context, businessID string) (string, error) {
	active := true
	lists, err := s.repo.AttendanceList.List(ctx, businessID, "", &active)
	if err != nil {
		s.logger.Error("查询出席名册失败", zap.String("business_id", businessID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//condominio//asambleas//ES")

	now := time.Now()
	for i := range lists {
		list := &lists[i]
		if list.MeetingDate == nil {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@condominio", list.AttendanceListID))
		event.SetCreatedTime(list.CreatedAt)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(*list.MeetingDate)
		event.SetAllDayEndAt(list.MeetingDate.AddDate(0, 0, 1))
		event.SetSummary(list.Title)
		if list.Description != nil {
			event.SetDescription(*list.Description)
		}
	}

	return cal.Serialize(), nil
}
