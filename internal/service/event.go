package service

import (
	"context"
	"time"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// EventService 活动查询（给前端页面用）
type EventService struct {
	repo   interfaces.EventRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewEventService(repo interfaces.EventRepository, logger *logrus.Logger) *EventService {
	return &EventService{repo: repo, logger: logger, now: time.Now}
}

// EventView 活动对外视图，附带报名状态
type EventView struct {
	ID                  uint64                   `json:"id"`
	EventUUID           string                   `json:"event_uuid"`
	Title               string                   `json:"title"`
	Description         string                   `json:"description"`
	ImageURL            string                   `json:"image_url"`
	Link                string                   `json:"link"`
	EventURL            string                   `json:"event_url"`
	RegistrationStart   string                   `json:"registration_start"`
	RegistrationEnd     string                   `json:"registration_end"`
	RegistrationStartAt *time.Time               `json:"registration_start_at"`
	RegistrationEndAt   *time.Time               `json:"registration_end_at"`
	RegistrationStatus  model.RegistrationStatus `json:"registration_status"`
	SourceSite          string                   `json:"source_site"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// EventListResult 分页结果
type EventListResult struct {
	Count    int64        `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Results  []*EventView `json:"results"`
}

// ListEvents 分页查询，page_size 默认20、最大100
func (s *EventService) ListEvents(ctx context.Context, page, pageSize int) (*EventListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	events, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]*EventView, 0, len(events))
	for _, e := range events {
		views = append(views, toView(e, now))
	}
	return &EventListResult{Count: total, Page: page, PageSize: pageSize, Results: views}, nil
}

// GetEvent 通过 event_uuid 获取活动详情
func (s *EventService) GetEvent(ctx context.Context, eventUUID string) (*EventView, error) {
	e, err := s.repo.GetByUUID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}
	return toView(e, s.now()), nil
}

func toView(e *model.Event, now time.Time) *EventView {
	return &EventView{
		ID:                  e.ID,
		EventUUID:           e.EventUUID,
		Title:               e.Title,
		Description:         e.Description,
		ImageURL:            e.ImageURL,
		Link:                e.Link,
		EventURL:            e.EventURL,
		RegistrationStart:   e.RegistrationStart,
		RegistrationEnd:     e.RegistrationEnd,
		RegistrationStartAt: e.RegistrationStartAt,
		RegistrationEndAt:   e.RegistrationEndAt,
		RegistrationStatus:  e.RegistrationStatus(now),
		SourceSite:          e.SourceSite,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}
