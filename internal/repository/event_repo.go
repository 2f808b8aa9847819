package repository

import (
	"context"
	"errors"
	"fmt"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTitleConflict 并发写入同一title导致的唯一约束冲突
var ErrTitleConflict = errors.New("event title already exists")

// ErrEventNotFound 查询的活动不存在
var ErrEventNotFound = errors.New("event not found")

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建 EventRepository 实例（db需开启 TranslateError）
func NewEventRepository(db *gorm.DB) interfaces.EventRepository {
	return &eventRepository{db: db}
}

// FindByTitle 按title精确查找，不存在返回 nil, nil
func (r *eventRepository) FindByTitle(ctx context.Context, title string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create 新建活动，自动生成 event_uuid
func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if event.EventUUID == "" {
		event.EventUUID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return translate(err, event.Title)
	}
	return nil
}

// Update 覆盖可变字段；空值同样写入
func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	if event.ID == 0 {
		return fmt.Errorf("更新活动缺少ID, title: %s", event.Title)
	}
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", event.ID).
		Updates(event.MutableFields()).Error
	if err != nil {
		return translate(err, event.Title)
	}
	return nil
}

// UpsertByTitle 先按title查找：存在则覆盖，否则创建
func (r *eventRepository) UpsertByTitle(ctx context.Context, event *model.Event) (bool, error) {
	existing, err := r.FindByTitle(ctx, event.Title)
	if err != nil {
		return false, fmt.Errorf("查询活动失败: %w, title: %s", err, event.Title)
	}
	if existing == nil {
		if err := r.Create(ctx, event); err != nil {
			return false, err
		}
		return true, nil
	}

	existing.ApplyFrom(event)
	if err := r.Update(ctx, existing); err != nil {
		return false, err
	}
	*event = *existing
	return false, nil
}

// List 分页查询，最新创建的在前
func (r *eventRepository) List(ctx context.Context, page, pageSize int) ([]*model.Event, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	db := r.db.WithContext(ctx).Model(&model.Event{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []*model.Event
	if err := db.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// GetByUUID 通过 event_uuid 获取活动
func (r *eventRepository) GetByUUID(ctx context.Context, eventUUID string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).Where("event_uuid = ?", eventUUID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Count 活动总数
func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Event{}).Count(&total).Error
	return total, err
}

func translate(err error, title string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s: %w", ErrTitleConflict, title, err)
	}
	return fmt.Errorf("保存活动失败: %w, title: %s", err, title)
}
