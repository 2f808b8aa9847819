package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"EventSync/internal/model"
	"EventSync/internal/repository"

	"github.com/google/uuid"
)

// memRepo 内存版活动存储，语义与gorm实现一致
type memRepo struct {
	mu       sync.Mutex
	byTitle  map[string]*model.Event
	nextID   uint64
	conflict map[string]bool // 模拟并发插入冲突的title
}

func newMemRepo() *memRepo {
	return &memRepo{byTitle: make(map[string]*model.Event), conflict: make(map[string]bool)}
}

func (r *memRepo) FindByTitle(_ context.Context, title string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byTitle[title]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) Create(_ context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(event)
}

func (r *memRepo) createLocked(event *model.Event) error {
	if _, exists := r.byTitle[event.Title]; exists || r.conflict[event.Title] {
		return fmt.Errorf("%w: %s", repository.ErrTitleConflict, event.Title)
	}
	r.nextID++
	event.ID = r.nextID
	if event.EventUUID == "" {
		event.EventUUID = uuid.NewString()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	cp := *event
	r.byTitle[event.Title] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, event *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byTitle[event.Title]
	if !ok || existing.ID != event.ID {
		return fmt.Errorf("更新活动失败, title: %s", event.Title)
	}
	existing.ApplyFrom(event)
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *memRepo) UpsertByTitle(_ context.Context, event *model.Event) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byTitle[event.Title]
	if !ok {
		if err := r.createLocked(event); err != nil {
			return false, err
		}
		return true, nil
	}
	existing.ApplyFrom(event)
	existing.UpdatedAt = time.Now()
	*event = *existing
	return false, nil
}

func (r *memRepo) List(_ context.Context, page, pageSize int) ([]*model.Event, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*model.Event, 0, len(r.byTitle))
	for _, e := range r.byTitle {
		cp := *e
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memRepo) GetByUUID(_ context.Context, eventUUID string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byTitle {
		if e.EventUUID == eventUUID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrEventNotFound
}

func (r *memRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byTitle)), nil
}

func (r *memRepo) get(title string) *model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byTitle[title]
}
