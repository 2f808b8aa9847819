package service

import (
	"context"
	"encoding/json"
	"errors"

	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Persister 按title逐条入库，单条记录互不影响
type Persister struct {
	repo   interfaces.EventRepository
	logger *logrus.Logger
}

func NewPersister(repo interfaces.EventRepository, logger *logrus.Logger) *Persister {
	return &Persister{repo: repo, logger: logger}
}

// extraInfo 写入 events.extra 的抓取诊断信息
type extraInfo struct {
	RawSnippet string   `json:"raw_snippet,omitempty"`
	Fallbacks  []string `json:"fallback_fields,omitempty"`
}

// Upsert 返回入库后的活动与是否新建
func (p *Persister) Upsert(ctx context.Context, rec *model.EventRecord) (*model.Event, bool, error) {
	event := toEvent(rec)
	created, err := p.repo.UpsertByTitle(ctx, event)
	if err != nil {
		return nil, false, err
	}
	return event, created, nil
}

// IsConflict 是否为可跳过的并发冲突
func IsConflict(err error) bool {
	return errors.Is(err, repository.ErrTitleConflict)
}

func toEvent(rec *model.EventRecord) *model.Event {
	event := &model.Event{
		Title:               rec.Title,
		Description:         rec.Description,
		ImageURL:            rec.ImageURL,
		Link:                rec.Link,
		EventURL:            rec.EventURL,
		RegistrationStart:   rec.RegistrationStart,
		RegistrationEnd:     rec.RegistrationEnd,
		RegistrationStartAt: rec.RegistrationStartAt,
		RegistrationEndAt:   rec.RegistrationEndAt,
		SourceSite:          rec.SourceSite,
	}
	info := extraInfo{RawSnippet: rec.RawSnippet, Fallbacks: rec.FallbackFields()}
	if raw, err := json.Marshal(info); err == nil {
		event.Extra = datatypes.JSON(raw)
	}
	return event
}

// persistAll 逐条入库并累计到结果；冲突与其他存储错误都只记录并跳过
func (p *Persister) persistAll(ctx context.Context, siteName string, records []*model.EventRecord, result *model.ScrapeRunResult) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		event, created, err := p.Upsert(ctx, rec)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			result.PersistErrorCount++
			persistErrors(siteName).Inc()
			entry := p.logger.WithError(err).WithFields(logrus.Fields{"site": siteName, "title": rec.Title})
			if IsConflict(err) {
				entry.Warn("标题冲突（并发写入），跳过该记录")
			} else {
				entry.Error("活动入库失败，跳过该记录")
			}
			continue
		}
		result.AddItem(rec, event, created)
		recordUpserted(siteName, created).Inc()
	}
	return nil
}
