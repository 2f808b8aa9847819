package interfaces

import (
	"context"

	"EventSync/internal/config"
	"EventSync/internal/model"
)

// SiteParser 所有站点解析器必须实现的核心接口
type SiteParser interface {
	Name() string
	// Parse 解析列表页，零条结果返回空切片而非错误
	Parse(html []byte, baseURL string) ([]*model.EventRecord, error)
}

// DetailParser 两阶段站点：列表页只发现链接，记录从详情页抽取
type DetailParser interface {
	SiteParser
	DiscoverLinks(html []byte, baseURL string) []string
	ParseDetail(html []byte, pageURL string) (*model.EventRecord, error)
}

// RawPage 抓取结果
type RawPage struct {
	URL        string // 请求地址
	FinalURL   string // 跟随重定向后的地址
	StatusCode int
	Body       []byte
	Attempts   int // 实际尝试次数
}

// Fetcher 页面抓取接口（重试在实现内部完成）
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*RawPage, error)
}

// EventRepository 活动存储接口
type EventRepository interface {
	FindByTitle(ctx context.Context, title string) (*model.Event, error)
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	// UpsertByTitle 按title查找，存在则覆盖可变字段，否则创建；created表示是否新建
	UpsertByTitle(ctx context.Context, event *model.Event) (created bool, err error)
	List(ctx context.Context, page, pageSize int) ([]*model.Event, int64, error)
	GetByUUID(ctx context.Context, eventUUID string) (*model.Event, error)
	Count(ctx context.Context) (int64, error)
}

// ParserResolver 按站点配置解析出解析器
type ParserResolver interface {
	ParserFor(site config.SiteConfig) (SiteParser, bool)
}
