package model

import "time"

// RunItem 单条记录的处理结果
type RunItem struct {
	ID           uint64 `json:"id"`
	EventUUID    string `json:"event_uuid"`
	NewlyCreated bool   `json:"newly_created"`
	EventRecord
}

// SiteError 站点级失败（抓取或解析失败）
type SiteError struct {
	Site  string `json:"site"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ScrapeRunResult 一次爬取的汇总，不入库
type ScrapeRunResult struct {
	Items             []RunItem   `json:"events"`
	TotalCount        int         `json:"total_event_count"`
	NewCount          int         `json:"new_event_count"`
	SiteErrors        []SiteError `json:"site_errors"`
	ZeroResultSites   []string    `json:"zero_result_sites"`
	PersistErrorCount int         `json:"persist_error_count"`
	StartedAt         time.Time   `json:"started_at"`
	FinishedAt        time.Time   `json:"finished_at"`
}

// NewScrapeRunResult 创建空汇总（切片非nil，序列化为[]）
func NewScrapeRunResult(startedAt time.Time) *ScrapeRunResult {
	return &ScrapeRunResult{
		Items:           []RunItem{},
		SiteErrors:      []SiteError{},
		ZeroResultSites: []string{},
		StartedAt:       startedAt,
	}
}

// AddItem 追加一条已入库记录
func (r *ScrapeRunResult) AddItem(rec *EventRecord, persisted *Event, created bool) {
	item := RunItem{NewlyCreated: created, EventRecord: *rec}
	if persisted != nil {
		item.ID = persisted.ID
		item.EventUUID = persisted.EventUUID
	}
	r.Items = append(r.Items, item)
	r.TotalCount++
	if created {
		r.NewCount++
	}
}

// AddSiteError 追加站点级失败
func (r *ScrapeRunResult) AddSiteError(site, url string, err error) {
	r.SiteErrors = append(r.SiteErrors, SiteError{Site: site, URL: url, Error: err.Error()})
}
