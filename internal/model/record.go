package model

import "time"

// FieldFallback 单个字段抽取失败时的兜底记录
type FieldFallback struct {
	Field string `json:"field"`
	Note  string `json:"note,omitempty"`
}

// EventRecord 解析器产出、入库前的规范化活动记录（单次爬取内有效）
type EventRecord struct {
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	ImageURL            string          `json:"image_url"`
	Link                string          `json:"link"`
	EventURL            string          `json:"event_url"`
	RegistrationStart   string          `json:"registration_start"`
	RegistrationEnd     string          `json:"registration_end"`
	RegistrationStartAt *time.Time      `json:"registration_start_at,omitempty"`
	RegistrationEndAt   *time.Time      `json:"registration_end_at,omitempty"`
	SourceSite          string          `json:"source_site"`
	RawSnippet          string          `json:"-"`
	Fallbacks           []FieldFallback `json:"fallbacks,omitempty"`
}

// FellBack 字段是否走了兜底
func (r *EventRecord) FellBack(field string) bool {
	for _, f := range r.Fallbacks {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FallbackFields 兜底字段名列表
func (r *EventRecord) FallbackFields() []string {
	fields := make([]string, 0, len(r.Fallbacks))
	for _, f := range r.Fallbacks {
		fields = append(fields, f.Field)
	}
	return fields
}
