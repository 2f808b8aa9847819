package model

import (
	"time"

	"gorm.io/datatypes"
)

// Event 活动表（以title作为自然键，一个title至多一行）
type Event struct {
	ID                  uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	EventUUID           string         `gorm:"column:event_uuid;type:varchar(64);uniqueIndex;not null;comment:全局唯一ID"`
	Title               string         `gorm:"column:title;type:varchar(255);uniqueIndex:uk_event_title;not null;comment:活动标题（自然键）"`
	Description         string         `gorm:"column:description;type:text;not null;default:'';comment:活动描述"`
	ImageURL            string         `gorm:"column:image_url;type:varchar(1024);not null;default:'';comment:封面图地址"`
	Link                string         `gorm:"column:link;type:varchar(1024);not null;comment:活动链接（缺省为列表页）"`
	EventURL            string         `gorm:"column:event_url;type:varchar(1024);not null;default:'';comment:解析到的详情页链接"`
	RegistrationStart   string         `gorm:"column:registration_start;type:varchar(128);not null;default:'';comment:报名开始（原文）"`
	RegistrationEnd     string         `gorm:"column:registration_end;type:varchar(128);not null;default:'';comment:报名截止（原文）"`
	RegistrationStartAt *time.Time     `gorm:"column:registration_start_at;type:timestamp;comment:报名开始（尽力解析）"`
	RegistrationEndAt   *time.Time     `gorm:"column:registration_end_at;type:timestamp;comment:报名截止（尽力解析）"`
	SourceSite          string         `gorm:"column:source_site;type:varchar(64);index;not null;default:'';comment:来源站点"`
	Extra               datatypes.JSON `gorm:"column:extra;type:jsonb;comment:抓取诊断信息"`
	CreatedAt           time.Time      `gorm:"column:created_at;type:timestamp;autoCreateTime;comment:创建时间"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;type:timestamp;autoUpdateTime;comment:更新时间"`
}

func (Event) TableName() string { return "events" }

// MutableFields 每次重新抓取时被覆盖的字段（后写覆盖，空值同样写入）
func (e *Event) MutableFields() map[string]interface{} {
	return map[string]interface{}{
		"description":           e.Description,
		"image_url":             e.ImageURL,
		"link":                  e.Link,
		"event_url":             e.EventURL,
		"registration_start":    e.RegistrationStart,
		"registration_end":      e.RegistrationEnd,
		"registration_start_at": e.RegistrationStartAt,
		"registration_end_at":   e.RegistrationEndAt,
		"source_site":           e.SourceSite,
		"extra":                 e.Extra,
	}
}

// ApplyFrom 用新记录覆盖可变字段（保留ID/UUID/创建时间）
func (e *Event) ApplyFrom(other *Event) {
	e.Description = other.Description
	e.ImageURL = other.ImageURL
	e.Link = other.Link
	e.EventURL = other.EventURL
	e.RegistrationStart = other.RegistrationStart
	e.RegistrationEnd = other.RegistrationEnd
	e.RegistrationStartAt = other.RegistrationStartAt
	e.RegistrationEndAt = other.RegistrationEndAt
	e.SourceSite = other.SourceSite
	e.Extra = other.Extra
}

// RegistrationStatus 按解析后的报名时间推导当前报名状态
func (e *Event) RegistrationStatus(now time.Time) RegistrationStatus {
	start, end := e.RegistrationStartAt, e.RegistrationEndAt
	switch {
	case start == nil && end == nil:
		return RegistrationUnknown
	case start != nil && now.Before(*start):
		return RegistrationNotStarted
	case end != nil && now.After(*end):
		return RegistrationClosed
	default:
		return RegistrationOpen
	}
}
