package model

// SiteType 解析器类型枚举（与配置中的 parser 字段对应）
type SiteType string

const (
	SiteReskilll SiteType = "reskilll"
	SiteDevfolio SiteType = "devfolio"
	SiteListing  SiteType = "listing" // 通用两阶段：列表页发现链接 + 详情页抽取
)

// RegistrationStatus 报名状态
type RegistrationStatus string

const (
	RegistrationNotStarted RegistrationStatus = "not_started"
	RegistrationOpen       RegistrationStatus = "open"
	RegistrationClosed     RegistrationStatus = "closed"
	RegistrationUnknown    RegistrationStatus = "unknown"
)
