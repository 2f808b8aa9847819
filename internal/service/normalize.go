package service

import (
	"html"
	"strings"

	"EventSync/internal/model"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

// Normalizer 入库前的记录规范化
type Normalizer struct {
	policy *bluemonday.Policy
	dates  *DateParser
	logger *logrus.Logger
}

func NewNormalizer(dates *DateParser, logger *logrus.Logger) *Normalizer {
	return &Normalizer{
		policy: bluemonday.StrictPolicy(),
		dates:  dates,
		logger: logger,
	}
}

// Normalize 保证link非空、描述/图片为显式空串、标注来源站点；
// 标题为空的记录无法作为自然键，直接丢弃
func (n *Normalizer) Normalize(records []*model.EventRecord, sourceURL, siteName string) []*model.EventRecord {
	out := make([]*model.EventRecord, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		// 标题已是解码后的文本，字面量"<...>"属于标题本身
		rec.Title = collapse(rec.Title)
		if rec.Title == "" {
			n.logger.WithFields(logrus.Fields{
				"site":    siteName,
				"url":     sourceURL,
				"snippet": rec.RawSnippet,
			}).Warn("记录缺少标题，已丢弃")
			continue
		}
		rec.Description = n.plain(rec.Description)
		rec.ImageURL = strings.TrimSpace(rec.ImageURL)

		rec.Link = strings.TrimSpace(rec.Link)
		if rec.Link == "" {
			rec.Link = sourceURL
			if !rec.FellBack("link") {
				rec.Fallbacks = append(rec.Fallbacks, model.FieldFallback{Field: "link", Note: "使用列表页地址"})
			}
		}
		rec.EventURL = strings.TrimSpace(rec.EventURL)

		if rec.SourceSite == "" {
			rec.SourceSite = siteName
		}

		// 原文保持不变，仅额外填充解析结果
		rec.RegistrationStartAt = n.dates.Parse(rec.RegistrationStart)
		rec.RegistrationEndAt = n.dates.Parse(rec.RegistrationEnd)

		out = append(out, rec)
	}
	return out
}

// plain 去除HTML标签并折叠空白（描述可能来自meta属性中的原始标记）
func (n *Normalizer) plain(s string) string {
	return collapse(html.UnescapeString(n.policy.Sanitize(s)))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
