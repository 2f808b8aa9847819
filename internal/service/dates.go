package service

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// DateParser 对报名时间原文做尽力解析；原文本身不做任何改写
type DateParser struct {
	now func() time.Time
}

func NewDateParser(now func() time.Time) *DateParser {
	if now == nil {
		now = time.Now
	}
	return &DateParser{now: now}
}

// Parse 无法识别时返回nil（入库为NULL）
func (p *DateParser) Parse(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	cfg := &dateparser.Configuration{
		CurrentTime:      p.now(),
		DefaultLanguages: []string{"en"},
	}
	dt, err := dateparser.Parse(cfg, text)
	if err != nil || dt.Time.IsZero() {
		return nil
	}
	t := dt.Time
	return &t
}
