package reskilll

import (
	"bytes"
	"fmt"

	"EventSync/internal/adapter"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/utils/htmlx"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(model.SiteReskilll, NewParser)
	adapter.RegisterDomains(model.SiteReskilll, "reskilll.com")
}

// Parser reskilll.com 列表页解析器（每个活动一个 div.hackathonCard）
type Parser struct {
	logger *logrus.Logger
}

func NewParser(logger *logrus.Logger) interfaces.SiteParser {
	return &Parser{logger: logger}
}

func (p *Parser) Name() string { return string(model.SiteReskilll) }

func (p *Parser) Parse(html []byte, baseURL string) ([]*model.EventRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("reskilll页面解析失败: %w", err)
	}

	records := make([]*model.EventRecord, 0)
	doc.Find("div.hackathonCard").Each(func(_ int, card *goquery.Selection) {
		ex := htmlx.NewExtractor(card)
		rec := &model.EventRecord{SourceSite: p.Name()}

		rec.Title = ex.Text("title", "a.allhackname", ".eventName", "a[href]")
		rec.ImageURL = htmlx.AbsURL(baseURL, ex.Attr("image_url", "src", "img.allhacksbanner", "img"))
		rec.Description = ex.Text("description", "div.eventDescription")
		rec.RegistrationStart = ex.TextAt("registration_start", "div.hackresgiterdate", 0)
		rec.RegistrationEnd = ex.TextAt("registration_end", "div.hackresgiterdate", 1)
		rec.Link = htmlx.AbsURL(baseURL, ex.Attr("link", "href", "a.allhackname", "a[href]"))
		rec.EventURL = rec.Link

		rec.RawSnippet = adapter.Snippet(card)
		rec.Fallbacks = ex.Fallbacks()
		records = append(records, rec)
	})

	p.logger.WithField("records", len(records)).Debug("reskilll解析完成")
	return records, nil
}
