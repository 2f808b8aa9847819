package devfolio

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
	adapter.Register(model.SiteDevfolio, NewParser)
	adapter.RegisterDomains(model.SiteDevfolio, "devfolio.co")
}

// Parser devfolio 列表页解析器。页面标记变化频繁，只取卡片链接文本与地址
type Parser struct {
	logger *logrus.Logger
}

func NewParser(logger *logrus.Logger) interfaces.SiteParser {
	return &Parser{logger: logger}
}

func (p *Parser) Name() string { return string(model.SiteDevfolio) }

func (p *Parser) Parse(html []byte, baseURL string) ([]*model.EventRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("devfolio页面解析失败: %w", err)
	}

	records := make([]*model.EventRecord, 0)
	doc.Find("a.project-card-link").Each(func(_ int, card *goquery.Selection) {
		ex := htmlx.NewExtractor(card)
		rec := &model.EventRecord{SourceSite: p.Name()}

		rec.Title = htmlx.CleanText(card.Text())
		if rec.Title == "" {
			ex.Fallback("title", "卡片链接无文本")
		}
		if href, ok := card.Attr("href"); ok && href != "" {
			rec.Link = htmlx.AbsURL(baseURL, href)
		} else {
			ex.Fallback("link", "卡片无href，使用列表页")
			rec.Link = baseURL
		}
		rec.EventURL = rec.Link
		ex.Fallback("description", "列表页不提供")
		ex.Fallback("image_url", "列表页不提供")

		rec.RawSnippet = adapter.Snippet(card)
		rec.Fallbacks = ex.Fallbacks()
		records = append(records, rec)
	})

	p.logger.WithField("records", len(records)).Debug("devfolio解析完成")
	return records, nil
}
