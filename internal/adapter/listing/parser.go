package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"EventSync/internal/adapter"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"
	"EventSync/internal/utils/htmlx"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(model.SiteListing, NewParser)
	adapter.RegisterDomains(model.SiteListing, "mlh.io", "hackerearth.com", "unstop.com")
}

var (
	// 优先查找"进行中/即将开始"区块
	activeSections = []string{
		"#upcoming", "#active", "#ongoing",
		"section.upcoming", "section.active", "section.ongoing",
		"[class*=upcoming]", "[class*=ongoing]", "[data-section=upcoming]",
	}
	// 第二层：常见卡片结构
	cardSelectors = []string{
		".event-wrapper a[href]", ".event a[href]", ".card a[href]",
		"article a[href]", "li.event a[href]",
	}

	pastMarkers = []string{"past", "previous", "archive", "ended", "completed"}
	yearPattern = regexp.MustCompile(`(?:^|[^0-9])(20[0-9]{2})(?:[^0-9]|$)`)
)

// Parser 通用两阶段解析器：列表页发现详情链接，再逐个详情页抽取
type Parser struct {
	logger *logrus.Logger
	now    func() time.Time
}

var _ interfaces.DetailParser = (*Parser)(nil)

func NewParser(logger *logrus.Logger) interfaces.SiteParser {
	return &Parser{logger: logger, now: time.Now}
}

func (p *Parser) Name() string { return string(model.SiteListing) }

// Parse 不抓详情页时的退化模式：每个发现的链接产出一条仅含标题和链接的记录
func (p *Parser) Parse(html []byte, baseURL string) ([]*model.EventRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("列表页解析失败: %w", err)
	}

	records := make([]*model.EventRecord, 0)
	for _, a := range p.discover(doc, baseURL) {
		ex := htmlx.NewExtractor(a.node)
		rec := &model.EventRecord{
			Title:      htmlx.CleanText(a.node.Text()),
			Link:       a.url,
			EventURL:   a.url,
			SourceSite: p.Name(),
			RawSnippet: adapter.Snippet(a.node),
		}
		if rec.Title == "" {
			t, _ := a.node.Attr("title")
			rec.Title = strings.TrimSpace(t)
			ex.Fallback("title", "链接无文本，使用title属性")
		}
		ex.Fallback("description", "未抓取详情页")
		ex.Fallback("image_url", "未抓取详情页")
		rec.Fallbacks = ex.Fallbacks()
		records = append(records, rec)
	}
	return records, nil
}

// DiscoverLinks 按优先级发现详情页链接（同站、去重、排除往期活动）
func (p *Parser) DiscoverLinks(html []byte, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		p.logger.WithError(err).WithField("url", baseURL).Warn("列表页解析失败，未发现链接")
		return []string{}
	}
	anchors := p.discover(doc, baseURL)
	links := make([]string, 0, len(anchors))
	for _, a := range anchors {
		links = append(links, a.url)
	}
	return links
}

type anchor struct {
	url  string
	node *goquery.Selection
}

func (p *Parser) discover(doc *goquery.Document, baseURL string) []anchor {
	// 第一层：进行中/即将开始区块
	for _, sel := range activeSections {
		if found := p.collect(doc.Find(sel).Find("a[href]"), baseURL, false); len(found) > 0 {
			p.logger.WithFields(logrus.Fields{"url": baseURL, "selector": sel, "links": len(found)}).Debug("从活动区块发现链接")
			return found
		}
	}
	// 第二层：卡片结构
	if found := p.collect(doc.Find(strings.Join(cardSelectors, ", ")), baseURL, false); len(found) > 0 {
		p.logger.WithFields(logrus.Fields{"url": baseURL, "links": len(found)}).Debug("从卡片结构发现链接")
		return found
	}
	// 兜底：全页扫描包含event/hack的链接
	found := p.collect(doc.Find("a[href]"), baseURL, true)
	p.logger.WithFields(logrus.Fields{"url": baseURL, "links": len(found)}).Debug("全页扫描发现链接")
	return found
}

func (p *Parser) collect(nodes *goquery.Selection, baseURL string, keywordOnly bool) []anchor {
	seen := make(map[string]struct{})
	out := make([]anchor, 0)
	nodes.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		abs := htmlx.AbsURL(baseURL, href)
		if !htmlx.SameHost(baseURL, abs) || p.isPast(abs) {
			return
		}
		if keywordOnly {
			lower := strings.ToLower(abs)
			if !strings.Contains(lower, "event") && !strings.Contains(lower, "hack") {
				return
			}
		}
		key := strings.TrimSuffix(stripFragment(abs), "/")
		if key == strings.TrimSuffix(stripFragment(baseURL), "/") {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, anchor{url: abs, node: a})
	})
	return out
}

// isPast URL中带往期标记或早于今年的年份
func (p *Parser) isPast(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	u, err := url.Parse(lower)
	if err == nil {
		lower = u.Path + "?" + u.RawQuery
	}
	for _, m := range pastMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	current := p.now().Year()
	for _, m := range yearPattern.FindAllStringSubmatch(lower, -1) {
		if y, err := strconv.Atoi(m[1]); err == nil && y < current {
			return true
		}
	}
	return false
}

// ParseDetail 详情页抽取：meta标签优先，结构兜底
func (p *Parser) ParseDetail(html []byte, pageURL string) (*model.EventRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("详情页解析失败: %w", err)
	}
	ex := htmlx.NewExtractor(doc.Selection)
	rec := &model.EventRecord{
		SourceSite: p.Name(),
		Link:       pageURL,
		EventURL:   pageURL,
	}

	if rec.Title = htmlx.Meta(doc, "og:title", "twitter:title"); rec.Title == "" {
		rec.Title = ex.Text("title", "h1", "title")
	}
	if rec.Description = htmlx.Meta(doc, "og:description", "description", "twitter:description"); rec.Description == "" {
		rec.Description = ex.Text("description", "main p", "article p", "p")
	}
	image := htmlx.Meta(doc, "og:image", "twitter:image")
	if image == "" {
		image = ex.Attr("image_url", "src", "main img", "img")
	}
	rec.ImageURL = htmlx.AbsURL(pageURL, image)

	times := doc.Find("time[datetime]")
	rec.RegistrationStart = timeAttr(times.Eq(0))
	rec.RegistrationEnd = timeAttr(times.Eq(1))
	if rec.RegistrationStart == "" {
		ex.Fallback("registration_start", "无 time[datetime]")
	}
	if rec.RegistrationEnd == "" {
		ex.Fallback("registration_end", "无第二个 time[datetime]")
	}

	rec.RawSnippet = adapter.Snippet(doc.Find("head").First())
	rec.Fallbacks = ex.Fallbacks()
	return rec, nil
}

func timeAttr(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	v, _ := s.Attr("datetime")
	return strings.TrimSpace(v)
}

func stripFragment(raw string) string {
	if i := strings.Index(raw, "#"); i >= 0 {
		return raw[:i]
	}
	return raw
}
