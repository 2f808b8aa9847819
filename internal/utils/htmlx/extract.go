package htmlx

import (
	"fmt"
	"net/url"
	"strings"

	"EventSync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// Extractor 按字段做“带兜底”的抽取：首选选择器失败时依次尝试后备选择器，
// 全部失败返回空值，每次兜底都记录一条 FieldFallback
type Extractor struct {
	root      *goquery.Selection
	fallbacks []model.FieldFallback
}

func NewExtractor(root *goquery.Selection) *Extractor {
	return &Extractor{root: root}
}

// Text 取第一个命中选择器的文本
func (e *Extractor) Text(field string, selectors ...string) string {
	return e.first(field, selectors, func(s *goquery.Selection) string {
		return CleanText(s.Text())
	})
}

// Attr 取第一个命中选择器的属性值
func (e *Extractor) Attr(field, attr string, selectors ...string) string {
	return e.first(field, selectors, func(s *goquery.Selection) string {
		v, _ := s.Attr(attr)
		return strings.TrimSpace(v)
	})
}

// TextAt 取选择器第idx个匹配元素的文本（如第二个日期div）
func (e *Extractor) TextAt(field, selector string, idx int) string {
	nodes := e.root.Find(selector)
	if idx >= nodes.Length() {
		e.Fallback(field, fmt.Sprintf("%s[%d] 不存在", selector, idx))
		return ""
	}
	v := CleanText(nodes.Eq(idx).Text())
	if v == "" {
		e.Fallback(field, fmt.Sprintf("%s[%d] 为空", selector, idx))
	}
	return v
}

// Fallback 手动记录一次兜底
func (e *Extractor) Fallback(field, note string) {
	e.fallbacks = append(e.fallbacks, model.FieldFallback{Field: field, Note: note})
}

// Fallbacks 返回已记录的兜底
func (e *Extractor) Fallbacks() []model.FieldFallback {
	return e.fallbacks
}

func (e *Extractor) first(field string, selectors []string, get func(*goquery.Selection) string) string {
	for i, sel := range selectors {
		node := e.root.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if v := get(node); v != "" {
			if i > 0 {
				e.Fallback(field, "使用后备选择器 "+sel)
			}
			return v
		}
	}
	e.Fallback(field, "未找到: "+strings.Join(selectors, ", "))
	return ""
}

// CleanText 折叠空白
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Meta 依次读取 <meta property|name=...> 的content
func Meta(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			v, ok := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, key)).First().Attr("content")
			if ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// AbsURL 以base解析相对地址，失败时原样返回ref
func AbsURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// SameHost 两个地址是否同host（忽略www前缀）
func SameHost(a, b string) bool {
	ua, err1 := url.Parse(a)
	ub, err2 := url.Parse(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return strings.TrimPrefix(ua.Hostname(), "www.") == strings.TrimPrefix(ub.Hostname(), "www.")
}
