package adapter

import (
	"github.com/PuerkitoBio/goquery"
)

const snippetLimit = 200

// Snippet 截取节点HTML的前200个字符，用于排查标记变化
func Snippet(s *goquery.Selection) string {
	html, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	runes := []rune(html)
	if len(runes) > snippetLimit {
		runes = runes[:snippetLimit]
	}
	return string(runes)
}
