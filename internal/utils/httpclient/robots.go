package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// robotsGate 按host缓存robots.txt；404或无法访问视为允许
type robotsGate struct {
	client    *resty.Client
	userAgent string
	logger    *logrus.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData // nil 表示允许全部
}

func newRobotsGate(transport http.RoundTripper, timeout time.Duration, userAgent string, logger *logrus.Logger) *robotsGate {
	client := resty.New().
		SetTransport(transport).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetRedirectPolicy(resty.NoRedirectPolicy())
	return &robotsGate{
		client:    client,
		userAgent: userAgent,
		logger:    logger,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed 判断UA是否允许抓取该URL
func (g *robotsGate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	g.mu.Lock()
	data, ok := g.cache[u.Host]
	g.mu.Unlock()
	if !ok {
		data = g.load(ctx, u)
		g.mu.Lock()
		g.cache[u.Host] = data
		g.mu.Unlock()
	}
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, g.userAgent)
}

func (g *robotsGate) load(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String()
	entry := g.logger.WithField("url", robotsURL)

	resp, err := g.client.R().SetContext(ctx).Get(robotsURL)
	if err != nil || resp.StatusCode() >= http.StatusInternalServerError {
		entry.WithError(err).Warn("robots.txt 无法访问，按允许处理")
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode(), resp.Body())
	if err != nil {
		entry.WithError(err).Warn("robots.txt 解析失败，按允许处理")
		return nil
	}
	return data
}
