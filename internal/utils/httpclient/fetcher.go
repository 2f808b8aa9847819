package httpclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ErrRobotsDisallowed robots.txt 禁止抓取（不重试）
var ErrRobotsDisallowed = errors.New("robots.txt disallows fetching")

// FetchError 重试耗尽后的最终抓取失败
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int // 0 表示未拿到响应（超时、DNS、连接重置等）
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed after %d attempt(s): status %d", e.URL, e.Attempts, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher 基于resty的页面抓取器：传输错误或非2xx时按 attempt*backoff 线性退避重试
type Fetcher struct {
	client *resty.Client
	robots *robotsGate
	cfg    config.ScrapeConfig
	logger *logrus.Logger
}

var _ interfaces.Fetcher = (*Fetcher)(nil)

func NewFetcher(cfg config.ScrapeConfig, logger *logrus.Logger) *Fetcher {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = cfg.Backoff * time.Duration(cfg.MaxAttempts)
	}
	transport := NewTransport(&cfg, logger)

	client := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetRetryCount(cfg.MaxAttempts - 1).
		SetRetryWaitTime(cfg.Backoff).
		SetRetryMaxWaitTime(cfg.MaxBackoff).
		SetRetryAfter(linearBackoff(cfg.Backoff)).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// r为nil时是请求构建阶段的错误，不属于网络失败
			return r != nil && (err != nil || !r.IsSuccess())
		}).
		AddRetryHook(func(r *resty.Response, err error) {
			if r == nil || r.Request == nil {
				return
			}
			entry := logger.WithFields(logrus.Fields{
				"url":     r.Request.URL,
				"attempt": r.Request.Attempt,
			})
			if err != nil {
				entry.WithError(err).Warn("请求失败，准备重试")
				return
			}
			entry.WithField("status", r.StatusCode()).Warn("响应非2xx，准备重试")
		})

	f := &Fetcher{client: client, cfg: cfg, logger: logger}
	if cfg.RespectRobots {
		f.robots = newRobotsGate(transport, cfg.Timeout, cfg.UserAgent, logger)
	}
	return f
}

// linearBackoff 第n次失败后等待 n*base
func linearBackoff(base time.Duration) resty.RetryAfterFunc {
	return func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
		attempt := 1
		if r != nil && r.Request != nil && r.Request.Attempt > 0 {
			attempt = r.Request.Attempt
		}
		wait := time.Duration(attempt) * base
		if wait <= 0 {
			wait = time.Nanosecond // 返回0会回落到resty的指数抖动退避
		}
		return wait, nil
	}
}

// Fetch 抓取页面，永远在有限次尝试后返回
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*interfaces.RawPage, error) {
	if f.robots != nil && !f.robots.Allowed(ctx, rawURL) {
		return nil, &FetchError{URL: rawURL, Err: ErrRobotsDisallowed}
	}

	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	attempts := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempts = resp.Request.Attempt
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FetchError{URL: rawURL, Attempts: attempts, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &FetchError{
			URL:        rawURL,
			Attempts:   attempts,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	finalURL := rawURL
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}
	f.logger.WithFields(logrus.Fields{
		"url":      rawURL,
		"status":   resp.StatusCode(),
		"attempts": attempts,
		"bytes":    len(resp.Body()),
	}).Debug("页面抓取成功")

	return &interfaces.RawPage{
		URL:        rawURL,
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Attempts:   attempts,
	}, nil
}
