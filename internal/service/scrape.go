package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/metrics"
	"EventSync/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	errNoFetcher    = errors.New("未配置页面抓取器")
	errNoParsers    = errors.New("未配置解析器注册表")
	errNoRepository = errors.New("未配置活动存储")
)

// ScrapeService 爬取编排：站点顺序执行，抓取→解析→规范化→逐条入库
type ScrapeService struct {
	cfg        config.ScrapeConfig
	fetcher    interfaces.Fetcher
	parsers    interfaces.ParserResolver
	normalizer *Normalizer
	persister  *Persister
	logger     *logrus.Logger
	now        func() time.Time
}

func NewScrapeService(cfg config.ScrapeConfig, fetcher interfaces.Fetcher, parsers interfaces.ParserResolver, repo interfaces.EventRepository, logger *logrus.Logger) *ScrapeService {
	s := &ScrapeService{
		cfg:     cfg,
		fetcher: fetcher,
		parsers: parsers,
		logger:  logger,
		now:     time.Now,
	}
	s.normalizer = NewNormalizer(NewDateParser(func() time.Time { return s.now() }), logger)
	if repo != nil {
		s.persister = NewPersister(repo, logger)
	}
	return s
}

// Run 执行一次完整爬取。站点级失败写入结果，只有意外错误才返回error
func (s *ScrapeService) Run(ctx context.Context) (result *model.ScrapeRunResult, err error) {
	started := s.now()
	defer func() {
		if p := recover(); p != nil {
			s.logger.WithField("panic", p).Error("爬取过程异常")
			result, err = nil, fmt.Errorf("爬取过程异常: %v", p)
		}
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		metrics.ScrapeRunsTotal.WithLabelValues(outcome).Inc()
		metrics.ScrapeRunDuration.Observe(time.Since(started).Seconds())
	}()

	switch {
	case s.fetcher == nil:
		return nil, errNoFetcher
	case s.parsers == nil:
		return nil, errNoParsers
	case s.persister == nil:
		return nil, errNoRepository
	}

	result = model.NewScrapeRunResult(started)
	sites := s.cfg.EnabledSites()
	s.logger.WithField("sites", len(sites)).Info("开始爬取活动")

	for _, site := range sites {
		if err := s.scrapeSite(ctx, site, result); err != nil {
			return nil, fmt.Errorf("爬取%s中断: %w", site.SiteName(), err)
		}
	}

	result.FinishedAt = s.now()
	s.logger.WithFields(logrus.Fields{
		"total":          result.TotalCount,
		"new":            result.NewCount,
		"site_errors":    len(result.SiteErrors),
		"zero_results":   len(result.ZeroResultSites),
		"persist_errors": result.PersistErrorCount,
	}).Info("爬取完成")
	return result, nil
}

// scrapeSite 只在context取消时返回error
func (s *ScrapeService) scrapeSite(ctx context.Context, site config.SiteConfig, result *model.ScrapeRunResult) error {
	name := site.SiteName()
	entry := s.logger.WithFields(logrus.Fields{"site": name, "url": site.URL})

	page, err := s.fetcher.Fetch(ctx, site.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		entry.WithError(err).Error("列表页抓取失败")
		metrics.SiteFetchTotal.WithLabelValues(name, "failed").Inc()
		result.AddSiteError(name, site.URL, err)
		return nil
	}
	metrics.SiteFetchTotal.WithLabelValues(name, "ok").Inc()

	parser, ok := s.parsers.ParserFor(site)
	if !ok {
		entry.WithField("zero_results", true).Warn("站点未匹配到解析器，零条记录")
		s.markZero(name, result)
		return nil
	}
	entry = entry.WithField("parser", parser.Name())

	baseURL := page.FinalURL
	if baseURL == "" {
		baseURL = site.URL
	}

	var records []*model.EventRecord
	if dp, ok := parser.(interfaces.DetailParser); ok && s.cfg.DetailCapFor(site) > 0 {
		records, err = s.scrapeDetails(ctx, site, dp, page.Body, baseURL)
	} else {
		records, err = parser.Parse(page.Body, baseURL)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		entry.WithError(err).Error("页面解析失败")
		result.AddSiteError(name, site.URL, err)
		return nil
	}

	records = s.normalizer.Normalize(records, site.URL, name)
	if len(records) == 0 {
		entry.WithField("zero_results", true).Warn("页面未解析出活动，请检查站点标记是否变化")
		s.markZero(name, result)
		return nil
	}
	entry.WithField("records", len(records)).Info("站点解析完成")

	return s.persister.persistAll(ctx, name, records, result)
}

func (s *ScrapeService) markZero(name string, result *model.ScrapeRunResult) {
	result.ZeroResultSites = append(result.ZeroResultSites, name)
	metrics.SiteZeroResultsTotal.WithLabelValues(name).Inc()
}

func persistErrors(site string) prometheus.Counter {
	return metrics.PersistErrorsTotal.WithLabelValues(site)
}

func recordUpserted(site string, created bool) prometheus.Counter {
	op := "updated"
	if created {
		op = "created"
	}
	return metrics.RecordsUpsertedTotal.WithLabelValues(site, op)
}
