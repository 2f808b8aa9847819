package service

import (
	"context"

	"EventSync/internal/config"
	"EventSync/internal/interfaces"
	"EventSync/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// scrapeDetails 两阶段抓取：列表页发现链接，按上限顺序抓取详情页，请求间隔 DetailDelay
func (s *ScrapeService) scrapeDetails(ctx context.Context, site config.SiteConfig, parser interfaces.DetailParser, listing []byte, baseURL string) ([]*model.EventRecord, error) {
	entry := s.logger.WithFields(logrus.Fields{"site": site.SiteName(), "parser": parser.Name()})

	links := parser.DiscoverLinks(listing, baseURL)
	limit := s.cfg.DetailCapFor(site)
	if len(links) > limit {
		entry.WithFields(logrus.Fields{"links": len(links), "cap": limit}).Info("详情链接超过上限，已截断")
		links = links[:limit]
	}

	limiter := rate.NewLimiter(rate.Every(s.cfg.DetailDelay), 1)
	records := make([]*model.EventRecord, 0, len(links))
	for _, link := range links {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := s.fetcher.Fetch(ctx, link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			entry.WithError(err).WithField("url", link).Warn("详情页抓取失败，跳过")
			continue
		}
		pageURL := page.FinalURL
		if pageURL == "" {
			pageURL = link
		}
		rec, err := parser.ParseDetail(page.Body, pageURL)
		if err != nil || rec == nil {
			entry.WithError(err).WithField("url", link).Warn("详情页解析失败，跳过")
			continue
		}
		records = append(records, rec)
	}

	entry.WithFields(logrus.Fields{"links": len(links), "records": len(records)}).Info("详情页抓取完成")
	return records, nil
}
