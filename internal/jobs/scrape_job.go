package jobs

import (
	"context"
	"time"

	"EventSync/internal/model"

	"github.com/riverqueue/river"
	"github.com/sirupsen/logrus"
)

const JobKindScrapeEvents = "scrape_events"

// 爬取本身已对站点级失败做了兜底，任务级失败等下一个周期即可
const ScrapeEventsMaxAttempts = 1

const scrapeJobTimeout = 30 * time.Minute

// ScrapeRunner 触发一次完整爬取
type ScrapeRunner interface {
	Run(ctx context.Context) (*model.ScrapeRunResult, error)
}

type ScrapeEventsArgs struct {
	Trigger string `json:"trigger,omitempty"`
}

func (ScrapeEventsArgs) Kind() string { return JobKindScrapeEvents }

func ScrapeEventsInsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: ScrapeEventsMaxAttempts}
}

type ScrapeEventsWorker struct {
	river.WorkerDefaults[ScrapeEventsArgs]
	runner ScrapeRunner
	logger *logrus.Logger
}

func NewScrapeEventsWorker(runner ScrapeRunner, logger *logrus.Logger) *ScrapeEventsWorker {
	return &ScrapeEventsWorker{runner: runner, logger: logger}
}

func (w *ScrapeEventsWorker) Timeout(*river.Job[ScrapeEventsArgs]) time.Duration {
	return scrapeJobTimeout
}

func (w *ScrapeEventsWorker) Work(ctx context.Context, job *river.Job[ScrapeEventsArgs]) error {
	result, err := w.runner.Run(ctx)
	if err != nil {
		return err
	}
	w.logger.WithFields(logrus.Fields{
		"job_id":         job.ID,
		"trigger":        job.Args.Trigger,
		"total":          result.TotalCount,
		"new":            result.NewCount,
		"site_errors":    len(result.SiteErrors),
		"zero_results":   result.ZeroResultSites,
		"persist_errors": result.PersistErrorCount,
	}).Info("定时爬取完成")
	return nil
}
