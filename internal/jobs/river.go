package jobs

import (
	"context"
	"fmt"

	"EventSync/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"
	"github.com/sirupsen/logrus"
)

// Scheduler 基于river的定时爬取
type Scheduler struct {
	client *river.Client[pgx.Tx]
	logger *logrus.Logger
}

// NewPeriodicJobs 本服务的定时任务
func NewPeriodicJobs(cfg config.ScheduleConfig) []*river.PeriodicJob {
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.Interval),
			func() (river.JobArgs, *river.InsertOpts) {
				opts := ScrapeEventsInsertOpts()
				return ScrapeEventsArgs{Trigger: "schedule"}, &opts
			},
			&river.PeriodicJobOpts{RunOnStart: cfg.RunOnStart},
		),
	}
}

// NewClientConfig 单worker队列：同一进程内的定时爬取串行执行
func NewClientConfig(workers *river.Workers, periodicJobs []*river.PeriodicJob, logger *logrus.Logger) *river.Config {
	return &river.Config{
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
		},
		ErrorHandler: &ErrorHandler{logger: logger},
	}
}

func NewScheduler(pool *pgxpool.Pool, runner ScrapeRunner, cfg config.ScheduleConfig, logger *logrus.Logger) (*Scheduler, error) {
	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, NewScrapeEventsWorker(runner, logger)); err != nil {
		return nil, fmt.Errorf("注册爬取任务失败: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), NewClientConfig(workers, NewPeriodicJobs(cfg), logger))
	if err != nil {
		return nil, fmt.Errorf("创建river客户端失败: %w", err)
	}
	return &Scheduler{client: client, logger: logger}, nil
}

// Start 启动任务处理（非阻塞）
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("启动定时任务失败: %w", err)
	}
	s.logger.Info("定时爬取任务已启动")
	return nil
}

// Stop 等待进行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	return s.client.Stop(ctx)
}

// Migrate 执行river自身的表结构迁移
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *logrus.Logger) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("创建river迁移器失败: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("river迁移失败: %w", err)
	}
	for _, v := range res.Versions {
		logger.WithField("version", v.Version).Info("river迁移已应用")
	}
	return nil
}

// ErrorHandler 任务失败与panic统一记录到logrus
type ErrorHandler struct {
	logger *logrus.Logger
}

func (h *ErrorHandler) HandleError(ctx context.Context, job *rivertype.JobRow, err error) *river.ErrorHandlerResult {
	h.logger.WithError(err).WithFields(logrus.Fields{
		"job_id":       job.ID,
		"kind":         job.Kind,
		"attempt":      job.Attempt,
		"max_attempts": job.MaxAttempts,
	}).Error("定时任务执行失败")
	return nil
}

func (h *ErrorHandler) HandlePanic(ctx context.Context, job *rivertype.JobRow, panicVal any, trace string) *river.ErrorHandlerResult {
	h.logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"kind":   job.Kind,
		"panic":  panicVal,
		"trace":  trace,
	}).Error("定时任务panic")
	return nil
}
