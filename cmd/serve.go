package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EventSync/internal/api"
	"EventSync/internal/jobs"
	"EventSync/internal/metrics"
	"EventSync/internal/repository"
	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务（可选定时爬取）",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		return a.serve(cmd.Context())
	},
}

func (a *app) serve(ctx context.Context) error {
	if err := repository.AutoMigrate(a.db); err != nil {
		return fmt.Errorf("数据库表结构迁移失败: %w", err)
	}
	a.logger.Info("数据库表结构检查完成（不存在则已创建）")
	metrics.Init()

	if a.cfg.Schedule.Enabled {
		pool, err := pgxpool.New(ctx, a.cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("创建pgx连接池失败: %w", err)
		}
		defer pool.Close()
		if err := jobs.Migrate(ctx, pool, a.logger); err != nil {
			return err
		}
		scheduler, err := jobs.NewScheduler(pool, a.scraper, a.cfg.Schedule, a.logger)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				a.logger.WithError(err).Warn("定时任务停止超时")
			}
		}()
		a.logger.WithField("interval", a.cfg.Schedule.Interval).Info("定时爬取已启用")
	}

	// 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(a.cfg.Server.Mode)
	router := api.NewRouter(
		api.NewSyncHandler(a.scraper, a.logger),
		api.NewEventHandler(service.NewEventService(a.repo, a.logger), a.logger),
		a.cfg.Server.Mode != gin.ReleaseMode,
	)
	a.logger.Infof("Gin运行模式: %s", a.cfg.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("服务启动成功，端口：%d", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("收到退出信号，正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
