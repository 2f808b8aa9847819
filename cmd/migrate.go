package main

import (
	"fmt"

	"EventSync/internal/jobs"
	"EventSync/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建活动表与river任务表",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := repository.AutoMigrate(a.db); err != nil {
			return fmt.Errorf("数据库表结构迁移失败: %w", err)
		}
		a.logger.Info("活动表迁移完成")

		pool, err := pgxpool.New(cmd.Context(), a.cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("创建pgx连接池失败: %w", err)
		}
		defer pool.Close()
		return jobs.Migrate(cmd.Context(), pool, a.logger)
	},
}
