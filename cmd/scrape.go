package main

import (
	"encoding/json"
	"fmt"
	"os"

	"EventSync/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scrapeJSON bool

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "以JSON输出本次爬取结果")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--json]",
	Short: "立即执行一次爬取",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := repository.AutoMigrate(a.db); err != nil {
			return fmt.Errorf("数据库表结构迁移失败: %w", err)
		}
		result, err := a.scraper.Run(cmd.Context())
		if err != nil {
			return err
		}

		if scrapeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		for _, se := range result.SiteErrors {
			a.logger.WithFields(logrus.Fields{"site": se.Site, "url": se.URL}).Warn(se.Error)
		}
		fmt.Printf("Successfully scraped %d events. Found %d new events!\n", result.TotalCount, result.NewCount)
		return nil
	},
}
