package api

import (
	"context"
	"fmt"
	"net/http"

	"EventSync/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScrapeRunner 触发一次完整爬取
type ScrapeRunner interface {
	Run(ctx context.Context) (*model.ScrapeRunResult, error)
}

type SyncHandler struct {
	runner ScrapeRunner
	logger *logrus.Logger
}

func NewSyncHandler(runner ScrapeRunner, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{runner: runner, logger: logger}
}

// SyncEventsHandler 同步所有已配置站点的活动
// @Summary 爬取并入库活动
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /sync/events [post]
func (h *SyncHandler) SyncEventsHandler(c *gin.Context) {
	// 客户端断开不中止已开始的爬取
	result, err := h.runner.Run(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		h.logger.WithError(err).Error("同步活动失败")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "scrape run failed",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":              http.StatusOK,
		"message":             fmt.Sprintf("Successfully scraped %d events. Found %d new events!", result.TotalCount, result.NewCount),
		"events":              result.Items,
		"new_event_count":     result.NewCount,
		"total_event_count":   result.TotalCount,
		"site_errors":         result.SiteErrors,
		"zero_result_sites":   result.ZeroResultSites,
		"persist_error_count": result.PersistErrorCount,
	})
}
