package api

import (
	"errors"
	"net/http"
	"strconv"

	"EventSync/internal/repository"
	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EventHandler 提供给前端的活动查询接口
type EventHandler struct {
	eventService *service.EventService
	logger       *logrus.Logger
}

func NewEventHandler(svc *service.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{eventService: svc, logger: logger}
}

// ListEvents 活动列表接口
// GET /api/events?page=1&page_size=20
func (h *EventHandler) ListEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.eventService.ListEvents(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("ListEvents failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetEventDetail 活动详情
// GET /api/events/:event_uuid
func (h *EventHandler) GetEventDetail(c *gin.Context) {
	eventUUID := c.Param("event_uuid")
	if eventUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_uuid is required"})
		return
	}

	result, err := h.eventService.GetEvent(c.Request.Context(), eventUUID)
	if errors.Is(err, repository.ErrEventNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetEventDetail failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
