package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/services"
)

type AlertHandler struct {
	alerts *services.AlertEngine
}

func NewAlertHandler(alerts *services.AlertEngine) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListAlerts retrieves stock alerts with pagination and filtering
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	page, limit := paginationParams(c)

	var status *models.AlertStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.AlertStatus(statusStr)
		status = &s
	}
	includeResolved := c.Query("includeResolved") == "true"

	alerts, total, err := h.alerts.List(c.Request.Context(), tenantID.(string), status, includeResolved, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AlertListResponse{
		Success:    true,
		Data:       alerts,
		Pagination: paginationMeta(page, limit, total),
	})
}

// SyncAlert reconciles the alert state of one inventory record on demand
func (h *AlertHandler) SyncAlert(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid inventory record ID"},
		})
		return
	}

	alert, err := h.alerts.Sync(c.Request.Context(), tenantID.(string), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if alert == nil {
		c.JSON(http.StatusOK, models.AlertResponse{
			Success: true,
			Message: stringPtr("Stock level is healthy"),
		})
		return
	}

	c.JSON(http.StatusOK, models.AlertResponse{
		Success: true,
		Data:    alert,
	})
}
