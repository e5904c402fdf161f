package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/services"
)

type ReportHandler struct {
	reports *services.ReportingService
}

func NewReportHandler(reports *services.ReportingService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetProfitLoss reconciles sales, refunds and inventory valuation for a store
// over a time window.
func (h *ReportHandler) GetProfitLoss(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	storeID, err := uuid.Parse(c.Query("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid store ID"},
		})
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_DATE", Message: "start must be RFC3339"},
		})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_DATE", Message: "end must be RFC3339"},
		})
		return
	}

	result, err := h.reports.GetProfitLoss(c.Request.Context(), tenantID.(string), storeID, start, end)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfitLossResponse{
		Success: true,
		Data:    result,
	})
}

// GetPriceHistory returns the merged price/cost timeline for a product
func (h *ReportHandler) GetPriceHistory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	productID, err := uuid.Parse(c.Query("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}

	var storeID *uuid.UUID
	if storeStr := c.Query("storeId"); storeStr != "" {
		id, err := uuid.Parse(storeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid store ID"},
			})
			return
		}
		storeID = &id
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := h.reports.PriceHistory(c.Request.Context(), tenantID.(string), productID, storeID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PriceHistoryResponse{
		Success: true,
		Data:    entries,
	})
}

// GetSummary returns the org-wide inventory rollup for dashboards
func (h *ReportHandler) GetSummary(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	summary, err := h.reports.Summary(c.Request.Context(), tenantID.(string))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SummaryResponse{
		Success: true,
		Data:    summary,
	})
}
