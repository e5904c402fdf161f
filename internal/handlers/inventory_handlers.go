package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/services"
)

type InventoryHandler struct {
	inventory *services.InventoryService
	removals  *services.RemovalService
	margins   *services.MarginService
}

func NewInventoryHandler(inventory *services.InventoryService, removals *services.RemovalService, margins *services.MarginService) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		removals:  removals,
		margins:   margins,
	}
}

// respondServiceError translates service sentinel errors to HTTP envelopes
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
	case errors.Is(err, services.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Inventory record not found"},
		})
	case errors.Is(err, services.ErrDuplicateRecord):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "ALREADY_EXISTS", Message: "Inventory record already exists for this store and product"},
		})
	case errors.Is(err, services.ErrInsufficientStock):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INSUFFICIENT_STOCK", Message: err.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INTERNAL_ERROR", Message: "Operation failed"},
		})
	}
}

func requestUserID(c *gin.Context) *string {
	userID, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	s, ok := userID.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func paginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}

func paginationMeta(page, limit int, total int64) *models.PaginationMeta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// CreateInventory creates an inventory record for a (store, product) pair
func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	record, err := h.inventory.Create(c.Request.Context(), tenantID.(string), requestUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.InventoryResponse{
		Success: true,
		Data:    record,
		Message: stringPtr("Inventory record created successfully"),
	})
}

// GetInventory retrieves an inventory record by ID
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid inventory record ID"},
		})
		return
	}

	record, err := h.inventory.GetByID(c.Request.Context(), tenantID.(string), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryResponse{
		Success: true,
		Data:    record,
	})
}

// GetInventoryByKey retrieves the record for a (store, product) pair
func (h *InventoryHandler) GetInventoryByKey(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	storeID, err := uuid.Parse(c.Query("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid store ID"},
		})
		return
	}
	productID, err := uuid.Parse(c.Query("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}

	record, err := h.inventory.GetByKey(c.Request.Context(), tenantID.(string), storeID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryResponse{
		Success: true,
		Data:    record,
	})
}

// ListInventory retrieves inventory records with pagination
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	page, limit := paginationParams(c)

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

	records, total, err := h.inventory.List(c.Request.Context(), tenantID.(string), storeID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryListResponse{
		Success:    true,
		Data:       records,
		Pagination: paginationMeta(page, limit, total),
	})
}

// UpdateInventory applies quantity, threshold and cost changes
func (h *InventoryHandler) UpdateInventory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid inventory record ID"},
		})
		return
	}

	var req models.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	record, err := h.inventory.Update(c.Request.Context(), tenantID.(string), requestUserID(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryResponse{
		Success: true,
		Data:    record,
		Message: stringPtr("Inventory record updated successfully"),
	})
}

// DeleteInventory removes an inventory record and its cost layers
func (h *InventoryHandler) DeleteInventory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid inventory record ID"},
		})
		return
	}

	if err := h.inventory.Delete(c.Request.Context(), tenantID.(string), requestUserID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Inventory record deleted successfully"),
	})
}

// AdjustStock applies a signed stock delta, upserting a missing record
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	record, err := h.inventory.Adjust(c.Request.Context(), tenantID.(string), requestUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InventoryResponse{
		Success: true,
		Data:    record,
		Message: stringPtr("Stock adjusted successfully"),
	})
}

// RemoveStock removes stock for a non-sale reason with loss/refund accounting
func (h *InventoryHandler) RemoveStock(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.RemoveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	result, err := h.removals.RemoveStock(c.Request.Context(), tenantID.(string), requestUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RemovalResponse{
		Success: true,
		Data:    result,
	})
}

// ListMovements reads the stock-movement audit ledger
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	page, limit := paginationParams(c)

	query := models.MovementQuery{Page: page, Limit: limit}

	if storeStr := c.Query("storeId"); storeStr != "" {
		id, err := uuid.Parse(storeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid store ID"},
			})
			return
		}
		query.StoreID = &id
	}
	if productStr := c.Query("productId"); productStr != "" {
		id, err := uuid.Parse(productStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
			})
			return
		}
		query.ProductID = &id
	}
	if actionStr := c.Query("actionType"); actionStr != "" {
		action := models.MovementAction(actionStr)
		query.ActionType = &action
	}
	if userStr := c.Query("userId"); userStr != "" {
		query.UserID = &userStr
	}
	if startStr := c.Query("startDate"); startStr != "" {
		if t, err := time.Parse(time.RFC3339, startStr); err == nil {
			query.StartDate = &t
		}
	}
	if endStr := c.Query("endDate"); endStr != "" {
		if t, err := time.Parse(time.RFC3339, endStr); err == nil {
			query.EndDate = &t
		}
	}

	movements, total, err := h.inventory.Movements(c.Request.Context(), tenantID.(string), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MovementListResponse{
		Success:    true,
		Data:       movements,
		Pagination: paginationMeta(page, limit, total),
	})
}

// ListLayers returns the remaining FIFO cost layers for a key, oldest first
func (h *InventoryHandler) ListLayers(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	storeID, err := uuid.Parse(c.Query("storeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid store ID"},
		})
		return
	}
	productID, err := uuid.Parse(c.Query("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid product ID"},
		})
		return
	}

	layers, err := h.inventory.Layers(c.Request.Context(), tenantID.(string), storeID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LayerListResponse{
		Success: true,
		Data:    layers,
	})
}

// AnalyzeMargin evaluates a proposed sale price against current cost layers
func (h *InventoryHandler) AnalyzeMargin(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.MarginAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "VALIDATION_ERROR", Message: err.Error()},
		})
		return
	}

	analysis, err := h.margins.AnalyzeMargin(c.Request.Context(), tenantID.(string), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MarginResponse{
		Success: true,
		Data:    analysis,
	})
}

// Helper function for string pointer
func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
