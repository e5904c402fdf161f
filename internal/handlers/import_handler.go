package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"pos-backoffice-service/internal/models"
	"pos-backoffice-service/internal/services"
)

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
}

type ImportHandler struct {
	inventory *services.InventoryService
}

func NewImportHandler(inventory *services.InventoryService) *ImportHandler {
	return &ImportHandler{inventory: inventory}
}

// InventoryImportTemplate returns the template for inventory records
func InventoryImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "inventory",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "storeId", Description: "Store UUID", Required: true, Type: "string", Example: "7f9c24e5-1b60-45b3-9ffc-1f4f0a677a4d"},
			{Name: "productId", Description: "Product UUID", Required: true, Type: "string", Example: "a3c1b2d4-5e6f-4789-9abc-def012345678"},
			{Name: "initialQuantity", Description: "Starting on-hand quantity", Required: true, Type: "number", Example: "100"},
			{Name: "unitCost", Description: "Acquisition cost per unit (falls back to catalog cost)", Required: false, Type: "number", Example: "2.50"},
			{Name: "minStockLevel", Description: "Low-stock threshold", Required: false, Type: "number", Example: "10"},
			{Name: "maxStockLevel", Description: "Overstock threshold", Required: false, Type: "number", Example: "500"},
			{Name: "reorderLevel", Description: "Reorder point", Required: false, Type: "number", Example: "25"},
			{Name: "notes", Description: "Free-form notes for the initial layer", Required: false, Type: "string", Example: "Opening stock count"},
		},
		SampleData: []map[string]string{
			{
				"storeId":         "7f9c24e5-1b60-45b3-9ffc-1f4f0a677a4d",
				"productId":       "a3c1b2d4-5e6f-4789-9abc-def012345678",
				"initialQuantity": "100",
				"unitCost":        "2.50",
				"minStockLevel":   "10",
				"maxStockLevel":   "500",
				"reorderLevel":    "25",
				"notes":           "Opening stock count",
			},
			{
				"storeId":         "7f9c24e5-1b60-45b3-9ffc-1f4f0a677a4d",
				"productId":       "b8d2c3e5-6f70-489a-8bcd-ef0123456789",
				"initialQuantity": "40",
				"unitCost":        "12.9900",
				"minStockLevel":   "5",
				"maxStockLevel":   "",
				"reorderLevel":    "",
				"notes":           "",
			},
		},
	}
}

// GetInventoryImportTemplate returns the inventory import template
// GET /api/v1/inventory/import/template
func (h *ImportHandler) GetInventoryImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := InventoryImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template, "inventory")
	case "xlsx":
		h.generateXLSXTemplate(c, template, "Inventory")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
	}
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate, entity string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.csv", entity))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)

	for _, sample := range template.SampleData {
		row := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			row[i] = sample[col.Name]
		}
		writer.Write(row)
	}
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate, sheetName string) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	for rowIdx, sample := range template.SampleData {
		for colIdx, col := range template.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, sample[col.Name])
		}
	}

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.xlsx", strings.ToLower(sheetName)))

	f.Write(c.Writer)
}

// ImportInventory imports inventory records from a CSV or Excel file. Each row
// goes through the regular create path, so layers, alerts and ledger entries
// behave exactly as if the records were created one by one.
// POST /api/v1/inventory/import
func (h *ImportHandler) ImportInventory(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	userID := requestUserID(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FILE_REQUIRED", Message: "Please upload a CSV or Excel file"},
		})
		return
	}
	defer file.Close()

	skipDuplicates := c.DefaultPostForm("skipDuplicates", "false") == "true"
	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	rows, parseErr := h.parseFile(file, header.Filename)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "PARSE_ERROR", Message: parseErr.Error()},
		})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "EMPTY_FILE", Message: "The file contains no data rows"},
		})
		return
	}

	result := h.processInventoryRows(c, tenantID.(string), userID, rows, skipDuplicates, validateOnly)
	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) parseFile(file io.Reader, filename string) ([]map[string]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return h.parseCSV(file)
	} else if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return h.parseXLSX(file)
	}
	return nil, fmt.Errorf("only CSV and XLSX files are supported")
}

func (h *ImportHandler) parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

func (h *ImportHandler) parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return rows, nil
}

// parseInventoryRow converts one parsed row into a create request
func parseInventoryRow(row map[string]string) (*models.CreateInventoryRequest, []ImportRowError) {
	rowNum, _ := strconv.Atoi(row["_row"])
	var rowErrors []ImportRowError

	storeID, err := uuid.Parse(row["storeid"])
	if err != nil {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "storeId", Code: "INVALID_UUID", Message: "storeId must be a valid UUID",
		})
	}
	productID, err := uuid.Parse(row["productid"])
	if err != nil {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "productId", Code: "INVALID_UUID", Message: "productId must be a valid UUID",
		})
	}
	quantity, err := strconv.Atoi(row["initialquantity"])
	if err != nil || quantity < 0 {
		rowErrors = append(rowErrors, ImportRowError{
			Row: rowNum, Column: "initialQuantity", Code: "INVALID_QUANTITY", Message: "initialQuantity must be a non-negative integer",
		})
	}
	if len(rowErrors) > 0 {
		return nil, rowErrors
	}

	req := &models.CreateInventoryRequest{
		StoreID:         storeID,
		ProductID:       productID,
		InitialQuantity: quantity,
		Source:          "import",
	}

	if row["unitcost"] != "" {
		cost, err := decimal.NewFromString(row["unitcost"])
		if err != nil || cost.IsNegative() {
			return nil, []ImportRowError{{
				Row: rowNum, Column: "unitCost", Code: "INVALID_COST", Message: "unitCost must be a non-negative number",
			}}
		}
		req.CostOverride = &models.CostUpdate{UnitCost: cost}
	}
	for col, target := range map[string]**int{
		"minstocklevel": &req.MinStockLevel,
		"maxstocklevel": &req.MaxStockLevel,
		"reorderlevel":  &req.ReorderLevel,
	} {
		if row[col] == "" {
			continue
		}
		value, err := strconv.Atoi(row[col])
		if err != nil || value < 0 {
			return nil, []ImportRowError{{
				Row: rowNum, Column: col, Code: "INVALID_THRESHOLD", Message: fmt.Sprintf("%s must be a non-negative integer", col),
			}}
		}
		*target = &value
	}
	if row["notes"] != "" {
		notes := row["notes"]
		req.Notes = &notes
	}

	return req, nil
}

func (h *ImportHandler) processInventoryRows(c *gin.Context, tenantID string, userID *string, rows []map[string]string, skipDuplicates, validateOnly bool) *ImportResult {
	result := &ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]ImportRowError, 0),
		CreatedIDs: make([]string, 0),
	}

	requests := make([]*models.CreateInventoryRequest, 0, len(rows))
	requestRows := make([]int, 0, len(rows))
	for _, row := range rows {
		req, rowErrors := parseInventoryRow(row)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			continue
		}
		requests = append(requests, req)
		rowNum, _ := strconv.Atoi(row["_row"])
		requestRows = append(requestRows, rowNum)
	}

	if validateOnly {
		result.Success = len(result.Errors) == 0
		result.SuccessCount = len(requests)
		result.FailedCount = result.TotalRows - len(requests)
		return result
	}

	for i, req := range requests {
		record, err := h.inventory.Create(c.Request.Context(), tenantID, userID, req)
		if err != nil {
			if errors.Is(err, services.ErrDuplicateRecord) && skipDuplicates {
				result.SkippedCount++
				continue
			}
			code := "CREATE_FAILED"
			if errors.Is(err, services.ErrDuplicateRecord) {
				code = "ALREADY_EXISTS"
			} else if errors.Is(err, services.ErrValidation) {
				code = "VALIDATION_ERROR"
			}
			result.Errors = append(result.Errors, ImportRowError{
				Row:     requestRows[i],
				Code:    code,
				Message: err.Error(),
			})
			continue
		}
		result.CreatedIDs = append(result.CreatedIDs, record.ID.String())
	}

	result.SuccessCount = len(result.CreatedIDs)
	result.FailedCount = result.TotalRows - result.SuccessCount - result.SkippedCount
	result.Success = result.SuccessCount > 0

	return result
}
