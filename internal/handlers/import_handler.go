package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
	"catalog-service/internal/reconcile"
	"catalog-service/internal/repository"
)

const (
	DefaultBatchSize = 100 // Default rows per batch
	MaxBatchSize     = 500 // Maximum rows per batch
	DefaultRetries   = 2   // Default retry attempts for failed batches
	MaxRetries       = 5   // Maximum retry attempts
)

type ImportHandler struct {
	repo *repository.ProductsRepository
}

func NewImportHandler(repo *repository.ProductsRepository) *ImportHandler {
	return &ImportHandler{
		repo: repo,
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.ProductImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
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
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	// Add Instructions sheet
	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")

	f.SetCellValue("Instructions", "A3", "CATEGORY ASSIGNMENT:")
	f.SetCellValue("Instructions", "A4", "You can use EITHER numeric ids (categoryIds) OR a name (categoryName):")
	f.SetCellValue("Instructions", "A5", "- categoryIds: comma-separated numeric ids, e.g. \"4,12\". Entries that are not positive integers are silently dropped.")
	f.SetCellValue("Instructions", "A6", "- categoryName: the system looks the category up by name and auto-creates it when missing.")
	f.SetCellValue("Instructions", "A7", "- Imports only handle simple products; variable products and their options are managed through the product form.")

	f.SetCellValue("Instructions", "A9", "Column Definitions:")
	f.SetCellValue("Instructions", "A10", "Column")
	f.SetCellValue("Instructions", "B10", "Description")
	f.SetCellValue("Instructions", "C10", "Required")
	f.SetCellValue("Instructions", "D10", "Type")
	f.SetCellValue("Instructions", "E10", "Example")

	for i, col := range template.Columns {
		row := i + 11
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 15)
	f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportProducts imports products from CSV or Excel file with batch processing
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	userID, _ := c.Get("user_id")
	startTime := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV or Excel file",
			},
		})
		return
	}
	defer file.Close()

	updateExisting := c.DefaultPostForm("updateExisting", "false") == "true"
	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	batchSize := DefaultBatchSize
	if bs := c.DefaultPostForm("batchSize", ""); bs != "" {
		if parsed, err := strconv.Atoi(bs); err == nil && parsed > 0 {
			batchSize = parsed
			if batchSize > MaxBatchSize {
				batchSize = MaxBatchSize
			}
		}
	}

	maxRetries := DefaultRetries
	if mr := c.DefaultPostForm("maxRetries", ""); mr != "" {
		if parsed, err := strconv.Atoi(mr); err == nil && parsed >= 0 {
			maxRetries = parsed
			if maxRetries > MaxRetries {
				maxRetries = MaxRetries
			}
		}
	}

	filename := header.Filename
	var format models.ImportFormat
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		format = models.ImportFormatCSV
	} else if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		format = models.ImportFormatXLSX
	} else {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV and XLSX files are supported",
			},
		})
		return
	}

	var rows []map[string]string
	var parseErr error

	if format == models.ImportFormatCSV {
		rows, parseErr = h.parseCSV(file)
	} else {
		rows, parseErr = h.parseXLSX(file)
	}

	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: parseErr.Error(),
			},
		})
		return
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "EMPTY_FILE",
				Message: "The file contains no data rows",
			},
		})
		return
	}

	userIDStr := ""
	if userID != nil {
		userIDStr = userID.(string)
	}
	result := h.processImportWithBatching(
		tenantID.(string),
		userIDStr,
		rows,
		updateExisting,
		validateOnly,
		batchSize,
		maxRetries,
	)

	result.ProcessingMs = time.Since(startTime).Milliseconds()
	if result.TotalBatches > 0 {
		result.AvgBatchMs = result.ProcessingMs / int64(result.TotalBatches)
	}

	c.JSON(http.StatusOK, result)
}

// processImportWithBatching handles large imports with batch processing,
// retry logic, and partial commits
func (h *ImportHandler) processImportWithBatching(
	tenantID, userID string,
	rows []map[string]string,
	updateExisting, validateOnly bool,
	batchSize, maxRetries int,
) *models.EnhancedImportResult {
	totalRows := len(rows)
	totalBatches := (totalRows + batchSize - 1) / batchSize

	result := &models.EnhancedImportResult{
		TotalRows:    totalRows,
		TotalBatches: totalBatches,
		BatchResults: make([]models.BatchResult, 0, totalBatches),
		Errors:       make([]models.ImportRowError, 0),
		CreatedIDs:   make([]string, 0),
		UpdatedIDs:   make([]string, 0),
	}

	// Name lookups are shared across batches
	categoryCache := make(map[string]int64)
	tagCache := make(map[string]int64)
	var cacheMutex sync.RWMutex

	for batchNum := 0; batchNum < totalBatches; batchNum++ {
		startIdx := batchNum * batchSize
		endIdx := startIdx + batchSize
		if endIdx > totalRows {
			endIdx = totalRows
		}

		batchRows := rows[startIdx:endIdx]
		startRow, _ := strconv.Atoi(batchRows[0]["_row"])
		endRow, _ := strconv.Atoi(batchRows[len(batchRows)-1]["_row"])

		batchResult := h.processBatchWithRetry(
			tenantID, userID,
			batchRows, batchNum+1, startRow, endRow,
			updateExisting, validateOnly,
			maxRetries,
			categoryCache, tagCache, &cacheMutex,
		)

		result.BatchResults = append(result.BatchResults, batchResult)

		result.CreatedCount += batchResult.CreatedCount
		result.UpdatedCount += batchResult.UpdatedCount
		result.FailedCount += batchResult.FailedCount
		result.SkippedCount += batchResult.SkippedCount
		result.Errors = append(result.Errors, batchResult.Errors...)
		result.CreatedIDs = append(result.CreatedIDs, batchResult.CreatedIDs...)
		result.UpdatedIDs = append(result.UpdatedIDs, batchResult.UpdatedIDs...)
	}

	if validateOnly {
		result.SuccessCount = totalRows - result.FailedCount
		result.Success = result.SuccessCount > 0
	} else {
		result.SuccessCount = result.CreatedCount + result.UpdatedCount
		result.Success = result.SuccessCount > 0 || result.SkippedCount > 0
	}

	return result
}

// processBatchWithRetry processes a single batch with retry logic for transient failures
func (h *ImportHandler) processBatchWithRetry(
	tenantID, userID string,
	rows []map[string]string,
	batchNum, startRow, endRow int,
	updateExisting, validateOnly bool,
	maxRetries int,
	categoryCache map[string]int64,
	tagCache map[string]int64,
	cacheMutex *sync.RWMutex,
) models.BatchResult {
	var batchResult models.BatchResult
	batchResult.BatchNumber = batchNum
	batchResult.StartRow = startRow
	batchResult.EndRow = endRow

	for retry := 0; retry <= maxRetries; retry++ {
		batchResult.RetryCount = retry

		innerResult := h.processSingleBatch(
			tenantID, userID,
			rows, updateExisting, validateOnly,
			categoryCache, tagCache, cacheMutex,
		)

		batchResult.CreatedCount = innerResult.CreatedCount
		batchResult.UpdatedCount = innerResult.UpdatedCount
		batchResult.FailedCount = innerResult.FailedCount
		batchResult.SkippedCount = innerResult.SkippedCount
		batchResult.Errors = innerResult.Errors
		batchResult.CreatedIDs = innerResult.CreatedIDs
		batchResult.UpdatedIDs = innerResult.UpdatedIDs
		batchResult.Success = innerResult.Success

		if batchResult.Success || !h.hasTransientErrors(batchResult.Errors) {
			break
		}

		// Exponential backoff before retry
		if retry < maxRetries {
			time.Sleep(time.Duration(100*(1<<retry)) * time.Millisecond)
		}
	}

	return batchResult
}

// hasTransientErrors checks if any errors are transient (DB connection, timeout, etc.)
func (h *ImportHandler) hasTransientErrors(errors []models.ImportRowError) bool {
	for _, err := range errors {
		if err.Code == "DB_ERROR" || err.Code == "BULK_UPSERT_FAILED" {
			return true
		}
	}
	return false
}

// processSingleBatch processes a single batch of rows
func (h *ImportHandler) processSingleBatch(
	tenantID, userID string,
	rows []map[string]string,
	updateExisting, validateOnly bool,
	categoryCache map[string]int64,
	tagCache map[string]int64,
	cacheMutex *sync.RWMutex,
) *models.ImportResult {
	result := &models.ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]models.ImportRowError, 0),
		CreatedIDs: make([]string, 0),
		UpdatedIDs: make([]string, 0),
	}

	products := make([]*models.Product, 0, len(rows))

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		h.validateRequiredFields(row, rowNum, result)
		if h.hasRowErrors(result, rowNum) {
			continue
		}

		categoryIDs := h.resolveCategories(tenantID, row, rowNum, result, categoryCache, cacheMutex)
		if h.hasRowErrors(result, rowNum) {
			continue
		}
		tagIDs := h.resolveTags(tenantID, row, tagCache, cacheMutex)

		price, _ := strconv.ParseFloat(row["price"], 64)

		productType := models.ProductTypeTagSimple
		if strings.EqualFold(row["producttype"], string(models.ProductTypeTagVariable)) {
			productType = models.ProductTypeTagVariable
		}

		status := models.ProductStatusDraft
		if strings.EqualFold(row["status"], string(models.ProductStatusPublish)) {
			status = models.ProductStatusPublish
		}

		product := &models.Product{
			TenantID:    tenantID,
			Name:        row["name"],
			SKU:         row["sku"],
			Price:       &price,
			SalePrice:   parseOptionalFloat(row["saleprice"]),
			ProductType: productType,
			Description: optionalString(row["description"]),
			Quantity:    parseOptionalInt(row["quantity"]),
			Unit:        optionalString(row["unit"]),
			InStock:     row["instock"] != "false",
			IsTaxable:   row["istaxable"] == "true",
			Status:      status,
			CreatedBy:   stringPtr(userID),
			UpdatedBy:   stringPtr(userID),
		}

		for _, categoryID := range categoryIDs {
			product.Categories = append(product.Categories, &models.ProductCategory{
				CategoriesID: categoryID,
			})
		}
		for _, tagID := range tagIDs {
			product.Tags = append(product.Tags, &models.ProductTag{
				TagID: tagID,
			})
		}

		products = append(products, product)
	}

	if validateOnly {
		result.Success = len(result.Errors) == 0
		result.SuccessCount = len(products)
		result.FailedCount = result.TotalRows - len(products)
		return result
	}

	if len(products) == 0 {
		result.Success = false
		result.FailedCount = result.TotalRows
		return result
	}

	h.executeBulkUpsert(tenantID, products, updateExisting, result)
	return result
}

// resolveCategories resolves category assignments for one row: either the
// categoryIds column (comma-separated numeric ids, lossy) or the categoryName
// column (auto-created by name)
func (h *ImportHandler) resolveCategories(tenantID string, row map[string]string, rowNum int, result *models.ImportResult, cache map[string]int64, mutex *sync.RWMutex) []int64 {
	if raw := row["categoryids"]; raw != "" {
		return reconcile.SplitIDList(raw)
	}

	categoryName := row["categoryname"]
	if categoryName == "" {
		return nil
	}

	cacheKey := strings.ToLower(categoryName)

	mutex.RLock()
	if cachedID, ok := cache[cacheKey]; ok {
		mutex.RUnlock()
		return []int64{cachedID}
	}
	mutex.RUnlock()

	category, _, err := h.repo.GetOrCreateCategoryByName(tenantID, categoryName)
	if err != nil {
		h.addError(result, rowNum, "categoryName", "CATEGORY_ERROR", fmt.Sprintf("Failed to resolve category '%s': %s", categoryName, err.Error()))
		return nil
	}

	mutex.Lock()
	cache[cacheKey] = category.ID
	mutex.Unlock()

	return []int64{category.ID}
}

// resolveTags resolves tag names for one row, creating missing tags
func (h *ImportHandler) resolveTags(tenantID string, row map[string]string, cache map[string]int64, mutex *sync.RWMutex) []int64 {
	raw := row["tags"]
	if raw == "" {
		return nil
	}

	var ids []int64
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cacheKey := strings.ToLower(name)

		mutex.RLock()
		cachedID, ok := cache[cacheKey]
		mutex.RUnlock()
		if ok {
			ids = append(ids, cachedID)
			continue
		}

		tag := models.Tag{Name: name}
		if err := h.repo.CreateTag(tenantID, &tag); err != nil {
			// A unique-slug conflict means the tag appeared concurrently;
			// the row just loses the tag rather than failing the import
			continue
		}

		mutex.Lock()
		cache[cacheKey] = tag.ID
		mutex.Unlock()
		ids = append(ids, tag.ID)
	}
	return ids
}

// executeBulkUpsert handles the bulk write for one batch
func (h *ImportHandler) executeBulkUpsert(tenantID string, products []*models.Product, updateExisting bool, result *models.ImportResult) {
	if !updateExisting {
		// Create-only mode: pre-filter rows whose SKU already exists
		filtered := make([]*models.Product, 0, len(products))
		for _, product := range products {
			exists, err := h.repo.SKUExistsForTenant(tenantID, product.SKU)
			if err != nil {
				result.Errors = append(result.Errors, models.ImportRowError{
					Row:     0,
					Code:    "DB_ERROR",
					Message: err.Error(),
				})
				continue
			}
			if exists {
				result.SkippedCount++
				continue
			}
			filtered = append(filtered, product)
		}
		products = filtered
	}

	if len(products) == 0 {
		result.Success = result.SkippedCount > 0
		return
	}

	upsertResult, err := h.repo.BulkUpsertProducts(tenantID, products)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, models.ImportRowError{
			Row:     0,
			Code:    "BULK_UPSERT_FAILED",
			Message: err.Error(),
		})
		return
	}

	for _, product := range products {
		result.CreatedIDs = append(result.CreatedIDs, product.ID.String())
	}

	for _, message := range upsertResult.Errors {
		result.Errors = append(result.Errors, models.ImportRowError{
			Row:     0,
			Code:    "DB_ERROR",
			Message: message,
		})
	}

	result.CreatedCount = upsertResult.Created
	result.UpdatedCount = upsertResult.Updated
	result.SuccessCount = upsertResult.Created + upsertResult.Updated
	result.FailedCount = len(upsertResult.Errors)
	result.Success = result.SuccessCount > 0 || result.SkippedCount > 0
}

// ExportProducts streams the tenant's products as CSV or XLSX
// GET /api/v1/products/export
func (h *ImportHandler) ExportProducts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	format := c.DefaultQuery("format", "xlsx")

	req := &models.SearchProductsRequest{Page: 1, Limit: 1000}
	var all []models.Product
	for {
		page, total, err := h.repo.GetProducts(tenantID.(string), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "EXPORT_FAILED",
					Message: "Failed to load products for export",
					Details: &models.JSON{"error": err.Error()},
				},
			})
			return
		}
		all = append(all, page...)
		if int64(len(all)) >= total || len(page) == 0 {
			break
		}
		req.Page++
	}

	headers := []string{"name", "sku", "price", "salePrice", "productType", "minPrice", "maxPrice", "quantity", "unit", "inStock", "status"}

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=products_export.csv")

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		writer.Write(headers)
		for i := range all {
			writer.Write(exportRow(&all[i]))
		}
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIdx := range all {
		values := exportRow(&all[rowIdx])
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_export.xlsx")
	f.Write(c.Writer)
}

func exportRow(product *models.Product) []string {
	return []string{
		product.Name,
		product.SKU,
		formatFloat(product.Price),
		formatFloat(product.SalePrice),
		string(product.ProductType),
		formatFloat(product.MinPrice),
		formatFloat(product.MaxPrice),
		formatInt(product.Quantity),
		derefString(product.Unit),
		strconv.FormatBool(product.InStock),
		string(product.Status),
	}
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func formatInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// parseCSV parses a CSV file into rows
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
		row["_row"] = strconv.Itoa(lineNum + 1) // Track row number for error reporting
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses an Excel file into rows
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
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

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
		row["_row"] = strconv.Itoa(rowIdx + 2) // 1-indexed, +1 for header
		rows = append(rows, row)
	}

	return rows, nil
}

// validateRequiredFields checks that all required fields are present
func (h *ImportHandler) validateRequiredFields(row map[string]string, rowNum int, result *models.ImportResult) {
	if row["name"] == "" {
		h.addError(result, rowNum, "name", "REQUIRED", "Product name is required")
	}
	if row["sku"] == "" {
		h.addError(result, rowNum, "sku", "REQUIRED", "SKU is required")
	}
	if row["price"] == "" {
		h.addError(result, rowNum, "price", "REQUIRED", "Price is required")
	} else if _, err := strconv.ParseFloat(row["price"], 64); err != nil {
		h.addError(result, rowNum, "price", "INVALID", "Price must be a valid number")
	}
	if sale := row["saleprice"]; sale != "" {
		salePrice, err := strconv.ParseFloat(sale, 64)
		if err != nil {
			h.addError(result, rowNum, "salePrice", "INVALID", "Sale price must be a valid number")
		} else if price, priceErr := strconv.ParseFloat(row["price"], 64); priceErr == nil && salePrice > price {
			h.addError(result, rowNum, "salePrice", "INVALID", "Sale price cannot exceed the regular price")
		}
	}
}

// addError is a helper to add an error to the result
func (h *ImportHandler) addError(result *models.ImportResult, rowNum int, column, code, message string) {
	result.Errors = append(result.Errors, models.ImportRowError{
		Row:     rowNum,
		Column:  column,
		Code:    code,
		Message: message,
	})
}

// hasRowErrors checks if the given row already has errors
func (h *ImportHandler) hasRowErrors(result *models.ImportResult, rowNum int) bool {
	for _, e := range result.Errors {
		if e.Row == rowNum {
			return true
		}
	}
	return false
}

// optionalString returns nil for empty strings, pointer otherwise
func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// parseOptionalInt parses an optional integer from a row field
func parseOptionalInt(value string) *int {
	if value == "" {
		return nil
	}
	if num, err := strconv.Atoi(value); err == nil {
		return &num
	}
	return nil
}

// parseOptionalFloat parses an optional number from a row field
func parseOptionalFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	if num, err := strconv.ParseFloat(value, 64); err == nil {
		return &num
	}
	return nil
}
