package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportStatus represents the status of an import job
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "PENDING"
	ImportStatusProcessing ImportStatus = "PROCESSING"
	ImportStatusCompleted  ImportStatus = "COMPLETED"
	ImportStatusFailed     ImportStatus = "FAILED"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean, uuid
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
	CreatedCount int              `json:"createdCount"`
	UpdatedCount int              `json:"updatedCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
	UpdatedIDs   []string         `json:"updatedIds,omitempty"`
}

// ImportRequest represents import configuration
type ImportRequest struct {
	SkipDuplicates bool `json:"skipDuplicates"`
	UpdateExisting bool `json:"updateExisting"` // if true, update products with matching SKU instead of skipping
	SkipHeader     bool `json:"skipHeader"`     // defaults to true
	ValidateOnly   bool `json:"validateOnly"`   // dry run mode
	BatchSize      int  `json:"batchSize"`      // number of rows per batch (default: 100, max: 500)
	MaxRetries     int  `json:"maxRetries"`     // max retries for failed batches (default: 2)
}

// BatchProgress represents the progress of a batch import operation
type BatchProgress struct {
	TotalBatches     int    `json:"totalBatches"`
	CompletedBatches int    `json:"completedBatches"`
	CurrentBatch     int    `json:"currentBatch"`
	PercentComplete  int    `json:"percentComplete"`
	Status           string `json:"status"` // "processing", "completed", "failed"
}

// BatchResult represents the result of processing a single batch
type BatchResult struct {
	BatchNumber  int              `json:"batchNumber"`
	StartRow     int              `json:"startRow"`
	EndRow       int              `json:"endRow"`
	Success      bool             `json:"success"`
	CreatedCount int              `json:"createdCount"`
	UpdatedCount int              `json:"updatedCount"`
	FailedCount  int              `json:"failedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
	UpdatedIDs   []string         `json:"updatedIds,omitempty"`
	RetryCount   int              `json:"retryCount"`
}

// EnhancedImportResult represents the result of a batch import operation
type EnhancedImportResult struct {
	Success       bool             `json:"success"`
	TotalRows     int              `json:"totalRows"`
	TotalBatches  int              `json:"totalBatches"`
	SuccessCount  int              `json:"successCount"`
	CreatedCount  int              `json:"createdCount"`
	UpdatedCount  int              `json:"updatedCount"`
	FailedCount   int              `json:"failedCount"`
	SkippedCount  int              `json:"skippedCount"`
	BatchResults  []BatchResult    `json:"batchResults,omitempty"`
	Errors        []ImportRowError `json:"errors,omitempty"`
	CreatedIDs    []string         `json:"createdIds,omitempty"`
	UpdatedIDs    []string         `json:"updatedIds,omitempty"`
	ProcessingMs  int64            `json:"processingMs"`
	AvgBatchMs    int64            `json:"avgBatchMs"`
}

// ProductImportColumns returns the column definitions for product import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "sku", Description: "Unique product SKU", Required: true, Type: "string", Example: "TSH-BLU-001"},
		{Name: "price", Description: "Product price", Required: true, Type: "number", Example: "29.99"},
		{Name: "salePrice", Description: "Discounted price, must be below price", Required: false, Type: "number", Example: "24.99"},
		{Name: "productType", Description: "simple or variable (variable products get their options via the form)", Required: false, Type: "string", Example: "simple"},
		{Name: "categoryIds", Description: "Comma-separated numeric category ids - non-numeric entries are dropped", Required: false, Type: "string", Example: "4,12"},
		{Name: "categoryName", Description: "Category name - auto-creates if not exists (use this OR categoryIds)", Required: false, Type: "string", Example: "Electronics"},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: "quantity", Description: "Initial stock quantity", Required: false, Type: "number", Example: "100"},
		{Name: "unit", Description: "Sales unit", Required: false, Type: "string", Example: "1 pc"},
		{Name: "inStock", Description: "true or false, defaults to true", Required: false, Type: "boolean", Example: "true"},
		{Name: "isTaxable", Description: "true or false", Required: false, Type: "boolean", Example: "false"},
		{Name: "status", Description: "DRAFT or PUBLISH, defaults to DRAFT", Required: false, Type: "string", Example: "DRAFT"},
		{Name: "tags", Description: "Comma-separated tag names - auto-creates missing tags", Required: false, Type: "string", Example: "summer, sale"},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.1",
		Columns: ProductImportColumns(),
	}
}
