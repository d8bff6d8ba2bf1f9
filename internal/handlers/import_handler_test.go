package handlers

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func TestParseCSV_HeadersAndRowNumbers(t *testing.T) {
	h := NewImportHandler(nil)

	csvData := "Name *,SKU *,Price *,categoryIds\nHoodie,HOOD-1,25,\"4,12\"\nMug,MUG-1,9.5,\n"
	rows, err := h.parseCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// headers are lowercased and the required marker is stripped
	assert.Equal(t, "Hoodie", rows[0]["name"])
	assert.Equal(t, "HOOD-1", rows[0]["sku"])
	assert.Equal(t, "4,12", rows[0]["categoryids"])

	// data rows are numbered from 2 so errors point at spreadsheet lines
	assert.Equal(t, "2", rows[0]["_row"])
	assert.Equal(t, "3", rows[1]["_row"])
}

func TestValidateRequiredFields(t *testing.T) {
	h := NewImportHandler(nil)

	tests := []struct {
		name     string
		row      map[string]string
		wantCode string
		wantCol  string
	}{
		{
			name:     "missing name",
			row:      map[string]string{"sku": "X", "price": "5"},
			wantCode: "REQUIRED",
			wantCol:  "name",
		},
		{
			name:     "missing sku",
			row:      map[string]string{"name": "X", "price": "5"},
			wantCode: "REQUIRED",
			wantCol:  "sku",
		},
		{
			name:     "non-numeric price",
			row:      map[string]string{"name": "X", "sku": "X", "price": "abc"},
			wantCode: "INVALID",
			wantCol:  "price",
		},
		{
			name:     "sale price above price",
			row:      map[string]string{"name": "X", "sku": "X", "price": "5", "saleprice": "9"},
			wantCode: "INVALID",
			wantCol:  "salePrice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &models.ImportResult{}
			h.validateRequiredFields(tt.row, 2, result)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.wantCode, result.Errors[0].Code)
			assert.Equal(t, tt.wantCol, result.Errors[0].Column)
		})
	}

	t.Run("valid row", func(t *testing.T) {
		result := &models.ImportResult{}
		h.validateRequiredFields(map[string]string{"name": "X", "sku": "X", "price": "5", "saleprice": "4"}, 2, result)
		assert.Empty(t, result.Errors)
	})
}

func TestProcessSingleBatch_ValidateOnly(t *testing.T) {
	h := NewImportHandler(nil)

	rows := []map[string]string{
		{"_row": "2", "name": "Hoodie", "sku": "HOOD-1", "price": "25", "categoryids": "4,oops,12", "instock": "true"},
		{"_row": "3", "name": "", "sku": "MUG-1", "price": "9.5"},
	}

	cache := map[string]int64{}
	tagCache := map[string]int64{}
	var mu sync.RWMutex

	result := h.processSingleBatch("tenant-1", "user-1", rows, false, true, cache, tagCache, &mu)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
}
