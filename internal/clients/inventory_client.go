package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// InventoryClient handles communication with the inventory-service.
// The catalog owns the editable quantity; the inventory service mirrors it
// for fulfilment, so every form save pushes the reconciled level across.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
}

// StockLevel represents a stock level snapshot in inventory-service
type StockLevel struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	TenantID  string `json:"tenantId,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// StockLevelResponse from inventory-service
type StockLevelResponse struct {
	Success bool        `json:"success"`
	Data    *StockLevel `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// NewInventoryClient creates a new inventory client
func NewInventoryClient() *InventoryClient {
	baseURL := os.Getenv("INVENTORY_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://inventory-service:8088"
	}

	return &InventoryClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PushStockLevel mirrors a product's reconciled quantity into inventory-service
func (c *InventoryClient) PushStockLevel(tenantID, productID, sku string, quantity int) error {
	payload := StockLevel{
		ProductID: productID,
		SKU:       sku,
		Quantity:  quantity,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal stock level: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/stock-levels/%s", c.baseURL, productID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call inventory-service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("inventory-service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// GetStockLevel reads the mirrored stock level for a product
func (c *InventoryClient) GetStockLevel(tenantID, productID string) (*StockLevel, error) {
	url := fmt.Sprintf("%s/api/v1/stock-levels/%s", c.baseURL, productID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inventory-service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inventory-service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result StockLevelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Data, nil
}
