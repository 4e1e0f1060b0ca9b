package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ApiClient talks to the menuperf API on behalf of one restaurant
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
}

// MenuItem is one row of the menu engineering report
type MenuItem struct {
	MenuItemID     string  `json:"menuItemId"`
	MenuItemName   string  `json:"menuItemName"`
	Category       string  `json:"category"`
	WeeklyOrders   int     `json:"weeklyOrders"`
	SellingPrice   float64 `json:"sellingPrice"`
	MarginPercent  float64 `json:"marginPercent"`
	WeeklyProfit   float64 `json:"weeklyProfit"`
	Recommendation string  `json:"recommendation"`
}

// MenuReport is the menu engineering response
type MenuReport struct {
	Items          []MenuItem     `json:"items"`
	MedianMargin   float64        `json:"medianMargin"`
	MedianOrders   int            `json:"medianOrders"`
	CategoryCounts map[string]int `json:"categoryCounts"`
}

// CostItem is one costed menu item
type CostItem struct {
	MenuItemName   string  `json:"menuItemName"`
	SellingPrice   float64 `json:"sellingPrice"`
	IngredientCost float64 `json:"ingredientCost"`
	MarginPercent  float64 `json:"marginPercent"`
	Status         string  `json:"status"`
}

// FoodCostReport is the food cost response
type FoodCostReport struct {
	Items         []CostItem     `json:"items"`
	AverageMargin float64        `json:"averageMargin"`
	StatusCounts  map[string]int `json:"statusCounts"`
}

// SyncResult is one provider's reconciled sync
type SyncResult struct {
	Provider     string `json:"provider"`
	Lines        int    `json:"lines"`
	MatchedItems int    `json:"matchedItems"`
}

// Outcome is one provider's result of a sync-all
type Outcome struct {
	Provider string      `json:"provider"`
	Status   string      `json:"status"`
	Result   *SyncResult `json:"result"`
	Error    string      `json:"error"`
}

// NewApiClient reads MENUPERF_API_URL and MENUPERF_TOKEN
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("MENUPERF_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &ApiClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		BaseURL:    baseURL,
		Token:      os.Getenv("MENUPERF_TOKEN"),
	}
}

// CheckHealth reports whether the server answers /health
func (c *ApiClient) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// GetMenuEngineering fetches the classified menu with advice
func (c *ApiClient) GetMenuEngineering() (*MenuReport, error) {
	var report MenuReport
	if err := c.do(http.MethodGet, "/api/v1/menu-engineering", nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetFoodCost fetches the food cost report
func (c *ApiClient) GetFoodCost() (*FoodCostReport, error) {
	var report FoodCostReport
	if err := c.do(http.MethodGet, "/api/v1/food-cost", nil, "", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SyncAll syncs every connected POS
func (c *ApiClient) SyncAll() ([]Outcome, error) {
	var body struct {
		Outcomes []Outcome `json:"outcomes"`
	}
	if err := c.do(http.MethodPost, "/api/v1/integrations/sync", nil, "", &body); err != nil {
		return nil, err
	}
	return body.Outcomes, nil
}

// UploadExport sends a CSV or XLSX sales export from disk
func (c *ApiClient) UploadExport(path string) (*SyncResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var res SyncResult
	if err := c.do(http.MethodPost, "/api/v1/integrations/export/upload", &buf, mw.FormDataContentType(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *ApiClient) do(method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, apiErr.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
