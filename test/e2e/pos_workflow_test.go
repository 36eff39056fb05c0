//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/bengkelpos/pos-be/internal/adapters/db"
	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/services"
	"github.com/bengkelpos/pos-be/internal/handlers"
	"github.com/bengkelpos/pos-be/internal/handlers/middleware"
	"github.com/bengkelpos/pos-be/test/helpers"
)

type POSWorkflowSuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
}

func (s *POSWorkflowSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *POSWorkflowSuite) TearDownSuite() {
	s.server.Close()
}

func (s *POSWorkflowSuite) SetupTest() {
	helpers.ResetRecords(s.T(), s.testDB.Database)
	s.testRedis.Server.FlushAll()

	// Drop the cart left over from a previous test
	resp := s.makeRequest("DELETE", "/cart", nil)
	resp.Body.Close()
}

func (s *POSWorkflowSuite) TestCompleteSaleWorkflow() {
	// 1. Stock the shelf
	busiID := s.createItem("Busi NGK CPR9EA-9", 25000, 40)
	oliID := s.createItem("Oli Mesin MPX2 0.8L", 55000, 12)

	// 2. Ring up a sale
	s.addCartLine(busiID, 2)
	s.addCartLine(oliID, 1)

	resp := s.makeRequest("GET", "/cart", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var cart map[string]interface{}
	s.decodeResponse(resp, &cart)
	s.Equal(float64(105000), cart["total"])
	s.Len(cart["lines"], 2)

	// 3. Checkout
	resp = s.makeRequest("POST", "/cart/checkout", map[string]interface{}{})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var sale map[string]interface{}
	s.decodeResponse(resp, &sale)
	s.Equal(float64(105000), sale["total"])

	// 4. Stock went down
	resp = s.makeRequest("GET", fmt.Sprintf("/inventory/%d", busiID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	s.Equal(float64(38), item["stock"])

	// 5. Cart is empty again
	resp = s.makeRequest("GET", "/cart", nil)
	s.decodeResponse(resp, &cart)
	s.Len(cart["lines"], 0)

	// 6. The sale shows up in history
	resp = s.makeRequest("GET", "/sales", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var sales []map[string]interface{}
	s.decodeResponse(resp, &sales)
	s.Len(sales, 1)

	// 7. And in the summary report
	resp = s.makeRequest("GET", "/reports/summary", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var report map[string]interface{}
	s.decodeResponse(resp, &report)
	s.Equal(float64(1), report["sale_count"])
	s.Equal(float64(105000), report["total_revenue"])
}

func (s *POSWorkflowSuite) TestCheckoutRejectsStockShortage() {
	id := s.createItem("Kampas Rem Depan", 45000, 1)

	resp := s.makeRequest("POST", "/cart/lines", map[string]interface{}{
		"item_id":  id,
		"quantity": 5,
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Shelf untouched
	resp = s.makeRequest("GET", fmt.Sprintf("/inventory/%d", id), nil)
	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	s.Equal(float64(1), item["stock"])
}

func (s *POSWorkflowSuite) TestInventoryCRUD() {
	id := s.createItem("V-Belt Beat FI", 95000, 7)

	// Update
	resp := s.makeRequest("PUT", fmt.Sprintf("/inventory/%d", id), map[string]interface{}{
		"id":    id,
		"name":  "V-Belt Beat FI (Ori)",
		"price": 110000,
		"stock": 7,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/inventory/%d", id), nil)
	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	s.Equal("V-Belt Beat FI (Ori)", item["name"])
	s.Equal(float64(110000), item["price"])

	// Delete
	resp = s.makeRequest("DELETE", fmt.Sprintf("/inventory/%d", id), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/inventory/%d", id), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *POSWorkflowSuite) TestSearchAndLowStock() {
	s.createItem("Oli Mesin MPX2", 55000, 12)
	s.createItem("Oli Gardan AHM", 16000, 2)
	s.createItem("Busi NGK", 25000, 40)

	resp := s.makeRequest("GET", "/inventory?search=oli", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var items []map[string]interface{}
	s.decodeResponse(resp, &items)
	s.Len(items, 2)

	resp = s.makeRequest("GET", "/inventory/low-stock", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var lowStock map[string]interface{}
	s.decodeResponse(resp, &lowStock)
	s.Equal(float64(helpers.LoadTestConfig().Inventory.LowStockThreshold), lowStock["threshold"])

	lowItems := lowStock["items"].([]interface{})
	s.Len(lowItems, 1)
	s.Equal("Oli Gardan AHM", lowItems[0].(map[string]interface{})["name"])
}

func (s *POSWorkflowSuite) TestExportInventoryCSV() {
	s.createItem("Busi NGK", 25000, 40)

	resp := s.makeRequest("GET", "/export/inventory.csv", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/csv")

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.NoError(err)
	s.Contains(string(body), "Nama,Harga,Stok")
	s.Contains(string(body), "Busi NGK,25000,40")
}

func (s *POSWorkflowSuite) TestHealthCheck() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	s.decodeResponse(resp, &health)
	s.Equal("healthy", health["status"])

	services := health["services"].(map[string]interface{})
	s.Contains(services, "database")
	s.Contains(services, "redis")
}

// Helper methods

func (s *POSWorkflowSuite) startTestServer() *httptest.Server {
	cfg := helpers.LoadTestConfig()
	slogger := helpers.TestLogger()

	redisClient := redis.NewClient(&redis.Options{Addr: s.testRedis.Server.Addr()})
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	store := db.NewRecordStore(s.testDB.Database, slogger)

	inventoryService := services.NewInventoryService(store, cache, cfg.Inventory.SnapshotTTL, slogger)
	customerService := services.NewCustomerService(store, slogger)
	cartService := services.NewCartService(store, cache, inventoryService, slogger)
	salesService := services.NewSalesService(store, cache, slogger)
	reportService := services.NewReportService(store, cache, cfg.Inventory.ReportTTL, cfg.Inventory.BestSellingLimit, slogger)

	inventoryHandler := handlers.NewInventoryHandler(inventoryService, cfg.Inventory.LowStockThreshold, slogger)
	customerHandler := handlers.NewCustomerHandler(customerService, slogger)
	salesHandler := handlers.NewSalesHandler(cartService, salesService, slogger)
	reportHandler := handlers.NewReportHandler(reportService, slogger)
	exportHandler := handlers.NewExportHandler(inventoryService, salesService, slogger)
	healthHandler := handlers.NewHealthHandler(s.testDB.Database, redisClient, nil, cfg, slogger)

	mux := http.NewServeMux()
	apiV1 := "/api/v1"

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Readiness)

	mux.HandleFunc("GET "+apiV1+"/inventory", inventoryHandler.ListInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/low-stock", inventoryHandler.LowStock)
	mux.HandleFunc("GET "+apiV1+"/inventory/lookup", inventoryHandler.LookupInventory)
	mux.HandleFunc("GET "+apiV1+"/inventory/{id}", inventoryHandler.GetInventory)
	mux.HandleFunc("POST "+apiV1+"/inventory", inventoryHandler.SaveInventory)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{id}", inventoryHandler.UpdateInventory)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{id}", inventoryHandler.DeleteInventory)

	mux.HandleFunc("GET "+apiV1+"/customers", customerHandler.ListCustomers)
	mux.HandleFunc("POST "+apiV1+"/customers", customerHandler.SaveCustomer)
	mux.HandleFunc("PUT "+apiV1+"/customers/{id}", customerHandler.UpdateCustomer)
	mux.HandleFunc("DELETE "+apiV1+"/customers/{id}", customerHandler.DeleteCustomer)

	mux.HandleFunc("GET "+apiV1+"/cart", salesHandler.GetCart)
	mux.HandleFunc("POST "+apiV1+"/cart/lines", salesHandler.AddCartLine)
	mux.HandleFunc("DELETE "+apiV1+"/cart/lines/{index}", salesHandler.RemoveCartLine)
	mux.HandleFunc("DELETE "+apiV1+"/cart", salesHandler.ClearCart)
	mux.HandleFunc("POST "+apiV1+"/cart/checkout", salesHandler.Checkout)

	mux.HandleFunc("GET "+apiV1+"/sales", salesHandler.ListSales)
	mux.HandleFunc("DELETE "+apiV1+"/sales/{id}", salesHandler.DeleteSale)

	mux.HandleFunc("GET "+apiV1+"/reports/summary", reportHandler.GetSummary)

	mux.HandleFunc("GET "+apiV1+"/export/inventory.csv", exportHandler.ExportInventoryCSV)
	mux.HandleFunc("GET "+apiV1+"/export/sales.csv", exportHandler.ExportSalesCSV)
	mux.HandleFunc("GET "+apiV1+"/export/inventory.xlsx", exportHandler.ExportInventoryExcel)

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(slogger)(handler)

	return httptest.NewServer(handler)
}

func (s *POSWorkflowSuite) createItem(name string, price int64, stock int) int64 {
	resp := s.makeRequest("POST", "/inventory", map[string]interface{}{
		"name":  name,
		"price": price,
		"stock": stock,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	var item map[string]interface{}
	s.decodeResponse(resp, &item)
	return int64(item["id"].(float64))
}

func (s *POSWorkflowSuite) addCartLine(itemID int64, quantity int) {
	resp := s.makeRequest("POST", "/cart/lines", map[string]interface{}{
		"item_id":  itemID,
		"quantity": quantity,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *POSWorkflowSuite) makeRequest(method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	s.NoError(err)

	return resp
}

func (s *POSWorkflowSuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.NoError(err)
}

func TestPOSWorkflowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(POSWorkflowSuite))
}
