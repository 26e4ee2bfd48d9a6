package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"backoffice/internal/metrics"
	"backoffice/internal/repository"
	"backoffice/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	store := repository.NewMemoryBundle()
	svc := Services{
		Orders:    service.NewOrderService(store.Products, store.Orders, store.Stock, store.Tx),
		Stock:     service.NewStockService(store.Products, store.Stock, store.Tx),
		Catalog:   service.NewCatalogService(store.Products, store.Categories, store.Tx),
		Admins:    service.NewAdminService(store.Admins, store.Tx, service.WithBcryptCost(bcrypt.MinCost)),
		Invoices:  service.NewInvoiceService(store.Orders),
		Dashboard: service.NewDashboardService(store),
	}
	return NewServer(svc, opts...)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func seedCatalog(t *testing.T, s *Server) {
	t.Helper()
	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/category", map[string]any{
		"catID": "C1", "catName": "Phones", "specifications": []string{"RAM"},
	}), http.StatusCreated)
	for _, p := range []map[string]any{
		{"pID": "P1", "name": "Phone", "category": "C1", "price": map[string]any{"selling": 500}},
		{"pID": "P2", "name": "Case", "price": map[string]any{"selling": 300}},
	} {
		mustStatus(t, doJSON(t, s, http.MethodPost, "/api/product", p), http.StatusCreated)
	}
	for _, st := range []map[string]any{
		{"pID": "P1", "skuID": "SN-1"},
		{"pID": "P2", "skuID": "SN-2", "comment": "shelf B"},
	} {
		mustStatus(t, doJSON(t, s, http.MethodPost, "/api/stock/add-stock", st), http.StatusCreated)
	}
}

func orderBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"product_id": "P1", "product_price": 500, "quantity": 2},
			{"product_id": "P2", "product_price": 300, "quantity": 1},
		},
		"shipping_cost":    50,
		"discount":         100,
		"payment":          map[string]any{"method": "COD", "status": "Pending"},
		"shipping_address": map[string]any{"recipient_name": "Rahim", "phone": "01700000000", "address_line1": "Dhaka"},
	}
}

func createOrder(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/order/create-order", orderBody())
	mustStatus(t, w, http.StatusCreated)
	var resp struct {
		OrderID string `json:"order_id"`
		Order   struct {
			Subtotal    float64 `json:"subtotal"`
			TotalAmount float64 `json:"total_amount"`
		} `json:"order"`
	}
	decode(t, w, &resp)
	if resp.OrderID == "" || resp.Order.Subtotal != 1300 || resp.Order.TotalAmount != 1250 {
		t.Fatalf("unexpected create response: %s", w.Body.String())
	}
	return resp.OrderID
}

func TestOrderFlow(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)
	id := createOrder(t, s)

	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{"status": "Confirmed"}), http.StatusOK)

	// blank SKU rejects the whole transition
	w := doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{
		"status": "Shipped",
		"items":  []map[string]any{{"product_id": "P1", "skuID": "SN-1"}, {"product_id": "P2", "skuID": ""}},
	})
	mustStatus(t, w, http.StatusBadRequest)

	w = doJSON(t, s, http.MethodGet, "/api/order/"+id+"/next", nil)
	mustStatus(t, w, http.StatusOK)
	var next service.NextAction
	decode(t, w, &next)
	if next.Current != "Confirmed" || next.Next != "Shipped" || !next.NeedsSKUs {
		t.Fatalf("next action: %+v", next)
	}

	w = doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{
		"status": "Shipped",
		"items":  []map[string]any{{"product_id": "P1", "skuID": "SN-1"}, {"product_id": "P2", "skuID": "SN-2"}},
	})
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, s, http.MethodGet, "/api/stock/lookup/SN-1", nil)
	mustStatus(t, w, http.StatusOK)
	var lookup struct {
		Selected struct {
			Status bool   `json:"status"`
			OID    string `json:"OID"`
		} `json:"selected"`
	}
	decode(t, w, &lookup)
	if lookup.Selected.Status || lookup.Selected.OID != id {
		t.Fatalf("SN-1 not consumed: %s", w.Body.String())
	}

	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{"status": "Delivered"}), http.StatusOK)
	w = doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{
		"status": "Completed", "payment": map[string]any{"status": "Paid"},
	})
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"status":"Paid"`) {
		t.Fatalf("payment not settled: %s", w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/order/"+id+"/invoice", nil)
	mustStatus(t, w, http.StatusOK)
	var inv service.Invoice
	decode(t, w, &inv)
	if inv.Total != "1250.00" || inv.Lines[0].SKU != "SN-1" || inv.BillTo.Email != "Not Provided" {
		t.Fatalf("invoice: %+v", inv)
	}

	w = doJSON(t, s, http.MethodGet, "/api/order?status=Completed", nil)
	mustStatus(t, w, http.StatusOK)
	var list []map[string]any
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("expected one completed order, got %d", len(list))
	}
}

func TestOrderCompleteFromShipped(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)

	body := orderBody()
	body["items"] = []map[string]any{
		{"product_id": "P1", "quantity": 1},
		{"product_id": "P2", "product_price": 0, "quantity": 1},
	}
	body["discount"] = 0
	body["shipping_cost"] = 0
	w := doJSON(t, s, http.MethodPost, "/api/order/create-order", body)
	mustStatus(t, w, http.StatusCreated)
	var created struct {
		OrderID string `json:"order_id"`
		Order   struct {
			TotalAmount float64 `json:"total_amount"`
		} `json:"order"`
	}
	decode(t, w, &created)
	if created.Order.TotalAmount != 500 {
		t.Fatalf("free line priced from catalog: %s", w.Body.String())
	}
	id := created.OrderID

	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{"status": "Confirmed"}), http.StatusOK)
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{
		"status": "Shipped",
		"items":  []map[string]any{{"product_id": "P1", "skuID": "SN-1"}, {"product_id": "P2", "skuID": "SN-2"}},
	}), http.StatusOK)

	// dashboard marks a shipped order delivered and paid in one request
	w = doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{
		"status": "Completed", "payment": map[string]any{"status": "Paid"},
	})
	mustStatus(t, w, http.StatusOK)
	var o struct {
		Status  string `json:"status"`
		Payment struct {
			Status string `json:"status"`
		} `json:"payment"`
	}
	decode(t, w, &o)
	if o.Status != "Completed" || o.Payment.Status != "Paid" {
		t.Fatalf("unexpected order after completion: %s", w.Body.String())
	}
}

func TestOrderCancelAndRevise(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)
	id := createOrder(t, s)

	w := doJSON(t, s, http.MethodPut, "/api/order/"+id+"/revise", map[string]any{
		"items": []map[string]any{{"product_id": "P2", "quantity": 2}},
	})
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"total_amount":600`) {
		t.Fatalf("revised total: %s", w.Body.String())
	}

	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{"status": "Cancelled"}), http.StatusOK)
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{"status": "Cancelled"}), http.StatusConflict)
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{
		"payment": map[string]any{"status": "Paid"},
	}), http.StatusConflict)
	mustStatus(t, doJSON(t, s, http.MethodPut, "/api/order/"+id+"/revise", map[string]any{
		"items": []map[string]any{{"product_id": "P2", "quantity": 1}},
	}), http.StatusConflict)
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)

	// validation details carry json paths
	w := doJSON(t, s, http.MethodPost, "/api/order/create-order", map[string]any{
		"items":            []map[string]any{{"product_id": "P1", "quantity": 0}},
		"shipping_address": map[string]any{"phone": "1", "address_line1": "x"},
	})
	mustStatus(t, w, http.StatusBadRequest)
	var resp struct {
		Error   string        `json:"error"`
		Details []errorDetail `json:"details"`
	}
	decode(t, w, &resp)
	paths := map[string]bool{}
	for _, d := range resp.Details {
		paths[d.Path] = true
	}
	if !paths["items[0].quantity"] || !paths["shipping_address.recipient_name"] {
		t.Fatalf("unexpected details: %+v", resp.Details)
	}

	w = doJSON(t, s, http.MethodPost, "/api/order/create-order", "not an object")
	mustStatus(t, w, http.StatusBadRequest)

	body := orderBody()
	body["discount"] = 5000
	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/order/create-order", body), http.StatusBadRequest)

	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/order?date=yesterday", nil), http.StatusBadRequest)
	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/order?status=Lost", nil), http.StatusBadRequest)
	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/product?flag=isHot", nil), http.StatusBadRequest)
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/product", map[string]any{"pID": "P1", "key": "isFeatured"}), http.StatusBadRequest)
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/product", map[string]any{"pID": "P1", "key": "discount", "value": true}), http.StatusBadRequest)
}

func TestHTTP_NotFound_Conflict(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)

	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/order/OID0", nil), http.StatusNotFound)
	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/product/P9", nil), http.StatusNotFound)
	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/stock/lookup/nothing", nil), http.StatusNotFound)
	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/stock/add-stock", map[string]any{"pID": "P9", "skuID": "SN-9"}), http.StatusNotFound)

	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/stock/add-stock", map[string]any{"pID": "P2", "skuID": "SN-1"}), http.StatusConflict)
	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/product", map[string]any{"pID": "P1", "name": "dup"}), http.StatusConflict)

	id := createOrder(t, s)
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/order/update/"+id, map[string]any{"status": "Shipped"}), http.StatusConflict)
}

func TestStockEndpoints(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)
	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/stock/add-stock", map[string]any{"pID": "P1", "skuID": "SN-9"}), http.StatusCreated)

	w := doJSON(t, s, http.MethodGet, "/api/stock/P1", nil)
	mustStatus(t, w, http.StatusOK)
	var res service.StockLookup
	decode(t, w, &res)
	if res.Summary.Total != 2 || res.Summary.Available != 2 || len(res.Units) != 2 {
		t.Fatalf("stock summary: %+v", res.Summary)
	}

	w = doJSON(t, s, http.MethodGet, "/api/stock/lookup/P1", nil)
	mustStatus(t, w, http.StatusOK)
	decode(t, w, &res)
	if res.Selected != nil || res.Product.PID != "P1" {
		t.Fatalf("lookup by product: %s", w.Body.String())
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := setupServer(t)
	seedCatalog(t, s)

	w := doJSON(t, s, http.MethodPatch, "/api/product", map[string]any{"pID": "P1", "key": "isFeatured", "value": true})
	mustStatus(t, w, http.StatusOK)
	w = doJSON(t, s, http.MethodPatch, "/api/product", map[string]any{"pID": "P1", "key": "discount", "value": 50})
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"discount":50`) || !strings.Contains(w.Body.String(), `"isFeatured":true`) {
		t.Fatalf("patched product: %s", w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/product?flag=isFeatured", nil)
	mustStatus(t, w, http.StatusOK)
	var products []map[string]any
	decode(t, w, &products)
	if len(products) != 1 || products[0]["pID"] != "P1" {
		t.Fatalf("flag filter: %s", w.Body.String())
	}

	// dashboard wraps the body in data
	w = doJSON(t, s, http.MethodPatch, "/api/category", map[string]any{"data": map[string]any{"catID": "C1", "action": "add"}})
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"topCategory":true`) {
		t.Fatalf("top category: %s", w.Body.String())
	}
	w = doJSON(t, s, http.MethodPatch, "/api/category", map[string]any{"catID": "C1", "action": "remove"})
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"topCategory":false`) {
		t.Fatalf("top category remove: %s", w.Body.String())
	}
	mustStatus(t, doJSON(t, s, http.MethodPatch, "/api/category", map[string]any{"catID": "C1", "action": "flip"}), http.StatusBadRequest)

	w = doJSON(t, s, http.MethodGet, "/api/category?q=phon", nil)
	mustStatus(t, w, http.StatusOK)
	var cats []map[string]any
	decode(t, w, &cats)
	if len(cats) != 1 {
		t.Fatalf("category search: %s", w.Body.String())
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/user/admin", map[string]any{
		"fullName": "Nusrat Jahan", "userName": "nusrat", "email": "nusrat@shop.com", "password": "s3cretpass",
	})
	mustStatus(t, w, http.StatusCreated)
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password leaked: %s", w.Body.String())
	}
	var admin struct {
		ID     string `json:"_id"`
		Role   string `json:"role"`
		Status bool   `json:"status"`
	}
	decode(t, w, &admin)
	if admin.ID == "" || admin.Role != "Admin" || !admin.Status {
		t.Fatalf("created admin: %s", w.Body.String())
	}

	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/user/admin", map[string]any{
		"fullName": "X", "userName": "x", "email": "NUSRAT@shop.com", "password": "s3cretpass",
	}), http.StatusConflict)
	mustStatus(t, doJSON(t, s, http.MethodPost, "/api/user/admin", map[string]any{
		"fullName": "X", "userName": "x", "email": "x@shop.com", "password": "short",
	}), http.StatusBadRequest)

	w = doJSON(t, s, http.MethodPut, "/api/user/admin/update/"+admin.ID, map[string]any{
		"role": "SuperAdmin", "status": false, "password": "",
	})
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"role":"SuperAdmin"`) || !strings.Contains(w.Body.String(), `"status":false`) {
		t.Fatalf("updated admin: %s", w.Body.String())
	}

	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/user/admin/"+admin.ID, nil), http.StatusOK)
	mustStatus(t, doJSON(t, s, http.MethodGet, "/api/user/admin/missing", nil), http.StatusNotFound)

	w = doJSON(t, s, http.MethodGet, "/api/user/admin?active=true", nil)
	mustStatus(t, w, http.StatusOK)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected no active admins: %s", w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/dashboard", nil)
	mustStatus(t, w, http.StatusOK)
	var sum service.DashboardSummary
	decode(t, w, &sum)
	if sum.ActiveAdmins != 0 {
		t.Fatalf("dashboard: %+v", sum)
	}
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	s := setupServer(t, WithMetrics(metrics.New()))

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	mustStatus(t, w, http.StatusOK)
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}

	s.SetReady(false)
	mustStatus(t, doJSON(t, s, http.MethodGet, "/health", nil), http.StatusServiceUnavailable)

	w = doJSON(t, s, http.MethodGet, "/metrics", nil)
	mustStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `backoffice_http_requests_total{code="200",method="GET",route="/health"} 1`) {
		t.Fatalf("http metrics missing:\n%s", w.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	s := setupServer(t, WithRateLimit(1, 2))
	for i := 0; i < 2; i++ {
		mustStatus(t, doJSON(t, s, http.MethodGet, "/health", nil), http.StatusOK)
	}
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	mustStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
}
