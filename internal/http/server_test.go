package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"budgetplan/internal/core"
	"budgetplan/internal/services"
	"budgetplan/internal/storage"
	"budgetplan/internal/store"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return string(rune('a' + s.n - 1))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	planner, err := store.New(context.Background(), storage.NewMemoryKV(), &seqIDs{})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	svc := services.NewPlannerService(planner, nil, nil, "完整预算数据")
	srv := NewServer(":0", svc)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestGetMonthDefaultsToEmpty(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/months/2025-06", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var m monthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.MonthKey != "2025-06" || m.Income != 0 || len(m.Allocations) != 0 {
		t.Fatalf("unexpected month %+v", m)
	}
}

func TestGetMonthRejectsBadKey(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/api/months/june-2025", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAllocationLifecycleOverAPI(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPut, "/api/months/2025-06/income", `{"income":"3,000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set income: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var m monthResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	if m.Income != 3000 {
		t.Fatalf("expected income 3000 after separator stripping, got %v", m.Income)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/months/2025-06/allocations", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("add allocation: status=%d", rr.Code)
	}
	var alloc core.Allocation
	_ = json.Unmarshal(rr.Body.Bytes(), &alloc)
	if alloc.ID == "" {
		t.Fatal("expected allocation id")
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/months/2025-06/allocations/"+alloc.ID,
		`{"field":"amount","value":"1200"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update allocation: status=%d body=%s", rr.Code, rr.Body.String())
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	if m.TotalAllocated != 1200 || m.Balance != 1800 {
		t.Fatalf("unexpected totals %+v", m)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/months/2025-06/allocations/"+alloc.ID+"/group",
		`{"groupId":"saving"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set group: status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/months/2025-06/allocations/"+alloc.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("remove allocation: status=%d", rr.Code)
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	if len(m.Allocations) != 0 {
		t.Fatalf("expected empty allocations, got %+v", m.Allocations)
	}
}

func TestUpdateAllocationUnknownField(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/months/2025-06/allocations", "")
	var alloc core.Allocation
	_ = json.Unmarshal(rr.Body.Bytes(), &alloc)

	rr = doJSON(t, srv, http.MethodPut, "/api/months/2025-06/allocations/"+alloc.ID,
		`{"field":"color","value":"#fff"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rr.Code)
	}
}

func TestApplyTemplateOverAPI(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPut, "/api/months/2025-06/income", `{"income":"3000"}`)

	rr := doJSON(t, srv, http.MethodPost, "/api/months/2025-06/template", `{"name":"不存在"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown template, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/months/2025-06/template", `{"name":"50/30/20法则"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("apply template: status=%d body=%s", rr.Code, rr.Body.String())
	}
	var m monthResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	if len(m.Allocations) != 3 || m.Balance != 0 {
		t.Fatalf("unexpected month after template %+v", m)
	}
	if m.ActiveTemplate != "50/30/20法则" {
		t.Fatalf("unexpected active template %q", m.ActiveTemplate)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/categories", "")
	var categories []core.Category
	_ = json.Unmarshal(rr.Body.Bytes(), &categories)
	if len(categories) != len(core.DefaultCategories) {
		t.Fatalf("expected default registry, got %d entries", len(categories))
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":"旅行","color":"#0ea5e9"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add category: status=%d", rr.Code)
	}
	var c core.Category
	_ = json.Unmarshal(rr.Body.Bytes(), &c)
	if !strings.HasPrefix(c.ID, "custom_") || c.Name != "旅行" {
		t.Fatalf("unexpected category %+v", c)
	}

	// Blank name is rejected
	rr = doJSON(t, srv, http.MethodPost, "/api/categories", `{"name":"  ","color":"#000"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/categories/"+c.ID, `{"field":"name","value":"旅游"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update category: status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/categories/nope", `{"field":"name","value":"x"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/categories/"+c.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("remove category: status=%d", rr.Code)
	}
}

func TestTemplateCatalogEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/templates", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var views []templateView
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(views) != len(core.TemplateNames) {
		t.Fatalf("expected %d templates, got %d", len(core.TemplateNames), len(views))
	}
	if views[0].Name != core.TemplateNames[0] || views[0].Title == "" {
		t.Fatalf("unexpected first template %+v", views[0])
	}
	for _, v := range views {
		if v.Name == "50/30/20法则" && len(v.Groups) != 3 {
			t.Fatalf("expected 3 groups for 50/30/20法则, got %d", len(v.Groups))
		}
		if v.Name == "零基预算法" && len(v.Groups) != 0 {
			t.Fatalf("expected no groups for 零基预算法, got %d", len(v.Groups))
		}
	}
}

func TestReportEndpointsAndInvalidation(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPut, "/api/months/2025-06/income", `{"income":"3000"}`)
	doJSON(t, srv, http.MethodPost, "/api/months/2025-06/template", `{"name":"50/30/20法则"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/months/2025-06/reports/breakdown", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("breakdown: status=%d", rr.Code)
	}
	var breakdown []core.CategoryValue
	_ = json.Unmarshal(rr.Body.Bytes(), &breakdown)
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 breakdown entries, got %d", len(breakdown))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/months/2025-06/reports/groups", "")
	var groups []core.GroupExpense
	_ = json.Unmarshal(rr.Body.Bytes(), &groups)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports/balances?months=3", "")
	var report balancesReport
	_ = json.Unmarshal(rr.Body.Bytes(), &report)
	if len(report.Months) != 1 || report.Months[0].Balance != 0 || report.TotalBalance != 0 {
		t.Fatalf("unexpected balances %+v", report)
	}

	// A mutation must invalidate the cached reports
	doJSON(t, srv, http.MethodPut, "/api/months/2025-06/income", `{"income":"6000"}`)
	rr = doJSON(t, srv, http.MethodGet, "/api/reports/balances?months=3", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &report)
	if len(report.Months) != 1 || report.Months[0].Balance != 3000 || report.TotalBalance != 3000 {
		t.Fatalf("expected fresh balance after mutation, got %+v", report)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/reports/balances?months=abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad months parameter, got %d", rr.Code)
	}
}

func TestExportImportOverAPI(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPut, "/api/months/2025-06/income", `{"income":"3000"}`)
	doJSON(t, srv, http.MethodPost, "/api/months/2025-06/template", `{"name":"零基预算法"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export: status=%d", rr.Code)
	}
	if disposition := rr.Header().Get("Content-Disposition"); !strings.Contains(disposition, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}
	exported := rr.Body.String()

	fresh := newTestServer(t)
	rr = doJSON(t, fresh, http.MethodPost, "/api/import", exported)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("import: status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, fresh, http.MethodGet, "/api/months/2025-06", "")
	var m monthResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &m)
	if m.Income != 3000 || m.ActiveTemplate != "零基预算法" {
		t.Fatalf("imported month mismatch %+v", m)
	}

	rr = doJSON(t, fresh, http.MethodPost, "/api/import", `{"monthlyData":{}}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed import, got %d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/months/2025-06", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing X-Content-Type-Options header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing X-Frame-Options header")
	}
}
