package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"budgetplan/internal/core"
)

// monthResponse is the canonical view of a planned month.
type monthResponse struct {
	MonthKey       string            `json:"monthKey"`
	Income         float64           `json:"income"`
	Allocations    []core.Allocation `json:"allocations"`
	ActiveTemplate string            `json:"activeTemplate,omitempty"`
	TotalAllocated float64           `json:"totalAllocated"`
	Balance        float64           `json:"balance"`
}

func (s *Server) monthResponseFor(monthKey string, m core.MonthData) monthResponse {
	return monthResponse{
		MonthKey:       monthKey,
		Income:         m.Income,
		Allocations:    m.Allocations,
		ActiveTemplate: m.ActiveTemplate,
		TotalAllocated: core.TotalAllocated(m),
		Balance:        core.Balance(m),
	}
}

func (s *Server) handleGetMonth(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	if !core.ValidMonthKey(monthKey) {
		respondError(w, r, fmt.Errorf("%w: %s", core.ErrInvalidMonthKey, monthKey))
		return
	}
	respondJSON(w, http.StatusOK, s.monthResponseFor(monthKey, s.planner.MonthData(monthKey)))
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	var body struct {
		Income string `json:"income"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.planner.SetIncome(r.Context(), monthKey, sanitizeInput(body.Income))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.monthResponseFor(monthKey, m))
}

func (s *Server) handleAddAllocation(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	alloc, err := s.planner.AddAllocation(r.Context(), monthKey)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, alloc)
}

func (s *Server) handleUpdateAllocation(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	allocID := r.PathValue("id")
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.planner.UpdateAllocationField(r.Context(), monthKey, allocID, body.Field, sanitizeInput(body.Value))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.monthResponseFor(monthKey, m))
}

func (s *Server) handleRemoveAllocation(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	m, err := s.planner.RemoveAllocation(r.Context(), monthKey, r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.monthResponseFor(monthKey, m))
}

func (s *Server) handleSetManualGroup(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	var body struct {
		GroupID string `json:"groupId"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.planner.SetManualGroup(r.Context(), monthKey, r.PathValue("id"), body.GroupID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.monthResponseFor(monthKey, m))
}

func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	m, err := s.planner.ApplyTemplate(r.Context(), monthKey, body.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.monthResponseFor(monthKey, m))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.planner.Categories())
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	c, ok, err := s.planner.AddCategory(r.Context(), sanitizeInput(body.Name), sanitizeInput(body.Color))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !ok {
		respondError(w, r, core.ErrEmptyName)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.planner.UpdateCategoryField(r.Context(), r.PathValue("id"), body.Field, sanitizeInput(body.Value)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.planner.Categories())
}

func (s *Server) handleRemoveCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.RemoveCategory(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// templateView describes a catalog entry without its seeding function.
type templateView struct {
	Name        string               `json:"name"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	SuitableFor string               `json:"suitableFor"`
	Groups      []core.CategoryGroup `json:"groups,omitempty"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	views := make([]templateView, 0, len(core.TemplateNames))
	for _, name := range core.TemplateNames {
		info, ok := core.Template(name)
		if !ok {
			continue
		}
		views = append(views, templateView{
			Name:        name,
			Title:       info.Title,
			Description: info.Description,
			SuitableFor: info.SuitableFor,
			Groups:      core.TemplateGroups(name),
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	if !core.ValidMonthKey(monthKey) {
		respondError(w, r, fmt.Errorf("%w: %s", core.ErrInvalidMonthKey, monthKey))
		return
	}

	includeUnknown := r.URL.Query().Get("includeUnknown") == "true"
	cacheKey := monthKey
	if includeUnknown {
		cacheKey += "+unknown"
	}

	if cached, ok := s.breakdownCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	breakdown := s.planner.CategoryBreakdown(monthKey, includeUnknown)
	s.breakdownCache.Set(cacheKey, breakdown)
	respondJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleGroupExpenses(w http.ResponseWriter, r *http.Request) {
	monthKey := r.PathValue("key")
	if !core.ValidMonthKey(monthKey) {
		respondError(w, r, fmt.Errorf("%w: %s", core.ErrInvalidMonthKey, monthKey))
		return
	}

	if cached, ok := s.groupCache.Get(monthKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	groups := s.planner.GroupExpenses(monthKey)
	s.groupCache.Set(monthKey, groups)
	respondJSON(w, http.StatusOK, groups)
}

// balancesReport pairs the recent per-month balances with the all-time total.
type balancesReport struct {
	Months       []core.MonthBalance `json:"months"`
	TotalBalance float64             `json:"totalBalance"`
}

func (s *Server) handleRecentBalances(w http.ResponseWriter, r *http.Request) {
	n := 6
	if v := r.URL.Query().Get("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondError(w, r, fmt.Errorf("%w: invalid months parameter %q", errBadRequest, v))
			return
		}
		n = parsed
	}

	cacheKey := strconv.Itoa(n)
	if cached, ok := s.balancesCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	report := balancesReport{
		Months:       s.planner.RecentBalances(n),
		TotalBalance: s.planner.TotalBalance(),
	}
	s.balancesCache.Set(cacheKey, report)
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.planner.Export(time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

const maxImportSize = 10 << 20 // 10 MiB

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	if err := s.planner.Import(r.Context(), data); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
