// Package handlers implements the HTTP handlers for the notice API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	app "github.com/taxletterhelp/notice-intelligence/internal/application/notice"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// NoticeHandler serves analysis and generation endpoints.
type NoticeHandler struct {
	service app.Service
	logger  *zap.Logger
}

// NewNoticeHandler creates a NoticeHandler.
func NewNoticeHandler(service app.Service, logger *zap.Logger) *NoticeHandler {
	return &NoticeHandler{service: service, logger: logger}
}

// Analyze handles POST /api/v1/analyses.
func (h *NoticeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var input app.AnalyzeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAppError(w, errors.New(errors.ErrCodeNoticeInvalidRequest, "invalid request body"))
		return
	}

	out, err := h.service.Analyze(r.Context(), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// Generate handles POST /api/v1/analyses/{analysisID}/generations.
func (h *NoticeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input app.GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAppError(w, errors.New(errors.ErrCodeNoticeInvalidRequest, "invalid request body"))
		return
	}
	input.AnalysisID = chi.URLParam(r, "analysisID")

	out, err := h.service.Generate(r.Context(), &input)
	if err != nil {
		writeAppError(w, err)
		return
	}

	// Policy rejections are part of the contract, not server errors: the
	// caller gets a 200 with the error or warning payload to act on.
	status := http.StatusCreated
	if out.Result.Error != nil || out.Result.Warning != nil {
		status = http.StatusOK
	}
	writeJSON(w, status, out)
}

// Get handles GET /api/v1/analyses/{analysisID}.
func (h *NoticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetAnalysis(r.Context(), chi.URLParam(r, "analysisID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// List handles GET /api/v1/analyses.
func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	result, err := h.service.ListAnalyses(r.Context(), &app.ListInput{
		NoticeType: r.URL.Query().Get("notice_type"),
		RiskLevel:  r.URL.Query().Get("risk_level"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/v1/analyses/{analysisID}.
func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAnalysis(r.Context(), chi.URLParam(r, "analysisID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGenerations handles GET /api/v1/analyses/{analysisID}/generations.
func (h *NoticeHandler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListGenerations(r.Context(), chi.URLParam(r, "analysisID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"generations": records})
}

// Stats handles GET /api/v1/analyses/stats.
func (h *NoticeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
