package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dgarcia/dashboard-api/internal/api/middleware"
	"github.com/dgarcia/dashboard-api/internal/domain"
	"github.com/dgarcia/dashboard-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

type CreateAnalysisRequest struct {
	Name         string          `json:"name"`
	Data         json.RawMessage `json:"data"`
	Filters      json.RawMessage `json:"filters"`
	InvoiceCount int             `json:"invoiceCount"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

type UpdateAnalysisRequest struct {
	Name         *string          `json:"name"`
	Filters      json.RawMessage  `json:"filters"`
	InvoiceCount *int             `json:"invoiceCount"`
	TotalValue   *decimal.Decimal `json:"totalValue"`
}

// AnalysisSummaryResponse is the list shape; it leaves out the payload.
type AnalysisSummaryResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	UserID       string          `json:"userId"`
	CreatedAt    time.Time       `json:"createdAt"`
	ModifiedAt   *time.Time      `json:"modifiedAt,omitempty"`
	InvoiceCount int             `json:"invoiceCount"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

type AnalysisDetailResponse struct {
	AnalysisSummaryResponse
	Data    json.RawMessage `json:"data"`
	Filters json.RawMessage `json:"filters,omitempty"`
}

func toAnalysisSummary(a *domain.Analysis) AnalysisSummaryResponse {
	return AnalysisSummaryResponse{
		ID:           a.ID.String(),
		Name:         a.Name,
		UserID:       a.UserID.String(),
		CreatedAt:    a.CreatedAt,
		ModifiedAt:   a.ModifiedAt,
		InvoiceCount: a.InvoiceCount,
		TotalValue:   a.TotalValue,
	}
}

func toAnalysisDetail(a *domain.Analysis) AnalysisDetailResponse {
	return AnalysisDetailResponse{
		AnalysisSummaryResponse: toAnalysisSummary(a),
		Data:                    json.RawMessage(a.Data),
		Filters:                 json.RawMessage(a.Filters),
	}
}

func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	var ownerID *uuid.UUID
	if r.URL.Query().Get("mine") == "true" {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ownerID = &userID
	}

	analyses, err := h.analysisService.List(r.Context(), ownerID)
	if err != nil {
		log.Printf("ERROR [analyses.List] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]AnalysisSummaryResponse, 0, len(analyses))
	for _, a := range analyses {
		resp = append(resp, toAnalysisSummary(a))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid analysis ID", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [analyses.Get] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAnalysisDetail(analysis))
}

func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || len(req.Data) == 0 {
		http.Error(w, "Name and data are required", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.Create(r.Context(), service.CreateAnalysisInput{
		Name:         req.Name,
		Data:         req.Data,
		Filters:      req.Filters,
		InvoiceCount: req.InvoiceCount,
		TotalValue:   req.TotalValue,
	}, userID)
	if err != nil {
		log.Printf("ERROR [analyses.Create] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAnalysisDetail(analysis))
}

func (h *AnalysisHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid analysis ID", http.StatusBadRequest)
		return
	}

	var req UpdateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.Update(r.Context(), id, service.UpdateAnalysisInput{
		Name:         req.Name,
		Filters:      req.Filters,
		InvoiceCount: req.InvoiceCount,
		TotalValue:   req.TotalValue,
	})
	if err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [analyses.Update] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAnalysisDetail(analysis))
}

func (h *AnalysisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid analysis ID", http.StatusBadRequest)
		return
	}

	if err := h.analysisService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrAnalysisNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		log.Printf("ERROR [analyses.Delete] %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
