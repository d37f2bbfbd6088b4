package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"privacyguard/internal/service"
	"privacyguard/internal/util"
)

// ScanHandler handles HTTP requests for email breach scans.
type ScanHandler struct {
	scanService *service.ScanService
}

func NewScanHandler(scanService *service.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

type emailScanRequest struct {
	Email string `json:"email"`
}

type batchScanRequest struct {
	Emails []string `json:"emails"`
}

// RegisterRoutes registers all scan routes
func (h *ScanHandler) RegisterRoutes(router chi.Router) {
	router.Route("/scan", func(r chi.Router) {
		r.Use(ownerAuth)

		r.Post("/email", h.ScanEmail)
		r.Post("/batch", h.ScanBatch)
		r.Get("/history", h.ScanHistory)
	})
}

// ScanEmail checks one address against the breach service.
func (h *ScanHandler) ScanEmail(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req emailScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.scanService.ScanEmail(r.Context(), ownerID(r), req.Email)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to scan email")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(result, "Email scan completed"))
	util.Debug("Email scan via HTTP",
		util.Bool("breached", result.Breached),
		util.Duration("duration", time.Since(startTime)),
	)
}

// ScanBatch checks a list of addresses concurrently.
func (h *ScanHandler) ScanBatch(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var req batchScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	results, err := h.scanService.ScanBatch(r.Context(), ownerID(r), req.Emails)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to scan emails")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(results, "Batch scan completed"))
	util.Debug("Batch email scan via HTTP",
		util.Int("emails", len(req.Emails)),
		util.Duration("duration", time.Since(startTime)),
	)
}

// ScanHistory lists the caller's prior scans as digests.
func (h *ScanHandler) ScanHistory(w http.ResponseWriter, r *http.Request) {
	scans, err := h.scanService.ScanHistory(r.Context(), ownerID(r))
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to get scan history")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(scans, "Scan history retrieved successfully"))
}
