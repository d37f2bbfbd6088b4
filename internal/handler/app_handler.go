package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"privacyguard/internal/service"
	"privacyguard/internal/util"
)

// AppHandler handles HTTP requests for risk checks and the tracked app
// inventory.
type AppHandler struct {
	riskService *service.RiskService
	appService  *service.AppService
}

func NewAppHandler(riskService *service.RiskService, appService *service.AppService) *AppHandler {
	return &AppHandler{
		riskService: riskService,
		appService:  appService,
	}
}

// RegisterRoutes registers all app routes
func (h *AppHandler) RegisterRoutes(router chi.Router) {
	router.Route("/apps", func(r chi.Router) {
		r.Use(ownerAuth)

		r.Post("/check-risk", h.CheckRisk)
		r.Get("/", h.ListApps)
		r.Get("/search", h.SearchApps)
		r.Get("/{appName}", h.GetApp)
		r.Put("/{appName}", h.UpdateApp)
		r.Delete("/{appName}", h.DeleteApp)
	})
}

// CheckRisk scores an app and stores the assessment under the caller.
func (h *AppHandler) CheckRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.RiskCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.riskService.CheckRisk(ctx, ownerID(r), &req)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to check risk")
		return
	}

	statusCode := http.StatusOK
	if result.Created {
		statusCode = http.StatusCreated
	}

	respondWithJSON(w, statusCode, successResponse(result, "Risk assessment completed"))
	util.Debug("Risk check via HTTP",
		util.String("app_name", req.AppName),
		util.Int("risk_score", result.Assessment.Normalized),
		util.Duration("duration", time.Since(startTime)),
	)
}

// ListApps returns the caller's active tracked apps.
func (h *AppHandler) ListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.appService.ListApps(r.Context(), ownerID(r))
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to list apps")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(apps, "Apps retrieved successfully"))
}

// GetApp returns one tracked app by name.
func (h *AppHandler) GetApp(w http.ResponseWriter, r *http.Request) {
	appName := chi.URLParam(r, "appName")
	if appName == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("app name is required"), "App name is required")
		return
	}

	app, err := h.appService.GetApp(r.Context(), ownerID(r), appName)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to get app")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(app, "App retrieved successfully"))
}

// UpdateApp edits a tracked app and rescores it.
func (h *AppHandler) UpdateApp(w http.ResponseWriter, r *http.Request) {
	appName := chi.URLParam(r, "appName")
	if appName == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("app name is required"), "App name is required")
		return
	}

	var req service.AppUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	app, err := h.appService.UpdateApp(r.Context(), ownerID(r), appName, &req)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to update app")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(app, "App updated successfully"))
}

// DeleteApp soft-deletes a tracked app.
func (h *AppHandler) DeleteApp(w http.ResponseWriter, r *http.Request) {
	appName := chi.URLParam(r, "appName")
	if appName == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("app name is required"), "App name is required")
		return
	}

	if err := h.appService.DeleteApp(r.Context(), ownerID(r), appName); err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to delete app")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "App deleted successfully"))
}

// SearchApps queries the full-text app index.
func (h *AppHandler) SearchApps(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.appService.SearchApps(r.Context(), ownerID(r), term, limit)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to search apps")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(hits, "Search completed"))
}
