package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacyguard/internal/service"
)

// VaultHandler handles HTTP requests for the credential vault.
type VaultHandler struct {
	vaultService *service.VaultService
}

func NewVaultHandler(vaultService *service.VaultService) *VaultHandler {
	return &VaultHandler{vaultService: vaultService}
}

// RegisterRoutes registers all vault routes
func (h *VaultHandler) RegisterRoutes(router chi.Router) {
	router.Route("/vault", func(r chi.Router) {
		r.Use(ownerAuth)

		r.Post("/items", h.CreateItem)
		r.Get("/items", h.ListItems)
		r.Get("/items/{itemID}", h.GetItem)
		r.Delete("/items/{itemID}", h.DeleteItem)
	})
}

// CreateItem stores a new encrypted credential.
func (h *VaultHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req service.VaultItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	item, err := h.vaultService.CreateItem(r.Context(), ownerID(r), &req)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to create vault item")
		return
	}

	respondWithJSON(w, http.StatusCreated, successResponse(item, "Vault item created successfully"))
}

// ListItems returns item metadata without secrets.
func (h *VaultHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.vaultService.ListItems(r.Context(), ownerID(r))
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to list vault items")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(items, "Vault items retrieved successfully"))
}

// GetItem returns one credential with its decrypted secret.
func (h *VaultHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("item id is required"), "Item ID is required")
		return
	}

	item, err := h.vaultService.GetItem(r.Context(), ownerID(r), itemID)
	if err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to get vault item")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(item, "Vault item retrieved successfully"))
}

// DeleteItem removes a credential permanently.
func (h *VaultHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if itemID == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("item id is required"), "Item ID is required")
		return
	}

	if err := h.vaultService.DeleteItem(r.Context(), ownerID(r), itemID); err != nil {
		respondWithError(w, getStatusCode(err), err, "Failed to delete vault item")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "Vault item deleted successfully"))
}
