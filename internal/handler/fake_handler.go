package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"privacyguard/internal/fake"
)

// FakeHandler serves generated throwaway identities.
type FakeHandler struct{}

func NewFakeHandler() *FakeHandler {
	return &FakeHandler{}
}

// RegisterRoutes registers all fake-data routes
func (h *FakeHandler) RegisterRoutes(router chi.Router) {
	router.Route("/fake", func(r chi.Router) {
		r.Use(ownerAuth)

		r.Get("/identity", h.GenerateIdentity)
	})
}

// GenerateIdentity returns a fresh random persona.
func (h *FakeHandler) GenerateIdentity(w http.ResponseWriter, r *http.Request) {
	identity, err := fake.NewIdentity()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err, "Failed to generate identity")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(identity, "Identity generated"))
}
