package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"privacyguard/internal/service"
	"privacyguard/internal/util"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// successResponse creates a successful response
func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// errorResponse creates an error response
func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		util.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	util.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	respondWithJSON(w, statusCode, errorResponse(err, message))
}

// getStatusCode determines the appropriate HTTP status code for an error
func getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrVaultSealed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

type contextKey string

const ownerIDKey contextKey = "owner_id"

var errUnauthorized = errors.New("a bearer token with the owner id is required")

// ownerAuth extracts the owner UUID from the Authorization header. The token
// is the owner's id used as-is; auth protocol design stays out of this
// service.
func ownerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, errUnauthorized, "Missing credentials")
			return
		}

		ownerID, err := uuid.Parse(strings.TrimSpace(token))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, errUnauthorized, "Invalid credentials")
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerID returns the authenticated owner's id from the request context.
func ownerID(r *http.Request) string {
	id, _ := r.Context().Value(ownerIDKey).(string)
	return id
}
