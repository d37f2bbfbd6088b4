package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"privacyguard/internal/breach"
	"privacyguard/internal/cache"
	"privacyguard/internal/config"
	"privacyguard/internal/models"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/risk"
	"privacyguard/internal/service"
)

const testOwner = "4d1c2a7e-0f33-4b8a-9c51-000000000042"

type memAppRepo struct {
	mu   sync.Mutex
	apps map[string]*models.TrackedApp
}

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: make(map[string]*models.TrackedApp)}
}

func (r *memAppRepo) key(userID, appName string) string {
	return userID + "/" + appName
}

func (r *memAppRepo) UpsertApp(ctx context.Context, app *models.TrackedApp) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(app.UserID, app.AppName)
	prev, exists := r.apps[k]
	if exists {
		app.AppID = prev.AppID
		app.CreatedAt = prev.CreatedAt
	}
	stored := *app
	r.apps[k] = &stored
	return !exists, nil
}

func (r *memAppRepo) GetAppByName(ctx context.Context, userID, appName string) (*models.TrackedApp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[r.key(userID, appName)]
	if !ok {
		return nil, scylla.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (r *memAppRepo) ListAppsByUser(ctx context.Context, userID string) ([]*models.TrackedApp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TrackedApp
	for _, app := range r.apps {
		if app.UserID == userID && app.IsActive {
			copied := *app
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memAppRepo) UpdateAppRisk(ctx context.Context, app *models.TrackedApp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.apps[r.key(app.UserID, app.AppName)]
	if !ok {
		return scylla.ErrNotFound
	}
	stored.RiskScore = app.RiskScore
	stored.RiskLevel = app.RiskLevel
	stored.BreachCount = app.BreachCount
	now := time.Now().UTC()
	stored.LastRiskCheck = &now
	return nil
}

func (r *memAppRepo) DeactivateApp(ctx context.Context, userID, appName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[r.key(userID, appName)]
	if !ok {
		return scylla.ErrNotFound
	}
	app.IsActive = false
	return nil
}

type fixedCounter struct {
	domainCount int
}

func (c fixedCounter) CountForDomain(ctx context.Context, domain string) (int, error) {
	return c.domainCount, nil
}

func (c fixedCounter) CountForEmail(ctx context.Context, email string) (int, error) {
	return 0, nil
}

func newAppTestRouter(t *testing.T, breaches int) http.Handler {
	t.Helper()

	cfg := &config.Config{Environment: "test"}
	breachCfg := &config.BreachConfig{
		SuccessTTL: time.Hour,
		FailureTTL: time.Minute,
	}
	lookup := breach.NewLookup(fixedCounter{domainCount: breaches}, cache.New(nil), breachCfg)

	repo := newMemAppRepo()
	riskSvc := service.NewRiskService(repo, lookup, risk.DefaultConfig(), nil, nil, nil, cfg)
	appSvc := service.NewAppService(repo, riskSvc, nil)

	return NewRouter(cfg,
		NewAppHandler(riskSvc, appSvc),
		NewScanHandler(nil),
		NewVaultHandler(nil),
		NewFakeHandler(),
	)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testOwner)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCheckRiskEndpoint(t *testing.T) {
	router := newAppTestRouter(t, 2)

	body := map[string]any{
		"appName": "photo-share",
		"url":     "https://photoshare.example.com/app",
		"permissions": map[string]bool{
			risk.FactorLocation:         true,
			risk.FactorCameraMicrophone: true,
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/apps/check-risk", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first check status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool                      `json:"success"`
		Data    service.RiskCheckResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if !resp.Data.Created {
		t.Error("expected created=true on first check")
	}
	if resp.Data.RiskLevel != string(risk.LevelMedium) {
		t.Errorf("riskLevel = %q, want %q", resp.Data.RiskLevel, risk.LevelMedium)
	}
	if resp.Data.App.BreachCount != 2 {
		t.Errorf("breachCount = %d, want 2", resp.Data.App.BreachCount)
	}
	if len(resp.Data.Suggestions) == 0 {
		t.Error("expected suggestions in response")
	}

	// Same app again updates instead of creating.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/apps/check-risk", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("second check status = %d, want 200", rec.Code)
	}
}

func TestCheckRiskEndpointRejectsBadInput(t *testing.T) {
	router := newAppTestRouter(t, 0)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"permissions": map[string]bool{}}},
		{"suspicious name", map[string]any{"appName": "x<script>y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/apps/check-risk", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAppLifecycleEndpoints(t *testing.T) {
	router := newAppTestRouter(t, 0)

	check := map[string]any{
		"appName":     "notes",
		"permissions": map[string]bool{risk.FactorContacts: true},
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/apps/check-risk", check); rec.Code != http.StatusCreated {
		t.Fatalf("seed check failed: %d %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/apps/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listResp struct {
		Data []*models.TrackedApp `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("invalid list envelope: %v", err)
	}
	if len(listResp.Data) != 1 || listResp.Data[0].AppName != "notes" {
		t.Fatalf("unexpected list: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/apps/notes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/apps/notes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/apps/notes", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestUpdateAppEndpointRescores(t *testing.T) {
	router := newAppTestRouter(t, 0)

	check := map[string]any{
		"appName":     "tracker",
		"permissions": map[string]bool{risk.FactorContacts: true},
	}
	if rec := doJSON(t, router, http.MethodPost, "/api/v1/apps/check-risk", check); rec.Code != http.StatusCreated {
		t.Fatalf("seed check failed: %d", rec.Code)
	}

	update := map[string]any{
		"permissions": map[string]bool{
			risk.FactorLocation:         true,
			risk.FactorCameraMicrophone: true,
			risk.FactorSMS:              true,
			risk.FactorContacts:         true,
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/api/v1/apps/tracker", update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data *models.TrackedApp `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if len(resp.Data.Permissions) != 4 {
		t.Errorf("permissions = %v, want 4 entries", resp.Data.Permissions)
	}
	if resp.Data.RiskScore <= 0 {
		t.Errorf("riskScore = %d, want > 0 after rescore", resp.Data.RiskScore)
	}
}

func TestUpdateUnknownAppReturns404(t *testing.T) {
	router := newAppTestRouter(t, 0)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/apps/ghost", map[string]any{})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}
