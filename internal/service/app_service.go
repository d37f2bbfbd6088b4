package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"privacyguard/internal/client"
	"privacyguard/internal/models"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/util"
)

// AppService manages the tracked app inventory: listing, edits, soft deletes
// and full-text search over the Elasticsearch projection.
type AppService struct {
	appRepo  scylla.AppRepository
	riskSvc  *RiskService
	esClient *client.ESClient
}

// AppUpdateRequest carries the editable fields of a tracked app. Nil fields
// are left unchanged.
type AppUpdateRequest struct {
	URL         *string          `json:"url,omitempty"`
	Permissions *map[string]bool `json:"permissions,omitempty"`
	UserEmail   *string          `json:"userEmail,omitempty"`
	UserPhone   *string          `json:"userPhoneNumber,omitempty"`
}

// AppSearchHit is one search result from the app index.
type AppSearchHit struct {
	AppID       string  `json:"appId"`
	AppName     string  `json:"appName"`
	Domain      string  `json:"domain,omitempty"`
	RiskScore   int     `json:"riskScore"`
	RiskLevel   string  `json:"riskLevel"`
	BreachCount int     `json:"breachCount"`
	Relevance   float64 `json:"relevance"`
}

func NewAppService(appRepo scylla.AppRepository, riskSvc *RiskService, esClient *client.ESClient) *AppService {
	return &AppService{
		appRepo:  appRepo,
		riskSvc:  riskSvc,
		esClient: esClient,
	}
}

func (s *AppService) ListApps(ctx context.Context, userID string) ([]*models.TrackedApp, error) {
	apps, err := s.appRepo.ListAppsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []*models.TrackedApp{}
	}
	return apps, nil
}

func (s *AppService) GetApp(ctx context.Context, userID, appName string) (*models.TrackedApp, error) {
	app, err := s.appRepo.GetAppByName(ctx, userID, appName)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, fmt.Errorf("%w: app %q", ErrNotFound, appName)
		}
		return nil, err
	}
	if !app.IsActive {
		return nil, fmt.Errorf("%w: app %q", ErrNotFound, appName)
	}
	return app, nil
}

// UpdateApp applies field edits and immediately rescores the app so the
// stored risk never diverges from the stored inputs.
func (s *AppService) UpdateApp(ctx context.Context, userID, appName string, req *AppUpdateRequest) (*models.TrackedApp, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrInvalidInput)
	}

	app, err := s.GetApp(ctx, userID, appName)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		app.URL = *req.URL
		app.Domain = util.ExtractDomain(*req.URL)
	}
	if req.Permissions != nil {
		app.Permissions = *req.Permissions
	}
	if req.UserEmail != nil {
		app.UserEmail = *req.UserEmail
	}
	if req.UserPhone != nil {
		app.UserPhone = *req.UserPhone
	}

	if _, err := s.appRepo.UpsertApp(ctx, app); err != nil {
		return nil, err
	}

	if _, _, err := s.riskSvc.Rescore(ctx, app); err != nil {
		return nil, err
	}

	util.Info("Tracked app updated",
		zap.String("user_id", userID),
		zap.String("app_name", appName),
		zap.Int("risk_score", app.RiskScore))

	return app, nil
}

// DeleteApp soft-deletes the record and drops it from the search index.
func (s *AppService) DeleteApp(ctx context.Context, userID, appName string) error {
	app, err := s.GetApp(ctx, userID, appName)
	if err != nil {
		return err
	}

	if err := s.appRepo.DeactivateApp(ctx, userID, appName); err != nil {
		return err
	}

	if s.esClient != nil {
		res, err := s.esClient.DeleteDocument(s.esClient.AppIndex(), app.AppID)
		if err != nil {
			util.Warn("Failed to remove app from search index",
				zap.String("app_id", app.AppID),
				zap.Error(err))
		} else if res != nil && res.Body != nil {
			res.Body.Close()
		}
	}

	return nil
}

// SearchApps queries the Elasticsearch projection, scoped to the caller.
func (s *AppService) SearchApps(ctx context.Context, userID, term string, limit int) ([]*AppSearchHit, error) {
	if s.esClient == nil {
		return nil, fmt.Errorf("search is not available")
	}
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"user_id": userID}},
					{"term": map[string]interface{}{"is_active": true}},
				},
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  term,
						"fields": []string{"app_name^2", "domain", "risk_level"},
					},
				},
			},
		},
	}

	res, err := s.esClient.Search(ctx, s.esClient.AppIndex(), query)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					AppID       string `json:"app_id"`
					AppName     string `json:"app_name"`
					Domain      string `json:"domain"`
					RiskScore   int    `json:"risk_score"`
					RiskLevel   string `json:"risk_level"`
					BreachCount int    `json:"breach_count"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := s.esClient.ParseResponse(res, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	hits := make([]*AppSearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, &AppSearchHit{
			AppID:       h.Source.AppID,
			AppName:     h.Source.AppName,
			Domain:      h.Source.Domain,
			RiskScore:   h.Source.RiskScore,
			RiskLevel:   h.Source.RiskLevel,
			BreachCount: h.Source.BreachCount,
			Relevance:   h.Score,
		})
	}

	return hits, nil
}
