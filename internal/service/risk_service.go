package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"privacyguard/internal/breach"
	"privacyguard/internal/client"
	"privacyguard/internal/config"
	"privacyguard/internal/models"
	"privacyguard/internal/repository/clickhouse"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/risk"
	"privacyguard/internal/util"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// RiskService orchestrates a full risk check: breach lookup, scoring,
// persistence and the downstream event fan-out. Persistence failures fail the
// request; analytics and event publishing never do.
type RiskService struct {
	appRepo       scylla.AppRepository
	breachLookup  *breach.Lookup
	riskCfg       *risk.Config
	producer      *client.KafkaProducer
	assessmentLog *clickhouse.AssessmentLog
	esClient      *client.ESClient
	cfg           *config.Config
}

// RiskCheckRequest carries the app description submitted for scoring. Save
// defaults to true when omitted; an explicit false turns the call into a
// dry run that scores without touching storage.
type RiskCheckRequest struct {
	AppName     string          `json:"appName"`
	URL         string          `json:"url,omitempty"`
	Permissions map[string]bool `json:"permissions"`
	UserEmail   string          `json:"userEmail,omitempty"`
	UserPhone   string          `json:"userPhoneNumber,omitempty"`
	Save        *bool           `json:"save,omitempty"`
}

// RiskCheckResponse is the live assessment returned to the caller.
type RiskCheckResponse struct {
	App         *models.TrackedApp `json:"app"`
	Assessment  risk.Assessment    `json:"assessment"`
	RiskLevel   string             `json:"riskLevel"`
	Suggestions []risk.Suggestion  `json:"suggestions"`
	Created     bool               `json:"created"`
}

type assessmentEvent struct {
	UserID      string `json:"user_id"`
	AppID       string `json:"app_id"`
	AppName     string `json:"app_name"`
	Domain      string `json:"domain,omitempty"`
	RiskScore   int    `json:"risk_score"`
	RiskLevel   string `json:"risk_level"`
	BreachCount int    `json:"breach_count"`
	AssessedAt  string `json:"assessed_at"`
}

func NewRiskService(
	appRepo scylla.AppRepository,
	breachLookup *breach.Lookup,
	riskCfg *risk.Config,
	producer *client.KafkaProducer,
	assessmentLog *clickhouse.AssessmentLog,
	esClient *client.ESClient,
	cfg *config.Config,
) *RiskService {
	return &RiskService{
		appRepo:       appRepo,
		breachLookup:  breachLookup,
		riskCfg:       riskCfg,
		producer:      producer,
		assessmentLog: assessmentLog,
		esClient:      esClient,
		cfg:           cfg,
	}
}

// CheckRisk scores an app and returns the assessment with remediation
// suggestions. Unless the request opts out, the result is stored under
// (user, app name) and fanned out to analytics.
func (s *RiskService) CheckRisk(ctx context.Context, userID string, req *RiskCheckRequest) (*RiskCheckResponse, error) {
	startTime := time.Now()

	if err := s.validateCheckRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	domain := util.ExtractDomain(req.URL)
	breachCount := s.breachLookup.DomainCountOrZero(ctx, domain)

	hasEmail := req.UserEmail != ""
	hasPhone := req.UserPhone != ""

	assessment := risk.Score(s.riskCfg, req.Permissions, hasEmail, hasPhone, breachCount)
	level := s.riskCfg.LevelFor(assessment.Normalized)
	suggestions := risk.GenerateSuggestions(req.Permissions, hasEmail, hasPhone, assessment.URLModifier, level)

	now := time.Now().UTC()
	app := &models.TrackedApp{
		UserID:        userID,
		AppName:       util.SanitizeInput(req.AppName),
		URL:           req.URL,
		Domain:        domain,
		Permissions:   req.Permissions,
		UserEmail:     req.UserEmail,
		UserPhone:     req.UserPhone,
		RiskScore:     assessment.Normalized,
		RiskLevel:     string(level),
		BreachCount:   breachCount,
		IsActive:      true,
		LastRiskCheck: &now,
	}
	if domain != "" {
		app.BreachCheckedAt = &now
	}

	var created bool
	if req.Save == nil || *req.Save {
		var err error
		created, err = s.appRepo.UpsertApp(ctx, app)
		if err != nil {
			return nil, err
		}
		s.publishAssessment(ctx, app, assessment, level)
	}

	util.Info("Risk check completed",
		zap.String("user_id", userID),
		zap.String("app_name", app.AppName),
		zap.Int("risk_score", assessment.Normalized),
		zap.String("risk_level", string(level)),
		zap.Bool("created", created),
		zap.Duration("duration", time.Since(startTime)))

	return &RiskCheckResponse{
		App:         app,
		Assessment:  assessment,
		RiskLevel:   string(level),
		Suggestions: suggestions,
		Created:     created,
	}, nil
}

// Rescore recomputes an already tracked app using its stored inputs. Used
// after permission edits and by periodic re-checks.
func (s *RiskService) Rescore(ctx context.Context, app *models.TrackedApp) (risk.Assessment, risk.Level, error) {
	breachCount := s.breachLookup.DomainCountOrZero(ctx, app.Domain)

	assessment := risk.Score(s.riskCfg, app.Permissions, app.UserEmail != "", app.UserPhone != "", breachCount)
	level := s.riskCfg.LevelFor(assessment.Normalized)

	now := time.Now().UTC()
	app.RiskScore = assessment.Normalized
	app.RiskLevel = string(level)
	app.BreachCount = breachCount
	app.LastRiskCheck = &now
	if app.Domain != "" {
		app.BreachCheckedAt = &now
	}

	if err := s.appRepo.UpdateAppRisk(ctx, app); err != nil {
		return assessment, level, err
	}

	s.publishAssessment(ctx, app, assessment, level)

	return assessment, level, nil
}

// Suggestions regenerates remediation advice for a stored app without
// touching the upstream breach service.
func (s *RiskService) Suggestions(app *models.TrackedApp) []risk.Suggestion {
	urlModifier := app.BreachCount * s.riskCfg.Breach.PerBreach
	if urlModifier > s.riskCfg.Breach.MaxModifier {
		urlModifier = s.riskCfg.Breach.MaxModifier
	}
	level := risk.Level(app.RiskLevel)
	return risk.GenerateSuggestions(app.Permissions, app.UserEmail != "", app.UserPhone != "", urlModifier, level)
}

func (s *RiskService) validateCheckRequest(req *RiskCheckRequest) error {
	if req == nil {
		return fmt.Errorf("request body is required")
	}
	if req.AppName == "" {
		return fmt.Errorf("app name is required")
	}
	if len(req.AppName) > 256 {
		return fmt.Errorf("app name too long")
	}
	if util.ContainsSuspicious(req.AppName) {
		return fmt.Errorf("app name contains invalid characters")
	}
	return nil
}

// publishAssessment fans the result out to Kafka, ClickHouse and the search
// index. All three are best effort.
func (s *RiskService) publishAssessment(ctx context.Context, app *models.TrackedApp, a risk.Assessment, level risk.Level) {
	if s.producer != nil {
		event := assessmentEvent{
			UserID:      app.UserID,
			AppID:       app.AppID,
			AppName:     app.AppName,
			Domain:      app.Domain,
			RiskScore:   a.Normalized,
			RiskLevel:   string(level),
			BreachCount: a.BreachCount,
			AssessedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if payload, err := json.Marshal(event); err == nil {
			if err := s.producer.ProduceMessage(ctx, s.cfg.Kafka.AssessmentTopic, []byte(app.AppID), payload, nil); err != nil {
				util.Warn("Failed to publish assessment event",
					zap.String("app_id", app.AppID),
					zap.Error(err))
			}
		}
	}

	if s.assessmentLog != nil {
		if err := s.assessmentLog.Record(ctx, app.UserID, app.AppName, app.Domain, a, level); err != nil {
			util.Warn("Failed to record assessment analytics",
				zap.String("app_id", app.AppID),
				zap.Error(err))
		}
	}

	if s.esClient != nil {
		doc := map[string]interface{}{
			"user_id":      app.UserID,
			"app_id":       app.AppID,
			"app_name":     app.AppName,
			"domain":       app.Domain,
			"risk_score":   app.RiskScore,
			"risk_level":   app.RiskLevel,
			"breach_count": app.BreachCount,
			"is_active":    app.IsActive,
			"updated_at":   time.Now().UTC(),
		}
		res, err := s.esClient.IndexDocument(s.esClient.AppIndex(), app.AppID, doc)
		if err != nil {
			util.Warn("Failed to index app document",
				zap.String("app_id", app.AppID),
				zap.Error(err))
		} else if res != nil && res.Body != nil {
			res.Body.Close()
		}
	}
}
