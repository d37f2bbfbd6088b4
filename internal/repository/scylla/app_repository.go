package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"privacyguard/internal/bucketing"
	"privacyguard/internal/models"
	"privacyguard/internal/util"
)

var ErrNotFound = errors.New("record not found")

type appRepository struct {
	client   *ScyllaClient
	bucketer *bucketing.BucketingManager
}

func NewAppRepository(client *ScyllaClient, bucketer *bucketing.BucketingManager) AppRepository {
	return &appRepository{
		client:   client,
		bucketer: bucketer,
	}
}

// UpsertApp inserts with a lightweight transaction so two concurrent checks
// for the same (user, app name) cannot both create a row. On a lost race the
// write is retried exactly once as an update of the existing record.
func (r *appRepository) UpsertApp(ctx context.Context, app *models.TrackedApp) (bool, error) {
	if app.AppID == "" {
		app.AppID = uuid.New().String()
	}
	app.AppBucket = r.bucketer.AppBucket(app.UserID)

	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = &now

	query := r.client.Query(r.client.Stmts.CreateApp,
		app.AppBucket, app.UserID, app.AppName, app.AppID, app.URL, app.Domain,
		app.Permissions, app.UserEmail, app.UserPhone, app.RiskScore,
		app.RiskLevel, app.BreachCount, app.BreachCheckedAt, app.IsActive,
		app.LastRiskCheck, app.CreatedAt, now,
	).WithContext(ctx)

	previous := make(map[string]interface{})
	applied, err := query.MapScanCAS(previous)
	if err != nil {
		util.Error("Failed to create tracked app",
			zap.String("user_id", app.UserID),
			zap.String("app_name", app.AppName),
			zap.Error(err))
		return false, fmt.Errorf("failed to create tracked app: %w", err)
	}

	if applied {
		util.Info("Tracked app created",
			zap.String("user_id", app.UserID),
			zap.String("app_name", app.AppName),
			zap.String("app_id", app.AppID))
		return true, nil
	}

	// Row already exists. Keep its identity and creation time, overwrite the
	// mutable columns.
	if existingID, ok := previous["app_id"].(string); ok && existingID != "" {
		app.AppID = existingID
	}
	if createdAt, ok := previous["created_at"].(time.Time); ok && !createdAt.IsZero() {
		app.CreatedAt = createdAt
	}

	update := r.client.Query(r.client.Stmts.UpdateApp,
		app.URL, app.Domain, app.Permissions, app.UserEmail, app.UserPhone,
		app.RiskScore, app.RiskLevel, app.BreachCount, app.BreachCheckedAt,
		app.IsActive, app.LastRiskCheck, now,
		app.AppBucket, app.UserID, app.AppName,
	).WithContext(ctx)

	if err := update.Exec(); err != nil {
		util.Error("Failed to update tracked app after insert conflict",
			zap.String("user_id", app.UserID),
			zap.String("app_name", app.AppName),
			zap.Error(err))
		return false, fmt.Errorf("failed to update tracked app: %w", err)
	}

	util.Info("Tracked app updated",
		zap.String("user_id", app.UserID),
		zap.String("app_name", app.AppName))

	return false, nil
}

func (r *appRepository) GetAppByName(ctx context.Context, userID, appName string) (*models.TrackedApp, error) {
	app := &models.TrackedApp{}

	query := r.client.Query(r.client.Stmts.GetAppByName,
		r.bucketer.AppBucket(userID), userID, appName,
	).WithContext(ctx)

	err := r.client.ScanWithRetry(query, r.scanDest(app)...)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("app %q: %w", appName, ErrNotFound)
		}
		util.Error("Failed to get tracked app",
			zap.String("user_id", userID),
			zap.String("app_name", appName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get tracked app: %w", err)
	}

	return app, nil
}

func (r *appRepository) ListAppsByUser(ctx context.Context, userID string) ([]*models.TrackedApp, error) {
	query := r.client.Query(r.client.Stmts.ListAppsByUser,
		r.bucketer.AppBucket(userID), userID,
	).WithContext(ctx)

	iter := query.Iter()

	var apps []*models.TrackedApp
	for {
		app := &models.TrackedApp{}
		if !iter.Scan(r.scanDest(app)...) {
			break
		}
		if app.IsActive {
			apps = append(apps, app)
		}
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to list tracked apps",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list tracked apps: %w", err)
	}

	return apps, nil
}

func (r *appRepository) UpdateAppRisk(ctx context.Context, app *models.TrackedApp) error {
	now := time.Now().UTC()
	app.UpdatedAt = &now

	query := r.client.Query(r.client.Stmts.UpdateAppRisk,
		app.RiskScore, app.RiskLevel, app.BreachCount, app.BreachCheckedAt,
		app.LastRiskCheck, now,
		r.bucketer.AppBucket(app.UserID), app.UserID, app.AppName,
	).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to update app risk",
			zap.String("user_id", app.UserID),
			zap.String("app_name", app.AppName),
			zap.Error(err))
		return fmt.Errorf("failed to update app risk: %w", err)
	}

	return nil
}

func (r *appRepository) DeactivateApp(ctx context.Context, userID, appName string) error {
	// Confirm the row exists so callers can distinguish a no-op delete.
	if _, err := r.GetAppByName(ctx, userID, appName); err != nil {
		return err
	}

	query := r.client.Query(r.client.Stmts.DeactivateApp,
		time.Now().UTC(),
		r.bucketer.AppBucket(userID), userID, appName,
	).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to deactivate tracked app",
			zap.String("user_id", userID),
			zap.String("app_name", appName),
			zap.Error(err))
		return fmt.Errorf("failed to deactivate tracked app: %w", err)
	}

	util.Info("Tracked app deactivated",
		zap.String("user_id", userID),
		zap.String("app_name", appName))

	return nil
}

func (r *appRepository) scanDest(app *models.TrackedApp) []interface{} {
	return []interface{}{
		&app.AppBucket, &app.UserID, &app.AppName, &app.AppID, &app.URL,
		&app.Domain, &app.Permissions, &app.UserEmail, &app.UserPhone,
		&app.RiskScore, &app.RiskLevel, &app.BreachCount, &app.BreachCheckedAt,
		&app.IsActive, &app.LastRiskCheck, &app.CreatedAt, &app.UpdatedAt,
	}
}
