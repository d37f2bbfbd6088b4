package scylla

import (
	"context"

	"privacyguard/internal/models"
)

// AppRepository defines storage operations for tracked apps. Apps are keyed
// by (user, app name); the bucketed partition key is an internal detail.
type AppRepository interface {
	// UpsertApp creates the app if absent, otherwise overwrites the mutable
	// columns of the existing record. Returns the stored app and whether a
	// new record was created.
	UpsertApp(ctx context.Context, app *models.TrackedApp) (created bool, err error)

	GetAppByName(ctx context.Context, userID, appName string) (*models.TrackedApp, error)
	ListAppsByUser(ctx context.Context, userID string) ([]*models.TrackedApp, error)
	UpdateAppRisk(ctx context.Context, app *models.TrackedApp) error
	DeactivateApp(ctx context.Context, userID, appName string) error
}
