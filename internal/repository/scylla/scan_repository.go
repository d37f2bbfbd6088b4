package scylla

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"privacyguard/internal/models"
	"privacyguard/internal/util"
)

// ScanRepository records email breach scans per user, keyed by email digest.
type ScanRepository interface {
	RecordScan(ctx context.Context, scan *models.EmailScan) error
	ListScansByUser(ctx context.Context, userID string) ([]*models.EmailScan, error)
}

type scanRepository struct {
	client *ScyllaClient
}

func NewScanRepository(client *ScyllaClient) ScanRepository {
	return &scanRepository{client: client}
}

func (r *scanRepository) RecordScan(ctx context.Context, scan *models.EmailScan) error {
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = time.Now().UTC()
	}

	query := r.client.Query(r.client.Stmts.RecordScan,
		scan.UserID, scan.EmailDigest, scan.BreachCount, scan.ScannedAt,
	).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to record email scan",
			zap.String("user_id", scan.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to record email scan: %w", err)
	}

	return nil
}

func (r *scanRepository) ListScansByUser(ctx context.Context, userID string) ([]*models.EmailScan, error) {
	query := r.client.Query(r.client.Stmts.ListScansByUser, userID).WithContext(ctx)

	iter := query.Iter()

	var scans []*models.EmailScan
	for {
		scan := &models.EmailScan{}
		if !iter.Scan(&scan.UserID, &scan.EmailDigest, &scan.BreachCount, &scan.ScannedAt) {
			break
		}
		scans = append(scans, scan)
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to list email scans",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list email scans: %w", err)
	}

	return scans, nil
}
