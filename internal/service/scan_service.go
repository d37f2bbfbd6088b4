package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"privacyguard/internal/breach"
	"privacyguard/internal/hashing"
	"privacyguard/internal/models"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/util"
)

const maxBatchEmails = 50

// ScanService checks email addresses against the breach service. Addresses
// are reduced to peppered argon2 digests before they touch the cache or
// storage; the raw address lives only for the duration of the upstream call.
type ScanService struct {
	scanRepo     scylla.ScanRepository
	breachLookup *breach.Lookup
	hasher       *hashing.Hasher
}

// ScanResult is the outcome of one email scan.
type ScanResult struct {
	Email       string    `json:"email"`
	EmailDigest string    `json:"emailDigest"`
	BreachCount int       `json:"breachCount"`
	Breached    bool      `json:"breached"`
	ScannedAt   time.Time `json:"scannedAt"`
}

func NewScanService(scanRepo scylla.ScanRepository, breachLookup *breach.Lookup, hasher *hashing.Hasher) *ScanService {
	return &ScanService{
		scanRepo:     scanRepo,
		breachLookup: breachLookup,
		hasher:       hasher,
	}
}

// ScanEmail looks up the breach count for one address and records the scan
// under the caller's account.
func (s *ScanService) ScanEmail(ctx context.Context, userID, email string) (*ScanResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	}

	digest := s.hasher.EmailDigest(email)
	if digest == "" {
		return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	}

	count := s.breachLookup.EmailCountOrZero(ctx, email, digest)
	scannedAt := time.Now().UTC()

	if s.scanRepo != nil {
		scan := &models.EmailScan{
			UserID:      userID,
			EmailDigest: digest,
			BreachCount: count,
			ScannedAt:   scannedAt,
		}
		if err := s.scanRepo.RecordScan(ctx, scan); err != nil {
			util.Warn("Failed to record email scan",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	return &ScanResult{
		Email:       email,
		EmailDigest: digest,
		BreachCount: count,
		Breached:    count > 0,
		ScannedAt:   scannedAt,
	}, nil
}

// ScanBatch scans up to maxBatchEmails addresses concurrently. Invalid
// addresses fail the whole batch before any upstream call is made.
func (s *ScanService) ScanBatch(ctx context.Context, userID string, emails []string) ([]*ScanResult, error) {
	if len(emails) == 0 {
		return []*ScanResult{}, nil
	}
	if len(emails) > maxBatchEmails {
		return nil, fmt.Errorf("%w: at most %d emails per batch", ErrInvalidInput, maxBatchEmails)
	}

	seen := make(map[string]bool, len(emails))
	for _, email := range emails {
		trimmed := strings.TrimSpace(email)
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return nil, fmt.Errorf("%w: invalid email %q in batch", ErrInvalidInput, email)
		}
		if seen[trimmed] {
			return nil, fmt.Errorf("%w: duplicate email in batch", ErrInvalidInput)
		}
		seen[trimmed] = true
	}

	results := make([]*ScanResult, len(emails))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	for i, email := range emails {
		i, email := i, email
		g.Go(func() error {
			result, err := s.ScanEmail(ctx, userID, email)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch scan failed: %w", err)
	}

	util.Info("Batch email scan completed",
		zap.String("user_id", userID),
		zap.Int("emails", len(emails)))

	return results, nil
}

// ScanHistory lists prior scans for the caller. Digests only; addresses are
// not recoverable.
func (s *ScanService) ScanHistory(ctx context.Context, userID string) ([]*models.EmailScan, error) {
	if s.scanRepo == nil {
		return []*models.EmailScan{}, nil
	}
	scans, err := s.scanRepo.ListScansByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if scans == nil {
		scans = []*models.EmailScan{}
	}
	return scans, nil
}
