package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"privacyguard/internal/config"
	"privacyguard/internal/util"
)

// Statements holds the CQL text used by the repositories. Each call builds
// its own *gocql.Query from these, so bound values stay request-local;
// gocql prepares and caches every statement per session either way.
type Statements struct {
	CreateApp      string
	GetAppByName   string
	ListAppsByUser string
	UpdateApp      string
	UpdateAppRisk  string
	DeactivateApp  string

	CreateVaultItem string
	GetVaultItem    string
	ListVaultItems  string
	DeleteVaultItem string

	RecordScan      string
	ListScansByUser string
}

type ScyllaClient struct {
	Session *gocql.Session
	config  *config.ScyllaConfig
	Stmts   *Statements
}

func NewScyllaClient(cfg *config.Config) (*ScyllaClient, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 4
	cluster.SocketKeepalive = 30 * time.Second
	cluster.MaxPreparedStmts = 1000
	cluster.MaxRoutingKeyInfo = 1000
	cluster.PageSize = 1000
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 3,
	}

	if !cfg.IsDevelopment() {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 "/root/certs/ca.pem",
			CertPath:               "/root/certs/server.pem",
			KeyPath:                "/root/certs/server.key",
			EnableHostVerification: true,
		}
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	client := &ScyllaClient{
		Session: session,
		config:  &scyllaConfig,
		Stmts:   defaultStatements(),
	}

	util.Info("ScyllaDB client initialized",
		zap.Strings("nodes", scyllaConfig.Nodes),
		zap.String("keyspace", scyllaConfig.Keyspace))

	return client, nil
}

func defaultStatements() *Statements {
	return &Statements{
		CreateApp: `
        INSERT INTO apps_by_user (
            app_bucket, user_id, app_name, app_id, url, domain, permissions,
            user_email, user_phone, risk_score, risk_level, breach_count,
            breach_checked_at, is_active, last_risk_check, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,

		GetAppByName: `
        SELECT app_bucket, user_id, app_name, app_id, url, domain, permissions,
            user_email, user_phone, risk_score, risk_level, breach_count,
            breach_checked_at, is_active, last_risk_check, created_at, updated_at
        FROM apps_by_user WHERE app_bucket = ? AND user_id = ? AND app_name = ?`,

		ListAppsByUser: `
        SELECT app_bucket, user_id, app_name, app_id, url, domain, permissions,
            user_email, user_phone, risk_score, risk_level, breach_count,
            breach_checked_at, is_active, last_risk_check, created_at, updated_at
        FROM apps_by_user WHERE app_bucket = ? AND user_id = ?`,

		UpdateApp: `
        UPDATE apps_by_user SET
            url = ?, domain = ?, permissions = ?, user_email = ?, user_phone = ?,
            risk_score = ?, risk_level = ?, breach_count = ?, breach_checked_at = ?,
            is_active = ?, last_risk_check = ?, updated_at = ?
        WHERE app_bucket = ? AND user_id = ? AND app_name = ?`,

		UpdateAppRisk: `
        UPDATE apps_by_user SET
            risk_score = ?, risk_level = ?, breach_count = ?, breach_checked_at = ?,
            last_risk_check = ?, updated_at = ?
        WHERE app_bucket = ? AND user_id = ? AND app_name = ?`,

		DeactivateApp: `
        UPDATE apps_by_user SET is_active = false, updated_at = ?
        WHERE app_bucket = ? AND user_id = ? AND app_name = ?`,

		CreateVaultItem: `
        INSERT INTO vault_items (
            user_id, item_id, name, username, secret_ciphertext, encrypted_dek,
            key_id, enc_version, notes, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		GetVaultItem: `
        SELECT user_id, item_id, name, username, secret_ciphertext, encrypted_dek,
            key_id, enc_version, notes, created_at, updated_at
        FROM vault_items WHERE user_id = ? AND item_id = ?`,

		ListVaultItems: `
        SELECT user_id, item_id, name, username, secret_ciphertext, encrypted_dek,
            key_id, enc_version, notes, created_at, updated_at
        FROM vault_items WHERE user_id = ?`,

		DeleteVaultItem: `
        DELETE FROM vault_items WHERE user_id = ? AND item_id = ?`,

		RecordScan: `
        INSERT INTO scans_by_user (user_id, email_digest, breach_count, scanned_at)
        VALUES (?, ?, ?, ?)`,

		ListScansByUser: `
        SELECT user_id, email_digest, breach_count, scanned_at
        FROM scans_by_user WHERE user_id = ?`,
	}
}

func (s *ScyllaClient) Close() {
	if s.Session != nil {
		s.Session.Close()
		util.Info("ScyllaDB client closed")
	}
}

func (s *ScyllaClient) Query(stmt string, values ...interface{}) *gocql.Query {
	return s.Session.Query(stmt, values...)
}

func (s *ScyllaClient) Batch(typ gocql.BatchType) *gocql.Batch {
	return s.Session.NewBatch(typ)
}

func (s *ScyllaClient) ExecuteBatch(batch *gocql.Batch) error {
	return s.Session.ExecuteBatch(batch)
}

func (s *ScyllaClient) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var clusterName string
	err := s.Session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&clusterName)
	if err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}

	util.Debug("ScyllaDB health check passed", zap.String("cluster_name", clusterName))
	return nil
}

func (s *ScyllaClient) ExecuteWithRetry(query *gocql.Query, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := query.Exec(); err != nil {
			lastErr = err
			if i < maxRetries {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}

func (s *ScyllaClient) ScanWithRetry(query *gocql.Query, dest ...interface{}) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if err := query.Scan(dest...); err != nil {
			if !retryableScanErr(err) {
				return err
			}
			lastErr = err
			if i < 2 {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}

// retryableScanErr reports whether a Scan failure is worth another attempt.
// An empty result is an answer, not a transient failure.
func retryableScanErr(err error) bool {
	return !errors.Is(err, gocql.ErrNotFound)
}
