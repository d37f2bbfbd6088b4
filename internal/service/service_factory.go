package service

import (
	"privacyguard/internal/breach"
	"privacyguard/internal/client"
	"privacyguard/internal/config"
	"privacyguard/internal/encryption"
	"privacyguard/internal/hashing"
	"privacyguard/internal/repository/clickhouse"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/risk"
)

// ServiceFactory creates and manages service instances
type ServiceFactory struct {
	appRepo       scylla.AppRepository
	vaultRepo     scylla.VaultRepository
	scanRepo      scylla.ScanRepository
	breachLookup  *breach.Lookup
	hasher        *hashing.Hasher
	encryptionMgr *encryption.EncryptionManager
	riskCfg       *risk.Config
	producer      *client.KafkaProducer
	assessmentLog *clickhouse.AssessmentLog
	esClient      *client.ESClient
	cfg           *config.Config

	riskService  *RiskService
	appService   *AppService
	scanService  *ScanService
	vaultService *VaultService
}

func NewServiceFactory(
	appRepo scylla.AppRepository,
	vaultRepo scylla.VaultRepository,
	scanRepo scylla.ScanRepository,
	breachLookup *breach.Lookup,
	hasher *hashing.Hasher,
	encryptionMgr *encryption.EncryptionManager,
	riskCfg *risk.Config,
	producer *client.KafkaProducer,
	assessmentLog *clickhouse.AssessmentLog,
	esClient *client.ESClient,
	cfg *config.Config,
) *ServiceFactory {
	return &ServiceFactory{
		appRepo:       appRepo,
		vaultRepo:     vaultRepo,
		scanRepo:      scanRepo,
		breachLookup:  breachLookup,
		hasher:        hasher,
		encryptionMgr: encryptionMgr,
		riskCfg:       riskCfg,
		producer:      producer,
		assessmentLog: assessmentLog,
		esClient:      esClient,
		cfg:           cfg,
	}
}

// RiskService returns the risk service instance (singleton)
func (f *ServiceFactory) RiskService() *RiskService {
	if f.riskService == nil {
		f.riskService = NewRiskService(
			f.appRepo, f.breachLookup, f.riskCfg,
			f.producer, f.assessmentLog, f.esClient, f.cfg,
		)
	}
	return f.riskService
}

// AppService returns the app service instance (singleton)
func (f *ServiceFactory) AppService() *AppService {
	if f.appService == nil {
		f.appService = NewAppService(f.appRepo, f.RiskService(), f.esClient)
	}
	return f.appService
}

// ScanService returns the scan service instance (singleton)
func (f *ServiceFactory) ScanService() *ScanService {
	if f.scanService == nil {
		f.scanService = NewScanService(f.scanRepo, f.breachLookup, f.hasher)
	}
	return f.scanService
}

// VaultService returns the vault service instance (singleton)
func (f *ServiceFactory) VaultService() *VaultService {
	if f.vaultService == nil {
		f.vaultService = NewVaultService(f.vaultRepo, f.encryptionMgr)
	}
	return f.vaultService
}

// Cleanup cleans up all services
func (f *ServiceFactory) Cleanup() {
	if f.encryptionMgr != nil {
		f.encryptionMgr.ClearCache()
	}
}
