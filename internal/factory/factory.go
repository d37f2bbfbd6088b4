package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"privacyguard/internal/breach"
	"privacyguard/internal/bucketing"
	"privacyguard/internal/cache"
	"privacyguard/internal/client"
	"privacyguard/internal/config"
	"privacyguard/internal/encryption"
	"privacyguard/internal/hashing"
	"privacyguard/internal/repository/clickhouse"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/risk"
	"privacyguard/internal/service"
	"privacyguard/internal/tls"
	"privacyguard/internal/util"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config     *config.Config
	tlsManager *tls.TLSManager

	// Clients
	redisClient      *client.RedisClient
	scyllaClient     *scylla.ScyllaClient
	kafkaProducer    *client.KafkaProducer
	esClient         *client.ESClient
	clickhouseClient *client.ClickHouseClient

	// Managers
	hasher            *hashing.Hasher
	encryptionManager *encryption.EncryptionManager
	bucketingManager  *bucketing.BucketingManager

	// Domain plumbing
	tierCache     *cache.Cache
	breachLookup  *breach.Lookup
	riskConfig    *risk.Config
	assessmentLog *clickhouse.AssessmentLog

	// Repositories
	appRepository   scylla.AppRepository
	vaultRepository scylla.VaultRepository
	scanRepository  scylla.ScanRepository
	serviceFactory  *service.ServiceFactory

	closeOnce sync.Once
	closed    chan struct{}
}

// NewFactory creates and initializes all application dependencies
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	factory := &Factory{
		config: cfg,
		closed: make(chan struct{}),
	}

	if cfg.Server.EnableTLS {
		tlsConfig := &tls.TLSConfig{
			EnableTLS:   cfg.Server.EnableTLS,
			AutoCert:    cfg.Server.AutoCert,
			Domain:      cfg.Server.Domain,
			CertFile:    cfg.Server.CertFile,
			KeyFile:     cfg.Server.KeyFile,
			AutoCertDir: cfg.Server.AutoCertDir,
			Email:       cfg.Server.Email,
			Environment: cfg.Environment,
		}
		factory.tlsManager = tls.NewTLSManager(tlsConfig)
	}

	if err := factory.initializeClients(); err != nil {
		return nil, fmt.Errorf("failed to initialize clients: %w", err)
	}

	factory.initializeManagers()

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("tls_enabled", cfg.Server.EnableTLS),
		util.Bool("kms_enabled", cfg.KMS.Enabled),
		util.Bool("cache_available", factory.tierCache.Available()),
	)

	return factory, nil
}

// initializeClients initializes all external service clients with health checks
func (f *Factory) initializeClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var initErrors []error

	// Redis. A startup failure is not fatal; the two-tier cache degrades to
	// its in-process tier.
	if redisClient, err := client.NewRedisClient(f.config, util.Get()); err != nil {
		util.Warn("Redis initialization failed - cache degrades to in-process tier", util.ErrorField(err))
	} else {
		f.redisClient = redisClient
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			util.Warn("Redis health check failed - cache degrades to in-process tier", util.ErrorField(err))
			f.redisClient.Close()
			f.redisClient = nil
		} else {
			util.Info("Redis client initialized and healthy")
		}
	}
	// A typed nil inside the interface would read as an available remote.
	if f.redisClient != nil {
		f.tierCache = cache.New(f.redisClient)
	} else {
		f.tierCache = cache.New(nil)
	}

	// ScyllaDB
	if scyllaClient, err := scylla.NewScyllaClient(f.config); err != nil {
		initErrors = append(initErrors, fmt.Errorf("scylla: %w", err))
	} else {
		f.scyllaClient = scyllaClient
		if err := f.scyllaClient.HealthCheck(); err != nil {
			initErrors = append(initErrors, fmt.Errorf("scylla health check: %w", err))
		} else {
			util.Info("ScyllaDB client initialized and healthy")
		}
	}

	// Kafka
	if producer, err := client.NewKafkaProducer(f.config); err != nil {
		util.Warn("Kafka producer initialization failed - proceeding without Kafka", util.ErrorField(err))
	} else {
		f.kafkaProducer = producer
		util.Info("Kafka producer initialized")
	}

	// Elasticsearch
	if esClient, err := client.NewElasticsearchClient(f.config); err != nil {
		util.Warn("Elasticsearch initialization failed - proceeding without search", util.ErrorField(err))
	} else {
		f.esClient = esClient
		util.Info("Elasticsearch client initialized and healthy")
	}

	// ClickHouse
	if chClient, err := client.NewClickHouseClient(f.config); err != nil {
		util.Warn("ClickHouse initialization failed - proceeding without analytics", util.ErrorField(err))
	} else {
		f.clickhouseClient = chClient
		f.assessmentLog = clickhouse.NewAssessmentLog(chClient)
		util.Info("ClickHouse client initialized and healthy")
	}

	if len(initErrors) > 0 {
		if f.config.IsProduction() {
			return fmt.Errorf("critical service initialization failed: %v", initErrors)
		}
		for _, err := range initErrors {
			util.Warn("Service initialization warning", util.ErrorField(err))
		}
	}

	return nil
}

// initializeManagers initializes hashing, encryption, bucketing and the
// breach lookup pipeline
func (f *Factory) initializeManagers() {
	f.hasher = hashing.NewHasher(f.config)

	var kmsClient *kms.Client
	if f.config.KMS.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(f.config.KMS.Region))
		if err != nil {
			util.Warn("Failed to load AWS config - KMS disabled, using local keys", util.ErrorField(err))
		} else {
			kmsClient = kms.NewFromConfig(awsCfg)
		}
	}

	f.encryptionManager = encryption.NewEncryptionManager(f.config, kmsClient)
	f.bucketingManager = bucketing.NewBucketingManager(f.config)
	f.riskConfig = risk.DefaultConfig()
	f.breachLookup = breach.NewLookup(breach.NewClient(&f.config.Breach), f.tierCache, &f.config.Breach)

	util.Info("Managers initialized successfully",
		util.Bool("kms_client", kmsClient != nil),
		util.Int("user_buckets", f.bucketingManager.UserBuckets()),
		util.Int("max_possible_score", f.riskConfig.MaxPossible()),
	)
}

func (f *Factory) AppRepository() scylla.AppRepository {
	if f.appRepository == nil {
		f.appRepository = scylla.NewAppRepository(f.ScyllaClient(), f.BucketingManager())
	}
	return f.appRepository
}

func (f *Factory) VaultRepository() scylla.VaultRepository {
	if f.vaultRepository == nil {
		f.vaultRepository = scylla.NewVaultRepository(f.ScyllaClient())
	}
	return f.vaultRepository
}

func (f *Factory) ScanRepository() scylla.ScanRepository {
	if f.scanRepository == nil {
		f.scanRepository = scylla.NewScanRepository(f.ScyllaClient())
	}
	return f.scanRepository
}

func (f *Factory) ServiceFactory() *service.ServiceFactory {
	if f.serviceFactory == nil {
		f.serviceFactory = service.NewServiceFactory(
			f.AppRepository(),
			f.VaultRepository(),
			f.ScanRepository(),
			f.breachLookup,
			f.Hasher(),
			f.EncryptionManager(),
			f.riskConfig,
			f.kafkaProducer,
			f.assessmentLog,
			f.esClient,
			f.config,
		)
	}
	return f.serviceFactory
}

// HealthCheck reports per-dependency health. Kafka, Elasticsearch and
// ClickHouse are optional; their absence is reported but does not fail
// readiness.
func (f *Factory) HealthCheck(ctx context.Context) map[string]error {
	healthErrors := make(map[string]error)

	if f.redisClient != nil {
		if err := f.redisClient.HealthCheck(ctx); err != nil {
			healthErrors["redis"] = err
		}
	} else if !f.tierCache.Available() {
		healthErrors["redis"] = fmt.Errorf("cache running on in-process tier only")
	}

	if f.scyllaClient != nil {
		if err := f.scyllaClient.HealthCheck(); err != nil {
			healthErrors["scylla"] = err
		}
	} else {
		healthErrors["scylla"] = fmt.Errorf("scylla client not initialized")
	}

	if f.esClient != nil {
		if err := f.esClient.HealthCheck(); err != nil {
			healthErrors["elasticsearch"] = err
		}
	}

	if f.clickhouseClient != nil {
		if err := f.clickhouseClient.HealthCheck(ctx); err != nil {
			healthErrors["clickhouse"] = err
		}
	}

	if f.kafkaProducer != nil {
		if err := f.kafkaProducer.HealthCheck(ctx); err != nil {
			healthErrors["kafka"] = err
		}
	}

	return healthErrors
}

func (f *Factory) IsHealthy(ctx context.Context) bool {
	healthErrors := f.HealthCheck(ctx)
	delete(healthErrors, "kafka")
	delete(healthErrors, "elasticsearch")
	delete(healthErrors, "clickhouse")
	delete(healthErrors, "redis")
	return len(healthErrors) == 0
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		close(f.closed)
		util.Info("Shutting down factory...")

		if f.clickhouseClient != nil {
			if err := f.clickhouseClient.Close(); err != nil {
				util.Error("Failed to close ClickHouse client", util.ErrorField(err))
			}
		}

		if f.esClient != nil {
			f.esClient.Close()
		}

		if f.kafkaProducer != nil {
			if err := f.kafkaProducer.Close(); err != nil {
				util.Error("Failed to close Kafka producer", util.ErrorField(err))
			}
		}

		if f.serviceFactory != nil {
			f.serviceFactory.Cleanup()
			util.Info("Service factory cleaned up")
		}

		if f.scyllaClient != nil {
			f.scyllaClient.Close()
		}

		if f.redisClient != nil {
			if err := f.redisClient.Close(); err != nil {
				util.Error("Failed to close Redis client", util.ErrorField(err))
			}
		}

		if f.encryptionManager != nil {
			f.encryptionManager.ClearCache()
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}

func (f *Factory) WaitForClose() {
	<-f.closed
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) TLSManager() *tls.TLSManager {
	return f.tlsManager
}

func (f *Factory) ScyllaClient() *scylla.ScyllaClient {
	return f.scyllaClient
}

func (f *Factory) Cache() *cache.Cache {
	return f.tierCache
}

func (f *Factory) BreachLookup() *breach.Lookup {
	return f.breachLookup
}

func (f *Factory) Hasher() *hashing.Hasher {
	return f.hasher
}

func (f *Factory) EncryptionManager() *encryption.EncryptionManager {
	return f.encryptionManager
}

func (f *Factory) BucketingManager() *bucketing.BucketingManager {
	return f.bucketingManager
}
