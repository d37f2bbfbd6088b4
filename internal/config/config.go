package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	Environment string

	Server        ServerConfig
	Logging       LoggingConfig
	Redis         RedisConfig
	Scylla        ScyllaConfig
	Kafka         KafkaConfig
	Clickhouse    ClickhouseConfig
	Elasticsearch ElasticsearchConfig
	Breach        BreachConfig
	KMS           KMSConfig
	Hashing       HashingConfig
	Bucketing     BucketingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	EnableTLS   bool
	TLSPort     int
	CertFile    string
	KeyFile     string
	AutoCert    bool
	AutoCertDir string
	Domain      string
	Email       string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type ScyllaConfig struct {
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type KafkaConfig struct {
	Brokers         []string
	AssessmentTopic string
}

type ClickhouseConfig struct {
	URL      string
	Database string
	Username string
	Password string
}

type ElasticsearchConfig struct {
	URL      string
	Username string
	Password string
	AppIndex string
}

// BreachConfig configures the upstream breach-count service and the cache
// TTLs applied to its answers.
type BreachConfig struct {
	APIURL     string
	APIKey     string
	Timeout    time.Duration
	SuccessTTL time.Duration
	FailureTTL time.Duration
}

type KMSConfig struct {
	Enabled bool
	KeyID   string
	Region  string
}

type HashingConfig struct {
	Argon2MemoryCost  int
	Argon2TimeCost    int
	Argon2Parallelism int
	// DigestPepper keys the deterministic email digests. Changing it
	// invalidates every cached scan result and stored digest.
	DigestPepper string
}

type BucketingConfig struct {
	UserBuckets int
}

// LoadConfig reads .env (if present) and environment variables into a Config.
func LoadConfig() *Config {
	// .env is optional; real deployments use injected environment.
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			EnableTLS:    getEnvBool("SERVER_ENABLE_TLS", false),
			TLSPort:      getEnvInt("SERVER_TLS_PORT", 8443),
			CertFile:     getEnv("SERVER_CERT_FILE", ""),
			KeyFile:      getEnv("SERVER_KEY_FILE", ""),
			AutoCert:     getEnvBool("SERVER_AUTO_CERT", false),
			AutoCertDir:  getEnv("SERVER_AUTO_CERT_DIR", "/var/lib/privacyguard/autocert"),
			Domain:       getEnv("SERVER_DOMAIN", ""),
			Email:        getEnv("SERVER_ACME_EMAIL", ""),
		},

		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},

		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
		},

		Scylla: ScyllaConfig{
			Nodes:    getEnvList("SCYLLA_NODES", []string{"localhost:9042"}),
			Keyspace: getEnv("SCYLLA_KEYSPACE", "privacyguard"),
			Username: getEnv("SCYLLA_USERNAME", ""),
			Password: getEnv("SCYLLA_PASSWORD", ""),
		},

		Kafka: KafkaConfig{
			Brokers:         getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			AssessmentTopic: getEnv("KAFKA_ASSESSMENT_TOPIC", "risk.assessments"),
		},

		Clickhouse: ClickhouseConfig{
			URL:      getEnv("CLICKHOUSE_URL", "http://localhost:8123"),
			Database: getEnv("CLICKHOUSE_DATABASE", "privacyguard"),
			Username: getEnv("CLICKHOUSE_USERNAME", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},

		Elasticsearch: ElasticsearchConfig{
			URL:      getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Username: getEnv("ELASTICSEARCH_USERNAME", ""),
			Password: getEnv("ELASTICSEARCH_PASSWORD", ""),
			AppIndex: getEnv("ELASTICSEARCH_APP_INDEX", "tracked-apps"),
		},

		Breach: BreachConfig{
			APIURL:     getEnv("BREACH_API_URL", "https://breachdirectory.example.com/api"),
			APIKey:     getEnv("BREACH_API_KEY", ""),
			Timeout:    getEnvDuration("BREACH_API_TIMEOUT", 5*time.Second),
			SuccessTTL: getEnvDuration("BREACH_CACHE_SUCCESS_TTL", 24*time.Hour),
			FailureTTL: getEnvDuration("BREACH_CACHE_FAILURE_TTL", time.Hour),
		},

		KMS: KMSConfig{
			Enabled: getEnvBool("KMS_ENABLED", false),
			KeyID:   getEnv("KMS_KEY_ID", ""),
			Region:  getEnv("KMS_REGION", "us-east-1"),
		},

		Hashing: HashingConfig{
			Argon2MemoryCost:  getEnvInt("ARGON2_MEMORY_COST", 65536),
			Argon2TimeCost:    getEnvInt("ARGON2_TIME_COST", 3),
			Argon2Parallelism: getEnvInt("ARGON2_PARALLELISM", 4),
			DigestPepper:      getEnv("DIGEST_PEPPER", "privacyguard-dev-pepper"),
		},

		Bucketing: BucketingConfig{
			UserBuckets: getEnvInt("USER_BUCKETS", 64),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
