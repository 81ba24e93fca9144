package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Gemini description rewriting.
	GeminiAPIKey     string
	GeminiModel      string
	GeminiTimeout    time.Duration
	GeminiRPM        int
	RewriteEnabled   bool
	RewriteCacheSize int
	RewriteCacheTTL  time.Duration

	// Shared rewrite cache. Empty RedisAddr keeps the cache in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Firestore sink.
	FirestoreEnabled    bool
	FirebaseCredentials string
	FirestoreCollection string

	// RDW open data collector.
	RegionsFile      string
	RDWBaseURL       string
	RDWTimeout       time.Duration
	RDWUseDateFilter bool
}

// LoadDotEnv loads a .env file into the environment when one exists.
// Variables already set take precedence.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	geminiTimeout, err := parsePositiveDuration("GEMINI_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("REWRITE_CACHE_TTL", "720h")
	if err != nil {
		return nil, err
	}
	rdwTimeout, err := parsePositiveDuration("RDW_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-zone-tariffs"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "zone-schedules"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "parking-tariff-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		GeminiAPIKey:     geminiKey,
		GeminiModel:      sharedcfg.EnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:    geminiTimeout,
		GeminiRPM:        parsePositiveInt("GEMINI_RPM", 60),
		RewriteEnabled:   parseBool("REWRITE_ENABLED", geminiKey != ""),
		RewriteCacheSize: parsePositiveInt("REWRITE_CACHE_SIZE", 5000),
		RewriteCacheTTL:  cacheTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		FirestoreEnabled:    parseBool("FIRESTORE_ENABLED", false),
		FirebaseCredentials: sharedcfg.EnvOrDefault("FIREBASE_CREDENTIALS", "service-account.json"),
		FirestoreCollection: sharedcfg.EnvOrDefault("FIRESTORE_COLLECTION", "zones"),

		RegionsFile:      os.Getenv("REGIONS_FILE"),
		RDWBaseURL:       sharedcfg.EnvOrDefault("RDW_BASE_URL", "https://opendata.rdw.nl/resource"),
		RDWTimeout:       rdwTimeout,
		RDWUseDateFilter: parseBool("RDW_USE_DATE_FILTER", false),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.RewriteEnabled && cfg.GeminiAPIKey == "" {
		return nil, errors.New("REWRITE_ENABLED is true but GEMINI_API_KEY is not set")
	}
	if cfg.FirestoreEnabled && cfg.FirestoreCollection == "" {
		return nil, errors.New("FIRESTORE_COLLECTION is required when FIRESTORE_ENABLED is true")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
