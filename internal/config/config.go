package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"

	QueueBackendInline = "inline"
	QueueBackendNATS   = "nats"
)

type Config struct {
	APIPort  string
	LogLevel string

	StoreBackend string
	StorePath    string
	StoreKey     string

	QueueBackend string
	NATSURL      string
	NATSSubject  string

	ResilienceBreakerEnabled bool
	ResilienceRetryAttempts  int

	UploadMaxFiles     int
	UploadMaxFileBytes int64

	KnowledgeBasePath  string
	RandomSeed         uint64
	DefaultStudentName string

	ExportFontPath     string
	ExportFontBoldPath string

	APIRateLimitRPS   float64
	APIRateLimitBurst int

	APIBackpressureMaxInFlight int
	APIBackpressureWait        time.Duration
	APIMaxConnections          int

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		StoreBackend: oneOf(mustEnv("STORE_BACKEND", StoreBackendFile), StoreBackendFile, StoreBackendSQLite),
		StorePath:    mustEnv("STORE_PATH", "./data"),
		StoreKey:     mustEnv("STORE_KEY", "portfolioData"),

		QueueBackend: oneOf(mustEnv("QUEUE_BACKEND", QueueBackendInline), QueueBackendInline, QueueBackendNATS),
		NATSURL:      mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:  mustEnv("NATS_SUBJECT", "portfolio.documents.accepted"),

		ResilienceBreakerEnabled: mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
		ResilienceRetryAttempts:  mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 3),

		UploadMaxFiles:     positive(mustEnvInt("UPLOAD_MAX_FILES", 10), 10),
		UploadMaxFileBytes: int64(positive(mustEnvInt("UPLOAD_MAX_FILE_BYTES", 5<<20), 5<<20)),

		KnowledgeBasePath:  mustEnv("KNOWLEDGE_BASE_PATH", ""),
		RandomSeed:         mustEnvUint64("RANDOM_SEED", 0),
		DefaultStudentName: mustEnv("DEFAULT_STUDENT_NAME", "Анонимный пользователь"),

		ExportFontPath:     mustEnv("EXPORT_FONT_PATH", ""),
		ExportFontBoldPath: mustEnv("EXPORT_FONT_BOLD_PATH", ""),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 20),

		APIBackpressureMaxInFlight: mustEnvInt("API_BACKPRESSURE_MAX_IN_FLIGHT", 64),
		APIBackpressureWait:        time.Duration(positive(mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250), 250)) * time.Millisecond,
		APIMaxConnections:          mustEnvInt("API_MAX_CONNECTIONS", 256),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(mustEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvUint64(key string, fallback uint64) uint64 {
	n, err := strconv.ParseUint(mustEnv(key, ""), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(mustEnv(key, ""), 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(mustEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// oneOf lower-cases v and returns it when allowed, otherwise the first allowed value.
func oneOf(v string, allowed ...string) string {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return allowed[0]
}
