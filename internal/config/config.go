package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/footyarchive/gamelog-api/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	CORSAllowedOrigins []string
	LogLevel           logging.Level

	DBEnabled bool
	DBURL     string

	RedisEnabled bool
	RedisURL     string

	CacheTTLHistorical time.Duration
	CacheTTLCurrent    time.Duration
	IndexTTL           time.Duration

	ArchiveBaseURL               string
	ArchiveTimeout               time.Duration
	ArchiveMaxRetries            int
	ArchiveRetryInterval         time.Duration
	ArchiveIndexWorkers          int
	ArchiveCircuitEnabled        bool
	ArchiveCircuitFailureCount   int
	ArchiveCircuitOpenTimeout    time.Duration
	ArchiveCircuitHalfOpenMaxReq int

	ProbeMaxCandidates   int
	BroadenMaxCandidates int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	dbEnabled, err := strconv.ParseBool(getEnv("DB_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_ENABLED: %w", err)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if dbEnabled && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_ENABLED=true")
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	redisURL := strings.TrimSpace(getEnv("REDIS_URL", ""))
	if redisEnabled && redisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when REDIS_ENABLED=true")
	}

	cacheTTLHistorical, err := time.ParseDuration(getEnv("CACHE_TTL_HISTORICAL", "4320h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL_HISTORICAL: %w", err)
	}
	if cacheTTLHistorical <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL_HISTORICAL must be > 0")
	}
	cacheTTLCurrent, err := time.ParseDuration(getEnv("CACHE_TTL_CURRENT", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL_CURRENT: %w", err)
	}
	if cacheTTLCurrent <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL_CURRENT must be > 0")
	}
	indexTTL, err := time.ParseDuration(getEnv("INDEX_TTL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse INDEX_TTL: %w", err)
	}
	if indexTTL <= 0 {
		return Config{}, fmt.Errorf("INDEX_TTL must be > 0")
	}

	archiveBaseURL := strings.TrimSpace(getEnv("ARCHIVE_BASE_URL", "https://afltables.com/afl"))
	if archiveBaseURL == "" {
		return Config{}, fmt.Errorf("ARCHIVE_BASE_URL cannot be empty")
	}
	archiveTimeout, err := time.ParseDuration(getEnv("ARCHIVE_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_TIMEOUT: %w", err)
	}
	if archiveTimeout <= 0 {
		return Config{}, fmt.Errorf("ARCHIVE_TIMEOUT must be > 0")
	}
	archiveMaxRetries, err := getEnvAsInt("ARCHIVE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_MAX_RETRIES: %w", err)
	}
	if archiveMaxRetries < 0 {
		return Config{}, fmt.Errorf("ARCHIVE_MAX_RETRIES must be >= 0")
	}
	archiveRetryInterval, err := time.ParseDuration(getEnv("ARCHIVE_RETRY_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_RETRY_INTERVAL: %w", err)
	}
	if archiveRetryInterval <= 0 {
		return Config{}, fmt.Errorf("ARCHIVE_RETRY_INTERVAL must be > 0")
	}
	archiveIndexWorkers, err := getEnvAsInt("ARCHIVE_INDEX_WORKERS", 6)
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_INDEX_WORKERS: %w", err)
	}
	if archiveIndexWorkers < 1 {
		return Config{}, fmt.Errorf("ARCHIVE_INDEX_WORKERS must be >= 1")
	}
	archiveCircuitEnabled, err := strconv.ParseBool(getEnv("ARCHIVE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_CIRCUIT_ENABLED: %w", err)
	}
	archiveCircuitFailureCount, err := getEnvAsInt("ARCHIVE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if archiveCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ARCHIVE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	archiveCircuitOpenTimeout, err := time.ParseDuration(getEnv("ARCHIVE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if archiveCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ARCHIVE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	archiveCircuitHalfOpenMaxReq, err := getEnvAsInt("ARCHIVE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ARCHIVE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if archiveCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ARCHIVE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	probeMaxCandidates, err := getEnvAsInt("PROBE_MAX_CANDIDATES", 126)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROBE_MAX_CANDIDATES: %w", err)
	}
	if probeMaxCandidates < 1 {
		return Config{}, fmt.Errorf("PROBE_MAX_CANDIDATES must be >= 1")
	}
	broadenMaxCandidates, err := getEnvAsInt("BROADEN_MAX_CANDIDATES", 35)
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADEN_MAX_CANDIDATES: %w", err)
	}
	if broadenMaxCandidates < 1 {
		return Config{}, fmt.Errorf("BROADEN_MAX_CANDIDATES must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "150s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "gamelog-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                     logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBEnabled:                    dbEnabled,
		DBURL:                        dbURL,
		RedisEnabled:                 redisEnabled,
		RedisURL:                     redisURL,
		CacheTTLHistorical:           cacheTTLHistorical,
		CacheTTLCurrent:              cacheTTLCurrent,
		IndexTTL:                     indexTTL,
		ArchiveBaseURL:               archiveBaseURL,
		ArchiveTimeout:               archiveTimeout,
		ArchiveMaxRetries:            archiveMaxRetries,
		ArchiveRetryInterval:         archiveRetryInterval,
		ArchiveIndexWorkers:          archiveIndexWorkers,
		ArchiveCircuitEnabled:        archiveCircuitEnabled,
		ArchiveCircuitFailureCount:   archiveCircuitFailureCount,
		ArchiveCircuitOpenTimeout:    archiveCircuitOpenTimeout,
		ArchiveCircuitHalfOpenMaxReq: archiveCircuitHalfOpenMaxReq,
		ProbeMaxCandidates:           probeMaxCandidates,
		BroadenMaxCandidates:         broadenMaxCandidates,
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		UptraceCaptureRequestBody:    uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes:   uptraceRequestBodyMaxBytes,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
