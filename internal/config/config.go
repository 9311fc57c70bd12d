package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yaokonan/terrain-booking/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int

	BetterStackEnabled  bool
	BetterStackEndpoint string
	BetterStackToken    string
	BetterStackTimeout  time.Duration
	BetterStackMinLevel logging.Level

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	BookingAPIBaseURL               string
	BookingAPIToken                 string
	BookingAPITimeout               time.Duration
	BookingAPIMaxRetries            int
	BookingAPICircuitEnabled        bool
	BookingAPICircuitFailureCount   int
	BookingAPICircuitOpenTimeout    time.Duration
	BookingAPICircuitHalfOpenMaxReq int

	SportCacheTTL         time.Duration
	FormSessionTTL        time.Duration
	FormSessionMaxEntries int

	WarmRegions    []string
	WarmInterval   time.Duration
	WarmMaxWorkers int

	InternalJobToken string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
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

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
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

	bookingTimeout, err := time.ParseDuration(getEnv("BOOKING_API_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BOOKING_API_TIMEOUT: %w", err)
	}
	if bookingTimeout <= 0 {
		return Config{}, fmt.Errorf("BOOKING_API_TIMEOUT must be > 0")
	}
	bookingMaxRetries, err := getEnvAsInt("BOOKING_API_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse BOOKING_API_MAX_RETRIES: %w", err)
	}
	if bookingMaxRetries < 0 {
		return Config{}, fmt.Errorf("BOOKING_API_MAX_RETRIES must be >= 0")
	}
	bookingCircuitEnabled, err := strconv.ParseBool(getEnv("BOOKING_API_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BOOKING_API_CIRCUIT_ENABLED: %w", err)
	}
	bookingCircuitFailureCount, err := getEnvAsInt("BOOKING_API_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse BOOKING_API_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if bookingCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("BOOKING_API_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	bookingCircuitOpenTimeout, err := time.ParseDuration(getEnv("BOOKING_API_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BOOKING_API_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if bookingCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("BOOKING_API_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	bookingCircuitHalfOpenMaxReq, err := getEnvAsInt("BOOKING_API_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse BOOKING_API_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if bookingCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("BOOKING_API_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	sportCacheTTL, err := time.ParseDuration(getEnv("SPORT_CACHE_TTL", "300s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORT_CACHE_TTL: %w", err)
	}
	if sportCacheTTL <= 0 {
		return Config{}, fmt.Errorf("SPORT_CACHE_TTL must be > 0")
	}

	formSessionTTL, err := time.ParseDuration(getEnv("FORM_SESSION_TTL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FORM_SESSION_TTL: %w", err)
	}
	if formSessionTTL <= 0 {
		return Config{}, fmt.Errorf("FORM_SESSION_TTL must be > 0")
	}
	formSessionMaxEntries, err := getEnvAsInt("FORM_SESSION_MAX_ENTRIES", 10000)
	if err != nil {
		return Config{}, fmt.Errorf("parse FORM_SESSION_MAX_ENTRIES: %w", err)
	}
	if formSessionMaxEntries < 1 {
		return Config{}, fmt.Errorf("FORM_SESSION_MAX_ENTRIES must be >= 1")
	}

	warmInterval, err := time.ParseDuration(getEnv("WARM_INTERVAL", "0s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WARM_INTERVAL: %w", err)
	}
	if warmInterval < 0 {
		return Config{}, fmt.Errorf("WARM_INTERVAL must be >= 0")
	}
	warmMaxWorkers, err := getEnvAsInt("WARM_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse WARM_MAX_WORKERS: %w", err)
	}
	if warmMaxWorkers < 1 {
		return Config{}, fmt.Errorf("WARM_MAX_WORKERS must be >= 1")
	}
	warmRegions := splitCSV(getEnv("WARM_REGIONS", DefaultWarmRegion))
	if len(warmRegions) == 0 {
		return Config{}, fmt.Errorf("WARM_REGIONS cannot be empty")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "terrain-booking-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		UptraceCaptureRequestBody:  uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes: uptraceRequestBodyMaxBytes,

		BetterStackEnabled:  betterStackEnabled,
		BetterStackEndpoint: betterStackEndpoint,
		BetterStackToken:    strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:  betterStackTimeout,
		BetterStackMinLevel: betterStackMinLevel,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		BookingAPIBaseURL:               strings.TrimSpace(getEnv("BOOKING_API_BASE_URL", "https://api.terrain-booking.ci/v1")),
		BookingAPIToken:                 strings.TrimSpace(getEnv("BOOKING_API_TOKEN", "")),
		BookingAPITimeout:               bookingTimeout,
		BookingAPIMaxRetries:            bookingMaxRetries,
		BookingAPICircuitEnabled:        bookingCircuitEnabled,
		BookingAPICircuitFailureCount:   bookingCircuitFailureCount,
		BookingAPICircuitOpenTimeout:    bookingCircuitOpenTimeout,
		BookingAPICircuitHalfOpenMaxReq: bookingCircuitHalfOpenMaxReq,

		SportCacheTTL:         sportCacheTTL,
		FormSessionTTL:        formSessionTTL,
		FormSessionMaxEntries: formSessionMaxEntries,

		WarmRegions:    warmRegions,
		WarmInterval:   warmInterval,
		WarmMaxWorkers: warmMaxWorkers,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
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

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
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

// DefaultWarmRegion is the catalog partition served to HTTP clients when no
// explicit region list is configured.
const DefaultWarmRegion = "default"

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
